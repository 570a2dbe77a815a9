package apperr

import "github.com/AbhaySingh4321/shop-managerr/pkg/zerror"

const (
	ValidationErrorCode     = "VALIDATION_FAILED"
	ProductNotFoundCode     = "PRODUCT_NOT_FOUND"
	SaleNotFoundCode        = "SALE_NOT_FOUND"
	RestockNotFoundCode     = "RESTOCK_NOT_FOUND"
	InsufficientStockCode   = "INSUFFICIENT_STOCK"
	InvalidQuantityCode     = "INVALID_QUANTITY"
	DuplicateNameCode       = "DUPLICATE_NAME"
	EmptyCartCode           = "EMPTY_CART"
	EmptyCustomerNameCode   = "EMPTY_CUSTOMER_NAME"
	RemoteFailureCode       = "REMOTE_FAILURE"
	SessionAlreadyActiveCode = "SESSION_ALREADY_ACTIVE"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	ProductNotFoundErr = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	SaleNotFoundErr    = zerror.NewNotFound(SaleNotFoundCode, "sale record not found")
	RestockNotFoundErr = zerror.NewNotFound(RestockNotFoundCode, "restock record not found")

	InsufficientStockErr = zerror.NewUnprocessableEntity(InsufficientStockCode, "insufficient stock")
	InvalidQuantityErr   = zerror.NewValidationFailed(InvalidQuantityCode, "quantity must be greater than zero")
	DuplicateNameErr     = zerror.NewConflict(DuplicateNameCode, "product name already exists")

	EmptyCartErr         = zerror.NewValidationFailed(EmptyCartCode, "sale cart has no lines")
	EmptyCustomerNameErr = zerror.NewValidationFailed(EmptyCustomerNameCode, "customer name is required")

	// RemoteFailureErr wraps store or transport errors; the underlying message
	// is surfaced verbatim and the operation is not retried.
	RemoteFailureErr = zerror.NewBadGateway(RemoteFailureCode, "remote store operation failed")

	SessionAlreadyActiveErr = zerror.NewConflict(SessionAlreadyActiveCode, "session listeners already started")
)
