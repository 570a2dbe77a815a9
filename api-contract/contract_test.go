package apicontract_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/AbhaySingh4321/shop-managerr/api-contract"
)

func TestEmbeddedContract(t *testing.T) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(apicontract.GetSpecBytes())
	require.NoError(t, err)

	t.Run("Should validate against OpenAPI 3", func(t *testing.T) {
		assert.NoError(t, doc.Validate(context.Background()))
	})

	t.Run("Should describe every route the server registers", func(t *testing.T) {
		for _, path := range []string{
			"/products",
			"/products/batch",
			"/products/sellable",
			"/products/{id}",
			"/sales",
			"/sales/cart",
			"/sales/{id}",
			"/restock",
			"/restock/{id}",
			"/dashboard",
		} {
			assert.NotNil(t, doc.Paths.Find(path), "missing path %s", path)
		}
	})
}
