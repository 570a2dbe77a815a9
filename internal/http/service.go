package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/AbhaySingh4321/shop-managerr/internal/apperr"
	"github.com/AbhaySingh4321/shop-managerr/internal/config"
	"github.com/AbhaySingh4321/shop-managerr/internal/http/apierr"
	"github.com/AbhaySingh4321/shop-managerr/internal/http/metric"
	"github.com/AbhaySingh4321/shop-managerr/internal/http/middleware"
	"github.com/AbhaySingh4321/shop-managerr/internal/http/swagger"
	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
	"github.com/AbhaySingh4321/shop-managerr/internal/service"
	"github.com/AbhaySingh4321/shop-managerr/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg       config.HTTP
	logger    *slog.Logger
	metrics   *metric.Metrics
	validator validator.Validator

	ledger       *ledger.Ledger
	inventorySvc service.InventoryService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	ldg *ledger.Ledger,
	inventorySvc service.InventoryService,
) (*Service, error) {
	v, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("new default validator: %w", err)
	}

	return &Service{
		cfg:          cfg,
		logger:       log.With(slog.String("service", "http")),
		metrics:      metric.New(),
		validator:    v,
		ledger:       ldg,
		inventorySvc: inventorySvc,
	}, nil
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	products := newProductHandler(s.ledger, s.inventorySvc, s.validator)
	sales := newSaleHandler(s.ledger, s.inventorySvc, s.validator)
	restocks := newRestockHandler(s.ledger, s.inventorySvc, s.validator)
	dashboard := newDashboardHandler(s.ledger)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.wrap(products.list))
		r.Post("/", s.wrap(products.create))
		r.Post("/batch", s.wrap(products.createBatch))
		r.Get("/sellable", s.wrap(products.listSellable))
		r.Delete("/{id}", s.wrap(products.delete))
	})

	r.Route("/sales", func(r chi.Router) {
		r.Get("/", s.wrap(sales.list))
		r.Post("/", s.wrap(sales.create))
		r.Post("/cart", s.wrap(sales.commitCart))
		r.Delete("/{id}", s.wrap(sales.delete))
	})

	r.Route("/restock", func(r chi.Router) {
		r.Get("/", s.wrap(restocks.list))
		r.Post("/", s.wrap(restocks.create))
		r.Delete("/{id}", s.wrap(restocks.delete))
	})

	r.Get("/dashboard", s.wrap(dashboard.summary))

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

// apiHandlerFunc is an http.HandlerFunc returning an error so the handlers
// funnel every failure through one response path.
type apiHandlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Service) wrap(fn apiHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

func decodeAndValidate(r *http.Request, v validator.Validator, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.ValidationErr.WrapParent(err)
	}
	return v.Validate(dst)
}

func respondJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func urlParamUUID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, apperr.ValidationErr.WrapParent(err)
	}
	return id, nil
}
