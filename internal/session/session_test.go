package session_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhaySingh4321/shop-managerr/internal/apperr"
	"github.com/AbhaySingh4321/shop-managerr/internal/event"
	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
	"github.com/AbhaySingh4321/shop-managerr/internal/model"
	"github.com/AbhaySingh4321/shop-managerr/internal/reconcile"
	"github.com/AbhaySingh4321/shop-managerr/internal/repository"
	"github.com/AbhaySingh4321/shop-managerr/internal/session"
	"github.com/AbhaySingh4321/shop-managerr/internal/storage/db"
	"github.com/AbhaySingh4321/shop-managerr/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
	cleanups atomic.Int32
}

func newFakeConsumer() *fakeConsumer {
	return &fakeConsumer{handlers: make(map[string]mq.HandlerFunc)}
}

func (f *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if _, exists := f.handlers[topic]; exists {
		return fmt.Errorf("handler for topic %s already registered", topic)
	}
	f.handlers[topic] = handler
	return nil
}

func (f *fakeConsumer) Run(_ context.Context) (mq.CleanupFunc, error) {
	return func() { f.cleanups.Add(1) }, nil
}

type fakeProductRepo struct {
	repository.ProductRepository
}

func (f *fakeProductRepo) WithDB(_ db.DB) repository.ProductRepository { return f }
func (f *fakeProductRepo) ListAllProducts(_ context.Context) ([]model.Product, error) {
	return nil, nil
}

type fakeSaleRepo struct {
	repository.SaleRepository
}

func (f *fakeSaleRepo) WithDB(_ db.DB) repository.SaleRepository { return f }
func (f *fakeSaleRepo) ListAllSales(_ context.Context) ([]model.SaleRecord, error) {
	return nil, nil
}

type fakeRestockRepo struct {
	repository.RestockRepository
}

func (f *fakeRestockRepo) WithDB(_ db.DB) repository.RestockRepository { return f }
func (f *fakeRestockRepo) ListAllRestocks(_ context.Context) ([]model.RestockRecord, error) {
	return nil, nil
}

func newManager(consumer *fakeConsumer) *session.Manager {
	logger := slog.Default()
	reconciler := reconcile.New(logger, ledger.New(), &fakeProductRepo{}, &fakeSaleRepo{}, &fakeRestockRepo{})
	eventSvc := event.New(logger, consumer, reconciler)
	return session.NewManager(logger, eventSvc, reconciler)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Should subscribe one handler per table", func(t *testing.T) {
		consumer := newFakeConsumer()
		m := newManager(consumer)

		require.NoError(t, m.Start(ctx))
		assert.True(t, m.Active())
		assert.Len(t, consumer.handlers, len(event.Tables))
	})

	t.Run("Should refuse a second start", func(t *testing.T) {
		consumer := newFakeConsumer()
		m := newManager(consumer)

		require.NoError(t, m.Start(ctx))
		assert.ErrorIs(t, m.Start(ctx), apperr.SessionAlreadyActiveErr)
	})

	t.Run("Should release subscriptions exactly once", func(t *testing.T) {
		consumer := newFakeConsumer()
		m := newManager(consumer)

		require.NoError(t, m.Start(ctx))

		m.Stop(ctx)
		m.Stop(ctx)

		assert.False(t, m.Active())
		assert.Equal(t, int32(1), consumer.cleanups.Load())
	})

	t.Run("Should allow a fresh login after logout", func(t *testing.T) {
		consumer := newFakeConsumer()
		m := newManager(consumer)

		require.NoError(t, m.Start(ctx))
		m.Stop(ctx)

		// New cycle uses a fresh consumer, as a new connection would.
		m2 := newManager(newFakeConsumer())
		require.NoError(t, m2.Start(ctx))
		assert.True(t, m2.Active())
	})
}
