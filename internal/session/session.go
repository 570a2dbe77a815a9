// Package session ties the change-feed subscriptions and the mirror lifecycle
// to a login/logout cycle. Identity itself is external; a session only cares
// that a user became present or absent.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/AbhaySingh4321/shop-managerr/internal/apperr"
	"github.com/AbhaySingh4321/shop-managerr/internal/event"
	"github.com/AbhaySingh4321/shop-managerr/internal/reconcile"
)

// Manager starts listeners exactly once per login and tears them down exactly
// once per logout, so a flapping auth state can never leave duplicate handlers
// behind.
type Manager struct {
	logger     *slog.Logger
	eventSvc   *event.Service
	reconciler *reconcile.Reconciler

	mu      sync.Mutex
	cleanup func()
}

func NewManager(
	logger *slog.Logger,
	eventSvc *event.Service,
	reconciler *reconcile.Reconciler,
) *Manager {
	return &Manager{
		logger:     logger.With(slog.String("service", "session")),
		eventSvc:   eventSvc,
		reconciler: reconciler,
	}
}

// Start rebuilds the mirror from the store and subscribes the per-table
// change-feed handlers. Starting an already-started session fails instead of
// stacking a second set of handlers.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cleanup != nil {
		return apperr.SessionAlreadyActiveErr
	}

	if err := m.reconciler.SyncAll(ctx); err != nil {
		return fmt.Errorf("initial mirror sync: %w", err)
	}

	eventCleanup, err := m.eventSvc.Run(ctx)
	if err != nil {
		return fmt.Errorf("run event service: %w", err)
	}

	var once sync.Once
	m.cleanup = func() {
		once.Do(func() {
			eventCleanup()
		})
	}

	m.logger.InfoContext(ctx, "session started, change-feed listeners subscribed")
	return nil
}

// Stop releases the subscriptions. Stopping an inactive session is a no-op,
// and a double Stop releases only once.
func (m *Manager) Stop(ctx context.Context) {
	m.mu.Lock()
	cleanup := m.cleanup
	m.cleanup = nil
	m.mu.Unlock()

	if cleanup == nil {
		return
	}

	cleanup()
	m.logger.InfoContext(ctx, "session stopped, change-feed listeners released")
}

// Active reports whether listeners are currently subscribed.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanup != nil
}
