package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/AbhaySingh4321/shop-managerr/internal/storage/mq"
)

// Reconciler refreshes the local mirror for one table after a remote change.
type Reconciler interface {
	Reconcile(ctx context.Context, table Table) error
}

// Service consumes the per-table change feeds and hands each notification to
// the reconciler.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
	reconciler Reconciler
}

// New creates a new change-feed event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	reconciler Reconciler,
) *Service {
	return &Service{
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
		reconciler: reconciler,
	}
}

type CleanupFunc func()

// Run subscribes one handler per table and starts consuming. The returned
// cleanup releases all subscriptions.
func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	for _, table := range Tables {
		table := table
		if err := s.mqConsumer.RegisterHandler(
			table.Topic(),
			func(ctx context.Context, topic string, payload []byte) error {
				var ev TableChangedEvent
				if err := json.Unmarshal(payload, &ev); err != nil {
					return fmt.Errorf("unmarshal table changed event: %w", err)
				}

				s.logger.DebugContext(ctx, "table changed",
					slog.String("table", string(ev.Table)),
				)

				if err := s.reconciler.Reconcile(ctx, table); err != nil {
					return fmt.Errorf("reconcile table %s: %w", table, err)
				}

				return nil
			},
		); err != nil {
			return nil, fmt.Errorf("register handler for table %s: %w", table, err)
		}
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	return CleanupFunc(mqCleanup), nil
}
