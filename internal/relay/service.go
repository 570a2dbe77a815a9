// Package relay drains the outbox table and publishes pending change
// notifications to the message queue. It is the only bridge between the
// store's transactional writes and the change feed the sessions consume.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AbhaySingh4321/shop-managerr/internal/config"
	"github.com/AbhaySingh4321/shop-managerr/internal/repository"
	"github.com/AbhaySingh4321/shop-managerr/internal/storage/db"
	"github.com/AbhaySingh4321/shop-managerr/internal/storage/mq"
	"github.com/AbhaySingh4321/shop-managerr/pkg/ptr"
)

type Service struct {
	cfg           config.Relay
	logger        *slog.Logger
	db            db.DB
	outboxMsgRepo repository.OutboxMsgRepository
	mqProducer    mq.Producer

	stopChan chan struct{}
}

func NewService(
	cfg config.Relay,
	logger *slog.Logger,
	db db.DB,
	outboxMsgRepo repository.OutboxMsgRepository,
	mqProducer mq.Producer,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        logger.With(slog.String("service", "relay")),
		db:            db,
		outboxMsgRepo: outboxMsgRepo,
		mqProducer:    mqProducer,
		stopChan:      make(chan struct{}),
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.run(ctx)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
		}
	}
}

func (s *Service) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-time.After(s.cfg.Interval):
			if err := s.relayBatch(ctx); err != nil {
				s.logger.ErrorContext(ctx, "error relaying outbox msgs", slog.Any("error", err))
			}
		}
	}
}

// relayBatch publishes one batch of unprocessed messages and marks them
// processed in the same transaction that selected them (FOR UPDATE SKIP
// LOCKED), so concurrent relays never double-publish a message.
func (s *Service) relayBatch(ctx context.Context) error {
	return s.db.WithTx(ctx, func(tx db.DB) error {
		repo := s.outboxMsgRepo.WithDB(tx)

		msgs, err := repo.ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{
			//nolint:gosec
			BatchSize: int32(s.cfg.BatchSize),
		})
		if err != nil {
			return fmt.Errorf("list unprocessed outbox msgs: %w", err)
		}

		if len(msgs) == 0 {
			return nil
		}

		s.logger.InfoContext(ctx, "relaying outbox msgs", slog.Int("count", len(msgs)))

		items := make([]repository.BulkUpdateOutboxMsgsItem, 0, len(msgs))
		for _, msg := range msgs {
			item := repository.BulkUpdateOutboxMsgsItem{ID: msg.ID}

			if err := s.mqProducer.Produce(ctx, mq.ProduceMsg{
				Topic:        msg.Topic,
				Headers:      msg.Headers,
				Payload:      msg.Payload,
				PartitionKey: msg.PartitionKey,
			}); err != nil {
				s.logger.ErrorContext(ctx, "error producing message",
					slog.String("outbox_msg_id", msg.ID.String()),
					slog.String("topic", msg.Topic),
					slog.Any("error", err),
				)
				item.Error = ptr.New(err.Error())
			}

			items = append(items, item)
		}

		if err := repo.BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
			Items: items,
		}); err != nil {
			return fmt.Errorf("bulk update outbox msgs: %w", err)
		}

		return nil
	})
}
