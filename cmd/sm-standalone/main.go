package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/AbhaySingh4321/shop-managerr/internal/config"
	"github.com/AbhaySingh4321/shop-managerr/internal/event"
	"github.com/AbhaySingh4321/shop-managerr/internal/http"
	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
	"github.com/AbhaySingh4321/shop-managerr/internal/log"
	"github.com/AbhaySingh4321/shop-managerr/internal/reconcile"
	"github.com/AbhaySingh4321/shop-managerr/internal/relay"
	"github.com/AbhaySingh4321/shop-managerr/internal/repository"
	"github.com/AbhaySingh4321/shop-managerr/internal/service"
	"github.com/AbhaySingh4321/shop-managerr/internal/session"
	"github.com/AbhaySingh4321/shop-managerr/internal/storage/db"
	"github.com/AbhaySingh4321/shop-managerr/internal/storage/mq"
	"github.com/AbhaySingh4321/shop-managerr/internal/telemetry"
	"github.com/AbhaySingh4321/shop-managerr/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Relay    config.Relay
		Kafka    config.Kafka
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	productRepository := repository.NewProductRepository(dbClient)
	saleRepository := repository.NewSaleRepository(dbClient)
	restockRepository := repository.NewRestockRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	stockLedger := ledger.New()
	reconciler := reconcile.New(logger, stockLedger, productRepository, saleRepository, restockRepository)
	eventService := event.New(logger, kafkaConsumer, reconciler)
	sessionManager := session.NewManager(logger, eventService, reconciler)

	inventoryService := service.NewInventoryService(
		logger, dbClient, stockLedger,
		productRepository, saleRepository, restockRepository, outboxMsgRepository,
	)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		if err := sessionManager.Start(ctx); err != nil {
			panic(fmt.Errorf("error starting session: %w", err))
		}
		logger.InfoContext(ctx, "session started")

		<-interruptChan

		logger.InfoContext(ctx, "session is shutting down")
		sessionManager.Stop(ctx)

		logger.InfoContext(ctx, "session is stopped")
	})

	wg.Go(func() {
		svc, err := http.New(cfg.HTTP, logger, stockLedger, inventoryService)
		if err != nil {
			panic(fmt.Errorf("error creating http service: %w", err))
		}
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return nil
}
