package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jyasuu/ticket-master/internal/broker"
	"github.com/jyasuu/ticket-master/internal/config"
	"github.com/jyasuu/ticket-master/internal/domain"
	"github.com/jyasuu/ticket-master/internal/observability"
	"github.com/jyasuu/ticket-master/internal/orchestrator"
	"github.com/jyasuu/ticket-master/internal/shutdown"
	"github.com/jyasuu/ticket-master/internal/store"
)

func main() {
	cfg, err := config.Load("reservation-worker")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint, "reservation-worker")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewServiceLogger("reservation-worker")

	reservations, err := store.OpenBadger[domain.Reservation](cfg.StateDir, domain.TableReservations)
	if err != nil {
		log.Fatalf("failed to open reservations store: %v", err)
	}
	statusCache, err := store.OpenBadger[domain.AreaStatus](cfg.StateDir, domain.TableAreaStatusCache, store.WithTTL(cfg.CacheTTL))
	if err != nil {
		log.Fatalf("failed to open area status cache: %v", err)
	}

	producer := broker.NewProducer(cfg.Brokers, logger)

	creations := broker.NewConsumer(cfg.Brokers, cfg.GroupID, domain.TopicCreateReservation)
	defer creations.Close()
	results := broker.NewConsumer(cfg.Brokers, cfg.GroupID, domain.TopicReservationResult)
	defer results.Close()
	statuses := broker.NewConsumer(cfg.Brokers, cfg.GroupID, domain.TopicAreaStatus)
	defer statuses.Close()

	service := orchestrator.New(reservations, statusCache, producer, logger)

	runner := broker.NewRunner(logger)
	service.Register(runner, creations, results, statuses)

	coordinator := shutdown.NewCoordinator(cfg.ShutdownTimeout, logger)
	coordinator.Register("producer", producer.Flush)
	coordinator.Register("reservations-store", func(context.Context) error { return reservations.Flush() })
	coordinator.Register("area-status-cache", func(context.Context) error { return statusCache.Flush() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sig:
		logger.Info("Shutdown reservation worker")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			logger.WithError(err).Error("consumer runner stopped")
		}
	}

	if err := coordinator.Shutdown(); err != nil {
		logger.WithError(err).Error("drain and flush failed")
	}
	reservations.Close()
	statusCache.Close()
}
