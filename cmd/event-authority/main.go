package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jyasuu/ticket-master/internal/authority"
	"github.com/jyasuu/ticket-master/internal/broker"
	"github.com/jyasuu/ticket-master/internal/config"
	"github.com/jyasuu/ticket-master/internal/domain"
	"github.com/jyasuu/ticket-master/internal/observability"
	"github.com/jyasuu/ticket-master/internal/shutdown"
	"github.com/jyasuu/ticket-master/internal/store"
)

func main() {
	cfg, err := config.Load("event-authority")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint, "event-authority")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewServiceLogger("event-authority")

	areas, err := store.OpenBadger[domain.AreaStatus](cfg.StateDir, domain.TableAreaStatus)
	if err != nil {
		log.Fatalf("failed to open area status store: %v", err)
	}
	results, err := store.OpenBadger[domain.ReservationResult](cfg.StateDir, domain.TableAllocations)
	if err != nil {
		log.Fatalf("failed to open allocations store: %v", err)
	}

	producer := broker.NewProducer(cfg.Brokers, logger)

	createEvents := broker.NewConsumer(cfg.Brokers, cfg.GroupID, domain.TopicCreateEvent)
	defer createEvents.Close()
	reserveSeats := broker.NewConsumer(cfg.Brokers, cfg.GroupID, domain.TopicReserveSeat)
	defer reserveSeats.Close()

	service := authority.New(areas, results, producer, logger)

	runner := broker.NewRunner(logger)
	service.Register(runner, createEvents, reserveSeats)

	coordinator := shutdown.NewCoordinator(cfg.ShutdownTimeout, logger)
	coordinator.Register("producer", producer.Flush)
	coordinator.Register("area-status-store", func(context.Context) error { return areas.Flush() })
	coordinator.Register("allocations-store", func(context.Context) error { return results.Flush() })

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
		logger.Info("Shutdown event authority")
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
	areas.Close()
	results.Close()
}
