package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "github.com/jyasuu/ticket-master/internal/adapters/mongo"
	"github.com/jyasuu/ticket-master/internal/broker"
	"github.com/jyasuu/ticket-master/internal/config"
	"github.com/jyasuu/ticket-master/internal/domain"
	"github.com/jyasuu/ticket-master/internal/gateway"
	"github.com/jyasuu/ticket-master/internal/observability"
	"github.com/jyasuu/ticket-master/internal/shutdown"
	"github.com/jyasuu/ticket-master/internal/store"
)

func main() {
	cfg, err := config.Load("gateway")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint, "gateway")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewServiceLogger("gateway")

	reservations, err := store.OpenBadger[domain.Reservation](cfg.StateDir, domain.TableReservationView)
	if err != nil {
		log.Fatalf("failed to open reservation view store: %v", err)
	}
	areas, err := store.OpenBadger[domain.AreaStatus](cfg.StateDir, domain.TableAreaStatusCache, store.WithTTL(cfg.CacheTTL))
	if err != nil {
		log.Fatalf("failed to open area status cache: %v", err)
	}

	producer := broker.NewProducer(cfg.Brokers, logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	idemp := gateway.NewIdempotency(redisClient, time.Hour)
	rl := gateway.NewRateLimiter(redisClient)

	var audit *mongoadapter.AuditLogger
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())
		audit = mongoadapter.NewAuditLogger(mongoClient.Database("ticketmaster"), logger)
	}

	handlers := gateway.NewHandlers(producer, reservations, areas, idemp, audit, logger)
	router := gateway.SetupRouter(handlers, logger, rl, cfg.RateLimitPerMin)

	userReservations := broker.NewConsumer(cfg.Brokers, cfg.GroupID, domain.TopicUserReservation)
	defer userReservations.Close()
	areaStatuses := broker.NewConsumer(cfg.Brokers, cfg.GroupID, domain.TopicAreaStatus)
	defer areaStatuses.Close()

	readModel := gateway.NewReadModel(reservations, areas)
	runner := broker.NewRunner(logger)
	readModel.Register(runner, userReservations, areaStatuses)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runnerDone := make(chan error, 1)
	go func() {
		runnerDone <- runner.Run(ctx)
	}()

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown gateway")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}

	cancel()
	<-runnerDone

	coordinator := shutdown.NewCoordinator(cfg.ShutdownTimeout, logger)
	coordinator.Register("producer", producer.Flush)
	coordinator.Register("reservation-view", func(context.Context) error { return reservations.Flush() })
	coordinator.Register("area-status-cache", func(context.Context) error { return areas.Flush() })
	if err := coordinator.Shutdown(); err != nil {
		logger.WithError(err).Error("drain and flush failed")
	}
	reservations.Close()
	areas.Close()
}
