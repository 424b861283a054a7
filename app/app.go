package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bookstore-service/bookstore/config"
	"github.com/bookstore-service/bookstore/internal/handler"
	"github.com/bookstore-service/bookstore/internal/notify"
	"github.com/bookstore-service/bookstore/internal/repository"
	"github.com/bookstore-service/bookstore/internal/server"
	authsvc "github.com/bookstore-service/bookstore/internal/service/auth"
	"github.com/bookstore-service/bookstore/internal/service/borrow"
	"github.com/bookstore-service/bookstore/internal/service/inventory"
	"github.com/bookstore-service/bookstore/internal/service/notification"
	"github.com/bookstore-service/bookstore/migrations"
	"github.com/bookstore-service/bookstore/pkg/kafka"
	"github.com/bookstore-service/bookstore/pkg/logger"
	"github.com/bookstore-service/bookstore/pkg/postgres"
	"github.com/bookstore-service/bookstore/pkg/redis"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "bookstore")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	cache, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("redis init", zap.Error(err))
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Fatal("kafka.NewProducer", zap.Error(err))
	}
	sink := notify.NewPublisher(producer, log)

	borrowSvc := borrow.NewService(
		borrow.Config{LoanPeriod: cfg.Borrow.LoanPeriod},
		repo, sink, borrow.NewSystemClock(), log,
	)
	inventorySvc := inventory.NewService(repo, cache, log)
	authSvc := authsvc.NewService(authsvc.Config{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
	}, repo, log)
	notificationSvc := notification.NewService(repo, log)

	consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.NotificationsConsumerGroup)
	if err != nil {
		log.Fatal("kafka.NewConsumer", zap.Error(err))
	}
	go kafka.Consume(ctx, consumer, handler.NewConsumer(notificationSvc.RecordEvent, log), kafka.NotificationsTopic, log)

	h := handler.New(borrowSvc, inventorySvc, authSvc, notificationSvc, []byte(cfg.Auth.JWTSecret), log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	cancel()
	if err := consumer.Close(); err != nil {
		log.Error("consumer.Close", zap.Error(err))
	}
	if err := producer.Close(); err != nil {
		log.Error("producer.Close", zap.Error(err))
	}
	if err := cache.Close(); err != nil {
		log.Error("cache.Close", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
