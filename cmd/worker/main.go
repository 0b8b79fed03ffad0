// cmd/worker/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/coldmail-tracker/internal/cache"
	"github.com/unclebandit/coldmail-tracker/internal/config"
	"github.com/unclebandit/coldmail-tracker/internal/db"
	"github.com/unclebandit/coldmail-tracker/internal/model"
	"github.com/unclebandit/coldmail-tracker/internal/pkg/logger"
	"github.com/unclebandit/coldmail-tracker/internal/queue"
	"github.com/unclebandit/coldmail-tracker/internal/repository"
	"github.com/unclebandit/coldmail-tracker/internal/service"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.RedactPII)
	log := logger.WithComponent("worker")

	if cfg.Queue.AMQPURL == "" || cfg.Redis.URL == "" {
		log.Fatal("worker needs both AMQP_URL and REDIS_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Init(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to DB")
	}
	defer conn.Close()

	rdb, err := cache.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Redis")
	}
	defer rdb.Close()

	mq, err := queue.DialAMQP(cfg.Queue.AMQPURL, cfg.Queue.Name)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to RabbitMQ")
	}
	defer mq.Close()

	events := make(chan model.EmailEvent, 64)
	worker := service.NewWorker(
		&repository.EmailRepository{DB: conn},
		cache.NewStatsCache(rdb, cfg.Redis.StatsKey, cfg.Redis.StatsTTL()),
		events,
	)

	if err := mq.Subscribe(queue.TopicEmailEvents, forwardEvents(ctx, events)); err != nil {
		log.WithError(err).Fatal("failed to register consumer")
	}

	go worker.Start(ctx)

	log.WithField("queue", cfg.Queue.Name).Info("worker running, waiting for events")
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case amqpErr := <-mq.NotifyClose():
		log.WithField("reason", amqpErr).Error("rabbitmq connection closed")
	}
}

// forwardEvents decodes broker deliveries and hands them to the worker.
// Undecodable messages are acked and dropped.
func forwardEvents(ctx context.Context, events chan<- model.EmailEvent) func(payload any) error {
	return func(payload any) error {
		ev, err := queue.DecodeEvent(payload)
		if err != nil {
			logrus.WithError(err).Warn("invalid event")
			return nil
		}
		select {
		case events <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
