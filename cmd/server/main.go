// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/coldmail-tracker/internal/cache"
	"github.com/unclebandit/coldmail-tracker/internal/config"
	"github.com/unclebandit/coldmail-tracker/internal/controller"
	"github.com/unclebandit/coldmail-tracker/internal/db"
	"github.com/unclebandit/coldmail-tracker/internal/handler"
	"github.com/unclebandit/coldmail-tracker/internal/pkg/logger"
	"github.com/unclebandit/coldmail-tracker/internal/queue"
	"github.com/unclebandit/coldmail-tracker/internal/repository"
	"github.com/unclebandit/coldmail-tracker/internal/router"
	"github.com/unclebandit/coldmail-tracker/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	memory := flag.Bool("memory", false, "keep records in process memory instead of Postgres")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.RedactPII)
	log := logger.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Record store
	var repo repository.EmailRepositoryInterface
	if *memory {
		log.Warn("using in-memory store, records are lost on exit")
		repo = repository.NewMemoryEmailRepository()
	} else {
		conn, err := db.Init(cfg.Database)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to DB")
		}
		defer conn.Close()
		if cfg.Database.Migrate {
			if err := db.Migrate(ctx, conn); err != nil {
				log.WithError(err).Fatal("failed to migrate schema")
			}
		}
		repo = &repository.EmailRepository{DB: conn}
	}

	// In-process events: audit log, plus RabbitMQ when configured
	q := queue.NewInMemoryQueue()
	if err := queue.StartAuditLogSubscriber(q); err != nil {
		log.WithError(err).Fatal("failed to subscribe audit log")
	}
	if cfg.Queue.AMQPURL != "" {
		mq, err := queue.DialAMQP(cfg.Queue.AMQPURL, cfg.Queue.Name)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to RabbitMQ")
		}
		defer mq.Close()
		if err := queue.StartEventForwarder(q, mq); err != nil {
			log.WithError(err).Fatal("failed to start event forwarder")
		}
		log.WithField("queue", cfg.Queue.Name).Info("publishing email events to RabbitMQ")
	}

	svc := &service.EmailService{
		EmailRepo: repo,
		Queue:     q,
	}

	// Optional stats snapshot
	if cfg.Redis.URL != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, stats are computed per request")
		} else {
			defer rdb.Close()
			svc.Cache = cache.NewStatsCache(rdb, cfg.Redis.StatsKey, cfg.Redis.StatsTTL())
		}
	}

	r := router.New(
		&controller.EmailController{EmailService: svc},
		handler.NewEmailHandler(svc),
		router.Options{
			PathPrefix:     cfg.Server.PathPrefix,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AccessLog:      true,
		},
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
