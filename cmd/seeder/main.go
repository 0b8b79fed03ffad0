// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/coldmail-tracker/internal/config"
	"github.com/unclebandit/coldmail-tracker/internal/db"
	"github.com/unclebandit/coldmail-tracker/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	logger.Setup(cfg.Log.Level, false)
	log := logger.WithComponent("seeder")

	conn, err := db.Init(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to DB")
	}
	defer conn.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, conn); err != nil {
		log.WithError(err).Fatal("failed to migrate schema")
	}

	seedFiles := flag.Args()
	if len(seedFiles) == 0 {
		seedFiles = []string{"seed/emails.sql"}
	}

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			log.WithError(err).Fatalf("failed to read %s", file)
		}

		if _, err := conn.ExecContext(ctx, string(content)); err != nil {
			log.WithError(err).Fatalf("failed to execute %s", file)
		}
		log.WithField("file", file).Info("seeded")
	}

	log.Info("database seeding completed successfully")
}
