// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/unclebandit/coldmail-tracker/internal/config"
)

// Init opens the PostgreSQL pool described by cfg and pings it. The caller owns the pool.
func Init(cfg config.DatabaseConfig) (*sql.DB, error) {
	logrus.WithFields(logrus.Fields{
		"db_host": cfg.Host,
		"db_name": cfg.Name,
		"db_user": cfg.User,
		"db_url":  cfg.URL != "",
	}).Info("connecting to database")

	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logrus.Info("connected to database")
	return conn, nil
}

// Schema creates the emails table and its indexes.
const Schema = `
CREATE TABLE IF NOT EXISTS emails (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    recipient_name  TEXT,
    recipient_email TEXT,
    company         TEXT,
    subject         TEXT,
    notes           TEXT,
    follow_up_date  DATE,
    status          TEXT NOT NULL DEFAULT 'sent',
    opened          BOOLEAN NOT NULL DEFAULT FALSE,
    replied         BOOLEAN NOT NULL DEFAULT FALSE,
    followed_up     BOOLEAN NOT NULL DEFAULT FALSE,
    linkedin        TEXT,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_emails_created_at ON emails (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_emails_status ON emails (status);
`

// Migrate applies Schema. It is idempotent.
func Migrate(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
