// migrate applies the embedded Postgres schema. It is safe to run on every
// deploy.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/pflag"

	"github.com/GregMSThompson/wifi-access-backend/internal/store"
	"github.com/GregMSThompson/wifi-access-backend/pkg/logger"
)

func main() {
	var databaseURL string
	var timeout time.Duration
	var printOnly bool

	flagSet := pflag.NewFlagSet("migrate", pflag.ExitOnError)
	flagSet.StringVar(&databaseURL, "database-url", os.Getenv("DATABASEURL"), "postgres connection string (default $DATABASEURL)")
	flagSet.DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")
	flagSet.BoolVar(&printOnly, "print", false, "print the schema and exit")
	_ = flagSet.Parse(os.Args[1:])

	if printOnly {
		fmt.Print(store.Schema)
		return
	}

	log := logger.New(os.Getenv("LOGLEVEL"), logger.NewCloudRunHandler)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := migrate(ctx, databaseURL); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("schema applied")
}

func migrate(ctx context.Context, databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("database url is required")
	}
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, store.Schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
