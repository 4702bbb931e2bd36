package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-scout/pkg/config"
	"github.com/stitts-dev/fpl-scout/pkg/database"
)

var errUsage = errors.New("usage: migrate [up|down]")

func main() {
	if err := run(os.Args[1:]); err != nil {
		logrus.Fatal(err)
	}
}

func run(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	command := args[0]
	if command != "up" && command != "down" {
		return fmt.Errorf("unknown command %q: %w", command, errUsage)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	switch command {
	case "up":
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := database.DropAll(db); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
		logrus.Info("Tables dropped successfully")
	}
	return nil
}
