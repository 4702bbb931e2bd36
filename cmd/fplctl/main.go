// Command fplctl queries the FPL feed from the terminal.
//
// Usage:
//
//	fplctl recommend
//	fplctl analyze 328
//	fplctl filter --position MID --max-price 8 --sort predPts_gw --limit 10
//	fplctl migrate up
//	fplctl token --subject ops --ttl 24h
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stitts-dev/fpl-scout/internal/providers"
	"github.com/stitts-dev/fpl-scout/internal/services"
	"github.com/stitts-dev/fpl-scout/pkg/config"
	"github.com/stitts-dev/fpl-scout/pkg/logger"
)

func main() {
	root := &cobra.Command{
		Use:          "fplctl",
		Short:        "Fantasy Premier League scouting CLI",
		SilenceUsage: true,
	}

	root.AddCommand(recommendCmd())
	root.AddCommand(analyzeCmd())
	root.AddCommand(filterCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(tokenCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every feed-backed command needs.
type env struct {
	cfg     *config.Config
	log     *logrus.Logger
	players *services.PlayerService
}

// runWithFeed loads config, builds the player service and loads the first
// snapshot before handing over. Ctrl-C cancels the context.
func runWithFeed(fn func(ctx context.Context, e *env) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logger.InitLogger(cfg.LogLevel, false)
	if cfg.LogLevel == "" {
		log.SetLevel(logrus.WarnLevel)
	}

	client := providers.NewFPLClient(providers.FPLConfig{
		BaseURL:           cfg.FPLBaseURL,
		RequestsPerMinute: cfg.FPLRateLimit,
		CacheTTL:          cfg.FPLCacheTTL,
		Timeout:           cfg.ExternalAPITimeout,
		FailureThreshold:  cfg.CircuitBreakerThreshold,
	}, log)
	players := services.NewPlayerService(client, services.PlayerServiceOptions{}, log)
	if err := players.EnsureLoaded(ctx); err != nil {
		return err
	}
	return fn(ctx, &env{cfg: cfg, log: log, players: players})
}
