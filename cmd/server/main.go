package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-scout/internal/api"
	"github.com/stitts-dev/fpl-scout/internal/api/handlers"
	"github.com/stitts-dev/fpl-scout/internal/providers"
	"github.com/stitts-dev/fpl-scout/internal/services"
	"github.com/stitts-dev/fpl-scout/internal/session"
	"github.com/stitts-dev/fpl-scout/pkg/config"
	"github.com/stitts-dev/fpl-scout/pkg/database"
	"github.com/stitts-dev/fpl-scout/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	if cfg.IsProduction() && cfg.JWTSecret == config.DefaultJWTSecret {
		log.Fatal("JWT_SECRET must be set in production")
	}
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Narrative cache
	memCache := services.NewMemoryCache()
	var cache services.Cache = memCache
	if cfg.CacheBackend == "redis" {
		redisCache, err := services.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		cache = redisCache
	}

	// Upstream clients
	fplClient := providers.NewFPLClient(providers.FPLConfig{
		BaseURL:           cfg.FPLBaseURL,
		RequestsPerMinute: cfg.FPLRateLimit,
		CacheTTL:          cfg.FPLCacheTTL,
		Timeout:           cfg.ExternalAPITimeout,
		FailureThreshold:  cfg.CircuitBreakerThreshold,
	}, log)
	breakers := map[string]handlers.BreakerReporter{"fpl": fplClient}

	narrativeOpts := services.NarrativeOptions{TTL: cfg.NarrativeCacheTTL}
	store := services.NewAnalysisStore(db, log)
	narrativeOpts.Auditor = store
	if cfg.HasAI() {
		claude := services.NewClaudeClient(services.ClaudeConfig{
			APIKey:            cfg.AnthropicAPIKey,
			BaseURL:           cfg.AIBaseURL,
			Model:             cfg.AIModel,
			RequestsPerMinute: cfg.AIRateLimit,
			Timeout:           cfg.AITimeout,
		}, log)
		narrativeOpts.Generator = claude
		breakers["claude"] = claude
	} else {
		log.Info("ANTHROPIC_API_KEY not set, narratives use the rule-based scorer only")
	}

	// Initialize services
	hub := services.NewHub(log)
	go hub.Run(ctx)

	narratives := services.NewNarrativeService(cache, narrativeOpts, log)
	players := services.NewPlayerService(fplClient, services.PlayerServiceOptions{
		Recorder:    store,
		Broadcaster: hub,
	}, log)
	sessions := session.NewStore(cfg.SquadBudget, 0)

	if cfg.EnableBackgroundJobs {
		fetcher := services.NewDataFetcherService(players, cfg.FetchInterval(), services.DataFetcherOptions{
			Pruner:   store,
			Evicters: []services.Evicter{memCache, sessions},
		}, log)
		if err := fetcher.Start(); err != nil {
			log.Errorf("Failed to start data fetcher: %v", err)
		}
		defer fetcher.Stop()
	}

	router := api.NewRouter(api.Deps{
		Players:    players,
		Narratives: narratives,
		Sessions:   sessions,
		Hub:        hub,
		Breakers:   breakers,
		JWTSecret:  cfg.JWTSecret,
		Logger:     log,
	}, hub.HandleWebSocket)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	for _, route := range router.Routes() {
		log.Debugf("%s %s", route.Method, route.Path)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      corsHandler.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	stop()

	log.Info("Server exited")
}
