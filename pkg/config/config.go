package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Database
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"` // "sqlite" or "postgres"
	DatabaseURL    string `mapstructure:"DATABASE_URL"`

	// Cache
	CacheBackend string `mapstructure:"CACHE_BACKEND"` // "memory" or "redis"
	RedisURL     string `mapstructure:"REDIS_URL"`

	// JWT
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// FPL feed
	FPLBaseURL        string        `mapstructure:"FPL_BASE_URL"`
	FPLRateLimit      int           `mapstructure:"FPL_RATE_LIMIT"` // requests per minute
	FPLCacheTTL       time.Duration `mapstructure:"FPL_CACHE_TTL"`
	DataFetchInterval string        `mapstructure:"DATA_FETCH_INTERVAL"`

	// AI narrative generation
	AnthropicAPIKey   string        `mapstructure:"ANTHROPIC_API_KEY"`
	AIModel           string        `mapstructure:"AI_MODEL"`
	AIBaseURL         string        `mapstructure:"AI_BASE_URL"`
	AIRateLimit       int           `mapstructure:"AI_RATE_LIMIT"` // requests per minute
	AITimeout         time.Duration `mapstructure:"AI_TIMEOUT"`
	NarrativeCacheTTL time.Duration `mapstructure:"NARRATIVE_CACHE_TTL"`

	// Squad
	SquadBudget float64 `mapstructure:"SQUAD_BUDGET"`

	// Resilience
	ExternalAPITimeout      time.Duration `mapstructure:"EXTERNAL_API_TIMEOUT"`
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`

	// Feature Flags
	EnableBackgroundJobs bool `mapstructure:"ENABLE_BACKGROUND_JOBS"`
}

// LoadConfig reads configuration from an optional .env file and the environment.
func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	setDefaults()

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultJWTSecret is the development fallback; production refuses it.
const DefaultJWTSecret = "your-secret-key"

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_URL", "fpl_scout.db")
	viper.SetDefault("CACHE_BACKEND", "memory")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("JWT_SECRET", DefaultJWTSecret)
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("FPL_BASE_URL", "https://fantasy.premierleague.com/api")
	viper.SetDefault("FPL_RATE_LIMIT", 30)
	viper.SetDefault("FPL_CACHE_TTL", "5m")
	viper.SetDefault("DATA_FETCH_INTERVAL", "30m")
	viper.SetDefault("ANTHROPIC_API_KEY", "")
	viper.SetDefault("AI_MODEL", "claude-sonnet-4-20250514")
	viper.SetDefault("AI_BASE_URL", "https://api.anthropic.com/v1")
	viper.SetDefault("AI_RATE_LIMIT", 20)
	viper.SetDefault("AI_TIMEOUT", "15s")
	viper.SetDefault("NARRATIVE_CACHE_TTL", "30m")
	viper.SetDefault("SQUAD_BUDGET", 100.0)
	viper.SetDefault("EXTERNAL_API_TIMEOUT", "10s")
	viper.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)
	viper.SetDefault("ENABLE_BACKGROUND_JOBS", true)
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.SquadBudget <= 0 {
		return fmt.Errorf("SQUAD_BUDGET must be positive, got %v", c.SquadBudget)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// HasAI reports whether an external narrative generator is configured.
func (c *Config) HasAI() bool {
	return c.AnthropicAPIKey != ""
}

// FetchInterval parses DataFetchInterval, falling back to 30 minutes.
func (c *Config) FetchInterval() time.Duration {
	d, err := time.ParseDuration(c.DataFetchInterval)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}
