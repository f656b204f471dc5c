package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/osse101/ItemForge_Go/internal/domain"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	LogDir      string
	ServiceName string
	Version     string
	Environment string

	// Store selection
	StoreBackend string
	DatabaseURL  string
	DBUser       string
	DBPassword   string
	DBHost       string
	DBPort       string
	DBName       string

	// Pool tuning
	DBMaxConns        int
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration

	// Security
	APIKey            string
	AdminAPIKey       string
	TrustedProxies    []string
	RequestsPerWindow int
	MaxBodyBytes      int64

	// Game data
	RNGServerSeed string
	CatalogPath   string
	PriceList     domain.PriceList
	CacheSize     int
	CacheTTL      time.Duration

	// Event system
	EventDeadLetterPath  string
	EventRetentionDays   int
	EventCleanupInterval time.Duration

	// Ground items
	GroundItemTTL       time.Duration
	GroundSweepInterval time.Duration

	// Trades
	TradeSessionLimit int
	TradeSessionTTL   time.Duration
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:   getEnv("LOG_FORMAT", DefaultLogFormat),
		LogDir:      getEnv("LOG_DIR", DefaultLogDir),
		ServiceName: getEnv("SERVICE_NAME", DefaultServiceName),
		Version:     getEnv("VERSION", DefaultVersion),
		Environment: getEnv("ENVIRONMENT", DefaultEnvironment),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreBackendPostgres)),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", "postgres"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBName:       getEnv("DB_NAME", "itemforge"),

		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdleTime),
		DBMaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime),

		APIKey:            getEnv("API_KEY", ""),
		AdminAPIKey:       getEnv("ADMIN_API_KEY", ""),
		TrustedProxies:    getEnvAsList("TRUSTED_PROXIES"),
		RequestsPerWindow: getEnvAsInt("REQUESTS_PER_WINDOW", DefaultRequestsPerWindow),
		MaxBodyBytes:      getEnvAsInt64("MAX_BODY_BYTES", DefaultMaxBodyBytes),

		RNGServerSeed: getEnv("RNG_SERVER_SEED", ""),
		CatalogPath:   getEnv("CATALOG_PATH", DefaultCatalogPath),
		PriceList:     loadPriceList(),
		CacheSize:     getEnvAsInt("TEMPLATE_CACHE_SIZE", DefaultCacheSize),
		CacheTTL:      getEnvAsDuration("TEMPLATE_CACHE_TTL", DefaultCacheTTL),

		EventDeadLetterPath:  getEnv("EVENT_DEADLETTER_PATH", DefaultDeadLetterPath),
		EventRetentionDays:   getEnvAsInt("EVENT_RETENTION_DAYS", DefaultEventRetentionDays),
		EventCleanupInterval: getEnvAsDuration("EVENT_CLEANUP_INTERVAL", DefaultEventCleanupInterval),

		GroundItemTTL:       getEnvAsDuration("GROUND_ITEM_TTL", DefaultGroundItemTTL),
		GroundSweepInterval: getEnvAsDuration("GROUND_SWEEP_INTERVAL", DefaultGroundSweepInterval),

		TradeSessionLimit: getEnvAsInt("TRADE_SESSION_LIMIT", DefaultTradeSessionLimit),
		TradeSessionTTL:   getEnvAsDuration("TRADE_SESSION_TTL", DefaultTradeSessionTTL),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	if port < 0 || port > maxPort {
		return nil, fmt.Errorf("invalid PORT value: %d out of range", port)
	}
	cfg.Port = port

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	switch cfg.StoreBackend {
	case StoreBackendPostgres, StoreBackendMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: must be %s or %s", cfg.StoreBackend, StoreBackendPostgres, StoreBackendMemory)
	}

	if err := validator.New().Struct(cfg.PriceList); err != nil {
		return nil, fmt.Errorf("invalid PL_* price list: %w", err)
	}

	return cfg, nil
}

// loadPriceList overlays PL_* variables onto the default price list
func loadPriceList() domain.PriceList {
	pl := domain.DefaultPriceList()
	pl.WeaponBasePrice = getEnvAsInt64("PL_WEAPON_BASE_PRICE", pl.WeaponBasePrice)
	pl.ArmourBasePrice = getEnvAsInt64("PL_ARMOUR_BASE_PRICE", pl.ArmourBasePrice)
	pl.JewelBasePrice = getEnvAsInt64("PL_JEWEL_BASE_PRICE", pl.JewelBasePrice)
	pl.MiscBasePrice = getEnvAsInt64("PL_MISC_BASE_PRICE", pl.MiscBasePrice)
	pl.BoxBasePrice = getEnvAsInt64("PL_BOX_BASE_PRICE", pl.BoxBasePrice)
	pl.RarityMultiplierPct = getEnvAsFloat("PL_RARITY_MULTIPLIER_PCT", pl.RarityMultiplierPct)
	pl.LevelMultiplierPct = getEnvAsFloat("PL_LEVEL_MULTIPLIER_PCT", pl.LevelMultiplierPct)
	pl.AddPointsMultiplierPct = getEnvAsFloat("PL_ADD_POINTS_MULTIPLIER_PCT", pl.AddPointsMultiplierPct)
	pl.LuckMultiplierPct = getEnvAsFloat("PL_LUCK_MULTIPLIER_PCT", pl.LuckMultiplierPct)
	pl.ExcMultiplierPct = getEnvAsFloat("PL_EXC_MULTIPLIER_PCT", pl.ExcMultiplierPct)
	pl.BuySellMultiplier = getEnvAsFloat("PL_BUY_SELL_MULTIPLIER", pl.BuySellMultiplier)
	return pl
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt parses an integer variable, falling back to the default on absence or parse failure
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration parses a Go duration string such as "10m"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated variable, dropping empty entries
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// UsesPostgres reports whether the durable store is selected
func (c *Config) UsesPostgres() bool {
	return c.StoreBackend == StoreBackendPostgres
}
