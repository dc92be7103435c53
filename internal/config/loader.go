package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies TRADESIM_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known TRADESIM_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Exchange ──
	setStr(&cfg.Exchange.WSURL, "TRADESIM_EXCHANGE_WS_URL")
	setStr(&cfg.Exchange.Symbol, "TRADESIM_EXCHANGE_SYMBOL")

	// ── Simulation ──
	setFloat64(&cfg.Simulation.ImpactExponent, "TRADESIM_SIMULATION_IMPACT_EXPONENT")
	setFloat64(&cfg.Simulation.PermanentImpact, "TRADESIM_SIMULATION_PERMANENT_IMPACT")
	setFloat64(&cfg.Simulation.TemporaryImpact, "TRADESIM_SIMULATION_TEMPORARY_IMPACT")
	setFloat64(&cfg.Simulation.SlippageVolWeight, "TRADESIM_SIMULATION_SLIPPAGE_VOL_WEIGHT")
	setFloat64(&cfg.Simulation.MakerBias, "TRADESIM_SIMULATION_MAKER_BIAS")
	setFloat64(&cfg.Simulation.MakerSizeWeight, "TRADESIM_SIMULATION_MAKER_SIZE_WEIGHT")
	setFloat64(&cfg.Simulation.MakerLevelWeight, "TRADESIM_SIMULATION_MAKER_LEVEL_WEIGHT")
	setFloat64(&cfg.Simulation.MakerSpreadWeight, "TRADESIM_SIMULATION_MAKER_SPREAD_WEIGHT")
	setFloat64(&cfg.Simulation.VolatilityFloor, "TRADESIM_SIMULATION_VOLATILITY_FLOOR")
	setInt(&cfg.Simulation.DepthLevels, "TRADESIM_SIMULATION_DEPTH_LEVELS")
	setFloat64(&cfg.Simulation.TimeHorizon, "TRADESIM_SIMULATION_TIME_HORIZON")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "TRADESIM_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "TRADESIM_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "TRADESIM_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "TRADESIM_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "TRADESIM_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "TRADESIM_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "TRADESIM_REDIS_TLS_ENABLED")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "TRADESIM_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "TRADESIM_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "TRADESIM_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "TRADESIM_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "TRADESIM_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "TRADESIM_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "TRADESIM_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "TRADESIM_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "TRADESIM_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "TRADESIM_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "TRADESIM_POSTGRES_RUN_MIGRATIONS")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "TRADESIM_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "TRADESIM_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "TRADESIM_S3_REGION")
	setStr(&cfg.S3.Bucket, "TRADESIM_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "TRADESIM_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "TRADESIM_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "TRADESIM_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "TRADESIM_S3_FORCE_PATH_STYLE")

	// ── Pipeline ──
	setBool(&cfg.Pipeline.ArchiveEnabled, "TRADESIM_PIPELINE_ARCHIVE_ENABLED")
	setDuration(&cfg.Pipeline.ArchiveRetention, "TRADESIM_PIPELINE_ARCHIVE_RETENTION")
	setDuration(&cfg.Pipeline.ArchiveInterval, "TRADESIM_PIPELINE_ARCHIVE_INTERVAL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "TRADESIM_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "TRADESIM_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "TRADESIM_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "TRADESIM_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "TRADESIM_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "TRADESIM_SERVER_RATE_WINDOW")

	// ── Request ──
	setStr(&cfg.Request.Side, "TRADESIM_REQUEST_SIDE")
	setFloat64(&cfg.Request.SizeUSD, "TRADESIM_REQUEST_SIZE_USD")
	setFloat64(&cfg.Request.Volatility, "TRADESIM_REQUEST_VOLATILITY")
	setStr(&cfg.Request.FeeTier, "TRADESIM_REQUEST_FEE_TIER")
	setFloat64(&cfg.Request.TimeHorizon, "TRADESIM_REQUEST_TIME_HORIZON")

	// ── Top-level ──
	setStr(&cfg.Mode, "TRADESIM_MODE")
	setStr(&cfg.LogLevel, "TRADESIM_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
