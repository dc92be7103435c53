// Package config defines the top-level configuration for the simulation
// engine and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/alanyoungcy/tradesim/internal/engine"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by TRADESIM_* environment
// variables.
type Config struct {
	Exchange   ExchangeConfig   `toml:"exchange"`
	Simulation SimulationConfig `toml:"simulation"`
	Redis      RedisConfig      `toml:"redis"`
	Postgres   PostgresConfig   `toml:"postgres"`
	S3         S3Config         `toml:"s3"`
	Pipeline   PipelineConfig   `toml:"pipeline"`
	Server     ServerConfig     `toml:"server"`
	Request    RequestConfig    `toml:"request"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// ExchangeConfig holds the market data stream parameters.
type ExchangeConfig struct {
	WSURL  string `toml:"ws_url"`
	Symbol string `toml:"symbol"`
}

// FeeTierConfig is one maker/taker rate pair in the TOML file.
type FeeTierConfig struct {
	Maker float64 `toml:"maker"`
	Taker float64 `toml:"taker"`
}

// SimulationConfig holds the model coefficients. Zero values mean "use the
// engine default" so a minimal TOML file still produces a fully
// parameterized engine.
type SimulationConfig struct {
	ImpactExponent    float64 `toml:"impact_exponent"`
	PermanentImpact   float64 `toml:"permanent_impact"`
	TemporaryImpact   float64 `toml:"temporary_impact"`
	SlippageVolWeight float64 `toml:"slippage_vol_weight"`
	MakerBias         float64 `toml:"maker_bias"`
	MakerSizeWeight   float64 `toml:"maker_size_weight"`
	MakerLevelWeight  float64 `toml:"maker_level_weight"`
	MakerSpreadWeight float64 `toml:"maker_spread_weight"`
	VolatilityFloor   float64 `toml:"volatility_floor"`
	DepthLevels       int     `toml:"depth_levels"`
	TimeHorizon       float64 `toml:"time_horizon"`

	FeeTiers map[string]FeeTierConfig `toml:"fee_tiers"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// PipelineConfig holds background job parameters.
type PipelineConfig struct {
	ArchiveEnabled   bool     `toml:"archive_enabled"`
	ArchiveRetention duration `toml:"archive_retention"`
	ArchiveInterval  duration `toml:"archive_interval"`
}

// ServerConfig holds the HTTP API parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	RateLimit   int      `toml:"rate_limit"`
	RateWindow  duration `toml:"rate_window"`
}

// RequestConfig describes the one-shot simulation run in "simulate" mode.
type RequestConfig struct {
	Side        string  `toml:"side"`
	SizeUSD     float64 `toml:"size_usd"`
	Volatility  float64 `toml:"volatility"`
	FeeTier     string  `toml:"fee_tier"`
	TimeHorizon float64 `toml:"time_horizon"`
}

// duration wraps time.Duration so the TOML decoder can parse strings like
// "5m" or "30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the built-in configuration: a BTCUSDT partial depth
// stream, the documented model defaults, and every optional backend
// disabled.
func Defaults() Config {
	eng := engine.DefaultConfig()

	tiers := make(map[string]FeeTierConfig, len(eng.FeeTiers))
	for name, rate := range eng.FeeTiers {
		tiers[name] = FeeTierConfig{Maker: rate.Maker, Taker: rate.Taker}
	}

	return Config{
		Exchange: ExchangeConfig{
			WSURL:  "wss://stream.binance.com:9443/ws/btcusdt@depth20@100ms",
			Symbol: "BTCUSDT",
		},
		Simulation: SimulationConfig{
			ImpactExponent:    eng.ImpactExponent,
			PermanentImpact:   eng.PermanentImpact,
			TemporaryImpact:   eng.TemporaryImpact,
			SlippageVolWeight: eng.SlippageVolWeight,
			MakerBias:         eng.MakerBias,
			MakerSizeWeight:   eng.MakerSizeWeight,
			MakerLevelWeight:  eng.MakerLevelWeight,
			MakerSpreadWeight: eng.MakerSpreadWeight,
			VolatilityFloor:   eng.VolatilityFloor,
			DepthLevels:       eng.DepthLevels,
			TimeHorizon:       eng.TimeHorizon,
			FeeTiers:          tiers,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "tradesim",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "tradesim-archive",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Pipeline: PipelineConfig{
			ArchiveEnabled:   false,
			ArchiveRetention: duration{30 * 24 * time.Hour},
			ArchiveInterval:  duration{6 * time.Hour},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   0,
			RateWindow:  duration{time.Second},
		},
		Request: RequestConfig{
			Side:       "buy",
			SizeUSD:    10000,
			Volatility: 0.02,
			FeeTier:    "tier1",
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// EngineConfig converts the simulation section into an engine.Config,
// falling back to the engine defaults for any zero-valued coefficient.
func (c *Config) EngineConfig() engine.Config {
	eng := engine.DefaultConfig()
	s := c.Simulation

	if s.ImpactExponent > 0 {
		eng.ImpactExponent = s.ImpactExponent
	}
	if s.PermanentImpact > 0 {
		eng.PermanentImpact = s.PermanentImpact
	}
	if s.TemporaryImpact > 0 {
		eng.TemporaryImpact = s.TemporaryImpact
	}
	if s.SlippageVolWeight > 0 {
		eng.SlippageVolWeight = s.SlippageVolWeight
	}
	if s.MakerBias != 0 {
		eng.MakerBias = s.MakerBias
	}
	if s.MakerSizeWeight > 0 {
		eng.MakerSizeWeight = s.MakerSizeWeight
	}
	if s.MakerLevelWeight > 0 {
		eng.MakerLevelWeight = s.MakerLevelWeight
	}
	if s.MakerSpreadWeight > 0 {
		eng.MakerSpreadWeight = s.MakerSpreadWeight
	}
	if s.VolatilityFloor > 0 {
		eng.VolatilityFloor = s.VolatilityFloor
	}
	if s.DepthLevels > 0 {
		eng.DepthLevels = s.DepthLevels
	}
	if s.TimeHorizon > 0 {
		eng.TimeHorizon = s.TimeHorizon
	}

	if len(s.FeeTiers) > 0 {
		tiers := make(map[string]engine.FeeRate, len(s.FeeTiers))
		for name, rate := range s.FeeTiers {
			tiers[strings.ToLower(name)] = engine.FeeRate{Maker: rate.Maker, Taker: rate.Taker}
		}
		eng.FeeTiers = tiers
	}

	return eng
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve":    true,
	"simulate": true,
	"archive":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and
// returns a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, simulate, archive)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Exchange
	if c.Exchange.WSURL == "" {
		errs = append(errs, "exchange: ws_url must not be empty")
	}
	if c.Exchange.Symbol == "" {
		errs = append(errs, "exchange: symbol must not be empty")
	}

	// Simulation — delegate coefficient checks to the engine.
	if err := c.EngineConfig().Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Pipeline
	if c.Pipeline.ArchiveEnabled {
		if !c.Postgres.Enabled || !c.S3.Enabled {
			errs = append(errs, "pipeline: archiving requires both postgres and s3 to be enabled")
		}
		if c.Pipeline.ArchiveRetention.Duration <= 0 {
			errs = append(errs, "pipeline: archive_retention must be > 0")
		}
		if c.Pipeline.ArchiveInterval.Duration <= 0 {
			errs = append(errs, "pipeline: archive_interval must be > 0")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit > 0 {
			if !c.Redis.Enabled {
				errs = append(errs, "server: rate limiting requires redis to be enabled")
			}
			if c.Server.RateWindow.Duration <= 0 {
				errs = append(errs, "server: rate_window must be > 0 when rate_limit is set")
			}
		}
	}

	// Request — only meaningful in simulate mode.
	if strings.ToLower(c.Mode) == "simulate" {
		if c.Request.Side != "buy" && c.Request.Side != "sell" {
			errs = append(errs, fmt.Sprintf("request: side must be buy or sell, got %q", c.Request.Side))
		}
		if c.Request.SizeUSD <= 0 {
			errs = append(errs, "request: size_usd must be > 0")
		}
		if c.Request.Volatility < 0 || c.Request.Volatility > 1 {
			errs = append(errs, "request: volatility must be in [0, 1]")
		}
		if c.Request.FeeTier == "" {
			errs = append(errs, "request: fee_tier must not be empty")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
