package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown mode", func(c *Config) { c.Mode = "turbo" }, "unknown mode"},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"empty ws url", func(c *Config) { c.Exchange.WSURL = "" }, "ws_url"},
		{"empty symbol", func(c *Config) { c.Exchange.Symbol = "" }, "symbol"},
		{"bad server port", func(c *Config) { c.Server.Port = 70000 }, "port"},
		{
			"rate limit without redis",
			func(c *Config) { c.Server.RateLimit = 10 },
			"rate limiting requires redis",
		},
		{
			"archive without backends",
			func(c *Config) { c.Pipeline.ArchiveEnabled = true },
			"requires both postgres and s3",
		},
		{
			"postgres pool inversion",
			func(c *Config) {
				c.Postgres.Enabled = true
				c.Postgres.PoolMinConns = 20
			},
			"pool_min_conns",
		},
		{
			"simulate mode bad side",
			func(c *Config) {
				c.Mode = "simulate"
				c.Request.Side = "hold"
			},
			"side must be buy or sell",
		},
		{
			"simulate mode zero size",
			func(c *Config) {
				c.Mode = "simulate"
				c.Request.SizeUSD = 0
			},
			"size_usd",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEngineConfigFallsBackToDefaults(t *testing.T) {
	cfg := Defaults()
	cfg.Simulation = SimulationConfig{} // everything zero

	eng := cfg.EngineConfig()
	require.NoError(t, eng.Validate())
	assert.Equal(t, 0.5, eng.ImpactExponent)
	assert.Equal(t, 10, eng.DepthLevels)
	assert.NotEmpty(t, eng.FeeTiers)
}

func TestEngineConfigOverrides(t *testing.T) {
	cfg := Defaults()
	cfg.Simulation.ImpactExponent = 0.7
	cfg.Simulation.DepthLevels = 25
	cfg.Simulation.FeeTiers = map[string]FeeTierConfig{
		"VIP": {Maker: 0.0001, Taker: 0.0002},
	}

	eng := cfg.EngineConfig()
	assert.Equal(t, 0.7, eng.ImpactExponent)
	assert.Equal(t, 25, eng.DepthLevels)

	// Tier names are normalized to lower case for lookup.
	rate, ok := eng.FeeTiers["vip"]
	require.True(t, ok)
	assert.Equal(t, 0.0001, rate.Maker)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRADESIM_EXCHANGE_SYMBOL", "ETHUSDT")
	t.Setenv("TRADESIM_SERVER_PORT", "9090")
	t.Setenv("TRADESIM_REDIS_ENABLED", "true")
	t.Setenv("TRADESIM_PIPELINE_ARCHIVE_RETENTION", "48h")
	t.Setenv("TRADESIM_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, "ETHUSDT", cfg.Exchange.Symbol)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 48*time.Hour, cfg.Pipeline.ArchiveRetention.Duration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestRedactedConfigHidesSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Password = "hunter2"
	cfg.Postgres.Password = "hunter2"
	cfg.Postgres.DSN = "postgres://u:p@h/db"
	cfg.S3.AccessKey = "AKIA123"
	cfg.S3.SecretKey = "shhh"
	cfg.Server.APIKey = "token"

	red := RedactedConfig(&cfg)

	assert.Equal(t, "***", red.Redis.Password)
	assert.Equal(t, "***", red.Postgres.Password)
	assert.Equal(t, "***", red.Postgres.DSN)
	assert.Equal(t, "***", red.S3.AccessKey)
	assert.Equal(t, "***", red.S3.SecretKey)
	assert.Equal(t, "***", red.Server.APIKey)

	// Original is untouched.
	assert.Equal(t, "hunter2", cfg.Redis.Password)

	// Empty secrets stay empty rather than becoming "***".
	clean := Defaults()
	redClean := RedactedConfig(&clean)
	assert.Empty(t, redClean.Redis.Password)
}
