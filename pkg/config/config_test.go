package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MONGODB_URI", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "portfolio-analytics", cfg.ServiceName)
	assert.Equal(t, 5000, cfg.HTTP.Port)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "portfolio_analytics", cfg.Database.Name)
	assert.Equal(t, "demo-user", cfg.Portfolio.DemoUserID)
	assert.Equal(t, 180, cfg.Portfolio.SeedDays)
	assert.InDelta(t, 10000000.0, cfg.Portfolio.StartValue, 1e-9)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
service_name = "dashboard"

[http]
port = 9000

[database]
driver = "memory"

[portfolio]
seed_days = 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("APP_HTTP_PORT", "9100")
	t.Setenv("PORT", "")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dashboard", cfg.ServiceName)
	assert.Equal(t, 9100, cfg.HTTP.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.URI)
	assert.Equal(t, 30, cfg.Portfolio.SeedDays)
}

func TestLegacyPortOverride(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("MONGODB_URI", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:7777", cfg.HTTP.Addr())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServiceName: "svc",
			HTTP:        HTTPConfig{Port: 8080},
			Database:    DatabaseConfig{Driver: DriverMemory},
			Portfolio:   PortfolioConfig{DemoUserID: "demo-user", StartValue: 100, SeedDays: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing service", mutate: func(c *Config) { c.ServiceName = "" }, wantErr: "service_name"},
		{name: "bad port", mutate: func(c *Config) { c.HTTP.Port = 70000 }, wantErr: "invalid HTTP port"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: "unsupported database driver"},
		{name: "mongo without uri", mutate: func(c *Config) { c.Database.Driver = DriverMongo; c.Database.Name = "x" }, wantErr: "uri"},
		{name: "mysql without dsn", mutate: func(c *Config) { c.Database.Driver = DriverMySQL }, wantErr: "dsn"},
		{name: "kafka without brokers", mutate: func(c *Config) { c.Kafka.Enabled = true }, wantErr: "kafka brokers"},
		{name: "rate limit without redis", mutate: func(c *Config) { c.RateLimit = RateLimitConfig{Enabled: true, Rate: 10, Period: 1} }, wantErr: "requires redis"},
		{name: "rate limit zero rate", mutate: func(c *Config) {
			c.Redis.Enabled = true
			c.RateLimit = RateLimitConfig{Enabled: true, Period: 1}
		}, wantErr: "invalid rate limit"},
		{name: "one seed day", mutate: func(c *Config) { c.Portfolio.SeedDays = 1 }, wantErr: "seed_days"},
		{name: "zero start value", mutate: func(c *Config) { c.Portfolio.StartValue = 0 }, wantErr: "start_value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "dev", cfg.Environment)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
