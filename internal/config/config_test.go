package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
server:
  addr: ":9000"
store:
  backend: postgres
  app_table: ghosts-app
  cache_table: ghosts-cache
database:
  host: localhost
  port: 5432
  name: phantom
  user: phantom
  password: phantom
market_data:
  key_id: key
  secret_key: secret
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9000")
	}
	if cfg.Store.Backend != BackendPostgres {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendPostgres)
	}
	if cfg.Store.AppTable != "ghosts-app" {
		t.Errorf("Store.AppTable = %q, want %q", cfg.Store.AppTable, "ghosts-app")
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
	if cfg.MarketData.KeyID != "key" {
		t.Errorf("MarketData.KeyID = %q, want %q", cfg.MarketData.KeyID, "key")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_ALPACA_SECRET", "secret123")
	t.Setenv("APP_TABLE_NAME", "phantom-app-prod")

	yaml := `
store:
  backend: dynamodb
  app_table: ${APP_TABLE_NAME}
market_data:
  key_id: key
  secret_key: ${TEST_ALPACA_SECRET}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MarketData.SecretKey != "secret123" {
		t.Errorf("MarketData.SecretKey = %q, want %q", cfg.MarketData.SecretKey, "secret123")
	}
	if cfg.Store.AppTable != "phantom-app-prod" {
		t.Errorf("Store.AppTable = %q, want %q", cfg.Store.AppTable, "phantom-app-prod")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
auth:
  jwt_secret: s3cret
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Store.Backend != DefaultBackend {
		t.Errorf("Store.Backend = %q, want default %q", cfg.Store.Backend, DefaultBackend)
	}
	if cfg.Store.AppTable != DefaultAppTable || cfg.Store.CacheTable != DefaultCacheTable {
		t.Errorf("tables = (%q, %q), want defaults", cfg.Store.AppTable, cfg.Store.CacheTable)
	}
	if cfg.MarketData.DataURL != DefaultDataURL {
		t.Errorf("MarketData.DataURL = %q, want default %q", cfg.MarketData.DataURL, DefaultDataURL)
	}
	if cfg.MarketData.MaxRetries != 0 {
		t.Errorf("MarketData.MaxRetries = %d, want 0", cfg.MarketData.MaxRetries)
	}
	if cfg.Pricing.QuoteTTL != 15*time.Second {
		t.Errorf("Pricing.QuoteTTL = %v, want 15s", cfg.Pricing.QuoteTTL)
	}
	if cfg.Pricing.TimeSeriesTTL != 6*time.Hour {
		t.Errorf("Pricing.TimeSeriesTTL = %v, want 6h", cfg.Pricing.TimeSeriesTTL)
	}
	if cfg.Pricing.HistoricalLookbackDays != 365 {
		t.Errorf("Pricing.HistoricalLookbackDays = %d, want 365", cfg.Pricing.HistoricalLookbackDays)
	}
	if cfg.Ghosts.DefaultListLimit != 50 || cfg.Ghosts.LookupWindow != 100 {
		t.Errorf("Ghosts = %+v, want limit 50 window 100", cfg.Ghosts)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want default %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Voice.Region != DefaultDynamoRegion {
		t.Errorf("Voice.Region = %q, want %q", cfg.Voice.Region, DefaultDynamoRegion)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaulted config should validate: %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() should validate: %v", err)
	}
	if !cfg.Auth.AllowHeaderIdentity {
		t.Error("Default() should allow header identity")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{Auth: AuthConfig{JWTSecret: "s"}}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "missing auth",
			mutate:  func(c *Config) { c.Auth = AuthConfig{} },
			wantErr: "auth.jwt_secret is required unless auth.allow_header_identity is set",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "redis" },
			wantErr: `store.backend must be one of memory, postgres, dynamodb, got "redis"`,
		},
		{
			name:    "postgres missing host",
			mutate:  func(c *Config) { c.Store.Backend = BackendPostgres },
			wantErr: "database.host is required",
		},
		{
			name: "postgres min_conns exceeds max_conns",
			mutate: func(c *Config) {
				c.Store.Backend = BackendPostgres
				c.Database = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "database.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "same table twice",
			mutate:  func(c *Config) { c.Store.CacheTable = c.Store.AppTable },
			wantErr: "store.app_table and store.cache_table must differ",
		},
		{
			name:    "half credentials",
			mutate:  func(c *Config) { c.MarketData.KeyID = "only-key" },
			wantErr: "market_data.key_id and market_data.secret_key must be set together",
		},
		{
			name:    "bad lookback",
			mutate:  func(c *Config) { c.Pricing.HistoricalLookbackDays = -1 },
			wantErr: "pricing.historical_lookback_days must be >= 1",
		},
		{
			name:    "window smaller than limit",
			mutate:  func(c *Config) { c.Ghosts.LookupWindow = 10 },
			wantErr: "ghosts.lookup_window (10) cannot be smaller than ghosts.default_list_limit (50)",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: `logging.format must be text or json, got "xml"`,
		},
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
