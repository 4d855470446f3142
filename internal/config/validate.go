package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // market timezone must resolve on minimal images
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	if c.Auth.JWTSecret == "" && !c.Auth.AllowHeaderIdentity {
		return errors.New("auth.jwt_secret is required unless auth.allow_header_identity is set")
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	case BackendDynamoDB:
		if c.DynamoDB.Region == "" {
			return errors.New("dynamodb.region is required")
		}
	default:
		return fmt.Errorf("store.backend must be one of memory, postgres, dynamodb, got %q", c.Store.Backend)
	}
	if c.Store.AppTable == "" || c.Store.CacheTable == "" {
		return errors.New("store.app_table and store.cache_table are required")
	}
	if c.Store.AppTable == c.Store.CacheTable {
		return errors.New("store.app_table and store.cache_table must differ")
	}
	if c.Store.Timeout < 0 {
		return errors.New("store.timeout must be >= 0")
	}

	if c.MarketData.MaxRetries < 0 {
		return errors.New("market_data.max_retries must be >= 0")
	}
	if (c.MarketData.KeyID == "") != (c.MarketData.SecretKey == "") {
		return errors.New("market_data.key_id and market_data.secret_key must be set together")
	}

	if c.Pricing.QuoteTTL <= 0 || c.Pricing.TimeSeriesTTL <= 0 {
		return errors.New("pricing.quote_ttl and pricing.timeseries_ttl must be > 0")
	}
	if c.Pricing.HistoricalLookbackDays < 1 {
		return errors.New("pricing.historical_lookback_days must be >= 1")
	}
	if _, err := time.LoadLocation(c.Pricing.MarketTimezone); err != nil {
		return fmt.Errorf("pricing.market_timezone: %w", err)
	}

	if c.Ghosts.DefaultListLimit < 1 {
		return errors.New("ghosts.default_list_limit must be >= 1")
	}
	if c.Ghosts.LookupWindow < c.Ghosts.DefaultListLimit {
		return fmt.Errorf("ghosts.lookup_window (%d) cannot be smaller than ghosts.default_list_limit (%d)",
			c.Ghosts.LookupWindow, c.Ghosts.DefaultListLimit)
	}

	if c.Voice.Bucket != "" && c.Voice.Region == "" {
		return errors.New("voice.region is required when voice.bucket is set")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
