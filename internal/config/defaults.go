package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultServerAddr             = ":8080"
	DefaultReadTimeout            = 10 * time.Second
	DefaultWriteTimeout           = 30 * time.Second
	DefaultShutdownTimeout        = 10 * time.Second
	DefaultBackend                = BackendMemory
	DefaultAppTable               = "phantom-app"
	DefaultCacheTable             = "phantom-cache"
	DefaultStoreTimeout           = 5 * time.Second
	DefaultSweepInterval          = 10 * time.Minute
	DefaultDBPort                 = 5432
	DefaultDBSSLMode              = "prefer"
	DefaultMaxConns               = 10
	DefaultMinConns               = 2
	DefaultDynamoRegion           = "us-east-1"
	DefaultDataURL                = "https://data.alpaca.markets"
	DefaultTradingURL             = "https://api.alpaca.markets"
	DefaultAPITimeout             = 10 * time.Second
	DefaultQuoteTTL               = 15 * time.Second
	DefaultTimeSeriesTTL          = 21600 * time.Second
	DefaultHistoricalLookbackDays = 365
	DefaultMarketTimezone         = "America/New_York"
	DefaultListLimit              = 50
	DefaultLookupWindow           = 100
	DefaultPresignExpiry          = 15 * time.Minute
	DefaultLogLevel               = "info"
	DefaultLogFormat              = "text"
)

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Store defaults
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultBackend
	}
	if c.Store.AppTable == "" {
		c.Store.AppTable = DefaultAppTable
	}
	if c.Store.CacheTable == "" {
		c.Store.CacheTable = DefaultCacheTable
	}
	if c.Store.Timeout == 0 {
		c.Store.Timeout = DefaultStoreTimeout
	}
	if c.Store.SweepInterval == 0 {
		c.Store.SweepInterval = DefaultSweepInterval
	}

	// Database defaults
	applyDBDefaults(&c.Database)

	if c.DynamoDB.Region == "" {
		c.DynamoDB.Region = DefaultDynamoRegion
	}

	// Market data defaults. MaxRetries stays 0: upstream calls are not retried
	// unless configured.
	if c.MarketData.DataURL == "" {
		c.MarketData.DataURL = DefaultDataURL
	}
	if c.MarketData.TradingURL == "" {
		c.MarketData.TradingURL = DefaultTradingURL
	}
	if c.MarketData.Timeout == 0 {
		c.MarketData.Timeout = DefaultAPITimeout
	}

	// Pricing defaults
	if c.Pricing.QuoteTTL == 0 {
		c.Pricing.QuoteTTL = DefaultQuoteTTL
	}
	if c.Pricing.TimeSeriesTTL == 0 {
		c.Pricing.TimeSeriesTTL = DefaultTimeSeriesTTL
	}
	if c.Pricing.HistoricalLookbackDays == 0 {
		c.Pricing.HistoricalLookbackDays = DefaultHistoricalLookbackDays
	}
	if c.Pricing.MarketTimezone == "" {
		c.Pricing.MarketTimezone = DefaultMarketTimezone
	}

	// Ghost defaults
	if c.Ghosts.DefaultListLimit == 0 {
		c.Ghosts.DefaultListLimit = DefaultListLimit
	}
	if c.Ghosts.LookupWindow == 0 {
		c.Ghosts.LookupWindow = DefaultLookupWindow
	}

	// Voice defaults
	if c.Voice.Region == "" {
		c.Voice.Region = c.DynamoDB.Region
	}
	if c.Voice.PresignExpiry == 0 {
		c.Voice.PresignExpiry = DefaultPresignExpiry
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
