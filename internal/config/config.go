package config

import "time"

// Config is the root configuration for the ghost ledger service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Store      StoreConfig      `yaml:"store"`
	Database   DBConfig         `yaml:"database"`
	DynamoDB   DynamoDBConfig   `yaml:"dynamodb"`
	MarketData MarketDataConfig `yaml:"market_data"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Ghosts     GhostsConfig     `yaml:"ghosts"`
	Voice      VoiceConfig      `yaml:"voice"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig holds identity settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`

	// AllowHeaderIdentity trusts X-User-Id when no bearer token is sent.
	// Local development only.
	AllowHeaderIdentity bool `yaml:"allow_header_identity"`
}

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
)

// StoreConfig selects the item store backend and its table names.
type StoreConfig struct {
	Backend       string        `yaml:"backend"`
	AppTable      string        `yaml:"app_table"`
	CacheTable    string        `yaml:"cache_table"`
	Timeout       time.Duration `yaml:"timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"` // expired cache purge; DynamoDB uses native TTL instead
}

// DBConfig holds a single PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// DynamoDBConfig holds DynamoDB client settings.
type DynamoDBConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // optional, e.g. DynamoDB Local
}

// MarketDataConfig holds Alpaca API settings. Empty credentials put pricing
// into mock mode.
type MarketDataConfig struct {
	DataURL    string        `yaml:"data_url"`
	TradingURL string        `yaml:"trading_url"`
	KeyID      string        `yaml:"key_id"`     // APCA-API-KEY-ID
	SecretKey  string        `yaml:"secret_key"` // APCA-API-SECRET-KEY
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// PricingConfig holds price resolution and cache settings.
type PricingConfig struct {
	QuoteTTL               time.Duration `yaml:"quote_ttl"`
	TimeSeriesTTL          time.Duration `yaml:"timeseries_ttl"`
	HistoricalLookbackDays int           `yaml:"historical_lookback_days"`
	MarketTimezone         string        `yaml:"market_timezone"`
}

// GhostsConfig holds ghost listing settings.
type GhostsConfig struct {
	DefaultListLimit int `yaml:"default_list_limit"`
	LookupWindow     int `yaml:"lookup_window"`
}

// VoiceConfig holds S3 settings for voice note uploads. An empty bucket
// disables the upload endpoint.
type VoiceConfig struct {
	Bucket        string        `yaml:"bucket"`
	Region        string        `yaml:"region"`
	Endpoint      string        `yaml:"endpoint"`
	AccessKey     string        `yaml:"access_key"`
	SecretKey     string        `yaml:"secret_key"`
	PresignExpiry time.Duration `yaml:"presign_expiry"`
}

// LoggingConfig holds slog handler settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}
