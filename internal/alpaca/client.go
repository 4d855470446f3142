package alpaca

import (
	"log/slog"
	"net/http"
	"time"
)

// Client provides access to the Alpaca REST APIs.
type Client struct {
	dataURL    string
	tradingURL string
	keyID      string
	secretKey  string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. Requests are not retried unless
// WithRetries is given.
func NewClient(dataURL, tradingURL, keyID, secretKey string, opts ...ClientOption) *Client {
	c := &Client{
		dataURL:    dataURL,
		tradingURL: tradingURL,
		keyID:      keyID,
		secretKey:  secretKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   0,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Configured reports whether both API credentials are set.
func (c *Client) Configured() bool {
	return c.keyID != "" && c.secretKey != ""
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
