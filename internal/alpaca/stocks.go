package alpaca

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetSnapshot fetches the latest trade, quote and bars for a symbol.
func (c *Client) GetSnapshot(ctx context.Context, symbol string) (*SnapshotResponse, error) {
	var resp SnapshotResponse
	if err := c.get(ctx, c.dataURL, "/v2/stocks/"+url.PathEscape(symbol)+"/snapshot", nil, &resp); err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", symbol, err)
	}
	return &resp, nil
}

// GetBars fetches one page of bars for a symbol.
func (c *Client) GetBars(ctx context.Context, symbol string, opts BarsOptions) (*BarsResponse, error) {
	query := url.Values{}

	if opts.Timeframe != "" {
		query.Set("timeframe", opts.Timeframe)
	}
	if opts.Start != "" {
		query.Set("start", opts.Start)
	}
	if opts.End != "" {
		query.Set("end", opts.End)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.PageToken != "" {
		query.Set("page_token", opts.PageToken)
	}

	var resp BarsResponse
	if err := c.get(ctx, c.dataURL, "/v2/stocks/"+url.PathEscape(symbol)+"/bars", query, &resp); err != nil {
		return nil, fmt.Errorf("get bars %s: %w", symbol, err)
	}

	return &resp, nil
}

// GetAsset fetches a tradable asset from the trading API.
func (c *Client) GetAsset(ctx context.Context, symbol string) (*Asset, error) {
	var resp Asset
	if err := c.get(ctx, c.tradingURL, "/v2/assets/"+url.PathEscape(symbol), nil, &resp); err != nil {
		return nil, fmt.Errorf("get asset %s: %w", symbol, err)
	}
	return &resp, nil
}
