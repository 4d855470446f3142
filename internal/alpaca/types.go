package alpaca

import "github.com/shopspring/decimal"

// SnapshotResponse from GET /v2/stocks/{symbol}/snapshot
type SnapshotResponse struct {
	Symbol       string `json:"symbol"`
	LatestTrade  *Trade `json:"latestTrade"`
	LatestQuote  *Quote `json:"latestQuote"`
	MinuteBar    *Bar   `json:"minuteBar"`
	DailyBar     *Bar   `json:"dailyBar"`
	PrevDailyBar *Bar   `json:"prevDailyBar"`
}

// Trade is a single trade print. Price is nil when the API omitted it.
type Trade struct {
	Price     *decimal.Decimal `json:"p"`
	Size      int64            `json:"s"`
	Timestamp string           `json:"t"`
	Exchange  string           `json:"x"`
}

// Quote is the national best bid and offer.
type Quote struct {
	AskPrice  decimal.Decimal `json:"ap"`
	AskSize   int64           `json:"as"`
	BidPrice  decimal.Decimal `json:"bp"`
	BidSize   int64           `json:"bs"`
	Timestamp string          `json:"t"`
}

// Bar is an OHLCV aggregate.
type Bar struct {
	Timestamp  string          `json:"t"`
	Open       decimal.Decimal `json:"o"`
	High       decimal.Decimal `json:"h"`
	Low        decimal.Decimal `json:"l"`
	Close      decimal.Decimal `json:"c"`
	Volume     int64           `json:"v"`
	TradeCount int64           `json:"n"`
	VWAP       decimal.Decimal `json:"vw"`
}

// BarsResponse from GET /v2/stocks/{symbol}/bars
type BarsResponse struct {
	Symbol        string `json:"symbol"`
	Bars          []Bar  `json:"bars"`
	NextPageToken string `json:"next_page_token"`
}

// BarsOptions are the query parameters for GetBars.
type BarsOptions struct {
	Timeframe string // 5Min, 15Min, 1Hour, 1Day, 1Week
	Start     string // RFC 3339
	End       string // RFC 3339
	Limit     int
	PageToken string
}

// Asset from GET /v2/assets/{symbol}
type Asset struct {
	ID       string `json:"id"`
	Class    string `json:"class"`
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Tradable bool   `json:"tradable"`
}
