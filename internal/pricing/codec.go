package pricing

import (
	"errors"
	"fmt"

	"github.com/rickgao/phantom-ledger/internal/kv"
	"github.com/rickgao/phantom-ledger/internal/model"
)

// Payload field names, shared with the ghost record's embedded loggedQuote.
const (
	fieldSymbol     = "symbol"
	fieldPrice      = "price"
	fieldProviderTS = "providerTs"
	fieldCapturedAt = "capturedAtEpochMs"
	fieldSource     = "source"

	fieldInterval  = "interval"
	fieldCandles   = "candles"
	fieldFetchedAt = "fetchedAt"
	fieldDatetime  = "datetime"
	fieldOpen      = "open"
	fieldHigh      = "high"
	fieldLow       = "low"
	fieldClose     = "close"
	fieldVolume    = "volume"
)

// EncodeQuote flattens q into an attribute map. Prices are stored as decimal
// strings so no backend rounds them through float64.
func EncodeQuote(q model.Quote) map[string]any {
	return map[string]any{
		fieldSymbol:     q.Symbol,
		fieldPrice:      q.Price.String(),
		fieldProviderTS: q.ProviderTimestamp,
		fieldCapturedAt: q.CapturedAt,
		fieldSource:     string(q.Source),
	}
}

// DecodeQuote is the inverse of EncodeQuote.
func DecodeQuote(m map[string]any) (model.Quote, error) {
	if m == nil {
		return model.Quote{}, errors.New("decode quote: empty payload")
	}
	a := kv.Attrs(m)

	price, err := a.Decimal(fieldPrice)
	if err != nil {
		return model.Quote{}, fmt.Errorf("decode quote: %w", err)
	}
	capturedAt, err := a.Int64(fieldCapturedAt)
	if err != nil {
		return model.Quote{}, fmt.Errorf("decode quote: %w", err)
	}

	return model.Quote{
		Symbol:            a.String(fieldSymbol),
		Price:             price,
		ProviderTimestamp: a.String(fieldProviderTS),
		CapturedAt:        capturedAt,
		Source:            model.QuoteSource(a.String(fieldSource)),
	}, nil
}

// EncodeCandleSet flattens set into an attribute map.
func EncodeCandleSet(set model.CandleSet) map[string]any {
	candles := make([]any, 0, len(set.Candles))
	for _, c := range set.Candles {
		candles = append(candles, map[string]any{
			fieldDatetime: c.Datetime,
			fieldOpen:     c.Open.String(),
			fieldHigh:     c.High.String(),
			fieldLow:      c.Low.String(),
			fieldClose:    c.Close.String(),
			fieldVolume:   c.Volume,
		})
	}
	return map[string]any{
		fieldSymbol:    set.Symbol,
		fieldInterval:  set.Interval,
		fieldCandles:   candles,
		fieldFetchedAt: set.FetchedAt,
	}
}

// DecodeCandleSet is the inverse of EncodeCandleSet.
func DecodeCandleSet(m map[string]any) (model.CandleSet, error) {
	if m == nil {
		return model.CandleSet{}, errors.New("decode candles: empty payload")
	}
	a := kv.Attrs(m)

	rows := a.List(fieldCandles)
	candles := make([]model.Candle, 0, len(rows))
	for i, row := range rows {
		c, err := decodeCandle(row)
		if err != nil {
			return model.CandleSet{}, fmt.Errorf("decode candles: row %d: %w", i, err)
		}
		candles = append(candles, c)
	}

	return model.CandleSet{
		Symbol:    a.String(fieldSymbol),
		Interval:  a.String(fieldInterval),
		Candles:   candles,
		FetchedAt: a.String(fieldFetchedAt),
	}, nil
}

func decodeCandle(a kv.Attrs) (model.Candle, error) {
	var (
		c   = model.Candle{Datetime: a.String(fieldDatetime)}
		err error
	)
	if c.Open, err = a.Decimal(fieldOpen); err != nil {
		return c, err
	}
	if c.High, err = a.Decimal(fieldHigh); err != nil {
		return c, err
	}
	if c.Low, err = a.Decimal(fieldLow); err != nil {
		return c, err
	}
	if c.Close, err = a.Decimal(fieldClose); err != nil {
		return c, err
	}
	if c.Volume, err = a.Int64(fieldVolume); err != nil {
		return c, err
	}
	return c, nil
}
