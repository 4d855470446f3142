// Package model defines shared data types used across the ghost ledger.
//
// Conventions:
//   - Prices, shares, dollars: shopspring decimal, never float64
//   - Timestamps: int64 milliseconds since Unix epoch (cache expiry is seconds)
//   - Tickers: trimmed, upper-cased before any lookup or persistence
//   - IDs: string UUIDs for ghosts
package model
