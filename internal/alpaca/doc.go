// Package alpaca provides a REST client for the Alpaca market data and
// trading APIs.
//
// REST endpoints:
//   - Market data: https://data.alpaca.markets
//   - Trading: https://api.alpaca.markets
//
// Endpoints used: stock snapshots, stock bars, assets.
package alpaca
