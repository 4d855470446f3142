package model

import "fmt"

// Entity type discriminators stored with every item.
const (
	EntityGhost       = "GHOST"
	EntityDashSummary = "DASH_SUMMARY"
	EntityCache       = "CACHE"
)

// Sort keys and prefixes.
const (
	GhostSKPrefix      = "GHOST#"
	SummarySK          = "DASH#SUMMARY"
	LatestPriceSK      = "PRICE#latest"
	TimeSeriesSKPrefix = "TS#"
)

// UserPK is the partition holding a user's ghosts and summary.
func UserPK(userID string) string {
	return "USER#" + userID
}

// GhostSK embeds the creation time so a descending query lists newest first.
// The millisecond timestamp is zero-padded to keep lexical and numeric order
// aligned.
func GhostSK(createdAtMs int64, ghostID string) string {
	return fmt.Sprintf("%s%013d#%s", GhostSKPrefix, createdAtMs, ghostID)
}

// MarketPK is the cache partition for one instrument.
func MarketPK(symbol string) string {
	return "MD#" + NormalizeTicker(symbol)
}

// TimeSeriesSK addresses a cached candle set.
func TimeSeriesSK(interval, rng string) string {
	return TimeSeriesSKPrefix + interval + "#" + rng
}
