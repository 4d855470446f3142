// Package sweeper periodically drops expired cache items.
//
// The quote cache treats an entry past its expiresAt as a miss, so sweeping
// only reclaims space. DynamoDB expires items itself through its TTL
// attribute; the sweeper runs for the memory and postgres backends.
package sweeper
