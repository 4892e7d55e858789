package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds a stage cache key of the form "prefix:<sha256 hex>", where
// the hash covers the JSON encoding of parts. Keyer feeds it the stage name
// plus everything that determines the stage's output (root path, scan
// options, graph hash, export format), so any input change produces a new
// key.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the full 64-character hex SHA-256 of data. Also used outside
// key construction, for stable node IDs derived from paths.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
