package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes the canonical JSON encoding of v. Used to derive layout
// cache keys from layout input snapshots.
func HashJSON(v any) string {
	data, _ := json.Marshal(v)
	return Hash(data)
}
