package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"bnb-arb-agent/internal/domain"
)

// ComputeAttemptID computes a deterministic attempt_id using SHA256.
// Formula: SHA256(token|direction|decided_at_unix_ms)
// Returns hex-encoded hash (64 characters).
func ComputeAttemptID(token string, direction domain.Direction, decidedAt time.Time) string {
	data := fmt.Sprintf("%s|%s|%d",
		token,
		direction,
		decidedAt.UTC().UnixMilli(),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
