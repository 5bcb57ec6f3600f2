package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestKey returns prefix + ":" + hex(sha256(payload)). The full digest is
// kept; memo keys are compared for equality, so truncation would only add
// collisions.
func DigestKey(prefix string, payload []byte) string {
	sum := sha256.Sum256(payload)
	buf := make([]byte, 0, len(prefix)+1+2*len(sum))
	buf = append(buf, prefix...)
	buf = append(buf, ':')
	buf = hex.AppendEncode(buf, sum[:])
	return string(buf)
}
