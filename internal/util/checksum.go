package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Bytes computes the hex-encoded SHA-256 digest of an in-memory
// payload. Uploads tag remote files with it so a download can be verified
// out of band.
func SHA256Bytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
