package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey maps an external identity such as "google:12345" to a fixed
// hex token safe to embed in object keys and filesystem paths.
func HashUserKey(s string) string {
	digest := sha256.Sum256([]byte(s))
	return hex.EncodeToString(digest[:])
}
