package payments

import (
	"crypto/sha256"
	"fmt"
	"sort"
)

// SignFields computes the gateway request signature: the parameter values are
// concatenated in alphabetical order of their names, the shared password is
// appended and the whole string is SHA-256 hashed, hex encoded.
func SignFields(params map[string]string, password string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tokenString string
	for _, key := range keys {
		tokenString += params[key]
	}
	tokenString += password

	hash := sha256.Sum256([]byte(tokenString))
	return fmt.Sprintf("%x", hash)
}
