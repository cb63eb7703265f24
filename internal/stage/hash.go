// SPDX-License-Identifier: MPL-2.0

package stage

import (
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"hash"
	"regexp"
)

var (
	sha1RE   = regexp.MustCompile(`^[0-9a-f]{40}$`)
	sha256RE = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// IsCommitHash reports whether s has the shape of a full revision identifier
// (40-hex SHA-1 or 64-hex SHA-256). Existence is not checked; staging only
// validates shape.
func IsCommitHash(s string) bool {
	return sha1RE.MatchString(s) || sha256RE.MatchString(s)
}

// hasherFor picks the digest algorithm matching a checksum's shape.
func hasherFor(checksum string) (hash.Hash, error) {
	switch {
	case sha256RE.MatchString(checksum):
		return sha256.New(), nil
	case sha1RE.MatchString(checksum):
		return sha1.New(), nil
	}
	return nil, fmt.Errorf("invalid checksum or unsupported checksum algorithm: %q", checksum)
}
