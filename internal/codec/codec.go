// Package codec implements the wire-level encodings shared across the
// module: base64url with no padding as used by JWS compact
// serialization (RFC 7515 section 2), canonical JSON round-tripping,
// and the content-addressed digests used as replay-cache keys and for
// binding attribute certificates to their leaf certificate.
package codec

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"

	"github.com/cursive-id/browserid/bidcode"
)

var b64 = base64.URLEncoding.WithPadding(base64.NoPadding)

// Encode base64url-encodes data with no padding.
func Encode(data []byte) string {
	return b64.EncodeToString(data)
}

// Decode base64url-decodes s, returning InvalidBase64 on malformed input.
func Decode(s string) ([]byte, error) {
	data, err := b64.DecodeString(s)
	if err != nil {
		return nil, bidcode.Wrap(bidcode.InvalidBase64, err)
	}
	return data, nil
}

// MarshalJSON marshals v, wrapping any error as InvalidJSON.
func MarshalJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, bidcode.Wrap(bidcode.InvalidJSON, err)
	}
	return data, nil
}

// UnmarshalJSON unmarshals data into v, wrapping any error as InvalidJSON.
func UnmarshalJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return bidcode.Wrap(bidcode.InvalidJSON, err)
	}
	return nil
}

// DigestAssertion returns the base64url-encoded SHA-256 digest of a
// serialized assertion, used as the replay cache key.
func DigestAssertion(assertion string) string {
	sum := sha256.Sum256([]byte(assertion))
	return Encode(sum[:])
}

// EqualConstantTime reports whether a and b are equal, in time
// independent of their contents, for comparing signatures and MACs.
func EqualConstantTime(a, b []byte) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
}
