package jwt

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// ClaimSubject identifies the "sub" claim: the principal the JWT
	// is about.
	// (https://datatracker.ietf.org/doc/html/rfc7519#section-4.1.2)
	ClaimSubject = "sub"

	// ClaimIssuer identifies the "iss" claim: the principal that
	// issued the JWT.
	// (https://datatracker.ietf.org/doc/html/rfc7519#section-4.1.1)
	ClaimIssuer = "iss"

	// ClaimAudience identifies the "aud" claim: the recipients the
	// JWT is intended for.
	// (https://datatracker.ietf.org/doc/html/rfc7519#section-4.1.3)
	ClaimAudience = "aud"

	// ClaimExpirationTime identifies the "exp" claim. BrowserID
	// encodes this, like every timestamp claim in this module, as
	// milliseconds since the Unix epoch rather than the RFC 7519
	// seconds convention.
	// (https://datatracker.ietf.org/doc/html/rfc7519#section-4.1.4)
	ClaimExpirationTime = "exp"

	// ClaimNotBefore identifies the "nbf" claim, in milliseconds.
	// (https://datatracker.ietf.org/doc/html/rfc7519#section-4.1.5)
	ClaimNotBefore = "nbf"

	// ClaimIssuedAt identifies the "iat" claim, in milliseconds.
	// (https://datatracker.ietf.org/doc/html/rfc7519#section-4.1.6)
	ClaimIssuedAt = "iat"

	// ClaimID identifies the "jti" claim.
	// (https://datatracker.ietf.org/doc/html/rfc7519#section-4.1.7)
	ClaimID = "jti"
)

// Claims is a map of claim names to dynamic JSON values. BrowserID
// assertions, certificates and authenticators each carry their own ad
// hoc claim sets layered on top of a handful of shared names (iss,
// aud, exp, iat, ...), so claims are kept as a dynamic map rather than
// a fixed struct; callers use the typed accessors below for the
// common cases.
type Claims map[string]any

// UnmarshalClaims unmarshals JSON data into a Claims value.
func UnmarshalClaims(data []byte) (Claims, error) {
	var claims Claims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Has reports whether claims contains a claim named claim.
func (claims Claims) Has(claim string) bool {
	_, ok := claims[claim]
	return ok
}

// GetString returns the named claim as a string. A missing claim
// returns "" with no error; a claim present with a non-string value
// is an error.
func (claims Claims) GetString(claim string) (string, error) {
	v, ok := claims[claim]
	if !ok {
		return "", nil
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("claim value for %s is not of type string: %v", claim, v)
	}

	return s, nil
}

// GetStringSlice returns the named claim as a slice of strings,
// accepting both a bare string and a JSON array of strings, matching
// the "StringOrURI"/array duality RFC 7519 allows for the audience claim.
func (claims Claims) GetStringSlice(claim string) ([]string, error) {
	v, ok := claims[claim]
	if !ok {
		return nil, nil
	}

	switch val := v.(type) {
	case string:
		return []string{val}, nil
	case []string:
		return val, nil
	case []any:
		result := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("claim value for %s contains non-string element: %v", claim, item)
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, fmt.Errorf("claim value for %s is not a string or slice of strings: %v", claim, v)
	}
}

// GetInt returns the named claim as an int64. A missing claim returns
// 0 with no error.
func (claims Claims) GetInt(claim string) (int64, error) {
	v, ok := claims[claim]
	if !ok {
		return 0, nil
	}

	switch val := v.(type) {
	case int64:
		return val, nil
	case float64:
		return int64(val), nil
	case json.Number:
		i, err := val.Int64()
		if err == nil {
			return i, nil
		}
	}

	return 0, fmt.Errorf("claim value for %s is not of type number: %v", claim, v)
}

// GetTimeMillis returns the named claim, interpreted as milliseconds
// since the Unix epoch, as a time.Time. A missing claim returns the
// zero time with no error. Every timestamp claim in BrowserID's wire
// format uses milliseconds, not the RFC 7519 seconds convention.
func (claims Claims) GetTimeMillis(claim string) (time.Time, error) {
	v, err := claims.GetInt(claim)
	if err != nil {
		return time.Time{}, err
	}
	if v == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(v), nil
}

// SetTimeMillis sets the named claim to t, encoded as milliseconds
// since the Unix epoch.
func (claims Claims) SetTimeMillis(claim string, t time.Time) {
	claims[claim] = t.UnixMilli()
}
