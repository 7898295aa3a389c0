// Package attrcert validates the optional selective-disclosure
// attribute certificates an IdP may attach to a backed assertion,
// merging their claims into the verified identity.
package attrcert

import (
	"time"

	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/internal/codec"
	"github.com/cursive-id/browserid/internal/expiry"
	"github.com/cursive-id/browserid/jwk"
	"github.com/cursive-id/browserid/jws"
	"github.com/cursive-id/browserid/jwt"
	"github.com/rs/zerolog"
)

const (
	claimCertBinding = "cb"
	claimAttrID      = "id"
)

var reservedClaims = map[string]struct{}{
	jwt.ClaimIssuer:         {},
	jwt.ClaimExpirationTime: {},
	jwt.ClaimIssuedAt:       {},
	claimCertBinding:        {},
	claimAttrID:             {},
}

type config struct {
	strict  bool
	flatten bool
	log     zerolog.Logger
}

// Option configures Validate.
type Option func(*config)

// WithStrictMode makes Validate return the first attribute-certificate
// failure instead of the default behavior of logging and skipping it.
func WithStrictMode() Option {
	return func(c *config) { c.strict = true }
}

// WithFlatten merges every accepted attribute certificate's claims
// directly into the result map instead of nesting them under the
// certificate's "id" claim.
func WithFlatten() Option {
	return func(c *config) { c.flatten = true }
}

// WithLogger attaches a logger used to record swallowed failures.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) { c.log = log }
}

// Validate checks each compact JWT in attrCerts against authorityKey
// and expectedIssuer (the leaf certificate's issuer), and returns the
// merged claims of every certificate that passed. leafCert is the
// leaf certificate's compact serialization, whose SHA-256 digest every
// attribute certificate's "cb" claim must match.
//
// By default a certificate that fails validation is logged and
// skipped, matching the original IdP's "log and swallow" behavior;
// WithStrictMode makes the first such failure fatal for the whole call.
func Validate(authorityKey jwk.Key, expectedIssuer, leafCert string, attrCerts []string, now time.Time, skew time.Duration, opts ...Option) (map[string]any, error) {
	cfg := config{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	verifier, err := jws.VerifierForKey(authorityKey)
	if err != nil {
		if cfg.strict {
			return nil, err
		}
		cfg.log.Warn().Err(err).Msg("attrcert: no usable authority key, skipping all attribute certificates")
		return map[string]any{}, nil
	}

	wantBinding := codec.DigestAssertion(leafCert)
	result := make(map[string]any)

	for i, compact := range attrCerts {
		claims, err := validateOne(compact, expectedIssuer, wantBinding, verifier, now, skew)
		if err != nil {
			if cfg.strict {
				return nil, err
			}
			cfg.log.Warn().Err(err).Int("index", i).Msg("attrcert: skipping invalid attribute certificate")
			continue
		}

		merge(result, claims, cfg.flatten)
	}

	return result, nil
}

func validateOne(compact, expectedIssuer, wantBinding string, verifier jws.Verifier, now time.Time, skew time.Duration) (jwt.Claims, error) {
	token, err := jwt.Decode(compact)
	if err != nil {
		return nil, bidcode.Wrap(bidcode.InvalidJWT, err)
	}
	claims := token.Claims()

	iss, err := claims.GetString(jwt.ClaimIssuer)
	if err != nil || iss != expectedIssuer {
		return nil, bidcode.New(bidcode.InvalidIssuer)
	}

	cb, err := claims.GetString(claimCertBinding)
	if err != nil || cb == "" {
		return nil, bidcode.New(bidcode.MissingCertBinding)
	}
	if cb != wantBinding {
		return nil, bidcode.New(bidcode.CertBindingMismatch)
	}

	if err := token.VerifySignatureOnly(verifier); err != nil {
		return nil, bidcode.Wrap(bidcode.InvalidSignature, err)
	}

	if err := expiry.Check(claims, now, skew, true); err != nil {
		return nil, err
	}

	return claims, nil
}

func merge(result map[string]any, claims jwt.Claims, flatten bool) {
	id, _ := claims.GetString(claimAttrID)

	filtered := make(map[string]any, len(claims))
	for k, v := range claims {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		filtered[k] = v
	}

	if flatten || id == "" {
		for k, v := range filtered {
			result[k] = v
		}
		return
	}

	result[id] = filtered
}
