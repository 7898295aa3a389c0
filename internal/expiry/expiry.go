// Package expiry implements the single expiry policy shared by every
// JWT this module accepts: the final assertion, each certificate in
// its chain, and reauthentication authenticators. It reads iat/nbf/exp
// as BrowserID's millisecond timestamps and applies one clock-skew
// tolerance in both directions.
package expiry

import (
	"time"

	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/jwt"
)

// Check validates claims against now, allowing skew of clock
// divergence in either direction. When forCert is true, the generic
// AssertionNotYetValid/ExpiredAssertion codes are rewritten to
// CertNotYetValid/ExpiredCert, matching the distinction a certificate
// in the chain needs from the final assertion.
func Check(claims jwt.Claims, now time.Time, skew time.Duration, forCert bool) error {
	iat, err := claims.GetTimeMillis(jwt.ClaimIssuedAt)
	if err != nil {
		return bidcode.Wrap(bidcode.InvalidAssertion, err)
	}
	hasIat := claims.Has(jwt.ClaimIssuedAt)

	if hasIat && iat.After(now.Add(skew)) {
		return bidcode.New(bidcode.InvalidAssertion)
	}

	if claims.Has(jwt.ClaimNotBefore) {
		nbf, err := claims.GetTimeMillis(jwt.ClaimNotBefore)
		if err != nil {
			return bidcode.Wrap(bidcode.InvalidAssertion, err)
		}
		if nbf.After(now.Add(skew)) {
			return notYetValid(forCert)
		}
	}

	exp, err := claims.GetTimeMillis(jwt.ClaimExpirationTime)
	if err != nil {
		return bidcode.Wrap(bidcode.InvalidAssertion, err)
	}
	if !claims.Has(jwt.ClaimExpirationTime) {
		if !hasIat {
			return bidcode.New(bidcode.InvalidAssertion)
		}
		exp = iat.Add(skew)
	}

	if now.After(exp.Add(skew)) {
		return expired(forCert)
	}

	return nil
}

func notYetValid(forCert bool) error {
	if forCert {
		return bidcode.New(bidcode.CertNotYetValid)
	}
	return bidcode.New(bidcode.AssertionNotYetValid)
}

func expired(forCert bool) error {
	if forCert {
		return bidcode.New(bidcode.ExpiredCert)
	}
	return bidcode.New(bidcode.ExpiredAssertion)
}
