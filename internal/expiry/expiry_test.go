package expiry_test

import (
	"testing"
	"time"

	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/internal/expiry"
	"github.com/cursive-id/browserid/jwt"
	"github.com/stretchr/testify/assert"
)

func claimsAt(iat, exp time.Time) jwt.Claims {
	c := jwt.Claims{}
	if !iat.IsZero() {
		c.SetTimeMillis(jwt.ClaimIssuedAt, iat)
	}
	if !exp.IsZero() {
		c.SetTimeMillis(jwt.ClaimExpirationTime, exp)
	}
	return c
}

func TestCheckAcceptsWithinWindow(t *testing.T) {
	now := time.Now()
	c := claimsAt(now.Add(-time.Minute), now.Add(time.Hour))
	assert.NoError(t, expiry.Check(c, now, 5*time.Minute, false))
}

func TestCheckRejectsExpiredAssertion(t *testing.T) {
	now := time.Now()
	c := claimsAt(now.Add(-time.Hour), now.Add(-time.Minute))
	err := expiry.Check(c, now, 5*time.Minute, false)
	assert.True(t, bidcode.Is(err, bidcode.ExpiredAssertion))
}

func TestCheckRejectsExpiredCertAsExpiredCert(t *testing.T) {
	now := time.Now()
	c := claimsAt(now.Add(-time.Hour), now.Add(-time.Minute))
	err := expiry.Check(c, now, 5*time.Minute, true)
	assert.True(t, bidcode.Is(err, bidcode.ExpiredCert))
}

func TestCheckRejectsNotYetValid(t *testing.T) {
	now := time.Now()
	c := claimsAt(now.Add(-time.Minute), now.Add(time.Hour))
	c.SetTimeMillis(jwt.ClaimNotBefore, now.Add(time.Hour))
	err := expiry.Check(c, now, 5*time.Minute, false)
	assert.True(t, bidcode.Is(err, bidcode.AssertionNotYetValid))
}

func TestCheckDefaultsExpiryFromIssuedAt(t *testing.T) {
	now := time.Now()
	c := jwt.Claims{}
	c.SetTimeMillis(jwt.ClaimIssuedAt, now)
	assert.NoError(t, expiry.Check(c, now, 5*time.Minute, false))

	late := now.Add(11 * time.Minute)
	err := expiry.Check(c, late, 5*time.Minute, false)
	assert.True(t, bidcode.Is(err, bidcode.ExpiredAssertion))
}

func TestCheckRejectsExcessiveClockSkewOnIssuedAt(t *testing.T) {
	now := time.Now()
	c := claimsAt(now.Add(time.Hour), now.Add(2*time.Hour))
	err := expiry.Check(c, now, 5*time.Minute, false)
	assert.True(t, bidcode.Is(err, bidcode.InvalidAssertion))
}
