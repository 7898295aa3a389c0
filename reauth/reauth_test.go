package reauth_test

import (
	"testing"
	"time"

	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/cache"
	"github.com/cursive-id/browserid/identity"
	"github.com/cursive-id/browserid/jws"
	"github.com/cursive-id/browserid/jwt"
	"github.com/cursive-id/browserid/reauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStores(t *testing.T) (cache.Store[reauth.TicketEntry], cache.Store[reauth.ReplayEntry]) {
	t.Helper()
	tickets, err := cache.NewMemoryStore[reauth.TicketEntry](8)
	require.NoError(t, err)
	replay, err := cache.NewMemoryStore[reauth.ReplayEntry](8)
	require.NoError(t, err)
	return tickets, replay
}

func TestStoreThenMintThenVerifyRoundTrip(t *testing.T) {
	tickets, replay := newStores(t)

	id := identity.New()
	id.SetAttribute(identity.AttrEmail, "alice@example.org")
	id.SetSessionKey([]byte("session-key-from-primary-verification"))

	now := time.Now()
	require.NoError(t, replay.Set("replay-key-1", reauth.ReplayEntry{IAT: now, Exp: now.Add(time.Hour)}))

	require.NoError(t, reauth.StoreTicket(tickets, replay, id, "https://rp.example.com", "https://rp.example.com", "replay-key-1", now, time.Hour))

	entry, err := reauth.LookupTicket(tickets, "https://rp.example.com", "https://rp.example.com", "")
	require.NoError(t, err)

	compact, expiresAt, err := reauth.MintAuthenticator(entry, "https://rp.example.com", nil, now, 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(now))

	verifiedID, sessionKey, err := reauth.VerifyAuthenticator(replay, compact, "https://rp.example.com", nil, now, 5*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionKey)
	assert.Equal(t, "https://rp.example.com", verifiedID.Audience())
}

func TestVerifyAuthenticatorRejectsUnknownTicket(t *testing.T) {
	_, replay := newStores(t)

	_, _, err := reauth.VerifyAuthenticator(replay, "~bogus.compact.token", "aud", nil, time.Now(), 5*time.Minute)
	assert.Error(t, err)
}

func TestVerifyAuthenticatorRejectsWrongAudience(t *testing.T) {
	tickets, replay := newStores(t)

	id := identity.New()
	id.SetSessionKey([]byte("session-key"))

	now := time.Now()
	require.NoError(t, replay.Set("rk", reauth.ReplayEntry{IAT: now, Exp: now.Add(time.Hour)}))
	require.NoError(t, reauth.StoreTicket(tickets, replay, id, "aud-a", "aud-a", "rk", now, time.Hour))

	entry, err := reauth.LookupTicket(tickets, "aud-a", "aud-a", "")
	require.NoError(t, err)

	compact, _, err := reauth.MintAuthenticator(entry, "aud-a", nil, now, 5*time.Minute)
	require.NoError(t, err)

	_, _, err = reauth.VerifyAuthenticator(replay, compact, "aud-b", nil, now, 5*time.Minute)
	assert.True(t, bidcode.Is(err, bidcode.BadAudience))
}

func TestMintAuthenticatorRejectsExpiredTicket(t *testing.T) {
	entry := &reauth.TicketEntry{
		Ticket:    "rk",
		ARK:       []byte("ark-bytes-0123456789012345678901"),
		ARKExpiry: time.Now().Add(-time.Minute),
	}

	_, _, err := reauth.MintAuthenticator(entry, "aud", nil, time.Now(), 5*time.Minute)
	assert.True(t, bidcode.Is(err, bidcode.ExpiredAssertion))
}

func TestVerifyAuthenticatorIgnoresForgedExpClaim(t *testing.T) {
	tickets, replay := newStores(t)

	id := identity.New()
	id.SetSessionKey([]byte("session-key"))

	now := time.Now()
	require.NoError(t, replay.Set("rk-forged", reauth.ReplayEntry{IAT: now, Exp: now.Add(time.Hour)}))
	require.NoError(t, reauth.StoreTicket(tickets, replay, id, "aud-d", "aud-d", "rk-forged", now, time.Hour))

	entry, err := reauth.LookupTicket(tickets, "aud-d", "aud-d", "")
	require.NoError(t, err)

	// An authenticator issued long ago, with a self-reported "exp" far
	// in the future: VerifyAuthenticator must judge it stale from
	// "iat"+skew alone, not trust the forged claim.
	issuedAt := now.Add(-time.Hour)
	claims := jwt.Claims{
		reauth.ClaimTicket: entry.Ticket,
		reauth.ClaimNonce:  "deadbeef",
		jwt.ClaimAudience:  "aud-d",
	}
	claims.SetTimeMillis(jwt.ClaimIssuedAt, issuedAt)
	claims.SetTimeMillis(jwt.ClaimExpirationTime, now.Add(time.Hour))

	signer := jws.HS256(entry.ARK)
	token, err := jwt.Sign(signer, claims)
	require.NoError(t, err)

	_, _, err = reauth.VerifyAuthenticator(replay, "~"+token.Compact(), "aud-d", nil, now, 5*time.Minute)
	assert.True(t, bidcode.Is(err, bidcode.ExpiredAssertion))
}

func TestLookupTicketBySubjectHintWhenAudienceMismatches(t *testing.T) {
	tickets, replay := newStores(t)

	id := identity.New()
	id.SetAttribute(identity.AttrEmail, "bob@example.org")
	id.SetSessionKey([]byte("session-key"))

	now := time.Now()
	require.NoError(t, replay.Set("rk2", reauth.ReplayEntry{IAT: now, Exp: now.Add(time.Hour)}))
	require.NoError(t, reauth.StoreTicket(tickets, replay, id, "aud-c", "packed-key-c", "rk2", now, time.Hour))

	entry, err := reauth.LookupTicket(tickets, "some-other-packed-key", "aud-c", "bob@example.org")
	require.NoError(t, err)
	assert.Equal(t, "rk2", entry.Ticket)
}
