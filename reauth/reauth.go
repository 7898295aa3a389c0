// Package reauth implements the fast-reauthentication protocol: after
// one successful primary assertion verification, it derives an
// authenticator root key (ARK) from the resulting session key, mints
// cheap HS256-signed authenticator JWTs bound to an audience, and
// verifies them on a later request without re-running the full
// certificate chain.
package reauth

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/cache"
	"github.com/cursive-id/browserid/identity"
	"github.com/cursive-id/browserid/internal/expiry"
	"github.com/cursive-id/browserid/internal/xcrypto"
	"github.com/cursive-id/browserid/jws"
	"github.com/cursive-id/browserid/jwt"
)

const (
	arkSalt = "ARK"

	// ClaimNonce identifies the authenticator's anti-replay nonce, "n".
	ClaimNonce = "n"
	// ClaimTicket identifies the authenticator's ticket reference, "tkt".
	ClaimTicket = "tkt"
	// ClaimChannelBindingToken identifies the "cbt" claim.
	ClaimChannelBindingToken = "cbt"
)

// TicketEntry is the ticket-cache record stored after a successful
// primary verification, keyed by packed audience.
type TicketEntry struct {
	Ticket     string         `json:"tkt"`
	ARK        []byte         `json:"ark"`
	Subject    string         `json:"sub"`
	Audience   string         `json:"aud"`
	ARKExpiry  time.Time      `json:"a-exp"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// ReplayEntry is the replay-cache record spec.md §3 describes,
// optionally carrying reauth material when the verification that
// created it had reauthentication enabled.
type ReplayEntry struct {
	IAT       time.Time `json:"iat"`
	Exp       time.Time `json:"exp"`
	ARK       []byte    `json:"ark,omitempty"`
	ReauthExp time.Time `json:"r-exp,omitempty"`
}

// DeriveARK derives the authenticator root key from a session key,
// per spec.md §4.7: ARK = derive(sessionKey, "ARK").
func DeriveARK(sessionKey []byte) []byte {
	return xcrypto.Derive(sessionKey, []byte(arkSalt))
}

// DeriveAuthenticatorKey derives the per-authenticator session key
// K_auth = derive(ARK, signingInput).
func DeriveAuthenticatorKey(ark []byte, signingInput string) []byte {
	return xcrypto.Derive(ark, []byte(signingInput))
}

// GenerateNonce returns 16 random bytes for the authenticator's "n" claim.
func GenerateNonce() ([]byte, error) {
	n := make([]byte, 16)
	if _, err := rand.Read(n); err != nil {
		return nil, bidcode.Wrap(bidcode.CryptoError, err)
	}
	return n, nil
}

// StoreTicket persists reauthentication material after a successful
// primary verification of id over audience. replayKey is the key the
// primary assertion was inserted under in the replay cache; the
// ticket's "tkt" is that same key so the later authenticator can be
// traced back to the replay-cache entry it extends. ticketKey is the
// packed-audience key the ticket cache is addressed by.
func StoreTicket(
	ticketStore cache.Store[TicketEntry],
	replayStore cache.Store[ReplayEntry],
	id *identity.Identity,
	audience, ticketKey, replayKey string,
	now time.Time,
	ticketLifetime time.Duration,
) error {
	ark := DeriveARK(id.SessionKey())
	arkExpiry := now.Add(ticketLifetime)

	attrs := map[string]any{
		identity.AttrEmail:    id.Email(),
		identity.AttrAudience: audience,
		identity.AttrIssuer:   id.Issuer(),
	}

	if err := ticketStore.Set(ticketKey, TicketEntry{
		Ticket:     replayKey,
		ARK:        ark,
		Subject:    id.Email(),
		Audience:   audience,
		ARKExpiry:  arkExpiry,
		Attributes: attrs,
	}); err != nil {
		return bidcode.Wrap(bidcode.BadTicketCache, err)
	}

	entry, err := replayStore.Get(replayKey)
	if err != nil {
		entry = ReplayEntry{IAT: now, Exp: arkExpiry}
	}
	entry.ARK = ark
	entry.ReauthExp = arkExpiry
	if err := replayStore.Set(replayKey, entry); err != nil {
		return bidcode.Wrap(bidcode.BadTicketCache, err)
	}

	id.SetReauthTicket(ark, arkExpiry, replayKey)
	return nil
}

// LookupTicket resolves a ticket-cache entry by packed audience,
// falling back to a linear scan matching (audience, subjectHint) when
// the direct lookup misses and a subject hint was supplied.
func LookupTicket(ticketStore cache.Store[TicketEntry], ticketKey, audience, subjectHint string) (*TicketEntry, error) {
	if entry, err := ticketStore.Get(ticketKey); err == nil {
		return &entry, nil
	}
	if subjectHint == "" {
		return nil, bidcode.New(bidcode.BadTicketCache)
	}

	var found *TicketEntry
	_ = ticketStore.Iterate(func(key string, value TicketEntry) bool {
		if value.Audience == audience && value.Subject == subjectHint {
			v := value
			found = &v
			return false
		}
		return true
	})
	if found == nil {
		return nil, bidcode.New(bidcode.BadTicketCache)
	}
	return found, nil
}

// MintAuthenticator builds a fast-reauthentication backed assertion
// ("~" plus a single HS256-signed authenticator JWT) from a ticket
// entry, per spec.md §4.7.
func MintAuthenticator(entry *TicketEntry, packedAudience string, channelBindings []byte, now time.Time, skew time.Duration) (string, time.Time, error) {
	if now.After(entry.ARKExpiry) {
		return "", time.Time{}, bidcode.New(bidcode.ExpiredAssertion)
	}

	nonce, err := GenerateNonce()
	if err != nil {
		return "", time.Time{}, err
	}

	// No "exp" claim: freshness is bounded solely by skew-from-"iat" on
	// the verifying side, so an initiator holding the ARK cannot extend
	// its own window by forging a future expiration.
	exp := now.Add(skew)
	claims := jwt.Claims{
		ClaimTicket:       entry.Ticket,
		ClaimNonce:        base64.RawURLEncoding.EncodeToString(nonce),
		jwt.ClaimAudience: packedAudience,
	}
	claims.SetTimeMillis(jwt.ClaimIssuedAt, now)
	if len(channelBindings) > 0 {
		claims[ClaimChannelBindingToken] = base64.RawURLEncoding.EncodeToString(channelBindings)
	}

	signer := jws.HS256(entry.ARK)
	token, err := jwt.Sign(signer, claims)
	if err != nil {
		return "", time.Time{}, bidcode.Wrap(bidcode.CryptoError, err)
	}

	return "~" + token.Compact(), exp, nil
}

// VerifyAuthenticator verifies a fast-reauthentication authenticator
// JWT, per spec.md §4.7's verification path: the authenticator's "tkt"
// claim addresses a replay-cache entry carrying the ARK, its signature
// must verify under that ARK, and its freshness is judged solely by
// "iat"+skew — any "exp" the initiator attached is discarded first, so
// it can never extend its own validity window. compact may be the bare
// authenticator JWT or the "~"-prefixed form MintAuthenticator returns.
func VerifyAuthenticator(replayStore cache.Store[ReplayEntry], compact, audience string, channelBindings []byte, now time.Time, skew time.Duration) (*identity.Identity, []byte, error) {
	token, err := jwt.Decode(strings.TrimPrefix(compact, "~"))
	if err != nil {
		return nil, nil, bidcode.Wrap(bidcode.InvalidJWT, err)
	}
	claims := token.Claims()

	ticket, err := claims.GetString(ClaimTicket)
	if err != nil || ticket == "" {
		return nil, nil, bidcode.New(bidcode.BadTicketCache)
	}

	entry, err := replayStore.Get(ticket)
	if err != nil || len(entry.ARK) == 0 {
		return nil, nil, bidcode.New(bidcode.BadTicketCache)
	}

	if now.After(entry.ReauthExp) {
		return nil, nil, bidcode.New(bidcode.ExpiredAssertion)
	}

	// An initiator cannot be trusted to self-report a bounded "exp": drop
	// whatever it sent so expiry.Check falls back to iat+skew, matching
	// the original protocol's explicit deletion of the authenticator's
	// own expiration claim before verification.
	delete(claims, jwt.ClaimExpirationTime)

	if err := expiry.Check(claims, now, skew, false); err != nil {
		return nil, nil, err
	}

	aud, err := claims.GetString(jwt.ClaimAudience)
	if err != nil {
		return nil, nil, bidcode.Wrap(bidcode.BadAudience, err)
	}
	if aud != audience {
		return nil, nil, bidcode.New(bidcode.BadAudience)
	}

	if len(channelBindings) > 0 {
		cbt, err := claims.GetString(ClaimChannelBindingToken)
		if err != nil {
			return nil, nil, bidcode.Wrap(bidcode.ChannelBindingsMismatch, err)
		}
		if cbt == "" {
			return nil, nil, bidcode.New(bidcode.MissingChannelBindings)
		}
		given, err := base64.RawURLEncoding.DecodeString(cbt)
		if err != nil || string(given) != string(channelBindings) {
			return nil, nil, bidcode.New(bidcode.ChannelBindingsMismatch)
		}
	}

	verifier := jws.HS256(entry.ARK)
	if err := token.VerifySignatureOnly(verifier); err != nil {
		return nil, nil, bidcode.Wrap(bidcode.InvalidSignature, err)
	}

	sessionKey := DeriveAuthenticatorKey(entry.ARK, token.SigningInput())

	id := identity.New()
	id.SetAttribute(identity.AttrAudience, aud)
	id.SetSessionKey(sessionKey)

	return id, sessionKey, nil
}
