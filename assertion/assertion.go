// Package assertion implements the backed-assertion verification
// pipeline: unpacking the "~"-joined JWT chain, audience and
// channel-binding checks, the expiry policy, certificate-chain
// trust and signature verification, the replay gate, and identity
// materialization, per-step as laid out by the BrowserID relying
// party's verify() entry point.
package assertion

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cursive-id/browserid/attrcert"
	"github.com/cursive-id/browserid/authority"
	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/cache"
	"github.com/cursive-id/browserid/identity"
	"github.com/cursive-id/browserid/internal/codec"
	"github.com/cursive-id/browserid/internal/expiry"
	"github.com/cursive-id/browserid/jwk"
	"github.com/cursive-id/browserid/jws"
	"github.com/cursive-id/browserid/jwt"
	"github.com/cursive-id/browserid/reauth"
)

// DefaultMaxCerts is BID_MAX_CERTS: the maximum number of certificates
// a backed assertion's chain may carry.
const DefaultMaxCerts = 6

// DefaultSkew is the default clock-skew tolerance and, absent an
// explicit "exp", the default assertion/certificate lifetime.
const DefaultSkew = 5 * time.Minute

// DefaultReplayTTL is how long a replay-cache entry is kept when the
// verified assertion carried no usable expiry of its own.
const DefaultReplayTTL = 5 * time.Minute

const (
	claimChannelBindingToken = "cbt"
	claimPublicKey           = "public-key"
	claimPrincipal           = "principal"
	claimPrincipalEmail      = "email"
	claimAttrCerts           = "attr-certs"
)

// Flags describes properties of a successful verification.
type Flags uint8

const (
	// FlagReauth indicates the assertion was a fast-reauthentication
	// authenticator rather than a full certificate chain.
	FlagReauth Flags = 1 << iota
)

// Verifier validates backed assertions against a configured
// authority resolver and cache set.
type Verifier struct {
	Authority   *authority.Resolver
	ReplayCache cache.Store[reauth.ReplayEntry]

	// Skew is the clock-skew tolerance applied by the expiry policy.
	Skew time.Duration
	// MaxCerts bounds the certificate chain length (BID_MAX_CERTS).
	MaxCerts int
	// AllowReauth enables the zero-certificate fast-reauthentication path.
	AllowReauth bool
	// ReplayTTL bounds how long a replay-cache entry is retained when
	// the verified token carries no "exp" of its own.
	ReplayTTL time.Duration
	// AttrCertOptions are passed through to attrcert.Validate.
	AttrCertOptions []attrcert.Option
}

// NewVerifier builds a Verifier with the BrowserID defaults
// (DefaultSkew, DefaultMaxCerts, DefaultReplayTTL, reauth disabled).
func NewVerifier(resolver *authority.Resolver, replayCache cache.Store[reauth.ReplayEntry]) *Verifier {
	return &Verifier{
		Authority:   resolver,
		ReplayCache: replayCache,
		Skew:        DefaultSkew,
		MaxCerts:    DefaultMaxCerts,
		ReplayTTL:   DefaultReplayTTL,
	}
}

// Verify validates assertionString against audience and
// channelBindings as of verificationTime, returning the materialized
// identity on success.
func (v *Verifier) Verify(ctx context.Context, assertionString, audience string, channelBindings []byte, verificationTime time.Time) (*identity.Identity, Flags, error) {
	certs, final, err := unpack(assertionString, v.maxCerts())
	if err != nil {
		return nil, 0, err
	}

	if len(certs) == 0 {
		if !v.AllowReauth {
			return nil, 0, bidcode.New(bidcode.InvalidAssertion)
		}
		id, _, err := reauth.VerifyAuthenticator(v.ReplayCache, final, audience, channelBindings, verificationTime, v.skew())
		if err != nil {
			return nil, 0, err
		}
		return id, FlagReauth, nil
	}

	token, err := jwt.Decode(final)
	if err != nil {
		return nil, 0, bidcode.Wrap(bidcode.InvalidJWT, err)
	}
	claims := token.Claims()

	if err := checkAudience(claims, audience, channelBindings); err != nil {
		return nil, 0, err
	}

	if err := expiry.Check(claims, verificationTime, v.skew(), false); err != nil {
		return nil, 0, err
	}

	if len(certs) > 1 {
		return nil, 0, bidcode.New(bidcode.TooManyCerts)
	}
	leafCompact := certs[0]
	leafToken, err := jwt.Decode(leafCompact)
	if err != nil {
		return nil, 0, bidcode.Wrap(bidcode.InvalidJWT, err)
	}
	leafClaims := leafToken.Claims()

	email, err := principalEmail(leafClaims)
	if err != nil {
		return nil, 0, err
	}
	emailDomain, err := domainOf(email)
	if err != nil {
		return nil, 0, err
	}

	certIssuer, err := leafClaims.GetString(jwt.ClaimIssuer)
	if err != nil || certIssuer == "" {
		return nil, 0, bidcode.New(bidcode.MissingIssuer)
	}

	if err := v.Authority.IsAuthoritative(ctx, emailDomain, certIssuer, verificationTime); err != nil {
		return nil, 0, err
	}

	authorityEntry, err := v.Authority.Resolve(ctx, certIssuer, verificationTime)
	if err != nil {
		return nil, 0, err
	}
	authorityKey, err := authorityEntry.SigningKey()
	if err != nil {
		return nil, 0, err
	}

	if err := expiry.Check(leafClaims, verificationTime, v.skew(), true); err != nil {
		return nil, 0, err
	}
	rootVerifier, err := jws.VerifierForKey(authorityKey)
	if err != nil {
		return nil, 0, err
	}
	if err := leafToken.VerifySignatureOnly(rootVerifier); err != nil {
		return nil, 0, bidcode.Wrap(bidcode.InvalidSignature, err)
	}

	leafKeyClaim, ok := leafClaims[claimPublicKey]
	if !ok {
		return nil, 0, bidcode.New(bidcode.InvalidKey)
	}
	leafPublicKey, err := leafKeyFromClaim(leafKeyClaim)
	if err != nil {
		return nil, 0, err
	}
	assertionVerifier, err := jws.VerifierForKey(leafPublicKey)
	if err != nil {
		return nil, 0, err
	}
	if err := token.VerifySignatureOnly(assertionVerifier); err != nil {
		return nil, 0, bidcode.Wrap(bidcode.InvalidSignature, err)
	}

	if err := v.checkReplay(final, claims, verificationTime); err != nil {
		return nil, 0, err
	}

	id := identity.New()
	id.SetAttribute(identity.AttrEmail, email)
	id.SetAttribute(identity.AttrAudience, audience)
	id.SetAttribute(identity.AttrIssuer, certIssuer)
	if exp, err := claims.GetTimeMillis(jwt.ClaimExpirationTime); err == nil && !exp.IsZero() {
		id.SetAttribute(identity.AttrExpires, exp)
	}

	if rawCerts, ok := claims[claimAttrCerts]; ok {
		if err := v.enrichAttrCerts(id, authorityKey, certIssuer, leafCompact, rawCerts, verificationTime); err != nil {
			return nil, 0, err
		}
	}

	return id, 0, nil
}

// leafKeyFromClaim decodes a JWK carried inline as a claim value (the
// leaf certificate's "public-key" claim) into a usable jwk.Key.
func leafKeyFromClaim(claim any) (jwk.Key, error) {
	raw, err := json.Marshal(claim)
	if err != nil {
		return nil, bidcode.Wrap(bidcode.InvalidKey, err)
	}
	key, err := jwk.UnmarshalKey(raw)
	if err != nil {
		return nil, bidcode.Wrap(bidcode.InvalidKey, err)
	}
	return key, nil
}

func (v *Verifier) skew() time.Duration {
	if v.Skew > 0 {
		return v.Skew
	}
	return DefaultSkew
}

func (v *Verifier) maxCerts() int {
	if v.MaxCerts > 0 {
		return v.MaxCerts
	}
	return DefaultMaxCerts
}

func (v *Verifier) replayTTL() time.Duration {
	if v.ReplayTTL > 0 {
		return v.ReplayTTL
	}
	return DefaultReplayTTL
}

// checkReplay implements spec.md §4.5 step 9.
func (v *Verifier) checkReplay(assertionCompact string, claims jwt.Claims, now time.Time) error {
	key := codec.DigestAssertion(assertionCompact)

	if entry, err := v.ReplayCache.Get(key); err == nil && entry.Exp.After(now) {
		return bidcode.New(bidcode.ReplayedAssertion)
	}

	exp, _ := claims.GetTimeMillis(jwt.ClaimExpirationTime)
	if exp.IsZero() {
		exp = now.Add(v.replayTTL())
	}

	return v.ReplayCache.Set(key, reauth.ReplayEntry{IAT: now, Exp: exp})
}

// enrichAttrCerts validates the optional attribute certificates a
// backed assertion's final assertion carries and merges their
// accepted claims into id under identity.AttrPrincipal.
func (v *Verifier) enrichAttrCerts(id *identity.Identity, authorityKey jwk.Key, certIssuer, leafCompact string, rawCerts any, now time.Time) error {
	items, ok := rawCerts.([]any)
	if !ok {
		return nil
	}
	compacts := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		compacts = append(compacts, s)
	}
	if len(compacts) == 0 {
		return nil
	}

	merged, err := attrcert.Validate(authorityKey, certIssuer, leafCompact, compacts, now, v.skew(), v.AttrCertOptions...)
	if err != nil {
		return err
	}
	if len(merged) > 0 {
		id.SetAttribute(identity.AttrPrincipal, merged)
	}
	return nil
}

// checkAudience implements spec.md §4.5 step 3.
func checkAudience(claims jwt.Claims, audience string, channelBindings []byte) error {
	aud, err := claims.GetString(jwt.ClaimAudience)
	if err != nil {
		return bidcode.Wrap(bidcode.BadAudience, err)
	}
	if aud == "" {
		return bidcode.New(bidcode.MissingAudience)
	}
	if aud != audience {
		return bidcode.New(bidcode.BadAudience)
	}

	if len(channelBindings) == 0 {
		return nil
	}

	cbt, err := claims.GetString(claimChannelBindingToken)
	if err != nil {
		return bidcode.Wrap(bidcode.ChannelBindingsMismatch, err)
	}
	if cbt == "" {
		return bidcode.New(bidcode.MissingChannelBindings)
	}
	given, err := base64.RawURLEncoding.DecodeString(cbt)
	if err != nil || !codec.EqualConstantTime(given, channelBindings) {
		return bidcode.New(bidcode.ChannelBindingsMismatch)
	}
	return nil
}

func principalEmail(claims jwt.Claims) (string, error) {
	p, ok := claims[claimPrincipal]
	if !ok {
		return "", bidcode.New(bidcode.MissingPrincipal)
	}
	m, ok := p.(map[string]any)
	if !ok {
		return "", bidcode.New(bidcode.UnknownPrincipalType)
	}
	email, ok := m[claimPrincipalEmail].(string)
	if !ok || email == "" {
		return "", bidcode.New(bidcode.UnknownPrincipalType)
	}
	return email, nil
}

func domainOf(email string) (string, error) {
	i := strings.LastIndex(email, "@")
	if i < 0 || i == len(email)-1 {
		return "", bidcode.New(bidcode.UnknownPrincipalType)
	}
	return email[i+1:], nil
}

// unpack splits the wire form "~cert1~cert2~...~assertion" into its
// certificate segments and final assertion segment, per spec.md §6.
func unpack(assertionString string, maxCerts int) (certs []string, final string, err error) {
	if !strings.HasPrefix(assertionString, "~") {
		return nil, "", bidcode.New(bidcode.InvalidAssertion)
	}
	parts := strings.Split(assertionString[1:], "~")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return nil, "", bidcode.New(bidcode.InvalidAssertion)
	}

	final = parts[len(parts)-1]
	certs = parts[:len(parts)-1]
	if len(certs) > maxCerts {
		return nil, "", bidcode.New(bidcode.TooManyCerts)
	}
	return certs, final, nil
}

// GenerateChannelBindings returns n cryptographically random bytes,
// suitable as opaque channel-binding material for tests and tools
// that do not derive bindings from an actual transport session.
func GenerateChannelBindings(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, bidcode.Wrap(bidcode.CryptoError, err)
	}
	return b, nil
}

// PackAudience builds the canonical "urn:x-gss:<spn>#<cb>" ticket-cache
// key for GSS-mode callers, or returns the raw audience unchanged when
// channelBindings is empty (plain BrowserID mode), per spec.md §6.
func PackAudience(audience string, channelBindings []byte) string {
	if len(channelBindings) == 0 {
		return audience
	}
	return fmt.Sprintf("urn:x-gss:%s#%s", audience, base64.RawURLEncoding.EncodeToString(channelBindings))
}

// UnpackAudience reverses PackAudience, returning the underlying
// audience/SPN and, if present, the channel bindings it was packed
// with.
func UnpackAudience(packed string) (audience string, channelBindings []byte, err error) {
	const prefix = "urn:x-gss:"
	if !strings.HasPrefix(packed, prefix) {
		return packed, nil, nil
	}
	rest := strings.TrimPrefix(packed, prefix)
	i := strings.LastIndex(rest, "#")
	if i < 0 {
		return rest, nil, nil
	}
	cb, err := base64.RawURLEncoding.DecodeString(rest[i+1:])
	if err != nil {
		return "", nil, bidcode.Wrap(bidcode.InvalidBase64, err)
	}
	return rest[:i], cb, nil
}
