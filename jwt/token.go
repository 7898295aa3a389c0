package jwt

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cursive-id/browserid/jws"
)

var (
	// ErrInvalidToken is returned when a compact string does not
	// decode into a well-formed JWT.
	ErrInvalidToken = errors.New("invalid token")

	// ErrVerificationFailed is returned when signature verification fails.
	ErrVerificationFailed = errors.New("verification failed")
)

// Token implements an assembled JWT: a wrapper around a jws.JWS with
// its claims parsed into a dynamic Claims map.
type Token struct {
	jws.JWS
	claims Claims
}

// Claims returns a copy of the token's claims map.
func (t *Token) Claims() Claims {
	c := make(Claims, len(t.claims))
	for k, v := range t.claims {
		c[k] = v
	}
	return c
}

// Unmarshal decodes the token's payload into v, which must be a
// pointer to a data structure json.Unmarshal can populate. Use this
// when a caller wants a typed view of the claims rather than the
// dynamic Claims map.
func (t *Token) Unmarshal(v any) error {
	return json.Unmarshal(t.Payload(), v)
}

// VerifySignatureOnly verifies t's signature using verifier. Expiry,
// audience and issuer policy are BrowserID-specific and live in the
// assertion package, not here: a generic verifier chain would hide
// the skew/millisecond/Cert-error-rewriting rules that policy needs.
func (t *Token) VerifySignatureOnly(verifier jws.Verifier) error {
	if err := t.JWS.VerifySignature(verifier); err != nil {
		return fmt.Errorf("%w: %s", ErrVerificationFailed, err)
	}
	return nil
}

// Sign serializes claims as the JWT payload and signs it with signer.
func Sign(signer jws.Signer, claims Claims) (*Token, error) {
	serialized, err := json.Marshal(claims)
	if err != nil {
		return nil, err
	}

	j, err := jws.Sign(signer, serialized, jws.Header{Type: "JWT"})
	if err != nil {
		return nil, err
	}

	return &Token{JWS: *j, claims: claims}, nil
}

// Decode parses the given compact token string, requiring the header
// and payload to be well-formed JSON. The signature is not verified;
// use VerifySignatureOnly or an assertion-level policy for that.
func Decode(compact string) (*Token, error) {
	sig, err := jws.ParseCompact(compact)
	if err != nil {
		return nil, err
	}

	claims, err := UnmarshalClaims(sig.Payload())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	return &Token{JWS: *sig, claims: claims}, nil
}
