package jws

import (
	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/jwk"
)

// VerifierForKey builds a Verifier from a JWK public key, selecting
// RS256/RS128/RS64 for RSA keys and DS256/DS128 for DSA keys based on
// the key's own "alg" field, defaulting to RS256/DS256 respectively
// when the key does not declare one (the common case for authority
// documents, which predate per-key algorithm tagging).
func VerifierForKey(key jwk.Key) (Verifier, error) {
	switch k := key.(type) {
	case *jwk.RSAPublicKey:
		alg := SignatureAlgorithm(k.Algorithm())
		if alg == "" {
			alg = ALG_RS256
		}
		return RSVerifier(alg, k.PublicKey)
	case *jwk.DSAPublicKey:
		alg := SignatureAlgorithm(k.Algorithm())
		if alg == "" {
			alg = ALG_DS256
		}
		return DSVerifier(alg, k.PublicKey)
	default:
		return nil, bidcode.New(bidcode.InvalidKey)
	}
}
