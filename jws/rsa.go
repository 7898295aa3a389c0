package jws

import (
	"crypto/rsa"
	"fmt"

	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/internal/xcrypto"
)

// rsaSigner implements RS256, RS128 and RS64: all three share the same
// SHA-256 PKCS#1-v1.5 construction (see internal/xcrypto's package
// doc for why the "128"/"64" suffixes don't change the digest).
type rsaSigner struct {
	alg        SignatureAlgorithm
	privateKey *rsa.PrivateKey
}

func (r *rsaSigner) Alg() SignatureAlgorithm {
	return r.alg
}

func (r *rsaSigner) Sign(data []byte) ([]byte, error) {
	return xcrypto.SignRSA(r.privateKey, data)
}

// RSSigner creates a new Signer using alg, one of RS256, RS128 or RS64.
func RSSigner(alg SignatureAlgorithm, privateKey *rsa.PrivateKey) (Signer, error) {
	switch alg {
	case ALG_RS256, ALG_RS128, ALG_RS64:
		return &rsaSigner{alg: alg, privateKey: privateKey}, nil
	default:
		return nil, fmt.Errorf("unsupported RSA signature algorithm: %s", alg)
	}
}

type rsaVerifier struct {
	alg       SignatureAlgorithm
	publicKey *rsa.PublicKey
}

func (r *rsaVerifier) Verify(alg SignatureAlgorithm, data, signature []byte) error {
	if alg != r.alg {
		return bidcode.New(bidcode.UnknownAlgorithm)
	}
	return xcrypto.VerifyRSA(r.publicKey, data, signature)
}

// RSVerifier creates a new Verifier for alg, one of RS256, RS128 or RS64.
func RSVerifier(alg SignatureAlgorithm, publicKey *rsa.PublicKey) (Verifier, error) {
	switch alg {
	case ALG_RS256, ALG_RS128, ALG_RS64:
		return &rsaVerifier{alg: alg, publicKey: publicKey}, nil
	default:
		return nil, fmt.Errorf("unsupported RSA signature algorithm: %s", alg)
	}
}
