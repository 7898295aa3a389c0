package jws

import (
	"crypto/dsa"
	"fmt"

	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/internal/xcrypto"
)

// dsaSigner implements DS256 and DS128, each hashing with a different
// digest (SHA-256 / SHA-1) and encoding r and s as a fixed-length
// concatenation rather than an ASN.1 SEQUENCE.
type dsaSigner struct {
	alg        SignatureAlgorithm
	privateKey *dsa.PrivateKey
}

func (d *dsaSigner) Alg() SignatureAlgorithm {
	return d.alg
}

func (d *dsaSigner) Sign(data []byte) ([]byte, error) {
	return xcrypto.SignDSA(toXCryptoAlg(d.alg), d.privateKey, data)
}

// DSSigner creates a new Signer using alg, one of DS256 or DS128.
func DSSigner(alg SignatureAlgorithm, privateKey *dsa.PrivateKey) (Signer, error) {
	switch alg {
	case ALG_DS256, ALG_DS128:
		return &dsaSigner{alg: alg, privateKey: privateKey}, nil
	default:
		return nil, fmt.Errorf("unsupported DSA signature algorithm: %s", alg)
	}
}

type dsaVerifier struct {
	alg       SignatureAlgorithm
	publicKey *dsa.PublicKey
}

func (d *dsaVerifier) Verify(alg SignatureAlgorithm, data, signature []byte) error {
	if alg != d.alg {
		return bidcode.New(bidcode.UnknownAlgorithm)
	}
	return xcrypto.VerifyDSA(toXCryptoAlg(d.alg), d.publicKey, data, signature)
}

// DSVerifier creates a new Verifier for alg, one of DS256 or DS128.
func DSVerifier(alg SignatureAlgorithm, publicKey *dsa.PublicKey) (Verifier, error) {
	switch alg {
	case ALG_DS256, ALG_DS128:
		return &dsaVerifier{alg: alg, publicKey: publicKey}, nil
	default:
		return nil, fmt.Errorf("unsupported DSA signature algorithm: %s", alg)
	}
}

func toXCryptoAlg(alg SignatureAlgorithm) xcrypto.Algorithm {
	return xcrypto.Algorithm(alg)
}
