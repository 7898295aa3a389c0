package jws

import (
	"fmt"

	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/internal/xcrypto"
)

// HMACSignerVerifier implements the HS256 signature method using a
// pre-shared secret, as used by the fast-reauthentication protocol.
type HMACSignerVerifier struct {
	secret []byte
}

func (h *HMACSignerVerifier) Alg() SignatureAlgorithm {
	return ALG_HS256
}

func (h *HMACSignerVerifier) Sign(data []byte) ([]byte, error) {
	return xcrypto.SignHMAC(h.secret, data), nil
}

// HSSignerVerifier creates a new HMAC based SignerVerifier using alg
// as the HMAC algorithm and secret as the HMAC secret. alg must be
// HS256, the only HMAC algorithm in the closed set this module
// implements.
func HSSignerVerifier(alg SignatureAlgorithm, secret []byte) (SignerVerifier, error) {
	if alg != ALG_HS256 {
		return nil, fmt.Errorf("unsupported HMAC signature algorithm: %s", alg)
	}
	return HS256(secret), nil
}

// HS256 creates a SignerVerifier implementing the HMAC-SHA256 algorithm.
func HS256(secret []byte) SignerVerifier {
	s := &HMACSignerVerifier{secret: secret}
	return SymmetricSignature(s, func(data, signature []byte) error {
		if err := xcrypto.VerifyHMAC(secret, data, signature); err != nil {
			return bidcode.Wrap(bidcode.InvalidSignature, err)
		}
		return nil
	})
}
