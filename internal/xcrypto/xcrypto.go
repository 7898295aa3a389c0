// Package xcrypto implements the closed set of signature algorithms
// the BrowserID wire format uses (RS256, RS128, RS64, DS256, DS128,
// HS256), the single-block key derivation function used to mint
// authenticator root keys and per-authenticator session keys, and the
// ECDH key agreement a channel-binding layer uses to establish the
// session key reauth starts from.
//
// The RS128 and RS64 algorithm names are bug-compatible with the
// original libbrowserid implementation: despite the "128"/"64" suffix
// suggesting a different digest, all three RS names hash with SHA-256
// and build the standard PKCS#1 v1.5 DigestInfo for SHA-256. This
// keeps assertions signed by existing IdPs verifiable; it is not a
// weaker construction, just a legacy naming quirk preserved on purpose.
package xcrypto

import (
	"crypto"
	"crypto/dsa"
	"crypto/ecdh"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"math/big"

	"github.com/cursive-id/browserid/bidcode"
	"github.com/cursive-id/browserid/internal/codec"
)

// Algorithm names the closed set of signature algorithms this module
// supports. Unlike general-purpose JOSE libraries, this set is never
// extended at runtime: adding an algorithm is a code change, matching
// the spec's closed trust model for signature agility.
type Algorithm string

const (
	RS256 Algorithm = "RS256"
	RS128 Algorithm = "RS128"
	RS64  Algorithm = "RS64"
	DS256 Algorithm = "DS256"
	DS128 Algorithm = "DS128"
	HS256 Algorithm = "HS256"
)

// SignRSA signs data with privateKey using the bug-compatible
// DigestInfo construction shared by RS256, RS128 and RS64.
func SignRSA(privateKey *rsa.PrivateKey, data []byte) ([]byte, error) {
	hashed := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, privateKey, crypto.SHA256, hashed[:])
	if err != nil {
		return nil, bidcode.Wrap(bidcode.CryptoError, err)
	}
	return sig, nil
}

// VerifyRSA verifies an RS256/RS128/RS64 signature over data against publicKey.
func VerifyRSA(publicKey *rsa.PublicKey, data, signature []byte) error {
	hashed := sha256.Sum256(data)
	if err := rsa.VerifyPKCS1v15(publicKey, crypto.SHA256, hashed[:], signature); err != nil {
		return bidcode.Wrap(bidcode.InvalidSignature, err)
	}
	return nil
}

// dsaDigest returns the hash of data for alg, and the byte length each
// of r and s must be padded to in the wire signature.
func dsaDigest(alg Algorithm, data []byte) (digest []byte, fieldLen int, err error) {
	switch alg {
	case DS256:
		h := sha256.Sum256(data)
		return h[:], 32, nil
	case DS128:
		h := sha1.Sum(data)
		return h[:], 20, nil
	default:
		return nil, 0, bidcode.New(bidcode.UnknownAlgorithm)
	}
}

// SignDSA signs data with privateKey under alg (DS256 or DS128),
// returning the concatenated r||s signature with each component
// padded to the digest length as the wire format requires.
func SignDSA(alg Algorithm, privateKey *dsa.PrivateKey, data []byte) ([]byte, error) {
	digest, fieldLen, err := dsaDigest(alg, data)
	if err != nil {
		return nil, err
	}

	r, s, err := dsa.Sign(rand.Reader, privateKey, digest)
	if err != nil {
		return nil, bidcode.Wrap(bidcode.CryptoError, err)
	}

	out := make([]byte, 2*fieldLen)
	putPadded(out[:fieldLen], r, fieldLen)
	putPadded(out[fieldLen:], s, fieldLen)
	return out, nil
}

// VerifyDSA verifies a DS256/DS128 r||s signature over data against publicKey.
func VerifyDSA(alg Algorithm, publicKey *dsa.PublicKey, data, signature []byte) error {
	digest, fieldLen, err := dsaDigest(alg, data)
	if err != nil {
		return err
	}
	if len(signature) != 2*fieldLen {
		return bidcode.New(bidcode.InvalidSignature)
	}

	r := new(big.Int).SetBytes(signature[:fieldLen])
	s := new(big.Int).SetBytes(signature[fieldLen:])

	if !dsa.Verify(publicKey, digest, r, s) {
		return bidcode.New(bidcode.InvalidSignature)
	}
	return nil
}

func putPadded(dst []byte, n *big.Int, fieldLen int) {
	b := n.Bytes()
	if len(b) > fieldLen {
		b = b[len(b)-fieldLen:]
	}
	copy(dst[fieldLen-len(b):], b)
}

// SignHMAC computes the HS256 MAC of data under secret.
func SignHMAC(secret, data []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(data)
	return mac.Sum(nil)
}

// VerifyHMAC verifies an HS256 MAC over data against secret using a
// constant-time comparison.
func VerifyHMAC(secret, data, signature []byte) error {
	expected := SignHMAC(secret, data)
	if !codec.EqualConstantTime(expected, signature) {
		return bidcode.New(bidcode.InvalidSignature)
	}
	return nil
}

// ECDHCurve names the curves this module supports for the ECDH key
// agreement a relying party's channel-binding layer performs to
// establish the session key reauth.DeriveARK consumes; it mirrors the
// "crv" values jwk's EC key types accept.
type ECDHCurve string

const (
	ECDHP256 ECDHCurve = "P-256"
	ECDHP384 ECDHCurve = "P-384"
	ECDHP521 ECDHCurve = "P-521"
)

func ecdhCurve(name ECDHCurve) (ecdh.Curve, error) {
	switch name {
	case ECDHP256:
		return ecdh.P256(), nil
	case ECDHP384:
		return ecdh.P384(), nil
	case ECDHP521:
		return ecdh.P521(), nil
	default:
		return nil, bidcode.New(bidcode.UnknownAlgorithm)
	}
}

// GenerateECDH generates a new ECDH private key on curve.
func GenerateECDH(curve ECDHCurve) (*ecdh.PrivateKey, error) {
	c, err := ecdhCurve(curve)
	if err != nil {
		return nil, err
	}
	priv, err := c.GenerateKey(rand.Reader)
	if err != nil {
		return nil, bidcode.Wrap(bidcode.CryptoError, err)
	}
	return priv, nil
}

// ECDHSharedSecret computes the raw ECDH shared secret between priv
// and peer. Any partial output crypto/ecdh returns alongside an error
// (an invalid or low-order peer point, a mismatched curve) is zeroed
// before the error propagates, so a failed agreement never leaks
// secret material to a caller that ignores the error.
func ECDHSharedSecret(priv *ecdh.PrivateKey, peer *ecdh.PublicKey) ([]byte, error) {
	secret, err := priv.ECDH(peer)
	if err != nil {
		for i := range secret {
			secret[i] = 0
		}
		return nil, bidcode.Wrap(bidcode.CryptoError, err)
	}
	return secret, nil
}

// deriveLabel is the fixed label mixed into every BrowserID key
// derivation, chosen by the original protocol designers and kept for
// wire compatibility.
const deriveLabel = "BrowserID"

// Derive implements the single-block BrowserID key derivation
// function: HMAC-SHA256(key, "BrowserID" || key || salt || 0x01),
// truncated to 32 bytes. It is used both to derive an authenticator
// root key from a shared secret (salt "ARK") and to derive a
// per-authenticator session key (salt the authenticator's signing
// input). The construction is designed to be compatible with the
// Windows CNG KDF in counter mode with a single, fixed counter block.
func Derive(key, salt []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(deriveLabel))
	mac.Write(key)
	mac.Write(salt)
	mac.Write([]byte{0x01})
	return mac.Sum(nil)[:32]
}
