package jwk

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"math/big"
)

// RSAPublicKey implements a JWK representation of an RSA public key as
// specified in RFC 7518 section 6.3.1.
type RSAPublicKey struct {
	KeyDescription
	*rsa.PublicKey
}

func (e *RSAPublicKey) Type() KeyType {
	return KeyTypeRSA
}

type rsaPublicKeyJSONWrapper struct {
	KeyDescription
	Type KeyType `json:"kty"`
	N    string  `json:"n"`
	E    string  `json:"e"`
}

func (e *RSAPublicKey) MarshalJSON() ([]byte, error) {
	legacy := e.KeyVersion != ""
	w := rsaPublicKeyJSONWrapper{
		KeyDescription: e.KeyDescription,
		Type:           e.Type(),
		N:              encodeBigInt(e.PublicKey.N, legacy),
		E:              encodeBigInt(big.NewInt(int64(e.PublicKey.E)), legacy),
	}

	return json.Marshal(w)
}

func (e *RSAPublicKey) UnmarshalJSON(data []byte) error {
	var w rsaPublicKeyJSONWrapper

	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	if w.Type != KeyTypeRSA {
		return fmt.Errorf("invalid key type: %s", w.Type)
	}

	legacy := w.KeyVersion != ""

	n, err := decodeBigInt(w.N, legacy)
	if err != nil {
		return fmt.Errorf("invalid n value: %w", err)
	}

	exp, err := decodeBigInt(w.E, legacy)
	if err != nil {
		return fmt.Errorf("invalid e value: %w", err)
	}

	e.KeyDescription = w.KeyDescription
	e.PublicKey = &rsa.PublicKey{
		N: n,
		E: int(exp.Int64()),
	}

	return nil
}

// RSAPrivateKey implements a JWK representation of an RSA private key
// as specified in RFC 7518 section 6.3.2, restricted to the fields an
// IdP key file actually carries (n, e, d, p, q). It recognizes the
// same legacy "version" tag as RSAPublicKey.
type RSAPrivateKey struct {
	KeyDescription
	*rsa.PrivateKey
}

func (k *RSAPrivateKey) Type() KeyType {
	return KeyTypeRSA
}

type rsaPrivateKeyJSONWrapper struct {
	KeyDescription
	Type KeyType `json:"kty"`
	N    string  `json:"n"`
	E    string  `json:"e"`
	D    string  `json:"d"`
	P    string  `json:"p,omitempty"`
	Q    string  `json:"q,omitempty"`
}

func (k *RSAPrivateKey) MarshalJSON() ([]byte, error) {
	legacy := k.KeyVersion != ""
	w := rsaPrivateKeyJSONWrapper{
		KeyDescription: k.KeyDescription,
		Type:           k.Type(),
		N:              encodeBigInt(k.PrivateKey.N, legacy),
		E:              encodeBigInt(big.NewInt(int64(k.PrivateKey.E)), legacy),
		D:              encodeBigInt(k.PrivateKey.D, legacy),
	}
	if len(k.PrivateKey.Primes) == 2 {
		w.P = encodeBigInt(k.PrivateKey.Primes[0], legacy)
		w.Q = encodeBigInt(k.PrivateKey.Primes[1], legacy)
	}

	return json.Marshal(w)
}

func (k *RSAPrivateKey) UnmarshalJSON(data []byte) error {
	var w rsaPrivateKeyJSONWrapper

	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	if w.Type != KeyTypeRSA {
		return fmt.Errorf("invalid key type: %s", w.Type)
	}

	legacy := w.KeyVersion != ""

	n, err := decodeBigInt(w.N, legacy)
	if err != nil {
		return fmt.Errorf("invalid n value: %w", err)
	}
	exp, err := decodeBigInt(w.E, legacy)
	if err != nil {
		return fmt.Errorf("invalid e value: %w", err)
	}
	d, err := decodeBigInt(w.D, legacy)
	if err != nil {
		return fmt.Errorf("invalid d value: %w", err)
	}

	priv := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: n, E: int(exp.Int64())},
		D:         d,
	}

	if w.P != "" && w.Q != "" {
		p, err := decodeBigInt(w.P, legacy)
		if err != nil {
			return fmt.Errorf("invalid p value: %w", err)
		}
		q, err := decodeBigInt(w.Q, legacy)
		if err != nil {
			return fmt.Errorf("invalid q value: %w", err)
		}
		priv.Primes = []*big.Int{p, q}
		priv.Precompute()
	}

	k.KeyDescription = w.KeyDescription
	k.PrivateKey = priv

	return nil
}
