package jwk

import (
	"crypto/dsa"
	"encoding/json"
	"fmt"
)

// DSAPublicKey implements a JWK representation of a DSA public key.
// DSA is not part of RFC 7518's registered key types; BrowserID IdPs
// that sign with DS256/DS128 publish keys in this shape, so it is
// supported here as an extension of the standard set.
type DSAPublicKey struct {
	KeyDescription
	*dsa.PublicKey
}

func (k *DSAPublicKey) Type() KeyType {
	return KeyTypeDSA
}

type dsaPublicKeyJSONWrapper struct {
	KeyDescription
	Type KeyType `json:"kty"`
	P    string  `json:"p"`
	Q    string  `json:"q"`
	G    string  `json:"g"`
	Y    string  `json:"y"`
}

func (k *DSAPublicKey) MarshalJSON() ([]byte, error) {
	legacy := k.KeyVersion != ""
	w := dsaPublicKeyJSONWrapper{
		KeyDescription: k.KeyDescription,
		Type:           k.Type(),
		P:              encodeBigInt(k.PublicKey.P, legacy),
		Q:              encodeBigInt(k.PublicKey.Q, legacy),
		G:              encodeBigInt(k.PublicKey.G, legacy),
		Y:              encodeBigInt(k.PublicKey.Y, legacy),
	}

	return json.Marshal(w)
}

func (k *DSAPublicKey) UnmarshalJSON(data []byte) error {
	var w dsaPublicKeyJSONWrapper

	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	if w.Type != KeyTypeDSA {
		return fmt.Errorf("invalid key type: %s", w.Type)
	}

	legacy := w.KeyVersion != ""

	p, err := decodeBigInt(w.P, legacy)
	if err != nil {
		return fmt.Errorf("invalid p value: %w", err)
	}
	q, err := decodeBigInt(w.Q, legacy)
	if err != nil {
		return fmt.Errorf("invalid q value: %w", err)
	}
	g, err := decodeBigInt(w.G, legacy)
	if err != nil {
		return fmt.Errorf("invalid g value: %w", err)
	}
	y, err := decodeBigInt(w.Y, legacy)
	if err != nil {
		return fmt.Errorf("invalid y value: %w", err)
	}

	k.KeyDescription = w.KeyDescription
	k.PublicKey = &dsa.PublicKey{
		Parameters: dsa.Parameters{P: p, Q: q, G: g},
		Y:          y,
	}

	return nil
}

// DSAPrivateKey implements a JWK representation of a DSA private key,
// the counterpart IdP key files carry alongside DSAPublicKey. It
// recognizes the same legacy "version" tag as DSAPublicKey.
type DSAPrivateKey struct {
	KeyDescription
	*dsa.PrivateKey
}

func (k *DSAPrivateKey) Type() KeyType {
	return KeyTypeDSA
}

type dsaPrivateKeyJSONWrapper struct {
	KeyDescription
	Type KeyType `json:"kty"`
	P    string  `json:"p"`
	Q    string  `json:"q"`
	G    string  `json:"g"`
	Y    string  `json:"y"`
	X    string  `json:"x"`
}

func (k *DSAPrivateKey) MarshalJSON() ([]byte, error) {
	legacy := k.KeyVersion != ""
	w := dsaPrivateKeyJSONWrapper{
		KeyDescription: k.KeyDescription,
		Type:           k.Type(),
		P:              encodeBigInt(k.PrivateKey.P, legacy),
		Q:              encodeBigInt(k.PrivateKey.Q, legacy),
		G:              encodeBigInt(k.PrivateKey.G, legacy),
		Y:              encodeBigInt(k.PrivateKey.Y, legacy),
		X:              encodeBigInt(k.PrivateKey.X, legacy),
	}

	return json.Marshal(w)
}

func (k *DSAPrivateKey) UnmarshalJSON(data []byte) error {
	var w dsaPrivateKeyJSONWrapper

	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	if w.Type != KeyTypeDSA {
		return fmt.Errorf("invalid key type: %s", w.Type)
	}

	legacy := w.KeyVersion != ""

	p, err := decodeBigInt(w.P, legacy)
	if err != nil {
		return fmt.Errorf("invalid p value: %w", err)
	}
	q, err := decodeBigInt(w.Q, legacy)
	if err != nil {
		return fmt.Errorf("invalid q value: %w", err)
	}
	g, err := decodeBigInt(w.G, legacy)
	if err != nil {
		return fmt.Errorf("invalid g value: %w", err)
	}
	y, err := decodeBigInt(w.Y, legacy)
	if err != nil {
		return fmt.Errorf("invalid y value: %w", err)
	}
	x, err := decodeBigInt(w.X, legacy)
	if err != nil {
		return fmt.Errorf("invalid x value: %w", err)
	}

	k.KeyDescription = w.KeyDescription
	k.PrivateKey = &dsa.PrivateKey{
		PublicKey: dsa.PublicKey{
			Parameters: dsa.Parameters{P: p, Q: q, G: g},
			Y:          y,
		},
		X: x,
	}

	return nil
}
