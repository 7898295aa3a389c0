package jwk

import (
	"crypto/ecdh"
	"encoding/json"
	"fmt"

	"github.com/cursive-id/browserid/internal/codec"
)

var supportedECDHCurves = map[string]ecdh.Curve{
	"P-256": ecdh.P256(),
	"P-384": ecdh.P384(),
	"P-521": ecdh.P521(),
}

func ecdhCurveName(c ecdh.Curve) (string, error) {
	switch c {
	case ecdh.P256():
		return "P-256", nil
	case ecdh.P384():
		return "P-384", nil
	case ecdh.P521():
		return "P-521", nil
	default:
		return "", fmt.Errorf("unsupported EC curve")
	}
}

func ecdhFieldLen(c ecdh.Curve) (int, error) {
	switch c {
	case ecdh.P256():
		return 32, nil
	case ecdh.P384():
		return 48, nil
	case ecdh.P521():
		return 66, nil
	default:
		return 0, fmt.Errorf("unsupported EC curve")
	}
}

// splitUncompressedPoint splits the 0x04||X||Y encoding crypto/ecdh
// public keys marshal to into its X and Y coordinates.
func splitUncompressedPoint(point []byte) (x, y []byte, err error) {
	if len(point) < 3 || point[0] != 0x04 || (len(point)-1)%2 != 0 {
		return nil, nil, fmt.Errorf("malformed EC point")
	}
	n := (len(point) - 1) / 2
	return point[1 : 1+n], point[1+n:], nil
}

func joinUncompressedPoint(crv ecdh.Curve, x, y []byte) ([]byte, error) {
	fieldLen, err := ecdhFieldLen(crv)
	if err != nil {
		return nil, err
	}
	if len(x) > fieldLen || len(y) > fieldLen {
		return nil, fmt.Errorf("EC coordinate too long for curve")
	}

	point := make([]byte, 1+2*fieldLen)
	point[0] = 0x04
	copy(point[1+fieldLen-len(x):1+fieldLen], x)
	copy(point[1+2*fieldLen-len(y):], y)
	return point, nil
}

// ECDHPublicKey implements a JWK representation of an elliptic-curve
// Diffie-Hellman public key (RFC 7518 section 6.2.1). BrowserID's own
// JWS algorithm table has no EC signature member, so this type carries
// key-agreement material only: the out-of-band channel-binding step a
// relying party's transport layer performs to establish the session
// key a successful verification needs before browserid's
// Context.EnableReauth can be called.
type ECDHPublicKey struct {
	KeyDescription
	Curve ecdh.Curve
	Key   *ecdh.PublicKey
}

func (k *ECDHPublicKey) Type() KeyType {
	return KeyTypeEC
}

type ecdhPublicKeyJSONWrapper struct {
	KeyDescription
	Type  KeyType `json:"kty"`
	Curve string  `json:"crv"`
	X     string  `json:"x"`
	Y     string  `json:"y"`
}

func (k *ECDHPublicKey) MarshalJSON() ([]byte, error) {
	name, err := ecdhCurveName(k.Curve)
	if err != nil {
		return nil, err
	}
	x, y, err := splitUncompressedPoint(k.Key.Bytes())
	if err != nil {
		return nil, err
	}

	w := ecdhPublicKeyJSONWrapper{
		KeyDescription: k.KeyDescription,
		Type:           k.Type(),
		Curve:          name,
		X:              codec.Encode(x),
		Y:              codec.Encode(y),
	}
	return json.Marshal(w)
}

func (k *ECDHPublicKey) UnmarshalJSON(data []byte) error {
	var w ecdhPublicKeyJSONWrapper

	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type != KeyTypeEC {
		return fmt.Errorf("invalid key type: %s", w.Type)
	}

	crv, ok := supportedECDHCurves[w.Curve]
	if !ok {
		return fmt.Errorf("invalid EC curve: %s", w.Curve)
	}

	x, err := codec.Decode(w.X)
	if err != nil {
		return fmt.Errorf("invalid x value: %w", err)
	}
	y, err := codec.Decode(w.Y)
	if err != nil {
		return fmt.Errorf("invalid y value: %w", err)
	}

	point, err := joinUncompressedPoint(crv, x, y)
	if err != nil {
		return fmt.Errorf("invalid EC point: %w", err)
	}
	pub, err := crv.NewPublicKey(point)
	if err != nil {
		return fmt.Errorf("invalid EC point: %w", err)
	}

	k.KeyDescription = w.KeyDescription
	k.Curve = crv
	k.Key = pub
	return nil
}

// ECDHPrivateKey is the private counterpart of ECDHPublicKey: the
// relying party's own ephemeral ECDH key for a channel-binding
// exchange.
type ECDHPrivateKey struct {
	KeyDescription
	Curve ecdh.Curve
	Key   *ecdh.PrivateKey
}

func (k *ECDHPrivateKey) Type() KeyType {
	return KeyTypeEC
}

type ecdhPrivateKeyJSONWrapper struct {
	KeyDescription
	Type  KeyType `json:"kty"`
	Curve string  `json:"crv"`
	X     string  `json:"x"`
	Y     string  `json:"y"`
	D     string  `json:"d"`
}

func (k *ECDHPrivateKey) MarshalJSON() ([]byte, error) {
	name, err := ecdhCurveName(k.Curve)
	if err != nil {
		return nil, err
	}
	x, y, err := splitUncompressedPoint(k.Key.PublicKey().Bytes())
	if err != nil {
		return nil, err
	}

	w := ecdhPrivateKeyJSONWrapper{
		KeyDescription: k.KeyDescription,
		Type:           k.Type(),
		Curve:          name,
		X:              codec.Encode(x),
		Y:              codec.Encode(y),
		D:              codec.Encode(k.Key.Bytes()),
	}
	return json.Marshal(w)
}

func (k *ECDHPrivateKey) UnmarshalJSON(data []byte) error {
	var w ecdhPrivateKeyJSONWrapper

	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type != KeyTypeEC {
		return fmt.Errorf("invalid key type: %s", w.Type)
	}

	crv, ok := supportedECDHCurves[w.Curve]
	if !ok {
		return fmt.Errorf("invalid EC curve: %s", w.Curve)
	}

	d, err := codec.Decode(w.D)
	if err != nil {
		return fmt.Errorf("invalid d value: %w", err)
	}

	priv, err := crv.NewPrivateKey(d)
	if err != nil {
		return fmt.Errorf("invalid EC private key: %w", err)
	}

	k.KeyDescription = w.KeyDescription
	k.Curve = crv
	k.Key = priv
	return nil
}
