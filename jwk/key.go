package jwk

import (
	"encoding/json"
	"fmt"
)

// KeyType defines the types of keys as specified in RFC 7518 section 6.1
// (https://www.rfc-editor.org/rfc/rfc7518.html#section-6.1), restricted
// to the set BrowserID keys actually use.
type KeyType string

const (
	// Parameter "kty" for encoding the key type
	ParamKeyType = "kty"

	// Key Type RSA
	KeyTypeRSA KeyType = "RSA"

	// Key Type DSA
	KeyTypeDSA KeyType = "DSA"

	// Key Type Octet Stream
	KeyTypeOct KeyType = "oct"

	// Key Type Elliptic Curve, used only for ECDH key-agreement
	// material; BrowserID's closed JWS algorithm set has no EC member.
	KeyTypeEC KeyType = "EC"
)

// --

// KeyUse defines the types of key use as specified in RFC 7517 section 4.2
// (https://datatracker.ietf.org/doc/html/rfc7517#section-4.2)
type KeyUse string

const (
	// Parameter "use" for encoding the key use
	ParamUse = "use"

	// Public Key use for signatures
	UseSignature KeyUse = "sig"

	// Public Key use for encryption
	UseEncryption KeyUse = "enc"
)

// --

// KeyOp defines the types of key operations as specified in RFC 7517 section 4.3
// (https://datatracker.ietf.org/doc/html/rfc7517#section-4.3)
type KeyOp string

const (
	// Parameter "key_ops" for encoding the key operations
	ParamKeyOps = "key_ops"

	// compute digital signature or MAC
	KeyOpsSign KeyOp = "sign"

	// verify digital signature or MAC
	KeyOpsVerify KeyOp = "verify"
)

const (
	// Parameter "alg" for encoding the key's algorithm
	ParamAlg = "alg"

	// Parameter "kid" for encoding the key's ID
	ParamKID = "kid"

	// Parameter "version" stamped by legacy IdPs; its presence selects
	// decimal-string big integer encoding instead of base64url.
	ParamVersion = "version"
)

// --

// Key defines the interface implemented by all keys. It defines
// getters for the common metadata parameters as specified in RFC 7517
// section 4 (https://datatracker.ietf.org/doc/html/rfc7517#section-4).
type Key interface {
	// The "kty" parameter
	Type() KeyType

	// The "use" parameter
	Use() KeyUse

	// The "key_ops" parameter
	Operations() []KeyOp

	// The "alg" parameter
	Algorithm() string

	// The "kid" parameter
	ID() string

	// The legacy "version" parameter, empty if the key did not carry one.
	Version() string
}

// MarshalKey marshals k into a JWK representation.
func MarshalKey(k Key) ([]byte, error) {
	return json.Marshal(k)
}

// UnmarshalKey unmarshals JSON data as a JWK Key and returns an
// appropriate type depending on kty. Unsupported key types yield an error.
func UnmarshalKey(data []byte) (Key, error) {
	type keyWrapper struct {
		Type KeyType `json:"kty"`
	}

	var kw keyWrapper
	if err := json.Unmarshal(data, &kw); err != nil {
		return nil, err
	}

	switch kw.Type {
	case KeyTypeRSA:
		var k RSAPublicKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	case KeyTypeDSA:
		var k DSAPublicKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	case KeyTypeOct:
		var k SymmetricKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	case KeyTypeEC:
		var k ECDHPublicKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	default:
		return nil, fmt.Errorf("unsupported kty: %s", kw.Type)
	}
}

// UnmarshalPrivateKey unmarshals JSON data as a JWK private key,
// dispatching on "kty" the same way UnmarshalKey does. Use this when
// loading an IdP's own signing key material rather than a peer's
// public key.
func UnmarshalPrivateKey(data []byte) (Key, error) {
	type keyWrapper struct {
		Type KeyType `json:"kty"`
	}

	var kw keyWrapper
	if err := json.Unmarshal(data, &kw); err != nil {
		return nil, err
	}

	switch kw.Type {
	case KeyTypeRSA:
		var k RSAPrivateKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	case KeyTypeDSA:
		var k DSAPrivateKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	case KeyTypeEC:
		var k ECDHPrivateKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	default:
		return nil, fmt.Errorf("unsupported private kty: %s", kw.Type)
	}
}

// KeyDescription provides a simple struct that implements the generic
// getters defined by Key. It is included in each key's struct
// definition and allows the values to be set.
type KeyDescription struct {
	KeyUse        KeyUse  `json:"use,omitempty"`
	KeyOperations []KeyOp `json:"key_ops,omitempty"`
	KeyAlgorithm  string  `json:"alg,omitempty"`
	KeyID         string  `json:"kid,omitempty"`
	KeyVersion    string  `json:"version,omitempty"`
}

func (k *KeyDescription) Use() KeyUse {
	return k.KeyUse
}

func (k *KeyDescription) Operations() []KeyOp {
	return k.KeyOperations
}

func (k *KeyDescription) Algorithm() string {
	return k.KeyAlgorithm
}

func (k *KeyDescription) ID() string {
	return k.KeyID
}

func (k *KeyDescription) Version() string {
	return k.KeyVersion
}
