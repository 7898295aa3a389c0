package jwk

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/json"
	"testing"
)

func TestUnmarshalPrivateKey(t *testing.T) {
	t.Run("rsa", func(t *testing.T) {
		k, err := UnmarshalPrivateKey([]byte(`{"kty":"RSA","n":"AQ","e":"Ag","d":"Aw"}`))
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := k.(*RSAPrivateKey); !ok {
			t.Fatalf("expected *RSAPrivateKey, got %T", k)
		}
	})

	t.Run("dsa", func(t *testing.T) {
		k, err := UnmarshalPrivateKey([]byte(`{"kty":"DSA","p":"Aw","q":"BA","g":"BQ","y":"Bg","x":"Bw"}`))
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := k.(*DSAPrivateKey); !ok {
			t.Fatalf("expected *DSAPrivateKey, got %T", k)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if _, err := UnmarshalPrivateKey([]byte(`{"kty":"oct","k":"czNjcjN0"}`)); err == nil {
			t.Fatal("expected error for unsupported private kty")
		}
	})

	t.Run("ec", func(t *testing.T) {
		priv, err := ecdh.P256().GenerateKey(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		data, err := json.Marshal(&ECDHPrivateKey{Curve: ecdh.P256(), Key: priv})
		if err != nil {
			t.Fatal(err)
		}

		k, err := UnmarshalPrivateKey(data)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := k.(*ECDHPrivateKey); !ok {
			t.Fatalf("expected *ECDHPrivateKey, got %T", k)
		}
	})
}

func TestUnmarshalKeyDispatchesEC(t *testing.T) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(&ECDHPublicKey{Curve: ecdh.P256(), Key: priv.PublicKey()})
	if err != nil {
		t.Fatal(err)
	}

	k, err := UnmarshalKey(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := k.(*ECDHPublicKey); !ok {
		t.Fatalf("expected *ECDHPublicKey, got %T", k)
	}
}
