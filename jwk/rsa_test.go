package jwk

import (
	"crypto/rsa"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/go-test/deep"
)

func TestRSAPublicKey_JSONSerialization(t *testing.T) {
	const jsonData = `{"use":"sig","kid":"1","kty":"RSA","n":"AQ","e":"Ag"}`

	t.Run("marshal", func(t *testing.T) {

		pk := &RSAPublicKey{
			KeyDescription: KeyDescription{
				KeyUse: UseSignature,
				KeyID:  "1",
			},
			PublicKey: &rsa.PublicKey{
				N: big.NewInt(1),
				E: 2,
			},
		}

		got, err := json.Marshal(pk)
		if err != nil {
			t.Fatal(err)
		}

		if string(got) != jsonData {
			t.Errorf("expected\n%s but got\n%s", jsonData, string(got))
		}
	})

	t.Run("unmarshal", func(t *testing.T) {
		var pk RSAPublicKey

		if err := json.Unmarshal([]byte(jsonData), &pk); err != nil {
			t.Fatal(err)
		}

		want := RSAPublicKey{
			KeyDescription: KeyDescription{
				KeyUse: UseSignature,
				KeyID:  "1",
			},
			PublicKey: &rsa.PublicKey{
				N: big.NewInt(1),
				E: 2,
			},
		}

		if diff := deep.Equal(want, pk); diff != nil {
			t.Error(diff)
		}
	})
}

func TestRSAPublicKey_LegacyDecimalEncoding(t *testing.T) {
	const jsonData = `{"version":"2012.08.15","kty":"RSA","n":"65537","e":"17"}`

	var pk RSAPublicKey
	if err := json.Unmarshal([]byte(jsonData), &pk); err != nil {
		t.Fatal(err)
	}

	if pk.PublicKey.N.String() != "65537" {
		t.Errorf("expected decimal-decoded N 65537, got %s", pk.PublicKey.N)
	}
	if pk.PublicKey.E != 17 {
		t.Errorf("expected decimal-decoded E 17, got %d", pk.PublicKey.E)
	}

	out, err := json.Marshal(&pk)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != jsonData {
		t.Errorf("expected round-trip to preserve legacy decimal encoding, got %s", out)
	}
}

func TestRSAPublicKey_LegacyHexEncoding(t *testing.T) {
	// "beef" and "a" contain hex letters, so they are not all-digit
	// and must be auto-detected as hex rather than rejected or
	// misread as decimal.
	const jsonData = `{"version":"2012.08.15","kty":"RSA","n":"beef","e":"a"}`

	var pk RSAPublicKey
	if err := json.Unmarshal([]byte(jsonData), &pk); err != nil {
		t.Fatal(err)
	}

	if pk.PublicKey.N.String() != "48879" {
		t.Errorf("expected hex-decoded N 48879 (0xbeef), got %s", pk.PublicKey.N)
	}
	if pk.PublicKey.E != 10 {
		t.Errorf("expected hex-decoded E 10 (0xa), got %d", pk.PublicKey.E)
	}
}

func TestRSAPrivateKey_JSONSerialization(t *testing.T) {
	const jsonData = `{"kid":"1","kty":"RSA","n":"AQ","e":"Ag","d":"Aw"}`

	var pk RSAPrivateKey
	if err := json.Unmarshal([]byte(jsonData), &pk); err != nil {
		t.Fatal(err)
	}

	if pk.PrivateKey.N.Int64() != 1 || pk.PrivateKey.E != 2 || pk.PrivateKey.D.Int64() != 3 {
		t.Fatalf("unexpected decoded private key: n=%s e=%d d=%s", pk.PrivateKey.N, pk.PrivateKey.E, pk.PrivateKey.D)
	}

	got, err := json.Marshal(&pk)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != jsonData {
		t.Errorf("expected\n%s but got\n%s", jsonData, string(got))
	}
}

func TestRSAPrivateKey_LegacyVersionTag(t *testing.T) {
	const jsonData = `{"version":"2012.08.15","kty":"RSA","n":"65537","e":"17","d":"beef"}`

	var pk RSAPrivateKey
	if err := json.Unmarshal([]byte(jsonData), &pk); err != nil {
		t.Fatal(err)
	}

	if pk.PrivateKey.N.String() != "65537" {
		t.Errorf("expected decimal-decoded N 65537, got %s", pk.PrivateKey.N)
	}
	if pk.PrivateKey.D.String() != "48879" {
		t.Errorf("expected hex-decoded D 48879 (0xbeef), got %s", pk.PrivateKey.D)
	}
}
