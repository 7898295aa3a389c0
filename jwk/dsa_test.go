package jwk

import (
	"crypto/dsa"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/go-test/deep"
)

func TestDSAPrivateKey_JSONSerialization(t *testing.T) {
	const jsonData = `{"kid":"1","kty":"DSA","p":"Aw","q":"BA","g":"BQ","y":"Bg","x":"Bw"}`

	var pk DSAPrivateKey
	if err := json.Unmarshal([]byte(jsonData), &pk); err != nil {
		t.Fatal(err)
	}

	want := DSAPrivateKey{
		KeyDescription: KeyDescription{KeyID: "1"},
		PrivateKey: &dsa.PrivateKey{
			PublicKey: dsa.PublicKey{
				Parameters: dsa.Parameters{
					P: big.NewInt(3),
					Q: big.NewInt(4),
					G: big.NewInt(5),
				},
				Y: big.NewInt(6),
			},
			X: big.NewInt(7),
		},
	}

	if diff := deep.Equal(want, pk); diff != nil {
		t.Error(diff)
	}

	got, err := json.Marshal(&pk)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != jsonData {
		t.Errorf("expected\n%s but got\n%s", jsonData, string(got))
	}
}

func TestDSAPrivateKey_LegacyHexEncoding(t *testing.T) {
	const jsonData = `{"version":"2012.08.15","kty":"DSA","p":"beef","q":"1","g":"2","y":"3","x":"a"}`

	var pk DSAPrivateKey
	if err := json.Unmarshal([]byte(jsonData), &pk); err != nil {
		t.Fatal(err)
	}

	if pk.PrivateKey.P.String() != "48879" {
		t.Errorf("expected hex-decoded P 48879 (0xbeef), got %s", pk.PrivateKey.P)
	}
	if pk.PrivateKey.X.String() != "10" {
		t.Errorf("expected hex-decoded X 10 (0xa), got %s", pk.PrivateKey.X)
	}
}
