package jws

import (
	"crypto/dsa"
	"crypto/rand"
	"testing"
)

func generateDSAKey(t *testing.T) *dsa.PrivateKey {
	t.Helper()

	var params dsa.Parameters
	if err := dsa.GenerateParameters(&params, rand.Reader, dsa.L1024N160); err != nil {
		t.Fatal(err)
	}

	var priv dsa.PrivateKey
	priv.Parameters = params
	if err := dsa.GenerateKey(&priv, rand.Reader); err != nil {
		t.Fatal(err)
	}

	return &priv
}

func TestDS256AndDS128(t *testing.T) {
	priv := generateDSAKey(t)
	data := []byte("hello, world")

	for _, alg := range []SignatureAlgorithm{ALG_DS256, ALG_DS128} {
		signer, err := DSSigner(alg, priv)
		if err != nil {
			t.Fatal(err)
		}

		if signer.Alg() != alg {
			t.Error(signer.Alg())
		}

		sig, err := signer.Sign(data)
		if err != nil {
			t.Fatal(err)
		}

		verifier, err := DSVerifier(alg, &priv.PublicKey)
		if err != nil {
			t.Fatal(err)
		}

		if err := verifier.Verify(alg, data, sig); err != nil {
			t.Errorf("%s: %v", alg, err)
		}

		if err := verifier.Verify(alg, []byte("tampered"), sig); err == nil {
			t.Errorf("%s: expected verification of tampered data to fail", alg)
		}
	}
}
