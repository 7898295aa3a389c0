package jwt

import (
	"testing"

	"github.com/cursive-id/browserid/jws"
	"github.com/go-test/deep"
)

func TestSignAndDecode(t *testing.T) {
	signer := jws.HS256([]byte("secret"))

	claims := Claims{
		ClaimSubject:  "john.doe",
		ClaimIssuer:   "oauth-server",
		ClaimAudience: []string{"oauth-server-demo-app"},
	}

	token, err := Sign(signer, claims)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := Decode(token.Compact())
	if err != nil {
		t.Fatal(err)
	}

	if err := decoded.VerifySignatureOnly(signer); err != nil {
		t.Error(err)
	}

	sub, err := decoded.Claims().GetString(ClaimSubject)
	if err != nil {
		t.Fatal(err)
	}
	if sub != "john.doe" {
		t.Errorf("expected subject john.doe, got %s", sub)
	}

	aud, err := decoded.Claims().GetStringSlice(ClaimAudience)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(aud, []string{"oauth-server-demo-app"}); diff != nil {
		t.Error(diff)
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	signer := jws.HS256([]byte("secret"))
	j, err := jws.Sign(signer, []byte("not json"), jws.Header{Type: "JWT"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Decode(j.Compact()); err == nil {
		t.Error("expected error for non-object payload")
	}
}
