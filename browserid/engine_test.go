package browserid_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cursive-id/browserid"
	"github.com/cursive-id/browserid/authority"
	"github.com/cursive-id/browserid/jwk"
	"github.com/cursive-id/browserid/jws"
	"github.com/cursive-id/browserid/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func clientFor(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			clone := req.Clone(req.Context())
			clone.Host = clone.URL.Host
			clone.URL.Scheme = "http"
			clone.URL.Host = srv.Listener.Addr().String()
			return srv.Client().Transport.RoundTrip(clone)
		}),
	}
}

func issuerServer(t *testing.T, priv *rsa.PrivateKey) *httptest.Server {
	t.Helper()
	pub := &jwk.RSAPublicKey{PublicKey: &priv.PublicKey}
	raw, err := jwk.MarshalKey(pub)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc(authority.WellKnownPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"public-key":` + string(raw) + `}`))
	})
	return httptest.NewServer(mux)
}

func buildAssertion(t *testing.T, rootKey, leafKey *rsa.PrivateKey, issuer, email, audience string, now time.Time) string {
	t.Helper()

	rootSigner, err := jws.RSSigner(jws.ALG_RS256, rootKey)
	require.NoError(t, err)

	leafPub := &jwk.RSAPublicKey{PublicKey: &leafKey.PublicKey}
	certClaims := jwt.Claims{
		jwt.ClaimIssuer: issuer,
		"principal":     map[string]any{"email": email},
		"public-key":    leafPub,
	}
	certClaims.SetTimeMillis(jwt.ClaimIssuedAt, now)
	certClaims.SetTimeMillis(jwt.ClaimExpirationTime, now.Add(time.Hour))
	cert, err := jwt.Sign(rootSigner, certClaims)
	require.NoError(t, err)

	leafSigner, err := jws.RSSigner(jws.ALG_RS256, leafKey)
	require.NoError(t, err)
	assertionClaims := jwt.Claims{jwt.ClaimAudience: audience}
	assertionClaims.SetTimeMillis(jwt.ClaimIssuedAt, now)
	assertionClaims.SetTimeMillis(jwt.ClaimExpirationTime, now.Add(2*time.Minute))
	assertionToken, err := jwt.Sign(leafSigner, assertionClaims)
	require.NoError(t, err)

	return "~" + cert.Compact() + "~" + assertionToken.Compact()
}

func TestContextVerifyThenReauth(t *testing.T) {
	rootKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	leafKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := issuerServer(t, rootKey)
	defer srv.Close()

	cfg, err := browserid.DefaultConfig()
	require.NoError(t, err)

	ctx, err := browserid.NewContext(cfg, browserid.WithHTTPClient(clientFor(srv)))
	require.NoError(t, err)
	defer ctx.Close()

	now := time.Now()
	audience := "https://rp.example.com"
	email := "alice@idp.example.org"
	compact := buildAssertion(t, rootKey, leafKey, "idp.example.org", email, audience, now)

	id, err := ctx.Verify(context.Background(), compact, audience, nil, now)
	require.NoError(t, err)
	assert.Equal(t, email, id.Email())

	sessionKey := []byte("a-channel-established-session-key")
	require.NoError(t, ctx.EnableReauth(id, sessionKey, compact, audience, now))

	authenticator, exp, err := ctx.GetReauthAssertion(audience, nil, email, now)
	require.NoError(t, err)
	assert.True(t, exp.After(now))

	reauthID, err := ctx.Verify(context.Background(), authenticator, audience, nil, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, audience, reauthID.Audience())
}

func TestDefaultConfigAppliesEnvDefaults(t *testing.T) {
	cfg, err := browserid.DefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Skew)
	assert.Equal(t, 6, cfg.MaxCerts)
	assert.True(t, cfg.AllowReauth)
}
