package xcrypto_test

import (
	"crypto/dsa"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/cursive-id/browserid/internal/xcrypto"
	"github.com/stretchr/testify/require"
)

func TestRSASignVerifyRoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	data := []byte("header.payload")
	sig, err := xcrypto.SignRSA(key, data)
	require.NoError(t, err)

	require.NoError(t, xcrypto.VerifyRSA(&key.PublicKey, data, sig))
	require.Error(t, xcrypto.VerifyRSA(&key.PublicKey, []byte("tampered"), sig))
}

func TestDSASignVerifyRoundTrip(t *testing.T) {
	var params dsa.Parameters
	require.NoError(t, dsa.GenerateParameters(&params, rand.Reader, dsa.L1024N160))

	var priv dsa.PrivateKey
	priv.Parameters = params
	require.NoError(t, dsa.GenerateKey(&priv, rand.Reader))

	data := []byte("header.payload")

	for _, alg := range []xcrypto.Algorithm{xcrypto.DS256, xcrypto.DS128} {
		sig, err := xcrypto.SignDSA(alg, &priv, data)
		require.NoError(t, err)
		require.NoError(t, xcrypto.VerifyDSA(alg, &priv.PublicKey, data, sig))
	}
}

func TestHMACSignVerifyRoundTrip(t *testing.T) {
	secret := []byte("shared-secret")
	data := []byte("header.payload")

	sig := xcrypto.SignHMAC(secret, data)
	require.NoError(t, xcrypto.VerifyHMAC(secret, data, sig))
	require.Error(t, xcrypto.VerifyHMAC(secret, []byte("other"), sig))
}

func TestECDHSharedSecretMatchesBothSides(t *testing.T) {
	for _, curve := range []xcrypto.ECDHCurve{xcrypto.ECDHP256, xcrypto.ECDHP384, xcrypto.ECDHP521} {
		alice, err := xcrypto.GenerateECDH(curve)
		require.NoError(t, err)
		bob, err := xcrypto.GenerateECDH(curve)
		require.NoError(t, err)

		aliceSecret, err := xcrypto.ECDHSharedSecret(alice, bob.PublicKey())
		require.NoError(t, err)
		bobSecret, err := xcrypto.ECDHSharedSecret(bob, alice.PublicKey())
		require.NoError(t, err)

		require.Equal(t, aliceSecret, bobSecret)
		require.NotEmpty(t, aliceSecret)
	}
}

func TestECDHSharedSecretRejectsMismatchedCurve(t *testing.T) {
	p256, err := xcrypto.GenerateECDH(xcrypto.ECDHP256)
	require.NoError(t, err)
	p384, err := xcrypto.GenerateECDH(xcrypto.ECDHP384)
	require.NoError(t, err)

	_, err = xcrypto.ECDHSharedSecret(p256, p384.PublicKey())
	require.Error(t, err)
}

func TestDeriveIsDeterministicAndSaltSensitive(t *testing.T) {
	key := []byte("authenticator-root-key-material")

	ark := xcrypto.Derive(key, []byte("ARK"))
	ark2 := xcrypto.Derive(key, []byte("ARK"))
	sessionKey := xcrypto.Derive(key, []byte("some-signing-input"))

	require.Equal(t, ark, ark2)
	require.NotEqual(t, ark, sessionKey)
	require.Len(t, ark, 32)
}
