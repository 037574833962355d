package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/lessondesk/pkg/cryptox"
	"github.com/aussiebroadwan/lessondesk/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "lessondesk-test"

func newTestSigner(t *testing.T, kid string) jwtx.Signer {
	t.Helper()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	require.NoError(t, signer.Validate())
	return signer
}

func TestEdDSASignAndVerify(t *testing.T) {
	signer := newTestSigner(t, "test-key-eddsa")
	require.Equal(t, "EdDSA", signer.Alg())
	require.Equal(t, "test-key-eddsa", signer.KID())

	claims := jwtx.NewAccessClaims("user-456", "swimcoach", "teacher", exampleIssuer, 5*time.Minute, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))
	require.True(t, keyset.IsReady())

	parsed, err := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, 0).Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, parsed.Subject)
	require.Equal(t, claims.Username, parsed.Username)
	require.Equal(t, claims.Role, parsed.Role)
	require.Equal(t, claims.ID, parsed.ID)
}

func TestEdDSAVerifyFailsForWrongIssuer(t *testing.T) {
	signer := newTestSigner(t, "k1")
	token, err := signer.Sign(jwtx.NewAccessClaims("u", "", "", exampleIssuer, time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	_, err = jwtx.NewVerifierEdDSA(keyset, "wrong-issuer", 0).Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestEdDSAVerifyFailsForUnknownKey(t *testing.T) {
	signer1 := newTestSigner(t, "key1")
	signer2 := newTestSigner(t, "key2")

	token, err := signer1.Sign(jwtx.NewAccessClaims("u", "", "", exampleIssuer, time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer2))

	_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer, 0).Verify(token)
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}

func TestEdDSAVerifyExpired(t *testing.T) {
	signer := newTestSigner(t, "k1")
	issued := time.Now().UTC().Add(-10 * time.Minute)
	token, err := signer.Sign(jwtx.NewAccessClaims("u", "", "", exampleIssuer, time.Minute, issued))
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer, 0).Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}
