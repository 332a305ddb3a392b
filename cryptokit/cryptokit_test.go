package cryptokit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRequestRoundTrip(t *testing.T) {
	keys, err := GenerateRequestKeys()
	require.NoError(t, err)

	plaintexts := [][]byte{
		[]byte(""),
		[]byte("hello"),
		make([]byte, 1024),
	}

	for _, pt := range plaintexts {
		sealed, err := EncryptRequest(keys, pt)
		require.NoError(t, err)

		opened, err := DecryptRequest(keys, sealed)
		require.NoError(t, err)
		assert.Equal(t, pt, opened)
	}
}

func TestDecryptRequestRejectsBitFlips(t *testing.T) {
	keys, err := GenerateRequestKeys()
	require.NoError(t, err)

	sealed, err := EncryptRequest(keys, []byte("protect me"))
	require.NoError(t, err)

	for i := range sealed {
		corrupted := append([]byte(nil), sealed...)
		corrupted[i] ^= 0x01
		_, err := DecryptRequest(keys, corrupted)
		assert.Error(t, err, "bit flip at byte %d should fail verification", i)
	}
}

func TestDecryptRequestRejectsShortPayload(t *testing.T) {
	keys, err := GenerateRequestKeys()
	require.NoError(t, err)
	_, err = DecryptRequest(keys, []byte("too short"))
	assert.Error(t, err)
}

func TestRefreshKeySignVerifyRoundTrip(t *testing.T) {
	key, err := GenerateRefreshKey()
	require.NoError(t, err)

	spki, err := key.PublicKeySPKI()
	require.NoError(t, err)

	message := []byte("request-id-123:1700000000000000")
	sig, err := key.Sign(message)
	require.NoError(t, err)

	ok, err := Verify(spki, message, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(spki, []byte("tampered message"), sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRefreshKeyFromPrivateRejectsWrongCurve(t *testing.T) {
	_, err := RefreshKeyFromPrivate(nil)
	assert.Error(t, err)
}

func TestDeriveRequestKeysDeterministic(t *testing.T) {
	secret := []byte("shared-secret-material")
	salt := []byte("salt")

	a, err := DeriveRequestKeys(secret, salt)
	require.NoError(t, err)
	b, err := DeriveRequestKeys(secret, salt)
	require.NoError(t, err)

	assert.Equal(t, a, b)

	c, err := DeriveRequestKeys(secret, []byte("different-salt"))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
