package mediacrypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkCipherSenderReceiverRoundTrip(t *testing.T) {
	recipientPriv, err := GenerateX25519KeyPair()
	require.NoError(t, err)

	info := []byte("gmweb-media-test")
	sender, enc, err := NewSenderChunkCipher(recipientPriv.PublicKey(), info)
	require.NoError(t, err)

	receiver, err := NewReceiverChunkCipher(recipientPriv, enc, info)
	require.NoError(t, err)

	chunks := [][]byte{
		bytes.Repeat([]byte{0x01}, ChunkSize),
		[]byte("short final chunk"),
		{},
	}

	for i, chunk := range chunks {
		sealed, err := sender.SealChunk(uint64(i), chunk)
		require.NoError(t, err)

		opened, err := receiver.OpenChunk(uint64(i), sealed)
		require.NoError(t, err)
		assert.Equal(t, chunk, opened)
	}
}

func TestChunkCipherRejectsReorderedChunks(t *testing.T) {
	recipientPriv, err := GenerateX25519KeyPair()
	require.NoError(t, err)

	info := []byte("gmweb-media-test")
	sender, enc, err := NewSenderChunkCipher(recipientPriv.PublicKey(), info)
	require.NoError(t, err)
	receiver, err := NewReceiverChunkCipher(recipientPriv, enc, info)
	require.NoError(t, err)

	sealed, err := sender.SealChunk(0, []byte("chunk zero"))
	require.NoError(t, err)

	_, err = receiver.OpenChunk(1, sealed)
	assert.Error(t, err)
}

func TestChunkCipherRejectsOversizeChunk(t *testing.T) {
	recipientPriv, err := GenerateX25519KeyPair()
	require.NoError(t, err)
	sender, _, err := NewSenderChunkCipher(recipientPriv.PublicKey(), []byte("info"))
	require.NoError(t, err)

	_, err = sender.SealChunk(0, bytes.Repeat([]byte{0x02}, ChunkSize+1))
	assert.Error(t, err)
}

func TestChunkCipherDifferentInfoFailsToOpen(t *testing.T) {
	recipientPriv, err := GenerateX25519KeyPair()
	require.NoError(t, err)

	sender, enc, err := NewSenderChunkCipher(recipientPriv.PublicKey(), []byte("info-a"))
	require.NoError(t, err)

	receiver, err := NewReceiverChunkCipher(recipientPriv, enc, []byte("info-b"))
	require.NoError(t, err)

	sealed, err := sender.SealChunk(0, []byte("payload"))
	require.NoError(t, err)

	_, err = receiver.OpenChunk(0, sealed)
	assert.Error(t, err)
}
