package mediacrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	circlhpke "github.com/cloudflare/circl/hpke"
)

const exportContext = "gmweb-media-chunk-key"

var suite = circlhpke.NewSuite(
	circlhpke.KEM_X25519_HKDF_SHA256,
	circlhpke.KDF_HKDF_SHA256,
	circlhpke.AEAD_ChaCha20Poly1305,
)

// GenerateX25519KeyPair creates a fresh recipient keypair for a media
// download/upload exchange.
func GenerateX25519KeyPair() (*ecdh.PrivateKey, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("mediacrypto: generating x25519 key: %w", err)
	}
	return priv, nil
}

// circlHPKEChunkCipher derives its AES-256-GCM chunk key from an HPKE
// exporter secret negotiated once per upload/download, then seals or
// opens each fixed-size chunk with a nonce derived from the chunk
// index so chunks can't be replayed out of order.
type circlHPKEChunkCipher struct {
	aead cipher.AEAD
}

// NewSenderChunkCipher runs the HPKE sender side against the
// recipient's X25519 public key, returning the cipher plus the
// encapsulated key (enc) the recipient needs to open the same secret.
func NewSenderChunkCipher(peerPub *ecdh.PublicKey, info []byte) (ChunkCipher, []byte, error) {
	kem := circlhpke.KEM_X25519_HKDF_SHA256.Scheme()
	recipient, err := kem.UnmarshalBinaryPublicKey(peerPub.Bytes())
	if err != nil {
		return nil, nil, fmt.Errorf("mediacrypto: unmarshal recipient public key: %w", err)
	}

	sender, err := suite.NewSender(recipient, info)
	if err != nil {
		return nil, nil, fmt.Errorf("mediacrypto: hpke new sender: %w", err)
	}

	enc, sealer, err := sender.Setup(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("mediacrypto: hpke setup: %w", err)
	}

	secret := sealer.Export([]byte(exportContext), 32)
	cc, err := newChunkCipherFromSecret(secret)
	if err != nil {
		return nil, nil, err
	}
	return cc, enc, nil
}

// NewReceiverChunkCipher reproduces the sender's exporter secret from
// the recipient's private key and the sender's encapsulated key.
func NewReceiverChunkCipher(priv *ecdh.PrivateKey, enc []byte, info []byte) (ChunkCipher, error) {
	kem := circlhpke.KEM_X25519_HKDF_SHA256.Scheme()
	skR, err := kem.UnmarshalBinaryPrivateKey(priv.Bytes())
	if err != nil {
		return nil, fmt.Errorf("mediacrypto: unmarshal recipient private key: %w", err)
	}

	receiver, err := suite.NewReceiver(skR, info)
	if err != nil {
		return nil, fmt.Errorf("mediacrypto: hpke new receiver: %w", err)
	}

	opener, err := receiver.Setup(enc)
	if err != nil {
		return nil, fmt.Errorf("mediacrypto: hpke receiver setup: %w", err)
	}

	secret := opener.Export([]byte(exportContext), 32)
	return newChunkCipherFromSecret(secret)
}

func newChunkCipherFromSecret(secret []byte) (*circlHPKEChunkCipher, error) {
	block, err := aes.NewCipher(secret)
	if err != nil {
		return nil, fmt.Errorf("mediacrypto: aes cipher from exporter secret: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("mediacrypto: gcm from aes cipher: %w", err)
	}
	return &circlHPKEChunkCipher{aead: aead}, nil
}

// chunkNonce derives a 12-byte GCM nonce from a chunk index so every
// chunk in a stream gets a distinct nonce under the same key.
func chunkNonce(index uint64) []byte {
	nonce := make([]byte, 12)
	binary.BigEndian.PutUint64(nonce[4:], index)
	return nonce
}

func (c *circlHPKEChunkCipher) SealChunk(index uint64, plaintext []byte) ([]byte, error) {
	if len(plaintext) > ChunkSize {
		return nil, fmt.Errorf("mediacrypto: chunk exceeds max size %d", ChunkSize)
	}
	nonce := chunkNonce(index)
	return c.aead.Seal(nil, nonce, plaintext, nil), nil
}

func (c *circlHPKEChunkCipher) OpenChunk(index uint64, sealed []byte) ([]byte, error) {
	nonce := chunkNonce(index)
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("mediacrypto: chunk %d failed to open: %w", index, err)
	}
	return plaintext, nil
}
