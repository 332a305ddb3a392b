// Package cryptokit implements the wire-level cryptographic primitives
// this protocol needs: AES-CTR+HMAC request-payload encryption, P-256
// refresh-key signing with PKIX SPKI DER encoding, and HKDF-based key
// derivation. Media chunk AEAD lives in the separate mediacrypto
// package (spec §1 treats it as a self-contained, interface-level
// concern).
package cryptokit

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"
)

const (
	ivSize  = 16
	macSize = 32
)

// RequestKeys is the (aes_key, hmac_key) pair AuthState carries for
// encrypting/decrypting RPC payloads.
type RequestKeys struct {
	AESKey  [32]byte
	HMACKey [32]byte
}

// GenerateRequestKeys produces a fresh random key pair, as done once
// per pairing.
func GenerateRequestKeys() (RequestKeys, error) {
	var keys RequestKeys
	if _, err := io.ReadFull(rand.Reader, keys.AESKey[:]); err != nil {
		return RequestKeys{}, fmt.Errorf("cryptokit: generating aes key: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, keys.HMACKey[:]); err != nil {
		return RequestKeys{}, fmt.Errorf("cryptokit: generating hmac key: %w", err)
	}
	return keys, nil
}

// EncryptRequest seals plaintext per spec §6.4: AES-256-CTR keystream
// keyed by aes_key, followed by a 16-byte IV, followed by an
// HMAC-SHA256 over ciphertext||iv keyed by hmac_key. Layout:
// ciphertext | iv(16) | hmac(32).
func EncryptRequest(keys RequestKeys, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(keys.AESKey[:])
	if err != nil {
		return nil, fmt.Errorf("cryptokit: aes cipher: %w", err)
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("cryptokit: generating iv: %w", err)
	}

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCTR(block, iv).XORKeyStream(ciphertext, plaintext)

	mac := hmac.New(sha256.New, keys.HMACKey[:])
	mac.Write(ciphertext)
	mac.Write(iv)
	tag := mac.Sum(nil)

	out := make([]byte, 0, len(ciphertext)+ivSize+macSize)
	out = append(out, ciphertext...)
	out = append(out, iv...)
	out = append(out, tag...)
	return out, nil
}

// DecryptRequest reverses EncryptRequest, rejecting the payload if the
// HMAC tag does not verify (constant-time comparison) or the payload
// is too short to contain an IV and tag.
func DecryptRequest(keys RequestKeys, payload []byte) ([]byte, error) {
	if len(payload) < ivSize+macSize {
		return nil, fmt.Errorf("cryptokit: payload too short to contain iv and hmac tag")
	}

	ctLen := len(payload) - ivSize - macSize
	ciphertext := payload[:ctLen]
	iv := payload[ctLen : ctLen+ivSize]
	tag := payload[ctLen+ivSize:]

	mac := hmac.New(sha256.New, keys.HMACKey[:])
	mac.Write(ciphertext)
	mac.Write(iv)
	expected := mac.Sum(nil)

	if subtle.ConstantTimeCompare(expected, tag) != 1 {
		return nil, fmt.Errorf("cryptokit: hmac verification failed")
	}

	block, err := aes.NewCipher(keys.AESKey[:])
	if err != nil {
		return nil, fmt.Errorf("cryptokit: aes cipher: %w", err)
	}

	plaintext := make([]byte, ctLen)
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}
