package cryptokit

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey runs HKDF-SHA256 over a raw shared secret, returning
// length bytes of key material bound to info (a domain-separation
// label, e.g. the request-crypto or web-encryption-key context).
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, salt, info)
	out := make([]byte, length)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("cryptokit: hkdf derive: %w", err)
	}
	return out, nil
}

// DeriveRequestKeys derives a fresh RequestKeys pair from a negotiated
// shared secret (e.g. the web-encryption-key exchange), keeping the
// aes_key/hmac_key split the wire format expects.
func DeriveRequestKeys(secret, salt []byte) (RequestKeys, error) {
	material, err := DeriveKey(secret, salt, []byte("gmweb-request-crypto"), 64)
	if err != nil {
		return RequestKeys{}, err
	}
	var keys RequestKeys
	copy(keys.AESKey[:], material[:32])
	copy(keys.HMACKey[:], material[32:])
	return keys, nil
}
