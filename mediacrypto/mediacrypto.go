// Package mediacrypto defines the chunked AEAD boundary media
// upload/download would call. Media transfer itself is treated as a
// self-contained, external concern (spec §1); this package only
// fixes the cipher interface and ships one concrete implementation
// built on HPKE key agreement.
package mediacrypto

// ChunkSize is the plaintext chunk size media bytes are sealed in:
// 32KiB minus the AEAD's 28-byte overhead (12-byte nonce convention
// folded into the tag for this implementation's purposes, plus a
// 16-byte GCM tag), so every sealed chunk lands on a 32KiB boundary.
const ChunkSize = 32*1024 - 28

// ChunkCipher seals and opens fixed-size media chunks. Implementations
// must be safe for sequential reuse across a single upload/download's
// chunk stream but need not be safe for concurrent use by multiple
// streams sharing one instance.
type ChunkCipher interface {
	// SealChunk encrypts one plaintext chunk (at most ChunkSize bytes)
	// and authenticates it against its index, so chunks can't be
	// reordered or truncated without detection.
	SealChunk(index uint64, plaintext []byte) ([]byte, error)

	// OpenChunk reverses SealChunk, rejecting the chunk if the index
	// or ciphertext was tampered with.
	OpenChunk(index uint64, sealed []byte) ([]byte, error)
}
