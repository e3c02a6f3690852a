// Package crypto holds the primitives used to keep remembered credentials
// encrypted at rest.
//
// Key hierarchy:
//
//	master secret (config) --Argon2id(salt)--> master key
//	master key --AES-256-GCM--> wrapped storage key (persisted)
//	storage key --AES-256-GCM--> encrypted credentials (persisted)
//
// The storage key is random and generated once per installation. Losing the
// master secret makes the wrapped key unusable; callers then cycle the key
// and drop what it protected.
package crypto

// KeyChainService generates, derives and applies the keys of the hierarchy
// above.
type KeyChainService interface {
	// GenerateSalt returns 16 random bytes used as the Argon2id salt.
	GenerateSalt() ([]byte, error)

	// GenerateStorageKey returns a fresh random 256-bit storage key.
	GenerateStorageKey() ([]byte, error)

	// DeriveMasterKey derives a 256-bit key from secret and salt with
	// Argon2id. The same inputs always produce the same key.
	DeriveMasterKey(secret string, salt []byte) []byte

	// WrapKey encrypts storageKey with masterKey. The result is
	// nonce ‖ ciphertext.
	WrapKey(storageKey, masterKey []byte) ([]byte, error)

	// UnwrapKey reverses WrapKey. It returns an error wrapping
	// [ErrDecryption] when masterKey is wrong or the blob was tampered with.
	UnwrapKey(wrapped, masterKey []byte) ([]byte, error)

	// EncryptData marshals data to JSON and encrypts it with key. The result
	// is base64(nonce ‖ ciphertext).
	EncryptData(data any, key []byte) (string, error)

	// DecryptData reverses EncryptData into target, which must be a non-nil
	// pointer.
	DecryptData(encryptedB64 string, key []byte, target any) error
}
