package crypto

import "errors"

var (
	ErrDecryption         = errors.New("decryption failed")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)
