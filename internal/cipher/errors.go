package cipher

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped inside CryptoError. Callers branch with errors.Is.
var (
	// ErrEmptyPassphrase is returned when constructing a cipher without a
	// passphrase. The caller decides whether to fall back to the well-known
	// default; this package never does it silently.
	ErrEmptyPassphrase = errors.New("passphrase must not be empty")

	// ErrMalformedEncoding is returned when a value to decrypt is not valid
	// base64.
	ErrMalformedEncoding = errors.New("value is not valid base64")

	// ErrCiphertextTooShort is returned when a decoded value is too short to
	// contain the IV and at least one ciphertext block.
	ErrCiphertextTooShort = errors.New("ciphertext shorter than IV plus one block")

	// ErrNotBlockAligned is returned when the ciphertext length is not a
	// multiple of the AES block size.
	ErrNotBlockAligned = errors.New("ciphertext length is not a multiple of the block size")

	// ErrBadPadding is returned when the decrypted plaintext does not end in
	// valid PKCS#7 padding. Decrypting with the wrong key surfaces as this
	// error, since a wrong key turns the padding into garbage.
	ErrBadPadding = errors.New("invalid padding")
)

// CryptoError describes a failed encrypt or decrypt operation.
// It wraps one of the sentinel errors above or an underlying cause.
type CryptoError struct {
	// Op is the operation that failed: "encrypt" or "decrypt".
	Op string

	// Err is the underlying cause.
	Err error
}

// Error returns a human-readable description of the failure.
func (e *CryptoError) Error() string {
	return fmt.Sprintf("cipher %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (e *CryptoError) Unwrap() error {
	return e.Err
}
