package cipher

import (
	"crypto/aes"
	aescipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// FallbackPassphrase is the well-known passphrase used when the operator
	// has not configured a secret. It provides no confidentiality at all
	// (the string is public in this source file) and exists only so the tool
	// stays usable in throwaway setups. Callers must require an explicit
	// opt-in before passing it here; this package never falls back on its own.
	FallbackPassphrase = "webwatch-insecure-default"

	// keySize is the derived key length in bytes. 32 bytes selects AES-256.
	keySize = 32

	// keyIterations is the PBKDF2 iteration count. The secret guards
	// configuration files, not online login attempts, so a moderate count
	// keeps CLI startup instant while still slowing bulk guessing.
	keyIterations = 4096
)

// keySalt is the fixed application salt for key derivation. A fixed salt is
// required so that every invocation (encrypt CLI today, check run tomorrow)
// derives the same key from the same secret without storing anything next to
// the ciphertext.
var keySalt = []byte("webwatch.urlcipher.v1")

// URLCipher encrypts and decrypts URL strings with a passphrase-derived key.
// A URLCipher is safe for concurrent use; it holds only the derived key.
type URLCipher struct {
	key []byte
}

// New derives an AES-256 key from the passphrase and returns a ready cipher.
// An empty passphrase is rejected: deciding to run with FallbackPassphrase is
// the caller's explicit choice, never an implicit default.
func New(passphrase string) (*URLCipher, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	key := pbkdf2.Key([]byte(passphrase), keySalt, keyIterations, keySize, sha256.New)
	return &URLCipher{key: key}, nil
}

// Encrypt encrypts the plaintext and returns base64(IV || ciphertext).
// Each call draws a fresh random IV, so encrypting the same value twice
// yields different outputs.
func (c *URLCipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", &CryptoError{Op: "encrypt", Err: err}
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", &CryptoError{Op: "encrypt", Err: fmt.Errorf("failed to generate IV: %w", err)}
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))
	copy(out, iv)
	aescipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt: it decodes the base64 value, splits off the
// leading IV, decrypts the remainder and strips the padding.
//
// Decrypting with a key other than the one used for encryption produces
// garbage plaintext whose padding check fails, so wrong-key use surfaces as
// ErrBadPadding rather than silently returning bytes.
func (c *URLCipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", &CryptoError{Op: "decrypt", Err: fmt.Errorf("%w: %v", ErrMalformedEncoding, err)}
	}

	// A valid value is the 16-byte IV plus at least one padded block.
	if len(raw) < 2*aes.BlockSize {
		return "", &CryptoError{Op: "decrypt", Err: ErrCiphertextTooShort}
	}
	iv, ciphertext := raw[:aes.BlockSize], raw[aes.BlockSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return "", &CryptoError{Op: "decrypt", Err: ErrNotBlockAligned}
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", &CryptoError{Op: "decrypt", Err: err}
	}

	plaintext := make([]byte, len(ciphertext))
	aescipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", &CryptoError{Op: "decrypt", Err: err}
	}
	return string(unpadded), nil
}

// pkcs7Pad appends PKCS#7 padding up to the next blockSize boundary.
// Input that already ends on a boundary gains a full padding block, so the
// padding is always present and unambiguous.
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// pkcs7Unpad validates and strips PKCS#7 padding. Every padding byte is
// checked, not just the last one, so corrupted plaintext is rejected as often
// as the construction allows.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBadPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrBadPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrBadPadding
		}
	}
	return data[:len(data)-n], nil
}
