// Package cipher implements the symmetric URL encryption used to keep
// monitored URLs confidential at rest in sites.json.
//
// URLs are encrypted with AES-256-CBC under a key derived from an operator
// secret via PBKDF2. Each encryption uses a fresh random IV, prepended to the
// ciphertext, and the whole value is base64 encoded so it can live in JSON.
// Two encryptions of the same URL therefore produce different ciphertexts
// that both decrypt to the original.
//
// Design decision: This protects URLs in configuration files that end up in
// repositories or backups. It is confidentiality at rest, not an adversarial
// security boundary: anyone holding the secret (or running the checker) can
// recover the plaintext.
package cipher
