// Package log provides structured logging with automatic redaction of
// secrets.
//
// The watcher handles material that must never reach log output: the
// passphrase that protects encrypted site URLs, the decrypted URLs
// themselves, and notification service URLs with embedded tokens. The
// RedactingHandler wraps any slog.Handler and masks attribute values
// that look like (or are keyed as) one of those.
package log
