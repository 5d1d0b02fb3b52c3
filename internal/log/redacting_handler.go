package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// sensitiveKeys contains attribute keys that are always masked.
// These keys commonly carry material that must not end up in log files.
var sensitiveKeys = map[string]bool{
	// The URL encryption passphrase and its common aliases.
	"passphrase": true,
	"secret":     true,
	"password":   true,
	"passwd":     true,

	// Generic credentials.
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"access_token":  true,
	"refresh_token": true,
	"private_key":   true,
	"secret_key":    true,
	"credential":    true,
	"credentials":   true,
	"auth":          true,
	"authorization": true,
	"cookie":        true,

	// Notification service URLs embed tokens in their path or userinfo.
	"notify":      true,
	"notify_url":  true,
	"webhook":     true,
	"webhook_url": true,

	// The decrypted form of an encrypted site URL.
	"plaintext_url": true,
	"target_url":    true,
}

// sensitivePatterns contains regexes that indicate sensitive values.
// Values matching any of these are masked regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// Ciphertext produced by the URL cipher: base64 of IV plus at least
	// one block, so 44 characters or more. Content hashes are 32 hex
	// characters and never match.
	regexp.MustCompile(`^[A-Za-z0-9+/]{43,}={0,2}$`),

	// Notification service URLs with embedded tokens.
	regexp.MustCompile(`(?i)^(?:discord|slack|telegram|teams|pushover|pushbullet|gotify|mattermost|ntfy|zulip|smtp)://\S+$`),

	// Bearer and basic authentication values.
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// Private key markers.
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// RedactingHandler wraps an slog.Handler and masks sensitive attribute
// values before they reach the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Components receive a plain *slog.Logger and need no awareness of
//     the redaction at all
type RedactingHandler struct {
	// handler is the underlying slog handler that receives masked records.
	handler slog.Handler
}

// NewRedactingHandler creates a RedactingHandler wrapping the given
// handler. If handler is nil, slog.Default().Handler() is used.
func NewRedactingHandler(handler slog.Handler) *RedactingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactingHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.redactAttr(a))
		return true
	})

	return h.handler.Handle(ctx, masked)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are masked before being added.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		maskedAttrs[i] = h.redactAttr(a)
	}
	return &RedactingHandler{handler: h.handler.WithAttrs(maskedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: h.handler.WithGroup(name)}
}

// redactAttr masks a single attribute, recursively handling groups.
func (h *RedactingHandler) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		maskedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			maskedAttrs[i] = h.redactAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		if isSensitiveValue(a.Value.String()) {
			return slog.String(a.Key, MaskValue)
		}
	}

	return a
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// Note: We intentionally exclude the bare "key" keyword as it causes
// false positives ("site_key", "keyboard"). Specific key-related names
// like "api_key" and "private_key" are covered by the sensitiveKeys map.
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "passphrase", "secret", "token",
		"credential", "webhook", "auth",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value matches sensitive patterns.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// NewLogger creates a *slog.Logger with redaction that writes text
// records to w. When verbose is true the level is Debug, otherwise Warn
// so routine runs stay quiet.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewRedactingHandler(textHandler))
}

// NewFileLogger creates a *slog.Logger with redaction that writes JSON
// records to path, rotating the file as it grows.
//
// Design decision: File output uses JSON rather than text because log
// files exist to be grepped and shipped, and uses rotation because the
// watcher typically runs from cron forever; without a size bound the
// log would grow without limit on exactly the machines nobody watches.
func NewFileLogger(path string, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(rotator, opts)
	return slog.New(NewRedactingHandler(jsonHandler))
}
