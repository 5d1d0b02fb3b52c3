package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRedactingHandlerMasksSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{
			name:     "passphrase key is masked",
			key:      "passphrase",
			value:    "hunter2-but-longer",
			wantMask: true,
		},
		{
			name:     "Passphrase key (uppercase) is masked",
			key:      "Passphrase",
			value:    "hunter2-but-longer",
			wantMask: true,
		},
		{
			name:     "secret key is masked",
			key:      "secret",
			value:    "from-the-environment",
			wantMask: true,
		},
		{
			name:     "notify key is masked",
			key:      "notify",
			value:    "discord://sometoken@123456",
			wantMask: true,
		},
		{
			name:     "webhook_url key is masked",
			key:      "webhook_url",
			value:    "https://hooks.example.com/T000/B000/XXX",
			wantMask: true,
		},
		{
			name:     "target_url key is masked",
			key:      "target_url",
			value:    "https://internal.example.com/private-page",
			wantMask: true,
		},
		{
			name:     "url key is NOT masked",
			key:      "url",
			value:    "https://example.com/news",
			wantMask: false,
		},
		{
			name:     "site key is NOT masked",
			key:      "site",
			value:    "company-blog",
			wantMask: false,
		},
		{
			name:     "hash key is NOT masked",
			key:      "hash",
			value:    "0123456789abcdef0123456789abcdef",
			wantMask: false,
		},
		{
			name:     "status key is NOT masked",
			key:      "status",
			value:    "updated",
			wantMask: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, true)

			logger.Info("test message", tt.key, tt.value)

			output := buf.String()
			if tt.wantMask {
				if strings.Contains(output, tt.value) {
					t.Errorf("expected value %q to be masked, but found in output: %s", tt.value, output)
				}
				if !strings.Contains(output, MaskValue) {
					t.Errorf("expected mask value %q in output, but not found: %s", MaskValue, output)
				}
			} else {
				if !strings.Contains(output, tt.value) {
					t.Errorf("expected value %q in output, but not found: %s", tt.value, output)
				}
			}
		})
	}
}

func TestRedactingHandlerMasksSensitiveValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		wantMask bool
	}{
		{
			name:     "ciphertext-looking base64 is masked",
			value:    "MTIzNDU2Nzg5MGFiY2RlZjEyMzQ1Njc4OTBhYmNkZWY=",
			wantMask: true,
		},
		{
			name:     "notification URL is masked",
			value:    "telegram://bottoken@channel-1",
			wantMask: true,
		},
		{
			name:     "bearer token is masked",
			value:    "Bearer abc.def.ghi",
			wantMask: true,
		},
		{
			name:     "content hash is NOT masked",
			value:    "feedfacefeedfacefeedfacefeedface",
			wantMask: false,
		},
		{
			name:     "ordinary URL is NOT masked",
			value:    "https://example.com/changelog",
			wantMask: false,
		},
		{
			name:     "short text is NOT masked",
			value:    "company-blog",
			wantMask: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, true)

			// A neutral key so only the value pattern can trigger masking.
			logger.Info("test message", "detail", tt.value)

			output := buf.String()
			if tt.wantMask {
				if strings.Contains(output, tt.value) {
					t.Errorf("expected value %q to be masked, but found in output: %s", tt.value, output)
				}
			} else {
				if !strings.Contains(output, tt.value) {
					t.Errorf("expected value %q in output, but not found: %s", tt.value, output)
				}
			}
		})
	}
}

func TestRedactingHandlerMasksGroupedAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.Info("grouped",
		slog.Group("config",
			slog.String("passphrase", "super-secret-value"),
			slog.String("site", "company-blog"),
		),
	)

	output := buf.String()
	if strings.Contains(output, "super-secret-value") {
		t.Errorf("expected grouped passphrase to be masked: %s", output)
	}
	if !strings.Contains(output, "company-blog") {
		t.Errorf("expected grouped site to survive: %s", output)
	}
}

func TestRedactingHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true).With("secret", "ambient-secret")

	logger.Info("with attrs")

	output := buf.String()
	if strings.Contains(output, "ambient-secret") {
		t.Errorf("expected With() secret to be masked: %s", output)
	}
	if !strings.Contains(output, MaskValue) {
		t.Errorf("expected mask value in output: %s", output)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	t.Run("quiet by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Info("routine message")
		if buf.Len() != 0 {
			t.Errorf("expected info to be suppressed without verbose, got %q", buf.String())
		}

		logger.Warn("something odd")
		if !strings.Contains(buf.String(), "something odd") {
			t.Errorf("expected warning to pass through, got %q", buf.String())
		}
	})

	t.Run("debug with verbose", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Debug("step trace")
		if !strings.Contains(buf.String(), "step trace") {
			t.Errorf("expected debug to pass through with verbose, got %q", buf.String())
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "webwatch.log")
	logger := NewFileLogger(path, true)

	logger.Info("written to file", "site", "company-blog", "secret", "do-not-log")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	output := string(data)

	if !strings.Contains(output, "written to file") {
		t.Errorf("expected message in log file, got %q", output)
	}
	if !strings.Contains(output, `"site"`) {
		t.Errorf("expected JSON attributes in log file, got %q", output)
	}
	if strings.Contains(output, "do-not-log") {
		t.Errorf("expected secret to be masked in log file, got %q", output)
	}
}
