package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "webwatch"

	// EnvSecret is the environment variable holding the passphrase that
	// protects encrypted site URLs. It is read from the process
	// environment, optionally populated from a .env file.
	EnvSecret = "WEBWATCH_SECRET"

	// DefaultSitesFile is the default name of the watched-sites file.
	DefaultSitesFile = "sites.json"

	// DefaultStatusFile is the default name of the status snapshot file.
	// Dashboards poll this file, so its location should be stable.
	DefaultStatusFile = "status.json"

	// DefaultHistoryFile is the default name of the check history file.
	DefaultHistoryFile = "history.json"

	// DefaultDelay is the pause between consecutive site checks.
	// One second keeps a run with many sites from hammering a shared
	// host; single-site runs are unaffected since the delay sits between
	// fetches, not before the first one.
	DefaultDelay = 1 * time.Second
)

// Config holds all runtime options for webwatch.
// This struct is populated from CLI flags and the optional config file,
// then passed through the application via dependency injection rather
// than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, StoreConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant
// benefit.
type Config struct {
	// SitesPath is the path to the watched-sites file (sites.json).
	SitesPath string

	// StatusPath is the path to the status snapshot file (status.json).
	StatusPath string

	// HistoryPath is the path to the check history file (history.json).
	HistoryPath string

	// ConfigFilePath is the path to the tool configuration file.
	// If empty, the tool searches for .webwatch.yml in the current
	// directory and then in the XDG config directory.
	ConfigFilePath string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogFile, when set, routes logs to a rotated JSON log file instead
	// of stderr.
	LogFile string

	// Delay is the pause between consecutive site checks. Checks are
	// strictly sequential; this only spaces them out.
	Delay time.Duration

	// UserAgent overrides the User-Agent header sent with HTTP requests.
	// Empty means the fetcher's default identity.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated. Zero keeps the default.
	MaxBodySize int64

	// SOCKS5Proxy routes all fetches through a SOCKS5 proxy in
	// "host:port" format. Empty means direct connections.
	SOCKS5Proxy string

	// Passphrase is the secret used to decrypt encrypted site URLs.
	// Resolved from EnvSecret, never from a flag, so it cannot leak
	// through shell history or process listings.
	Passphrase string

	// AllowFallbackKey permits using the well-known built-in passphrase
	// when EnvSecret is unset. This must remain an explicit opt-in: the
	// fallback offers obfuscation, not protection.
	AllowFallbackKey bool

	// Notify lists notification service URLs that receive a digest when
	// a run detects changes. Empty disables notifications.
	Notify []string

	// NoArchive disables the SQLite check archive for this run.
	NoArchive bool

	// ArchiveDir is the directory holding the check archive database.
	// Empty means the XDG data directory.
	ArchiveDir string

	// ArchiveKeep is how many archived checks to retain per site.
	// Zero keeps the archive's default bound.
	ArchiveKeep int

	// MarkdownFile, when set, writes the run summary as Markdown to this
	// path in addition to the text summary on stdout.
	MarkdownFile string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (paths, delay).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		SitesPath:   DefaultSitesFile,
		StatusPath:  DefaultStatusFile,
		HistoryPath: DefaultHistoryFile,
		Delay:       DefaultDelay,
	}
}

// XDGDataDir returns the XDG data directory for webwatch.
// On Linux: ~/.local/share/webwatch
// On macOS: ~/Library/Application Support/webwatch
// On Windows: %LOCALAPPDATA%\webwatch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for webwatch.
// On Linux: ~/.config/webwatch
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for webwatch.
// On Linux: ~/.cache/webwatch
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// ResolveArchiveDir returns the directory for the check archive:
// ArchiveDir when set, the XDG data directory otherwise.
func (c *Config) ResolveArchiveDir() string {
	if c.ArchiveDir != "" {
		return c.ArchiveDir
	}
	return XDGDataDir()
}

// Validate checks if the configuration is valid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any checking begins.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.SitesPath == "" {
		return ErrNoSitesFile
	}

	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
