package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default tool configuration file name.
const DefaultConfigFile = ".webwatch.yml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// FileConfig is the YAML shape of the tool configuration file. Every
// field is optional; flags override whatever the file sets.
type FileConfig struct {
	// Sites is the path to the watched-sites file.
	Sites string `yaml:"sites,omitempty"`

	// Status is the path to the status snapshot file.
	Status string `yaml:"status,omitempty"`

	// History is the path to the check history file.
	History string `yaml:"history,omitempty"`

	// Delay is the pause between site checks, in Go duration syntax
	// ("500ms", "2s").
	Delay string `yaml:"delay,omitempty"`

	// UserAgent overrides the HTTP User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// MaxBodySize is the response size cap in bytes.
	MaxBodySize int64 `yaml:"max_body_size,omitempty"`

	// SOCKS5Proxy routes fetches through a SOCKS5 proxy ("host:port").
	SOCKS5Proxy string `yaml:"socks5_proxy,omitempty"`

	// Notify lists notification service URLs.
	Notify []string `yaml:"notify,omitempty"`

	// ArchiveDir is the directory for the check archive database.
	ArchiveDir string `yaml:"archive_dir,omitempty"`

	// ArchiveKeep is how many archived checks to retain per site.
	ArchiveKeep int `yaml:"archive_keep,omitempty"`

	// LogFile routes logs to a rotated file.
	LogFile string `yaml:"log_file,omitempty"`
}

// LoadConfigFile loads tool settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers
// should treat that as fatal only when the path was explicitly given.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// FindConfigFile searches for the tool configuration file in order:
//  1. If configPath is specified, use it directly
//  2. Look for .webwatch.yml in the current directory
//  3. Look for config.yml in the XDG config directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}

// ApplyFile copies every value the file sets into the config. It runs
// before flag handling, so flags the user actually passed still win.
func (c *Config) ApplyFile(fc *FileConfig) error {
	if fc.Sites != "" {
		c.SitesPath = fc.Sites
	}
	if fc.Status != "" {
		c.StatusPath = fc.Status
	}
	if fc.History != "" {
		c.HistoryPath = fc.History
	}
	if fc.Delay != "" {
		d, err := time.ParseDuration(fc.Delay)
		if err != nil {
			return err
		}
		c.Delay = d
	}
	if fc.UserAgent != "" {
		c.UserAgent = fc.UserAgent
	}
	if fc.MaxBodySize != 0 {
		c.MaxBodySize = fc.MaxBodySize
	}
	if fc.SOCKS5Proxy != "" {
		c.SOCKS5Proxy = fc.SOCKS5Proxy
	}
	if len(fc.Notify) > 0 {
		c.Notify = fc.Notify
	}
	if fc.ArchiveDir != "" {
		c.ArchiveDir = fc.ArchiveDir
	}
	if fc.ArchiveKeep != 0 {
		c.ArchiveKeep = fc.ArchiveKeep
	}
	if fc.LogFile != "" {
		c.LogFile = fc.LogFile
	}
	return nil
}

// Secret resolves the URL encryption passphrase from the environment.
// A .env file in the working directory is loaded first when present, so
// cron jobs and containers can ship the secret next to the sites file.
// Returns empty when no passphrase is configured.
func Secret() string {
	// Ignore the error: a missing .env file is the normal case.
	_ = godotenv.Load()
	return os.Getenv(EnvSecret)
}
