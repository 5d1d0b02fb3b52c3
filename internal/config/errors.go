package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and the sites loader
// and provide specific information about what is wrong.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSitesFile is returned when the sites file path is empty.
	ErrNoSitesFile = errors.New("no sites file specified")

	// ErrSitesNotFound is returned when the sites file does not exist.
	// Run "webwatch init" to create a starter file.
	ErrSitesNotFound = errors.New("sites file not found: run \"webwatch init\" to create one")

	// ErrNoSites is returned when the sites file parses but lists no sites.
	ErrNoSites = errors.New("sites file contains no sites")

	// ErrInvalidDelay is returned when the inter-request delay is negative.
	// Use 0 to disable the delay between site checks.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to keep the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoPassphrase is returned by commands that need the URL cipher
	// when WEBWATCH_SECRET is unset and the fallback key was not allowed.
	ErrNoPassphrase = errors.New("no passphrase: set WEBWATCH_SECRET or use --insecure-default-key")
)
