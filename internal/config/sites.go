package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/andybalholm/cascadia"
	"github.com/go-playground/validator/v10"

	"github.com/nao1215/webwatch/internal/model"
)

// validate is the shared validator instance. validator.Validate caches
// struct metadata, so one instance serves the whole package.
var validate = validator.New()

// LoadSites loads and validates the watched-sites file.
//
// Design decision: Every validation problem here is fatal. A bad site
// entry is a configuration mistake, and silently skipping it would let a
// typo disable monitoring of exactly the site someone cared enough to
// add. Per-site leniency is reserved for runtime failures.
func LoadSites(path string) (*model.SitesFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided sites path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSitesNotFound
		}
		return nil, fmt.Errorf("failed to read sites file: %w", err)
	}

	var sf model.SitesFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse sites file %s: %w", path, err)
	}

	if len(sf.Sites) == 0 {
		return nil, ErrNoSites
	}

	if err := validate.Struct(&sf); err != nil {
		return nil, fmt.Errorf("invalid sites file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(sf.Sites))
	for i := range sf.Sites {
		site := &sf.Sites[i]

		if seen[site.ID] {
			return nil, fmt.Errorf("duplicate site ID %q in %s", site.ID, path)
		}
		seen[site.ID] = true

		if err := validateSite(site); err != nil {
			return nil, fmt.Errorf("site %q: %w", site.ID, err)
		}
	}

	return &sf, nil
}

// validateSite checks the parts of a site entry that struct tags cannot
// express: URL shape and CSS selector syntax.
func validateSite(site *model.Site) error {
	// Encrypted URLs are ciphertext and only checked at decryption time.
	if !site.Encrypted {
		u, err := url.Parse(site.URL)
		if err != nil {
			return fmt.Errorf("invalid URL %q: %w", site.URL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("unsupported URL scheme %q (want http or https)", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("URL %q has no host", site.URL)
		}
	}

	// Selectors are compiled here so a typo fails the run up front
	// instead of erroring on every single check.
	if site.Selector != "" {
		if _, err := cascadia.Compile(site.Selector); err != nil {
			return fmt.Errorf("invalid selector %q: %w", site.Selector, err)
		}
	}
	for _, sel := range site.ExcludeSelectors {
		if sel == "" {
			continue
		}
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("invalid exclude selector %q: %w", sel, err)
		}
	}

	return nil
}
