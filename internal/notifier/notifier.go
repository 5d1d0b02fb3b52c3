package notifier

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/containrrr/shoutrrr/pkg/router"
	"github.com/containrrr/shoutrrr/pkg/types"

	"github.com/nao1215/webwatch/internal/model"
)

// Notifier sends change digests to the configured notification services.
// A Notifier built without service URLs is a no-op, so callers never
// need to branch on whether notifications are configured.
type Notifier struct {
	// router fans messages out to all configured services. Nil when no
	// URLs were configured.
	router *router.ServiceRouter

	// logger for structured logging.
	logger *slog.Logger
}

// Option is a function that configures a Notifier.
type Option func(*Notifier)

// WithLogger sets a custom logger for the notifier.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// New creates a Notifier for the given shoutrrr service URLs.
// Invalid URLs are a configuration mistake and fail construction; an
// empty list yields a disabled notifier.
func New(urls []string, opts ...Option) (*Notifier, error) {
	n := &Notifier{}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}

	if len(urls) == 0 {
		return n, nil
	}

	sr, err := router.New(nil, urls...)
	if err != nil {
		return nil, fmt.Errorf("invalid notification URL: %w", err)
	}
	n.router = sr
	return n, nil
}

// Enabled reports whether any notification service is configured.
func (n *Notifier) Enabled() bool {
	return n.router != nil
}

// NotifyUpdates sends one digest covering all updated sites. It does
// nothing when the notifier is disabled or no site changed.
func (n *Notifier) NotifyUpdates(updated []model.SiteStatus) error {
	if !n.Enabled() || len(updated) == 0 {
		return nil
	}

	title, message := Digest(updated)
	return n.send(title, message)
}

// send pushes one message to every configured service and joins the
// per-service failures into a single error.
func (n *Notifier) send(title, message string) error {
	params := types.Params{
		"title": title,
	}

	var failures []error
	for _, err := range n.router.Send(message, &params) {
		if err != nil {
			n.logger.Warn("failed to send notification", "error", err)
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}

// Digest builds the notification title and message for a set of updated
// sites.
//
// The message names each site and, for unencrypted sites, its URL.
// Encrypted sites appear by name only: their URLs are secrets, and a
// push notification travels through third-party infrastructure.
func Digest(updated []model.SiteStatus) (title, message string) {
	if len(updated) == 1 {
		title = fmt.Sprintf("webwatch: %s changed", updated[0].Name)
	} else {
		title = fmt.Sprintf("webwatch: %d sites changed", len(updated))
	}

	var b strings.Builder
	for _, site := range updated {
		b.WriteString("- ")
		b.WriteString(site.Name)
		if !site.Encrypted && site.URL != "" {
			b.WriteString(" (")
			b.WriteString(site.URL)
			b.WriteString(")")
		}
		if site.LastChange != nil {
			b.WriteString(" at ")
			b.WriteString(site.LastChange.Format("2006-01-02 15:04 MST"))
		}
		b.WriteString("\n")
	}
	return title, b.String()
}
