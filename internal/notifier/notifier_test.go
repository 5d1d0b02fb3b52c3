package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/nao1215/webwatch/internal/model"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("no URLs yields a disabled notifier", func(t *testing.T) {
		t.Parallel()

		n, err := New(nil)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if n.Enabled() {
			t.Error("Enabled() = true, expected false without URLs")
		}
	})

	t.Run("logger service URL is accepted", func(t *testing.T) {
		t.Parallel()

		n, err := New([]string{"logger://"})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if !n.Enabled() {
			t.Error("Enabled() = false, expected true with a URL")
		}
	})

	t.Run("invalid service URL fails", func(t *testing.T) {
		t.Parallel()

		if _, err := New([]string{"no-such-service://nope"}); err == nil {
			t.Error("New() expected error for unknown service, got nil")
		}
	})
}

func TestNotifyUpdates(t *testing.T) {
	t.Parallel()

	changedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := []model.SiteStatus{
		{ID: "blog", Name: "Blog", URL: "https://blog.example.com",
			Status: model.StatusUpdated, LastChange: &changedAt},
	}

	t.Run("disabled notifier does nothing", func(t *testing.T) {
		t.Parallel()

		n, err := New(nil)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if err := n.NotifyUpdates(updated); err != nil {
			t.Errorf("NotifyUpdates() error = %v, expected nil", err)
		}
	})

	t.Run("no updates sends nothing", func(t *testing.T) {
		t.Parallel()

		n, err := New([]string{"logger://"})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if err := n.NotifyUpdates(nil); err != nil {
			t.Errorf("NotifyUpdates() error = %v, expected nil", err)
		}
	})

	t.Run("sends through the logger service", func(t *testing.T) {
		t.Parallel()

		n, err := New([]string{"logger://"})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if err := n.NotifyUpdates(updated); err != nil {
			t.Errorf("NotifyUpdates() error = %v, expected nil", err)
		}
	})
}

func TestDigest(t *testing.T) {
	t.Parallel()

	changedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("single site names it in the title", func(t *testing.T) {
		t.Parallel()

		title, message := Digest([]model.SiteStatus{
			{ID: "blog", Name: "Blog", URL: "https://blog.example.com",
				Status: model.StatusUpdated, LastChange: &changedAt},
		})

		if title != "webwatch: Blog changed" {
			t.Errorf("title = %q, expected %q", title, "webwatch: Blog changed")
		}
		if !strings.Contains(message, "https://blog.example.com") {
			t.Errorf("message %q should contain the site URL", message)
		}
		if !strings.Contains(message, "2025-03-01 12:00 UTC") {
			t.Errorf("message %q should contain the change time", message)
		}
	})

	t.Run("multiple sites are counted in the title", func(t *testing.T) {
		t.Parallel()

		title, _ := Digest([]model.SiteStatus{
			{ID: "a", Name: "A", Status: model.StatusUpdated},
			{ID: "b", Name: "B", Status: model.StatusUpdated},
		})
		if title != "webwatch: 2 sites changed" {
			t.Errorf("title = %q, expected %q", title, "webwatch: 2 sites changed")
		}
	})

	t.Run("encrypted site URLs never appear", func(t *testing.T) {
		t.Parallel()

		_, message := Digest([]model.SiteStatus{
			{ID: "secret", Name: "Secret Site", URL: "bm90IGZvciB5b3U=",
				Status: model.StatusUpdated, Encrypted: true, LastChange: &changedAt},
		})

		if strings.Contains(message, "bm90IGZvciB5b3U=") {
			t.Errorf("message %q leaked the encrypted URL", message)
		}
		if !strings.Contains(message, "Secret Site") {
			t.Errorf("message %q should name the site", message)
		}
	})
}
