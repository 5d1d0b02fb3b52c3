package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// TestStatusIsValid tests the IsValid method of Status.
func TestStatusIsValid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status   Status
		expected bool
	}{
		{StatusUnchanged, true},
		{StatusUpdated, true},
		{StatusError, true},
		{Status(""), false},
		{Status("UPDATED"), false},
		{Status("changed"), false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.status), func(t *testing.T) {
			t.Parallel()
			if tc.status.IsValid() != tc.expected {
				t.Errorf("IsValid(%q) = %v, expected %v", tc.status, !tc.expected, tc.expected)
			}
		})
	}
}

// TestStatusWireValues pins the serialized enum strings. The dashboard
// matches on these literals, so changing them is a breaking change.
func TestStatusWireValues(t *testing.T) {
	t.Parallel()

	if StatusUnchanged.String() != "unchanged" {
		t.Errorf("StatusUnchanged = %q, expected %q", StatusUnchanged, "unchanged")
	}
	if StatusUpdated.String() != "updated" {
		t.Errorf("StatusUpdated = %q, expected %q", StatusUpdated, "updated")
	}
	if StatusError.String() != "error" {
		t.Errorf("StatusError = %q, expected %q", StatusError, "error")
	}
}

// TestSiteStatusJSONContract verifies the status.json field names and that
// optional fields disappear when absent.
func TestSiteStatusJSONContract(t *testing.T) {
	t.Parallel()

	t.Run("error outcome omits hash and last_change", func(t *testing.T) {
		t.Parallel()

		st := SiteStatus{
			ID:        "blog",
			Name:      "Blog",
			URL:       "https://example.com/blog",
			Status:    StatusError,
			LastCheck: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			Error:     "unexpected status 404 Not Found",
		}

		data, err := json.Marshal(st)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}

		got := string(data)
		for _, want := range []string{`"id":"blog"`, `"status":"error"`, `"last_check"`, `"error"`, `"encrypted":false`} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %s: %s", want, got)
			}
		}
		for _, absent := range []string{`"hash"`, `"last_change"`} {
			if strings.Contains(got, absent) {
				t.Errorf("output should omit %s: %s", absent, got)
			}
		}
	})

	t.Run("success outcome carries hash", func(t *testing.T) {
		t.Parallel()

		change := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		st := SiteStatus{
			ID:         "news",
			Name:       "News",
			URL:        "https://example.com/news",
			Status:     StatusUpdated,
			LastCheck:  change,
			LastChange: &change,
			Hash:       "0123456789abcdef0123456789abcdef",
		}

		data, err := json.Marshal(st)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}

		got := string(data)
		for _, want := range []string{`"status":"updated"`, `"hash":"0123456789abcdef0123456789abcdef"`, `"last_change":"2025-03-01T12:00:00Z"`} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %s: %s", want, got)
			}
		}
		if strings.Contains(got, `"error"`) {
			t.Errorf("output should omit error field: %s", got)
		}
	})
}

// TestComputeLastUpdated tests recomputation of the snapshot-level timestamp.
func TestComputeLastUpdated(t *testing.T) {
	t.Parallel()

	older := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 2, 20, 9, 30, 0, 0, time.UTC)

	t.Run("no site ever changed", func(t *testing.T) {
		t.Parallel()

		snap := StatusSnapshot{
			Sites: []SiteStatus{
				{ID: "a", Status: StatusUnchanged},
				{ID: "b", Status: StatusError},
			},
		}
		snap.ComputeLastUpdated()

		if snap.LastUpdated != nil {
			t.Errorf("LastUpdated = %v, expected nil", snap.LastUpdated)
		}
	})

	t.Run("picks the maximum last_change", func(t *testing.T) {
		t.Parallel()

		snap := StatusSnapshot{
			Sites: []SiteStatus{
				{ID: "a", Status: StatusUnchanged, LastChange: &older},
				{ID: "b", Status: StatusUpdated, LastChange: &newer},
				{ID: "c", Status: StatusError},
			},
		}
		snap.ComputeLastUpdated()

		if snap.LastUpdated == nil || !snap.LastUpdated.Equal(newer) {
			t.Errorf("LastUpdated = %v, expected %v", snap.LastUpdated, newer)
		}
	})

	t.Run("marshals absent when nil", func(t *testing.T) {
		t.Parallel()

		snap := StatusSnapshot{Sites: []SiteStatus{}}
		snap.ComputeLastUpdated()

		data, err := json.Marshal(snap)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}
		if strings.Contains(string(data), "last_updated") {
			t.Errorf("output should omit last_updated: %s", data)
		}
	})
}

// TestFindSite tests prior-state lookup by site id.
func TestFindSite(t *testing.T) {
	t.Parallel()

	snap := StatusSnapshot{
		Sites: []SiteStatus{
			{ID: "a", Hash: "aa"},
			{ID: "b", Hash: "bb"},
		},
	}

	if got := snap.FindSite("b"); got == nil || got.Hash != "bb" {
		t.Errorf("FindSite(b) = %+v, expected entry with hash bb", got)
	}
	if got := snap.FindSite("missing"); got != nil {
		t.Errorf("FindSite(missing) = %+v, expected nil", got)
	}
}
