package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/webwatch/internal/database"
	"github.com/nao1215/webwatch/internal/model"
)

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history [site-id]" {
			t.Errorf("expected use 'history [site-id]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has limit flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("limit")
		if flag == nil {
			t.Fatal("expected limit flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
		if flag.DefValue != "20" {
			t.Errorf("expected default '20', got %q", flag.DefValue)
		}
	})

	t.Run("has archive-dir flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("archive-dir") == nil {
			t.Error("expected archive-dir flag")
		}
	})
}

// seedArchive creates an archive in a temp dir with a few checks for two
// sites and returns the directory.
func seedArchive(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	base := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	records := []*database.CheckRecord{
		{
			SiteID: "blog", SiteName: "Blog", URL: "https://example.com/blog",
			CheckedAt: base, Status: model.StatusUnchanged,
			Hash: "0123456789abcdef0123456789abcdef", Content: "first post",
		},
		{
			SiteID: "blog", SiteName: "Blog", URL: "https://example.com/blog",
			CheckedAt: base.Add(1 * time.Hour), Status: model.StatusUpdated,
			Hash: "fedcba9876543210fedcba9876543210", ChangeDetected: true,
			Content: "second post",
		},
		{
			SiteID: "blog", SiteName: "Blog", URL: "https://example.com/blog",
			CheckedAt: base.Add(2 * time.Hour), Status: model.StatusError,
			Error: "fetch: unexpected status 503 Service Unavailable",
		},
		{
			SiteID: "news", SiteName: "News", URL: "https://example.com/news",
			CheckedAt: base, Status: model.StatusUnchanged,
			Hash: "11111111111111111111111111111111", Content: "headline",
		},
	}
	for _, rec := range records {
		if _, err := db.SaveCheck(ctx, rec); err != nil {
			t.Fatalf("failed to seed archive: %v", err)
		}
	}
	return dir
}

// TestRunHistoryCmd tests the history command against a seeded archive.
func TestRunHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists archived sites", func(t *testing.T) {
		t.Parallel()

		dir := seedArchive(t)

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--archive-dir", dir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Archived sites (2):") {
			t.Errorf("expected site count in output, got %q", output)
		}
		if !strings.Contains(output, "blog") || !strings.Contains(output, "news") {
			t.Errorf("expected both site ids in output, got %q", output)
		}
	})

	t.Run("shows checks for one site newest first", func(t *testing.T) {
		t.Parallel()

		dir := seedArchive(t)

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"blog", "--archive-dir", dir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Check history for blog (3 checks):") {
			t.Errorf("expected check count in output, got %q", output)
		}
		if !strings.Contains(output, "503") {
			t.Errorf("expected the failed check's error in output, got %q", output)
		}
		if !strings.Contains(output, "fedcba9876543210") {
			t.Errorf("expected a content hash in output, got %q", output)
		}

		// Newest first: the error row from 10:00 precedes the 08:00 row.
		errIdx := strings.Index(output, "2026-02-10 10:00:00")
		oldIdx := strings.Index(output, "2026-02-10 08:00:00")
		if errIdx == -1 || oldIdx == -1 || errIdx > oldIdx {
			t.Errorf("expected newest-first ordering, got %q", output)
		}
	})

	t.Run("applies the limit", func(t *testing.T) {
		t.Parallel()

		dir := seedArchive(t)

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"blog", "--archive-dir", dir, "--limit", "2"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Check history for blog (2 checks):") {
			t.Errorf("expected 2 checks with limit, got %q", buf.String())
		}
	})

	t.Run("unknown site prints a hint", func(t *testing.T) {
		t.Parallel()

		dir := seedArchive(t)

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"nope", "--archive-dir", dir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No archived checks found for nope") {
			t.Errorf("expected not-found message, got %q", buf.String())
		}
	})

	t.Run("fails when no archive exists", func(t *testing.T) {
		t.Parallel()

		cmd := NewHistoryCmd()
		cmd.SetOut(new(bytes.Buffer))
		cmd.SetErr(new(bytes.Buffer))
		cmd.SetArgs([]string{"--archive-dir", t.TempDir()})

		if err := cmd.Execute(); err == nil {
			t.Fatal("expected error for missing archive")
		}
	})
}
