package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/webwatch/internal/database"
	"github.com/nao1215/webwatch/internal/fetcher"
	"github.com/nao1215/webwatch/internal/model"
	"github.com/nao1215/webwatch/internal/pipeline"
	"github.com/nao1215/webwatch/internal/store"
)

// mutableServer serves HTML content that tests can swap between runs.
type mutableServer struct {
	mu      sync.Mutex
	content string
	server  *httptest.Server
}

func newMutableServer(t *testing.T, content string) *mutableServer {
	t.Helper()

	ms := &mutableServer{content: content}
	ms.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ms.mu.Lock()
		defer ms.mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(ms.content))
	}))
	t.Cleanup(ms.server.Close)
	return ms
}

func (ms *mutableServer) setContent(content string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.content = content
}

func (ms *mutableServer) URL() string {
	return ms.server.URL
}

// newTestStores creates status and history stores in a fresh temp dir.
func newTestStores(t *testing.T) (*store.StatusStore, *store.HistoryStore, string) {
	t.Helper()

	dir := t.TempDir()
	status := store.NewStatusStore(filepath.Join(dir, "status.json"))
	history := store.NewHistoryStore(filepath.Join(dir, "history.json"))
	return status, history, dir
}

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()

	f, err := fetcher.New()
	if err != nil {
		t.Fatalf("fetcher.New() error = %v", err)
	}
	return pipeline.DefaultPipeline(nil, f)
}

func TestRunnerRun(t *testing.T) {
	t.Parallel()

	t.Run("records success and failure per site", func(t *testing.T) {
		t.Parallel()

		ok := newMutableServer(t, "<html><body><p>stable content</p></body></html>")
		broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer broken.Close()

		status, history, _ := newTestStores(t)
		sites := []model.Site{
			{ID: "stable", Name: "Stable", URL: ok.URL()},
			{ID: "broken", Name: "Broken", URL: broken.URL},
		}

		r := New(sites, newTestPipeline(t), status, history)
		summary, err := r.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if summary.Checked != 2 {
			t.Errorf("Checked = %d, expected 2", summary.Checked)
		}
		if summary.Unchanged != 1 {
			t.Errorf("Unchanged = %d, expected 1", summary.Unchanged)
		}
		if summary.Errors != 1 {
			t.Errorf("Errors = %d, expected 1", summary.Errors)
		}

		if len(summary.Snapshot.Sites) != 2 {
			t.Fatalf("snapshot has %d sites, expected 2", len(summary.Snapshot.Sites))
		}
		if summary.Snapshot.Sites[0].ID != "stable" || summary.Snapshot.Sites[1].ID != "broken" {
			t.Error("snapshot does not preserve the configured site order")
		}

		failed := summary.Snapshot.FindSite("broken")
		if failed.Status != model.StatusError {
			t.Errorf("failed site status = %q, expected %q", failed.Status, model.StatusError)
		}
		if failed.Hash != "" {
			t.Errorf("failed site hash = %q, expected empty", failed.Hash)
		}
		if failed.LastChange != nil {
			t.Errorf("failed site LastChange = %v, expected nil", failed.LastChange)
		}
		if !strings.Contains(failed.Error, "404") {
			t.Errorf("failed site error = %q, expected it to mention 404", failed.Error)
		}

		succeeded := summary.Snapshot.FindSite("stable")
		if succeeded.Hash == "" {
			t.Error("successful site has no hash")
		}

		// The flush must land on disk.
		reloaded, err := status.Load()
		if err != nil {
			t.Fatalf("Load() after run error = %v", err)
		}
		if len(reloaded.Sites) != 2 {
			t.Errorf("persisted snapshot has %d sites, expected 2", len(reloaded.Sites))
		}
		if reloaded.LastUpdated != nil {
			t.Errorf("LastUpdated = %v, expected nil when nothing changed yet", reloaded.LastUpdated)
		}

		// History records only successful checks.
		freshHistory := store.NewHistoryStore(history.Path())
		if err := freshHistory.Load(); err != nil {
			t.Fatalf("history Load() error = %v", err)
		}
		if got := len(freshHistory.Entries("stable")); got != 1 {
			t.Errorf("history for stable has %d entries, expected 1", got)
		}
		if got := len(freshHistory.Entries("broken")); got != 0 {
			t.Errorf("history for broken has %d entries, expected 0", got)
		}
	})

	t.Run("detects changes across runs and carries the change time", func(t *testing.T) {
		t.Parallel()

		server := newMutableServer(t, "<html><body><p>first version</p></body></html>")
		status, history, _ := newTestStores(t)
		sites := []model.Site{{ID: "page", Name: "Page", URL: server.URL()}}

		run := func() *model.RunSummary {
			t.Helper()
			r := New(sites, newTestPipeline(t),
				store.NewStatusStore(status.Path()),
				store.NewHistoryStore(history.Path()))
			summary, err := r.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			return summary
		}

		first := run()
		if first.Updated != 0 {
			t.Fatalf("first run Updated = %d, expected 0 (baseline)", first.Updated)
		}

		server.setContent("<html><body><p>second version</p></body></html>")
		second := run()
		if second.Updated != 1 {
			t.Fatalf("second run Updated = %d, expected 1", second.Updated)
		}
		if len(second.UpdatedSites) != 1 || second.UpdatedSites[0].ID != "page" {
			t.Fatalf("UpdatedSites = %+v, expected the changed site", second.UpdatedSites)
		}
		changed := second.Snapshot.FindSite("page")
		if changed.LastChange == nil {
			t.Fatal("updated site has no LastChange")
		}
		if second.Snapshot.LastUpdated == nil || !second.Snapshot.LastUpdated.Equal(*changed.LastChange) {
			t.Errorf("snapshot LastUpdated = %v, expected the change time %v",
				second.Snapshot.LastUpdated, changed.LastChange)
		}

		// An unchanged third run keeps the change time from the second.
		third := run()
		if third.Updated != 0 {
			t.Fatalf("third run Updated = %d, expected 0", third.Updated)
		}
		settled := third.Snapshot.FindSite("page")
		if settled.Status != model.StatusUnchanged {
			t.Errorf("third run status = %q, expected %q", settled.Status, model.StatusUnchanged)
		}
		if settled.LastChange == nil || !settled.LastChange.Equal(*changed.LastChange) {
			t.Errorf("LastChange = %v, expected it carried over from %v",
				settled.LastChange, changed.LastChange)
		}

		// History grew once per successful check.
		freshHistory := store.NewHistoryStore(history.Path())
		if err := freshHistory.Load(); err != nil {
			t.Fatalf("history Load() error = %v", err)
		}
		entries := freshHistory.Entries("page")
		if len(entries) != 3 {
			t.Fatalf("history has %d entries, expected 3", len(entries))
		}
		if !entries[1].ChangeDetected {
			t.Error("second history entry should have change_detected true")
		}
		if entries[0].ChangeDetected || entries[2].ChangeDetected {
			t.Error("baseline and settled entries should have change_detected false")
		}
	})

	t.Run("cancelled context aborts without writing", func(t *testing.T) {
		t.Parallel()

		server := newMutableServer(t, "<html><body>irrelevant</body></html>")
		status, history, dir := newTestStores(t)
		sites := []model.Site{{ID: "page", Name: "Page", URL: server.URL()}}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r := New(sites, newTestPipeline(t), status, history)
		if _, err := r.Run(ctx); err == nil {
			t.Fatal("Run() expected error for cancelled context, got nil")
		}

		if _, err := os.Stat(filepath.Join(dir, "status.json")); !os.IsNotExist(err) {
			t.Error("status file was written despite the cancelled run")
		}
	})

	t.Run("archives every outcome including failures", func(t *testing.T) {
		t.Parallel()

		ok := newMutableServer(t, "<html><body><p>archived content</p></body></html>")
		broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		}))
		defer broken.Close()

		status, history, _ := newTestStores(t)
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("database.Open() error = %v", err)
		}
		defer db.Close()

		sites := []model.Site{
			{ID: "archived", Name: "Archived", URL: ok.URL()},
			{ID: "failing", Name: "Failing", URL: broken.URL},
		}
		r := New(sites, newTestPipeline(t), status, history,
			WithArchive(db, 10))
		if _, err := r.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		ctx := context.Background()
		okRecords, err := db.History(ctx, "archived", 0)
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if len(okRecords) != 1 {
			t.Fatalf("archive has %d records for archived, expected 1", len(okRecords))
		}
		if okRecords[0].Hash == "" {
			t.Error("archived record has no hash")
		}

		failRecords, err := db.History(ctx, "failing", 0)
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if len(failRecords) != 1 {
			t.Fatalf("archive has %d records for failing, expected 1", len(failRecords))
		}
		if failRecords[0].Status != model.StatusError {
			t.Errorf("failing record status = %q, expected %q", failRecords[0].Status, model.StatusError)
		}
		if !strings.Contains(failRecords[0].Error, "500") {
			t.Errorf("failing record error = %q, expected it to mention 500", failRecords[0].Error)
		}

		snapshots, err := db.LastSnapshots(ctx, "archived", 1)
		if err != nil {
			t.Fatalf("LastSnapshots() error = %v", err)
		}
		if len(snapshots) != 1 || snapshots[0].Content == "" {
			t.Error("archive did not keep the normalized content")
		}
	})

	t.Run("encrypted site without a key fails alone", func(t *testing.T) {
		t.Parallel()

		ok := newMutableServer(t, "<html><body><p>public page</p></body></html>")
		status, history, _ := newTestStores(t)

		sites := []model.Site{
			{ID: "public", Name: "Public", URL: ok.URL()},
			{ID: "locked", Name: "Locked", URL: "bm90IGRlY3J5cHRhYmxl", Encrypted: true},
		}

		// DefaultPipeline with a nil cipher: encrypted sites cannot
		// resolve their URL.
		r := New(sites, newTestPipeline(t), status, history)
		summary, err := r.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if summary.Errors != 1 || summary.Unchanged != 1 {
			t.Fatalf("Errors = %d, Unchanged = %d; expected 1 and 1",
				summary.Errors, summary.Unchanged)
		}
		locked := summary.Snapshot.FindSite("locked")
		if locked.Status != model.StatusError {
			t.Errorf("locked status = %q, expected %q", locked.Status, model.StatusError)
		}
		if !strings.Contains(locked.Error, "no decryption key") {
			t.Errorf("locked error = %q, expected the missing-key message", locked.Error)
		}
		if locked.URL != "bm90IGRlY3J5cHRhYmxl" {
			t.Errorf("locked URL = %q, expected the ciphertext to be preserved", locked.URL)
		}
	})
}
