package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"

	"github.com/nao1215/webwatch/internal/model"
)

// DBFileName is the name of the SQLite database file inside the archive
// directory.
const DBFileName = "webwatch.db"

// DefaultKeepPerSite is how many archived checks Prune retains for each
// site when the caller does not configure a different bound.
const DefaultKeepPerSite = 500

// WatchDB is the append-only archive of completed checks.
//
// Design decision: the archive is a plain table of rows, one per check,
// rather than a normalized set of sites and revisions. Reasons:
//  1. Checks are naturally immutable events; an insert-only table never
//     needs migration logic for in-place updates.
//  2. The history and diff commands only ever filter by site and order
//     by time, which two indexes cover.
//  3. Losing the archive loses nothing the watcher needs to keep
//     working; the JSON status and history files are the real contract.
type WatchDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures how the archive database is opened.
type Options struct {
	// CreateIfNotExists creates the database file and schema when they
	// do not exist yet. When false, Open fails if the file is missing.
	CreateIfNotExists bool

	// EnableWAL turns on write-ahead logging. WAL keeps readers (the
	// history and diff commands) from blocking the single writer.
	EnableWAL bool
}

// DefaultOptions returns the options used by the check command: create
// the archive on first run and use WAL.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// ReadOnlyOptions returns the options used by the history and diff
// commands: never create the archive, just open what the check command
// left behind.
func ReadOnlyOptions() Options {
	return Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	}
}

// Open opens (and if requested creates) the archive database inside
// dbDir. The caller owns the returned handle and must Close it.
func Open(dbDir string, opts Options) (*WatchDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("archive database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check archive path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	// mode=rwc creates the file on first open; mode=rw requires it to
	// already exist so read-only commands fail fast with a clear error.
	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	dsn := fmt.Sprintf("file:%s?mode=%s", dbPath, mode)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY errors instead of retrying around them.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach archive database: %w", err)
	}

	if opts.EnableWAL {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}

	w := &WatchDB{db: db, dbPath: dbPath}
	if opts.CreateIfNotExists {
		if err := w.createTables(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create archive schema: %w", err)
		}
	}
	return w, nil
}

// Close closes the underlying database handle.
func (w *WatchDB) Close() error {
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}

// Path returns the location of the database file.
func (w *WatchDB) Path() string {
	return w.dbPath
}

func (w *WatchDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site_id TEXT NOT NULL,
		site_name TEXT NOT NULL,
		url TEXT NOT NULL,
		checked_at DATETIME NOT NULL,
		status TEXT NOT NULL,
		hash TEXT,
		change_detected INTEGER NOT NULL DEFAULT 0,
		content TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_checks_site ON checks(site_id);
	CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at);
	`
	if _, err := w.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// CheckRecord is one archived check.
type CheckRecord struct {
	// ID is the row identifier assigned by SQLite.
	ID int64

	// SiteID identifies the watched site the check ran against.
	SiteID string

	// SiteName is the display name of the site at the time of the check.
	SiteName string

	// URL is the URL as configured for the site. For encrypted sites this
	// is the encrypted form, so plaintext URLs never reach disk here.
	URL string

	// CheckedAt is when the fetch happened, in UTC.
	CheckedAt time.Time

	// Status is the check outcome: unchanged, updated, or error.
	Status model.Status

	// Hash is the content fingerprint. Empty for failed checks.
	Hash string

	// ChangeDetected reports whether this check observed new content.
	ChangeDetected bool

	// Content is the normalized text the fingerprint was computed over.
	// Empty for failed checks. Kept so the diff command can compare two
	// snapshots without refetching anything.
	Content string

	// Error is the failure message for failed checks, empty otherwise.
	Error string
}

// SaveCheck appends one check to the archive and returns its row ID.
func (w *WatchDB) SaveCheck(ctx context.Context, rec *CheckRecord) (int64, error) {
	checkedAt := rec.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO checks (site_id, site_name, url, checked_at, status, hash, change_detected, content, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := w.db.ExecContext(ctx, query,
		rec.SiteID,
		rec.SiteName,
		rec.URL,
		checkedAt.UTC().Format("2006-01-02 15:04:05"),
		string(rec.Status),
		rec.Hash,
		rec.ChangeDetected,
		rec.Content,
		rec.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save check for %s: %w", rec.SiteID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted row ID: %w", err)
	}
	return id, nil
}

// History returns up to limit archived checks for siteID, newest first.
// Content is omitted to keep the result light; use LastSnapshots when
// the normalized text is needed. A limit of zero or less means no limit.
func (w *WatchDB) History(ctx context.Context, siteID string, limit int) ([]CheckRecord, error) {
	query := `
	SELECT id, site_id, site_name, url, checked_at, status, hash, change_detected, error
	FROM checks
	WHERE site_id = ?
	ORDER BY checked_at DESC, id DESC
	`
	args := []any{siteID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", siteID, err)
	}
	defer rows.Close()

	var records []CheckRecord
	for rows.Next() {
		var rec CheckRecord
		var checkedAt, status string
		var hash, errMsg sql.NullString
		if err := rows.Scan(&rec.ID, &rec.SiteID, &rec.SiteName, &rec.URL,
			&checkedAt, &status, &hash, &rec.ChangeDetected, &errMsg); err != nil {
			// A malformed row should not hide the rest of the history.
			continue
		}
		rec.CheckedAt = parseTimestamp(checkedAt)
		rec.Status = model.Status(status)
		rec.Hash = hash.String
		rec.Error = errMsg.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history for %s: %w", siteID, err)
	}
	return records, nil
}

// LastSnapshots returns up to n successful checks for siteID that carry
// normalized content, newest first. The diff command compares the two
// newest snapshots; passing a larger n allows diffing further back.
func (w *WatchDB) LastSnapshots(ctx context.Context, siteID string, n int) ([]CheckRecord, error) {
	query := `
	SELECT id, site_id, site_name, url, checked_at, status, hash, change_detected, content
	FROM checks
	WHERE site_id = ? AND status != ? AND content != ''
	ORDER BY checked_at DESC, id DESC
	LIMIT ?
	`
	rows, err := w.db.QueryContext(ctx, query, siteID, string(model.StatusError), n)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots for %s: %w", siteID, err)
	}
	defer rows.Close()

	var records []CheckRecord
	for rows.Next() {
		var rec CheckRecord
		var checkedAt, status string
		var hash, content sql.NullString
		if err := rows.Scan(&rec.ID, &rec.SiteID, &rec.SiteName, &rec.URL,
			&checkedAt, &status, &hash, &rec.ChangeDetected, &content); err != nil {
			continue
		}
		rec.CheckedAt = parseTimestamp(checkedAt)
		rec.Status = model.Status(status)
		rec.Hash = hash.String
		rec.Content = content.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots for %s: %w", siteID, err)
	}
	return records, nil
}

// Sites returns the distinct site IDs present in the archive, sorted.
func (w *WatchDB) Sites(ctx context.Context) ([]string, error) {
	rows, err := w.db.QueryContext(ctx,
		"SELECT DISTINCT site_id FROM checks ORDER BY site_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list archived sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		sites = append(sites, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate archived sites: %w", err)
	}
	return sites, nil
}

// Prune deletes, for every site, all archived checks except the newest
// keepPerSite. It returns the number of deleted rows. A bound of zero
// or less is treated as DefaultKeepPerSite.
func (w *WatchDB) Prune(ctx context.Context, keepPerSite int) (int64, error) {
	if keepPerSite <= 0 {
		keepPerSite = DefaultKeepPerSite
	}

	// The correlated subquery selects the rows to keep per site; the
	// outer DELETE removes everything else.
	query := `
	DELETE FROM checks
	WHERE id NOT IN (
		SELECT c.id FROM checks AS c
		WHERE c.site_id = checks.site_id
		ORDER BY c.checked_at DESC, c.id DESC
		LIMIT ?
	)
	`
	res, err := w.db.ExecContext(ctx, query, keepPerSite)
	if err != nil {
		return 0, fmt.Errorf("failed to prune archive: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned rows: %w", err)
	}
	return deleted, nil
}

// timestampFormats lists the layouts accepted when reading checked_at
// back out of SQLite. SaveCheck always writes the first one; the rest
// tolerate rows written by other tools.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTimestamp parses a timestamp string from the database, trying
// each known layout in order. It returns the zero time when nothing
// matches rather than failing the whole query.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
