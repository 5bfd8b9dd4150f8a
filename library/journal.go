package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
)

// Journal is the on-disk activity log: a SQLite-backed, append-only record of
// everything the lending service reports. It implements Logger, so it can be
// plugged straight into the service; writes are best effort and never fail
// the operation that produced them. The journal holds no lending state, so a
// fresh process always starts from an empty catalog.
type Journal struct {
	db *sql.DB

	appendStmt *sql.Stmt
}

// Entry is one journal line.
type Entry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// JSON renders the entry as a single JSON document.
func (e Entry) JSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(e)
}

// EntryFromJSON parses a journal line previously rendered with JSON.
func EntryFromJSON(data []byte) (Entry, error) {
	var e Entry
	if err := jsoniter.ConfigFastest.Unmarshal(data, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// OpenJournal opens (or creates) the journal database at dbPath, applies
// schema migrations, and prepares the append statement.
func OpenJournal(dbPath string) (*Journal, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyJournalMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	j := &Journal{db: db}
	if j.appendStmt, err = db.Prepare(`INSERT INTO entries(id,created_at,level,message) VALUES(?,?,?,?)`); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close releases the prepared statement and closes the DB.
func (j *Journal) Close() error {
	if j.appendStmt != nil {
		j.appendStmt.Close()
	}
	return j.db.Close()
}

const journalSchemaVersion = 1

func applyJournalMigrations(db *sql.DB) error {
	// WAL improves write concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= journalSchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entries (
            id TEXT PRIMARY KEY,
            created_at DATETIME NOT NULL,
            level TEXT NOT NULL,
            message TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, journalSchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Log records an informational entry. Failures are swallowed: the journal is
// a sink, not a dependency of lending operations.
func (j *Journal) Log(message string) {
	_ = j.Append("INFO", message)
}

// LogError records an error entry.
func (j *Journal) LogError(message string, err error) {
	if err != nil {
		message = fmt.Sprintf("%s - %v", message, err)
	}
	_ = j.Append("ERROR", message)
}

// Append writes one entry and reports the write error, for callers that want
// to know.
func (j *Journal) Append(level, message string) error {
	_, err := j.appendStmt.Exec(uuid.NewString(), time.Now().UTC(), level, message)
	return err
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT id, created_at, level, message FROM entries ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Level, &e.Message); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
