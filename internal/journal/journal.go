// Package journal persists recording events to a SQLCipher encrypted
// SQLite database. Only transition metadata is stored (outcome,
// duration, character count), never the transcript itself.
package journal

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	sqlcipher "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/finnvos/voxd/internal/domain"
)

// Ensure sqlcipher driver is registered.
var _ = sqlcipher.ErrBusy

const journalDBName = "journal.db"

// Encrypted implements domain.Journal using a SQLCipher database.
type Encrypted struct {
	db     *sql.DB
	dbPath string
}

// Open opens (or creates) the encrypted journal database in dataDir.
// The key is used as the SQLCipher passphrase via PRAGMA key.
func Open(dataDir string, key []byte) (*Encrypted, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, journalDBName)
	keyHex := hex.EncodeToString(key)

	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", dbPath, keyHex)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open encrypted database: %w", err)
	}

	// Verify the key actually decrypts the file.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to encrypted database: %w", err)
	}

	j := &Encrypted{db: db, dbPath: dbPath}
	if err := j.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return j, nil
}

func (j *Encrypted) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recording_events (
		id TEXT PRIMARY KEY,
		at INTEGER NOT NULL,
		event TEXT NOT NULL,
		outcome TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		chars INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_recording_events_at ON recording_events(at);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record inserts one recording event. The ID is assigned here if empty.
func (j *Encrypted) Record(ev domain.RecordingEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	_, err := j.db.Exec(
		`INSERT INTO recording_events (id, at, event, outcome, duration_ms, chars) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.At.Unix(), ev.Event, string(ev.Outcome), ev.Duration.Milliseconds(), ev.Chars,
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (j *Encrypted) Recent(limit int) ([]domain.RecordingEvent, error) {
	rows, err := j.db.Query(
		`SELECT id, at, event, outcome, duration_ms, chars
		 FROM recording_events ORDER BY at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []domain.RecordingEvent
	for rows.Next() {
		var (
			ev         domain.RecordingEvent
			at         int64
			outcome    string
			durationMs int64
		)
		if err := rows.Scan(&ev.ID, &at, &ev.Event, &outcome, &durationMs, &ev.Chars); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.At = time.Unix(at, 0)
		ev.Outcome = domain.Outcome(outcome)
		ev.Duration = time.Duration(durationMs) * time.Millisecond
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close releases the database connection.
func (j *Encrypted) Close() error {
	return j.db.Close()
}

// Ensure Encrypted implements domain.Journal.
var _ domain.Journal = (*Encrypted)(nil)
