package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Store persists catalog records in SQLite. A sidecar lock file guards
// against concurrent writers from separate processes; in-process access is
// serialized by database/sql.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	fields     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_type ON records(type);
`

// OpenStore opens (creating if needed) the catalog database at path.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("catalog store path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("catalog %s is in use by another process", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open catalog database: %w", err)
	}
	if _, err := db.ExecContext(ctx, storeSchema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("initialize catalog schema: %w", err)
	}
	return &Store{db: db, path: path, lock: lock}, nil
}

// Close releases the database handle and the process lock.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Put inserts or replaces a record.
func (s *Store) Put(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record required")
	}
	fields := make(map[string]string, len(rec.fields))
	for name, value := range rec.fields {
		fields[name] = value
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode record fields: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO records (id, type, fields, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at`,
			rec.ID(), string(rec.Type()), string(payload), now, now)
		return err
	})
}

// Get loads one record by id, rebuilding it against the supplied schema.
func (s *Store) Get(ctx context.Context, schema *Schema, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, type, fields FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row, schema)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: not found", id)
	}
	return rec, err
}

// List loads every record of the schema's collection type.
func (s *Store) List(ctx context.Context, schema *Schema) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, fields FROM records WHERE type = ? ORDER BY id`, string(schema.Type()))
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows, schema)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes a record by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
		return err
	})
}

// Count returns the number of stored records for a collection type.
func (s *Store) Count(ctx context.Context, typ Type) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE type = ?`, string(typ)).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord rehydrates a stored record. Stored values were validated on
// write, so fields rebind directly; choice values extended at fetch time are
// re-extended into the schema so they stay representable.
func scanRecord(row rowScanner, schema *Schema) (*Record, error) {
	var (
		id      string
		typ     string
		payload string
	)
	if err := row.Scan(&id, &typ, &payload); err != nil {
		return nil, err
	}
	if Type(typ) != schema.Type() {
		return nil, fmt.Errorf("record %s: stored type %q does not match schema %q", id, typ, schema.Type())
	}
	fields := map[string]string{}
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	rec := &Record{id: id, schema: schema, fields: make(map[string]string, len(fields))}
	for name, value := range fields {
		if !schema.HasField(name) {
			// field from an optional set not active in this schema; keep the
			// definition so the value is not dropped
			_ = schema.AddField(Field{Name: name, Title: name, Kind: KindLine})
		}
		for _, entry := range SplitValues(value) {
			schema.ExtendAllowed(name, entry)
		}
		rec.fields[name] = value
	}
	return rec, nil
}
