package propertyrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/parcelworks/dealfilter/internal/domain"
	"github.com/parcelworks/dealfilter/internal/domain/property"
)

// Compile-time check: SQLiteSource implements Source.
var _ Source = (*SQLiteSource)(nil)

// SQLiteSource stores records in a single-file SQLite database. The full
// record is kept as a JSON column; id and state are extracted for indexed
// lookups.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	s := &SQLiteSource{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSource) ensureSchema() error {
	const createTable = `
CREATE TABLE IF NOT EXISTS properties (
  id    TEXT PRIMARY KEY,
  state TEXT NOT NULL DEFAULT '',
  data  TEXT NOT NULL
);
`
	if _, err := s.db.Exec(createTable); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_properties_state ON properties(state);`); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Get returns the record with the given id.
func (s *SQLiteSource) Get(ctx context.Context, id string) (*property.Record, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM properties WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("property %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query property: %w", err)
	}
	return decodeRecord(data)
}

// List returns up to limit records starting at offset, ordered by id.
func (s *SQLiteSource) List(ctx context.Context, offset, limit int) ([]*property.Record, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM properties ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var out []*property.Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *SQLiteSource) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return n, nil
}

// Put stores or replaces a record.
func (s *SQLiteSource) Put(ctx context.Context, rec *property.Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("record id is required: %w", domain.ErrInvalidRequest)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode property %q: %w", rec.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO properties (id, state, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET state = excluded.state, data = excluded.data`,
		rec.ID, rec.State, data)
	if err != nil {
		return fmt.Errorf("store property %q: %w", rec.ID, err)
	}
	return nil
}

// PutMany stores a batch of records in a single transaction.
func (s *SQLiteSource) PutMany(ctx context.Context, recs []*property.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO properties (id, state, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET state = excluded.state, data = excluded.data`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		if rec == nil || rec.ID == "" {
			return fmt.Errorf("record id is required: %w", domain.ErrInvalidRequest)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode property %q: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.State, data); err != nil {
			return fmt.Errorf("store property %q: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete removes a record by id.
func (s *SQLiteSource) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete property %q: %w", id, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteSource) Close() error { return s.db.Close() }

func decodeRecord(data []byte) (*property.Record, error) {
	var rec property.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode property: %w", err)
	}
	return &rec, nil
}
