package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register the "sqlite" driver

	"github.com/safing/portstore/database/iterator"
	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
	"github.com/safing/portstore/database/storage"
)

const (
	fileName    = "db.sqlite"
	openTimeout = 5 * time.Second
)

// SQLite database made pluggable for portstore.
type SQLite struct {
	name string
	db   *sql.DB
}

func init() {
	_ = storage.Register("sqlite", NewSQLite)
}

// NewSQLite opens/creates a sqlite database.
func NewSQLite(name, location string) (storage.Interface, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(filepath.Join(location, fileName)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// All access is serialized through a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	ddl := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS records (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);`,
	}
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("prepare sqlite schema: %w", err)
		}
	}

	return &SQLite{
		name: name,
		db:   db,
	}, nil
}

// Get returns a database record.
func (s *SQLite) Get(key string) (record.Record, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT value FROM records WHERE key = ?`, key).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, storage.ErrNotFound
	case err != nil:
		return nil, err
	}

	r, err := record.NewRawWrapper(key, data)
	if err != nil {
		return nil, err
	}
	if !r.Meta().CheckValidity() {
		return nil, storage.ErrNotFound
	}
	return r, nil
}

// Put stores a record in the database.
func (s *SQLite) Put(r record.Record) (record.Record, error) {
	batch := storage.NewBatch()
	if err := batch.Put(r); err != nil {
		return nil, err
	}
	if err := s.Apply(batch); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete deletes a record from the database.
func (s *SQLite) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM records WHERE key = ?`, key)
	return err
}

// Apply commits all entries of the batch atomically.
func (s *SQLite) Apply(batch *storage.Batch) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, entry := range batch.Entries() {
		if entry.IsDelete() {
			_, err = tx.Exec(`DELETE FROM records WHERE key = ?`, entry.Key)
		} else {
			_, err = tx.Exec(
				`INSERT INTO records (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
				entry.Key, entry.Value,
			)
		}
		if err != nil {
			return fmt.Errorf("failed to apply %s: %w", entry.Key, err)
		}
	}

	return tx.Commit()
}

// Query returns a an iterator for the supplied query.
func (s *SQLite) Query(q *query.Query) (*iterator.Iterator, error) {
	_, err := q.Check()
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	// Read all matching rows up front, as the single connection must not be
	// held while waiting for the consumer.
	records, err := s.collect(q)
	if err != nil {
		return nil, err
	}

	queryIter := iterator.New()
	go func() {
		var err error
		for _, r := range records {
			var ok bool
			ok, err = queryIter.Send(r)
			if !ok {
				break
			}
		}
		queryIter.Finish(err)
	}()
	return queryIter, nil
}

func (s *SQLite) collect(q *query.Query) ([]record.Record, error) {
	prefix := q.DatabaseKeyPrefix()
	rows, err := s.db.Query(
		`SELECT key, value FROM records WHERE key >= ? AND key < ? ORDER BY key`,
		prefix, prefixEnd(prefix),
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []record.Record
	for rows.Next() {
		var (
			key  string
			data []byte
		)
		if err := rows.Scan(&key, &data); err != nil {
			return nil, err
		}

		wrapper, err := storage.WrapIfMatches(q, key, data)
		if err != nil {
			return nil, err
		}
		if wrapper != nil {
			records = append(records, wrapper)
		}
	}
	return records, rows.Err()
}

// prefixEnd returns the smallest string greater than all strings with the given prefix.
func prefixEnd(prefix string) string {
	end := []byte(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return string(end[:i+1])
		}
	}
	return "\xff"
}

// ReadOnly returns whether the database is read only.
func (s *SQLite) ReadOnly() bool {
	return false
}

// Maintain runs a light maintenance operation on the database.
func (s *SQLite) Maintain(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE);`)
	return err
}

// Shutdown shuts down the database.
func (s *SQLite) Shutdown() error {
	return s.db.Close()
}
