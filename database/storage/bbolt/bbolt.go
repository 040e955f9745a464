package bbolt

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/safing/portstore/database/iterator"
	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
	"github.com/safing/portstore/database/storage"
)

var bucketName = []byte{0}

// BBolt database made pluggable for portstore.
type BBolt struct {
	name string
	db   *bbolt.DB
}

func init() {
	_ = storage.Register("bbolt", NewBBolt)
}

// NewBBolt opens/creates a bbolt database.
func NewBBolt(name, location string) (storage.Interface, error) {
	db, err := bbolt.Open(filepath.Join(location, "db.bbolt"), 0o600, &bbolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	// Create bucket
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BBolt{
		name: name,
		db:   db,
	}, nil
}

// Get returns a database record.
func (b *BBolt) Get(key string) (record.Record, error) {
	var r *record.Wrapper

	err := b.db.View(func(tx *bbolt.Tx) error {
		// get value from db
		value := tx.Bucket(bucketName).Get([]byte(key))
		if value == nil {
			return storage.ErrNotFound
		}

		// copy data
		duplicate := make([]byte, len(value))
		copy(duplicate, value)

		// create record
		var txErr error
		r, txErr = record.NewRawWrapper(key, duplicate)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	if !r.Meta().CheckValidity() {
		return nil, storage.ErrNotFound
	}
	return r, nil
}

// Put stores a record in the database.
func (b *BBolt) Put(r record.Record) (record.Record, error) {
	batch := storage.NewBatch()
	if err := batch.Put(r); err != nil {
		return nil, err
	}
	if err := b.Apply(batch); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete deletes a record from the database.
func (b *BBolt) Delete(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

// Apply commits all entries of the batch atomically.
func (b *BBolt) Apply(batch *storage.Batch) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		for _, entry := range batch.Entries() {
			var txErr error
			if entry.IsDelete() {
				txErr = bucket.Delete([]byte(entry.Key))
			} else {
				txErr = bucket.Put([]byte(entry.Key), entry.Value)
			}
			if txErr != nil {
				return fmt.Errorf("failed to apply %s: %w", entry.Key, txErr)
			}
		}
		return nil
	})
}

// Query returns a an iterator for the supplied query.
func (b *BBolt) Query(q *query.Query) (*iterator.Iterator, error) {
	_, err := q.Check()
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	queryIter := iterator.New()

	go b.queryExecutor(queryIter, q)
	return queryIter, nil
}

func (b *BBolt) queryExecutor(queryIter *iterator.Iterator, q *query.Query) {
	prefix := []byte(q.DatabaseKeyPrefix())
	err := b.db.View(func(tx *bbolt.Tx) error {
		// Create a cursor for iteration.
		c := tx.Bucket(bucketName).Cursor()

		// Iterate over items in sorted key order, starting at the prefix.
		for key, value := c.Seek(prefix); key != nil; key, value = c.Next() {
			// if we don't match the prefix anymore, exit
			if !bytes.HasPrefix(key, prefix) {
				return nil
			}

			// copy data, as bbolt values are only valid during the transaction
			duplicate := make([]byte, len(value))
			copy(duplicate, value)

			wrapper, err := storage.WrapIfMatches(q, string(key), duplicate)
			if err != nil {
				return err
			}
			if wrapper == nil {
				continue
			}

			ok, err := queryIter.Send(wrapper)
			if !ok {
				return err
			}
		}
		return nil
	})
	queryIter.Finish(err)
}

// ReadOnly returns whether the database is read only.
func (b *BBolt) ReadOnly() bool {
	return false
}

// Maintain runs a light maintenance operation on the database.
func (b *BBolt) Maintain(_ context.Context) error {
	return b.db.Sync()
}

// Shutdown shuts down the database.
func (b *BBolt) Shutdown() error {
	return b.db.Close()
}
