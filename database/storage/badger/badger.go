package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger"

	"github.com/safing/portstore/database/iterator"
	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
	"github.com/safing/portstore/database/storage"
)

// Badger database made pluggable for portstore.
type Badger struct {
	name string
	db   *badger.DB
}

func init() {
	_ = storage.Register("badger", NewBadger)
}

// NewBadger opens/creates a badger database.
func NewBadger(name, location string) (storage.Interface, error) {
	opts := badger.DefaultOptions(location).WithLogger(&logger{name: name})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Badger{
		name: name,
		db:   db,
	}, nil
}

// Get returns a database record.
func (b *Badger) Get(key string) (record.Record, error) {
	var data []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		if item.IsDeletedOrExpired() {
			return storage.ErrNotFound
		}

		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
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
func (b *Badger) Put(r record.Record) (record.Record, error) {
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
func (b *Badger) Delete(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// Apply commits all entries of the batch atomically.
func (b *Badger) Apply(batch *storage.Batch) error {
	return b.db.Update(func(txn *badger.Txn) error {
		for _, entry := range batch.Entries() {
			var err error
			if entry.IsDelete() {
				err = txn.Delete([]byte(entry.Key))
			} else {
				err = txn.Set([]byte(entry.Key), entry.Value)
			}
			if err != nil {
				return fmt.Errorf("failed to apply %s: %w", entry.Key, err)
			}
		}
		return nil
	})
}

// Query returns a an iterator for the supplied query.
func (b *Badger) Query(q *query.Query) (*iterator.Iterator, error) {
	_, err := q.Check()
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	queryIter := iterator.New()

	go b.queryExecutor(queryIter, q)
	return queryIter, nil
}

func (b *Badger) queryExecutor(queryIter *iterator.Iterator, q *query.Query) {
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(q.DatabaseKeyPrefix())
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			if item.IsDeletedOrExpired() {
				continue
			}

			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			wrapper, err := storage.WrapIfMatches(q, string(item.Key()), data)
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
func (b *Badger) ReadOnly() bool {
	return false
}

// Maintain runs a light maintenance operation on the database.
func (b *Badger) Maintain(_ context.Context) error {
	err := b.db.RunValueLogGC(0.7)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
		return err
	}
	return nil
}

// Shutdown shuts down the database.
func (b *Badger) Shutdown() error {
	return b.db.Close()
}
