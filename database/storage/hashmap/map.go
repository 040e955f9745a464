package hashmap

import (
	"context"
	"fmt"
	"sync"

	"github.com/armon/go-radix"

	"github.com/safing/portstore/database/iterator"
	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
	"github.com/safing/portstore/database/storage"
)

// HashMap is an in-memory storage. Records are kept marshaled, so handles
// given out never share state with the stored copy.
type HashMap struct {
	name   string
	db     *radix.Tree
	dbLock sync.RWMutex
}

func init() {
	_ = storage.Register("hashmap", NewHashMap)
}

// NewHashMap creates a hashmap database.
func NewHashMap(name, location string) (storage.Interface, error) {
	return &HashMap{
		name: name,
		db:   radix.New(),
	}, nil
}

// Get returns a database record.
func (hm *HashMap) Get(key string) (record.Record, error) {
	hm.dbLock.RLock()
	defer hm.dbLock.RUnlock()

	v, ok := hm.db.Get(key)
	if !ok {
		return nil, storage.ErrNotFound
	}

	wrapper, err := record.NewRawWrapper(key, v.([]byte))
	if err != nil {
		return nil, err
	}
	if !wrapper.Meta().CheckValidity() {
		return nil, storage.ErrNotFound
	}
	return wrapper, nil
}

// Put stores a record in the database.
func (hm *HashMap) Put(r record.Record) (record.Record, error) {
	batch := storage.NewBatch()
	if err := batch.Put(r); err != nil {
		return nil, err
	}
	if err := hm.Apply(batch); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete deletes a record from the database.
func (hm *HashMap) Delete(key string) error {
	hm.dbLock.Lock()
	defer hm.dbLock.Unlock()

	hm.db.Delete(key)
	return nil
}

// Apply commits all entries of the batch atomically.
func (hm *HashMap) Apply(batch *storage.Batch) error {
	hm.dbLock.Lock()
	defer hm.dbLock.Unlock()

	for _, entry := range batch.Entries() {
		if entry.IsDelete() {
			hm.db.Delete(entry.Key)
		} else {
			hm.db.Insert(entry.Key, entry.Value)
		}
	}
	return nil
}

// Query returns a an iterator for the supplied query.
func (hm *HashMap) Query(q *query.Query) (*iterator.Iterator, error) {
	_, err := q.Check()
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	queryIter := iterator.New()

	go hm.queryExecutor(queryIter, q)
	return queryIter, nil
}

func (hm *HashMap) queryExecutor(queryIter *iterator.Iterator, q *query.Query) {
	// Collect matches first so that slow consumers do not block writers.
	var (
		matches []record.Record
		err     error
	)
	hm.dbLock.RLock()
	hm.db.WalkPrefix(q.DatabaseKeyPrefix(), func(key string, v interface{}) bool {
		var wrapper *record.Wrapper
		wrapper, err = storage.WrapIfMatches(q, key, v.([]byte))
		if err != nil {
			return true
		}
		if wrapper != nil {
			matches = append(matches, wrapper)
		}
		return false
	})
	hm.dbLock.RUnlock()

	if err == nil {
		for _, r := range matches {
			var ok bool
			ok, err = queryIter.Send(r)
			if !ok {
				break
			}
		}
	}

	queryIter.Finish(err)
}

// ReadOnly returns whether the database is read only.
func (hm *HashMap) ReadOnly() bool {
	return false
}

// Maintain runs a light maintenance operation on the database.
func (hm *HashMap) Maintain(_ context.Context) error {
	return nil
}

// Shutdown shuts down the database.
func (hm *HashMap) Shutdown() error {
	hm.dbLock.Lock()
	defer hm.dbLock.Unlock()

	hm.db = radix.New()
	return nil
}
