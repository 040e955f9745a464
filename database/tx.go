package database

import (
	"fmt"

	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
	"github.com/safing/portstore/database/storage"
	"github.com/safing/portstore/log"
)

// WriteTx is the private write context of a single write. Reads see the
// committed store overlaid with the changes staged so far.
type WriteTx struct {
	m *Manager

	puts    map[string]record.Record
	deletes map[string]struct{}
	order   []string

	afterCommit []func(committed map[string]*record.Wrapper)
}

func newWriteTx(m *Manager) *WriteTx {
	return &WriteTx{
		m:       m,
		puts:    make(map[string]record.Record),
		deletes: make(map[string]struct{}),
	}
}

// Get returns the record with the given key.
func (tx *WriteTx) Get(key string) (record.Record, error) {
	if _, ok := tx.deletes[key]; ok {
		return nil, ErrNotFound
	}
	if r, ok := tx.puts[key]; ok {
		return r, nil
	}
	return tx.m.controller.Get(key)
}

// Query returns all records matching the query, ignoring ordering and window.
func (tx *WriteTx) Query(q *query.Query) ([]record.Record, error) {
	if _, err := q.Check(); err != nil {
		return nil, err
	}
	it, err := tx.m.controller.Query(q)
	if err != nil {
		return nil, err
	}
	committed, err := it.Drain()
	if err != nil {
		return nil, err
	}

	results := make([]record.Record, 0, len(committed))
	for _, r := range committed {
		_, deleted := tx.deletes[r.Key()]
		_, staged := tx.puts[r.Key()]
		if !deleted && !staged {
			results = append(results, r)
		}
	}
	for _, key := range tx.order {
		r, ok := tx.puts[key]
		if ok && q.MatchesKey(key) && q.MatchesRecord(r) {
			results = append(results, r)
		}
	}
	return results, nil
}

// Put stages the record for saving.
func (tx *WriteTx) Put(r record.Record) error {
	if !r.KeyIsSet() {
		return ErrMissingKey
	}
	if !record.ValidStorageName(r.StorageName()) {
		return fmt.Errorf("%w: %q", ErrInvalidStorageName, r.StorageName())
	}

	key := r.Key()
	delete(tx.deletes, key)
	if _, ok := tx.puts[key]; !ok {
		tx.order = append(tx.order, key)
	}
	tx.puts[key] = r
	return nil
}

// Delete stages the deletion of the record with the given key.
func (tx *WriteTx) Delete(key string) {
	delete(tx.puts, key)
	if _, ok := tx.deletes[key]; !ok {
		tx.order = append(tx.order, key)
	}
	tx.deletes[key] = struct{}{}
}

func (tx *WriteTx) commit() error {
	batch := storage.NewBatch()
	for _, key := range tx.order {
		if _, ok := tx.deletes[key]; ok {
			batch.Delete(key)
			continue
		}
		r, ok := tx.puts[key]
		if !ok {
			continue
		}
		if err := tx.stage(batch, r); err != nil {
			return err
		}
	}

	if err := tx.m.controller.Apply(batch); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	// bring live handles up to date
	committed := make(map[string]*record.Wrapper, batch.Len())
	for _, entry := range batch.Entries() {
		if entry.IsDelete() {
			tx.m.readCtx.evict(entry.Key)
			continue
		}
		wrapper, err := record.NewRawWrapper(entry.Key, entry.Value)
		if err == nil {
			committed[entry.Key] = wrapper
			err = tx.m.readCtx.committed(wrapper, tx.puts[entry.Key])
		}
		if err != nil {
			tx.m.readCtx.evict(entry.Key)
			log.Warningf("database: %s: dropped live handle of %s: %s", tx.m.opts.StoreName, entry.Key, err)
		}
	}
	for _, fn := range tx.afterCommit {
		fn(committed)
	}

	return nil
}

// onCommit registers fn to be called with the committed records after a successful commit.
func (tx *WriteTx) onCommit(fn func(committed map[string]*record.Wrapper)) {
	tx.afterCommit = append(tx.afterCommit, fn)
}

func (tx *WriteTx) stage(batch *storage.Batch, r record.Record) error {
	if r.IsWrapped() {
		return batch.Put(r)
	}

	r.Lock()
	defer r.Unlock()

	if r.Meta() == nil {
		r.SetMeta(&record.Meta{})
	}
	r.Meta().Update()
	return batch.PutAs(r, tx.m.opts.Format)
}
