package database

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/safing/portstore/database/accessor"
	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
	"github.com/safing/portstore/log"
)

// Entity constrains T to be a pointer to the struct E that implements record.Record.
type Entity[E any] interface {
	*E
	record.Record
}

func newEntity[E any, T Entity[E]]() T {
	return T(new(E))
}

// asEntity returns r as T, decoding it into a new T if it is wrapped.
func asEntity[E any, T Entity[E]](r record.Record) (T, error) {
	if t, ok := r.(T); ok {
		return t, nil
	}

	t := newEntity[E, T]()
	if !r.IsWrapped() {
		return nil, fmt.Errorf("%w: %T is not %T", ErrTypeMismatch, r, t)
	}
	if err := record.Unwrap(r, t); err != nil {
		return nil, err
	}
	return t, nil
}

// resolve returns the live read context handle for the stored record.
func resolve[E any, T Entity[E]](m *Manager, stored record.Record) (T, error) {
	r, err := m.readCtx.resolve(
		stored,
		func() record.Record {
			return newEntity[E, T]()
		},
		func(live record.Record) bool {
			_, ok := live.(T)
			return ok
		},
	)
	if err != nil {
		return nil, err
	}

	t, ok := r.(T)
	if !ok {
		return nil, ErrTypeMismatch
	}
	return t, nil
}

func (m *Manager) checkUsable() error {
	switch {
	case m == nil:
		return ErrNoManager
	case m.closed.IsSet():
		return ErrShuttingDown
	default:
		return nil
	}
}

func buildQuery(storageName string, filter query.Filter) (*query.Query, error) {
	if !record.ValidStorageName(storageName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStorageName, storageName)
	}
	return query.ForStorage(storageName, filter), nil
}

// query returns the committed records matching q, ordered and windowed.
func (m *Manager) query(q *query.Query) ([]record.Record, error) {
	if _, err := q.Check(); err != nil {
		return nil, err
	}

	it, err := m.controller.Query(q)
	if err != nil {
		return nil, err
	}

	var records []record.Record
	if !q.HasOrdering() && q.GetLimit() > 0 {
		// Stop as soon as the window is filled.
		needed := q.GetOffset() + q.GetLimit()
		for r := range it.Next {
			records = append(records, r)
			if len(records) >= needed {
				it.Cancel()
				break
			}
		}
		if len(records) < needed {
			err = it.Err()
		}
	} else {
		records, err = it.Drain()
	}
	if err != nil {
		return nil, err
	}

	return orderAndWindow(q, records), nil
}

// orderAndWindow sorts the records by the ordering of q and applies offset and limit.
func orderAndWindow(q *query.Query, records []record.Record) []record.Record {
	if q.HasOrdering() && len(records) > 1 {
		type sortable struct {
			r   record.Record
			acc accessor.Accessor
		}
		entries := make([]sortable, 0, len(records))
		for _, r := range records {
			acc := r.GetAccessor(r)
			if acc == nil {
				empty := []byte("{}")
				acc = accessor.NewJSONBytesAccessor(&empty)
			}
			entries = append(entries, sortable{r: r, acc: acc})
		}

		sorter := q.NewSorter()
		slices.SortStableFunc(entries, func(a, b sortable) int {
			return sorter.Compare(a.acc, b.acc)
		})
		for i, entry := range entries {
			records[i] = entry.r
		}
	}

	start, end := q.Window(len(records))
	return records[start:end]
}

func (m *Manager) queryFailed(op string, q *query.Query, err error) error {
	m.metrics.queryFailed()
	log.Warningf("database: %s: %s failed for %s: %s", m.opts.StoreName, op, q.Print(), err)
	return fmt.Errorf("database: %s failed: %w", op, err)
}

// GetOne returns the first record of the storage matching the filter.
// It returns ErrNotFound if nothing matches.
//
// The returned handle is shared with other callers and is updated in place
// by the writer under the handle's lock whenever its record is committed.
// Lock the handle while reading fields concurrently to writes, and do not
// hold the lock across calls to the manager.
func GetOne[E any, T Entity[E]](m *Manager, storageName string, filter query.Filter) (T, error) {
	if err := m.checkUsable(); err != nil {
		return nil, err
	}
	q, err := buildQuery(storageName, filter)
	if err != nil {
		return nil, err
	}
	q.Limit(1)

	records, err := m.query(q)
	if err != nil {
		return nil, m.queryFailed("get one", q, err)
	}
	if len(records) == 0 {
		m.metrics.notFound()
		return nil, ErrNotFound
	}

	t, err := resolve[E, T](m, records[0])
	if err != nil {
		return nil, m.queryFailed("get one", q, err)
	}
	return t, nil
}

// GetAll returns all records of the storage matching the filter.
// The returned handles are live, with the same locking rules as for GetOne.
func GetAll[E any, T Entity[E]](m *Manager, storageName string, filter query.Filter) ([]T, error) {
	if err := m.checkUsable(); err != nil {
		return nil, err
	}
	q, err := buildQuery(storageName, filter)
	if err != nil {
		return nil, err
	}

	records, err := m.query(q)
	if err != nil {
		return nil, m.queryFailed("get all", q, err)
	}

	results := make([]T, 0, len(records))
	for _, r := range records {
		t, err := resolve[E, T](m, r)
		if err != nil {
			return nil, m.queryFailed("get all", q, err)
		}
		results = append(results, t)
	}
	return results, nil
}

// GetCount returns the number of records of the storage matching the filter.
func GetCount(m *Manager, storageName string, filter query.Filter) (int, error) {
	if err := m.checkUsable(); err != nil {
		return 0, err
	}
	q, err := buildQuery(storageName, filter)
	if err != nil {
		return 0, err
	}

	records, err := m.query(q)
	if err != nil {
		return 0, m.queryFailed("count", q, err)
	}
	return len(records), nil
}

// Get returns the live handle of the record with the given key, see GetOne.
func Get[E any, T Entity[E]](m *Manager, key string) (T, error) {
	if err := m.checkUsable(); err != nil {
		return nil, err
	}

	stored, err := m.controller.Get(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			m.metrics.notFound()
		} else {
			log.Warningf("database: %s: failed to get %s: %s", m.opts.StoreName, key, err)
		}
		return nil, err
	}
	return resolve[E, T](m, stored)
}

// Pending is a record creation that has been submitted to the writer.
type Pending[T record.Record] struct {
	key    string
	result *WriteResult
	load   func() (T, error)
}

// Key returns the key the new record will have.
func (p *Pending[T]) Key() string {
	return p.key
}

// Done is closed when the creation has been committed or has failed.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.result.Done()
}

// Wait waits for the creation and returns the new record from the read context.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	if err := p.result.Wait(ctx); err != nil {
		var zero T
		return zero, err
	}
	return p.load()
}

// CreateOneAsync submits the creation of a new record. The initializer is
// called by the writer to fill in the new record before it is committed.
func CreateOneAsync[E any, T Entity[E]](m *Manager, storageName string, initializer func(T)) *Pending[T] {
	pending := &Pending[T]{
		load: func() (T, error) {
			return nil, ErrNoManager
		},
	}
	if err := m.checkUsable(); err != nil {
		pending.result = failedWriteResult(err)
		return pending
	}
	if !record.ValidStorageName(storageName) {
		pending.result = failedWriteResult(fmt.Errorf("%w: %q", ErrInvalidStorageName, storageName))
		return pending
	}

	pending.key = record.NewKey(storageName)
	pending.load = func() (T, error) {
		return Get[E, T](m, pending.key)
	}
	pending.result = m.submit(opCreate, func(tx *WriteTx) error {
		t := newEntity[E, T]()
		t.SetKey(pending.key)
		t.SetMeta(&record.Meta{})
		if initializer != nil {
			initializer(t)
		}
		return tx.Put(t)
	})
	return pending
}

// CreateOne creates a new record and returns its read context handle.
func CreateOne[E any, T Entity[E]](m *Manager, storageName string, initializer func(T)) (T, error) {
	pending := CreateOneAsync[E, T](m, storageName, initializer)
	if m == nil {
		return pending.Wait(context.Background())
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.opts.WriteTimeout)
	defer cancel()
	return pending.Wait(ctx)
}

// SaveChangesAsync submits a change of the record. The writer re-resolves the
// record by its key and calls the mutator on that copy before committing.
// The committed values are merged into the read context handle and into item.
func SaveChangesAsync[E any, T Entity[E]](m *Manager, item T, mutator func(T)) *WriteResult {
	if err := m.checkUsable(); err != nil {
		return failedWriteResult(err)
	}
	if !item.KeyIsSet() {
		return failedWriteResult(ErrMissingKey)
	}

	key := item.Key()
	return m.submit(opSave, func(tx *WriteTx) error {
		stored, err := tx.Get(key)
		if err != nil {
			return err
		}
		t, err := asEntity[E, T](stored)
		if err != nil {
			return err
		}

		if mutator != nil {
			mutator(t)
		}
		if err := tx.Put(t); err != nil {
			return err
		}

		tx.onCommit(func(committed map[string]*record.Wrapper) {
			if w, ok := committed[key]; ok && record.Record(item) != record.Record(t) {
				if err := merge(w, item); err != nil {
					log.Warningf("database: %s: failed to update %s after save: %s", m.opts.StoreName, key, err)
				}
			}
		})
		return nil
	})
}

// SaveChanges changes the record and waits for the change to be committed.
// It returns ErrNotFound, without calling the mutator, if the record no longer exists.
func SaveChanges[E any, T Entity[E]](m *Manager, item T, mutator func(T)) error {
	res := SaveChangesAsync[E, T](m, item, mutator)
	if m == nil {
		return res.Wait(context.Background())
	}
	return m.wait(res)
}

// DeleteOneAsync submits the deletion of the record.
func DeleteOneAsync(m *Manager, item record.Record) *WriteResult {
	if err := m.checkUsable(); err != nil {
		return failedWriteResult(err)
	}
	if !item.KeyIsSet() {
		return failedWriteResult(ErrMissingKey)
	}

	key := item.Key()
	return m.submit(opDelete, func(tx *WriteTx) error {
		if _, err := tx.Get(key); err != nil {
			return err
		}
		tx.Delete(key)
		return nil
	})
}

// DeleteOne deletes the record and waits for the deletion to be committed.
// It returns ErrNotFound if the record does not exist.
func DeleteOne(m *Manager, item record.Record) error {
	res := DeleteOneAsync(m, item)
	if m == nil {
		return res.Wait(context.Background())
	}
	return m.wait(res)
}

// DeleteAllAsync submits the deletion of all records of the storage matching
// the filter. Matches are evaluated within the write transaction.
func DeleteAllAsync(m *Manager, storageName string, filter query.Filter) *WriteResult {
	if err := m.checkUsable(); err != nil {
		return failedWriteResult(err)
	}
	q, err := buildQuery(storageName, filter)
	if err != nil {
		return failedWriteResult(err)
	}
	if _, err := q.Check(); err != nil {
		return failedWriteResult(err)
	}

	return m.submit(opDeleteAll, func(tx *WriteTx) error {
		records, err := tx.Query(q)
		if err != nil {
			return m.queryFailed("delete all", q, err)
		}
		records = orderAndWindow(q, records)

		for _, r := range records {
			tx.Delete(r.Key())
		}
		log.Debugf("database: %s: deleting %d records of %s", m.opts.StoreName, len(records), storageName)
		return nil
	})
}

// DeleteAll deletes all records of the storage matching the filter and waits for the deletion.
func DeleteAll(m *Manager, storageName string, filter query.Filter) error {
	res := DeleteAllAsync(m, storageName, filter)
	if m == nil {
		return res.Wait(context.Background())
	}
	return m.wait(res)
}

// Truncate deletes all records of the storage.
func Truncate(m *Manager, storageName string) error {
	return DeleteAll(m, storageName, nil)
}
