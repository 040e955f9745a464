// Package storagetest provides a conformance suite for storage backends.
package storagetest

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
	"github.com/safing/portstore/database/storage"
)

// Item is the record type used by the suite.
type Item struct {
	record.Base
	sync.Mutex

	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// NewItem returns a new item with a fresh key in the given storage.
func NewItem(storageName, name string, rank int) *Item {
	item := &Item{Name: name, Rank: rank}
	item.SetKey(record.NewKey(storageName))
	item.SetMeta(&record.Meta{})
	item.Meta().Update()
	return item
}

// Factory returns a fresh, empty storage for a single test.
type Factory func(t *testing.T) storage.Interface

// Run runs the conformance suite against storages created by the factory.
func Run(t *testing.T, factory Factory) {
	t.Helper()

	t.Run("PutGet", func(t *testing.T) { testPutGet(t, factory(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, factory(t)) })
	t.Run("Apply", func(t *testing.T) { testApply(t, factory(t)) })
	t.Run("Query", func(t *testing.T) { testQuery(t, factory(t)) })
	t.Run("QueryCancel", func(t *testing.T) { testQueryCancel(t, factory(t)) })
	t.Run("DeletedMeta", func(t *testing.T) { testDeletedMeta(t, factory(t)) })
}

func unwrap(t *testing.T, r record.Record) *Item {
	t.Helper()

	item := &Item{}
	require.NoError(t, record.Unwrap(r, item))
	return item
}

func testPutGet(t *testing.T, db storage.Interface) {
	t.Helper()
	defer shutdown(t, db)

	a := NewItem("test", "Jeffrey Sinclair", 3)
	_, err := db.Put(a)
	require.NoError(t, err)

	r, err := db.Get(a.Key())
	require.NoError(t, err)
	assert.True(t, r.IsWrapped())
	got := unwrap(t, r)
	assert.Equal(t, a.Name, got.Name)
	assert.Equal(t, a.Rank, got.Rank)
	assert.Equal(t, a.Key(), got.Key())
	assert.Equal(t, a.Meta().Created, got.Meta().Created)

	// overwrite
	a.Name = "John Sheridan"
	_, err = db.Put(a)
	require.NoError(t, err)
	r, err = db.Get(a.Key())
	require.NoError(t, err)
	assert.Equal(t, "John Sheridan", unwrap(t, r).Name)

	_, err = db.Get(record.NewKey("test"))
	require.ErrorIs(t, err, storage.ErrNotFound)
	assert.False(t, db.ReadOnly())
}

func testDelete(t *testing.T, db storage.Interface) {
	t.Helper()
	defer shutdown(t, db)

	a := NewItem("test", "Londo Mollari", 1)
	_, err := db.Put(a)
	require.NoError(t, err)

	require.NoError(t, db.Delete(a.Key()))
	_, err = db.Get(a.Key())
	require.ErrorIs(t, err, storage.ErrNotFound)

	// deleting a missing key is not an error
	require.NoError(t, db.Delete(a.Key()))
}

func testApply(t *testing.T, db storage.Interface) {
	t.Helper()
	defer shutdown(t, db)

	a := NewItem("test", "a", 1)
	b := NewItem("test", "b", 2)
	_, err := db.Put(a)
	require.NoError(t, err)

	batch := storage.NewBatch()
	require.NoError(t, batch.Put(b))
	batch.Delete(a.Key())
	c := NewItem("test", "c", 3)
	require.NoError(t, batch.Put(c))
	batch.Delete(c.Key())
	assert.Equal(t, 3, batch.Len())
	require.NoError(t, db.Apply(batch))

	_, err = db.Get(a.Key())
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = db.Get(c.Key())
	require.ErrorIs(t, err, storage.ErrNotFound)
	r, err := db.Get(b.Key())
	require.NoError(t, err)
	assert.Equal(t, "b", unwrap(t, r).Name)

	require.NoError(t, db.Apply(storage.NewBatch()))
}

func testQuery(t *testing.T, db storage.Interface) {
	t.Helper()
	defer shutdown(t, db)

	batch := storage.NewBatch()
	for i := range 20 {
		require.NoError(t, batch.Put(NewItem("test", fmt.Sprintf("item %02d", i), i)))
	}
	// neighbouring storages must not leak into results
	require.NoError(t, batch.Put(NewItem("tes", "other", 100)))
	require.NoError(t, batch.Put(NewItem("test2", "other", 100)))
	require.NoError(t, batch.Put(NewItem("testing", "other", 100)))
	require.NoError(t, db.Apply(batch))

	it, err := db.Query(query.ForStorage("test", nil))
	require.NoError(t, err)
	records, err := it.Drain()
	require.NoError(t, err)
	assert.Len(t, records, 20)

	it, err = db.Query(query.ForStorage("test", func(q *query.Query) {
		q.Where(query.Where("rank", query.GreaterThanOrEqual, 15))
	}))
	require.NoError(t, err)
	records, err = it.Drain()
	require.NoError(t, err)
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, unwrap(t, r).Name)
	}
	slices.Sort(names)
	assert.Equal(t, []string{"item 15", "item 16", "item 17", "item 18", "item 19"}, names)

	it, err = db.Query(query.ForStorage("empty", nil))
	require.NoError(t, err)
	records, err = it.Drain()
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = db.Query(query.New("Invalid"))
	require.Error(t, err)
}

func testQueryCancel(t *testing.T, db storage.Interface) {
	t.Helper()
	defer shutdown(t, db)

	batch := storage.NewBatch()
	for i := range 100 {
		require.NoError(t, batch.Put(NewItem("test", "item", i)))
	}
	require.NoError(t, db.Apply(batch))

	it, err := db.Query(query.ForStorage("test", nil))
	require.NoError(t, err)
	<-it.Next
	it.Cancel()
	for range it.Next {
	}
	require.NoError(t, it.Err())
}

func testDeletedMeta(t *testing.T, db storage.Interface) {
	t.Helper()
	defer shutdown(t, db)

	a := NewItem("test", "gone", 1)
	a.Meta().Delete()
	_, err := db.Put(a)
	require.NoError(t, err)

	_, err = db.Get(a.Key())
	require.ErrorIs(t, err, storage.ErrNotFound)

	it, err := db.Query(query.ForStorage("test", nil))
	require.NoError(t, err)
	records, err := it.Drain()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func shutdown(t *testing.T, db storage.Interface) {
	t.Helper()
	assert.NoError(t, db.Shutdown())
}
