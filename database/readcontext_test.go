package database

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safing/portstore/database/record"
	"github.com/safing/portstore/formats/dsd"
)

func wrap(t *testing.T, e *testEntity) *record.Wrapper {
	t.Helper()

	data, err := e.MarshalRecord(e)
	require.NoError(t, err)
	w, err := record.NewRawWrapper(e.Key(), data)
	require.NoError(t, err)
	return w
}

func TestMergeResetsOmittedFields(t *testing.T) {
	t.Parallel()

	stored := &testEntity{Name: "Kosh", Count: 1}
	stored.SetKey(record.NewKey(testStorage))
	stored.SetMeta(&record.Meta{})
	stored.Meta().Update()

	live := &testEntity{Name: "stale", Count: 9, Tags: []string{"old"}}
	live.SetKey(stored.Key())

	require.NoError(t, merge(wrap(t, stored), live))
	assert.Equal(t, "Kosh", live.Name)
	assert.Equal(t, 1, live.Count)
	assert.Nil(t, live.Tags)
	assert.Equal(t, stored.Meta().Modified, live.Meta().Modified)
}

func TestReadContextIdentity(t *testing.T) {
	t.Parallel()

	rc := newReadContext(0)
	newEntity := func() record.Record { return &testEntity{} }
	accept := func(r record.Record) bool {
		_, ok := r.(*testEntity)
		return ok
	}

	e := &testEntity{Name: "Ulkesh"}
	e.SetKey(record.NewKey(testStorage))
	e.SetMeta(&record.Meta{})
	w := wrap(t, e)

	first, err := rc.resolve(w, newEntity, accept)
	require.NoError(t, err)
	second, err := rc.resolve(w, newEntity, accept)
	require.NoError(t, err)
	assert.Same(t, first, second)

	e.Name = "Kosh"
	require.NoError(t, rc.committed(wrap(t, e), e))
	assert.Equal(t, "Kosh", first.(*testEntity).Name)

	rc.evict(e.Key())
	third, err := rc.resolve(w, newEntity, accept)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, "Ulkesh", third.(*testEntity).Name)
}

type looseEntity struct {
	record.Base
	sync.Mutex

	Name  string `json:"name"`
	Count any    `json:"count"`
}

func TestCommitDropsHandleOfOtherType(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	live := createEntity(t, m, "Garibaldi", 1)

	other, err := GetOne[looseEntity](m, testStorage, byName("Garibaldi"))
	require.NoError(t, err)
	require.NoError(t, SaveChanges(m, other, func(e *looseEntity) {
		e.Name = "Michael Garibaldi"
		e.Count = "many"
	}))
	assert.Equal(t, "Michael Garibaldi", other.Name)
	assert.Equal(t, "many", other.Count)

	_, cached := m.readCtx.lookup(live.Key())
	assert.False(t, cached)

	stored, err := Get[looseEntity](m, live.Key())
	require.NoError(t, err)
	assert.Equal(t, "Michael Garibaldi", stored.Name)
	assert.Equal(t, "many", stored.Count)
}

func TestCommitWithUnmergeableData(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	live := createEntity(t, m, "Talia Winters", 2)

	put := func(data string) error {
		w, err := record.NewWrapper(live.Key(), nil, dsd.JSON, []byte(data))
		require.NoError(t, err)
		return m.Submit(func(tx *WriteTx) error {
			return tx.Put(w)
		}).Wait(context.Background())
	}

	require.NoError(t, put(`{"name":"Talia","count":5}`))
	assert.Equal(t, "Talia", live.Name)
	assert.Equal(t, 5, live.Count)

	require.NoError(t, put(`{"name":"Talia Winters","count":"two"}`))
	_, cached := m.readCtx.lookup(live.Key())
	assert.False(t, cached)
	assert.Equal(t, "Talia", live.Name)
	assert.Equal(t, 5, live.Count)

	n, err := GetCount(m, testStorage, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
