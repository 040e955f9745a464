package database

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
)

const testStorage = "entity"

type testEntity struct {
	record.Base
	sync.Mutex

	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags,omitempty"`
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewInMemory("test")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Close()
	})
	return m
}

func byName(name string) query.Filter {
	return func(q *query.Query) {
		q.Where(query.Where("name", query.SameAs, name))
	}
}

func createEntity(t *testing.T, m *Manager, name string, count int) *testEntity {
	t.Helper()

	e, err := CreateOne[testEntity](m, testStorage, func(e *testEntity) {
		e.Name = name
		e.Count = count
	})
	require.NoError(t, err)
	return e
}
