package person

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safing/portstore/database"
)

func newManager(t *testing.T) *database.Manager {
	t.Helper()

	m, err := database.NewInMemory("persons")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Close()
	})
	return m
}

func createSinclair(t *testing.T, m *database.Manager) *Person {
	t.Helper()

	p, err := Create(func(p *Person) {
		p.Name = "Jeffrey Sinclair"
		p.Profession = "Commander"
		p.Organization = "Babylon 5"
		p.Notes = "Not the one."
	}, m)
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	p, err := New(m)
	require.NoError(t, err)
	assert.Equal(t, DefaultName, p.Name)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, StorageName, p.StorageName())

	got, err := GetByID(p.ID, m)
	require.NoError(t, err)
	assert.Same(t, p, got)
}

func TestCreate(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	created := createSinclair(t, m)

	got, err := GetByName("Jeffrey Sinclair", m)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Key(), got.Key())
	assert.Equal(t, "Commander", got.Profession)
	assert.Equal(t, "Babylon 5", got.Organization)
	assert.Equal(t, "Not the one.", got.Notes)
}

func TestSorted(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	for _, name := range []string{"Jeffrey Sinclair", "Suzan Ivanova", "Londo Mollari"} {
		p, err := New(m)
		require.NoError(t, err)
		require.NoError(t, p.SaveChanges(func(p *Person) {
			p.Name = name
			p.Organization = "Babylon 5"
		}, m))
	}

	persons, err := All(m)
	require.NoError(t, err)
	names := make([]string, 0, len(persons))
	for _, p := range persons {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Jeffrey Sinclair", "Londo Mollari", "Suzan Ivanova"}, names)

	reversed := []*Person{persons[2], persons[1], persons[0]}
	Sort(reversed)
	assert.Equal(t, persons, reversed)
	assert.True(t, Less(&Person{Name: "delenn"}, &Person{Name: "Kosh"}))
	assert.False(t, Less(&Person{Name: "Kosh"}, &Person{Name: "kosh"}))
}

func TestRename(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	created := createSinclair(t, m)

	sinclair, err := GetByName("Jeffrey Sinclair", m)
	require.NoError(t, err)
	require.NoError(t, sinclair.SaveChanges(func(p *Person) {
		p.Name = "John Sheridan"
		p.Notes = "The one."
	}, m))

	_, err = GetByName("Jeffrey Sinclair", m)
	require.ErrorIs(t, err, database.ErrNotFound)

	sheridan, err := GetByName("John Sheridan", m)
	require.NoError(t, err)
	assert.Equal(t, sinclair.Key(), sheridan.Key())
	assert.Equal(t, "The one.", sheridan.Notes)
	assert.Equal(t, "John Sheridan", created.Name, "existing handles must see the change")
}

func TestDelete(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	created := createSinclair(t, m)

	require.NoError(t, created.Delete(m))
	_, err := GetByName("Jeffrey Sinclair", m)
	require.ErrorIs(t, err, database.ErrNotFound)
	_, err = GetByID(created.ID, m)
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestDeleteAll(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	for range 3 {
		_, err := New(m)
		require.NoError(t, err)
	}
	count, err := Count(m)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, DeleteAll(m))
	persons, err := All(m)
	require.NoError(t, err)
	assert.Empty(t, persons)
}

func TestSandboxed(t *testing.T) {
	t.Parallel()

	sandbox := newManager(t)
	other := newManager(t)

	created := createSinclair(t, sandbox)
	_, err := GetByName("Jeffrey Sinclair", other)
	require.ErrorIs(t, err, database.ErrNotFound)

	persons := Store().Using(sandbox)
	got, err := persons.Get(nil)
	require.NoError(t, err)
	assert.Same(t, created, got)

	require.NoError(t, sandbox.Save(context.Background()))
}

func TestDefaultManager(t *testing.T) { //nolint:paralleltest // Modifies the process-wide default.
	_, err := New()
	require.ErrorIs(t, err, database.ErrNoManager)

	m := newManager(t)
	database.SetDefault(m)
	t.Cleanup(func() {
		database.SetDefault(nil)
	})

	p, err := New()
	require.NoError(t, err)
	got, err := GetByID(p.ID)
	require.NoError(t, err)
	assert.Same(t, p, got)
}
