package bbolt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safing/portstore/database/storage"
	"github.com/safing/portstore/database/storage/storagetest"
)

func TestBBolt(t *testing.T) {
	t.Parallel()

	storagetest.Run(t, func(t *testing.T) storage.Interface {
		t.Helper()

		db, err := NewBBolt("test", t.TempDir())
		require.NoError(t, err)
		return db
	})
}

func TestBBoltReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db, err := NewBBolt("test", dir)
	require.NoError(t, err)

	a := storagetest.NewItem("test", "Suzan Ivanova", 2)
	_, err = db.Put(a)
	require.NoError(t, err)
	require.NoError(t, db.Shutdown())

	db, err = NewBBolt("test", dir)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, db.Shutdown())
	}()

	r, err := db.Get(a.Key())
	require.NoError(t, err)
	acc := r.GetAccessor(r)
	require.NotNil(t, acc)
	name, ok := acc.GetString("name")
	assert.True(t, ok)
	assert.Equal(t, "Suzan Ivanova", name)
}
