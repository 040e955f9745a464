package hashmap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safing/portstore/database/storage"
	"github.com/safing/portstore/database/storage/storagetest"
)

func TestHashMap(t *testing.T) {
	t.Parallel()

	storagetest.Run(t, func(t *testing.T) storage.Interface {
		t.Helper()

		db, err := NewHashMap("test", "")
		require.NoError(t, err)
		return db
	})
}
