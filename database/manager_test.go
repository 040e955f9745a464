package database

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safing/portstore/database/migration"
	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/formats/dsd"
)

type migratorFunc func(ctx context.Context, location string) error

func (fn migratorFunc) Migrate(ctx context.Context, location string) error {
	return fn(ctx, location)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	opts := Options{StoreName: "test", InMemory: true}
	opts.applyDefaults()
	assert.Equal(t, InMemoryStorageType, opts.StorageType)
	assert.Equal(t, dsd.DefaultSerializationFormat, opts.Format)
	assert.Equal(t, DefaultWriteTimeout, opts.WriteTimeout)
	assert.Equal(t, DefaultWriteQueueSize, opts.WriteQueueSize)
	require.NoError(t, opts.Validate())

	opts = Options{StoreName: "test"}
	opts.applyDefaults()
	assert.Equal(t, DefaultStorageType, opts.StorageType)

	for name, opts := range map[string]Options{
		"store name":   {StoreName: "Not Valid"},
		"storage type": {StoreName: "test", StorageType: "nope"},
		"format":       {StoreName: "test", Format: dsd.SerializationFormat(1)},
		"cache size":   {StoreName: "test", CacheSize: -1},
	} {
		assert.Error(t, opts.Validate(), name)
	}
}

func TestStartupErrors(t *testing.T) {
	t.Parallel()

	_, err := New(Options{StoreName: "test", StorageType: "nope", InMemory: true})
	var startupErr *StartupError
	require.ErrorAs(t, err, &startupErr)
	assert.Equal(t, "validate options", startupErr.Op)
	require.ErrorIs(t, err, ErrInvalidStorageType)

	failing := errors.New("schema too new")
	_, err = New(Options{
		StoreName: "test",
		InMemory:  true,
		Migrator: migratorFunc(func(context.Context, string) error {
			return failing
		}),
	})
	require.ErrorAs(t, err, &startupErr)
	assert.Equal(t, "migrate", startupErr.Op)
	require.ErrorIs(t, err, failing)

	// The data root is a file, so the store directory cannot be created.
	root := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(root, nil, 0o600))
	_, err = New(Options{StoreName: "test", DataRoot: root})
	require.ErrorAs(t, err, &startupErr)
	assert.Equal(t, "resolve location", startupErr.Op)
}

func TestMigratorRunsBeforeOpen(t *testing.T) {
	t.Parallel()

	var applied []string
	reg := migration.New("test")
	require.NoError(t, reg.Add(migration.Migration{
		Description: "initial",
		Version:     "v1.0.0",
		MigrateFunc: func(_ context.Context, location string) error {
			applied = append(applied, location)
			return nil
		},
	}))

	root := t.TempDir()
	m, err := New(Options{StoreName: "migrated", DataRoot: root, Migrator: reg})
	require.NoError(t, err)
	require.NoError(t, m.Close())

	location := StoreLocation(root, "migrated", DefaultStorageType)
	assert.Equal(t, []string{location}, applied)
	assert.FileExists(t, filepath.Join(location, migration.StateFileName))

	// Already applied steps are not run again.
	m, err = New(Options{StoreName: "migrated", DataRoot: root, Migrator: reg})
	require.NoError(t, err)
	require.NoError(t, m.Close())
	assert.Len(t, applied, 1)
}

func TestDurableReopen(t *testing.T) {
	t.Parallel()

	for _, storageType := range []string{"bbolt", "badger", "sqlite", "fstree"} {
		t.Run(storageType, func(t *testing.T) {
			t.Parallel()

			opts := Options{
				StoreName:   "durable",
				StorageType: storageType,
				DataRoot:    t.TempDir(),
				Format:      dsd.CBOR,
			}
			m, err := New(opts)
			require.NoError(t, err)
			assert.Equal(t, StoreLocation(opts.DataRoot, "durable", storageType), m.Location())

			created := createEntity(t, m, "Michael Garibaldi", 5)
			gone := createEntity(t, m, "Alfred Bester", 1)
			require.NoError(t, DeleteOne(m, gone))
			require.NoError(t, m.Save(context.Background()))
			require.NoError(t, m.Close())

			m, err = New(opts)
			require.NoError(t, err)
			defer func() {
				require.NoError(t, m.Close())
			}()

			all, err := GetAll[testEntity](m, testStorage, nil)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, created.Key(), all[0].Key())
			assert.Equal(t, "Michael Garibaldi", all[0].Name)
			assert.Equal(t, 5, all[0].Count)
			assert.Equal(t, created.Meta().Created, all[0].Meta().Created)
		})
	}
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	first := createEntity(t, m, "Vir Cotto", 1)

	res := m.Submit(func(tx *WriteTx) error {
		second := &testEntity{Name: "Na'Toth"}
		second.SetKey(first.StorageName() + "/second")
		if err := tx.Put(second); err != nil {
			return err
		}
		tx.Delete(first.Key())

		if _, err := tx.Get(first.Key()); !errors.Is(err, ErrNotFound) {
			return errors.New("deleted record still visible")
		}
		staged, err := tx.Query(query.New(testStorage + "/"))
		if err != nil {
			return err
		}
		if len(staged) != 1 || staged[0].Key() != second.Key() {
			return errors.New("unexpected transaction view")
		}
		return nil
	})
	require.NoError(t, res.Wait(context.Background()))

	all, err := GetAll[testEntity](m, testStorage, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Na'Toth", all[0].Name)
}

func TestFailedWriteDiscardsChanges(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	item := createEntity(t, m, "Lyta Alexander", 1)

	failing := errors.New("rejected")
	err := SaveChanges(m, item, func(e *testEntity) {
		e.Name = "changed"
	})
	require.NoError(t, err)

	res := m.Submit(func(tx *WriteTx) error {
		tx.Delete(item.Key())
		return failing
	})
	require.ErrorIs(t, res.Wait(context.Background()), failing)

	err = SaveChanges(m, item, func(*testEntity) {
		panic("boom")
	})
	require.ErrorIs(t, err, ErrWritePanic)

	got, err := Get[testEntity](m, item.Key())
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Name)

	// The writer is still alive.
	createEntity(t, m, "Stephen Franklin", 2)
}

func TestWriteTimeout(t *testing.T) {
	t.Parallel()

	m, err := New(Options{StoreName: "slow", InMemory: true, WriteTimeout: 50 * time.Millisecond})
	require.NoError(t, err)

	release := make(chan struct{})
	m.Submit(func(*WriteTx) error {
		<-release
		return nil
	})

	_, err = CreateOne[testEntity](m, testStorage, func(e *testEntity) {
		e.Name = "late"
	})
	require.ErrorIs(t, err, ErrTimeout)

	pending := CreateOneAsync[testEntity](m, testStorage, func(e *testEntity) {
		e.Name = "later"
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = pending.Wait(ctx)
	require.ErrorIs(t, err, ErrTimeout)

	// Timed out writes are not cancelled.
	close(release)
	created, err := pending.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "later", created.Name)

	count, err := GetCount(m, testStorage, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, m.Close())
}

func TestClose(t *testing.T) {
	t.Parallel()

	m, err := NewInMemory("closing")
	require.NoError(t, err)
	assert.Equal(t, "closing", m.Name())
	assert.Empty(t, m.Location())

	// Queued writes are finished before closing.
	pending := CreateOneAsync[testEntity](m, testStorage, nil)
	require.NoError(t, m.Close())
	<-pending.Done()
	assert.True(t, m.IsClosed())

	require.NoError(t, m.Close())

	_, err = CreateOne[testEntity](m, testStorage, nil)
	require.ErrorIs(t, err, ErrShuttingDown)
	_, err = GetAll[testEntity](m, testStorage, nil)
	require.ErrorIs(t, err, ErrShuttingDown)
	require.ErrorIs(t, m.Submit(func(*WriteTx) error { return nil }).Err(), ErrShuttingDown)
}

func TestDefaultManager(t *testing.T) { //nolint:paralleltest // Modifies the process-wide default.
	m, err := NewInMemory("default")
	require.NoError(t, err)

	SetDefault(m)
	assert.Same(t, m, Default())

	require.NoError(t, m.Close())
	assert.Nil(t, Default(), "a closed manager must not stay the default")

	other := newTestManager(t)
	SetDefault(other)
	SetDefault(nil)
	assert.Nil(t, Default())
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	m, err := NewInMemory("metrics")
	require.NoError(t, err)
	defer func() {
		_ = m.Close()
	}()

	createEntity(t, m, "Ta'Lon", 1)
	_, err = GetOne[testEntity](m, testStorage, byName("nobody"))
	require.ErrorIs(t, err, ErrNotFound)

	var buf bytes.Buffer
	m.WritePrometheus(&buf)
	out := buf.String()
	assert.Contains(t, out, `portstore_writes_total{store="metrics",op="create"} 1`)
	assert.Contains(t, out, `portstore_not_found_total{store="metrics"} 1`)
	assert.Contains(t, out, `portstore_write_queue_length{store="metrics"} 0`)
}
