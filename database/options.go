package database

import (
	"context"
	"fmt"
	"time"

	"github.com/safing/portstore/database/record"
	"github.com/safing/portstore/database/storage"
	"github.com/safing/portstore/formats/dsd"
)

// Defaults.
const (
	DefaultStorageType    = "bbolt"
	InMemoryStorageType   = "hashmap"
	DefaultWriteTimeout   = 10 * time.Second
	DefaultWriteQueueSize = 64
)

// Migrator prepares a store location before the store is opened.
// In-memory stores are migrated with an empty location.
type Migrator interface {
	Migrate(ctx context.Context, location string) error
}

// Options configure a Manager.
type Options struct {
	// StoreName identifies the store and names its directory.
	StoreName string
	// StorageType selects the storage backend. Defaults to bbolt, or hashmap when InMemory is set.
	StorageType string
	// InMemory keeps all data in memory only.
	InMemory bool
	// DataRoot is the directory holding all stores. Defaults to
	// the user config directory.
	DataRoot string

	// Format is the serialization format records are stored in.
	Format dsd.SerializationFormat
	// WriteTimeout bounds how long synchronous calls wait for their write.
	WriteTimeout time.Duration
	// WriteQueueSize is the number of writes that may be queued before submitting blocks.
	WriteQueueSize int
	// CacheSize limits the number of live handles in the read context.
	// Zero keeps every handle, so that there is never more than one per record.
	CacheSize int

	// Migrator, if set, is run before the store is opened.
	Migrator Migrator
}

func (o *Options) applyDefaults() {
	if o.StorageType == "" {
		if o.InMemory {
			o.StorageType = InMemoryStorageType
		} else {
			o.StorageType = DefaultStorageType
		}
	}
	if o.Format == dsd.AUTO {
		o.Format = dsd.DefaultSerializationFormat
	}
	if o.WriteTimeout == 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	if o.WriteQueueSize == 0 {
		o.WriteQueueSize = DefaultWriteQueueSize
	}
}

// Validate checks the options for errors.
func (o *Options) Validate() error {
	if !record.ValidStorageName(o.StoreName) {
		return fmt.Errorf("invalid store name %q: %w", o.StoreName, ErrInvalidStorageName)
	}
	if o.StorageType != "" && !storage.IsRegistered(o.StorageType) {
		return fmt.Errorf("%w: %s (available: %v)", ErrInvalidStorageType, o.StorageType, storage.RegisteredTypes())
	}
	if _, ok := o.Format.ValidateSerializationFormat(); !ok {
		return fmt.Errorf("invalid serialization format %d", o.Format)
	}
	if o.WriteTimeout < 0 {
		return fmt.Errorf("invalid write timeout %s", o.WriteTimeout)
	}
	if o.WriteQueueSize < 0 {
		return fmt.Errorf("invalid write queue size %d", o.WriteQueueSize)
	}
	if o.CacheSize < 0 {
		return fmt.Errorf("invalid cache size %d", o.CacheSize)
	}
	return nil
}
