package storage

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// A Factory creates a new database of it's type.
type Factory func(name, location string) (Interface, error)

var (
	storages     = make(map[string]Factory)
	storagesLock sync.Mutex
)

// Register registers a new storage type.
func Register(name string, factory Factory) error {
	storagesLock.Lock()
	defer storagesLock.Unlock()

	_, ok := storages[name]
	if ok {
		return errors.New("factory for this type already exists")
	}

	storages[name] = factory
	return nil
}

// StartDatabase starts a new database with the given name and storageType at location.
func StartDatabase(name, storageType, location string) (Interface, error) {
	storagesLock.Lock()
	factory, ok := storages[storageType]
	storagesLock.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, storageType)
	}

	return factory(name, location)
}

// IsRegistered returns whether a storage type with the given name exists.
func IsRegistered(storageType string) bool {
	storagesLock.Lock()
	defer storagesLock.Unlock()

	_, ok := storages[storageType]
	return ok
}

// RegisteredTypes returns the names of all registered storage types.
func RegisteredTypes() []string {
	storagesLock.Lock()
	defer storagesLock.Unlock()

	names := make([]string, 0, len(storages))
	for name := range storages {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
