// Package storable gives entity types typed persistence through a small
// static descriptor. An entity type declares its storage name once:
//
//	var people = storable.New[Person]("person")
//
// and then uses the descriptor for all operations. Every operation accepts
// optional managers; the first non-nil one is used, otherwise the
// descriptor's resolver and finally the process-wide default manager.
package storable

import (
	"fmt"

	"github.com/safing/portstore/database"
	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
)

// Option configures a Descriptor.
type Option func(*options)

type options struct {
	resolver func() *database.Manager
}

// WithManager sets a resolver for the manager used when no manager is passed
// explicitly. It is called on every operation.
func WithManager(resolver func() *database.Manager) Option {
	return func(o *options) {
		o.resolver = resolver
	}
}

// Descriptor describes how the entity type E is stored.
type Descriptor[E any, T database.Entity[E]] struct {
	storageName string
	resolver    func() *database.Manager
}

// New returns a descriptor for entities of type E kept in the given storage.
// It panics if the storage name is invalid.
func New[E any, T database.Entity[E]](storageName string, opts ...Option) *Descriptor[E, T] {
	if !record.ValidStorageName(storageName) {
		panic(fmt.Sprintf("storable: invalid storage name %q", storageName))
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Descriptor[E, T]{
		storageName: storageName,
		resolver:    o.resolver,
	}
}

// StorageName returns the name of the storage the entities are kept in.
func (d *Descriptor[E, T]) StorageName() string {
	return d.storageName
}

// Manager returns the manager an operation with the given managers would use.
func (d *Descriptor[E, T]) Manager(managers ...*database.Manager) (*database.Manager, error) {
	for _, m := range managers {
		if m != nil {
			return m, nil
		}
	}
	if d.resolver != nil {
		if m := d.resolver(); m != nil {
			return m, nil
		}
	}
	if m := database.Default(); m != nil {
		return m, nil
	}
	return nil, database.ErrNoManager
}

// Create creates a new entity, initialized by init.
func (d *Descriptor[E, T]) Create(init func(T), managers ...*database.Manager) (T, error) {
	m, err := d.Manager(managers...)
	if err != nil {
		return nil, err
	}
	return database.CreateOne[E, T](m, d.storageName, init)
}

// Get returns the first entity matching the filter.
func (d *Descriptor[E, T]) Get(filter query.Filter, managers ...*database.Manager) (T, error) {
	m, err := d.Manager(managers...)
	if err != nil {
		return nil, err
	}
	return database.GetOne[E, T](m, d.storageName, filter)
}

// GetAll returns all entities matching the filter.
func (d *Descriptor[E, T]) GetAll(filter query.Filter, managers ...*database.Manager) ([]T, error) {
	m, err := d.Manager(managers...)
	if err != nil {
		return nil, err
	}
	return database.GetAll[E, T](m, d.storageName, filter)
}

// GetCount returns the number of entities matching the filter.
func (d *Descriptor[E, T]) GetCount(filter query.Filter, managers ...*database.Manager) (int, error) {
	m, err := d.Manager(managers...)
	if err != nil {
		return 0, err
	}
	return database.GetCount(m, d.storageName, filter)
}

// DeleteAll deletes all entities matching the filter.
func (d *Descriptor[E, T]) DeleteAll(filter query.Filter, managers ...*database.Manager) error {
	m, err := d.Manager(managers...)
	if err != nil {
		return err
	}
	return database.DeleteAll(m, d.storageName, filter)
}

// Truncate deletes all entities.
func (d *Descriptor[E, T]) Truncate(managers ...*database.Manager) error {
	return d.DeleteAll(nil, managers...)
}

// SaveChanges applies the mutator to the stored entity and updates item.
func (d *Descriptor[E, T]) SaveChanges(item T, mutator func(T), managers ...*database.Manager) error {
	m, err := d.Manager(managers...)
	if err != nil {
		return err
	}
	return database.SaveChanges[E, T](m, item, mutator)
}

// Delete deletes the entity.
func (d *Descriptor[E, T]) Delete(item T, managers ...*database.Manager) error {
	m, err := d.Manager(managers...)
	if err != nil {
		return err
	}
	return database.DeleteOne(m, item)
}
