package storable

import (
	"github.com/safing/portstore/database"
	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
)

// Repository provides typed persistence for one entity type.
type Repository[T record.Record] interface {
	Create(init func(T)) (T, error)
	Get(filter query.Filter) (T, error)
	GetAll(filter query.Filter) ([]T, error)
	GetCount(filter query.Filter) (int, error)
	SaveChanges(item T, mutator func(T)) error
	Delete(item T) error
	DeleteAll(filter query.Filter) error
	Truncate() error
}

// Using returns a repository bound to the given manager.
func (d *Descriptor[E, T]) Using(m *database.Manager) Repository[T] {
	return &boundRepository[E, T]{
		d: d,
		m: m,
	}
}

type boundRepository[E any, T database.Entity[E]] struct {
	d *Descriptor[E, T]
	m *database.Manager
}

func (r *boundRepository[E, T]) Create(init func(T)) (T, error) {
	return r.d.Create(init, r.m)
}

func (r *boundRepository[E, T]) Get(filter query.Filter) (T, error) {
	return r.d.Get(filter, r.m)
}

func (r *boundRepository[E, T]) GetAll(filter query.Filter) ([]T, error) {
	return r.d.GetAll(filter, r.m)
}

func (r *boundRepository[E, T]) GetCount(filter query.Filter) (int, error) {
	return r.d.GetCount(filter, r.m)
}

func (r *boundRepository[E, T]) SaveChanges(item T, mutator func(T)) error {
	return r.d.SaveChanges(item, mutator, r.m)
}

func (r *boundRepository[E, T]) Delete(item T) error {
	return r.d.Delete(item, r.m)
}

func (r *boundRepository[E, T]) DeleteAll(filter query.Filter) error {
	return r.d.DeleteAll(filter, r.m)
}

func (r *boundRepository[E, T]) Truncate() error {
	return r.d.Truncate(r.m)
}
