// Package person is an example entity stored with the storable package.
package person

import (
	"slices"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/safing/portstore/database"
	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
	"github.com/safing/portstore/database/storable"
)

// StorageName is the storage persons are kept in.
const StorageName = "person"

// DefaultName is the name of newly created persons.
const DefaultName = "Unknown"

// Person is a person record.
type Person struct {
	record.Base
	sync.Mutex

	ID           string `json:"id"`
	Name         string `json:"name"`
	Profession   string `json:"profession,omitempty"`
	Organization string `json:"organization,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

var store = storable.New[Person](StorageName)

// Store returns the descriptor of the person storage.
func Store() *storable.Descriptor[Person, *Person] {
	return store
}

// New creates a new person with a random ID and the default name.
func New(managers ...*database.Manager) (*Person, error) {
	return Create(nil, managers...)
}

// Create creates a new person. The init function is applied after the
// defaults have been set.
func Create(init func(*Person), managers ...*database.Manager) (*Person, error) {
	return store.Create(func(p *Person) {
		p.ID = uuid.Must(uuid.NewV4()).String()
		p.Name = DefaultName
		if init != nil {
			init(p)
		}
	}, managers...)
}

// GetByID returns the person with the given ID.
func GetByID(id string, managers ...*database.Manager) (*Person, error) {
	return store.Get(func(q *query.Query) {
		q.Where(query.Where("id", query.SameAs, id))
	}, managers...)
}

// GetByName returns the first person with the given name.
func GetByName(name string, managers ...*database.Manager) (*Person, error) {
	return store.Get(func(q *query.Query) {
		q.Where(query.Where("name", query.SameAs, name))
	}, managers...)
}

// All returns all persons, ordered by name.
func All(managers ...*database.Manager) ([]*Person, error) {
	return store.GetAll(func(q *query.Query) {
		q.OrderBy("name")
	}, managers...)
}

// Count returns the number of persons.
func Count(managers ...*database.Manager) (int, error) {
	return store.GetCount(nil, managers...)
}

// DeleteAll deletes all persons.
func DeleteAll(managers ...*database.Manager) error {
	return store.Truncate(managers...)
}

// SaveChanges applies the mutator to the stored person and updates p.
func (p *Person) SaveChanges(mutator func(*Person), managers ...*database.Manager) error {
	return store.SaveChanges(p, mutator, managers...)
}

// Delete deletes the person.
func (p *Person) Delete(managers ...*database.Manager) error {
	return store.Delete(p, managers...)
}

// Less reports whether a sorts before b by name, ignoring case.
func Less(a, b *Person) bool {
	return query.NewCollator().CompareString(a.Name, b.Name) < 0
}

// Sort sorts persons by name, ignoring case.
func Sort(persons []*Person) {
	collator := query.NewCollator()
	slices.SortStableFunc(persons, func(a, b *Person) int {
		return collator.CompareString(a.Name, b.Name)
	})
}
