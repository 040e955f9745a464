package storage

import (
	"context"

	"github.com/safing/portstore/database/iterator"
	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
)

// Interface defines the database storage API.
type Interface interface {
	// Primary Interface
	Get(key string) (record.Record, error)
	Put(r record.Record) (record.Record, error)
	Delete(key string) error
	Query(q *query.Query) (*iterator.Iterator, error)

	// Apply commits all entries of the batch atomically.
	Apply(batch *Batch) error

	// Information and Control
	ReadOnly() bool
	Maintain(ctx context.Context) error
	Shutdown() error
}
