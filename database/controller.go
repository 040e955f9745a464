package database

import (
	"context"
	"errors"
	"sync"

	"github.com/tevino/abool"

	"github.com/safing/portstore/database/iterator"
	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
	"github.com/safing/portstore/database/storage"
)

// A Controller guards a storage: reads proceed concurrently, commits are exclusive.
type Controller struct {
	storage storage.Interface

	readLock sync.RWMutex
	//  Lock: nobody may read (commit in progress)
	// RLock: concurrent reading

	shuttingDown *abool.AtomicBool
}

// newController creates a new controller for a storage.
func newController(storageInt storage.Interface) *Controller {
	return &Controller{
		storage:      storageInt,
		shuttingDown: abool.NewBool(false),
	}
}

// ReadOnly returns whether the storage is read only.
func (c *Controller) ReadOnly() bool {
	return c.storage.ReadOnly()
}

// Get return the record with the given key.
func (c *Controller) Get(key string) (record.Record, error) {
	if c.shuttingDown.IsSet() {
		return nil, ErrShuttingDown
	}

	c.readLock.RLock()
	defer c.readLock.RUnlock()

	r, err := c.storage.Get(key)
	if err != nil {
		// replace not found error
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !r.Meta().CheckValidity() {
		return nil, ErrNotFound
	}
	return r, nil
}

// Query executes the given query on the storage. The read lock is held until
// the iterator is done.
func (c *Controller) Query(q *query.Query) (*iterator.Iterator, error) {
	if c.shuttingDown.IsSet() {
		return nil, ErrShuttingDown
	}

	c.readLock.RLock()
	it, err := c.storage.Query(q)
	if err != nil {
		c.readLock.RUnlock()
		return nil, err
	}

	go c.readUnlockerAfterQuery(it)
	return it, nil
}

func (c *Controller) readUnlockerAfterQuery(it *iterator.Iterator) {
	<-it.Done
	c.readLock.RUnlock()
}

// Apply commits the batch. No read observes a partially applied batch.
func (c *Controller) Apply(batch *storage.Batch) error {
	if c.shuttingDown.IsSet() {
		return ErrShuttingDown
	}
	if c.ReadOnly() {
		return ErrReadOnly
	}
	if batch.Len() == 0 {
		return nil
	}

	c.readLock.Lock()
	defer c.readLock.Unlock()

	return c.storage.Apply(batch)
}

// Maintain runs the Maintain method on the storage.
func (c *Controller) Maintain(ctx context.Context) error {
	if c.shuttingDown.IsSet() {
		return ErrShuttingDown
	}

	c.readLock.RLock()
	defer c.readLock.RUnlock()

	return c.storage.Maintain(ctx)
}

// Shutdown shuts down the storage, after all running reads are finished.
func (c *Controller) Shutdown() error {
	if !c.shuttingDown.SetToIf(false, true) {
		return nil
	}

	c.readLock.Lock()
	defer c.readLock.Unlock()

	return c.storage.Shutdown()
}
