package iterator

import (
	"errors"
	"sync"
	"time"

	"github.com/tevino/abool"

	"github.com/safing/portstore/database/record"
)

// ErrTimeout is returned when the consumer does not accept a record in time.
var ErrTimeout = errors.New("query timeout")

// SendTimeout is how long a storage waits for the consumer to accept the next record.
var SendTimeout = 1 * time.Second

// Iterator defines the iterator structure.
type Iterator struct {
	Next chan record.Record
	Done chan struct{}

	errLock    sync.Mutex
	err        error
	doneClosed *abool.AtomicBool
}

// New creates a new Iterator.
func New() *Iterator {
	return &Iterator{
		Next:       make(chan record.Record, 10),
		Done:       make(chan struct{}),
		doneClosed: abool.NewBool(false),
	}
}

// Send delivers a record to the consumer. It returns false if the
// iterator was cancelled and ErrTimeout if the consumer stalled.
func (it *Iterator) Send(r record.Record) (bool, error) {
	select {
	case <-it.Done:
		return false, nil
	case it.Next <- r:
		return true, nil
	default:
		select {
		case <-it.Done:
			return false, nil
		case it.Next <- r:
			return true, nil
		case <-time.After(SendTimeout):
			return false, ErrTimeout
		}
	}
}

// Finish is called by the storage to signal the end of the query results.
func (it *Iterator) Finish(err error) {
	it.errLock.Lock()
	it.err = err
	it.errLock.Unlock()

	close(it.Next)
	if it.doneClosed.SetToIf(false, true) {
		close(it.Done)
	}
}

// Cancel is called by the iteration consumer to cancel the running query.
func (it *Iterator) Cancel() {
	if it.doneClosed.SetToIf(false, true) {
		close(it.Done)
	}
}

// Err returns the iterator error, if exists. It must only be called after Next was closed.
func (it *Iterator) Err() error {
	it.errLock.Lock()
	defer it.errLock.Unlock()

	return it.err
}

// Drain reads all remaining records and returns them along with the final error.
func (it *Iterator) Drain() ([]record.Record, error) {
	var records []record.Record
	for r := range it.Next {
		records = append(records, r)
	}
	return records, it.Err()
}
