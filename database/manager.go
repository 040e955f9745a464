package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/tevino/abool"

	"github.com/safing/portstore/database/storage"
	"github.com/safing/portstore/log"

	// Register storage backends.
	_ "github.com/safing/portstore/database/storage/badger"
	_ "github.com/safing/portstore/database/storage/bbolt"
	_ "github.com/safing/portstore/database/storage/fstree"
	_ "github.com/safing/portstore/database/storage/hashmap"
	_ "github.com/safing/portstore/database/storage/sqlite"
)

// Manager is a persistence manager for a single store.
type Manager struct {
	opts     Options
	location string

	controller *Controller
	readCtx    *readContext
	metrics    *managerMetrics

	queue      chan *writeRequest
	submitLock sync.RWMutex
	closed     *abool.AtomicBool
	writerDone chan struct{}
}

// New creates a Manager: it resolves the store location, runs the migrator,
// opens the storage and starts the writer.
func New(opts Options) (*Manager, error) {
	opts.applyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, &StartupError{Op: "validate options", Err: err}
	}

	location, err := getLocation(&opts)
	if err != nil {
		return nil, &StartupError{Op: "resolve location", Err: err}
	}

	if opts.Migrator != nil {
		if err := opts.Migrator.Migrate(context.Background(), location); err != nil {
			return nil, &StartupError{Op: "migrate", Err: err}
		}
	}

	storageInt, err := storage.StartDatabase(opts.StoreName, opts.StorageType, location)
	if err != nil {
		return nil, &StartupError{Op: "start storage", Err: err}
	}

	m := &Manager{
		opts:       opts,
		location:   location,
		controller: newController(storageInt),
		readCtx:    newReadContext(opts.CacheSize),
		queue:      make(chan *writeRequest, opts.WriteQueueSize),
		closed:     abool.NewBool(false),
		writerDone: make(chan struct{}),
	}
	m.metrics = newManagerMetrics(opts.StoreName, func() int {
		return len(m.queue)
	})

	go m.writer()

	if opts.InMemory {
		log.Debugf("database: started in-memory store %s", opts.StoreName)
	} else {
		log.Infof("database: started store %s (%s) at %s", opts.StoreName, opts.StorageType, location)
	}
	return m, nil
}

// NewInMemory creates a Manager for a fresh in-memory store.
func NewInMemory(name string) (*Manager, error) {
	return New(Options{
		StoreName: name,
		InMemory:  true,
	})
}

// Name returns the name of the store.
func (m *Manager) Name() string {
	return m.opts.StoreName
}

// Location returns the directory of the store, or an empty string for in-memory stores.
func (m *Manager) Location() string {
	return m.location
}

// Options returns the effective options of the manager.
func (m *Manager) Options() Options {
	return m.opts
}

// Save waits for all previously submitted writes and runs storage maintenance.
func (m *Manager) Save(ctx context.Context) error {
	if err := m.submit(opFlush, func(*WriteTx) error { return nil }).Wait(ctx); err != nil {
		return err
	}

	if err := m.controller.Maintain(ctx); err != nil {
		log.Warningf("database: %s: maintenance failed: %s", m.opts.StoreName, err)
		return fmt.Errorf("maintenance failed: %w", err)
	}
	return nil
}

// Close stops accepting writes, finishes all queued writes and shuts down the storage.
func (m *Manager) Close() error {
	m.submitLock.Lock()
	if !m.closed.SetToIf(false, true) {
		m.submitLock.Unlock()
		return nil
	}
	close(m.queue)
	m.submitLock.Unlock()

	<-m.writerDone

	var result *multierror.Error
	if err := m.controller.Maintain(context.Background()); err != nil {
		result = multierror.Append(result, fmt.Errorf("final maintenance: %w", err))
	}
	if err := m.controller.Shutdown(); err != nil {
		result = multierror.Append(result, fmt.Errorf("storage shutdown: %w", err))
	}
	m.readCtx.purge()

	// Do not leave a closed manager as the default.
	defaultManager.CompareAndSwap(m, nil)

	if err := result.ErrorOrNil(); err != nil {
		log.Errorf("database: %s: failed to close: %s", m.opts.StoreName, err)
		return err
	}
	log.Debugf("database: %s: closed", m.opts.StoreName)
	return nil
}

// IsClosed returns whether the manager was closed.
func (m *Manager) IsClosed() bool {
	return m.closed.IsSet()
}
