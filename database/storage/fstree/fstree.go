/*
Package fstree provides a dead simple file-based storage backend: every record
is kept in its own file at <location>/<storage name>/<id>.

It is meant for testing and for inspecting stored records with regular tools.
Batches are applied file by file, so a crash during Apply may leave a batch
partially applied.
*/
package fstree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/safing/portstore/database/iterator"
	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
	"github.com/safing/portstore/database/storage"
	"github.com/safing/portstore/utils"
)

const (
	defaultFileMode = os.FileMode(0o600)
	defaultDirMode  = os.FileMode(0o700)
)

// FSTree database storage.
type FSTree struct {
	name     string
	basePath string
}

func init() {
	_ = storage.Register("fstree", NewFSTree)
}

// NewFSTree returns a (new) FSTree database.
func NewFSTree(name, location string) (storage.Interface, error) {
	basePath, err := filepath.Abs(location)
	if err != nil {
		return nil, fmt.Errorf("fstree: failed to validate path %s: %w", location, err)
	}
	if err := utils.EnsureDirectory(basePath, defaultDirMode); err != nil {
		return nil, fmt.Errorf("fstree: %w", err)
	}

	return &FSTree{
		name:     name,
		basePath: basePath,
	}, nil
}

func (fst *FSTree) buildFilePath(key string) (string, error) {
	storageName, id := record.ParseKey(key)
	if !record.ValidStorageName(storageName) || id == "" {
		return "", fmt.Errorf("%w: %s", storage.ErrInvalidKey, key)
	}

	dstPath := filepath.Join(fst.basePath, storageName, id) // Join also calls Clean()
	if filepath.Dir(dstPath) != filepath.Join(fst.basePath, storageName) {
		return "", fmt.Errorf("%w: key integrity check failed, compiled path is %s", storage.ErrInvalidKey, dstPath)
	}
	return dstPath, nil
}

// Get returns a database record.
func (fst *FSTree) Get(key string) (record.Record, error) {
	dstPath, err := fst.buildFilePath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(dstPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("fstree: failed to read file %s: %w", dstPath, err)
	}

	wrapper, err := record.NewRawWrapper(key, data)
	if err != nil {
		return nil, err
	}
	if !wrapper.Meta().CheckValidity() {
		return nil, storage.ErrNotFound
	}
	return wrapper, nil
}

// Put stores a record in the database.
func (fst *FSTree) Put(r record.Record) (record.Record, error) {
	batch := storage.NewBatch()
	if err := batch.Put(r); err != nil {
		return nil, err
	}
	if err := fst.Apply(batch); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete deletes a record from the database.
func (fst *FSTree) Delete(key string) error {
	dstPath, err := fst.buildFilePath(key)
	if err != nil {
		return err
	}

	err = os.Remove(dstPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("fstree: could not delete %s: %w", dstPath, err)
	}
	return nil
}

// Apply writes and removes the files of all entries of the batch.
func (fst *FSTree) Apply(batch *storage.Batch) error {
	for _, entry := range batch.Entries() {
		if entry.IsDelete() {
			if err := fst.Delete(entry.Key); err != nil {
				return err
			}
			continue
		}

		dstPath, err := fst.buildFilePath(entry.Key)
		if err != nil {
			return err
		}
		if err := utils.EnsureDirectory(filepath.Dir(dstPath), defaultDirMode); err != nil {
			return fmt.Errorf("fstree: %w", err)
		}
		if err := utils.WriteFileAtomic(dstPath, entry.Value, defaultFileMode); err != nil {
			return fmt.Errorf("fstree: could not write file %s: %w", dstPath, err)
		}
	}
	return nil
}

// Query returns a an iterator for the supplied query.
func (fst *FSTree) Query(q *query.Query) (*iterator.Iterator, error) {
	_, err := q.Check()
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	queryIter := iterator.New()

	go fst.queryExecutor(filepath.Join(fst.basePath, q.StorageName()), queryIter, q)
	return queryIter, nil
}

func (fst *FSTree) queryExecutor(dir string, queryIter *iterator.Iterator, q *query.Query) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
	}

	for _, entry := range entries {
		// skip temporary files of interrupted writes
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			if errors.Is(readErr, fs.ErrNotExist) {
				continue
			}
			err = fmt.Errorf("fstree: failed to read file %s: %w", path, readErr)
			break
		}

		var wrapper *record.Wrapper
		wrapper, err = storage.WrapIfMatches(q, q.DatabaseKeyPrefix()+entry.Name(), data)
		if err != nil {
			err = fmt.Errorf("fstree: failed to load file %s: %w", path, err)
			break
		}
		if wrapper == nil {
			continue
		}

		var ok bool
		ok, err = queryIter.Send(wrapper)
		if !ok {
			break
		}
	}

	queryIter.Finish(err)
}

// ReadOnly returns whether the database is read only.
func (fst *FSTree) ReadOnly() bool {
	return false
}

// Maintain runs a light maintenance operation on the database.
func (fst *FSTree) Maintain(_ context.Context) error {
	return nil
}

// Shutdown shuts down the database.
func (fst *FSTree) Shutdown() error {
	return nil
}
