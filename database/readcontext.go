package database

import (
	"errors"
	"reflect"
	"sync"

	"github.com/bluele/gcache"

	"github.com/safing/portstore/database/record"
)

// readContext hands out live record handles, at most one per identity
// as long as the handle is cached.
type readContext struct {
	lock  sync.Mutex
	cache gcache.Cache
}

func newReadContext(size int) *readContext {
	var cache gcache.Cache
	if size > 0 {
		cache = gcache.New(size).LRU().Build()
	} else {
		cache = gcache.New(0).Simple().Build()
	}
	return &readContext{
		cache: cache,
	}
}

func (rc *readContext) lookup(key string) (record.Record, bool) {
	v, err := rc.cache.Get(key)
	if err != nil {
		return nil, false
	}
	r, ok := v.(record.Record)
	return r, ok
}

// resolve merges the stored record into the live handle for its identity,
// creating and registering a new handle with newRecord if there is none.
func (rc *readContext) resolve(stored record.Record, newRecord func() record.Record, accept func(record.Record) bool) (record.Record, error) {
	rc.lock.Lock()
	defer rc.lock.Unlock()

	if live, ok := rc.lookup(stored.Key()); ok && accept(live) {
		if err := merge(stored, live); err != nil {
			return nil, err
		}
		return live, nil
	}

	fresh := newRecord()
	if err := record.Unwrap(stored, fresh); err != nil {
		return nil, err
	}
	// Handles of a different Go type for the same identity are not replaced.
	if _, ok := rc.lookup(stored.Key()); !ok {
		_ = rc.cache.Set(stored.Key(), fresh)
	}
	return fresh, nil
}

// committed merges the committed state into the live handle, if any.
// A live handle of another Go type than source is dropped instead.
func (rc *readContext) committed(stored, source record.Record) error {
	rc.lock.Lock()
	defer rc.lock.Unlock()

	live, ok := rc.lookup(stored.Key())
	if !ok {
		return nil
	}
	if source != nil && !source.IsWrapped() && reflect.TypeOf(live) != reflect.TypeOf(source) {
		rc.cache.Remove(stored.Key())
		return nil
	}
	return merge(stored, live)
}

// evict drops the live handle of a deleted identity.
func (rc *readContext) evict(key string) {
	rc.lock.Lock()
	defer rc.lock.Unlock()

	rc.cache.Remove(key)
}

func (rc *readContext) purge() {
	rc.lock.Lock()
	defer rc.lock.Unlock()

	rc.cache.Purge()
}

// merge replaces the values of target with the stored state, under the target's lock.
func merge(stored, target record.Record) error {
	if stored == target {
		return nil
	}
	if !stored.IsWrapped() {
		return errors.New("can only merge wrapped records")
	}

	dst := reflect.ValueOf(target)
	if dst.Kind() != reflect.Pointer || dst.Elem().Kind() != reflect.Struct {
		target.Lock()
		defer target.Unlock()
		return record.Unwrap(stored, target)
	}

	// Decode into a fresh value first, so that fields absent from the
	// stored data are reset instead of keeping stale values.
	fresh, ok := reflect.New(dst.Elem().Type()).Interface().(record.Record)
	if !ok {
		return ErrTypeMismatch
	}
	if err := record.Unwrap(stored, fresh); err != nil {
		return err
	}

	target.Lock()
	defer target.Unlock()

	copyFields(dst.Elem(), reflect.ValueOf(fresh).Elem())
	target.SetMeta(fresh.Meta())
	return nil
}

var (
	baseType   = reflect.TypeOf(record.Base{})
	lockerType = reflect.TypeOf((*sync.Locker)(nil)).Elem()
)

// copyFields copies all exported data fields, skipping record.Base and locks.
func copyFields(dst, src reflect.Value) {
	for i := range dst.NumField() {
		field := dst.Type().Field(i)
		switch {
		case !field.IsExported():
		case field.Type == baseType:
		case reflect.PointerTo(field.Type).Implements(lockerType):
		default:
			dst.Field(i).Set(src.Field(i))
		}
	}
}
