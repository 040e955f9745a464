package storage

import (
	"fmt"

	"github.com/safing/portstore/database/record"
	"github.com/safing/portstore/formats/dsd"
)

// Entry is a single change within a Batch. A nil Value deletes the key.
type Entry struct {
	Key   string
	Value []byte
}

// IsDelete returns whether the entry deletes its key.
func (e Entry) IsDelete() bool {
	return e.Value == nil
}

// Batch collects changes that are committed together.
type Batch struct {
	entries []Entry
	index   map[string]int
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{
		index: make(map[string]int),
	}
}

// Put marshals the record and adds it to the batch.
func (b *Batch) Put(r record.Record) error {
	if !r.KeyIsSet() {
		return ErrInvalidKey
	}

	data, err := r.MarshalRecord(r)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", r.Key(), err)
	}
	b.set(Entry{Key: r.Key(), Value: data})
	return nil
}

// PutRaw adds an already marshaled record to the batch.
func (b *Batch) PutRaw(key string, data []byte) {
	if data == nil {
		data = []byte{}
	}
	b.set(Entry{Key: key, Value: data})
}

// Delete adds the deletion of the key to the batch.
func (b *Batch) Delete(key string) {
	b.set(Entry{Key: key})
}

// A later change to the same key replaces the earlier one.
func (b *Batch) set(e Entry) {
	if i, ok := b.index[e.Key]; ok {
		b.entries[i] = e
		return
	}
	b.index[e.Key] = len(b.entries)
	b.entries = append(b.entries, e)
}

// Entries returns the changes in the order they were first added.
func (b *Batch) Entries() []Entry {
	return b.entries
}

// Len returns the number of keys changed by the batch.
func (b *Batch) Len() int {
	return len(b.entries)
}

// PutAs marshals the record in the given format and adds it to the batch.
func (b *Batch) PutAs(r record.Record, format dsd.SerializationFormat) error {
	if !r.KeyIsSet() {
		return ErrInvalidKey
	}

	data, err := r.Marshal(r, format)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", r.Key(), err)
	}
	packed, err := record.PackRecord(r.Meta(), data)
	if err != nil {
		return fmt.Errorf("failed to pack %s: %w", r.Key(), err)
	}
	b.set(Entry{Key: r.Key(), Value: packed})
	return nil
}
