package record

import (
	"github.com/safing/portstore/database/accessor"
	"github.com/safing/portstore/formats/dsd"
	"github.com/safing/portstore/formats/varint"
)

const recordVersion = 1

// Base provides a quick way to comply with the Record interface.
type Base struct {
	key  string
	meta *Meta
}

// Key returns the key of the database record.
func (b *Base) Key() string {
	return b.key
}

// KeyIsSet returns true if the database key is set.
func (b *Base) KeyIsSet() bool {
	return b.key != ""
}

// StorageName returns the name of the storage the record belongs to.
func (b *Base) StorageName() string {
	storageName, _ := ParseKey(b.key)
	return storageName
}

// KeyID returns the storage-unique part of the key.
func (b *Base) KeyID() string {
	_, id := ParseKey(b.key)
	return id
}

// SetKey sets the key on the database record. It should only be called after loading the record.
func (b *Base) SetKey(key string) {
	b.key = key
}

// Meta returns the metadata object for this record.
func (b *Base) Meta() *Meta {
	return b.meta
}

// SetMeta sets the metadata on the database record, it should only be called after loading the record.
func (b *Base) SetMeta(meta *Meta) {
	b.meta = meta
}

// Marshal marshals the object, without the database key or metadata. It returns nil if the record is deleted.
func (b *Base) Marshal(self Record, format dsd.SerializationFormat) ([]byte, error) {
	if b.Meta() == nil {
		return nil, ErrMissingMeta
	}

	if b.Meta().Deleted > 0 {
		return nil, nil
	}

	dumped, err := dsd.Dump(self, format)
	if err != nil {
		return nil, err
	}
	return dumped, nil
}

// MarshalRecord packs the object, including metadata, into a byte array for saving in a database.
func (b *Base) MarshalRecord(self Record) ([]byte, error) {
	return b.MarshalRecordAs(self, dsd.AUTO)
}

// MarshalRecordAs packs the object, including metadata, using the given serialization format.
func (b *Base) MarshalRecordAs(self Record, format dsd.SerializationFormat) ([]byte, error) {
	if b.Meta() == nil {
		return nil, ErrMissingMeta
	}

	dataSection, err := b.Marshal(self, format)
	if err != nil {
		return nil, err
	}
	return PackRecord(b.meta, dataSection)
}

// GetAccessor returns an accessor for this record, if available.
func (b *Base) GetAccessor(self Record) accessor.Accessor {
	data, err := dsd.DumpWithoutIdentifier(self, dsd.JSON)
	if err != nil {
		return nil
	}
	return accessor.NewJSONBytesAccessor(&data)
}

// IsWrapped returns whether the record is a Wrapper.
func (b *Base) IsWrapped() bool {
	return false
}

// PackRecord frames the metadata and the data section for storage.
func PackRecord(meta *Meta, dataSection []byte) ([]byte, error) {
	metaSection, err := meta.MarshalBinary()
	if err != nil {
		return nil, err
	}

	packed := make([]byte, 0, 2+len(metaSection)+len(dataSection))
	packed = append(packed, varint.Pack8(recordVersion)...)
	packed = varint.AppendBlock(packed, metaSection)
	packed = append(packed, dataSection...)
	return packed, nil
}
