package record

import (
	"fmt"
	"sync"

	"github.com/safing/portstore/database/accessor"
	"github.com/safing/portstore/formats/dsd"
	"github.com/safing/portstore/formats/varint"
)

// Wrapper wraps raw data and implements the Record interface.
type Wrapper struct {
	Base
	sync.Mutex

	Format dsd.SerializationFormat
	Data   []byte // includes the format identifier
}

// NewRawWrapper returns a record wrapper for the given data, as stored in a storage backend.
func NewRawWrapper(key string, data []byte) (*Wrapper, error) {
	version, offset, err := varint.Unpack8(data)
	if err != nil {
		return nil, err
	}
	if version != recordVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	metaSection, dataSection, err := varint.SplitBlock(data[offset:])
	if err != nil {
		return nil, fmt.Errorf("could not get meta section: %w", err)
	}

	newMeta := &Meta{}
	if err := newMeta.UnmarshalBinary(metaSection); err != nil {
		return nil, fmt.Errorf("could not unmarshal meta section: %w", err)
	}

	format := dsd.AUTO
	if len(dataSection) > 0 {
		f, _, err := varint.Unpack8(dataSection)
		if err != nil {
			return nil, fmt.Errorf("could not get dsd format: %w", err)
		}
		format = dsd.SerializationFormat(f)
	}

	return &Wrapper{
		Base: Base{
			key:  key,
			meta: newMeta,
		},
		Format: format,
		Data:   dataSection,
	}, nil
}

// NewWrapper returns a new record wrapper for the given data.
func NewWrapper(key string, meta *Meta, format dsd.SerializationFormat, data []byte) (*Wrapper, error) {
	if meta == nil {
		meta = &Meta{}
	}
	return &Wrapper{
		Base: Base{
			key:  key,
			meta: meta,
		},
		Format: format,
		Data:   append(varint.Pack8(uint8(format)), data...),
	}, nil
}

// Marshal marshals the object, without the database key or metadata.
func (w *Wrapper) Marshal(r Record, format dsd.SerializationFormat) ([]byte, error) {
	if w.Meta() == nil {
		return nil, ErrMissingMeta
	}

	if w.Meta().Deleted > 0 {
		return nil, nil
	}

	if format != dsd.AUTO && w.Format != format {
		return nil, ErrFormatMismatch
	}

	return w.Data, nil
}

// MarshalRecord packs the object, including metadata, into a byte array for saving in a database.
func (w *Wrapper) MarshalRecord(r Record) ([]byte, error) {
	w.Lock()
	defer w.Unlock()

	if w.Meta() == nil {
		return nil, ErrMissingMeta
	}

	var dataSection []byte
	if w.Meta().Deleted <= 0 {
		dataSection = w.Data
	}
	return PackRecord(w.meta, dataSection)
}

// IsWrapped returns whether the record is a Wrapper.
func (w *Wrapper) IsWrapped() bool {
	return true
}

// GetAccessor returns an accessor for this record, if available.
func (w *Wrapper) GetAccessor(self Record) accessor.Accessor {
	if len(w.Data) < 2 {
		return nil
	}

	data, err := dsd.ToJSON(w.Data[1:], w.Format)
	if err != nil {
		return nil
	}
	return accessor.NewJSONBytesAccessor(&data)
}

// Unwrap unwraps data into a record.
func Unwrap(wrapped, r Record) error {
	wrapper, ok := wrapped.(*Wrapper)
	if !ok {
		return fmt.Errorf("cannot unwrap %T", wrapped)
	}

	wrapper.Lock()
	defer wrapper.Unlock()

	if len(wrapper.Data) < 2 {
		return errEmptyData
	}

	if _, err := dsd.Load(wrapper.Data, r); err != nil {
		return fmt.Errorf("failed to unwrap %T: %w", r, err)
	}

	r.SetKey(wrapper.Key())
	r.SetMeta(wrapper.Meta().Duplicate())
	return nil
}

// IsEmpty reports whether the wrapper holds no data section, as is the case for deleted records.
func (w *Wrapper) IsEmpty() bool {
	return len(w.Data) < 2
}

