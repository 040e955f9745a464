package record

import (
	"time"

	"github.com/safing/portstore/formats/varint"
)

// Meta holds metadata about a record.
type Meta struct {
	Created  int64 `json:"c,omitempty"`
	Modified int64 `json:"m,omitempty"`
	Deleted  int64 `json:"d,omitempty"`
}

// Update updates the internal meta states and should be called before writing the record to the database.
func (m *Meta) Update() {
	now := time.Now().Unix()
	m.Modified = now
	if m.Created == 0 {
		m.Created = now
	}
}

// Reset resets all metadata.
func (m *Meta) Reset() {
	m.Created = 0
	m.Modified = 0
	m.Deleted = 0
}

// Delete marks the record as deleted.
func (m *Meta) Delete() {
	m.Deleted = time.Now().Unix()
}

// IsDeleted returns whether the record is deleted.
func (m *Meta) IsDeleted() bool {
	return m.Deleted > 0
}

// CheckValidity checks whether the database record is valid.
func (m *Meta) CheckValidity() (valid bool) {
	return m != nil && m.Deleted <= 0
}

// Duplicate returns a new copy of Meta.
func (m *Meta) Duplicate() *Meta {
	return &Meta{
		Created:  m.Created,
		Modified: m.Modified,
		Deleted:  m.Deleted,
	}
}

// MarshalBinary packs the metadata into a compact byte slice.
func (m *Meta) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 30)
	buf = append(buf, varint.Pack64(uint64(m.Created))...)
	buf = append(buf, varint.Pack64(uint64(m.Modified))...)
	buf = append(buf, varint.Pack64(uint64(m.Deleted))...)
	return buf, nil
}

// UnmarshalBinary unpacks metadata packed by MarshalBinary.
func (m *Meta) UnmarshalBinary(data []byte) error {
	var offset int
	for _, field := range []*int64{&m.Created, &m.Modified, &m.Deleted} {
		v, n, err := varint.Unpack64(data[offset:])
		if err != nil {
			return err
		}
		*field = int64(v)
		offset += n
	}
	return nil
}
