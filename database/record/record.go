package record

import (
	"github.com/safing/portstore/database/accessor"
	"github.com/safing/portstore/formats/dsd"
)

// Record provides an interface for uniformally handling database records.
type Record interface {
	Key() string // person/2d3ad2c6-...
	KeyIsSet() bool
	StorageName() string // person
	KeyID() string       // 2d3ad2c6-...

	SetKey(key string)
	Meta() *Meta
	SetMeta(meta *Meta)

	Marshal(self Record, format dsd.SerializationFormat) ([]byte, error)
	MarshalRecord(self Record) ([]byte, error)
	GetAccessor(self Record) accessor.Accessor

	Lock()
	Unlock()

	IsWrapped() bool
}
