package dsd

// dynamic structured data
// check here for some benchmarks: https://github.com/alecthomas/go_serialization_benchmarks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/safing/portstore/formats/varint"
)

// cborGenericDecoder decodes CBOR maps into map[string]interface{}, which
// keeps them compatible with encoding/json.
var cborGenericDecoder cbor.DecMode

func init() {
	var err error
	cborGenericDecoder, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Load loads an dsd structured data blob into the given interface.
func Load(data []byte, t interface{}) (SerializationFormat, error) {
	format, read, err := varint.Unpack8(data)
	if err != nil {
		return 0, err
	}
	if len(data) <= read {
		return 0, ErrNoMoreSpace
	}

	f := SerializationFormat(format)
	return f, LoadAsFormat(data[read:], f, t)
}

// LoadAsFormat loads a data blob into the interface using the specified format.
func LoadAsFormat(data []byte, format SerializationFormat, t interface{}) error {
	switch format {
	case JSON:
		return json.Unmarshal(data, t)
	case CBOR:
		if generic, ok := t.(*interface{}); ok {
			return cborGenericDecoder.Unmarshal(data, generic)
		}
		return cbor.Unmarshal(data, t)
	case MsgPack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		return dec.Decode(t)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
}

// Dump stores the interface as a dsd formatted data structure.
func Dump(t interface{}, format SerializationFormat) ([]byte, error) {
	data, err := DumpWithoutIdentifier(t, format)
	if err != nil {
		return nil, err
	}

	format, _ = format.ValidateSerializationFormat()
	return append(varint.Pack8(uint8(format)), data...), nil
}

// DumpWithoutIdentifier stores the interface as a data structure, without format identifier.
func DumpWithoutIdentifier(t interface{}, format SerializationFormat) ([]byte, error) {
	format, ok := format.ValidateSerializationFormat()
	if !ok {
		return nil, ErrIncompatibleFormat
	}

	switch format {
	case JSON:
		buf := bytes.NewBuffer(nil)
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return nil, err
		}
		// Strip trailing newline added by the encoder.
		return bytes.TrimRight(buf.Bytes(), "\n"), nil
	case CBOR:
		return cbor.Marshal(t)
	case MsgPack:
		buf := bytes.NewBuffer(nil)
		enc := msgpack.NewEncoder(buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(t); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
}

// ToJSON converts a data blob of the given format into plain JSON.
func ToJSON(data []byte, format SerializationFormat) ([]byte, error) {
	if format == JSON {
		return data, nil
	}

	var generic interface{}
	if err := LoadAsFormat(data, format, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}
