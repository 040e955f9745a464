package accessor

import (
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"
)

// InvalidValueTypeError describes an error when trying to set a value
// of an invalid type to a field.
type InvalidValueTypeError struct {
	FieldName string
	FieldKind string
	ValueKind string
}

func (ivte *InvalidValueTypeError) Error() string {
	return fmt.Sprintf("tried to set field %s (%s) to a %s value", ivte.FieldName, ivte.FieldKind, ivte.ValueKind)
}

func newInvalidJSONValueTypeError(key string, field gjson.Result, value interface{}) *InvalidValueTypeError {
	return &InvalidValueTypeError{
		FieldName: key,
		FieldKind: field.Type.String(),
		ValueKind: reflect.ValueOf(value).Kind().String(),
	}
}

func checkJSONValueType(result gjson.Result, key string, value interface{}) error {
	switch value.(type) {
	case string:
		if result.Type != gjson.String {
			return newInvalidJSONValueTypeError(key, result, value)
		}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		if result.Type != gjson.Number {
			return newInvalidJSONValueTypeError(key, result, value)
		}
	case bool:
		if result.Type != gjson.True && result.Type != gjson.False {
			return newInvalidJSONValueTypeError(key, result, value)
		}
	}
	return nil
}
