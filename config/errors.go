package config

import (
	"errors"
	"fmt"
)

// ErrUnsupportedType is returned for options that cannot be set from the environment.
var ErrUnsupportedType = errors.New("type not supported")

// InvalidValueError describes a validation error for an option value.
type InvalidValueError struct {
	Option string
	Value  interface{}
	Msg    string
}

func (ive *InvalidValueError) Error() string {
	msg := fmt.Sprintf("%s: invalid value %+v", ive.Option, ive.Value)
	if ive.Msg != "" {
		msg += ": " + ive.Msg
	}
	return msg
}

func newInvalidValueError(option string, value interface{}, msg string) *InvalidValueError {
	return &InvalidValueError{
		Option: option,
		Value:  value,
		Msg:    msg,
	}
}
