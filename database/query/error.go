package query

import "fmt"

type conditionKeyError string

func (key conditionKeyError) Error() string {
	return string(key)
}

// OperatorError is returned for unknown or unsupported operators.
type OperatorError struct {
	Operator uint8
}

func (oe *OperatorError) Error() string {
	return fmt.Sprintf("unknown or unsupported operator with ID %d", oe.Operator)
}

// PrefixError is returned when a query does not address a valid storage.
type PrefixError struct {
	Prefix string
}

func (pe *PrefixError) Error() string {
	return fmt.Sprintf("invalid query prefix %q", pe.Prefix)
}
