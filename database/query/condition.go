package query

import (
	"fmt"

	"github.com/safing/portstore/database/accessor"
)

// Condition is an interface to provide a common api to all condition types.
type Condition interface {
	complies(acc accessor.Accessor) bool
	check() error
	string() string
}

// Where returns a condition to add to a query.
func Where(key string, operator uint8, value interface{}) Condition {
	switch operator {
	case Equals,
		GreaterThan,
		GreaterThanOrEqual,
		LessThan,
		LessThanOrEqual:
		return newIntCondition(key, operator, value)
	case FloatEquals,
		FloatGreaterThan,
		FloatGreaterThanOrEqual,
		FloatLessThan,
		FloatLessThanOrEqual:
		return newFloatCondition(key, operator, value)
	case SameAs,
		Contains,
		StartsWith,
		EndsWith:
		return newStringCondition(key, operator, value)
	case In:
		return newStringSliceCondition(key, operator, value)
	case Matches:
		return newRegexCondition(key, operator, value)
	case Is:
		return newBoolCondition(key, operator, value)
	case Exists:
		return newExistsCondition(key, operator)
	default:
		return newErrorCondition(&OperatorError{Operator: operator})
	}
}

func incompatibleValue(value interface{}, kind string) error {
	return fmt.Errorf("incompatible value %v for %s", value, kind)
}
