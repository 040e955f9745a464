package query

import (
	"fmt"

	"github.com/safing/portstore/database/accessor"
)

// invalidCondition stands in for a condition that could not be built.
// It matches nothing and fails the query check with its cause.
type invalidCondition struct {
	cause error
}

func newErrorCondition(cause error) *invalidCondition {
	return &invalidCondition{cause: cause}
}

func (c *invalidCondition) complies(accessor.Accessor) bool { return false }

func (c *invalidCondition) check() error { return c.cause }

func (c *invalidCondition) string() string {
	return fmt.Sprintf("[invalid: %s]", c.cause)
}
