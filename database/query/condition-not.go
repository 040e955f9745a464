package query

import (
	"fmt"

	"github.com/safing/portstore/database/accessor"
)

// Not negates the supplied condition.
func Not(c Condition) Condition {
	return &notCond{
		notC: c,
	}
}

type notCond struct {
	notC Condition
}

func (c *notCond) complies(acc accessor.Accessor) bool {
	return !c.notC.complies(acc)
}

func (c *notCond) check() error {
	return c.notC.check()
}

func (c *notCond) string() string {
	return fmt.Sprintf("not %s", c.notC.string())
}
