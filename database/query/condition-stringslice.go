package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/safing/portstore/database/accessor"
)

type stringSliceCondition struct {
	key      string
	operator uint8
	value    []string
}

func newStringSliceCondition(key string, operator uint8, value interface{}) Condition {
	switch v := value.(type) {
	case string:
		return &stringSliceCondition{
			key:      key,
			operator: operator,
			value:    strings.Split(v, ","),
		}
	case []string:
		return &stringSliceCondition{
			key:      key,
			operator: operator,
			value:    v,
		}
	default:
		return newErrorCondition(incompatibleValue(value, "[]string"))
	}
}

func (c *stringSliceCondition) complies(acc accessor.Accessor) bool {
	comp, ok := acc.GetString(c.key)
	if !ok {
		return false
	}

	switch c.operator {
	case In:
		return slices.Contains(c.value, comp)
	default:
		return false
	}
}

func (c *stringSliceCondition) check() error {
	if len(c.value) == 0 {
		return fmt.Errorf("in condition on %q has no values", c.key)
	}
	return nil
}

func (c *stringSliceCondition) string() string {
	return fmt.Sprintf("%s %s %s", escapeString(c.key), getOpName(c.operator), escapeString(strings.Join(c.value, ",")))
}
