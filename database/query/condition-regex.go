package query

import (
	"fmt"
	"regexp"

	"github.com/safing/portstore/database/accessor"
)

type regexCondition struct {
	key      string
	operator uint8
	regex    *regexp.Regexp
}

func newRegexCondition(key string, operator uint8, value interface{}) Condition {
	switch v := value.(type) {
	case string:
		r, err := regexp.Compile(v)
		if err != nil {
			return newErrorCondition(fmt.Errorf("could not compile regex %q: %w", v, err))
		}
		return &regexCondition{
			key:      key,
			operator: operator,
			regex:    r,
		}
	case *regexp.Regexp:
		return &regexCondition{
			key:      key,
			operator: operator,
			regex:    v,
		}
	default:
		return newErrorCondition(incompatibleValue(value, "regex"))
	}
}

func (c *regexCondition) complies(acc accessor.Accessor) bool {
	comp, ok := acc.GetString(c.key)
	if !ok {
		return false
	}

	switch c.operator {
	case Matches:
		return c.regex.MatchString(comp)
	default:
		return false
	}
}

func (c *regexCondition) check() error {
	return nil
}

func (c *regexCondition) string() string {
	return fmt.Sprintf("%s %s %s", escapeString(c.key), getOpName(c.operator), escapeString(c.regex.String()))
}
