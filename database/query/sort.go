package query

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/safing/portstore/database/accessor"
)

// NewCollator returns a case-insensitive, locale-aware string collator.
// Collators are not safe for concurrent use.
func NewCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}

// Sorter compares records according to the ordering of a query.
type Sorter struct {
	orderBy  []orderClause
	collator *collate.Collator
}

// NewSorter returns a Sorter for the query's ordering.
func (q *Query) NewSorter() *Sorter {
	return &Sorter{
		orderBy:  q.orderBy,
		collator: NewCollator(),
	}
}

// Compare returns -1, 0 or 1 depending on whether a sorts before, equal to or after b.
func (s *Sorter) Compare(a, b accessor.Accessor) int {
	for _, clause := range s.orderBy {
		result := s.compareKey(clause.key, a, b)
		if clause.descending {
			result = -result
		}
		if result != 0 {
			return result
		}
	}
	return 0
}

func (s *Sorter) compareKey(key string, a, b accessor.Accessor) int {
	if aStr, ok := a.GetString(key); ok {
		if bStr, ok := b.GetString(key); ok {
			return s.collator.CompareString(aStr, bStr)
		}
	}
	if aFloat, ok := a.GetFloat(key); ok {
		if bFloat, ok := b.GetFloat(key); ok {
			switch {
			case aFloat < bFloat:
				return -1
			case aFloat > bFloat:
				return 1
			default:
				return 0
			}
		}
	}
	if aBool, ok := a.GetBool(key); ok {
		if bBool, ok := b.GetBool(key); ok {
			switch {
			case aBool == bBool:
				return 0
			case !aBool:
				return -1
			default:
				return 1
			}
		}
	}

	// Records missing the key sort first.
	aExists, bExists := a.Exists(key), b.Exists(key)
	switch {
	case aExists == bExists:
		return 0
	case !aExists:
		return -1
	default:
		return 1
	}
}
