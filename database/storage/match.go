package storage

import (
	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/database/record"
)

// WrapIfMatches wraps a stored value and returns it if it is valid and matches the query.
// The value must not be modified by the caller afterwards.
func WrapIfMatches(q *query.Query, key string, value []byte) (*record.Wrapper, error) {
	if !q.MatchesKey(key) {
		return nil, nil
	}

	wrapper, err := record.NewRawWrapper(key, value)
	if err != nil {
		return nil, err
	}

	switch {
	case !wrapper.Meta().CheckValidity():
		return nil, nil
	case !q.MatchesRecord(wrapper):
		return nil, nil
	}
	return wrapper, nil
}
