package query

import (
	"fmt"
	"strings"

	"github.com/safing/portstore/database/accessor"
	"github.com/safing/portstore/database/record"
)

// Example:
// q.New("person/").Where(
//   q.And(
//     q.Where("name", q.StartsWith, "J"),
//     q.Where("age", q.GreaterThan, 30),
//   ),
// ).OrderBy("name").Limit(10)

// Filter shapes a query. A nil Filter matches every record of a storage.
type Filter func(q *Query)

// Query contains a compiled query.
type Query struct {
	checked bool
	prefix  string
	where   Condition
	orderBy []orderClause
	limit   int
	offset  int
}

type orderClause struct {
	key        string
	descending bool
}

// New creates a new query with the supplied key prefix.
func New(prefix string) *Query {
	return &Query{
		prefix: prefix,
	}
}

// ForStorage creates a new query over all records of the given storage and applies the filter.
func ForStorage(storageName string, filter Filter) *Query {
	q := New(record.KeyPrefix(storageName))
	if filter != nil {
		filter(q)
	}
	return q
}

// Where adds filtering. Multiple calls are combined with a logical _AND_.
func (q *Query) Where(condition Condition) *Query {
	if q.where == nil {
		q.where = condition
	} else {
		q.where = And(q.where, condition)
	}
	q.checked = false
	return q
}

// Limit limits the number of returned results.
func (q *Query) Limit(limit int) *Query {
	q.limit = limit
	return q
}

// Offset sets the query offset.
func (q *Query) Offset(offset int) *Query {
	q.offset = offset
	return q
}

// OrderBy orders the results by the given key, ascending. Multiple calls add tie breakers.
func (q *Query) OrderBy(key string) *Query {
	q.orderBy = append(q.orderBy, orderClause{key: key})
	return q
}

// OrderByDesc orders the results by the given key, descending.
func (q *Query) OrderByDesc(key string) *Query {
	q.orderBy = append(q.orderBy, orderClause{key: key, descending: true})
	return q
}

// Check checks for errors in the query.
func (q *Query) Check() (*Query, error) {
	if q.checked {
		return q, nil
	}

	// check prefix
	storageName, _ := record.ParseKey(q.prefix)
	if !strings.HasSuffix(q.prefix, "/") || !record.ValidStorageName(storageName) {
		return nil, &PrefixError{Prefix: q.prefix}
	}

	// check condition
	if q.where != nil {
		err := q.where.check()
		if err != nil {
			return nil, err
		}
	} else {
		q.where = &noCond{}
	}

	// check ordering and window
	for _, clause := range q.orderBy {
		if clause.key == "" {
			return nil, conditionKeyError("order clause is missing a key")
		}
	}
	if q.limit < 0 {
		return nil, fmt.Errorf("invalid limit %d", q.limit)
	}
	if q.offset < 0 {
		return nil, fmt.Errorf("invalid offset %d", q.offset)
	}

	q.checked = true
	return q, nil
}

// MustBeValid checks for errors in the query and panics if there is an error.
func (q *Query) MustBeValid() *Query {
	_, err := q.Check()
	if err != nil {
		panic(err)
	}
	return q
}

// IsChecked returns whether they query was checked.
func (q *Query) IsChecked() bool {
	return q.checked
}

// DatabaseKeyPrefix returns the key prefix all matching records share.
func (q *Query) DatabaseKeyPrefix() string {
	return q.prefix
}

// StorageName returns the name of the storage the query addresses.
func (q *Query) StorageName() string {
	storageName, _ := record.ParseKey(q.prefix)
	return storageName
}

// GetLimit returns the result limit, 0 meaning unlimited.
func (q *Query) GetLimit() int {
	return q.limit
}

// GetOffset returns the number of results to skip.
func (q *Query) GetOffset() int {
	return q.offset
}

// HasOrdering returns whether the query orders its results.
func (q *Query) HasOrdering() bool {
	return len(q.orderBy) > 0
}

// MatchesKey checks whether the query matches the supplied database key.
func (q *Query) MatchesKey(dbKey string) bool {
	return strings.HasPrefix(dbKey, q.prefix)
}

// MatchesRecord checks whether the query matches the supplied database record (value only).
func (q *Query) MatchesRecord(r record.Record) bool {
	if q.where == nil {
		return true
	}

	acc := r.GetAccessor(r)
	if acc == nil {
		return false
	}
	return q.Matches(acc)
}

// Matches checks whether the query matches the supplied accessor (value only).
func (q *Query) Matches(acc accessor.Accessor) bool {
	if q.where == nil {
		return true
	}
	return q.where.complies(acc)
}

// Print returns the string representation of the query.
func (q *Query) Print() string {
	var where string
	if q.where != nil {
		where = q.where.string()
		if where != "" {
			if strings.HasPrefix(where, "(") {
				where = where[1 : len(where)-1]
			}
			where = fmt.Sprintf(" where %s", where)
		}
	}

	var orderBy string
	for i, clause := range q.orderBy {
		if i == 0 {
			orderBy = " orderby "
		} else {
			orderBy += ", "
		}
		orderBy += escapeString(clause.key)
		if clause.descending {
			orderBy += " desc"
		}
	}

	var limit string
	if q.limit > 0 {
		limit = fmt.Sprintf(" limit %d", q.limit)
	}

	var offset string
	if q.offset > 0 {
		offset = fmt.Sprintf(" offset %d", q.offset)
	}

	return fmt.Sprintf("query %s%s%s%s%s", q.prefix, where, orderBy, limit, offset)
}

func escapeString(token string) string {
	if token == "" || strings.ContainsAny(token, " \t\n\"(),") {
		return fmt.Sprintf("%q", token)
	}
	return token
}

// Window returns the slice bounds of the offset and limit applied to n ordered results.
func (q *Query) Window(n int) (start, end int) {
	start = min(q.offset, n)
	end = n
	if q.limit > 0 {
		end = min(start+q.limit, n)
	}
	return start, end
}
