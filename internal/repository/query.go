package repository

const (
	// DefaultPaginationLimit is the number of products returned when no limit is given.
	DefaultPaginationLimit = 50
	maxPaginationLimit     = 100

	IDField        QueryField = "id"
	CategoryField  QueryField = "category"
	CreatedAtField QueryField = "created_at"
)

// Query describes a product listing: exact-match filters plus offset pagination.
type Query struct {
	Values map[QueryField]string

	Skip  int
	Limit int
}

type QueryField string

func NewQuery() *Query {
	return &Query{
		Values: map[QueryField]string{},
		Limit:  DefaultPaginationLimit,
	}
}

func (q *Query) With(field QueryField, val string) *Query {
	q.Values[field] = val
	return q
}

// ApplyPagination clamps skip to >= 0 and limit to [1, 100], falling back
// to DefaultPaginationLimit when limit is not positive.
func (q *Query) ApplyPagination(skip, limit int) *Query {
	q.Skip = max(0, skip)

	queryLimit := DefaultPaginationLimit
	if limit > 0 {
		queryLimit = min(maxPaginationLimit, limit)
	}
	q.Limit = queryLimit
	return q
}

// EffectiveLimit returns the limit stores should apply.
func (q Query) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultPaginationLimit
	}
	return min(maxPaginationLimit, q.Limit)
}
