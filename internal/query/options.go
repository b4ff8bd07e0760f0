// Package query implements the stateless filter/paginate builder of
// §4.I: given a catalog handle and a map of URL-style filter parameters,
// compose a WHERE clause, ORDER BY and LIMIT/OFFSET, then run a COUNT
// and a SELECT. No caching; every call prepares its own statement.
package query

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Params is the raw filter/pagination map lifted from an HTTP request's
// query string (§6).
type Params map[string]string

func (p Params) str(key string) (string, bool) {
	v, ok := p[key]
	return v, ok && v != ""
}

func (p Params) int64(key string) (int64, bool) {
	v, ok := p.str(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	return n, err == nil
}

// Options accumulates WHERE clauses, bind values, an ORDER BY string and
// LIMIT/OFFSET, matching the teacher stack's builder idiom.
type Options struct {
	clauses []string
	values  []any
	order   string
	limit   *int64
	offset  *int64
}

// New returns an empty Options.
func New() *Options { return &Options{} }

// Filter adds a parameterless clause, e.g. "Node.parent_id IS NULL".
func (o *Options) Filter(clause string) {
	o.clauses = append(o.clauses, clause)
}

// FilterValue adds clause with one placeholder bound to value.
func (o *Options) FilterValue(clause string, value any) {
	o.clauses = append(o.clauses, clause)
	o.values = append(o.values, value)
}

// BindInt adds an equality filter on key if present and parseable.
func (o *Options) BindInt(p Params, key, clause string) {
	if n, ok := p.int64(key); ok {
		o.FilterValue(clause, n)
	}
}

// BindLike adds a case-insensitive LIKE filter on key if present,
// wrapping the value as "%value%".
func (o *Options) BindLike(p Params, key, clause string) {
	if v, ok := p.str(key); ok {
		o.FilterValue(clause, "%"+v+"%")
	}
}

// BindEqualStr adds an exact-match string filter on key if present.
func (o *Options) BindEqualStr(p Params, key, clause string) {
	if v, ok := p.str(key); ok {
		o.FilterValue(clause, v)
	}
}

// Search ORs a LIKE clause per column, all bound to the same "%value%".
// A no-op if the search parameter is absent (§4.I, §6).
func (o *Options) Search(p Params, columns ...string) {
	v, ok := p.str("search")
	if !ok {
		return
	}

	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col + " LIKE ?"
		o.values = append(o.values, "%"+v+"%")
	}
	o.clauses = append(o.clauses, "("+strings.Join(parts, " OR ")+")")
}

// OrderBy sets the single ORDER BY expression.
func (o *Options) OrderBy(expr string) { o.order = expr }

// BindRange reads limit/offset from p, as §6's list-endpoint parameters.
func (o *Options) BindRange(p Params) {
	if n, ok := p.int64("limit"); ok {
		o.limit = &n
	}
	if n, ok := p.int64("offset"); ok {
		o.offset = &n
	}
}

func (o *Options) whereSQL() string {
	if len(o.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(o.clauses, " AND ")
}

// Total runs a COUNT query against selectFrom (e.g. "SELECT COUNT(*) FROM Track") with this Options's WHERE clause.
func (o *Options) Total(db *sql.DB, selectFrom string) (int64, error) {
	var total int64
	err := db.QueryRow(selectFrom+o.whereSQL(), o.values...).Scan(&total)
	return total, errors.Wrap(err, "cannot count query results")
}

// Rows runs selectFrom with this Options's WHERE/ORDER BY/LIMIT/OFFSET
// applied and returns the resulting *sql.Rows. Callers must Close it.
func (o *Options) Rows(db *sql.DB, selectFrom string) (*sql.Rows, error) {
	sqlText := selectFrom + o.whereSQL()
	args := append([]any{}, o.values...)

	if o.order != "" {
		sqlText += " ORDER BY " + o.order
	}
	if o.limit != nil {
		sqlText += " LIMIT ?"
		args = append(args, *o.limit)
	}
	if o.offset != nil {
		sqlText += " OFFSET ?"
		args = append(args, *o.offset)
	}

	rows, err := db.Query(sqlText, args...)
	return rows, errors.Wrap(err, "cannot run query")
}
