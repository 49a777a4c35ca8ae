package store

import (
	"fmt"
	"strings"
)

// The query builder: pure translation from caller-supplied criteria to SQL
// fragments plus a positional parameter list. Nothing here executes; every
// function is deterministic and side-effect-free.

// Cond is one filter condition: column, comparison operator, comparand.
// The comparand is stringified before binding; SQLite column affinity
// converts it back for typed comparisons.
type Cond struct {
	Column string
	Op     string
	Value  any
}

// QueryOption configures a read, page read or CSV export.
type QueryOption func(*queryOpts)

type queryOpts struct {
	fields  []string
	groups  []string
	orders  []string
	conds   []Cond
	outPath string
	suffix  string
}

func buildOpts(opts []QueryOption) queryOpts {
	var o queryOpts
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Where adds one filter condition, e.g. Where("host", "=", "10.0.0.2").
// Conditions are AND-combined in the order given.
func Where(column, op string, value any) QueryOption {
	return func(o *queryOpts) {
		o.conds = append(o.conds, Cond{Column: column, Op: op, Value: value})
	}
}

// Fields narrows the projection to the given columns. Callers narrowing the
// projection must use the raw-row facade variants, since object decoding
// assumes the full column order.
func Fields(cols ...string) QueryOption {
	return func(o *queryOpts) { o.fields = append(o.fields, cols...) }
}

// GroupBy adds a GROUP BY over the given columns.
func GroupBy(cols ...string) QueryOption {
	return func(o *queryOpts) { o.groups = append(o.groups, cols...) }
}

// OrderBy adds an ORDER BY over the given columns.
func OrderBy(cols ...string) QueryOption {
	return func(o *queryOpts) { o.orders = append(o.orders, cols...) }
}

// ToPath directs a CSV export to an explicit file instead of the derived
// default path.
func ToPath(path string) QueryOption {
	return func(o *queryOpts) { o.outPath = path }
}

// Suffix appends a suffix to the derived CSV file name,
// e.g. requests_run1.csv.
func Suffix(suffix string) QueryOption {
	return func(o *queryOpts) { o.suffix = suffix }
}

func (o queryOpts) wildcard() bool {
	return len(o.fields) == 0 || (len(o.fields) == 1 && o.fields[0] == "*")
}

// whereClause compiles conditions to " WHERE a = ? AND b < ?" plus the
// stringified positional parameters. Empty input compiles to an empty
// fragment.
func whereClause(conds []Cond) (string, []any) {
	if len(conds) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(conds))
	params := make([]any, 0, len(conds))
	for _, c := range conds {
		parts = append(parts, fmt.Sprintf("%s %s ?", c.Column, c.Op))
		params = append(params, stringify(c.Value))
	}
	return " WHERE " + strings.Join(parts, " AND "), params
}

// fieldsClause compiles a projection; no fields (or a lone "*") means all
// columns.
func fieldsClause(fields []string) string {
	if len(fields) == 0 || (len(fields) == 1 && fields[0] == "*") {
		return "*"
	}
	return strings.Join(fields, ", ")
}

func groupsClause(groups []string) string {
	if len(groups) == 0 {
		return ""
	}
	return " GROUP BY " + strings.Join(groups, ", ")
}

func ordersClause(orders []string) string {
	if len(orders) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(orders, ", ")
}

// placeholders returns "(?, ?, ...)" with n markers.
func placeholders(n int) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('?')
	}
	b.WriteByte(')')
	return b.String()
}

// stringify renders a filter comparand for binding. Pointers bind their
// pointee (nil binds NULL) so encoded tuple values can be reused as
// identifying-field comparands.
func stringify(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case *float64:
		if t == nil {
			return nil
		}
		return fmt.Sprint(*t)
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(v)
	}
}
