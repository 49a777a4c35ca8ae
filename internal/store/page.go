package store

import "fmt"

// Keyset pagination. Instead of a linear OFFSET scan, page N excludes the
// rowids of the first (N-1)*size rows under the requested ordering and takes
// the next size rows under the same ordering.
//
// The requested ordering gets an explicit rowid tiebreaker, in both the
// exclusion subquery and the outer query, so that pages are stable under
// orderings with ties: concatenating all pages yields exactly the rows of the
// unpaged select, no duplicates, no omissions.

// pageOrder returns the ordering used by both the exclusion subquery and the
// outer page query.
func pageOrder(orders []string) string {
	return ordersClause(append(append([]string{}, orders...), "rowid"))
}

// pageExclusion builds the "rowid NOT IN (...)" fragment excluding the rows
// of all previous pages. Page 1 has an exclusion limit of 0: nothing is
// excluded.
func pageExclusion(table string, page, pageSize int, orders []string) string {
	return fmt.Sprintf("rowid NOT IN (SELECT rowid FROM %s%s LIMIT %d)",
		table, pageOrder(orders), (page-1)*pageSize)
}

// pageStatement assembles the full page query. Filter conditions and the
// pagination exclusion are AND-combined.
func pageStatement(sh Shape, page, pageSize int, o queryOpts) (string, []any) {
	table := descriptors[sh].table
	where, params := whereClause(o.conds)
	if where == "" {
		where = " WHERE "
	} else {
		where += " AND "
	}
	where += pageExclusion(table, page, pageSize, o.orders)

	stmt := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT %d",
		fieldsClause(o.fields), table, where, pageOrder(o.orders), pageSize)
	return stmt, params
}
