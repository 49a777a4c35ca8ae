package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cosnet-io/cosnet/internal/model"
)

// The facade surface used by protocol handlers and reporting consumers.
// Every method here submits exactly one operation (plus, for object reads of
// requests, the nested enrichment reads issued by the decoder) and converts
// failures to the coarse bool/nil contract.

// Insert persists rec as one row in its table. Returns true if submission
// succeeded; per the commit-coalescing policy this does not guarantee the
// row survives a crash before the next drain.
func (s *Store) Insert(rec model.Record) bool {
	if err := s.insert(rec); err != nil {
		s.logError("insert", err)
		return false
	}
	return true
}

func (s *Store) insert(rec model.Record) error {
	sh, err := shapeOf(rec)
	if err != nil {
		return newError(KindValidation, "insert", err)
	}
	d := descriptors[sh]
	vals, err := d.encode(rec)
	if err != nil {
		return newError(KindValidation, "insert", err)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		d.table, strings.Join(d.columns, ", "), placeholders(len(d.columns)))
	_, err = s.submit(stmt, vals, false)
	return err
}

// Update rewrites the row identified by idFields (default: "id") compared
// with equality against rec's encoded values. Returns true if submission
// succeeded.
func (s *Store) Update(rec model.Record, idFields ...string) bool {
	if err := s.update(rec, idFields); err != nil {
		s.logError("update", err)
		return false
	}
	return true
}

func (s *Store) update(rec model.Record, idFields []string) error {
	sh, err := shapeOf(rec)
	if err != nil {
		return newError(KindValidation, "update", err)
	}
	d := descriptors[sh]
	vals, err := d.encode(rec)
	if err != nil {
		return newError(KindValidation, "update", err)
	}

	if len(idFields) == 0 {
		idFields = []string{"id"}
	}
	conds := make([]Cond, 0, len(idFields))
	for _, field := range idFields {
		idx := columnIndex(d.columns, field)
		if idx < 0 {
			return newError(KindValidation, "update",
				fmt.Errorf("%s has no column %q", d.table, field))
		}
		conds = append(conds, Cond{Column: field, Op: "=", Value: vals[idx]})
	}
	where, params := whereClause(conds)

	sets := make([]string, len(d.columns))
	for i, col := range d.columns {
		sets[i] = col + " = ?"
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s%s",
		d.table, strings.Join(sets, ", "), where)
	_, err = s.submit(stmt, append(vals, params...), false)
	return err
}

// Select reads rows of the shape and decodes them into domain records. A nil
// return means the operation failed; an empty slice means it matched
// nothing. Narrowed projections must use SelectRows instead.
func (s *Store) Select(sh Shape, opts ...QueryOption) []model.Record {
	recs, err := s.selectObjects(sh, buildOpts(opts))
	if err != nil {
		s.logError("select", err)
		return nil
	}
	return recs
}

// SelectRows reads raw positional rows without decoding, for narrowed
// projections, grouped reads and exports. Nil means the operation failed.
func (s *Store) SelectRows(sh Shape, opts ...QueryOption) [][]any {
	rows, err := s.selectRaw(sh, buildOpts(opts))
	if err != nil {
		s.logError("select", err)
		return nil
	}
	return rows
}

// SelectPage reads one page of decoded records: page numbers start at 1 and
// pageSize rows are returned at most. Ordering is made stable with a rowid
// tiebreaker. Nil means the operation failed.
func (s *Store) SelectPage(sh Shape, page, pageSize int, opts ...QueryOption) []model.Record {
	o := buildOpts(opts)
	rows, err := s.selectPageRaw(sh, page, pageSize, o)
	if err != nil {
		s.logError("select_page", err)
		return nil
	}
	recs, err := s.decodeRows(sh, o, rows)
	if err != nil {
		s.logError("select_page", err)
		return nil
	}
	return recs
}

// SelectPageRows is the raw-row variant of SelectPage.
func (s *Store) SelectPageRows(sh Shape, page, pageSize int, opts ...QueryOption) [][]any {
	rows, err := s.selectPageRaw(sh, page, pageSize, buildOpts(opts))
	if err != nil {
		s.logError("select_page", err)
		return nil
	}
	return rows
}

func (s *Store) selectObjects(sh Shape, o queryOpts) ([]model.Record, error) {
	rows, err := s.selectRaw(sh, o)
	if err != nil {
		return nil, err
	}
	return s.decodeRows(sh, o, rows)
}

func (s *Store) selectRaw(sh Shape, o queryOpts) ([][]any, error) {
	if !sh.valid() {
		return nil, newError(KindValidation, "select", fmt.Errorf("invalid shape %d", int(sh)))
	}
	where, params := whereClause(o.conds)
	stmt := fmt.Sprintf("SELECT %s FROM %s%s%s%s",
		fieldsClause(o.fields), descriptors[sh].table,
		where, groupsClause(o.groups), ordersClause(o.orders))

	op, err := s.submit(stmt, params, true)
	if err != nil {
		return nil, err
	}
	if op.err != nil {
		return nil, op.err
	}
	return op.rows, nil
}

func (s *Store) selectPageRaw(sh Shape, page, pageSize int, o queryOpts) ([][]any, error) {
	if !sh.valid() {
		return nil, newError(KindValidation, "select_page", fmt.Errorf("invalid shape %d", int(sh)))
	}
	if page < 1 || pageSize < 1 {
		return nil, newError(KindValidation, "select_page",
			fmt.Errorf("page %d, page size %d: both must be >= 1", page, pageSize))
	}
	stmt, params := pageStatement(sh, page, pageSize, o)
	op, err := s.submit(stmt, params, true)
	if err != nil {
		return nil, err
	}
	if op.err != nil {
		return nil, op.err
	}
	return op.rows, nil
}

// decodeRows runs raw rows through the shape's decoder. Decoding assumes the
// full fixed column order, so narrowed projections are rejected here rather
// than producing silently misaligned objects.
func (s *Store) decodeRows(sh Shape, o queryOpts, rows [][]any) ([]model.Record, error) {
	if !o.wildcard() {
		return nil, newError(KindValidation, "select",
			fmt.Errorf("object decoding requires the full column set; use the raw-row variant"))
	}
	d := descriptors[sh]
	recs := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := d.decode(s, row)
		if err != nil {
			return nil, newError(KindValidation, "decode", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func columnIndex(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

func (s *Store) logError(op string, err error) {
	kind := ErrorKind("unknown")
	var se *StoreError
	if errors.As(err, &se) {
		kind = se.Kind
	}
	s.logger.Error("facade call failed", "op", op, "kind", kind, "err", err)
}
