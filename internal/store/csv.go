package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// AsCSV serializes the (optionally filtered and projected) table of the
// shape to a CSV file: one header row of the resolved column names, then all
// data rows. The file goes to the ToPath option when given, otherwise to
// <exportDir>/<table><suffix>.csv. Returns false if the underlying select or
// any file operation failed.
func (s *Store) AsCSV(sh Shape, opts ...QueryOption) bool {
	if err := s.exportCSV(sh, buildOpts(opts)); err != nil {
		s.logError("as_csv", err)
		return false
	}
	return true
}

func (s *Store) exportCSV(sh Shape, o queryOpts) error {
	if !sh.valid() {
		return newError(KindValidation, "as_csv", fmt.Errorf("invalid shape %d", int(sh)))
	}

	rows, err := s.selectRaw(sh, queryOpts{fields: o.fields, conds: o.conds})
	if err != nil {
		return err
	}

	header := o.fields
	if o.wildcard() {
		header = sh.Columns()
	}

	path := o.outPath
	if path == "" {
		path = filepath.Join(s.exportDir, descriptors[sh].table+o.suffix+".csv")
	}
	f, err := os.Create(path)
	if err != nil {
		return newError(KindIO, "as_csv", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return newError(KindIO, "as_csv", err)
	}
	record := make([]string, len(header))
	for _, row := range rows {
		if len(row) != len(header) {
			return newError(KindValidation, "as_csv",
				fmt.Errorf("row has %d values, header has %d", len(row), len(header)))
		}
		for i, v := range row {
			record[i] = cellString(v)
		}
		if err := w.Write(record); err != nil {
			return newError(KindIO, "as_csv", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return newError(KindIO, "as_csv", err)
	}
	if err := f.Close(); err != nil {
		return newError(KindIO, "as_csv", err)
	}
	return nil
}

// cellString stringifies one driver value for CSV output. NULL becomes the
// empty cell.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}
