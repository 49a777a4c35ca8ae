package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"
)

// seedSchema constrains the service-class seed document: a list of objects
// with an integer identity, a name, and optional numeric thresholds. JSON is
// a subset of CUE, so the raw document compiles directly and unifies against
// the definition.
const seedSchema = `
#CoS: {
	id:   int
	name: string
	max_response_time?:       number
	min_concurrent_users?:    number
	min_requests_per_second?: number
	min_bandwidth?:           number
	max_delay?:               number
	max_jitter?:              number
	max_loss_rate?:           number
	min_cpu?:                 number
	min_ram?:                 number
	min_disk?:                number
}
#Seed: [...#CoS]
`

// loadSeed upserts the service classes of a JSON seed document, insert-or-
// ignore on conflicting identity. Runs during bootstrap, before the
// dispatcher starts, so it executes directly on the connection. Any failure
// here is reported to Open, which logs and continues: a missing or invalid
// seed document never prevents startup.
func (s *Store) loadSeed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return newError(KindIO, "seed", err)
	}
	if err := validateSeed(raw); err != nil {
		return newError(KindValidation, "seed", err)
	}

	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return newError(KindValidation, "seed", err)
	}

	d := descriptors[ShapeCoS]
	stmt := fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES %s",
		d.table, strings.Join(d.columns, ", "), placeholders(len(d.columns)))

	for _, entry := range entries {
		vals := make([]any, len(d.columns))
		for i, col := range d.columns {
			v, ok := entry[col]
			if !ok {
				continue
			}
			switch col {
			case "id":
				// JSON numbers decode as float64; the identity column is
				// integer.
				if f, ok := v.(float64); ok {
					v = int64(f)
				}
			case "name":
				// Upsert-by-identity should not be defeated by Unicode
				// representation differences in seed names.
				if name, ok := v.(string); ok {
					v = norm.NFC.String(name)
				}
			}
			vals[i] = v
		}
		if _, err := s.db.Exec(stmt, vals...); err != nil {
			return newError(KindExecution, "seed", err)
		}
	}
	return nil
}

// validateSeed checks the document against the CUE schema before any row is
// written.
func validateSeed(raw []byte) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(seedSchema).LookupPath(cue.ParsePath("#Seed"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("seed schema: %w", err)
	}
	doc := ctx.CompileBytes(raw)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("parse seed document: %w", err)
	}
	if err := schema.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("seed document: %w", err)
	}
	return nil
}
