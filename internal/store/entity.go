package store

import (
	"fmt"
	"strconv"

	"github.com/cosnet-io/cosnet/internal/model"
)

// Shape tags one of the four persisted record kinds. The mapping registry is
// a fixed table of descriptors indexed by Shape; there is no string dispatch
// and no per-call reflection.
type Shape int

const (
	ShapeCoS Shape = iota
	ShapeRequest
	ShapeAttempt
	ShapeResponse
)

func (sh Shape) valid() bool { return sh >= ShapeCoS && sh <= ShapeResponse }

// Table returns the table name of the shape.
func (sh Shape) Table() string { return descriptors[sh].table }

// Columns returns a copy of the shape's ordered column list. The same list
// drives statement text, encoding and decoding, so it can never drift out of
// sync with the row layout.
func (sh Shape) Columns() []string {
	cols := descriptors[sh].columns
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

func (sh Shape) String() string {
	if sh.valid() {
		return descriptors[sh].table
	}
	return fmt.Sprintf("shape(%d)", int(sh))
}

// ParseShape resolves a table name to its shape tag. Used by the CLI.
func ParseShape(name string) (Shape, error) {
	for sh := ShapeCoS; sh <= ShapeResponse; sh++ {
		if descriptors[sh].table == name {
			return sh, nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", name)
}

// shapeOf maps a record to its shape tag.
func shapeOf(rec model.Record) (Shape, error) {
	switch rec.(type) {
	case *model.CoS:
		return ShapeCoS, nil
	case *model.Request:
		return ShapeRequest, nil
	case *model.Attempt:
		return ShapeAttempt, nil
	case *model.Response:
		return ShapeResponse, nil
	default:
		return 0, fmt.Errorf("unsupported record type %T", rec)
	}
}

// descriptor binds one shape to its table, ordered column list, encoder and
// decoder. encode produces the value tuple in exact column order; decode
// rebuilds one record from one positional row.
type descriptor struct {
	table   string
	columns []string
	encode  func(rec model.Record) ([]any, error)
	decode  func(s *Store, row []any) (model.Record, error)
}

// Populated in init: the decoders reference the table back (column names in
// diagnostics, nested facade reads), which a variable initializer would
// reject as an initialization cycle.
var descriptors [ShapeResponse + 1]descriptor

func init() {
	descriptors = [...]descriptor{
		ShapeCoS: {
			table: "cos",
			columns: []string{
				"id", "name", "max_response_time", "min_concurrent_users",
				"min_requests_per_second", "min_bandwidth", "max_delay",
				"max_jitter", "max_loss_rate", "min_cpu", "min_ram", "min_disk",
			},
			encode: encodeCoS,
			decode: decodeCoS,
		},
		ShapeRequest: {
			table: "requests",
			columns: []string{
				"id", "src", "cos_id", "data", "result", "host", "state",
				"hreq_at", "dres_at",
			},
			encode: encodeRequest,
			decode: decodeRequest,
		},
		ShapeAttempt: {
			table: "attempts",
			columns: []string{
				"req_id", "attempt_no", "host", "state", "hreq_at", "hres_at",
				"rres_at", "dres_at",
			},
			encode: encodeAttempt,
			decode: decodeAttempt,
		},
		ShapeResponse: {
			table: "responses",
			columns: []string{
				"req_id", "attempt_no", "host", "cpu", "ram", "disk", "timestamp",
			},
			encode: encodeResponse,
			decode: decodeResponse,
		},
	}
}

func encodeCoS(rec model.Record) ([]any, error) {
	c, ok := rec.(*model.CoS)
	if !ok {
		return nil, fmt.Errorf("expected *model.CoS, got %T", rec)
	}
	return []any{
		c.ID, c.Name,
		c.Specs.MaxResponseTime, c.Specs.MinConcurrentUsers,
		c.Specs.MinRequestsPerSecond, c.Specs.MinBandwidth,
		c.Specs.MaxDelay, c.Specs.MaxJitter, c.Specs.MaxLossRate,
		c.Specs.MinCPU, c.Specs.MinRAM, c.Specs.MinDisk,
	}, nil
}

func decodeCoS(_ *Store, row []any) (model.Record, error) {
	if len(row) != 12 {
		return nil, fmt.Errorf("cos row has %d columns, want 12", len(row))
	}
	id, err := colInt(row[0])
	if err != nil {
		return nil, fmt.Errorf("cos id: %w", err)
	}
	name, err := colString(row[1])
	if err != nil {
		return nil, fmt.Errorf("cos name: %w", err)
	}
	c := &model.CoS{ID: id, Name: name}
	// A NULL threshold stays absent; no defaults are applied on decode.
	dst := []**float64{
		&c.Specs.MaxResponseTime, &c.Specs.MinConcurrentUsers,
		&c.Specs.MinRequestsPerSecond, &c.Specs.MinBandwidth,
		&c.Specs.MaxDelay, &c.Specs.MaxJitter, &c.Specs.MaxLossRate,
		&c.Specs.MinCPU, &c.Specs.MinRAM, &c.Specs.MinDisk,
	}
	for i, d := range dst {
		p, err := colFloatPtr(row[2+i])
		if err != nil {
			return nil, fmt.Errorf("cos %s: %w", descriptors[ShapeCoS].columns[2+i], err)
		}
		*d = p
	}
	return c, nil
}

func encodeRequest(rec model.Record) ([]any, error) {
	r, ok := rec.(*model.Request)
	if !ok {
		return nil, fmt.Errorf("expected *model.Request, got %T", rec)
	}
	if r.CoS == nil {
		return nil, fmt.Errorf("request %s has no service class", r.ID)
	}
	// The source is persisted as a bare identifier even when it was passed
	// as a resolved node.
	return []any{
		r.ID, r.SrcID(), r.CoS.ID, r.Data, r.Result, nullIfEmpty(r.Host),
		int64(r.State), r.HreqAt, r.DresAt,
	}, nil
}

// decodeRequest enriches the stored row with its full service class and its
// owned attempts. Both lookups are new, independently queued operations: they
// run on the caller goroutine after the outer read was fulfilled, never
// inside the dispatcher, so they cannot deadlock against the outer call.
func decodeRequest(s *Store, row []any) (model.Record, error) {
	if len(row) != 9 {
		return nil, fmt.Errorf("request row has %d columns, want 9", len(row))
	}
	id, err := colString(row[0])
	if err != nil {
		return nil, fmt.Errorf("request id: %w", err)
	}
	src, err := colString(row[1])
	if err != nil {
		return nil, fmt.Errorf("request src: %w", err)
	}
	cosID, err := colInt(row[2])
	if err != nil {
		return nil, fmt.Errorf("request cos_id: %w", err)
	}

	cosRecs := s.Select(ShapeCoS, Where("id", "=", cosID))
	if cosRecs == nil {
		return nil, fmt.Errorf("request %s: service class %d lookup failed", id, cosID)
	}
	if len(cosRecs) == 0 {
		return nil, fmt.Errorf("request %s: service class %d not found", id, cosID)
	}
	cos := cosRecs[0].(*model.CoS)

	host, err := colString(row[5])
	if err != nil {
		return nil, fmt.Errorf("request host: %w", err)
	}
	state, err := colInt(row[6])
	if err != nil {
		return nil, fmt.Errorf("request state: %w", err)
	}
	hreqAt, err := colFloatPtr(row[7])
	if err != nil {
		return nil, fmt.Errorf("request hreq_at: %w", err)
	}
	dresAt, err := colFloatPtr(row[8])
	if err != nil {
		return nil, fmt.Errorf("request dres_at: %w", err)
	}

	r := &model.Request{
		ID:     id,
		Src:    src,
		CoS:    cos,
		Data:   colBytes(row[3]),
		Result: colBytes(row[4]),
		Host:   host,
		State:  model.State(state),
		HreqAt: hreqAt,
		DresAt: dresAt,
	}

	attRecs := s.Select(ShapeAttempt, Where("req_id", "=", id))
	if attRecs == nil {
		return nil, fmt.Errorf("request %s: attempts lookup failed", id)
	}
	attempts := make(map[int64]*model.Attempt, len(attRecs))
	for _, rec := range attRecs {
		a := rec.(*model.Attempt)
		attempts[a.AttemptNo] = a
	}
	r.SetAttempts(attempts)
	return r, nil
}

func encodeAttempt(rec model.Record) ([]any, error) {
	a, ok := rec.(*model.Attempt)
	if !ok {
		return nil, fmt.Errorf("expected *model.Attempt, got %T", rec)
	}
	return []any{
		a.ReqID, a.AttemptNo, nullIfEmpty(a.Host), int64(a.State),
		a.HreqAt, a.HresAt, a.RresAt, a.DresAt,
	}, nil
}

func decodeAttempt(_ *Store, row []any) (model.Record, error) {
	if len(row) != 8 {
		return nil, fmt.Errorf("attempt row has %d columns, want 8", len(row))
	}
	reqID, err := colString(row[0])
	if err != nil {
		return nil, fmt.Errorf("attempt req_id: %w", err)
	}
	no, err := colInt(row[1])
	if err != nil {
		return nil, fmt.Errorf("attempt attempt_no: %w", err)
	}
	host, err := colString(row[2])
	if err != nil {
		return nil, fmt.Errorf("attempt host: %w", err)
	}
	state, err := colInt(row[3])
	if err != nil {
		return nil, fmt.Errorf("attempt state: %w", err)
	}
	a := &model.Attempt{
		ReqID:     reqID,
		AttemptNo: no,
		Host:      host,
		State:     model.State(state),
	}
	dst := []**float64{&a.HreqAt, &a.HresAt, &a.RresAt, &a.DresAt}
	for i, d := range dst {
		p, err := colFloatPtr(row[4+i])
		if err != nil {
			return nil, fmt.Errorf("attempt %s: %w", descriptors[ShapeAttempt].columns[4+i], err)
		}
		*d = p
	}
	return a, nil
}

func encodeResponse(rec model.Record) ([]any, error) {
	r, ok := rec.(*model.Response)
	if !ok {
		return nil, fmt.Errorf("expected *model.Response, got %T", rec)
	}
	return []any{
		r.ReqID, r.AttemptNo, r.Host, r.CPU, r.RAM, r.Disk, r.Timestamp,
	}, nil
}

func decodeResponse(_ *Store, row []any) (model.Record, error) {
	if len(row) != 7 {
		return nil, fmt.Errorf("response row has %d columns, want 7", len(row))
	}
	reqID, err := colString(row[0])
	if err != nil {
		return nil, fmt.Errorf("response req_id: %w", err)
	}
	no, err := colInt(row[1])
	if err != nil {
		return nil, fmt.Errorf("response attempt_no: %w", err)
	}
	host, err := colString(row[2])
	if err != nil {
		return nil, fmt.Errorf("response host: %w", err)
	}
	r := &model.Response{ReqID: reqID, AttemptNo: no, Host: host}
	dst := []*float64{&r.CPU, &r.RAM, &r.Disk, &r.Timestamp}
	for i, d := range dst {
		f, err := colFloat(row[3+i])
		if err != nil {
			return nil, fmt.Errorf("response %s: %w", descriptors[ShapeResponse].columns[3+i], err)
		}
		*d = f
	}
	return r, nil
}

// Column value coercions. The driver hands back int64, float64, string,
// []byte or nil depending on column affinity; decoders accept all of them.

func colString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	default:
		return "", fmt.Errorf("cannot read %T as text", v)
	}
}

func colBytes(v any) []byte {
	switch t := v.(type) {
	case []byte:
		return t
	case string:
		return []byte(t)
	default:
		return nil
	}
}

func colInt(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	case []byte:
		return strconv.ParseInt(string(t), 10, 64)
	default:
		return 0, fmt.Errorf("cannot read %T as integer", v)
	}
}

func colFloat(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case string:
		return strconv.ParseFloat(t, 64)
	case []byte:
		return strconv.ParseFloat(string(t), 64)
	default:
		return 0, fmt.Errorf("cannot read %T as real", v)
	}
}

func colFloatPtr(v any) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	f, err := colFloat(v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
