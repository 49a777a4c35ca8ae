// Package model defines the domain records of the task-offloading control
// plane: service classes (CoS) and their requirement thresholds, hosting
// requests, per-attempt delivery records, and resource-usage responses.
//
// The structs here are plain records; persistence is handled by
// internal/store, which maps each shape to exactly one table.
package model

import (
	"math"

	"github.com/google/uuid"
)

// State enumerates the lifecycle of a request or attempt.
//
// The codes are wire values shared with the protocol handlers and are stored
// as-is; do not renumber.
type State int64

const (
	// StateFailed marks a request or attempt that will not complete.
	StateFailed State = 0
	// StateHostRequested means the operation started and a host is being located.
	StateHostRequested State = 1
	// StateResourcesRequested means a host answered and resources are being reserved.
	StateResourcesRequested State = 3
	// StateDataRequested means resources are reserved and payload exchange started.
	StateDataRequested State = 6
	// StateDone means the result was delivered back to the source.
	StateDone State = 7
)

// String returns the human-readable state used in diagnostics.
func (s State) String() string {
	switch s {
	case StateFailed:
		return "failed"
	case StateHostRequested:
		return "waiting for host"
	case StateResourcesRequested:
		return "waiting for resources"
	case StateDataRequested:
		return "waiting for data"
	case StateDone:
		return "finished"
	}
	return "unknown"
}

// Record is implemented by every persistable shape.
type Record interface {
	isRecord()
}

// Node is a resolved network node. Only the fields the facade needs are
// carried here; topology state lives outside this module.
type Node struct {
	ID    string
	Label string
}

// CoSSpecs holds the requirement thresholds of a service class. A nil field
// means the threshold was never set, which is distinct from a zero value.
type CoSSpecs struct {
	MaxResponseTime      *float64
	MinConcurrentUsers   *float64
	MinRequestsPerSecond *float64
	MinBandwidth         *float64
	MaxDelay             *float64
	MaxJitter            *float64
	MaxLossRate          *float64
	MinCPU               *float64
	MinRAM               *float64
	MinDisk              *float64
}

// CoS is a class of service: a named set of minimum specs required to host
// applications belonging to it. Rows are seeded once at bootstrap and rarely
// change afterwards.
type CoS struct {
	ID    int64
	Name  string
	Specs CoSSpecs
}

func (*CoS) isRecord() {}

// Accessors below report the effective threshold, substituting the documented
// default when the value was never set: ceilings default to +Inf, floors to 0
// and the loss rate to 1 (i.e. no constraint).

func (c *CoS) MaxResponseTime() float64 { return ceil(c.Specs.MaxResponseTime) }
func (c *CoS) MinConcurrentUsers() float64 {
	return floor(c.Specs.MinConcurrentUsers)
}
func (c *CoS) MinRequestsPerSecond() float64 {
	return floor(c.Specs.MinRequestsPerSecond)
}
func (c *CoS) MinBandwidth() float64 { return floor(c.Specs.MinBandwidth) }
func (c *CoS) MaxDelay() float64     { return ceil(c.Specs.MaxDelay) }
func (c *CoS) MaxJitter() float64    { return ceil(c.Specs.MaxJitter) }
func (c *CoS) MaxLossRate() float64 {
	if c.Specs.MaxLossRate == nil {
		return 1
	}
	return *c.Specs.MaxLossRate
}
func (c *CoS) MinCPU() float64  { return floor(c.Specs.MinCPU) }
func (c *CoS) MinRAM() float64  { return floor(c.Specs.MinRAM) }
func (c *CoS) MinDisk() float64 { return floor(c.Specs.MinDisk) }

func ceil(v *float64) float64 {
	if v == nil {
		return math.Inf(1)
	}
	return *v
}

func floor(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Request is an application hosting request.
//
// Src carries the originating identifier; when the source was resolved to a
// topology node, SrcNode is set as well and its ID takes precedence when the
// record is persisted. Attempts is populated only on full-object reads.
type Request struct {
	ID      string
	Src     string
	SrcNode *Node
	CoS     *CoS
	Data    []byte
	Result  []byte
	Host    string
	State   State
	HreqAt  *float64
	DresAt  *float64

	Attempts map[int64]*Attempt

	attemptNo int64
}

func (*Request) isRecord() {}

// NewRequest builds a request in the initial lifecycle state. An empty id is
// replaced with a generated UUID.
func NewRequest(id string, src string, cos *CoS, data []byte) *Request {
	if id == "" {
		id = uuid.NewString()
	}
	return &Request{
		ID:       id,
		Src:      src,
		CoS:      cos,
		Data:     data,
		State:    StateHostRequested,
		Attempts: make(map[int64]*Attempt),
	}
}

// SrcID returns the bare source identifier, regardless of whether the source
// was given raw or as a resolved node.
func (r *Request) SrcID() string {
	if r.SrcNode != nil {
		return r.SrcNode.ID
	}
	return r.Src
}

// NewAttempt creates the next attempt for this request and registers it in
// the attempt map.
func (r *Request) NewAttempt() *Attempt {
	r.attemptNo++
	a := &Attempt{ReqID: r.ID, AttemptNo: r.attemptNo}
	if r.Attempts == nil {
		r.Attempts = make(map[int64]*Attempt)
	}
	r.Attempts[r.attemptNo] = a
	return a
}

// SetAttempts replaces the attempt map and realigns the attempt counter so
// that NewAttempt continues numbering after the highest stored attempt. Used
// when a request is rebuilt from storage.
func (r *Request) SetAttempts(m map[int64]*Attempt) {
	r.Attempts = m
	r.attemptNo = 0
	for no := range m {
		if no > r.attemptNo {
			r.attemptNo = no
		}
	}
}

// Attempt is one delivery attempt of a request, keyed by
// (request id, attempt number).
type Attempt struct {
	ReqID     string
	AttemptNo int64
	Host      string
	State     State
	HreqAt    *float64
	HresAt    *float64
	RresAt    *float64
	DresAt    *float64
}

func (*Attempt) isRecord() {}

// Response records the resources a host offered for one attempt. It is
// stored independently of the attempt; referential integrity across
// Request, Attempt and Response is an application-level convention.
type Response struct {
	ReqID     string
	AttemptNo int64
	Host      string
	CPU       float64
	RAM       float64
	Disk      float64
	Timestamp float64
}

func (*Response) isRecord() {}

// Float is a convenience for building optional threshold and timestamp
// values in place.
func Float(v float64) *float64 { return &v }
