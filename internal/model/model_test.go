package model

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoS_DefaultsWhenUnset(t *testing.T) {
	c := &CoS{ID: 1, Name: "best-effort"}

	// Ceilings default to no upper bound.
	assert.True(t, math.IsInf(c.MaxResponseTime(), 1))
	assert.True(t, math.IsInf(c.MaxDelay(), 1))
	assert.True(t, math.IsInf(c.MaxJitter(), 1))

	// Floors default to no lower bound.
	assert.Zero(t, c.MinConcurrentUsers())
	assert.Zero(t, c.MinRequestsPerSecond())
	assert.Zero(t, c.MinBandwidth())
	assert.Zero(t, c.MinCPU())
	assert.Zero(t, c.MinRAM())
	assert.Zero(t, c.MinDisk())

	// Any loss is acceptable by default.
	assert.Equal(t, 1.0, c.MaxLossRate())
}

func TestCoS_SetThresholdsWinOverDefaults(t *testing.T) {
	c := &CoS{
		ID:   1,
		Name: "gold",
		Specs: CoSSpecs{
			MaxResponseTime: Float(500),
			MinBandwidth:    Float(100),
			MaxLossRate:     Float(0),
			MinCPU:          Float(2),
		},
	}

	assert.Equal(t, 500.0, c.MaxResponseTime())
	assert.Equal(t, 100.0, c.MinBandwidth())
	assert.Equal(t, 2.0, c.MinCPU())

	// An explicit zero is a real constraint, distinct from absent.
	assert.Equal(t, 0.0, c.MaxLossRate())
}

func TestNewRequest_GeneratesIdentity(t *testing.T) {
	cos := &CoS{ID: 1, Name: "gold"}

	r := NewRequest("", "nodeA", cos, []byte("data"))
	_, err := uuid.Parse(r.ID)
	require.NoError(t, err)

	r2 := NewRequest("", "nodeA", cos, nil)
	assert.NotEqual(t, r.ID, r2.ID)
}

func TestNewRequest_KeepsGivenIdentity(t *testing.T) {
	r := NewRequest("req-42", "nodeA", &CoS{ID: 1}, nil)
	assert.Equal(t, "req-42", r.ID)
	assert.Equal(t, StateHostRequested, r.State)
	assert.NotNil(t, r.Attempts)
	assert.Empty(t, r.Attempts)
}

func TestRequest_SrcID(t *testing.T) {
	r := NewRequest("r1", "raw-id", &CoS{ID: 1}, nil)
	assert.Equal(t, "raw-id", r.SrcID())

	r.SrcNode = &Node{ID: "node-7", Label: "edge switch"}
	assert.Equal(t, "node-7", r.SrcID())
}

func TestRequest_NewAttemptNumbering(t *testing.T) {
	r := NewRequest("r1", "nodeA", &CoS{ID: 1}, nil)

	a1 := r.NewAttempt()
	a2 := r.NewAttempt()

	assert.Equal(t, int64(1), a1.AttemptNo)
	assert.Equal(t, int64(2), a2.AttemptNo)
	assert.Equal(t, "r1", a1.ReqID)
	assert.Same(t, a1, r.Attempts[1])
	assert.Same(t, a2, r.Attempts[2])
}

func TestRequest_SetAttemptsRealignsCounter(t *testing.T) {
	r := NewRequest("r1", "nodeA", &CoS{ID: 1}, nil)
	r.SetAttempts(map[int64]*Attempt{
		1: {ReqID: "r1", AttemptNo: 1},
		4: {ReqID: "r1", AttemptNo: 4},
	})

	a := r.NewAttempt()
	assert.Equal(t, int64(5), a.AttemptNo)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "waiting for host", StateHostRequested.String())
	assert.Equal(t, "waiting for resources", StateResourcesRequested.String())
	assert.Equal(t, "waiting for data", StateDataRequested.String())
	assert.Equal(t, "finished", StateDone.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestState_WireValues(t *testing.T) {
	// Stored and exchanged as-is; renumbering would corrupt existing rows.
	assert.EqualValues(t, 0, StateFailed)
	assert.EqualValues(t, 1, StateHostRequested)
	assert.EqualValues(t, 3, StateResourcesRequested)
	assert.EqualValues(t, 6, StateDataRequested)
	assert.EqualValues(t, 7, StateDone)
}
