package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosnet-io/cosnet/internal/model"
)

func TestInsertSelect_CoSRoundTrip(t *testing.T) {
	s := testStore(t)

	gold := &model.CoS{
		ID:   1,
		Name: "gold",
		Specs: model.CoSSpecs{
			MaxResponseTime: model.Float(500),
			MinBandwidth:    model.Float(100),
			MaxLossRate:     model.Float(0.01),
		},
	}
	require.True(t, s.Insert(gold))

	recs := s.Select(ShapeCoS, Where("id", "=", 1))
	require.Len(t, recs, 1)
	assert.Equal(t, gold, recs[0])
}

func TestSelect_CoSWithoutThresholds(t *testing.T) {
	s := testStore(t)

	require.True(t, s.Insert(&model.CoS{ID: 2, Name: "basic"}))

	recs := s.Select(ShapeCoS, Where("name", "=", "basic"))
	require.Len(t, recs, 1)
	c := recs[0].(*model.CoS)
	assert.Nil(t, c.Specs.MaxResponseTime)
	assert.Nil(t, c.Specs.MinCPU)
	assert.Nil(t, c.Specs.MaxLossRate)
}

func TestInsertSelect_RequestRoundTrip(t *testing.T) {
	s := testStore(t)

	gold := &model.CoS{ID: 1, Name: "gold",
		Specs: model.CoSSpecs{MaxResponseTime: model.Float(500)}}
	require.True(t, s.Insert(gold))

	r := model.NewRequest("10", "nodeA", gold, []byte("payload"))
	require.True(t, s.Insert(r))

	recs := s.Select(ShapeRequest, Where("id", "=", "10"))
	require.Len(t, recs, 1)
	got := recs[0].(*model.Request)

	assert.Equal(t, "10", got.ID)
	assert.Equal(t, "nodeA", got.Src)
	assert.Equal(t, []byte("payload"), got.Data)
	assert.Nil(t, got.Result)
	assert.Equal(t, "", got.Host)
	assert.Equal(t, model.StateHostRequested, got.State)
	assert.Nil(t, got.HreqAt)

	// The service class comes back as a full object, not a bare id.
	require.NotNil(t, got.CoS)
	assert.Equal(t, gold, got.CoS)

	assert.Empty(t, got.Attempts)
}

func TestSelect_RequestCarriesOwnedAttempts(t *testing.T) {
	s := testStore(t)

	gold := &model.CoS{ID: 1, Name: "gold"}
	require.True(t, s.Insert(gold))

	r := model.NewRequest("10", "nodeA", gold, nil)
	require.True(t, s.Insert(r))

	a1 := r.NewAttempt()
	a1.Host = "10.0.0.5"
	a1.State = model.StateFailed
	a1.HreqAt = model.Float(1000)
	require.True(t, s.Insert(a1))

	a2 := r.NewAttempt()
	a2.Host = "10.0.0.6"
	a2.State = model.StateHostRequested
	require.True(t, s.Insert(a2))

	recs := s.Select(ShapeRequest, Where("id", "=", "10"))
	require.Len(t, recs, 1)
	got := recs[0].(*model.Request)

	require.Len(t, got.Attempts, 2)
	assert.Equal(t, "10.0.0.5", got.Attempts[1].Host)
	assert.Equal(t, "10.0.0.6", got.Attempts[2].Host)

	// Attempt numbering continues after the highest stored attempt.
	a3 := got.NewAttempt()
	assert.Equal(t, int64(3), a3.AttemptNo)
}

func TestSelect_RequestWithMissingServiceClassFails(t *testing.T) {
	s := testStore(t)

	// Insert referencing a class that was never stored. The write succeeds
	// (referential integrity is an application convention), the object read
	// cannot enrich and reports failure.
	r := model.NewRequest("10", "nodeA", &model.CoS{ID: 99, Name: "ghost"}, nil)
	require.True(t, s.Insert(r))

	assert.Nil(t, s.Select(ShapeRequest, Where("id", "=", "10")))
}

func TestUpdate_RewritesRowInPlace(t *testing.T) {
	s := testStore(t)

	gold := &model.CoS{ID: 1, Name: "gold"}
	require.True(t, s.Insert(gold))
	r := model.NewRequest("10", "nodeA", gold, nil)
	require.True(t, s.Insert(r))

	r.Host = "10.0.0.9"
	r.State = model.StateDone
	r.DresAt = model.Float(2000)
	require.True(t, s.Update(r))

	recs := s.Select(ShapeRequest)
	require.Len(t, recs, 1)
	got := recs[0].(*model.Request)
	assert.Equal(t, "10.0.0.9", got.Host)
	assert.Equal(t, model.StateDone, got.State)
	require.NotNil(t, got.DresAt)
	assert.Equal(t, 2000.0, *got.DresAt)
}

func TestUpdate_CompositeIdentity(t *testing.T) {
	s := testStore(t)

	a := &model.Attempt{ReqID: "10", AttemptNo: 1, Host: "old"}
	b := &model.Attempt{ReqID: "10", AttemptNo: 2, Host: "old"}
	require.True(t, s.Insert(a))
	require.True(t, s.Insert(b))

	a.Host = "new"
	a.State = model.StateDone
	require.True(t, s.Update(a, "req_id", "attempt_no"))

	recs := s.Select(ShapeAttempt, OrderBy("attempt_no"))
	require.Len(t, recs, 2)
	assert.Equal(t, "new", recs[0].(*model.Attempt).Host)
	assert.Equal(t, "old", recs[1].(*model.Attempt).Host)
}

func TestUpdate_UnknownIdentityColumn(t *testing.T) {
	s := testStore(t)

	assert.False(t, s.Update(&model.CoS{ID: 1, Name: "gold"}, "no_such_column"))
}

func TestInsert_RequestWithoutServiceClass(t *testing.T) {
	s := testStore(t)

	assert.False(t, s.Insert(&model.Request{ID: "10", Src: "nodeA"}))
}

func TestSelect_EmptyMatchIsNotFailure(t *testing.T) {
	s := testStore(t)

	recs := s.Select(ShapeCoS, Where("id", "=", 404))
	require.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestSelect_InvalidShape(t *testing.T) {
	s := testStore(t)

	assert.Nil(t, s.Select(Shape(42)))
}

func TestSelect_NarrowedProjectionRejected(t *testing.T) {
	s := testStore(t)

	require.True(t, s.Insert(&model.CoS{ID: 1, Name: "gold"}))

	// Object decoding needs the full column set; the raw variant serves
	// narrowed reads.
	assert.Nil(t, s.Select(ShapeCoS, Fields("id", "name")))
}

func TestSelectRows_NarrowedProjection(t *testing.T) {
	s := testStore(t)

	require.True(t, s.Insert(&model.CoS{ID: 1, Name: "gold"}))
	require.True(t, s.Insert(&model.CoS{ID: 2, Name: "basic"}))

	rows := s.SelectRows(ShapeCoS, Fields("id", "name"), OrderBy("id"))
	require.Len(t, rows, 2)
	require.Len(t, rows[0], 2)
	assert.Equal(t, int64(1), rows[0][0])
	assert.Equal(t, "gold", rows[0][1])
}

func TestSelectRows_GroupedAggregate(t *testing.T) {
	s := testStore(t)

	for i, host := range []string{"h1", "h1", "h2"} {
		a := &model.Attempt{ReqID: "10", AttemptNo: int64(i + 1), Host: host}
		require.True(t, s.Insert(a))
	}

	rows := s.SelectRows(ShapeAttempt,
		Fields("host", "count(*)"), GroupBy("host"), OrderBy("host"))
	require.Len(t, rows, 2)
	assert.Equal(t, "h1", rows[0][0])
	assert.Equal(t, int64(2), rows[0][1])
	assert.Equal(t, "h2", rows[1][0])
	assert.Equal(t, int64(1), rows[1][1])
}

func TestSelect_OrderedRead(t *testing.T) {
	s := testStore(t)

	require.True(t, s.Insert(&model.CoS{ID: 2, Name: "basic"}))
	require.True(t, s.Insert(&model.CoS{ID: 1, Name: "gold"}))

	recs := s.Select(ShapeCoS, OrderBy("name"))
	require.Len(t, recs, 2)
	assert.Equal(t, "basic", recs[0].(*model.CoS).Name)
	assert.Equal(t, "gold", recs[1].(*model.CoS).Name)
}

func TestSelect_FilterConvertsTypedComparands(t *testing.T) {
	s := testStore(t)

	a := &model.Attempt{ReqID: "10", AttemptNo: 1, State: model.StateDone,
		HreqAt: model.Float(1500)}
	require.True(t, s.Insert(a))

	// Integer and float comparands are stringified at the facade and
	// converted back by column affinity.
	recs := s.Select(ShapeAttempt,
		Where("state", "=", int64(model.StateDone)),
		Where("hreq_at", ">", 1000.0))
	require.Len(t, recs, 1)
	assert.Equal(t, int64(1), recs[0].(*model.Attempt).AttemptNo)
}
