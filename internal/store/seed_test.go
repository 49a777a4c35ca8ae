package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosnet-io/cosnet/internal/model"
)

func writeSeed(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cos.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestSeed_LoadsServiceClasses(t *testing.T) {
	seed := writeSeed(t, `[
		{"id": 1, "name": "gold", "max_response_time": 500, "min_bandwidth": 100},
		{"id": 2, "name": "best-effort"}
	]`)

	s := testStore(t, WithSeedFile(seed))

	recs := s.Select(ShapeCoS, OrderBy("id"))
	require.Len(t, recs, 2)

	gold := recs[0].(*model.CoS)
	assert.Equal(t, int64(1), gold.ID)
	assert.Equal(t, "gold", gold.Name)
	require.NotNil(t, gold.Specs.MaxResponseTime)
	assert.Equal(t, 500.0, *gold.Specs.MaxResponseTime)
	require.NotNil(t, gold.Specs.MinBandwidth)
	assert.Equal(t, 100.0, *gold.Specs.MinBandwidth)
	assert.Nil(t, gold.Specs.MaxDelay)

	be := recs[1].(*model.CoS)
	assert.Equal(t, "best-effort", be.Name)
	assert.Nil(t, be.Specs.MaxResponseTime)
}

func TestSeed_ReseedingIgnoresConflicts(t *testing.T) {
	seed := writeSeed(t, `[{"id": 1, "name": "gold", "max_response_time": 500}]`)
	path := filepath.Join(t.TempDir(), "seeded.db")

	s1, err := Open(path, WithLogger(discardLogger()), WithSeedFile(seed))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Second bootstrap with the same document must not duplicate or rewrite.
	s2, err := Open(path, WithLogger(discardLogger()), WithSeedFile(seed))
	require.NoError(t, err)
	defer s2.Close()

	recs := s2.Select(ShapeCoS)
	require.Len(t, recs, 1)
}

func TestSeed_MissingFileDoesNotFailOpen(t *testing.T) {
	s := testStore(t, WithSeedFile(filepath.Join(t.TempDir(), "absent.json")))

	recs := s.Select(ShapeCoS)
	require.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestSeed_InvalidDocumentDoesNotFailOpen(t *testing.T) {
	seed := writeSeed(t, `[{"id": "one", "name": 42}]`)

	s := testStore(t, WithSeedFile(seed))

	recs := s.Select(ShapeCoS)
	require.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestSeed_NormalizesNames(t *testing.T) {
	// "cafe" with a combining acute accent; the stored name must be the
	// precomposed form so identity conflicts are not representation-sensitive.
	seed := writeSeed(t, `[{"id": 1, "name": "cafe\u0301"}]`)

	s := testStore(t, WithSeedFile(seed))

	recs := s.Select(ShapeCoS)
	require.Len(t, recs, 1)
	assert.Equal(t, "caf\u00e9", recs[0].(*model.CoS).Name)
}

func TestValidateSeed(t *testing.T) {
	valid := [][]byte{
		[]byte(`[]`),
		[]byte(`[{"id": 1, "name": "gold"}]`),
		[]byte(`[{"id": 1, "name": "gold", "max_loss_rate": 0.01}]`),
	}
	for _, raw := range valid {
		assert.NoError(t, validateSeed(raw), string(raw))
	}

	invalid := [][]byte{
		[]byte(`{`),
		[]byte(`{"id": 1, "name": "gold"}`),
		[]byte(`[{"name": "gold"}]`),
		[]byte(`[{"id": "one", "name": "gold"}]`),
		[]byte(`[{"id": 1, "name": "gold", "max_delay": "fast"}]`),
	}
	for _, raw := range invalid {
		assert.Error(t, validateSeed(raw), string(raw))
	}
}
