package materialize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/materialize"
)

func sum(t *testing.T, vs ...any) rowmap.Fingerprint {
	t.Helper()
	fp := materialize.NewFingerprint()
	for _, v := range vs {
		require.NoError(t, fp.Add(v))
	}
	assert.Equal(t, len(vs), fp.Len())
	return fp.Sum()
}

func TestFingerprintBuilder(t *testing.T) {
	t.Parallel()

	joined := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, sum(t, int64(1), "ann", joined), sum(t, int64(1), "ann", joined))
		assert.NotZero(t, sum(t))
	})

	t.Run("OrderSensitive", func(t *testing.T) {
		assert.NotEqual(t, sum(t, "a", "b"), sum(t, "b", "a"))
		assert.NotEqual(t, sum(t, int64(1), int64(2)), sum(t, int64(2), int64(1)))
	})

	t.Run("Distinguishes", func(t *testing.T) {
		assert.NotEqual(t, sum(t, nil), sum(t, ""))
		assert.NotEqual(t, sum(t, int32(7)), sum(t, int64(7)))
		assert.NotEqual(t, sum(t, "ab", "c"), sum(t, "a", "bc"))
	})

	t.Run("SortedMapKeys", func(t *testing.T) {
		a := map[string]int{"x": 1, "y": 2, "z": 3}
		b := map[string]int{"z": 3, "y": 2, "x": 1}
		assert.Equal(t, sum(t, a), sum(t, b))
	})

	t.Run("SingleUse", func(t *testing.T) {
		fp := materialize.NewFingerprint()
		require.NoError(t, fp.Add("ann"))
		assert.NotZero(t, fp.Sum())
		assert.Error(t, fp.Add("bob"))
		assert.Zero(t, fp.Sum())
	})

	t.Run("Discard", func(t *testing.T) {
		fp := materialize.NewFingerprint()
		require.NoError(t, fp.Add("ann"))
		fp.Discard()
		assert.Error(t, fp.Add("bob"))
		assert.Zero(t, fp.Sum())
	})

	t.Run("EncodeError", func(t *testing.T) {
		fp := materialize.NewFingerprint()
		defer fp.Discard()
		assert.Error(t, fp.Add(make(chan int)))
	})
}
