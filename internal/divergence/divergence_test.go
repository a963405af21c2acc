package divergence

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/imgforensics/internal/faults"
	"github.com/ivlev/imgforensics/internal/histogram"
)

func hist(counts ...uint32) histogram.Histogram {
	return histogram.Histogram{Counts: counts}
}

func TestChiSquareSelfIsZero(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		h := histogram.New(0, 32)
		for j := range h.Counts {
			h.Counts[j] = uint32(rnd.Intn(100))
		}
		assert.Zero(t, ChiSquare(h, h))
	}
}

func TestChiSquareNonNegative(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		a, b := histogram.New(0, 8), histogram.New(0, 8)
		for j := 0; j < 8; j++ {
			a.Counts[j] = uint32(rnd.Intn(5))
			b.Counts[j] = uint32(rnd.Intn(5))
		}
		d := ChiSquare(a, b)
		assert.GreaterOrEqual(t, d, 0.0)
		assert.False(t, math.IsNaN(d) || math.IsInf(d, 0))
	}
}

func TestChiSquareValues(t *testing.T) {
	// disjoint distributions reach the maximum of 2
	assert.InDelta(t, 2.0, ChiSquare(hist(4, 0), hist(0, 9)), 1e-6)

	// scale does not matter, only the shape
	assert.InDelta(t, 0.0, ChiSquare(hist(1, 3), hist(10, 30)), 1e-12)

	// c = [1, 0], r = [5/8, 3/8]
	want := (3.0/8)*(3.0/8)/(1+5.0/8) + (3.0 / 8)
	assert.InDelta(t, want, ChiSquare(hist(8, 0), hist(5, 3)), 1e-6)
}

func TestChiSquareDegenerate(t *testing.T) {
	saturated := hist(0, 0, 0, 64)
	d := ChiSquare(saturated, hist(0, 0, 0, 0))
	assert.False(t, math.IsNaN(d) || math.IsInf(d, 0))
	assert.Zero(t, ChiSquare(saturated, saturated))
}

// uniformGrid builds a rows×cols grid where every block holds counts.
func uniformGrid(t *testing.T, rows, cols int, counts ...uint32) *histogram.Grid {
	t.Helper()
	g := histogram.NewGrid(rows, cols, 1, len(counts))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			h := histogram.New(0, len(counts))
			copy(h.Counts, counts)
			require.NoError(t, g.Set(r, c, []histogram.Histogram{h}))
		}
	}
	return g
}

func TestScorerUniform(t *testing.T) {
	g := uniformGrid(t, 4, 5, 3, 1, 0, 7)
	scores, err := Scorer{Radius: 1, Workers: 3}.Score(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, scores, 20)
	for _, s := range scores {
		assert.Zero(t, s)
	}
}

func TestScorerOutlier(t *testing.T) {
	g := uniformGrid(t, 5, 5, 10, 0)
	require.NoError(t, g.Set(2, 2, []histogram.Histogram{hist(0, 10)}))

	scores, err := Scorer{Radius: 1, Workers: 2}.Score(context.Background(), g)
	require.NoError(t, err)

	center := scores[2*5+2]
	assert.InDelta(t, 2.0, center, 1e-6)
	for i, s := range scores {
		if i == 2*5+2 {
			continue
		}
		assert.Less(t, s, center)
	}
	// the far corner never sees the outlier
	assert.Zero(t, scores[0])
}

func TestScorerSingleBlockUsesGlobal(t *testing.T) {
	g := histogram.NewGrid(1, 1, 1, 2)
	require.NoError(t, g.Set(0, 0, []histogram.Histogram{hist(3, 5)}))

	scores, err := Scorer{Radius: 1}.Score(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, scores)

	// radius 0 has no neighbors either
	g = uniformGrid(t, 2, 2, 1, 1)
	require.NoError(t, g.Set(1, 1, []histogram.Histogram{hist(2, 0)}))
	scores, err = Scorer{Radius: 0}.Score(context.Background(), g)
	require.NoError(t, err)
	global := hist(5, 3)
	assert.InDelta(t, ChiSquare(hist(2, 0), global), scores[3], 1e-12)
	assert.InDelta(t, ChiSquare(hist(1, 1), global), scores[0], 1e-12)
}

func TestScorerAveragesChannels(t *testing.T) {
	g := histogram.NewGrid(1, 2, 2, 2)
	require.NoError(t, g.Set(0, 0, []histogram.Histogram{hist(1, 0), hist(1, 0)}))
	require.NoError(t, g.Set(0, 1, []histogram.Histogram{hist(1, 0), hist(0, 1)}))

	scores, err := Scorer{Radius: 1}.Score(context.Background(), g)
	require.NoError(t, err)
	// channel 0 identical, channel 1 disjoint
	assert.InDelta(t, 1.0, scores[0], 1e-6)
	assert.InDelta(t, 1.0, scores[1], 1e-6)
}

func TestScorerHugeRadius(t *testing.T) {
	g := uniformGrid(t, 3, 3, 10, 0)
	require.NoError(t, g.Set(1, 1, []histogram.Histogram{hist(0, 10)}))

	want, err := Scorer{Radius: 5, Workers: 2}.Score(context.Background(), g)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, want[4], 1e-6)

	for _, radius := range []int{math.MaxInt, math.MaxInt - 1, math.MaxInt / 2} {
		got, err := Scorer{Radius: radius, Workers: 2}.Score(context.Background(), g)
		require.NoError(t, err)
		assert.Equal(t, want, got, "radius %d", radius)
	}
}

func TestScorerErrors(t *testing.T) {
	g := uniformGrid(t, 3, 3, 1, 2)

	_, err := Scorer{Radius: -1}.Score(context.Background(), g)
	assert.ErrorIs(t, err, faults.ErrInvalidConfig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Scorer{Radius: 1, Workers: 2}.Score(ctx, g)
	assert.ErrorIs(t, err, faults.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}
