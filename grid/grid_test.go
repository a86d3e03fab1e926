package grid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"

	"github.com/decibelcooper/hgcalhistory"
)

var _ plotter.GridXYZ = (*Grid2D)(nil)

func TestNearestBin(t *testing.T) {
	g, err := New([]float64{0, 1, 2, 3}, []float64{0, 1})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 1.5, 2.5}, g.XCenters())

	tests := []struct {
		value    float64
		expected int
	}{
		{2.4, 2},
		{-100, 0},
		{100, 2},
		{0.5, 0},
		{1.0, 0}, // equidistant from 0.5 and 1.5
		{1.01, 1},
		{2.0, 1},
		{math.Inf(1), 2},
		{math.Inf(-1), 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, g.NearestBin(X, tt.value), "value %v", tt.value)
	}
}

func TestNearestBinDiffersFromContainingInterval(t *testing.T) {
	// centers 0.5 and 5.5: 2.9 lies in the second interval but is nearer
	// the first center.
	g, err := New([]float64{0, 1, 10}, []float64{0, 1})
	require.NoError(t, err)

	assert.Equal(t, 0, g.NearestBinX(2.9))
	assert.Equal(t, 0, g.NearestBinX(3.0))
	assert.Equal(t, 1, g.NearestBinX(3.1))
}

func TestNearestBinIsTotal(t *testing.T) {
	edges := []float64{-320, -300, -100, 0, 0.5, 1, 50, 400}
	g, err := New(edges, edges)
	require.NoError(t, err)
	nx, ny := g.Dims()

	rnd := rand.New(rand.NewSource(1))
	for n := 0; n < 10000; n++ {
		v := (rnd.Float64() - 0.5) * math.Pow(10, float64(rnd.Intn(12)))
		i := g.NearestBin(X, v)
		j := g.NearestBin(Y, v)
		require.True(t, i >= 0 && i < nx)
		require.True(t, j >= 0 && j < ny)

		c := g.XCenters()
		for k := range c {
			require.LessOrEqual(t, math.Abs(v-c[i]), math.Abs(v-c[k]))
		}
	}
}

func TestNewRejectsBadEdges(t *testing.T) {
	tests := [][]float64{
		nil,
		{1},
		{0, 1, 1},
		{0, 2, 1},
		{0, math.NaN()},
		{math.Inf(-1), 0},
	}
	for _, edges := range tests {
		g, err := New(edges, []float64{0, 1})
		assert.Nil(t, g)
		assert.ErrorIs(t, err, hgcalhistory.ErrInvalidConstruction, "edges %v", edges)

		g, err = New([]float64{0, 1}, edges)
		assert.Nil(t, g)
		assert.ErrorIs(t, err, hgcalhistory.ErrInvalidConstruction, "edges %v", edges)
	}
}

func TestFillAccumulates(t *testing.T) {
	g, err := New([]float64{0, 1, 2, 3}, []float64{0, 10, 20})
	require.NoError(t, err)

	_, err = g.Value(0, 0)
	require.ErrorIs(t, err, hgcalhistory.ErrOutOfRange)
	assert.False(t, g.Allocated())
	assert.Equal(t, 0.0, g.Z(0, 0))

	g.Fill(2.4, 3, 1.5)
	g.Fill(2.6, -50, 2)
	g.Fill(-7, 19, 4)

	v, err := g.Value(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	v, err = g.Value(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	assert.Equal(t, 7.5, g.Sum())
	assert.Equal(t, 4.0, g.Max())

	_, err = g.Value(3, 0)
	assert.ErrorIs(t, err, hgcalhistory.ErrOutOfRange)
	_, err = g.Value(0, -1)
	assert.ErrorIs(t, err, hgcalhistory.ErrOutOfRange)

	g.Clear()
	assert.False(t, g.Allocated())
	assert.Equal(t, 0.0, g.Sum())
	_, err = g.Value(2, 0)
	assert.ErrorIs(t, err, hgcalhistory.ErrOutOfRange)

	g.Fill(0, 0, 1)
	v, err = g.Value(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestExportRoundTrip(t *testing.T) {
	g, err := New([]float64{-3, -1, 0, 4, 9}, []float64{0, 0.5, 2})
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		g.Fill(rnd.NormFloat64()*5, rnd.Float64()*2, rnd.ExpFloat64())
	}

	e := g.Export()
	require.Len(t, e.Values, 4)
	require.Len(t, e.Values[0], 2)

	back, err := FromExport(e)
	require.NoError(t, err)
	assert.True(t, back.SameBinning(g))

	nx, ny := g.Dims()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			want, err := g.Value(i, j)
			require.NoError(t, err)
			got, err := back.Value(i, j)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}

	// the export does not alias the grid
	e.Values[0][0] += 100
	assert.NotEqual(t, e.Values[0][0], g.Z(0, 0))
}

func TestFromExportRejectsShapeMismatch(t *testing.T) {
	_, err := FromExport(Export{XEdges: []float64{0, 1, 2}, YEdges: []float64{0, 1}, Values: [][]float64{{1}}})
	assert.ErrorIs(t, err, hgcalhistory.ErrInvalidConstruction)

	_, err = FromExport(Export{XEdges: []float64{0, 1}, YEdges: []float64{0, 1}, Values: [][]float64{{1, 2}}})
	assert.ErrorIs(t, err, hgcalhistory.ErrInvalidConstruction)
}

func TestExportOfEmptyGrid(t *testing.T) {
	g, err := New([]float64{0, 1, 2}, []float64{0, 1})
	require.NoError(t, err)

	e := g.Export()
	assert.Equal(t, [][]float64{{0}, {0}}, e.Values)
}

func TestMerge(t *testing.T) {
	edges := []float64{0, 1, 2}
	a, err := New(edges, edges)
	require.NoError(t, err)
	b, err := New(edges, edges)
	require.NoError(t, err)

	a.Fill(0.2, 0.2, 1)
	b.Fill(0.2, 0.2, 2)
	b.Fill(1.7, 0.2, 5)

	require.NoError(t, a.Merge(b))
	assert.Equal(t, 3.0, a.Z(0, 0))
	assert.Equal(t, 5.0, a.Z(1, 0))

	empty, err := New(edges, edges)
	require.NoError(t, err)
	require.NoError(t, empty.Merge(a))
	assert.Equal(t, a.Export(), empty.Export())

	other, err := New([]float64{0, 1, 3}, edges)
	require.NoError(t, err)
	assert.ErrorIs(t, a.Merge(other), hgcalhistory.ErrInvalidConstruction)
}

func TestToH2D(t *testing.T) {
	g, err := New([]float64{0, 1, 5}, []float64{-1, 0, 1})
	require.NoError(t, err)

	h := ToH2D(g)
	assert.Equal(t, 0.0, h.SumW())

	g.Fill(0.4, -0.5, 2)
	g.Fill(4, 0.5, 3)

	h = ToH2D(g)
	assert.InDelta(t, 5.0, h.SumW(), 1e-12)
	assert.Equal(t, g.Sum(), h.SumW())
}
