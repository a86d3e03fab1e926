// Package grid accumulates calorimeter hits on non-uniform 2D grids.
//
// Values are assigned to the bin whose center is closest, not to the bin
// whose interval contains them. The two rules differ for non-uniform bins
// and for values outside the edges, which are snapped to the edge bins
// instead of being dropped.
package grid

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/decibelcooper/hgcalhistory"
)

// Axis selects the X or Y edges of a grid.
type Axis int

const (
	X Axis = iota
	Y
)

// Grid2D is an n×m accumulator over the bins defined by n+1 X edges and m+1
// Y edges. Cell storage is allocated on the first write.
type Grid2D struct {
	xEdges, yEdges     []float64
	xCenters, yCenters []float64

	data *mat.Dense
}

// New builds a grid from strictly increasing, finite edge sequences of at
// least two values each.
func New(xEdges, yEdges []float64) (*Grid2D, error) {
	if err := checkEdges("x", xEdges); err != nil {
		return nil, err
	}
	if err := checkEdges("y", yEdges); err != nil {
		return nil, err
	}
	return &Grid2D{
		xEdges:   slices.Clone(xEdges),
		yEdges:   slices.Clone(yEdges),
		xCenters: centers(xEdges),
		yCenters: centers(yEdges),
	}, nil
}

func checkEdges(axis string, edges []float64) error {
	if len(edges) < 2 {
		return hgcalhistory.Constructionf("grid", "%s axis needs at least 2 edges, got %d", axis, len(edges))
	}
	for i, e := range edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return hgcalhistory.Constructionf("grid", "%s edge %d is not finite", axis, i)
		}
		if i > 0 && !(e > edges[i-1]) {
			return hgcalhistory.Constructionf("grid", "%s edges not strictly increasing at %d: %g after %g",
				axis, i, e, edges[i-1])
		}
	}
	return nil
}

func centers(edges []float64) []float64 {
	c := make([]float64, len(edges)-1)
	for i := range c {
		c[i] = 0.5 * (edges[i] + edges[i+1])
	}
	return c
}

// nearest returns the index of the center closest to v. Ties go to the
// lower index and NaN maps to 0.
func nearest(centers []float64, v float64) int {
	last := len(centers) - 1
	switch {
	case math.IsNaN(v) || v <= centers[0]:
		return 0
	case v >= centers[last]:
		return last
	}
	i := floats.Within(centers, v)
	if v-centers[i] <= centers[i+1]-v {
		return i
	}
	return i + 1
}

// NearestBin returns the index of the bin along axis whose center is closest
// to v. It is defined for every float64.
func (g *Grid2D) NearestBin(axis Axis, v float64) int {
	if axis == Y {
		return nearest(g.yCenters, v)
	}
	return nearest(g.xCenters, v)
}

func (g *Grid2D) NearestBinX(x float64) int { return nearest(g.xCenters, x) }
func (g *Grid2D) NearestBinY(y float64) int { return nearest(g.yCenters, y) }

// Cell returns the bin indices selected for (x, y).
func (g *Grid2D) Cell(x, y float64) (i, j int) {
	return nearest(g.xCenters, x), nearest(g.yCenters, y)
}

func (g *Grid2D) alloc() *mat.Dense {
	if g.data == nil {
		g.data = mat.NewDense(len(g.xCenters), len(g.yCenters), nil)
	}
	return g.data
}

// Fill adds w to the cell nearest to (x, y).
func (g *Grid2D) Fill(x, y, w float64) {
	i, j := g.Cell(x, y)
	d := g.alloc()
	d.Set(i, j, d.At(i, j)+w)
}

func (g *Grid2D) set(i, j int, v float64) {
	g.alloc().Set(i, j, v)
}

// Clear resets every cell to zero. Storage is released and allocated again
// on the next write.
func (g *Grid2D) Clear() { g.data = nil }

// Allocated reports whether the grid has been written to since it was built
// or cleared.
func (g *Grid2D) Allocated() bool { return g.data != nil }

// Value returns the content of bin (i, j). Querying a grid that holds no
// data, or a bin outside its shape, is an ErrOutOfRange.
func (g *Grid2D) Value(i, j int) (float64, error) {
	if g.data == nil {
		return 0, &hgcalhistory.BinError{I: i, J: j, Reason: "grid holds no data"}
	}
	nx, ny := g.Dims()
	if i < 0 || i >= nx || j < 0 || j >= ny {
		return 0, &hgcalhistory.BinError{I: i, J: j, Reason: "outside grid"}
	}
	return g.data.At(i, j), nil
}

// Dims returns the number of X and Y bins.
func (g *Grid2D) Dims() (nx, ny int) { return len(g.xCenters), len(g.yCenters) }

// Z returns the content of bin (c, r), zero when nothing was written.
// Together with Dims, X and Y it makes a Grid2D a plotter.GridXYZ.
func (g *Grid2D) Z(c, r int) float64 {
	if g.data == nil {
		return 0
	}
	return g.data.At(c, r)
}

// X returns the center of X bin c.
func (g *Grid2D) X(c int) float64 { return g.xCenters[c] }

// Y returns the center of Y bin r.
func (g *Grid2D) Y(r int) float64 { return g.yCenters[r] }

func (g *Grid2D) XEdges() []float64   { return slices.Clone(g.xEdges) }
func (g *Grid2D) YEdges() []float64   { return slices.Clone(g.yEdges) }
func (g *Grid2D) XCenters() []float64 { return slices.Clone(g.xCenters) }
func (g *Grid2D) YCenters() []float64 { return slices.Clone(g.yCenters) }

// Sum returns the total content of the grid.
func (g *Grid2D) Sum() float64 {
	if g.data == nil {
		return 0
	}
	return mat.Sum(g.data)
}

// Max returns the largest cell content, zero for an empty grid.
func (g *Grid2D) Max() float64 {
	if g.data == nil {
		return 0
	}
	return mat.Max(g.data)
}

// SameBinning reports whether g and o have identical edges.
func (g *Grid2D) SameBinning(o *Grid2D) bool {
	return slices.Equal(g.xEdges, o.xEdges) && slices.Equal(g.yEdges, o.yEdges)
}

// Merge adds the content of o to g cell by cell. Both grids must share
// their edges.
func (g *Grid2D) Merge(o *Grid2D) error {
	if !g.SameBinning(o) {
		return hgcalhistory.Constructionf("grid", "cannot merge grids with different edges")
	}
	if o.data == nil {
		return nil
	}
	d := g.alloc()
	d.Add(d, o.data)
	return nil
}

// Export is the renderer-facing form of a grid. Values[i][j] is the content
// of X bin i and Y bin j.
type Export struct {
	XEdges []float64   `json:"x_edges"`
	YEdges []float64   `json:"y_edges"`
	Values [][]float64 `json:"values"`
}

// Export copies the cell contents and edges of g. A grid that holds no data
// exports zeros.
func (g *Grid2D) Export() Export {
	nx, ny := g.Dims()
	values := make([][]float64, nx)
	for i := range values {
		values[i] = make([]float64, ny)
		if g.data != nil {
			mat.Row(values[i], i, g.data)
		}
	}
	return Export{XEdges: g.XEdges(), YEdges: g.YEdges(), Values: values}
}

// FromExport rebuilds a grid from an Export. The value array must have one
// row per X bin and one column per Y bin.
func FromExport(e Export) (*Grid2D, error) {
	g, err := New(e.XEdges, e.YEdges)
	if err != nil {
		return nil, err
	}
	nx, ny := g.Dims()
	if len(e.Values) != nx {
		return nil, hgcalhistory.Constructionf("grid", "%d value rows for %d x bins", len(e.Values), nx)
	}
	for i, row := range e.Values {
		if len(row) != ny {
			return nil, hgcalhistory.Constructionf("grid", "row %d has %d values for %d y bins", i, len(row), ny)
		}
		g.alloc().SetRow(i, row)
	}
	return g, nil
}
