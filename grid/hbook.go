package grid

import (
	"go-hep.org/x/hep/hbook"
)

// ToH2D converts g into an hbook histogram with the same edges. Each non-zero
// cell is filled once at its bin center with the cell content as weight.
func ToH2D(g *Grid2D) *hbook.H2D {
	h := hbook.NewH2DFromEdges(g.xEdges, g.yEdges)
	if g.data == nil {
		return h
	}
	nx, ny := g.Dims()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			if v := g.data.At(i, j); v != 0 {
				h.Fill(g.xCenters[i], g.yCenters[j], v)
			}
		}
	}
	return h
}
