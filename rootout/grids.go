// Package rootout stores accumulated grids as ROOT TH2D histograms.
package rootout

import (
	"fmt"
	"sort"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"

	"github.com/decibelcooper/hgcalhistory/grid"
)

// WriteGrids creates filename and writes one histogram per grid, keyed by
// name. Keys are written in sorted order.
func WriteGrids(filename string, grids map[string]*grid.Grid2D) error {
	f, err := groot.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}

	names := make([]string, 0, len(grids))
	for name := range grids {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		h := grid.ToH2D(grids[name])
		h.Annotation()["name"] = name
		if err := f.Put(name, rhist.NewH2DFrom(h)); err != nil {
			f.Close()
			return fmt.Errorf("write %s to %s: %w", name, filename, err)
		}
	}
	return f.Close()
}

// WriteProjection writes the values and labels of m as "<prefix>_values" and
// "<prefix>_labels".
func WriteProjection(filename, prefix string, m *grid.MaxProjection) error {
	return WriteGrids(filename, map[string]*grid.Grid2D{
		prefix + "_values": m.Values(),
		prefix + "_labels": m.Labels(),
	})
}
