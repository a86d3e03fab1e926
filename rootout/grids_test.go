package rootout

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/hbook/rootcnv"

	"github.com/decibelcooper/hgcalhistory/grid"
)

func TestWriteProjection(t *testing.T) {
	edges := []float64{0, 1, 2, 3}
	m, err := grid.NewMaxProjection(edges, edges, grid.PDGLabels{}, grid.ProjectXY)
	require.NoError(t, err)
	m.Update(0.5, 0.5, 2, 22)
	m.Update(2.5, 1.5, 3, 11)

	name := filepath.Join(t.TempDir(), "proj.root")
	require.NoError(t, WriteProjection(name, "xy", m))

	f, err := groot.Open(name)
	require.NoError(t, err)
	defer f.Close()

	obj, err := f.Get("xy_values")
	require.NoError(t, err)
	h, ok := obj.(rhist.H2)
	require.True(t, ok)
	assert.InDelta(t, 5.0, rootcnv.H2D(h).SumW(), 1e-12)

	obj, err = f.Get("xy_labels")
	require.NoError(t, err)
	h, ok = obj.(rhist.H2)
	require.True(t, ok)
	assert.InDelta(t, 33.0, rootcnv.H2D(h).SumW(), 1e-12)

	_, err = f.Get("missing")
	assert.Error(t, err)
}
