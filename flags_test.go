package hgcalhistory

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatArrayFlags(t *testing.T) {
	edges := FloatArrayFlags{Array: []float64{-1, 1}}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&edges, "xedge", "")

	require.NoError(t, fs.Parse([]string{"-xedge", "0, 1,2.5", "-xedge", "4"}))
	assert.Equal(t, []float64{0, 1, 2.5, 4}, edges.Array)
	assert.Equal(t, "[0 1 2.5 4]", edges.String())

	uniform := FloatArrayFlags{}
	require.NoError(t, uniform.Set("4:0:2"))
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, uniform.Array)

	assert.Error(t, uniform.Set("a,b"))
	assert.Error(t, uniform.Set("x:0:1"))
	assert.Error(t, uniform.Set("0:0:1"))
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, uniform.Array)

	var nilFlags *FloatArrayFlags
	assert.Equal(t, "[]", nilFlags.String())
}

func TestUniformEdges(t *testing.T) {
	edges, err := UniformEdges(3, -1.5, 1.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1.5, -0.5, 0.5, 1.5}, edges)

	_, err = UniformEdges(2, 1, 1)
	assert.Error(t, err)
}
