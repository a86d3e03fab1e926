package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decibelcooper/hgcalhistory"
)

func TestHGCalTables(t *testing.T) {
	d, err := HGCal()
	require.NoError(t, err)

	z, err := d.ZForLayer(1, Positive)
	require.NoError(t, err)
	assert.Equal(t, 322.10275269, z)

	z, err = d.ZForLayer(28, Negative)
	require.NoError(t, err)
	assert.Equal(t, -361.65725708, z)

	assert.Len(t, d.Layers(Positive), 28)
	assert.Equal(t, Envelope{Min: 322.10275269, Max: 361.65725708}, d.Envelope(Positive))
	assert.Equal(t, Envelope{Min: -361.65725708, Max: -322.10275269}, d.Envelope(Negative))
}

func TestZForLayerOutOfRange(t *testing.T) {
	d := MustHGCal()

	for _, layer := range []int{0, 29, -1} {
		_, err := d.ZForLayer(layer, Positive)
		require.Error(t, err)
		assert.True(t, errors.Is(err, hgcalhistory.ErrOutOfRange))

		var le *hgcalhistory.LayerError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, layer, le.Layer)
	}

	_, err := d.ZForLayer(1, Endcap(7))
	assert.ErrorIs(t, err, hgcalhistory.ErrOutOfRange)
}

func TestNewRejectsMismatchedTables(t *testing.T) {
	layers27 := HGCalLayers()[:27]

	_, err := New(layers27, hgcalZPos, hgcalZNeg)
	require.Error(t, err)
	assert.ErrorIs(t, err, hgcalhistory.ErrInvalidConstruction)

	_, err = New(HGCalLayers(), hgcalZPos, hgcalZNeg[:27])
	assert.ErrorIs(t, err, hgcalhistory.ErrInvalidConstruction)

	_, err = New([]int{1, 1}, []float64{300, 301}, []float64{-300, -301})
	assert.ErrorIs(t, err, hgcalhistory.ErrInvalidConstruction)

	_, err = New([]int{1}, []float64{-1}, []float64{-300})
	assert.ErrorIs(t, err, hgcalhistory.ErrInvalidConstruction)

	_, err = New(nil, nil, nil)
	assert.ErrorIs(t, err, hgcalhistory.ErrInvalidConstruction)
}

func TestInDetectorBoundaries(t *testing.T) {
	d := MustHGCal()
	pos, neg := d.Envelope(Positive), d.Envelope(Negative)

	for _, z := range []float64{pos.Min, pos.Max, neg.Min, neg.Max, 340, -340} {
		assert.True(t, d.InDetector(z), "z=%v", z)
	}
	for _, z := range []float64{
		math.Nextafter(pos.Min, 0), math.Nextafter(pos.Max, 1000),
		math.Nextafter(neg.Min, -1000), math.Nextafter(neg.Max, 0),
		0, 100, -100, 500, -500,
	} {
		assert.False(t, d.InDetector(z), "z=%v", z)
	}
}

func TestExcluded(t *testing.T) {
	d := MustHGCal()

	tests := []struct {
		name             string
		trackZ, vertexZ  float64
		expectedExcluded bool
	}{
		{"both in front positive", 100, 50, true},
		{"both beyond positive", 400, 380, true},
		{"track in front vertex inside", 100, 330, false},
		{"track beyond vertex in front", 400, 10, false},
		{"track inside", 330, 0, false},
		{"both in front negative", -100, -50, true},
		{"both beyond negative", -400, -380, true},
		{"negative track in front vertex beyond", -100, -400, false},
		{"negative track inside", -330, -10, false},
		{"track at zero", 0, 500, false},
		{"track at zero vertex in front", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedExcluded, d.Excluded(tt.trackZ, tt.vertexZ))
		})
	}
}

func TestNearestLayer(t *testing.T) {
	d := MustHGCal()

	layer, endcap, ok := d.NearestLayer(322.2)
	require.True(t, ok)
	assert.Equal(t, 1, layer)
	assert.Equal(t, Positive, endcap)

	layer, endcap, ok = d.NearestLayer(-1000)
	require.True(t, ok)
	assert.Equal(t, 28, layer)
	assert.Equal(t, Negative, endcap)

	_, _, ok = d.NearestLayer(0)
	assert.False(t, ok)
}
