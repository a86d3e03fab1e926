// Package geometry holds the layer-to-z tables of the two calorimeter
// endcaps and the coarse envelope tests built on them.
package geometry

import (
	"math"
	"sort"

	"github.com/decibelcooper/hgcalhistory"
)

type Endcap int

const (
	Positive Endcap = iota
	Negative
)

func (e Endcap) String() string {
	switch e {
	case Positive:
		return "+"
	case Negative:
		return "-"
	default:
		return "?"
	}
}

// Envelope is the inclusive z extent of one endcap.
type Envelope struct {
	Min, Max float64
}

func (e Envelope) Contains(z float64) bool {
	return z >= e.Min && z <= e.Max
}

type layerTable struct {
	index map[int]float64
	// layers sorted by z for NearestLayer.
	byZ      []int
	envelope Envelope
}

func newLayerTable(endcap Endcap, layers []int, zs []float64) (layerTable, error) {
	what := "layer table " + endcap.String()
	if len(layers) == 0 {
		return layerTable{}, hgcalhistory.Constructionf(what, "no layers")
	}
	if len(layers) != len(zs) {
		return layerTable{}, hgcalhistory.Constructionf(what, "%d layers but %d z positions", len(layers), len(zs))
	}

	t := layerTable{
		index:    make(map[int]float64, len(layers)),
		byZ:      make([]int, 0, len(layers)),
		envelope: Envelope{Min: math.Inf(1), Max: math.Inf(-1)},
	}
	for i, layer := range layers {
		z := zs[i]
		if math.IsNaN(z) || math.IsInf(z, 0) {
			return layerTable{}, hgcalhistory.Constructionf(what, "layer %d has non-finite z %v", layer, z)
		}
		if _, dup := t.index[layer]; dup {
			return layerTable{}, hgcalhistory.Constructionf(what, "layer %d registered twice", layer)
		}
		t.index[layer] = z
		t.byZ = append(t.byZ, layer)
		t.envelope.Min = math.Min(t.envelope.Min, z)
		t.envelope.Max = math.Max(t.envelope.Max, z)
	}
	sort.Slice(t.byZ, func(a, b int) bool { return t.index[t.byZ[a]] < t.index[t.byZ[b]] })
	return t, nil
}

// Detector is the immutable pair of endcap tables.
type Detector struct {
	pos, neg layerTable
}

// New builds a detector from the registered layer numbers and the z position
// of each layer in the positive and negative endcap. The three slices must
// have the same length; a mismatch is an ErrInvalidConstruction rather than a
// silent truncation.
func New(layers []int, zPos, zNeg []float64) (*Detector, error) {
	pos, err := newLayerTable(Positive, layers, zPos)
	if err != nil {
		return nil, err
	}
	neg, err := newLayerTable(Negative, layers, zNeg)
	if err != nil {
		return nil, err
	}
	if pos.envelope.Min <= 0 {
		return nil, hgcalhistory.Constructionf("detector", "positive endcap reaches z=%g", pos.envelope.Min)
	}
	if neg.envelope.Max >= 0 {
		return nil, hgcalhistory.Constructionf("detector", "negative endcap reaches z=%g", neg.envelope.Max)
	}
	return &Detector{pos: pos, neg: neg}, nil
}

func (d *Detector) table(endcap Endcap) *layerTable {
	if endcap == Negative {
		return &d.neg
	}
	return &d.pos
}

// ZForLayer returns the z position of layer in the given endcap, or an
// error wrapping ErrOutOfRange when the layer is not registered.
func (d *Detector) ZForLayer(layer int, endcap Endcap) (float64, error) {
	if endcap != Positive && endcap != Negative {
		return 0, &hgcalhistory.LayerError{Layer: layer, Endcap: endcap.String()}
	}
	z, ok := d.table(endcap).index[layer]
	if !ok {
		return 0, &hgcalhistory.LayerError{Layer: layer, Endcap: endcap.String()}
	}
	return z, nil
}

// Layers returns the registered layer numbers of an endcap in z order.
func (d *Detector) Layers(endcap Endcap) []int {
	return append([]int(nil), d.table(endcap).byZ...)
}

func (d *Detector) Envelope(endcap Endcap) Envelope {
	return d.table(endcap).envelope
}

// InDetector reports whether z lies within the inclusive envelope of either
// endcap. It does not check individual layers.
func (d *Detector) InDetector(z float64) bool {
	return d.pos.envelope.Contains(z) || d.neg.envelope.Contains(z)
}

// Excluded applies the track/vertex geometry cut. A track is excluded when
// both it and its production vertex sit on the same side outside the envelope
// of the endcap the track points to: both in front of it or both beyond it.
// Tracks at z == 0 are never excluded.
func (d *Detector) Excluded(trackZ, vertexZ float64) bool {
	var env Envelope
	switch {
	case trackZ > 0:
		env = d.pos.envelope
	case trackZ < 0:
		env = d.neg.envelope
	default:
		return false
	}
	below := trackZ < env.Min && vertexZ < env.Min
	above := trackZ > env.Max && vertexZ > env.Max
	return below || above
}

// NearestLayer returns the layer whose z is closest to z, searching the
// endcap on the same side. ok is false for z == 0.
func (d *Detector) NearestLayer(z float64) (layer int, endcap Endcap, ok bool) {
	switch {
	case z > 0:
		endcap = Positive
	case z < 0:
		endcap = Negative
	default:
		return 0, Positive, false
	}
	t := d.table(endcap)
	best, bestDist := 0, math.Inf(1)
	for _, l := range t.byZ {
		if dist := math.Abs(t.index[l] - z); dist < bestDist {
			best, bestDist = l, dist
		}
	}
	return best, endcap, true
}
