package event

import (
	"gonum.org/v1/gonum/floats"
)

// PositionCollection holds the coordinates of a set of points column-wise.
type PositionCollection struct {
	X, Y, Z []float64
}

func (c *PositionCollection) Add(p Point) {
	c.X = append(c.X, p.X)
	c.Y = append(c.Y, p.Y)
	c.Z = append(c.Z, p.Z)
}

func (c *PositionCollection) Len() int { return len(c.X) }

// Box is an axis-aligned bounding box.
type Box struct {
	XMin, YMin, ZMin float64
	XMax, YMax, ZMax float64
}

// Tuple returns (xmin, ymin, zmin, xmax, ymax, zmax).
func (b Box) Tuple() [6]float64 {
	return [6]float64{b.XMin, b.YMin, b.ZMin, b.XMax, b.YMax, b.ZMax}
}

func (b Box) union(o Box) Box {
	return Box{
		XMin: min(b.XMin, o.XMin), YMin: min(b.YMin, o.YMin), ZMin: min(b.ZMin, o.ZMin),
		XMax: max(b.XMax, o.XMax), YMax: max(b.YMax, o.YMax), ZMax: max(b.ZMax, o.ZMax),
	}
}

// MinMax returns the bounding box of the collection; ok is false when it is
// empty.
func (c *PositionCollection) MinMax() (b Box, ok bool) {
	if c.Len() == 0 {
		return Box{}, false
	}
	return Box{
		XMin: floats.Min(c.X), YMin: floats.Min(c.Y), ZMin: floats.Min(c.Z),
		XMax: floats.Max(c.X), YMax: floats.Max(c.Y), ZMax: floats.Max(c.Z),
	}, true
}

// Flat returns x, y, z interleaved, the layout expected by 3D markers.
func (c *PositionCollection) Flat() []float64 {
	out := make([]float64, 0, 3*c.Len())
	for i := range c.X {
		out = append(out, c.X[i], c.Y[i], c.Z[i])
	}
	return out
}

// TrackPositions returns the positions of all tracks. The collection is
// built on first use and shared afterwards; callers must not modify it.
func (e *Event) TrackPositions() *PositionCollection {
	e.trackPosOnce.Do(func() {
		c := &PositionCollection{}
		for _, t := range e.tracks {
			c.Add(t.Pos)
		}
		e.trackPos = c
	})
	return e.trackPos
}

// VertexPositions is TrackPositions for vertices.
func (e *Event) VertexPositions() *PositionCollection {
	e.vertexPosOnce.Do(func() {
		c := &PositionCollection{}
		for _, v := range e.vertices {
			c.Add(v.Pos)
		}
		e.vertexPos = c
	})
	return e.vertexPos
}

// BoundingBox spans every track and vertex position of the event.
func (e *Event) BoundingBox() (Box, bool) {
	tb, tok := e.TrackPositions().MinMax()
	vb, vok := e.VertexPositions().MinMax()
	switch {
	case tok && vok:
		return tb.union(vb), true
	case tok:
		return tb, true
	case vok:
		return vb, true
	default:
		return Box{}, false
	}
}
