package event

import "fmt"

// NoVertex is the VertexIndex of a track without a known production vertex.
const NoVertex = -1

// NoParent is the ParentTrackID of a primary vertex.
const NoParent int64 = -1

// NoTrack is the TrackID of a calorimeter hit not associated with a
// simulated track.
const NoTrack int64 = 0

type Point struct {
	X, Y, Z float64
}

func (p Point) IsOrigin() bool {
	return p.X == 0 && p.Y == 0 && p.Z == 0
}

// TrackRecord is the read-only view of a simulated track as delivered by an
// event source.
type TrackRecord interface {
	ID() int64
	PDGID() int32
	Position() Point
	Energy() float64
	VertexIndex() int
}

// VertexRecord is the read-only view of a simulated vertex.
type VertexRecord interface {
	ID() int64
	Position() Point
	ParentTrackID() int64
}

// CaloHitRecord is the read-only view of a calorimeter hit.
type CaloHitRecord interface {
	Position() Point
	Layer() int
	Energy() float64
	Time() float64
	TrackID() int64
	InEE() bool
	InHSi() bool
	InHSc() bool
}

// Track is a simulated track. Pos is where the track crosses the tracker
// surface.
type Track struct {
	TrackID   int64
	PDG       int32
	Pos       Point
	E         float64
	VertexIdx int
}

func (t Track) ID() int64        { return t.TrackID }
func (t Track) PDGID() int32     { return t.PDG }
func (t Track) Position() Point  { return t.Pos }
func (t Track) Energy() float64  { return t.E }
func (t Track) VertexIndex() int { return t.VertexIdx }

func (t Track) String() string {
	return fmt.Sprintf("<Track %d pdgid=%d x=%g y=%g z=%g>", t.TrackID, t.PDG, t.Pos.X, t.Pos.Y, t.Pos.Z)
}

type Vertex struct {
	VertexID int64
	Pos      Point
	ParentID int64
}

func (v Vertex) ID() int64            { return v.VertexID }
func (v Vertex) Position() Point      { return v.Pos }
func (v Vertex) ParentTrackID() int64 { return v.ParentID }

func (v Vertex) String() string {
	return fmt.Sprintf("<Vertex %d x=%g y=%g z=%g>", v.VertexID, v.Pos.X, v.Pos.Y, v.Pos.Z)
}

// Zone is the detector sub-volume of a calorimeter hit. The numeric value is
// the zone code written to hit rows.
type Zone int

const (
	ZoneUnknown Zone = iota
	ZoneEE
	ZoneHSi
	ZoneHSc
)

func (z Zone) String() string {
	switch z {
	case ZoneEE:
		return "EE"
	case ZoneHSi:
		return "HSi"
	case ZoneHSc:
		return "HSc"
	default:
		return "unknown"
	}
}

type CaloHit struct {
	Pos   Point
	Lay   int
	E     float64
	T     float64
	Track int64
	EE    bool
	HSi   bool
	HSc   bool
}

func (h CaloHit) Position() Point { return h.Pos }
func (h CaloHit) Layer() int      { return h.Lay }
func (h CaloHit) Energy() float64 { return h.E }
func (h CaloHit) Time() float64   { return h.T }
func (h CaloHit) TrackID() int64  { return h.Track }
func (h CaloHit) InEE() bool      { return h.EE }
func (h CaloHit) InHSi() bool     { return h.HSi }
func (h CaloHit) InHSc() bool     { return h.HSc }

// ZoneOf classifies a hit by its zone flags. ok is false, and the zone
// ZoneUnknown, unless exactly one flag is set.
func ZoneOf(h CaloHitRecord) (zone Zone, ok bool) {
	n := 0
	if h.InEE() {
		zone, n = ZoneEE, n+1
	}
	if h.InHSi() {
		zone, n = ZoneHSi, n+1
	}
	if h.InHSc() {
		zone, n = ZoneHSc, n+1
	}
	if n != 1 {
		return ZoneUnknown, false
	}
	return zone, true
}

func trackFrom(r TrackRecord) Track {
	if t, ok := r.(Track); ok {
		return t
	}
	return Track{TrackID: r.ID(), PDG: r.PDGID(), Pos: r.Position(), E: r.Energy(), VertexIdx: r.VertexIndex()}
}

func vertexFrom(r VertexRecord) Vertex {
	if v, ok := r.(Vertex); ok {
		return v
	}
	return Vertex{VertexID: r.ID(), Pos: r.Position(), ParentID: r.ParentTrackID()}
}

func hitFrom(r CaloHitRecord) CaloHit {
	if h, ok := r.(CaloHit); ok {
		return h
	}
	return CaloHit{
		Pos: r.Position(), Lay: r.Layer(), E: r.Energy(), T: r.Time(), Track: r.TrackID(),
		EE: r.InEE(), HSi: r.InHSi(), HSc: r.InHSc(),
	}
}
