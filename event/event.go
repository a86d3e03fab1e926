// Package event models one simulated collision: its tracks, vertices and
// calorimeter hits, and the links between them.
//
// An Event is immutable once built. Id lookups are backed by indices
// computed in New, so they can be used inside per-hit loops.
package event

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/decibelcooper/hgcalhistory"
)

// Records are the raw collections of one event as delivered by a source.
type Records struct {
	Tracks   []TrackRecord
	Vertices []VertexRecord
	Hits     []CaloHitRecord
}

// FromEntities wraps value slices as Records.
func FromEntities(tracks []Track, vertices []Vertex, hits []CaloHit) Records {
	r := Records{
		Tracks:   make([]TrackRecord, len(tracks)),
		Vertices: make([]VertexRecord, len(vertices)),
		Hits:     make([]CaloHitRecord, len(hits)),
	}
	for i, t := range tracks {
		r.Tracks[i] = t
	}
	for i, v := range vertices {
		r.Vertices[i] = v
	}
	for i, h := range hits {
		r.Hits[i] = h
	}
	return r
}

type Option func(*Event)

// WithLogger sets the logger used for recovered conditions such as broken
// parent references and unclassified hits.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Event) {
		if logger != nil {
			e.logger = logger
		}
	}
}

type Event struct {
	tracks   []Track
	vertices []Vertex
	hits     []CaloHit

	trackIndex  map[int64]int
	vertexIndex map[int64]int

	logger *slog.Logger

	trackPosOnce  sync.Once
	trackPos      *PositionCollection
	vertexPosOnce sync.Once
	vertexPos     *PositionCollection
}

// New copies the records into an Event and indexes tracks and vertices by id.
// Duplicate ids and track vertex indices outside the vertex list are
// construction errors.
func New(r Records, opts ...Option) (*Event, error) {
	e := &Event{
		tracks:      make([]Track, len(r.Tracks)),
		vertices:    make([]Vertex, len(r.Vertices)),
		hits:        make([]CaloHit, len(r.Hits)),
		trackIndex:  make(map[int64]int, len(r.Tracks)),
		vertexIndex: make(map[int64]int, len(r.Vertices)),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	for i, rec := range r.Vertices {
		v := vertexFrom(rec)
		if _, dup := e.vertexIndex[v.VertexID]; dup {
			return nil, hgcalhistory.Constructionf("event", "duplicate vertex id %d", v.VertexID)
		}
		e.vertices[i] = v
		e.vertexIndex[v.VertexID] = i
	}
	for i, rec := range r.Tracks {
		t := trackFrom(rec)
		if _, dup := e.trackIndex[t.TrackID]; dup {
			return nil, hgcalhistory.Constructionf("event", "duplicate track id %d", t.TrackID)
		}
		if t.VertexIdx != NoVertex && (t.VertexIdx < 0 || t.VertexIdx >= len(e.vertices)) {
			return nil, hgcalhistory.Constructionf("event", "track %d: vertex index %d outside %d vertices",
				t.TrackID, t.VertexIdx, len(e.vertices))
		}
		e.tracks[i] = t
		e.trackIndex[t.TrackID] = i
	}
	for i, rec := range r.Hits {
		e.hits[i] = hitFrom(rec)
	}
	return e, nil
}

// Tracks returns a copy of the tracks in input order.
func (e *Event) Tracks() []Track { return slices.Clone(e.tracks) }

// Vertices returns a copy of the vertices in input order.
func (e *Event) Vertices() []Vertex { return slices.Clone(e.vertices) }

// Hits returns a copy of the calorimeter hits in input order.
func (e *Event) Hits() []CaloHit { return slices.Clone(e.hits) }

func (e *Event) NTracks() int   { return len(e.tracks) }
func (e *Event) NVertices() int { return len(e.vertices) }
func (e *Event) NHits() int     { return len(e.hits) }

func (e *Event) Track(i int) Track    { return e.tracks[i] }
func (e *Event) Vertex(i int) Vertex  { return e.vertices[i] }
func (e *Event) Hit(i int) CaloHit    { return e.hits[i] }
func (e *Event) Logger() *slog.Logger { return e.logger }

// TrackByID is the strict lookup: a miss is a *NotFoundError.
func (e *Event) TrackByID(id int64) (Track, error) {
	t, ok := e.LookupTrack(id)
	if !ok {
		return Track{}, &hgcalhistory.NotFoundError{Kind: "track", ID: id}
	}
	return t, nil
}

// LookupTrack is the tolerant lookup.
func (e *Event) LookupTrack(id int64) (Track, bool) {
	i, ok := e.trackIndex[id]
	if !ok {
		return Track{}, false
	}
	return e.tracks[i], true
}

// VertexByID is the strict lookup: a miss is a *NotFoundError.
func (e *Event) VertexByID(id int64) (Vertex, error) {
	v, ok := e.LookupVertex(id)
	if !ok {
		return Vertex{}, &hgcalhistory.NotFoundError{Kind: "vertex", ID: id}
	}
	return v, nil
}

// LookupVertex is the tolerant lookup.
func (e *Event) LookupVertex(id int64) (Vertex, bool) {
	i, ok := e.vertexIndex[id]
	if !ok {
		return Vertex{}, false
	}
	return e.vertices[i], true
}

// VertexForTrack returns the production vertex of t, found by position in
// the vertex list. ok is false when t has no vertex.
func (e *Event) VertexForTrack(t Track) (Vertex, bool) {
	if t.VertexIdx == NoVertex || t.VertexIdx < 0 || t.VertexIdx >= len(e.vertices) {
		return Vertex{}, false
	}
	return e.vertices[t.VertexIdx], true
}

// ParentTrackOf returns the track that produced v. For a primary vertex it
// returns ok=false and no error. A parent id that is not in the event yields
// a *BrokenReferenceError; callers walking the graph log it and continue.
func (e *Event) ParentTrackOf(v Vertex) (t Track, ok bool, err error) {
	if v.ParentID == NoParent {
		return Track{}, false, nil
	}
	t, ok = e.LookupTrack(v.ParentID)
	if !ok {
		return Track{}, false, &hgcalhistory.BrokenReferenceError{VertexID: v.VertexID, ParentTrackID: v.ParentID}
	}
	return t, true, nil
}

// LookupParentTrack is the tolerant form of ParentTrackOf.
func (e *Event) LookupParentTrack(v Vertex) (Track, bool) {
	t, ok, _ := e.ParentTrackOf(v)
	return t, ok
}

// ZoneOf classifies h and logs hits that do not carry exactly one zone flag.
func (e *Event) ZoneOf(h CaloHit) Zone {
	zone, ok := ZoneOf(h)
	if !ok {
		e.logger.Debug("hit has no unique detector zone",
			"module", "event", "ee", h.EE, "hsi", h.HSi, "hsc", h.HSc, "layer", h.Lay)
	}
	return zone
}

// HasPhoton reports whether any track is a photon.
func (e *Event) HasPhoton() bool {
	for _, t := range e.tracks {
		if t.PDG == 22 {
			return true
		}
	}
	return false
}

// HasHitsInEE reports whether any hit is flagged as electromagnetic endcap.
func (e *Event) HasHitsInEE() bool {
	for _, h := range e.hits {
		if h.EE {
			return true
		}
	}
	return false
}
