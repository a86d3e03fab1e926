package event

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decibelcooper/hgcalhistory"
)

func scenarioEvent(t *testing.T, opts ...Option) *Event {
	t.Helper()
	ev, err := New(FromEntities(
		[]Track{
			{TrackID: 1, PDG: 22, Pos: Point{1, 2, 330}, E: 10, VertexIdx: 0},
			{TrackID: 2, PDG: 11, Pos: Point{-1, 0, -330}, E: 5, VertexIdx: NoVertex},
		},
		[]Vertex{{VertexID: 0, Pos: Point{0, 0, 0}, ParentID: NoParent}},
		nil,
	), opts...)
	require.NoError(t, err)
	return ev
}

func TestVertexForTrack(t *testing.T) {
	ev := scenarioEvent(t)

	v, ok := ev.VertexForTrack(ev.Track(0))
	require.True(t, ok)
	assert.Equal(t, ev.Vertex(0), v)

	_, ok = ev.VertexForTrack(ev.Track(1))
	assert.False(t, ok)

	for _, tr := range ev.Tracks() {
		v, ok := ev.VertexForTrack(tr)
		assert.Equal(t, tr.VertexIdx != NoVertex, ok)
		if ok {
			assert.Equal(t, ev.Vertices()[tr.VertexIdx], v)
		}
	}
}

func TestDecayChainScenario(t *testing.T) {
	ev := scenarioEvent(t)

	links := ev.DecayChain()
	require.Len(t, links, 2)

	assert.Equal(t, int64(1), links[0].Track.TrackID)
	assert.Equal(t, ChainPrimary, links[0].Status)
	assert.Equal(t, int64(0), links[0].Vertex.VertexID)

	assert.Equal(t, int64(2), links[1].Track.TrackID)
	assert.Equal(t, ChainNoVertex, links[1].Status)
}

func TestDecayChainContinuesPastBrokenReference(t *testing.T) {
	ev, err := New(FromEntities(
		[]Track{
			{TrackID: 1, VertexIdx: 0},
			{TrackID: 2, VertexIdx: 1},
			{TrackID: 3, VertexIdx: 2},
		},
		[]Vertex{
			{VertexID: 0, ParentID: NoParent},
			{VertexID: 1, ParentID: 99},
			{VertexID: 2, ParentID: 1},
		},
		nil,
	))
	require.NoError(t, err)

	links := ev.DecayChain()
	require.Len(t, links, 3)
	assert.Equal(t, ChainPrimary, links[0].Status)
	assert.Equal(t, ChainBroken, links[1].Status)
	assert.ErrorIs(t, links[1].Err, hgcalhistory.ErrBrokenReference)
	assert.Equal(t, ChainParent, links[2].Status)
	assert.Equal(t, int64(1), links[2].Parent.TrackID)

	counts := ChainCounts(links)
	assert.Equal(t, 1, counts[ChainBroken])
	assert.Equal(t, 1, counts[ChainParent])
}

func TestParentTrackOf(t *testing.T) {
	ev, err := New(FromEntities(
		[]Track{{TrackID: 5, VertexIdx: NoVertex}},
		[]Vertex{
			{VertexID: 0, ParentID: NoParent},
			{VertexID: 1, ParentID: 5},
			{VertexID: 2, ParentID: 6},
		},
		nil,
	))
	require.NoError(t, err)

	_, ok, err := ev.ParentTrackOf(ev.Vertex(0))
	assert.False(t, ok)
	assert.NoError(t, err)

	p, ok, err := ev.ParentTrackOf(ev.Vertex(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(5), p.TrackID)

	_, ok, err = ev.ParentTrackOf(ev.Vertex(2))
	assert.False(t, ok)
	var br *hgcalhistory.BrokenReferenceError
	require.True(t, errors.As(err, &br))
	assert.Equal(t, int64(2), br.VertexID)
	assert.Equal(t, int64(6), br.ParentTrackID)

	_, ok = ev.LookupParentTrack(ev.Vertex(2))
	assert.False(t, ok)
}

func TestStrictAndTolerantLookups(t *testing.T) {
	ev := scenarioEvent(t)

	tr, err := ev.TrackByID(2)
	require.NoError(t, err)
	assert.Equal(t, int32(11), tr.PDG)

	_, err = ev.TrackByID(42)
	require.Error(t, err)
	assert.ErrorIs(t, err, hgcalhistory.ErrNotFound)
	var nf *hgcalhistory.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "track", nf.Kind)

	_, ok := ev.LookupTrack(42)
	assert.False(t, ok)

	v, err := ev.VertexByID(0)
	require.NoError(t, err)
	assert.Equal(t, NoParent, v.ParentID)

	_, err = ev.VertexByID(3)
	assert.ErrorIs(t, err, hgcalhistory.ErrNotFound)
	_, ok = ev.LookupVertex(3)
	assert.False(t, ok)
}

func TestNewRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		tracks   []Track
		vertices []Vertex
	}{
		{"vertex index past end", []Track{{TrackID: 1, VertexIdx: 1}}, []Vertex{{VertexID: 0}}},
		{"negative vertex index", []Track{{TrackID: 1, VertexIdx: -2}}, []Vertex{{VertexID: 0}}},
		{"duplicate track id", []Track{{TrackID: 1, VertexIdx: NoVertex}, {TrackID: 1, VertexIdx: NoVertex}}, nil},
		{"duplicate vertex id", nil, []Vertex{{VertexID: 3}, {VertexID: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := New(FromEntities(tt.tracks, tt.vertices, nil))
			assert.Nil(t, ev)
			assert.ErrorIs(t, err, hgcalhistory.ErrInvalidConstruction)
		})
	}
}

type rawTrack struct{ id int64 }

func (r rawTrack) ID() int64        { return r.id }
func (r rawTrack) PDGID() int32     { return 13 }
func (r rawTrack) Position() Point  { return Point{1, 1, 1} }
func (r rawTrack) Energy() float64  { return 2 }
func (r rawTrack) VertexIndex() int { return NoVertex }

func TestNewAcceptsRecordAdapters(t *testing.T) {
	ev, err := New(Records{Tracks: []TrackRecord{rawTrack{id: 7}}})
	require.NoError(t, err)

	tr, err := ev.TrackByID(7)
	require.NoError(t, err)
	assert.Equal(t, Track{TrackID: 7, PDG: 13, Pos: Point{1, 1, 1}, E: 2, VertexIdx: NoVertex}, tr)
}

func TestEventIsNotAliased(t *testing.T) {
	tracks := []Track{{TrackID: 1, VertexIdx: NoVertex}}
	ev, err := New(FromEntities(tracks, nil, nil))
	require.NoError(t, err)

	tracks[0].TrackID = 100
	got := ev.Tracks()
	got[0].TrackID = 200

	assert.Equal(t, int64(1), ev.Track(0).TrackID)
}

func TestZoneOf(t *testing.T) {
	tests := []struct {
		hit          CaloHit
		expectedZone Zone
		expectedOK   bool
	}{
		{CaloHit{EE: true}, ZoneEE, true},
		{CaloHit{HSi: true}, ZoneHSi, true},
		{CaloHit{HSc: true}, ZoneHSc, true},
		{CaloHit{}, ZoneUnknown, false},
		{CaloHit{EE: true, HSc: true}, ZoneUnknown, false},
		{CaloHit{EE: true, HSi: true, HSc: true}, ZoneUnknown, false},
	}
	for _, tt := range tests {
		zone, ok := ZoneOf(tt.hit)
		assert.Equal(t, tt.expectedZone, zone)
		assert.Equal(t, tt.expectedOK, ok)
	}

	var buf bytes.Buffer
	logger := slog.New(hgcalhistory.NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ev := scenarioEvent(t, WithLogger(logger))
	assert.Equal(t, ZoneUnknown, ev.ZoneOf(CaloHit{EE: true, HSi: true}))
	assert.Contains(t, buf.String(), "no unique detector zone")
}

func TestBoundingBox(t *testing.T) {
	ev := scenarioEvent(t)

	box, ok := ev.BoundingBox()
	require.True(t, ok)
	assert.Equal(t, [6]float64{-1, 0, -330, 1, 2, 330}, box.Tuple())

	tb, ok := ev.TrackPositions().MinMax()
	require.True(t, ok)
	assert.Equal(t, -330.0, tb.ZMin)
	assert.Same(t, ev.TrackPositions(), ev.TrackPositions())
	assert.Equal(t, []float64{1, 2, 330, -1, 0, -330}, ev.TrackPositions().Flat())

	empty, err := New(Records{})
	require.NoError(t, err)
	_, ok = empty.BoundingBox()
	assert.False(t, ok)
}

func TestEventPredicates(t *testing.T) {
	ev, err := New(FromEntities(
		[]Track{{TrackID: 1, PDG: 22, VertexIdx: NoVertex}},
		nil,
		[]CaloHit{{HSi: true}, {EE: true}},
	))
	require.NoError(t, err)
	assert.True(t, ev.HasPhoton())
	assert.True(t, ev.HasHitsInEE())

	ev, err = New(FromEntities([]Track{{TrackID: 1, PDG: 11, VertexIdx: NoVertex}}, nil, []CaloHit{{HSc: true}}))
	require.NoError(t, err)
	assert.False(t, ev.HasPhoton())
	assert.False(t, ev.HasHitsInEE())
}

func TestLogDecayChain(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(hgcalhistory.NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ev := scenarioEvent(t)
	ev.LogDecayChain(logger)

	out := buf.String()
	assert.Contains(t, out, "has vertex index match with <Vertex 0")
	assert.Contains(t, out, "which has no parent")
	assert.Contains(t, out, "<Track 2 pdgid=11")
	assert.Equal(t, 4, strings.Count(out, "\n"))
}

func TestFromColumns(t *testing.T) {
	r, err := FromColumns(
		TrackColumns{
			ID: []int64{1}, PDGID: []int32{22}, X: []float64{1}, Y: []float64{2}, Z: []float64{3},
			Energy: []float64{4}, VertexIndex: []int{0},
		},
		VertexColumns{ID: []int64{0}, X: []float64{0}, Y: []float64{0}, Z: []float64{0}, ParentTrackID: []int64{-1}},
		HitColumns{
			X: []float64{1}, Y: []float64{1}, Z: []float64{330}, Layer: []int{3}, Energy: []float64{0.1},
			Time: []float64{1.5}, TrackID: []int64{1}, ZoneFlags: []uint8{FlagHSi},
		},
	)
	require.NoError(t, err)

	ev, err := New(r)
	require.NoError(t, err)
	assert.Equal(t, ZoneHSi, ev.ZoneOf(ev.Hit(0)))
	assert.Equal(t, 3, ev.Hit(0).Lay)

	_, err = FromColumns(TrackColumns{ID: []int64{1, 2}, PDGID: []int32{1}}, VertexColumns{}, HitColumns{})
	assert.ErrorIs(t, err, hgcalhistory.ErrInvalidConstruction)
}

func TestPDGHelpers(t *testing.T) {
	assert.Equal(t, "mu", PDGTitle(-13))
	assert.Equal(t, "other", PDGTitle(2212))
	assert.Equal(t, PDGColor(11), PDGColor(-11))
	assert.Equal(t, otherColor, PDGColor(321))
}
