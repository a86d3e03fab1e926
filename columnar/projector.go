// Package columnar flattens events into fixed-width numeric rows for export.
package columnar

import (
	"log/slog"

	"github.com/decibelcooper/hgcalhistory/event"
	"github.com/decibelcooper/hgcalhistory/geometry"
)

// TrackColumns names the columns of a TrackRow.
var TrackColumns = []string{"track_x", "track_y", "track_z", "vertex_x", "vertex_y", "vertex_z", "pdgid", "track_id", "vertex_id"}

// HitColumns names the columns of a HitRow.
var HitColumns = []string{"x", "y", "z", "layer", "time", "energy", "track_id", "zone", "pdgid"}

// Width is the number of columns of both row kinds.
const Width = 9

type TrackRow [Width]float64

type HitRow [Width]float64

type Options struct {
	// DropZeroOrigin drops tracks whose position is exactly (0,0,0).
	DropZeroOrigin bool
	// GeometryFilter drops tracks excluded by Detector.Excluded.
	GeometryFilter bool
	// HitEnvelopeFilter drops hits outside the detector envelope.
	HitEnvelopeFilter bool
	// Detector defaults to the built-in HGCAL tables.
	Detector *geometry.Detector
	Logger   *slog.Logger
}

type Projector struct {
	opts Options
}

func New(opts Options) (*Projector, error) {
	if opts.Detector == nil {
		d, err := geometry.HGCal()
		if err != nil {
			return nil, err
		}
		opts.Detector = d
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Projector{opts: opts}, nil
}

// TrackStats counts what happened to the tracks of one or more events. Each
// dropped track is counted once, under the first filter it failed, in the
// order zero origin, unresolved vertex, geometry.
type TrackStats struct {
	Input            int
	Kept             int
	ZeroOrigin       int
	UnresolvedVertex int
	GeometryExcluded int
}

func (s TrackStats) Dropped() int {
	return s.ZeroOrigin + s.UnresolvedVertex + s.GeometryExcluded
}

func (s *TrackStats) Add(o TrackStats) {
	s.Input += o.Input
	s.Kept += o.Kept
	s.ZeroOrigin += o.ZeroOrigin
	s.UnresolvedVertex += o.UnresolvedVertex
	s.GeometryExcluded += o.GeometryExcluded
}

type HitStats struct {
	Input           int
	Kept            int
	OutsideEnvelope int
	// UnknownZone and Unresolved count kept hits written with zone code 0
	// and pdgid 0 respectively.
	UnknownZone int
	Unresolved  int
}

func (s *HitStats) Add(o HitStats) {
	s.Input += o.Input
	s.Kept += o.Kept
	s.OutsideEnvelope += o.OutsideEnvelope
	s.UnknownZone += o.UnknownZone
	s.Unresolved += o.Unresolved
}

// Tracks returns one row per kept track, in input order.
func (p *Projector) Tracks(ev *event.Event) ([]TrackRow, TrackStats) {
	stats := TrackStats{Input: ev.NTracks()}
	rows := make([]TrackRow, 0, ev.NTracks())

	for i := 0; i < ev.NTracks(); i++ {
		t := ev.Track(i)
		if p.opts.DropZeroOrigin && t.Pos.IsOrigin() {
			stats.ZeroOrigin++
			continue
		}
		v, ok := ev.VertexForTrack(t)
		if !ok {
			stats.UnresolvedVertex++
			continue
		}
		if p.opts.GeometryFilter && p.opts.Detector.Excluded(t.Pos.Z, v.Pos.Z) {
			stats.GeometryExcluded++
			continue
		}
		rows = append(rows, TrackRow{
			t.Pos.X, t.Pos.Y, t.Pos.Z,
			v.Pos.X, v.Pos.Y, v.Pos.Z,
			float64(t.PDG), float64(t.TrackID), float64(v.VertexID),
		})
	}
	stats.Kept = len(rows)

	if stats.Dropped() > 0 {
		p.opts.Logger.Debug("dropped tracks", "module", "columnar",
			"zero_origin", stats.ZeroOrigin, "no_vertex", stats.UnresolvedVertex, "geometry", stats.GeometryExcluded)
	}
	return rows, stats
}

// Hits returns one row per kept calorimeter hit, in input order. The pdgid
// column is 0 for hits without a track or whose track is not in the event.
func (p *Projector) Hits(ev *event.Event) ([]HitRow, HitStats) {
	stats := HitStats{Input: ev.NHits()}
	rows := make([]HitRow, 0, ev.NHits())

	for i := 0; i < ev.NHits(); i++ {
		h := ev.Hit(i)
		if p.opts.HitEnvelopeFilter && !p.opts.Detector.InDetector(h.Pos.Z) {
			stats.OutsideEnvelope++
			continue
		}

		zone := ev.ZoneOf(h)
		if zone == event.ZoneUnknown {
			stats.UnknownZone++
		}

		var pdgid int32
		if h.Track != event.NoTrack {
			if t, ok := ev.LookupTrack(h.Track); ok {
				pdgid = t.PDG
			}
		}
		if pdgid == 0 {
			stats.Unresolved++
		}

		rows = append(rows, HitRow{
			h.Pos.X, h.Pos.Y, h.Pos.Z,
			float64(h.Lay), h.T, h.E,
			float64(h.Track), float64(zone), float64(pdgid),
		})
	}
	stats.Kept = len(rows)
	return rows, stats
}

// Flatten lays rows out row-major, the layout of an n×9 dataset.
func Flatten[R TrackRow | HitRow](rows []R) []float64 {
	out := make([]float64, 0, len(rows)*Width)
	for _, r := range rows {
		for _, v := range r {
			out = append(out, v)
		}
	}
	return out
}
