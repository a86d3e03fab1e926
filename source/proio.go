package source

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/proio-org/go-proio"
	"github.com/proio-org/go-proio-pb/model/eic"

	"github.com/decibelcooper/hgcalhistory/event"
	"github.com/decibelcooper/hgcalhistory/geometry"
)

// ProioTags names the entry tags read from proio events.
type ProioTags struct {
	Particles string
	Hits      string
	EE        string
	HSi       string
	HSc       string
}

func DefaultProioTags() ProioTags {
	return ProioTags{
		Particles: "Particle",
		Hits:      "Calorimeter",
		EE:        "EE",
		HSi:       "HSi",
		HSc:       "HSc",
	}
}

// Proio reads events from a proio stream of eic model entries.
//
// Every particle becomes a track and a vertex at its production point; the
// vertex parent is the particle's first parent. A track's position is the
// production point of its first child that is in the event, or the origin
// for particles that do not decay. Calorimeter hits are EnergyDep entries,
// attributed to the particle of their first SimHit source and assigned to
// the nearest detector layer.
type Proio struct {
	mu       sync.Mutex
	filename string
	reader   *proio.Reader
	n        int
	// cursor is the index of the event returned by the next reader.Next.
	cursor int

	tags     ProioTags
	detector *geometry.Detector
	opts     []event.Option
}

func OpenProio(filename string, det *geometry.Detector, tags ProioTags, opts ...event.Option) (*Proio, error) {
	if det == nil {
		var err error
		if det, err = geometry.HGCal(); err != nil {
			return nil, err
		}
	}
	reader, err := proio.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}

	n, err := reader.Skip(math.MaxInt32)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		reader.Close()
		return nil, fmt.Errorf("count events in %s: %w", filename, err)
	}
	// SeekToStart reads the first bucket header, which an empty stream lacks.
	if n == 0 {
		return &Proio{filename: filename, reader: reader, tags: tags, detector: det, opts: opts}, nil
	}
	if err := reader.SeekToStart(); err != nil {
		reader.Close()
		return nil, fmt.Errorf("rewind %s: %w", filename, err)
	}

	return &Proio{
		filename: filename,
		reader:   reader,
		n:        int(n),
		tags:     tags,
		detector: det,
		opts:     opts,
	}, nil
}

func (p *Proio) Len() int { return p.n }

func (p *Proio) Get(i int) (*event.Event, error) {
	if i < 0 || i >= p.n {
		return nil, indexError(i, p.n)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if i != p.cursor {
		if err := p.reader.SeekToStart(); err != nil {
			return nil, err
		}
		p.cursor = 0
		if i > 0 {
			if _, err := p.reader.Skip(uint64(i)); err != nil {
				return nil, fmt.Errorf("%s: skip to event %d: %w", p.filename, i, err)
			}
		}
		p.cursor = i
	}

	evt, err := p.reader.Next()
	if err != nil {
		return nil, fmt.Errorf("%s: read event %d: %w", p.filename, i, err)
	}
	p.cursor++
	return p.convert(evt)
}

func (p *Proio) Close() error {
	p.reader.Close()
	return nil
}

func (p *Proio) tagged(evt *proio.Event, tag string) map[uint64]bool {
	ids := evt.TaggedEntries(tag)
	set := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (p *Proio) convert(evt *proio.Event) (*event.Event, error) {
	var (
		ids   []uint64
		parts = make(map[uint64]*eic.Particle)
	)
	for _, id := range evt.TaggedEntries(p.tags.Particles) {
		part, ok := evt.GetEntry(id).(*eic.Particle)
		if !ok {
			continue
		}
		ids = append(ids, id)
		parts[id] = part
	}

	tracks := make([]event.Track, 0, len(ids))
	vertices := make([]event.Vertex, 0, len(ids))
	for i, id := range ids {
		part := parts[id]

		parent := event.NoParent
		if len(part.GetParent()) > 0 {
			parent = int64(part.GetParent()[0])
		}
		vertices = append(vertices, event.Vertex{
			VertexID: int64(i),
			Pos:      vertexPoint(part),
			ParentID: parent,
		})

		var end event.Point
		for _, childID := range part.GetChild() {
			if child, ok := parts[childID]; ok {
				end = vertexPoint(child)
				break
			}
		}

		mom := part.GetP()
		px, py, pz := float64(mom.GetX()), float64(mom.GetY()), float64(mom.GetZ())
		mass := float64(part.GetMass())
		tracks = append(tracks, event.Track{
			TrackID:   int64(id),
			PDG:       int32(part.GetPdg()),
			Pos:       end,
			E:         math.Sqrt(px*px + py*py + pz*pz + mass*mass),
			VertexIdx: i,
		})
	}

	ee := p.tagged(evt, p.tags.EE)
	hsi := p.tagged(evt, p.tags.HSi)
	hsc := p.tagged(evt, p.tags.HSc)

	var hits []event.CaloHit
	for _, id := range evt.TaggedEntries(p.tags.Hits) {
		dep, ok := evt.GetEntry(id).(*eic.EnergyDep)
		if !ok || len(dep.GetPos()) == 0 || dep.GetPos()[0].GetMean() == nil {
			continue
		}
		pos := dep.GetPos()[0].GetMean()

		trackID := event.NoTrack
		for _, srcID := range dep.GetSource() {
			if simHit, ok := evt.GetEntry(srcID).(*eic.SimHit); ok {
				trackID = int64(simHit.GetParticle())
				break
			}
		}

		z := pos.GetZ()
		layer, _, _ := p.detector.NearestLayer(z)
		hits = append(hits, event.CaloHit{
			Pos:   event.Point{X: pos.GetX(), Y: pos.GetY(), Z: z},
			Lay:   layer,
			E:     float64(dep.GetMean()),
			T:     pos.GetT(),
			Track: trackID,
			EE:    ee[id],
			HSi:   hsi[id],
			HSc:   hsc[id],
		})
	}

	return event.New(event.FromEntities(tracks, vertices, hits), p.opts...)
}

func vertexPoint(part *eic.Particle) event.Point {
	v := part.GetVertex()
	return event.Point{X: v.GetX(), Y: v.GetY(), Z: v.GetZ()}
}
