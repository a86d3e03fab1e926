package source

import (
	"context"
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/decibelcooper/hgcalhistory/event"
)

// DefaultTreeName is the tree read and written by the ntuple format.
const DefaultTreeName = "Events"

// ntupleRow is one entry of the flat event tree. Every collection is a set
// of variable length branches sharing a count branch.
type ntupleRow struct {
	NTrk   int32
	TrkID  []int64
	TrkPDG []int32
	TrkX   []float64
	TrkY   []float64
	TrkZ   []float64
	TrkE   []float64
	TrkVtx []int32

	NVtx      int32
	VtxID     []int64
	VtxX      []float64
	VtxY      []float64
	VtxZ      []float64
	VtxParent []int64

	NHit     int32
	HitX     []float64
	HitY     []float64
	HitZ     []float64
	HitLayer []int32
	HitE     []float64
	HitT     []float64
	HitTrack []int64
	HitZone  []uint8
}

func (r *ntupleRow) writeVars() []rtree.WriteVar {
	return []rtree.WriteVar{
		{Name: "ntrk", Value: &r.NTrk},
		{Name: "trk_id", Value: &r.TrkID, Count: "ntrk"},
		{Name: "trk_pdgid", Value: &r.TrkPDG, Count: "ntrk"},
		{Name: "trk_x", Value: &r.TrkX, Count: "ntrk"},
		{Name: "trk_y", Value: &r.TrkY, Count: "ntrk"},
		{Name: "trk_z", Value: &r.TrkZ, Count: "ntrk"},
		{Name: "trk_energy", Value: &r.TrkE, Count: "ntrk"},
		{Name: "trk_vtx", Value: &r.TrkVtx, Count: "ntrk"},

		{Name: "nvtx", Value: &r.NVtx},
		{Name: "vtx_id", Value: &r.VtxID, Count: "nvtx"},
		{Name: "vtx_x", Value: &r.VtxX, Count: "nvtx"},
		{Name: "vtx_y", Value: &r.VtxY, Count: "nvtx"},
		{Name: "vtx_z", Value: &r.VtxZ, Count: "nvtx"},
		{Name: "vtx_parent", Value: &r.VtxParent, Count: "nvtx"},

		{Name: "nhit", Value: &r.NHit},
		{Name: "hit_x", Value: &r.HitX, Count: "nhit"},
		{Name: "hit_y", Value: &r.HitY, Count: "nhit"},
		{Name: "hit_z", Value: &r.HitZ, Count: "nhit"},
		{Name: "hit_layer", Value: &r.HitLayer, Count: "nhit"},
		{Name: "hit_energy", Value: &r.HitE, Count: "nhit"},
		{Name: "hit_time", Value: &r.HitT, Count: "nhit"},
		{Name: "hit_track", Value: &r.HitTrack, Count: "nhit"},
		{Name: "hit_zoneflags", Value: &r.HitZone, Count: "nhit"},
	}
}

func (r *ntupleRow) readVars() []rtree.ReadVar {
	wvars := r.writeVars()
	rvars := make([]rtree.ReadVar, len(wvars))
	for i, w := range wvars {
		rvars[i] = rtree.ReadVar{Name: w.Name, Value: w.Value}
	}
	return rvars
}

func (r *ntupleRow) records() (event.Records, error) {
	vtx := make([]int, len(r.TrkVtx))
	for i, v := range r.TrkVtx {
		vtx[i] = int(v)
	}
	layers := make([]int, len(r.HitLayer))
	for i, l := range r.HitLayer {
		layers[i] = int(l)
	}
	return event.FromColumns(
		event.TrackColumns{
			ID: r.TrkID, PDGID: r.TrkPDG, X: r.TrkX, Y: r.TrkY, Z: r.TrkZ,
			Energy: r.TrkE, VertexIndex: vtx,
		},
		event.VertexColumns{
			ID: r.VtxID, X: r.VtxX, Y: r.VtxY, Z: r.VtxZ, ParentTrackID: r.VtxParent,
		},
		event.HitColumns{
			X: r.HitX, Y: r.HitY, Z: r.HitZ, Layer: layers, Energy: r.HitE, Time: r.HitT,
			TrackID: r.HitTrack, ZoneFlags: r.HitZone,
		},
	)
}

func (r *ntupleRow) fill(ev *event.Event) {
	*r = ntupleRow{}
	for _, t := range ev.Tracks() {
		r.TrkID = append(r.TrkID, t.TrackID)
		r.TrkPDG = append(r.TrkPDG, t.PDG)
		r.TrkX = append(r.TrkX, t.Pos.X)
		r.TrkY = append(r.TrkY, t.Pos.Y)
		r.TrkZ = append(r.TrkZ, t.Pos.Z)
		r.TrkE = append(r.TrkE, t.E)
		r.TrkVtx = append(r.TrkVtx, int32(t.VertexIdx))
	}
	for _, v := range ev.Vertices() {
		r.VtxID = append(r.VtxID, v.VertexID)
		r.VtxX = append(r.VtxX, v.Pos.X)
		r.VtxY = append(r.VtxY, v.Pos.Y)
		r.VtxZ = append(r.VtxZ, v.Pos.Z)
		r.VtxParent = append(r.VtxParent, v.ParentID)
	}
	for _, h := range ev.Hits() {
		var flags uint8
		if h.EE {
			flags |= event.FlagEE
		}
		if h.HSi {
			flags |= event.FlagHSi
		}
		if h.HSc {
			flags |= event.FlagHSc
		}
		r.HitX = append(r.HitX, h.Pos.X)
		r.HitY = append(r.HitY, h.Pos.Y)
		r.HitZ = append(r.HitZ, h.Pos.Z)
		r.HitLayer = append(r.HitLayer, int32(h.Lay))
		r.HitE = append(r.HitE, h.E)
		r.HitT = append(r.HitT, h.T)
		r.HitTrack = append(r.HitTrack, h.Track)
		r.HitZone = append(r.HitZone, flags)
	}
	r.NTrk = int32(len(r.TrkID))
	r.NVtx = int32(len(r.VtxID))
	r.NHit = int32(len(r.HitX))
}

// Ntuple reads events from a flat ROOT tree with one entry per event.
type Ntuple struct {
	f    *riofs.File
	tree rtree.Tree
	opts []event.Option
}

func OpenNtuple(filename, treeName string, opts ...event.Option) (*Ntuple, error) {
	if treeName == "" {
		treeName = DefaultTreeName
	}
	f, err := groot.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	obj, err := f.Get(treeName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		f.Close()
		return nil, fmt.Errorf("%s: %s is a %T, not a tree", filename, treeName, obj)
	}
	return &Ntuple{f: f, tree: tree, opts: opts}, nil
}

func (n *Ntuple) Len() int { return int(n.tree.Entries()) }

func (n *Ntuple) Get(i int) (*event.Event, error) {
	if i < 0 || i >= n.Len() {
		return nil, indexError(i, n.Len())
	}
	var ev *event.Event
	err := n.scan(context.Background(), i, i+1, func(_ int, e *event.Event) error {
		ev = e
		return nil
	})
	return ev, err
}

func (n *Ntuple) scan(ctx context.Context, beg, end int, fn func(i int, ev *event.Event) error) error {
	if beg >= end {
		return nil
	}
	var row ntupleRow
	r, err := rtree.NewReader(n.tree, row.readVars(), rtree.WithRange(int64(beg), int64(end)))
	if err != nil {
		return fmt.Errorf("create tree reader: %w", err)
	}
	defer r.Close()

	return r.Read(func(rctx rtree.RCtx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		i := int(rctx.Entry)
		recs, err := row.records()
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		ev, err := event.New(recs, n.opts...)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		return fn(i, ev)
	})
}

func (n *Ntuple) Close() error { return n.f.Close() }

// WriteNtuple writes events to a new ROOT file in the layout read by
// OpenNtuple.
func WriteNtuple(filename, treeName string, events []*event.Event) error {
	if treeName == "" {
		treeName = DefaultTreeName
	}
	f, err := groot.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	if err := writeTree(f, treeName, events); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTree(f *riofs.File, treeName string, events []*event.Event) error {
	var row ntupleRow
	w, err := rtree.NewWriter(f, treeName, row.writeVars(), rtree.WithTitle("simulated events"))
	if err != nil {
		return fmt.Errorf("create tree writer: %w", err)
	}
	for i, ev := range events {
		row.fill(ev)
		if _, err := w.Write(); err != nil {
			w.Close()
			return fmt.Errorf("write event %d: %w", i, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close tree writer: %w", err)
	}
	return nil
}
