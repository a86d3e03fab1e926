package event

import "github.com/decibelcooper/hgcalhistory"

// TrackColumns holds one event's tracks as parallel slices.
type TrackColumns struct {
	ID          []int64
	PDGID       []int32
	X, Y, Z     []float64
	Energy      []float64
	VertexIndex []int
}

type VertexColumns struct {
	ID            []int64
	X, Y, Z       []float64
	ParentTrackID []int64
}

// HitColumns carries the zone flags as a bit mask: 1 EE, 2 HSi, 4 HSc.
type HitColumns struct {
	X, Y, Z   []float64
	Layer     []int
	Energy    []float64
	Time      []float64
	TrackID   []int64
	ZoneFlags []uint8
}

const (
	FlagEE uint8 = 1 << iota
	FlagHSi
	FlagHSc
)

func sameLength(what string, n int, lengths ...int) error {
	for _, l := range lengths {
		if l != n {
			return hgcalhistory.Constructionf("event", "%s columns have lengths %v", what, append([]int{n}, lengths...))
		}
	}
	return nil
}

// FromColumns builds Records from column slices. Columns of one collection
// with unequal lengths are an ErrInvalidConstruction.
func FromColumns(tc TrackColumns, vc VertexColumns, hc HitColumns) (Records, error) {
	nt := len(tc.ID)
	if err := sameLength("track", nt, len(tc.PDGID), len(tc.X), len(tc.Y), len(tc.Z), len(tc.Energy), len(tc.VertexIndex)); err != nil {
		return Records{}, err
	}
	nv := len(vc.ID)
	if err := sameLength("vertex", nv, len(vc.X), len(vc.Y), len(vc.Z), len(vc.ParentTrackID)); err != nil {
		return Records{}, err
	}
	nh := len(hc.X)
	if err := sameLength("hit", nh, len(hc.Y), len(hc.Z), len(hc.Layer), len(hc.Energy), len(hc.Time), len(hc.TrackID), len(hc.ZoneFlags)); err != nil {
		return Records{}, err
	}

	r := Records{
		Tracks:   make([]TrackRecord, nt),
		Vertices: make([]VertexRecord, nv),
		Hits:     make([]CaloHitRecord, nh),
	}
	for i := 0; i < nt; i++ {
		r.Tracks[i] = Track{
			TrackID:   tc.ID[i],
			PDG:       tc.PDGID[i],
			Pos:       Point{X: tc.X[i], Y: tc.Y[i], Z: tc.Z[i]},
			E:         tc.Energy[i],
			VertexIdx: tc.VertexIndex[i],
		}
	}
	for i := 0; i < nv; i++ {
		r.Vertices[i] = Vertex{
			VertexID: vc.ID[i],
			Pos:      Point{X: vc.X[i], Y: vc.Y[i], Z: vc.Z[i]},
			ParentID: vc.ParentTrackID[i],
		}
	}
	for i := 0; i < nh; i++ {
		flags := hc.ZoneFlags[i]
		r.Hits[i] = CaloHit{
			Pos:   Point{X: hc.X[i], Y: hc.Y[i], Z: hc.Z[i]},
			Lay:   hc.Layer[i],
			E:     hc.Energy[i],
			T:     hc.Time[i],
			Track: hc.TrackID[i],
			EE:    flags&FlagEE != 0,
			HSi:   flags&FlagHSi != 0,
			HSc:   flags&FlagHSc != 0,
		}
	}
	return r, nil
}
