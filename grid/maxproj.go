package grid

import (
	"github.com/decibelcooper/hgcalhistory"
	"github.com/decibelcooper/hgcalhistory/event"
)

// MaxProjection keeps, per cell, the largest value seen and the label of the
// contribution that set it. Cells start at zero, so only positive values are
// ever recorded.
type MaxProjection struct {
	values *Grid2D
	labels *Grid2D

	labeler    Labeler
	projection Projection
}

// NewMaxProjection builds an empty accumulator. A nil labeler selects
// PDGLabels.
func NewMaxProjection(xEdges, yEdges []float64, labeler Labeler, proj Projection) (*MaxProjection, error) {
	values, err := New(xEdges, yEdges)
	if err != nil {
		return nil, err
	}
	labels, err := New(xEdges, yEdges)
	if err != nil {
		return nil, err
	}
	if labeler == nil {
		labeler = PDGLabels{}
	}
	return &MaxProjection{values: values, labels: labels, labeler: labeler, projection: proj}, nil
}

// Update stores value and label in the cell nearest to (x, y) when value is
// strictly larger than what the cell holds. Equal values keep the earlier
// label. It reports whether the cell changed.
func (m *MaxProjection) Update(x, y, value float64, label int32) bool {
	i, j := m.values.Cell(x, y)
	return m.updateCell(i, j, value, label)
}

func (m *MaxProjection) updateCell(i, j int, value float64, label int32) bool {
	if !(value > m.values.Z(i, j)) {
		return false
	}
	m.values.set(i, j, value)
	m.labels.set(i, j, float64(label))
	return true
}

// AddHit projects h, labels it through the accumulator's Labeler and
// updates the cell with the hit energy.
func (m *MaxProjection) AddHit(ev *event.Event, h event.CaloHit) bool {
	label := m.labeler.Label(ev, h.Track)
	x, y := m.projection.Coords(h.Pos)
	return m.Update(x, y, h.E, label)
}

// AddEvent adds every hit of ev and returns how many cells changed.
func (m *MaxProjection) AddEvent(ev *event.Event) int {
	n := 0
	for i := 0; i < ev.NHits(); i++ {
		if m.AddHit(ev, ev.Hit(i)) {
			n++
		}
	}
	return n
}

func (m *MaxProjection) Values() *Grid2D        { return m.values }
func (m *MaxProjection) Projection() Projection { return m.projection }

// Labels returns the label grid. Cells that never received a value hold 0.
func (m *MaxProjection) Labels() *Grid2D { return m.labels }

// Label returns the label of bin (i, j) as stored by Update.
func (m *MaxProjection) Label(i, j int) (int32, error) {
	v, err := m.labels.Value(i, j)
	return int32(v), err
}

func (m *MaxProjection) Clear() {
	m.values.Clear()
	m.labels.Clear()
}

// Merge folds o into m cell by cell, taking o's value and label where it is
// strictly larger. Sequential labels are local to one accumulator, so
// merging is refused for them.
func (m *MaxProjection) Merge(o *MaxProjection) error {
	if _, ok := m.labeler.(*SequentialLabels); ok {
		return hgcalhistory.Constructionf("max projection", "sequential labels cannot be merged")
	}
	if _, ok := o.labeler.(*SequentialLabels); ok {
		return hgcalhistory.Constructionf("max projection", "sequential labels cannot be merged")
	}
	if !m.values.SameBinning(o.values) {
		return hgcalhistory.Constructionf("max projection", "cannot merge grids with different edges")
	}
	if o.projection != m.projection {
		return hgcalhistory.Constructionf("max projection", "cannot merge %s into %s projection", o.projection, m.projection)
	}
	if !o.values.Allocated() {
		return nil
	}
	nx, ny := m.values.Dims()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			m.updateCell(i, j, o.values.Z(i, j), int32(o.labels.Z(i, j)))
		}
	}
	return nil
}
