package process

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decibelcooper/hgcalhistory/columnar"
	"github.com/decibelcooper/hgcalhistory/event"
	"github.com/decibelcooper/hgcalhistory/grid"
	"github.com/decibelcooper/hgcalhistory/source"
)

func testSource(n int) source.Source {
	recs := make([]event.Records, n)
	for i := range recs {
		z := 322.5 + float64(i%20)
		recs[i] = event.FromEntities(
			[]event.Track{
				{TrackID: int64(i + 1), PDG: 22, Pos: event.Point{X: 1, Y: 1, Z: z}, VertexIdx: 0},
				{TrackID: int64(i + 2), PDG: 11, Pos: event.Point{X: 2, Y: 1, Z: z}, VertexIdx: event.NoVertex},
			},
			[]event.Vertex{{VertexID: 0, ParentID: event.NoParent}},
			[]event.CaloHit{
				{Pos: event.Point{X: float64(i % 7), Y: 0, Z: z}, E: float64(i), Track: int64(i + 1), EE: true},
			},
		)
	}
	return source.NewMemory(recs)
}

func TestRunMergesWorkerStates(t *testing.T) {
	edges := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	const n = 100

	serial, err := grid.NewMaxProjection(edges, edges, grid.PDGLabels{}, grid.ProjectXY)
	require.NoError(t, err)
	require.NoError(t, source.Each(context.Background(), testSource(n), 0, n, func(_ int, ev *event.Event) error {
		serial.AddEvent(ev)
		return nil
	}))

	for _, workers := range []int{1, 3, 8} {
		states, err := Run(context.Background(), testSource(n), Options{Workers: workers},
			func() (*grid.MaxProjection, error) {
				return grid.NewMaxProjection(edges, edges, grid.PDGLabels{}, grid.ProjectXY)
			},
			func(m *grid.MaxProjection, _ int, ev *event.Event) error {
				m.AddEvent(ev)
				return nil
			})
		require.NoError(t, err)
		require.Len(t, states, workers)

		merged := states[0]
		for _, s := range states[1:] {
			require.NoError(t, merged.Merge(s))
		}
		assert.Equal(t, serial.Values().Export(), merged.Values().Export())
		assert.Equal(t, serial.Labels().Export(), merged.Labels().Export())
	}
}

func TestRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(context.Background(), testSource(50), Options{Workers: 4},
		func() (*int, error) { return new(int), nil },
		func(c *int, i int, _ *event.Event) error {
			if i == 10 {
				return boom
			}
			*c++
			return nil
		})
	assert.ErrorIs(t, err, boom)

	_, err = Run(context.Background(), testSource(5), Options{},
		func() (*int, error) { return nil, boom },
		func(*int, int, *event.Event) error { return nil })
	assert.ErrorIs(t, err, boom)
}

func TestMapKeepsEventOrder(t *testing.T) {
	p, err := columnar.New(columnar.Options{DropZeroOrigin: true, GeometryFilter: true})
	require.NoError(t, err)

	var (
		order []int
		rows  []columnar.TrackRow
		stats columnar.TrackStats
	)
	err = Map(context.Background(), testSource(60), Options{Workers: 6, Skip: 5, MaxEvents: 55},
		func(_ int, ev *event.Event) ([]columnar.TrackRow, error) {
			r, s := p.Tracks(ev)
			if s.Kept+s.Dropped() != s.Input {
				return nil, errors.New("row count mismatch")
			}
			return r, nil
		},
		func(i int, r []columnar.TrackRow) error {
			order = append(order, i)
			rows = append(rows, r...)
			stats.Kept += len(r)
			return nil
		})
	require.NoError(t, err)

	require.Len(t, order, 50)
	for k, i := range order {
		assert.Equal(t, k+5, i)
	}
	require.Len(t, rows, 50)
	for k, r := range rows {
		assert.Equal(t, float64(k+5+1), r[7])
	}
}

func TestMapStopsOnSinkError(t *testing.T) {
	boom := errors.New("boom")
	n := 0
	err := Map(context.Background(), testSource(100), Options{Workers: 3},
		func(i int, _ *event.Event) (int, error) { return i, nil },
		func(i int, _ int) error {
			n++
			if i == 20 {
				return boom
			}
			return nil
		})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 21, n)
}
