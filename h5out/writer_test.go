package h5out

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decibelcooper/hgcalhistory/columnar"
)

func TestWriterAppends(t *testing.T) {
	name := filepath.Join(t.TempDir(), "rows.h5")
	w, err := Create(name, 4)
	require.NoError(t, err)

	tracks := []columnar.TrackRow{
		{22, 1, 2, 330, 10, 0, 0, 1, -1},
		{11, -1, 0, -330, 1, 0, 1, 2, 1},
	}
	more := []columnar.TrackRow{{13, 0, 0, 0, 3, 1, 0, 3, 2}}
	hits := []columnar.HitRow{{1, 2, 331, 4, 0.1, 1, 22, 1, 0}}

	require.NoError(t, w.WriteTracks(tracks))
	require.NoError(t, w.WriteTracks(nil))
	require.NoError(t, w.WriteTracks(more))
	require.NoError(t, w.WriteHits(hits))

	nt, nh := w.Counts()
	assert.Equal(t, 3, nt)
	assert.Equal(t, 1, nh)
	require.NoError(t, w.Close())

	gotTracks, err := ReadTracks(name)
	require.NoError(t, err)
	assert.Equal(t, append(tracks, more...), gotTracks)

	gotHits, err := ReadHits(name)
	require.NoError(t, err)
	assert.Equal(t, hits, gotHits)
}

func TestWriterEmpty(t *testing.T) {
	name := filepath.Join(t.TempDir(), "empty.h5")
	w, err := Create(name, 0)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rows, err := ReadHits(name)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadTracks(filepath.Join(t.TempDir(), "missing.h5"))
	assert.Error(t, err)
}
