// Package h5out writes columnar track and hit rows to HDF5 files.
//
// Rows are appended to two extendible n×9 double datasets, rows/tracks and
// rows/hits, with the column order of package columnar.
package h5out

import (
	"fmt"

	"gonum.org/v1/hdf5"

	"github.com/decibelcooper/hgcalhistory/columnar"
)

const (
	GroupName   = "rows"
	TracksName  = "tracks"
	HitsName    = "hits"
	chunkRows   = 4096
	unlimitedHD = -1 // H5S_UNLIMITED
)

type Writer struct {
	file   *hdf5.File
	group  *hdf5.Group
	tracks *hdf5.Dataset
	hits   *hdf5.Dataset

	nTracks uint
	nHits   uint
}

// Create truncates filename and prepares both datasets. compression is the
// deflate level, 0 to disable.
func Create(filename string, compression int) (*Writer, error) {
	f, err := hdf5.CreateFile(filename, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", filename, err)
	}
	w := &Writer{file: f}

	if w.group, err = f.CreateGroup(GroupName); err != nil {
		w.Close()
		return nil, fmt.Errorf("create group %s: %w", GroupName, err)
	}
	if w.tracks, err = createTable(w.group, TracksName, compression); err != nil {
		w.Close()
		return nil, err
	}
	if w.hits, err = createTable(w.group, HitsName, compression); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func createTable(group *hdf5.Group, name string, compression int) (*hdf5.Dataset, error) {
	unlimited := unlimitedHD
	dims := []uint{0, columnar.Width}
	maxDims := []uint{uint(unlimited), columnar.Width}
	space, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, fmt.Errorf("%s dataspace: %w", name, err)
	}
	defer space.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, fmt.Errorf("%s property list: %w", name, err)
	}
	defer plist.Close()
	if err := plist.SetChunk([]uint{chunkRows, columnar.Width}); err != nil {
		return nil, fmt.Errorf("%s chunking: %w", name, err)
	}
	if compression > 0 {
		if err := plist.SetDeflate(compression); err != nil {
			return nil, fmt.Errorf("%s compression: %w", name, err)
		}
	}

	dset, err := group.CreateDatasetWith(name, hdf5.T_NATIVE_DOUBLE, space, plist)
	if err != nil {
		return nil, fmt.Errorf("create dataset %s: %w", name, err)
	}
	return dset, nil
}

// appendRows extends dset by len(flat)/Width rows starting at row *n.
func appendRows(dset *hdf5.Dataset, n *uint, flat []float64) error {
	count := uint(len(flat) / columnar.Width)
	if count == 0 {
		return nil
	}
	if err := dset.Resize([]uint{*n + count, columnar.Width}); err != nil {
		return fmt.Errorf("resize %s: %w", dset.Name(), err)
	}

	filespace := dset.Space()
	defer filespace.Close()
	if err := filespace.SelectHyperslab([]uint{*n, 0}, nil, []uint{count, columnar.Width}, nil); err != nil {
		return err
	}
	memspace, err := hdf5.CreateSimpleDataspace([]uint{count, columnar.Width}, nil)
	if err != nil {
		return err
	}
	defer memspace.Close()

	if err := dset.WriteSubset(&flat, memspace, filespace); err != nil {
		return fmt.Errorf("write %s: %w", dset.Name(), err)
	}
	*n += count
	return nil
}

func (w *Writer) WriteTracks(rows []columnar.TrackRow) error {
	return appendRows(w.tracks, &w.nTracks, columnar.Flatten(rows))
}

func (w *Writer) WriteHits(rows []columnar.HitRow) error {
	return appendRows(w.hits, &w.nHits, columnar.Flatten(rows))
}

// Counts returns the number of rows written so far.
func (w *Writer) Counts() (tracks, hits int) {
	return int(w.nTracks), int(w.nHits)
}

func (w *Writer) Close() error {
	var firstErr error
	closeOne := func(c interface{ Close() error }) {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if w.tracks != nil {
		closeOne(w.tracks)
	}
	if w.hits != nil {
		closeOne(w.hits)
	}
	if w.group != nil {
		closeOne(w.group)
	}
	closeOne(w.file)
	return firstErr
}

func readTable(filename, name string) ([]float64, error) {
	f, err := hdf5.OpenFile(filename, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	dset, err := f.OpenDataset(GroupName + "/" + name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	defer dset.Close()

	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, err
	}
	if len(dims) != 2 || dims[1] != columnar.Width {
		return nil, fmt.Errorf("%s: %s has shape %v", filename, name, dims)
	}
	data := make([]float64, dims[0]*dims[1])
	if len(data) == 0 {
		return data, nil
	}
	if err := dset.Read(&data); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// ReadTracks reads back every track row of a file written by Writer.
func ReadTracks(filename string) ([]columnar.TrackRow, error) {
	data, err := readTable(filename, TracksName)
	if err != nil {
		return nil, err
	}
	rows := make([]columnar.TrackRow, len(data)/columnar.Width)
	for i := range rows {
		copy(rows[i][:], data[i*columnar.Width:])
	}
	return rows, nil
}

// ReadHits reads back every hit row of a file written by Writer.
func ReadHits(filename string) ([]columnar.HitRow, error) {
	data, err := readTable(filename, HitsName)
	if err != nil {
		return nil, err
	}
	rows := make([]columnar.HitRow, len(data)/columnar.Width)
	for i := range rows {
		copy(rows[i][:], data[i*columnar.Width:])
	}
	return rows, nil
}
