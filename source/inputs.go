package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/decibelcooper/hgcalhistory/event"
	"github.com/decibelcooper/hgcalhistory/geometry"
)

const (
	FormatAuto   = "auto"
	FormatProio  = "proio"
	FormatNtuple = "root"
)

// FormatOf returns the format implied by the file extension, or "" when the
// extension is not known.
func FormatOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".proio":
		return FormatProio
	case ".root":
		return FormatNtuple
	default:
		return ""
	}
}

// ListInputs expands inputs into local event files. Directories and remote
// prefixes are searched recursively for files with a known extension;
// remote objects are fetched through reg. Named files are kept whatever
// their extension.
func ListInputs(ctx context.Context, inputs []string, reg *Registry, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var files []string
	for _, in := range inputs {
		if IsRemote(in) {
			remote, err := listRemote(ctx, in, reg)
			if err != nil {
				return nil, err
			}
			files = append(files, remote...)
			continue
		}

		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, in)
			continue
		}
		err = filepath.WalkDir(in, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && FormatOf(p) != "" {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", in, err)
		}
	}

	if len(files) == 0 {
		logger.Warn(fmt.Sprintf("No event files found in %v", inputs), "module", "source")
	}
	return files, nil
}

func listRemote(ctx context.Context, raw string, reg *Registry) ([]string, error) {
	if reg == nil {
		return nil, fmt.Errorf("%s: no object store configured", raw)
	}
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}

	locs := []Location{loc}
	if FormatOf(loc.Key) == "" {
		all, err := reg.List(ctx, loc)
		if err != nil {
			return nil, err
		}
		locs = locs[:0]
		for _, l := range all {
			if FormatOf(l.Key) != "" {
				locs = append(locs, l)
			}
		}
	}

	files := make([]string, 0, len(locs))
	for _, l := range locs {
		local, err := reg.Fetch(ctx, l)
		if err != nil {
			return nil, err
		}
		files = append(files, local)
	}
	return files, nil
}

type OpenOptions struct {
	// Format is FormatAuto, FormatProio or FormatNtuple.
	Format   string
	TreeName string
	// Detector assigns layers to proio hits.
	Detector  *geometry.Detector
	ProioTags ProioTags
	Event     []event.Option
}

// Open opens one local file.
func Open(name string, opts OpenOptions) (Source, error) {
	format := opts.Format
	if format == "" || format == FormatAuto {
		format = FormatOf(name)
	}
	switch format {
	case FormatProio:
		tags := opts.ProioTags
		if tags == (ProioTags{}) {
			tags = DefaultProioTags()
		}
		return OpenProio(name, opts.Detector, tags, opts.Event...)
	case FormatNtuple:
		return OpenNtuple(name, opts.TreeName, opts.Event...)
	default:
		return nil, fmt.Errorf("%s: unknown event file format %q", name, format)
	}
}

// OpenAll opens every file and chains them in order. Sources opened before
// a failure are closed.
func OpenAll(names []string, opts OpenOptions) (Source, error) {
	srcs := make([]Source, 0, len(names))
	for _, name := range names {
		src, err := Open(name, opts)
		if err != nil {
			Concat(srcs...).Close()
			return nil, err
		}
		srcs = append(srcs, src)
	}
	return Concat(srcs...), nil
}
