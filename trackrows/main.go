package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/profile"

	"github.com/decibelcooper/hgcalhistory"
	"github.com/decibelcooper/hgcalhistory/columnar"
	"github.com/decibelcooper/hgcalhistory/event"
	"github.com/decibelcooper/hgcalhistory/geometry"
	"github.com/decibelcooper/hgcalhistory/h5out"
	"github.com/decibelcooper/hgcalhistory/process"
	"github.com/decibelcooper/hgcalhistory/source"
)

var (
	configFile = flag.String("config", "", "JSON configuration file")
	output     = flag.String("output", "", "output HDF5 file (default from configuration)")
	workers    = flag.Int("workers", 0, "number of workers (default from configuration)")
	noHits     = flag.Bool("nohits", false, "only write track rows")
	cpuProfile = flag.Bool("profile", false, "write a CPU profile to the working directory")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] [input-file-or-dir ...]

Writes one row per track and one row per calorimeter hit to an HDF5 file.
Filters are set in the configuration file or with HGCAL_* variables.

options:
`,
	)
	flag.PrintDefaults()
}

type eventRows struct {
	tracks     []columnar.TrackRow
	hits       []columnar.HitRow
	trackStats columnar.TrackStats
	hitStats   columnar.HitStats
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	config, err := hgcalhistory.LoadConfiguration(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if flag.NArg() > 0 {
		config.Inputs = flag.Args()
	}
	if len(config.Inputs) == 0 {
		printUsage()
		log.Fatal("Invalid arguments")
	}
	if *output != "" {
		config.Output = *output
	}
	if *workers > 0 {
		config.NumWorkers = *workers
	}

	logger := hgcalhistory.NewLogger(config.Verbosity)
	config.Log(logger)

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	ctx := context.Background()
	det, err := geometry.FromConfiguration(ctx, config, logger)
	if err != nil {
		log.Fatal(err)
	}
	projector, err := columnar.New(columnar.Options{
		DropZeroOrigin:    config.DropZeroOrigin,
		GeometryFilter:    config.GeometryFilter,
		HitEnvelopeFilter: config.HitEnvelopeFilter,
		Detector:          det,
		Logger:            logger,
	})
	if err != nil {
		log.Fatal(err)
	}

	src, err := source.FromConfiguration(ctx, config, det, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	w, err := h5out.Create(config.Output, config.CompressionLevel)
	if err != nil {
		log.Fatal(err)
	}

	var (
		trackStats columnar.TrackStats
		hitStats   columnar.HitStats
	)
	err = process.Map(ctx, src,
		process.Options{Workers: config.NumWorkers, Skip: config.Skip, MaxEvents: config.MaxEvents, Logger: logger},
		func(_ int, ev *event.Event) (eventRows, error) {
			var r eventRows
			r.tracks, r.trackStats = projector.Tracks(ev)
			if !*noHits {
				r.hits, r.hitStats = projector.Hits(ev)
			}
			return r, nil
		},
		func(_ int, r eventRows) error {
			trackStats.Add(r.trackStats)
			hitStats.Add(r.hitStats)
			if err := w.WriteTracks(r.tracks); err != nil {
				return err
			}
			return w.WriteHits(r.hits)
		})
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		hgcalhistory.Exitf("Error writing %s: %v", config.Output, err)
	}

	nTracks, nHits := w.Counts()
	fmt.Printf("%s: %d track rows, %d hit rows\n", config.Output, nTracks, nHits)
	fmt.Printf("tracks: %d in, %d kept, dropped %d zero origin, %d unresolved vertex, %d outside geometry\n",
		trackStats.Input, trackStats.Kept, trackStats.ZeroOrigin, trackStats.UnresolvedVertex, trackStats.GeometryExcluded)
	if !*noHits {
		fmt.Printf("hits: %d in, %d kept, dropped %d outside envelope; %d unknown zone, %d unresolved track\n",
			hitStats.Input, hitStats.Kept, hitStats.OutsideEnvelope, hitStats.UnknownZone, hitStats.Unresolved)
	}
}
