package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decibelcooper/hgcalhistory"
	"github.com/decibelcooper/hgcalhistory/event"
	"github.com/decibelcooper/hgcalhistory/geometry"
	"github.com/decibelcooper/hgcalhistory/source"
)

var (
	configFile = flag.String("config", "", "JSON configuration file")
	photons    = flag.Bool("photons", false, "only events with at least one photon")
	eeHits     = flag.Bool("ee", false, "only events with hits in the EE")
	verbosity  = flag.Int("v", -1, "verbosity, 0 to 2 (default from configuration)")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] [input-file-or-dir ...]

Walks track -> vertex -> parent track for every track of every event and
logs the result. Use -v 2 to see resolved links.

options:
`,
	)
	flag.PrintDefaults()
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
	if *verbosity >= 0 {
		config.Verbosity = *verbosity
	}

	logger := hgcalhistory.NewLogger(config.Verbosity)
	config.Log(logger)

	ctx := context.Background()
	det, err := geometry.FromConfiguration(ctx, config, logger)
	if err != nil {
		log.Fatal(err)
	}
	src, err := source.FromConfiguration(ctx, config, det, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	totals := make(map[event.LinkStatus]int)
	selected := 0
	err = source.Each(ctx, src, config.Skip, config.MaxEvents, func(i int, ev *event.Event) error {
		if *photons && !ev.HasPhoton() {
			return nil
		}
		if *eeHits && !ev.HasHitsInEE() {
			return nil
		}
		selected++

		evLogger := logger.With("event", i)
		if box, ok := ev.BoundingBox(); ok {
			evLogger.Debug(fmt.Sprintf("Bounding box %v", box.Tuple()), "module", "decaychain")
		}
		ev.LogDecayChain(evLogger)
		for status, n := range event.ChainCounts(ev.DecayChain()) {
			totals[status] += n
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d events: %d tracks without vertex, %d primary, %d with parent, %d broken\n",
		selected,
		totals[event.ChainNoVertex],
		totals[event.ChainPrimary],
		totals[event.ChainParent],
		totals[event.ChainBroken],
	)
}
