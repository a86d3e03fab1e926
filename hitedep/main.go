package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"strings"

	"github.com/pkg/profile"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/decibelcooper/hgcalhistory"
	"github.com/decibelcooper/hgcalhistory/event"
	"github.com/decibelcooper/hgcalhistory/geometry"
	"github.com/decibelcooper/hgcalhistory/process"
	"github.com/decibelcooper/hgcalhistory/source"
)

var (
	configFile = flag.String("config", "", "JSON configuration file")
	zone       = flag.String("zone", "all", "hits to histogram: all, EE, HSi, HSc, or split for one line per zone")
	nBins      = flag.Int("nbins", 100, "number of bins")
	logMin     = flag.Float64("min", -9, "lower edge in log_10(MeV)")
	logMax     = flag.Float64("max", 2, "upper edge in log_10(MeV)")
	workers    = flag.Int("workers", 0, "number of workers (default from configuration)")
	title      = flag.String("title", "", "plot title")
	output     = flag.String("output", "out.png", "output file")
	cpuProfile = flag.Bool("profile", false, "write a CPU profile to the working directory")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] [input-file-or-dir ...]

options:
`,
	)
	flag.PrintDefaults()
}

var zoneColors = map[event.Zone]color.RGBA{
	event.ZoneUnknown: {A: 255},
	event.ZoneEE:      {R: 255, A: 255},
	event.ZoneHSi:     {G: 160, A: 255},
	event.ZoneHSc:     {B: 255, A: 255},
}

// parseZone returns the zones that get their own histogram. A nil slice
// means a single histogram of all hits.
func parseZone(s string) ([]event.Zone, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return nil, nil
	case "ee":
		return []event.Zone{event.ZoneEE}, nil
	case "hsi":
		return []event.Zone{event.ZoneHSi}, nil
	case "hsc":
		return []event.Zone{event.ZoneHSc}, nil
	case "split":
		return []event.Zone{event.ZoneEE, event.ZoneHSi, event.ZoneHSc}, nil
	default:
		return nil, fmt.Errorf("unknown zone %q", s)
	}
}

// zoneValues holds log10 energies by zone code.
type zoneValues [4][]float64

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
	if *workers > 0 {
		config.NumWorkers = *workers
	}
	zones, err := parseZone(*zone)
	if err != nil {
		log.Fatal(err)
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
	src, err := source.FromConfiguration(ctx, config, det, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	hists := make(map[event.Zone]*hbook.H1D)
	if zones == nil {
		hists[event.ZoneUnknown] = hbook.NewH1D(*nBins, *logMin, *logMax)
	}
	for _, z := range zones {
		hists[z] = hbook.NewH1D(*nBins, *logMin, *logMax)
	}

	err = process.Map(ctx, src,
		process.Options{Workers: config.NumWorkers, Skip: config.Skip, MaxEvents: config.MaxEvents, Logger: logger},
		func(_ int, ev *event.Event) (zoneValues, error) {
			var values zoneValues
			for _, h := range ev.Hits() {
				if h.E <= 0 {
					continue
				}
				z := event.ZoneUnknown
				if zones != nil {
					z = ev.ZoneOf(h)
				}
				values[z] = append(values[z], math.Log10(h.E*1000))
			}
			return values, nil
		},
		func(_ int, values zoneValues) error {
			for z, vs := range values {
				hist, ok := hists[event.Zone(z)]
				if !ok {
					continue
				}
				for _, v := range vs {
					hist.Fill(v, 1)
				}
			}
			return nil
		})
	if err != nil {
		log.Fatal(err)
	}

	p := plot.New()
	p.Title.Text = *title
	p.X.Label.Text = "log_10{E dep. (MeV)}"
	p.X.Tick.Marker = hgcalhistory.PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Scale = plot.LogScale{}

	for _, z := range []event.Zone{event.ZoneUnknown, event.ZoneEE, event.ZoneHSi, event.ZoneHSc} {
		hist, ok := hists[z]
		if !ok {
			continue
		}
		logger.Info(fmt.Sprintf("Filled %d hits for zone %s", hist.Entries(), z), "module", "hitedep")

		h := hplot.NewH1D(hist, hplot.WithLogY(true))
		h.LineStyle.Color = zoneColors[z]
		if len(hists) == 1 {
			h.Infos.Style = hplot.HInfoSummary
		} else {
			p.Legend.Add(z.String(), h)
		}
		p.Add(h)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, *output); err != nil {
		log.Fatal(err)
	}
}
