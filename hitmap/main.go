package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"

	"github.com/pkg/profile"

	"github.com/decibelcooper/hgcalhistory"
	"github.com/decibelcooper/hgcalhistory/event"
	"github.com/decibelcooper/hgcalhistory/geometry"
	"github.com/decibelcooper/hgcalhistory/grid"
	"github.com/decibelcooper/hgcalhistory/process"
	"github.com/decibelcooper/hgcalhistory/rootout"
	"github.com/decibelcooper/hgcalhistory/source"
)

var (
	configFile = flag.String("config", "", "JSON configuration file")
	labels     = flag.String("labels", "", "label strategy, pdgid or sequential (default from configuration)")
	projection = flag.String("projection", "", "projection, xy, zx or zy (default from configuration)")
	workers    = flag.Int("workers", 0, "number of workers (default from configuration)")
	maxValue   = flag.Float64("maxvalue", 0, "upper limit of the color scale, 0 for the grid maximum")
	title      = flag.String("title", "", "plot title")
	output     = flag.String("output", "hitmap.png", "output image")
	rootFile   = flag.String("root", "", "also write the value and label grids to this ROOT file")
	cpuProfile = flag.Bool("profile", false, "write a CPU profile to the working directory")

	hEdges, vEdges hgcalhistory.FloatArrayFlags
)

func init() {
	flag.Var(&hEdges, "xedge", "horizontal bin edges, \"e0,e1,...\" or \"n:min:max\" (repeatable)")
	flag.Var(&vEdges, "yedge", "vertical bin edges, \"e0,e1,...\" or \"n:min:max\" (repeatable)")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] [input-file-or-dir ...]

Draws the highest calorimeter hit energy deposited in each bin of a 2D
projection, accumulated over all events.

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
	if *labels != "" {
		config.Labels = *labels
	}
	if *projection != "" {
		config.Projection = *projection
	}
	if *workers > 0 {
		config.NumWorkers = *workers
	}
	if len(hEdges.Array) > 0 {
		config.XEdges = hEdges.Array
	}
	if len(vEdges.Array) > 0 {
		config.YEdges = vEdges.Array
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
	proj, err := grid.ParseProjection(config.Projection)
	if err != nil {
		log.Fatal(err)
	}
	xs, ys := config.XEdges, config.YEdges
	if len(xs) == 0 || len(ys) == 0 {
		dxs, dys := defaultEdges(proj, det)
		if len(xs) == 0 {
			xs = dxs
		}
		if len(ys) == 0 {
			ys = dys
		}
	}

	// Sequential labels only mean something within one accumulator.
	if _, seq := mustLabeler(config.Labels).(*grid.SequentialLabels); seq && config.NumWorkers > 1 {
		logger.Warn("Sequential labels need a single worker, ignoring the worker count", "module", "hitmap")
		config.NumWorkers = 1
	}

	src, err := source.FromConfiguration(ctx, config, det, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	states, err := process.Run(ctx, src,
		process.Options{Workers: config.NumWorkers, Skip: config.Skip, MaxEvents: config.MaxEvents, Logger: logger},
		func() (*grid.MaxProjection, error) {
			return grid.NewMaxProjection(xs, ys, mustLabeler(config.Labels), proj)
		},
		func(m *grid.MaxProjection, i int, ev *event.Event) error {
			n := m.AddEvent(ev)
			logger.Debug(fmt.Sprintf("%d of %d hits updated a cell", n, ev.NHits()), "module", "hitmap", "event", i)
			return nil
		})
	if err != nil {
		log.Fatal(err)
	}

	merged := states[0]
	for _, s := range states[1:] {
		if err := merged.Merge(s); err != nil {
			log.Fatal(err)
		}
	}
	logLabels(logger, merged, config.Labels)

	hLabel, vLabel := proj.AxisLabels()
	canvas := hgcalhistory.NewCanvas(670, 400)
	err = canvas.DrawHeatMap(merged.Values(), hgcalhistory.HeatMapStyle{
		Title:  *title,
		XLabel: hLabel,
		YLabel: vLabel,
		Max:    *maxValue,
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := canvas.SavePNG(*output); err != nil {
		log.Fatal(err)
	}

	if *rootFile != "" {
		if err := rootout.WriteProjection(*rootFile, proj.String(), merged); err != nil {
			log.Fatal(err)
		}
	}
}

func mustLabeler(name string) grid.Labeler {
	l, err := grid.ParseLabeler(name)
	if err != nil {
		log.Fatal(err)
	}
	return l
}

// defaultEdges covers both endcaps along z and the calorimeter radius across.
func defaultEdges(proj grid.Projection, det *geometry.Detector) (h, v []float64) {
	const rMax = 260.0
	across, _ := hgcalhistory.UniformEdges(208, -rMax, rMax)
	along, _ := hgcalhistory.UniformEdges(400, det.Envelope(geometry.Negative).Min, det.Envelope(geometry.Positive).Max)
	if proj == grid.ProjectXY {
		return across, across
	}
	return along, across
}

func logLabels(logger *slog.Logger, m *grid.MaxProjection, strategy string) {
	counts := make(map[int32]int)
	nx, ny := m.Labels().Dims()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			if l, err := m.Label(i, j); err == nil && l != 0 {
				counts[l]++
			}
		}
	}

	keys := make([]int32, 0, len(counts))
	for l := range counts {
		keys = append(keys, l)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	for _, l := range keys {
		name := fmt.Sprint(l)
		if strategy == "pdgid" || strategy == "pdg" {
			name = fmt.Sprintf("%d (%s)", l, event.PDGTitle(l))
		}
		logger.Info(fmt.Sprintf("Label %s holds %d cells", name, counts[l]), "module", "hitmap")
	}
}
