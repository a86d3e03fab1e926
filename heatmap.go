package hgcalhistory

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Canvas is a drawing surface for one output image. Each plot gets its own
// canvas from NewCanvas; canvases are never shared between plots.
type Canvas struct {
	img *vgimg.Canvas
	dc  draw.Canvas
}

func NewCanvas(width, height vg.Length) *Canvas {
	img := vgimg.New(width, height)
	return &Canvas{img: img, dc: draw.New(img)}
}

// HeatMapStyle controls how DrawHeatMap renders a grid.
type HeatMapStyle struct {
	Title  string
	XLabel string
	YLabel string
	// Min and Max bound the color scale. When Max <= Min the grid's own
	// range is used.
	Min, Max float64
	// ColorMap defaults to moreland's extended black body.
	ColorMap palette.ColorMap
}

// DrawHeatMap draws g with a vertical color bar on the right of the canvas.
// A grid without cells, or a color range that is not finite, is an error and
// nothing is drawn.
func (c *Canvas) DrawHeatMap(g plotter.GridXYZ, style HeatMapStyle) error {
	if cols, rows := g.Dims(); cols == 0 || rows == 0 {
		return Constructionf("heat map", "grid has %d columns and %d rows", cols, rows)
	}
	lo, hi := style.Min, style.Max
	if !(hi > lo) {
		lo, hi = gridRange(g)
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) {
		return Constructionf("heat map", "color range [%g, %g] is not finite", lo, hi)
	}

	colorMap := style.ColorMap
	if colorMap == nil {
		colorMap = moreland.ExtendedBlackBody()
	}
	colorMap.SetMin(lo)
	colorMap.SetMax(hi)

	size := c.dc.Max
	barWidth := size.X * 0.1
	dcMap := draw.Crop(c.dc, 0, -barWidth, 0, 0)
	dcBar := draw.Crop(c.dc, size.X-barWidth*0.75, 0, 0, 0)

	p := plot.New()
	p.Title.Text = style.Title
	p.X.Label.Text = style.XLabel
	p.Y.Label.Text = style.YLabel
	p.X.Tick.Marker = PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = PreciseTicks{NSuggestedTicks: 5}

	heatMap := plotter.NewHeatMap(g, colorMap.Palette(1000))
	heatMap.Min = lo
	heatMap.Max = hi
	heatMap.Underflow = color.Transparent
	p.Add(heatMap)
	p.Draw(dcMap)

	p = plot.New()
	colorBar := &plotter.ColorBar{ColorMap: colorMap}
	colorBar.Vertical = true
	p.Add(colorBar)
	p.HideX()
	p.Y.Padding = 0
	p.Draw(dcBar)
	return nil
}

// SavePNG writes the canvas to filename.
func (c *Canvas) SavePNG(filename string) error {
	w, err := os.Create(filename)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: c.img}
	if _, err := png.WriteTo(w); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return w.Close()
}

func gridRange(g plotter.GridXYZ) (float64, float64) {
	c, r := g.Dims()
	lo, hi := 0.0, 0.0
	for i := 0; i < c; i++ {
		for j := 0; j < r; j++ {
			z := g.Z(i, j)
			if z < lo {
				lo = z
			}
			if z > hi {
				hi = z
			}
		}
	}
	if !(hi > lo) {
		hi = lo + 1
	}
	return lo, hi
}
