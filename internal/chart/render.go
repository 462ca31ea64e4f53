// Package chart renders air-quality reports as static PNG bar charts.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/i474232898/aqi-dashboard/internal/airquality"
)

const (
	width         = 16 * vg.Inch
	height        = 7 * vg.Inch
	legendWidth   = 4.5 * vg.Inch
	captionHeight = 0.6 * vg.Inch
)

var fallbackColor = color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}

// palette ties each pollutant to one color so a pollutant keeps its color
// whichever subset is present.
var palette = map[airquality.Pollutant]color.RGBA{
	airquality.PollutantCO:   {R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	airquality.PollutantNO:   {R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	airquality.PollutantNO2:  {R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	airquality.PollutantO3:   {R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	airquality.PollutantSO2:  {R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	airquality.PollutantPM25: {R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	airquality.PollutantPM10: {R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
	airquality.PollutantNH3:  {R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
}

// ColorFor returns the bar color of a pollutant.
func ColorFor(p airquality.Pollutant) color.RGBA {
	if c, ok := palette[p]; ok {
		return c
	}
	return fallbackColor
}

// Caption returns the line printed under the chart.
func Caption(r airquality.Report) string {
	return fmt.Sprintf("Data captured on: %s (%s)", r.Timestamp, r.DisplayCity)
}

// LegendLines returns the static pollutant descriptions, one per pollutant in
// canonical order, independent of which pollutants a report contains.
func LegendLines() []string {
	lines := make([]string, 0, len(airquality.CanonicalOrder))
	for _, p := range airquality.CanonicalOrder {
		lines = append(lines, fmt.Sprintf("%s: %s", p, p.Description()))
	}
	return lines
}

// RenderPNG renders r and returns the encoded image.
func RenderPNG(r airquality.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render draws r as a PNG bar chart into w. A report without concentrations
// still gets axes, legend and caption.
func Render(w io.Writer, r airquality.Report) error {
	p, err := newPlot(r)
	if err != nil {
		return err
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)

	p.Draw(draw.Crop(dc, 0, -legendWidth, captionHeight, 0))
	drawLegend(dc, p.Legend.TextStyle)
	drawCaption(dc, p.X.Label.TextStyle, Caption(r))

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	return nil
}

func newPlot(r airquality.Report) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Air Pollutants Levels (μg/m³)"
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Title.Padding = vg.Points(15)
	p.X.Label.Text = "Pollutants"
	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Concentration (μg/m³)"
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)
	p.X.Tick.Label.Font.Size = vg.Points(12)
	p.Y.Tick.Label.Font.Size = vg.Points(12)

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(grid)

	names := make([]string, 0, len(r.Concentrations))
	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, 0, len(r.Concentrations)),
		Labels: make([]string, 0, len(r.Concentrations)),
	}

	var maxValue float64
	for i, c := range r.Concentrations {
		bar, err := plotter.NewBarChart(plotter.Values{c.Value}, vg.Points(40))
		if err != nil {
			return nil, fmt.Errorf("build bar for %s: %w", c.Code, err)
		}
		bar.XMin = float64(i)
		bar.Color = ColorFor(c.Code)
		bar.LineStyle.Color = color.Black
		bar.LineStyle.Width = vg.Points(1)
		p.Add(bar)

		names = append(names, string(c.Code))
		labels.XYs = append(labels.XYs, plotter.XY{X: float64(i), Y: c.Value})
		labels.Labels = append(labels.Labels, fmt.Sprintf("%.2f", c.Value))

		if c.Value > maxValue {
			maxValue = c.Value
		}
	}

	if len(names) == 0 {
		p.X.Min, p.X.Max = -0.5, 0.5
	} else {
		values, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, fmt.Errorf("build value labels: %w", err)
		}
		for i := range values.TextStyle {
			values.TextStyle[i].XAlign = text.XCenter
			values.TextStyle[i].Font.Size = vg.Points(10)
		}
		values.Offset = vg.Point{Y: vg.Points(3)}
		p.Add(values)
	}

	p.NominalX(names...)
	p.Y.Min = 0
	// Headroom for the value labels.
	p.Y.Max = maxValue*1.15 + 1

	return p, nil
}

func drawLegend(dc draw.Canvas, sty text.Style) {
	sty.Font.Size = vg.Points(10)
	sty.XAlign = text.XLeft

	lines := LegendLines()
	lineHeight := sty.Font.Size * 1.5
	x := dc.Max.X - legendWidth + vg.Points(12)
	y := (dc.Min.Y+dc.Max.Y)/2 + lineHeight*vg.Length(len(lines))/2

	for _, line := range lines {
		dc.FillText(sty, vg.Point{X: x, Y: y}, line)
		y -= lineHeight
	}
}

func drawCaption(dc draw.Canvas, sty text.Style, caption string) {
	sty.Font.Size = vg.Points(11)
	sty.XAlign = text.XCenter
	sty.YAlign = text.YCenter

	x := (dc.Min.X + dc.Max.X - legendWidth) / 2
	y := dc.Min.Y + captionHeight/2
	dc.FillText(sty, vg.Point{X: x, Y: y}, caption)
}
