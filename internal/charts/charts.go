// Package charts renders dashboard chart data to PNG with go-chart.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/gymbmi/internal/analysis"
	"github.com/KaramelBytes/gymbmi/internal/utils"
)

// Kind names one dashboard chart.
type Kind string

const (
	KindHistogram  Kind = "histogram"
	KindCategories Kind = "categories"
	KindRace       Kind = "race"
	KindScatter    Kind = "scatter"
	KindBoxplot    Kind = "boxplot"
)

// Kinds lists every chart in dashboard order.
var Kinds = []Kind{KindHistogram, KindCategories, KindRace, KindScatter, KindBoxplot}

// ErrNoData is returned when a dashboard has nothing to draw.
var ErrNoData = errors.New("no data after filters")

// ParseKind resolves a chart name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart %q", s)
}

// Options sets the image size in pixels.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions returns an 800×400 canvas.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 400}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	return o
}

var (
	colorYellow  = drawing.ColorFromHex("FFD400")
	colorYellow2 = drawing.ColorFromHex("FFB800")
	colorDark    = drawing.ColorFromHex("141414")
	colorText    = drawing.ColorFromHex("F5F5F5")
	colorTrend   = drawing.ColorWhite

	// band colors for the donut, lightest to darkest, then grey for missing
	bandColors = []drawing.Color{
		drawing.ColorFromHex("FFF06A"),
		colorYellow,
		drawing.ColorFromHex("FFC700"),
		drawing.ColorFromHex("FF9F00"),
		drawing.ColorFromHex("FF6D00"),
		drawing.ColorFromHex("FF3B00"),
		drawing.ColorFromHex("8A8A8A"),
	}
)

func background() chart.Style {
	return chart.Style{FillColor: colorDark, Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}}
}

func axisStyle() chart.Style {
	return chart.Style{FontColor: colorText, StrokeColor: colorText}
}

func titleStyle() chart.Style {
	return chart.Style{FontColor: colorYellow}
}

// Render writes the PNG of one chart kind to w.
func Render(d *analysis.Dashboard, kind Kind, w io.Writer, opt Options) error {
	if d.Empty() {
		return ErrNoData
	}
	opt = opt.normalized()
	switch kind {
	case KindHistogram:
		return renderHistogram(d, w, opt)
	case KindCategories:
		return renderCategories(d, w, opt)
	case KindRace:
		return renderRace(d, w, opt)
	case KindScatter:
		return renderScatter(d, w, opt)
	case KindBoxplot:
		return renderBoxplot(d, w, opt)
	}
	return fmt.Errorf("unknown chart %q", kind)
}

// RenderAll writes <dir>/<kind>.png for every chart the dashboard can draw and
// returns the written paths. Charts without data are skipped.
func RenderAll(d *analysis.Dashboard, dir string, opt Options) ([]string, error) {
	if d.Empty() {
		return nil, ErrNoData
	}
	var written []string
	for _, k := range Kinds {
		var buf bytes.Buffer
		err := Render(d, k, &buf, opt)
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return written, fmt.Errorf("render %s: %w", k, err)
		}
		p := filepath.Join(dir, string(k)+".png")
		if err := utils.SafeWriteFile(p, buf.Bytes()); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}

func countRange(counts []int) *chart.ContinuousRange {
	hi := 1
	for _, c := range counts {
		if c > hi {
			hi = c
		}
	}
	return &chart.ContinuousRange{Min: 0, Max: float64(hi)}
}

func barWidth(width, n int) int {
	bw := (width-120)/n - 6
	if bw < 4 {
		bw = 4
	}
	if bw > 60 {
		bw = 60
	}
	return bw
}

func renderHistogram(d *analysis.Dashboard, w io.Writer, opt Options) error {
	if len(d.Histogram) == 0 {
		return ErrNoData
	}
	step := int(math.Ceil(float64(len(d.Histogram)) / 10))
	bars := make([]chart.Value, len(d.Histogram))
	counts := make([]int, len(d.Histogram))
	for i, b := range d.Histogram {
		label := ""
		if i%step == 0 {
			label = strconv.FormatFloat(b.Lo, 'f', 1, 64)
		}
		bars[i] = chart.Value{Label: label, Value: float64(b.Count), Style: chart.Style{FillColor: colorYellow, StrokeColor: colorYellow}}
		counts[i] = b.Count
	}
	bc := chart.BarChart{
		Title:      "BMI distribution",
		TitleStyle: titleStyle(),
		Width:      opt.Width,
		Height:     opt.Height,
		Background: background(),
		Canvas:     chart.Style{FillColor: colorDark},
		BarWidth:   barWidth(opt.Width, len(bars)),
		BarSpacing: 4,
		XAxis:      axisStyle(),
		YAxis:      chart.YAxis{Style: axisStyle(), Range: countRange(counts)},
		Bars:       bars,
	}
	return bc.Render(chart.PNG, w)
}

func renderCategories(d *analysis.Dashboard, w io.Writer, opt Options) error {
	if len(d.Categories) == 0 {
		return ErrNoData
	}
	vals := make([]chart.Value, 0, len(d.Categories))
	for _, c := range d.Categories {
		col := bandColors[len(bandColors)-1]
		if idx := bandIndex(c.Label); idx >= 0 {
			col = bandColors[idx]
		}
		vals = append(vals, chart.Value{
			Label: fmt.Sprintf("%s (%d)", c.Label, c.Count),
			Value: float64(c.Count),
			Style: chart.Style{FillColor: col, StrokeColor: colorDark, FontColor: colorDark},
		})
	}
	dc := chart.DonutChart{
		Title:      "Composition by category",
		TitleStyle: titleStyle(),
		Width:      opt.Width,
		Height:     opt.Height,
		Background: background(),
		Canvas:     chart.Style{FillColor: colorDark},
		Values:     vals,
	}
	return dc.Render(chart.PNG, w)
}

func bandIndex(label string) int {
	for i, c := range analysis.CategoryOptions()[1:] {
		if c == label {
			return i
		}
	}
	return -1
}

func renderRace(d *analysis.Dashboard, w io.Writer, opt Options) error {
	if len(d.Races) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, len(d.Races))
	counts := make([]int, len(d.Races))
	for i, c := range d.Races {
		bars[i] = chart.Value{Label: c.Label, Value: float64(c.Count), Style: chart.Style{FillColor: colorYellow, StrokeColor: colorYellow}}
		counts[i] = c.Count
	}
	bc := chart.BarChart{
		Title:      "Distribution by race/ethnicity",
		TitleStyle: titleStyle(),
		Width:      opt.Width,
		Height:     opt.Height,
		Background: background(),
		Canvas:     chart.Style{FillColor: colorDark},
		BarWidth:   barWidth(opt.Width, len(bars)),
		BarSpacing: 24,
		XAxis:      axisStyle(),
		YAxis:      chart.YAxis{Style: axisStyle(), Range: countRange(counts)},
		Bars:       bars,
	}
	return bc.Render(chart.PNG, w)
}

// padded returns a range around [lo, hi] that is never empty.
func padded(lo, hi, minPad float64) *chart.ContinuousRange {
	pad := (hi - lo) * 0.05
	if pad < minPad {
		pad = minPad
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func renderScatter(d *analysis.Dashboard, w io.Writer, opt Options) error {
	if len(d.Points) == 0 {
		return ErrNoData
	}
	xs := make([]float64, len(d.Points))
	ys := make([]float64, len(d.Points))
	minX, maxX := d.Points[0].HeightM, d.Points[0].HeightM
	minY, maxY := d.Points[0].WeightKg, d.Points[0].WeightKg
	for i, p := range d.Points {
		xs[i], ys[i] = p.HeightM, p.WeightKg
		minX, maxX = math.Min(minX, p.HeightM), math.Max(maxX, p.HeightM)
		minY, maxY = math.Min(minY, p.WeightKg), math.Max(maxY, p.WeightKg)
	}
	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "people",
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 4, DotColor: colorYellow},
		},
	}
	if t := d.Trend; t != nil {
		series = append(series, chart.ContinuousSeries{
			Name:    "trend",
			XValues: []float64{t.MinX, t.MaxX},
			YValues: []float64{t.At(t.MinX), t.At(t.MaxX)},
			Style:   chart.Style{StrokeWidth: 2, StrokeColor: colorTrend},
		})
		minY = math.Min(minY, math.Min(t.At(t.MinX), t.At(t.MaxX)))
		maxY = math.Max(maxY, math.Max(t.At(t.MinX), t.At(t.MaxX)))
	}
	ch := chart.Chart{
		Title:      "Height × weight with trend",
		TitleStyle: titleStyle(),
		Width:      opt.Width,
		Height:     opt.Height,
		Background: background(),
		Canvas:     chart.Style{FillColor: colorDark},
		XAxis:      chart.XAxis{Name: "Height (m)", NameStyle: axisStyle(), Style: axisStyle(), Range: padded(minX, maxX, 0.02)},
		YAxis:      chart.YAxis{Name: "Weight (kg)", NameStyle: axisStyle(), Style: axisStyle(), Range: padded(minY, maxY, 1)},
		Series:     series,
	}
	return ch.Render(chart.PNG, w)
}

// renderBoxplot draws each box as polylines at x = 1..n.
func renderBoxplot(d *analysis.Dashboard, w io.Writer, opt Options) error {
	if len(d.Boxes) == 0 {
		return ErrNoData
	}
	const half = 0.25
	line := chart.Style{StrokeWidth: 2, StrokeColor: colorYellow}
	var series []chart.Series
	ticks := []chart.Tick{{Value: 0.5, Label: ""}}
	minY, maxY := math.Inf(1), math.Inf(-1)
	seg := func(x1, y1, x2, y2 float64) {
		series = append(series, chart.ContinuousSeries{XValues: []float64{x1, x2}, YValues: []float64{y1, y2}, Style: line})
	}
	for i, b := range d.Boxes {
		x := float64(i + 1)
		ticks = append(ticks, chart.Tick{Value: x, Label: fmt.Sprintf("%s (n=%d)", b.Group, b.N)})
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{x - half, x + half, x + half, x - half, x - half},
			YValues: []float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1},
			Style:   chart.Style{StrokeWidth: 2, StrokeColor: colorYellow, FillColor: colorYellow2.WithAlpha(64)},
		})
		seg(x-half, b.Median, x+half, b.Median)
		seg(x, b.Q3, x, b.UpperWhisker)
		seg(x, b.Q1, x, b.LowerWhisker)
		seg(x-half/2, b.UpperWhisker, x+half/2, b.UpperWhisker)
		seg(x-half/2, b.LowerWhisker, x+half/2, b.LowerWhisker)
		minY, maxY = math.Min(minY, b.LowerWhisker), math.Max(maxY, b.UpperWhisker)
		if len(b.Outliers) > 0 {
			xs := make([]float64, len(b.Outliers))
			for j, o := range b.Outliers {
				xs[j] = x
				minY, maxY = math.Min(minY, o), math.Max(maxY, o)
			}
			series = append(series, chart.ContinuousSeries{
				XValues: xs,
				YValues: b.Outliers,
				Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 3, DotColor: colorYellow2},
			})
		}
	}
	ticks = append(ticks, chart.Tick{Value: float64(len(d.Boxes)) + 0.5, Label: ""})
	ch := chart.Chart{
		Title:      "BMI by sex",
		TitleStyle: titleStyle(),
		Width:      opt.Width,
		Height:     opt.Height,
		Background: background(),
		Canvas:     chart.Style{FillColor: colorDark},
		XAxis:      chart.XAxis{Style: axisStyle(), Ticks: ticks},
		YAxis:      chart.YAxis{Name: "BMI", NameStyle: axisStyle(), Style: axisStyle(), Range: padded(minY, maxY, 1)},
		Series:     series,
	}
	return ch.Render(chart.PNG, w)
}
