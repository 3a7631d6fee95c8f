package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/gymbmi/internal/bmi"
	"github.com/KaramelBytes/gymbmi/internal/record"
)

// AdultsNote is printed under every report.
const AdultsNote = "BMI classification applies to adults and does not replace a clinical evaluation."

// Options controls dashboard shaping.
type Options struct {
	// Bins is the histogram bin count, between MinBins and MaxBins.
	Bins int
}

// DefaultOptions returns the default dashboard options.
func DefaultOptions() Options {
	return Options{Bins: DefaultBins}
}

// Dashboard bundles everything the presentation layer draws for one interaction.
type Dashboard struct {
	Source     string          `json:"source,omitempty"`
	Filter     Filter          `json:"filter"`
	Total      int             `json:"total"`
	Rows       []record.Person `json:"-"`
	Summary    Summary         `json:"summary"`
	Thresholds []float64       `json:"thresholds"`
	Histogram  []Bin           `json:"histogram"`
	Categories []Count         `json:"categories"`
	Races      []Count         `json:"races"`
	Points     []Point         `json:"points"`
	Trend      *Trend          `json:"trend"`
	Boxes      []Box           `json:"boxes"`
	SexOptions []string        `json:"sex_options"`
}

// Empty reports whether no rows survived the filter.
func (d *Dashboard) Empty() bool { return d == nil || len(d.Rows) == 0 }

// Build filters rows and computes KPIs and chart data. An empty result is not an
// error; its Summary reports NoData and the chart slices are empty.
func Build(rows []record.Person, f Filter, opt Options) (*Dashboard, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if opt.Bins == 0 {
		opt.Bins = DefaultBins
	}
	if err := ValidateBins(opt.Bins); err != nil {
		return nil, err
	}
	kept := f.Apply(rows)
	d := &Dashboard{
		Filter:     f,
		Total:      len(rows),
		Rows:       kept,
		Summary:    Summarize(kept),
		Thresholds: bmi.Thresholds(),
		SexOptions: SexOptions(rows),
	}
	if len(kept) == 0 {
		return d, nil
	}
	d.Histogram = Histogram(kept, opt.Bins)
	d.Categories = CategoryCounts(kept)
	d.Races = RaceCounts(kept)
	d.Points, d.Trend = Scatter(kept)
	d.Boxes = BoxStats(kept)
	return d, nil
}

// Markdown renders a compact text report of the dashboard.
func (d *Dashboard) Markdown() string {
	var b strings.Builder
	b.WriteString("[DASHBOARD SUMMARY]\n")
	if d.Source != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", d.Source))
	}
	b.WriteString(fmt.Sprintf("Rows: %d of %d after filters\n", len(d.Rows), d.Total))
	b.WriteString(fmt.Sprintf("Filters: age %d–%d, sex %s, category %s, race/ethnicity %s\n\n",
		d.Filter.AgeMin, d.Filter.AgeMax, orAll(d.Filter.Sex), orAll(d.Filter.Category), orAll(d.Filter.Race)))

	b.WriteString("[KPIS]\n")
	s := d.Summary
	b.WriteString(fmt.Sprintf("- People: %d\n", s.Count))
	b.WriteString(fmt.Sprintf("- Mean BMI: %s\n", s.MeanBMI.Format(2, "")))
	b.WriteString(fmt.Sprintf("- Overweight/Obesity: %s\n", s.ElevatedPct.Format(0, "%")))
	b.WriteString(fmt.Sprintf("- Mean weight (kg): %s\n", s.MeanWeight.Format(1, "")))

	if d.Empty() {
		b.WriteString("\n[NOTES]\n- No data after filters.\n")
		b.WriteString("- " + AdultsNote + "\n")
		return b.String()
	}

	if len(d.Categories) > 0 {
		b.WriteString("\n[CATEGORIES]\n")
		for _, c := range d.Categories {
			b.WriteString(fmt.Sprintf("- %s: %d\n", c.Label, c.Count))
		}
	}
	b.WriteString("\n[RACE/ETHNICITY]\n")
	for _, c := range d.Races {
		b.WriteString(fmt.Sprintf("- %s: %d\n", c.Label, c.Count))
	}
	if len(d.Histogram) > 0 {
		b.WriteString(fmt.Sprintf("\n[BMI DISTRIBUTION] (%d bins)\n", len(d.Histogram)))
		for _, bin := range d.Histogram {
			if bin.Count == 0 {
				continue
			}
			b.WriteString(fmt.Sprintf("- %.2f–%.2f: %d\n", bin.Lo, bin.Hi, bin.Count))
		}
	}
	if d.Trend != nil {
		b.WriteString("\n[HEIGHT × WEIGHT]\n")
		b.WriteString(fmt.Sprintf("- points: %d; trend weight ≈ %.2f·height %+.2f\n", len(d.Points), d.Trend.Slope, d.Trend.Intercept))
	}
	if len(d.Boxes) > 0 {
		b.WriteString("\n[BMI BY SEX]\n")
		for _, x := range d.Boxes {
			b.WriteString(fmt.Sprintf("- %s (n=%d): median %.2f, IQR %.2f–%.2f, whiskers %.2f–%.2f", x.Group, x.N, x.Median, x.Q1, x.Q3, x.LowerWhisker, x.UpperWhisker))
			if len(x.Outliers) > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d", len(x.Outliers)))
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n[NOTES]\n- " + AdultsNote + "\n")
	return b.String()
}

func orAll(v string) string {
	if !restricted(v) {
		return All
	}
	return v
}
