package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/gymbmi/internal/bmi"
	"github.com/KaramelBytes/gymbmi/internal/record"
)

// Histogram bin count limits.
const (
	MinBins     = 5
	MaxBins     = 50
	DefaultBins = 20
)

// Bin is one histogram bar covering [Lo, Hi). The last bin also includes Hi.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Count is a labelled frequency.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Point is one scatter marker.
type Point struct {
	Name     string       `json:"name,omitempty"`
	Race     record.Race  `json:"race_or_ethnicity,omitempty"`
	HeightM  float64      `json:"height_m"`
	WeightKg float64      `json:"weight_kg"`
	Category bmi.Category `json:"category"`
}

// Trend is the least-squares line weight = Slope*height + Intercept over [MinX, MaxX].
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	MinX      float64 `json:"min_x"`
	MaxX      float64 `json:"max_x"`
}

// At evaluates the line at x.
func (t Trend) At(x float64) float64 { return t.Slope*x + t.Intercept }

// Box summarizes the BMI distribution of one sex.
type Box struct {
	Group        string    `json:"group"`
	N            int       `json:"n"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers,omitempty"`
}

// ValidateBins checks the histogram bin count.
func ValidateBins(n int) error {
	if n < MinBins || n > MaxBins {
		return fmt.Errorf("bins must be between %d and %d, got %d", MinBins, MaxBins, n)
	}
	return nil
}

func bmiValues(rows []record.Person) []float64 {
	out := make([]float64, 0, len(rows))
	for _, p := range rows {
		if p.BMI.Valid {
			out = append(out, p.BMI.Value)
		}
	}
	return out
}

// Histogram splits the valid BMIs of rows into bins of equal width between the
// smallest and largest value. A single distinct value yields one bin.
func Histogram(rows []record.Person, bins int) []Bin {
	vals := bmiValues(rows)
	if len(vals) == 0 || bins <= 0 {
		return nil
	}
	lo, hi := floats.Min(vals), floats.Max(vals)
	if lo == hi {
		return []Bin{{Lo: lo, Hi: hi, Count: len(vals)}}
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = lo + float64(i)*width
		out[i].Hi = lo + float64(i+1)*width
	}
	out[bins-1].Hi = hi
	for _, v := range vals {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// CategoryCounts counts rows per band in band order, followed by missing. Zero
// counts are omitted.
func CategoryCounts(rows []record.Person) []Count {
	counts := map[bmi.Category]int{}
	for _, p := range rows {
		c := p.Category
		if c == "" {
			c = bmi.CategoryMissing
		}
		counts[c]++
	}
	var out []Count
	for _, c := range append(append([]bmi.Category{}, bmi.Categories...), bmi.CategoryMissing) {
		if n := counts[c]; n > 0 {
			out = append(out, Count{Label: string(c), Count: n})
		}
	}
	return out
}

// RaceCounts counts rows per race/ethnicity label. Every label is listed, including
// zeros; rows with other labels are not counted.
func RaceCounts(rows []record.Person) []Count {
	counts := map[record.Race]int{}
	for _, p := range rows {
		counts[p.Race]++
	}
	out := make([]Count, len(record.Races))
	for i, r := range record.Races {
		out[i] = Count{Label: string(r), Count: counts[r]}
	}
	return out
}

// Scatter returns the rows with both height and weight, plus the least-squares trend
// line. The trend is nil when fewer than two distinct heights are present.
func Scatter(rows []record.Person) ([]Point, *Trend) {
	var pts []Point
	for _, p := range rows {
		if !p.HeightM.Valid || !p.WeightKg.Valid {
			continue
		}
		pts = append(pts, Point{Name: p.Name, Race: p.Race, HeightM: p.HeightM.Value, WeightKg: p.WeightKg.Value, Category: p.Category})
	}
	return pts, fitTrend(pts)
}

func fitTrend(pts []Point) *Trend {
	if len(pts) < 2 {
		return nil
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.HeightM, p.WeightKg
	}
	minX, maxX := floats.Min(xs), floats.Max(xs)
	if minX == maxX {
		return nil
	}
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return &Trend{Slope: slope, Intercept: intercept, MinX: minX, MaxX: maxX}
}

// BoxStats computes BMI box statistics per sex, sorted by label. Rows without a sex
// or a BMI are skipped.
func BoxStats(rows []record.Person) []Box {
	groups := map[string][]float64{}
	for _, p := range rows {
		if p.Sex == "" || !p.BMI.Valid {
			continue
		}
		groups[string(p.Sex)] = append(groups[string(p.Sex)], p.BMI.Value)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Box, 0, len(keys))
	for _, k := range keys {
		out = append(out, boxOf(k, groups[k]))
	}
	return out
}

func boxOf(group string, vals []float64) Box {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	b := Box{
		Group:  group,
		N:      len(sorted),
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
	}
	iqr := b.Q3 - b.Q1
	lo, hi := b.Q1-1.5*iqr, b.Q3+1.5*iqr
	b.LowerWhisker, b.UpperWhisker = b.Q1, b.Q3
	first := true
	for _, v := range sorted {
		if v < lo || v > hi {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		if first {
			b.LowerWhisker = v
			first = false
		}
		b.UpperWhisker = v
	}
	return b
}

// quantile interpolates linearly between the closest ranks of sorted, at position
// q·(n-1). stat.Quantile's LinInterp places q·n instead and gives different quartiles.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
