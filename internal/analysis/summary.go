package analysis

import (
	"encoding/json"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/gymbmi/internal/bmi"
	"github.com/KaramelBytes/gymbmi/internal/record"
)

// NoData is shown in place of a metric that has nothing to aggregate.
const NoData = "—"

// Stat is an aggregate that may be undefined.
type Stat struct {
	Value float64
	OK    bool
}

func meanOf(vals []float64) Stat {
	if len(vals) == 0 {
		return Stat{}
	}
	return Stat{Value: stat.Mean(vals, nil), OK: true}
}

// Format renders the value with the given decimals and suffix, or NoData.
func (s Stat) Format(decimals int, suffix string) string {
	if !s.OK {
		return NoData
	}
	return strconv.FormatFloat(s.Value, 'f', decimals, 64) + suffix
}

// MarshalJSON encodes an undefined stat as null.
func (s Stat) MarshalJSON() ([]byte, error) {
	if !s.OK {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// Summary holds the KPI cards of a dashboard.
type Summary struct {
	Count       int  `json:"count"`
	MeanBMI     Stat `json:"mean_bmi"`
	ElevatedPct Stat `json:"overweight_or_obese_pct"`
	MeanWeight  Stat `json:"mean_weight_kg"`
	NoData      bool `json:"no_data"`
}

// Summarize computes the KPIs of rows. Missing values are left out of each mean, and
// rows with a missing category are left out of both sides of the percentage.
func Summarize(rows []record.Person) Summary {
	s := Summary{Count: len(rows), NoData: len(rows) == 0}
	var bmis, weights []float64
	var catN, elevated int
	for _, p := range rows {
		if p.BMI.Valid {
			bmis = append(bmis, p.BMI.Value)
		}
		if p.WeightKg.Valid {
			weights = append(weights, p.WeightKg.Value)
		}
		if p.Category != "" && p.Category != bmi.CategoryMissing {
			catN++
			if p.Category.Elevated() {
				elevated++
			}
		}
	}
	s.MeanBMI = meanOf(bmis)
	s.MeanWeight = meanOf(weights)
	if catN > 0 {
		s.ElevatedPct = Stat{Value: float64(elevated) * 100 / float64(catN), OK: true}
	}
	return s
}
