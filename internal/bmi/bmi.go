package bmi

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Measure is an optional real value. The zero value is missing.
type Measure struct {
	Value float64
	Valid bool
}

// Missing is the sentinel for an absent or undefined value.
var Missing = Measure{}

// Known wraps v as a present measure. NaN and infinities are treated as missing.
func Known(v float64) Measure {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return Measure{Value: v, Valid: true}
}

// String formats the value with the shortest representation, or "" when missing.
func (m Measure) String() string {
	if !m.Valid {
		return ""
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// MarshalJSON encodes a missing measure as null.
func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null.
func (m *Measure) UnmarshalJSON(b []byte) error {
	var v *float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*m = Missing
		return nil
	}
	*m = Known(*v)
	return nil
}

// Category is one of the six BMI bands, or CategoryMissing.
type Category string

const (
	CategoryMissing Category = "—"
	Underweight     Category = "Underweight"
	NormalWeight    Category = "Normal weight"
	Overweight      Category = "Overweight"
	ObesityI        Category = "Obesity I"
	ObesityII       Category = "Obesity II"
	ObesityIII      Category = "Obesity III"
)

// Categories lists the bands in ascending order.
var Categories = []Category{Underweight, NormalWeight, Overweight, ObesityI, ObesityII, ObesityIII}

var thresholds = []float64{18.5, 25, 30, 35, 40}

// Thresholds returns the lower bounds of every band above Underweight.
func Thresholds() []float64 {
	out := make([]float64, len(thresholds))
	copy(out, thresholds)
	return out
}

// Compute returns weight / height² rounded to two decimals. Any missing input or a
// non-positive height yields Missing.
func Compute(weightKg, heightM Measure) Measure {
	if !weightKg.Valid || !heightM.Valid || heightM.Value <= 0 {
		return Missing
	}
	return Known(Round(weightKg.Value/(heightM.Value*heightM.Value), 2))
}

// Classify maps a BMI to its band. Boundary values belong to the higher band.
func Classify(v Measure) Category {
	if !v.Valid {
		return CategoryMissing
	}
	for i, t := range thresholds {
		if v.Value < t {
			return Categories[i]
		}
	}
	return ObesityIII
}

// Elevated reports whether c is one of the overweight or obese bands.
func (c Category) Elevated() bool {
	switch c {
	case Overweight, ObesityI, ObesityII, ObesityIII:
		return true
	}
	return false
}

// ParseCategory resolves a band label case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == string(CategoryMissing) {
		return CategoryMissing, true
	}
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Round rounds half away from zero to the given number of decimal places.
// Binary noise below 1e-9 is snapped first so 46.874999999999993 rounds like 46.875.
// Magnitudes above 1e6 skip both steps: they carry no fractional noise worth fixing and
// scaling them could overflow.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1e6 {
		return v
	}
	snapped := math.Round(v*1e9) / 1e9
	p := math.Pow(10, float64(places))
	return math.Round(snapped*p) / p
}
