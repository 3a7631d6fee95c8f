package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/gymbmi/internal/bmi"
	"github.com/KaramelBytes/gymbmi/internal/record"
)

// All disables a categorical filter.
const All = "All"

// Default age slider bounds.
const (
	DefaultAgeMin = 0
	DefaultAgeMax = 100
)

// Filter selects dashboard rows. All conditions must hold. Empty or All categorical
// fields do not restrict.
type Filter struct {
	AgeMin   int    `json:"age_min"`
	AgeMax   int    `json:"age_max"`
	Sex      string `json:"sex"`
	Category string `json:"category"`
	Race     string `json:"race_or_ethnicity"`
}

// DefaultFilter keeps every row with an age in [0, 100].
func DefaultFilter() Filter {
	return Filter{AgeMin: DefaultAgeMin, AgeMax: DefaultAgeMax, Sex: All, Category: All, Race: All}
}

// Validate rejects inverted age ranges and unknown categories.
func (f Filter) Validate() error {
	if f.AgeMin > f.AgeMax {
		return fmt.Errorf("invalid age range: min %d is greater than max %d", f.AgeMin, f.AgeMax)
	}
	if restricted(f.Category) {
		if _, ok := bmi.ParseCategory(f.Category); !ok {
			return fmt.Errorf("unknown category %q", f.Category)
		}
	}
	return nil
}

func restricted(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, All)
}

// Match reports whether p passes every condition. A missing age counts as 0.
func (f Filter) Match(p record.Person) bool {
	age := p.AgeOr(0)
	if age < f.AgeMin || age > f.AgeMax {
		return false
	}
	if restricted(f.Sex) && (p.Sex == "" || !strings.EqualFold(string(p.Sex), strings.TrimSpace(f.Sex))) {
		return false
	}
	if restricted(f.Category) && !strings.EqualFold(string(p.Category), strings.TrimSpace(f.Category)) {
		return false
	}
	if restricted(f.Race) && (p.Race == "" || !strings.EqualFold(string(p.Race), strings.TrimSpace(f.Race))) {
		return false
	}
	return true
}

// Apply returns the matching rows in their original order. The input is not modified.
func (f Filter) Apply(rows []record.Person) []record.Person {
	out := make([]record.Person, 0, len(rows))
	for _, p := range rows {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// SexOptions lists All followed by the distinct sexes present, sorted.
func SexOptions(rows []record.Person) []string {
	seen := map[string]bool{}
	var opts []string
	for _, p := range rows {
		s := string(p.Sex)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		opts = append(opts, s)
	}
	sort.Strings(opts)
	return append([]string{All}, opts...)
}

// CategoryOptions lists All followed by the six bands.
func CategoryOptions() []string {
	out := []string{All}
	for _, c := range bmi.Categories {
		out = append(out, string(c))
	}
	return out
}

// RaceOptions lists All followed by the five race/ethnicity labels.
func RaceOptions() []string {
	out := []string{All}
	for _, r := range record.Races {
		out = append(out, string(r))
	}
	return out
}
