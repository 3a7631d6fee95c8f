package record

import (
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/gymbmi/internal/bmi"
)

// Canonical column names.
const (
	ColName     = "name"
	ColSex      = "sex"
	ColRace     = "race_or_ethnicity"
	ColAge      = "age"
	ColHeight   = "height_m"
	ColWeight   = "weight_kg"
	ColBMI      = "bmi"
	ColCategory = "category"
)

// Sex is a categorical label. The empty value means unspecified by the source.
type Sex string

const (
	SexUnspecified Sex = "Unspecified"
	SexFemale      Sex = "Female"
	SexMale        Sex = "Male"
	SexOther       Sex = "Other"
)

// Sexes lists the labels offered by the quick calculator.
var Sexes = []Sex{SexUnspecified, SexFemale, SexMale, SexOther}

// ParseSex maps common spellings onto the enumerated labels; unknown text is kept verbatim.
func ParseSex(s string) Sex {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return ""
	case "f", "female", "woman", "feminino":
		return SexFemale
	case "m", "male", "man", "masculino":
		return SexMale
	case "other", "outro":
		return SexOther
	case "unspecified", "not informed", "n/a", "não informado":
		return SexUnspecified
	}
	return Sex(s)
}

// Race is a race/ethnicity label.
type Race string

const (
	RaceWhite      Race = "White"
	RaceMixed      Race = "Mixed"
	RaceBlack      Race = "Black"
	RaceAsian      Race = "Asian"
	RaceIndigenous Race = "Indigenous"
)

// Races lists the five labels in display order.
var Races = []Race{RaceWhite, RaceMixed, RaceBlack, RaceAsian, RaceIndigenous}

// ParseRace maps common spellings onto the enumerated labels; unknown text is kept verbatim.
func ParseRace(s string) Race {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return ""
	case "white", "branca":
		return RaceWhite
	case "mixed", "brown", "parda":
		return RaceMixed
	case "black", "preta":
		return RaceBlack
	case "asian", "amarela":
		return RaceAsian
	case "indigenous", "indígena", "indigena":
		return RaceIndigenous
	}
	return Race(s)
}

// Input carries the user-supplied fields of one person. Derived fields are never accepted.
type Input struct {
	Name     string
	Sex      Sex
	Race     Race
	Age      *int
	HeightM  bmi.Measure
	WeightKg bmi.Measure
	// Extra holds passthrough columns and the raw text of unparseable known cells.
	Extra map[string]string
}

// Person is one derived row of the working table. Values are immutable once built.
type Person struct {
	ID         string            `json:"id,omitempty"`
	RecordedAt time.Time         `json:"recorded_at,omitzero"`
	Name       string            `json:"name"`
	Sex        Sex               `json:"sex"`
	Race       Race              `json:"race_or_ethnicity"`
	Age        *int              `json:"age,omitempty"`
	HeightM    bmi.Measure       `json:"height_m"`
	WeightKg   bmi.Measure       `json:"weight_kg"`
	BMI        bmi.Measure       `json:"bmi"`
	Category   bmi.Category      `json:"category"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// New derives a Person from input, computing BMI and category.
func New(in Input) Person {
	v := bmi.Compute(in.WeightKg, in.HeightM)
	var extra map[string]string
	if len(in.Extra) > 0 {
		extra = make(map[string]string, len(in.Extra))
		for k, val := range in.Extra {
			extra[k] = val
		}
	}
	var age *int
	if in.Age != nil {
		a := *in.Age
		age = &a
	}
	return Person{
		Name:     in.Name,
		Sex:      in.Sex,
		Race:     in.Race,
		Age:      age,
		HeightM:  in.HeightM,
		WeightKg: in.WeightKg,
		BMI:      v,
		Category: bmi.Classify(v),
		Extra:    extra,
	}
}

// AgeOr returns the age, or def when absent.
func (p Person) AgeOr(def int) int {
	if p.Age == nil {
		return def
	}
	return *p.Age
}

// Field returns the CSV text of the named column.
func (p Person) Field(col string) string {
	switch col {
	case ColName:
		return p.Name
	case ColSex:
		return string(p.Sex)
	case ColRace:
		return string(p.Race)
	case ColAge:
		if p.Age == nil {
			return p.Extra[col]
		}
		return strconv.Itoa(*p.Age)
	case ColHeight:
		if !p.HeightM.Valid {
			return p.Extra[col]
		}
		return p.HeightM.String()
	case ColWeight:
		if !p.WeightKg.Valid {
			return p.Extra[col]
		}
		return p.WeightKg.String()
	case ColBMI:
		return p.BMI.String()
	case ColCategory:
		return string(p.Category)
	}
	return p.Extra[col]
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
