package generator

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/KaramelBytes/gymbmi/internal/bmi"
	"github.com/KaramelBytes/gymbmi/internal/record"
)

// Roster is the fixed list of demo names.
var Roster = []string{
	"Ana Silva", "Bruno Souza", "Carla Fernandes", "Diego Santos", "Eduarda Lima",
	"Felipe Alves", "Gabriela Rocha", "Henrique Moreira", "Isabela Martins", "João Pedro",
	"Karina Oliveira", "Lucas Pereira", "Mariana Costa", "Natan Ribeiro", "Olívia Nunes",
	"Paulo Sérgio", "Quésia Dias", "Rafael Cardoso", "Sabrina Melo", "Tiago Azevedo",
	"Úrsula Pinto", "Victor Hugo", "Wesley Freitas", "Xênia Barbosa", "Yasmin Duarte",
	"Zeca Andrade", "Bianca Torres", "Caio Menezes", "Dennis Oliveira", "Elisa Castro",
}

// RaceWeights is the categorical distribution over record.Races.
var RaceWeights = []float64{0.42, 0.43, 0.12, 0.02, 0.01}

// Population parameters.
const (
	MaleHeightMean   = 1.73
	FemaleHeightMean = 1.62
	HeightSD         = 0.07
	MinHeight        = 1.48
	MaxHeight        = 2.05

	WeightPerCm   = 0.45
	WeightBase    = 55.0
	WeightNoiseSD = 8.0
	MinWeight     = 45.0
	MaxWeight     = 140.0

	AgeMean = 32.0
	AgeSD   = 9.0
	MinAge  = 16
	MaxAge  = 65
)

// Options controls demo data generation.
type Options struct {
	// Count is the number of people to generate.
	Count int
	// Seed makes the output reproducible. Nil seeds from the clock.
	Seed *int64
}

// DefaultOptions returns the dashboard's demo defaults: 30 people, seed 42.
func DefaultOptions() Options {
	seed := int64(42)
	return Options{Count: 30, Seed: &seed}
}

// ErrNegativeCount is returned when Options.Count is below zero.
var ErrNegativeCount = errors.New("generator: count must not be negative")

// Generate builds a synthetic population with correlated height and weight.
func Generate(opt Options) (*record.Table, error) {
	n := opt.Count
	if n < 0 {
		return nil, ErrNegativeCount
	}
	var seed int64
	if opt.Seed != nil {
		seed = *opt.Seed
	} else {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	names := make([]string, n)
	if n <= len(Roster) {
		copy(names, Roster[:n])
	} else {
		for i := range names {
			names[i] = Roster[r.Intn(len(Roster))]
		}
	}
	sexes := make([]record.Sex, n)
	for i := range sexes {
		if r.Intn(2) == 0 {
			sexes[i] = record.SexFemale
		} else {
			sexes[i] = record.SexMale
		}
	}
	ages := make([]int, n)
	for i := range ages {
		a := int(math.Round(normal(r, AgeMean, AgeSD)))
		ages[i] = clampInt(a, MinAge, MaxAge)
	}
	heights := make([]float64, n)
	for i, s := range sexes {
		mean := FemaleHeightMean
		if s == record.SexMale {
			mean = MaleHeightMean
		}
		heights[i] = bmi.Round(clamp(normal(r, mean, HeightSD), MinHeight, MaxHeight), 2)
	}
	weights := make([]float64, n)
	for i, h := range heights {
		w := h*100*WeightPerCm + normal(r, 0, WeightNoiseSD) + WeightBase
		weights[i] = bmi.Round(clamp(w, MinWeight, MaxWeight), 1)
	}
	races := make([]record.Race, n)
	for i := range races {
		races[i] = record.Races[pick(r, RaceWeights)]
	}

	rows := make([]record.Person, n)
	for i := 0; i < n; i++ {
		rows[i] = record.New(record.Input{
			Name:     names[i],
			Sex:      sexes[i],
			Race:     races[i],
			Age:      record.IntPtr(ages[i]),
			HeightM:  bmi.Known(heights[i]),
			WeightKg: bmi.Known(weights[i]),
		})
	}
	return record.NewTable("demo", record.SyntheticColumns, rows), nil
}

func normal(r *rand.Rand, mean, sd float64) float64 {
	return mean + sd*r.NormFloat64()
}

// pick draws an index from a discrete distribution whose weights sum to ~1.
func pick(r *rand.Rand, weights []float64) int {
	u := r.Float64()
	var acc float64
	for i, w := range weights {
		acc += w
		if u < acc {
			return i
		}
	}
	return len(weights) - 1
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
