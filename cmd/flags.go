package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/gymbmi/internal/analysis"
	"github.com/KaramelBytes/gymbmi/internal/charts"
	"github.com/KaramelBytes/gymbmi/internal/generator"
	"github.com/KaramelBytes/gymbmi/internal/parser"
)

// readFlags are the table reading options shared by process and dashboard.
type readFlags struct {
	delimiter  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (r *readFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	cmd.Flags().IntVar(&r.maxRows, "max-rows", 100000, "maximum data rows per file")
	cmd.Flags().StringVar(&r.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	cmd.Flags().IntVar(&r.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (r *readFlags) options() (parser.Options, error) {
	opt := parser.DefaultOptions()
	if r.maxRows > 0 {
		opt.MaxRows = r.maxRows
	}
	switch r.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", r.delimiter)
	}
	opt.SheetName = r.sheetName
	if r.sheetIndex > 0 {
		opt.SheetIndex = r.sheetIndex
	}
	return opt, nil
}

// filterFlags are the dashboard controls.
type filterFlags struct {
	ageMin   int
	ageMax   int
	sex      string
	category string
	race     string
	bins     int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.ageMin, "age-min", analysis.DefaultAgeMin, "minimum age (missing ages count as 0)")
	cmd.Flags().IntVar(&f.ageMax, "age-max", analysis.DefaultAgeMax, "maximum age")
	cmd.Flags().StringVar(&f.sex, "sex", analysis.All, "sex filter")
	cmd.Flags().StringVar(&f.category, "category", analysis.All, "BMI category filter: "+strings.Join(analysis.CategoryOptions(), " | "))
	cmd.Flags().StringVar(&f.race, "race", analysis.All, "race/ethnicity filter: "+strings.Join(analysis.RaceOptions(), " | "))
	cmd.Flags().IntVar(&f.bins, "bins", analysis.DefaultBins, fmt.Sprintf("histogram bins (%d-%d)", analysis.MinBins, analysis.MaxBins))
}

// resolve applies configured defaults to every flag the user left alone.
func (f *filterFlags) resolve(cmd *cobra.Command) (analysis.Filter, analysis.Options) {
	c := conf()
	fl := analysis.Filter{AgeMin: f.ageMin, AgeMax: f.ageMax, Sex: f.sex, Category: f.category, Race: f.race}
	opt := analysis.Options{Bins: f.bins}
	if !cmd.Flags().Changed("age-min") {
		fl.AgeMin = c.AgeMin
	}
	if !cmd.Flags().Changed("age-max") {
		fl.AgeMax = c.AgeMax
	}
	if !cmd.Flags().Changed("bins") && c.HistogramBins > 0 {
		opt.Bins = c.HistogramBins
	}
	return fl, opt
}

// demoFlags control synthetic data.
type demoFlags struct {
	count  int
	seed   int64
	random bool
}

func (d *demoFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&d.count, "count", "n", 30, "number of people to generate")
	cmd.Flags().Int64Var(&d.seed, "seed", 42, "random seed for reproducible data")
	cmd.Flags().BoolVar(&d.random, "random", false, "seed from the clock instead of --seed")
}

func (d *demoFlags) options(cmd *cobra.Command) generator.Options {
	c := conf()
	opt := generator.Options{Count: d.count}
	if !cmd.Flags().Changed("count") {
		opt.Count = c.DemoCount
	}
	if d.random {
		return opt
	}
	seed := d.seed
	if !cmd.Flags().Changed("seed") {
		seed = c.DemoSeed
	}
	opt.Seed = &seed
	return opt
}

func chartOptions() charts.Options {
	c := conf()
	return charts.Options{Width: c.ChartWidth, Height: c.ChartHeight}
}
