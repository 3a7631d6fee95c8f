package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/gymbmi/internal/analysis"
	"github.com/KaramelBytes/gymbmi/internal/bmi"
	"github.com/KaramelBytes/gymbmi/internal/output"
	"github.com/KaramelBytes/gymbmi/internal/parser"
	"github.com/KaramelBytes/gymbmi/internal/record"
	"github.com/KaramelBytes/gymbmi/internal/session"
	"github.com/KaramelBytes/gymbmi/internal/utils"
)

var (
	calcName   string
	calcSex    string
	calcRace   string
	calcAge    int
	calcHeight string
	calcWeight string
	calcJSON   bool
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute BMI and category for one person",
	Example: `  gymbmi calc --height 1.70 --weight 70
  gymbmi calc --height 1,62 --weight 58,5 --sex female --age 29`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := record.Input{
			Name: calcName,
			Sex:  record.ParseSex(calcSex),
			Race: record.ParseRace(calcRace),
		}
		if cmd.Flags().Changed("age") {
			in.Age = record.IntPtr(calcAge)
		}
		var err error
		if in.HeightM, err = measureFlag("height", calcHeight); err != nil {
			return err
		}
		if in.WeightKg, err = measureFlag("weight", calcWeight); err != nil {
			return err
		}

		p, err := session.New().Calculate(in)
		if err != nil {
			return err
		}
		if calcJSON {
			b, err := utils.PrettyJSON(p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		output.Success("BMI %s · %s", p.BMI, p.Category)
		output.Muted(analysis.AdultsNote)
		return nil
	},
}

func measureFlag(name, s string) (bmi.Measure, error) {
	if s == "" {
		return bmi.Missing, nil
	}
	v, ok := parser.ParseNumber(s)
	if !ok {
		return bmi.Missing, fmt.Errorf("invalid number for --%s: %q", name, s)
	}
	return bmi.Known(v), nil
}

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.Flags().StringVar(&calcName, "name", "", "name (optional)")
	calcCmd.Flags().StringVar(&calcSex, "sex", string(record.SexUnspecified), "Female | Male | Other | Unspecified")
	calcCmd.Flags().StringVar(&calcRace, "race", string(record.RaceWhite), "White | Mixed | Black | Asian | Indigenous")
	calcCmd.Flags().IntVar(&calcAge, "age", 0, fmt.Sprintf("age in years (%d-%d)", session.MinAge, session.MaxAge))
	calcCmd.Flags().StringVar(&calcHeight, "height", "", fmt.Sprintf("height in meters (%g-%g)", session.MinHeightM, session.MaxHeightM))
	calcCmd.Flags().StringVar(&calcWeight, "weight", "", fmt.Sprintf("weight in kg (%g-%g)", session.MinWeightKg, session.MaxWeightKg))
	calcCmd.Flags().BoolVar(&calcJSON, "json", false, "print the record as JSON")
	_ = calcCmd.MarkFlagRequired("height")
	_ = calcCmd.MarkFlagRequired("weight")
}
