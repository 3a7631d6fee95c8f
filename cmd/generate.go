package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/gymbmi/internal/analysis"
	"github.com/KaramelBytes/gymbmi/internal/generator"
	"github.com/KaramelBytes/gymbmi/internal/output"
	"github.com/KaramelBytes/gymbmi/internal/utils"
)

var (
	genDemo   demoFlags
	genOutput string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate synthetic gym members as CSV",
	Long: `Generate a synthetic population with correlated height and weight, the same
data the dashboard offers as demo. Without -o the CSV is written to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := generator.Generate(genDemo.options(cmd))
		if err != nil {
			return err
		}
		data, err := tbl.CSV()
		if err != nil {
			return err
		}
		if genOutput == "" || genOutput == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := utils.SafeWriteFile(genOutput, data); err != nil {
			return err
		}
		output.Success("Wrote %d people to %s", tbl.Len(), genOutput)
		output.KPIs(analysis.Summarize(tbl.Rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	genDemo.register(generateCmd)
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "output CSV path (default stdout)")
}
