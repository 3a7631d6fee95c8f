package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/gymbmi/internal/analysis"
	"github.com/KaramelBytes/gymbmi/internal/charts"
	"github.com/KaramelBytes/gymbmi/internal/output"
	"github.com/KaramelBytes/gymbmi/internal/record"
	"github.com/KaramelBytes/gymbmi/internal/session"
	"github.com/KaramelBytes/gymbmi/internal/utils"
)

var (
	dashRead      readFlags
	dashFilter    filterFlags
	dashDemo      demoFlags
	dashGenerate  bool
	dashCharts    bool
	dashChartsDir string
	dashFormat    string
	dashOutput    string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [file]",
	Short: "Summarize a table as KPIs, a report and charts",
	Long: `Build the dashboard for an uploaded table or synthetic data (--generate). When
both are given the synthetic data wins. Filters narrow the rows; --charts writes one
PNG per chart.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !dashGenerate {
			return fmt.Errorf("nothing to show: pass a CSV/XLSX file or --generate")
		}
		switch dashFormat {
		case "md", "markdown", "json":
		default:
			return fmt.Errorf("unsupported --format: %s (use md or json)", dashFormat)
		}
		opt, err := dashRead.options()
		if err != nil {
			return err
		}
		filter, aopt := dashFilter.resolve(cmd)

		sess := session.New()
		defer sess.Close()
		sess.ParseOptions = opt

		var in session.Interaction
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in.UploadName, in.Upload = filepath.Base(args[0]), f
		}
		if dashGenerate {
			g := dashDemo.options(cmd)
			in.Generate = &g
		}
		sel, err := sess.Interact(in)
		if err != nil {
			return err
		}

		var rows []record.Person
		if sel.Table != nil {
			rows = sel.Table.Rows
		}
		d, err := analysis.Build(rows, filter, aopt)
		if err != nil {
			return err
		}
		d.Source = sel.Kind.String()

		var body []byte
		if dashFormat == "json" {
			if body, err = utils.PrettyJSON(d); err != nil {
				return err
			}
		} else {
			body = []byte(d.Markdown())
		}
		if dashOutput != "" {
			if err := utils.SafeWriteFile(dashOutput, body); err != nil {
				return err
			}
			output.Success("Wrote report to %s", dashOutput)
		} else {
			if dashFormat != "json" {
				output.KPIs(d.Summary)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
		}

		if !dashCharts {
			return nil
		}
		dir := dashChartsDir
		if dir == "" {
			dir = conf().ChartsDir
		}
		paths, err := charts.RenderAll(d, dir, chartOptions())
		if errors.Is(err, charts.ErrNoData) {
			output.Warning("No data after filters; charts skipped.")
			return nil
		}
		if err != nil {
			return err
		}
		output.Success("Wrote %d charts to %s", len(paths), dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashRead.register(dashboardCmd)
	dashFilter.register(dashboardCmd)
	dashDemo.register(dashboardCmd)
	dashboardCmd.Flags().BoolVar(&dashGenerate, "generate", false, "use synthetic demo data")
	dashboardCmd.Flags().BoolVar(&dashCharts, "charts", false, "render PNG charts")
	dashboardCmd.Flags().StringVar(&dashChartsDir, "charts-dir", "", "chart output directory (default from config)")
	dashboardCmd.Flags().StringVar(&dashFormat, "format", "md", "report format: md | json")
	dashboardCmd.Flags().StringVarP(&dashOutput, "output", "o", "", "write the report to a file instead of stdout")
}
