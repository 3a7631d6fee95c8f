package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/gymbmi/internal/analysis"
	"github.com/KaramelBytes/gymbmi/internal/output"
	"github.com/KaramelBytes/gymbmi/internal/parser"
	"github.com/KaramelBytes/gymbmi/internal/utils"
)

var (
	procRead   readFlags
	procOutDir string
	procQuiet  bool
)

var processCmd = &cobra.Command{
	Use:   "process <files...>",
	Short: "Add bmi and category columns to CSV/TSV/XLSX tables",
	Long: `Read each table, derive bmi and category for every row and write <name>.bmi.csv
next to the input (or under --out-dir). Existing outputs are never overwritten; a
__N suffix is added instead. Glob patterns are expanded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := utils.ExpandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		opt, err := procRead.options()
		if err != nil {
			return err
		}

		total := len(files)
		for i, path := range files {
			if !procQuiet {
				output.Info("[%d/%d] Processing %s...", i+1, total, filepath.Base(path))
			}
			tbl, err := parser.ParseFile(path, opt)
			if err != nil {
				return err
			}
			data, err := tbl.CSV()
			if err != nil {
				return err
			}

			dir := procOutDir
			if dir == "" {
				dir = filepath.Dir(path)
			}
			if err := utils.EnsureDir(dir); err != nil {
				return err
			}
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			outFile := utils.UniquePath(dir, base, ".bmi.csv")
			if filepath.Base(outFile) != base+".bmi.csv" && !procQuiet {
				output.Warning("Detected existing output, writing to %s to avoid overwrite.", filepath.Base(outFile))
			}
			if err := utils.SafeWriteFile(outFile, data); err != nil {
				return fmt.Errorf("write %s: %w", outFile, err)
			}
			slog.Debug("processed", "input", path, "output", outFile, "rows", tbl.Len())
			if !procQuiet {
				output.Success("Wrote %d rows to %s", tbl.Len(), outFile)
				output.KPIs(analysis.Summarize(tbl.Rows))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
	procRead.register(processCmd)
	processCmd.Flags().StringVar(&procOutDir, "out-dir", "", "directory for outputs (default: next to each input)")
	processCmd.Flags().BoolVar(&procQuiet, "quiet", false, "suppress progress and non-essential output")
}
