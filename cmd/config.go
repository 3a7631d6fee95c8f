package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/gymbmi/internal/analysis"
	cfgpkg "github.com/KaramelBytes/gymbmi/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set gymbmi configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := conf()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "demo_count: %d\n", c.DemoCount)
		fmt.Fprintf(out, "demo_seed: %d\n", c.DemoSeed)
		fmt.Fprintf(out, "histogram_bins: %d\n", c.HistogramBins)
		fmt.Fprintf(out, "age_min: %d\n", c.AgeMin)
		fmt.Fprintf(out, "age_max: %d\n", c.AgeMax)
		fmt.Fprintf(out, "charts_dir: %s\n", c.ChartsDir)
		fmt.Fprintf(out, "chart_width: %d\n", c.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", c.ChartHeight)
		fmt.Fprintf(out, "server_addr: %s\n", c.ServerAddr)
		fmt.Fprintf(out, "export_dir: %s\n", c.ExportDir)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		atoi := func(min int) (int, error) {
			i, err := strconv.Atoi(val)
			if err != nil || i < min {
				return 0, fmt.Errorf("invalid int for %s: %v", key, val)
			}
			return i, nil
		}
		var err error
		switch key {
		case "demo_count":
			cfg.DemoCount, err = atoi(0)
		case "demo_seed":
			cfg.DemoSeed, err = strconv.ParseInt(val, 10, 64)
			if err != nil {
				err = fmt.Errorf("invalid int for demo_seed: %v", val)
			}
		case "histogram_bins":
			var n int
			if n, err = atoi(0); err == nil {
				if err = analysis.ValidateBins(n); err == nil {
					cfg.HistogramBins = n
				}
			}
		case "age_min":
			cfg.AgeMin, err = atoi(0)
		case "age_max":
			cfg.AgeMax, err = atoi(0)
		case "charts_dir":
			cfg.ChartsDir = val
		case "chart_width":
			cfg.ChartWidth, err = atoi(1)
		case "chart_height":
			cfg.ChartHeight, err = atoi(1)
		case "server_addr":
			cfg.ServerAddr = val
		case "export_dir":
			cfg.ExportDir = val
		case "log_level":
			if _, err = cfgpkg.ParseLevel(val); err == nil {
				cfg.LogLevel = val
			}
		case "log_format":
			switch val {
			case "text", "json":
				cfg.LogFormat = val
			default:
				err = fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err != nil {
			return err
		}
		if cfg.AgeMin > cfg.AgeMax {
			return fmt.Errorf("age_min %d is greater than age_max %d", cfg.AgeMin, cfg.AgeMax)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
