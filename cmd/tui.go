package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/gymbmi/internal/session"
	"github.com/KaramelBytes/gymbmi/internal/tui"
)

var tuiExportDir string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive quick calculator with session history",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := tuiExportDir
		if dir == "" {
			dir = conf().ExportDir
		}
		sess := session.New()
		defer sess.Close()
		return tui.RunCalculator(sess, dir)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().StringVar(&tuiExportDir, "export-dir", "", "directory for exported history CSVs (default from config)")
}
