package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/gymbmi/internal/server"
	"github.com/KaramelBytes/gymbmi/internal/session"
)

var (
	serveAddr   string
	serveFilter filterFlags
	serveDemo   demoFlags
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calculator and dashboard over HTTP",
	Long: `Start an HTTP API backed by one session: calculator history, the current batch,
dashboard JSON and PNG charts under /api/v1. Stops on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}
		scfg := server.DefaultConfig()
		scfg.Addr = conf().ServerAddr
		if cmd.Flags().Changed("addr") {
			scfg.Addr = serveAddr
		}
		filter, aopt := serveFilter.resolve(cmd)
		scfg.Filter, scfg.Bins = filter, aopt.Bins
		scfg.Demo = serveDemo.options(cmd)
		scfg.Charts = chartOptions()

		sess := session.New()
		defer sess.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(sess, scfg, slog.Default()).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address (default from config)")
	serveFilter.register(serveCmd)
	serveDemo.register(serveCmd)
}
