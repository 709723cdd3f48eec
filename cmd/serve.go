package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhisek/quizprep/internal/report"
	"github.com/abhisek/quizprep/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation and results HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")

		ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := newLogger()
		pipeline, err := buildPipeline(ctx, cfg, s.EventRepo(), logger, true)
		if err != nil {
			return err
		}

		opts := server.Options{
			Pipeline:          pipeline,
			Results:           s.ResultRepo(),
			DefaultCount:      cfg.Generation.Count,
			DefaultDifficulty: cfg.Generation.Difficulty,
			PassThreshold:     cfg.Session.PassThreshold,
			CORSOrigins:       cfg.Server.CORSOrigins,
			Timeout:           timeout,
			Logger:            logger,
		}
		if cfg.Server.ReportURL != "" {
			opts.Forward = report.NewHTTPReporter(cfg.Server.ReportURL)
		}

		return server.New(opts).ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
	serveCmd.Flags().Duration("timeout", 3*time.Minute, "Per-request timeout; generation can be slow")
}
