package main

import (
	"os/signal"
	"syscall"

	"github.com/Protocol-Lattice/go-analyst/internal/server"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	port string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat session over HTTP",
	Long: `Starts the JSON API on APP_PORT (or --port). All requests share one
session and are handled one at a time.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.port, "port", "", "Listen port (overrides APP_PORT)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.port != "" {
		cfg.App.Port = serveFlags.port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := server.New(c.session, server.Options{
		Port:           cfg.App.Port,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Logger:         c.logger.Named("http"),
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Run() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		c.logger.Info("shutting down")
		return srv.Shutdown()
	}
}
