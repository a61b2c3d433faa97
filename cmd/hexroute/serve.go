package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/hexroute/internal/api"
	"github.com/talgya/hexroute/internal/config"
)

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route planning HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port > 0 {
				cfg.Port = port
			}

			db, err := openDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			m, err := loadWorld(db, cfg)
			if err != nil {
				return err
			}

			srv := &api.Server{
				Map:         m,
				DB:          db,
				Port:        cfg.Port,
				TimeUnit:    cfg.TimeUnit,
				RateLimit:   cfg.RateLimit,
				CORSOrigins: cfg.CORSOrigins,
			}
			srv.Start()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			slog.Info("received signal, shutting down", "signal", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			fmt.Println("hexroute stopped.")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides HEXROUTE_PORT)")
	return cmd
}
