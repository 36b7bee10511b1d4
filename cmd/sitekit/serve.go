package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr     string
		basePath string
		metrics  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve resolved documents over HTTP for previews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.config()
			cfg.Features.Preview = true
			cfg.Features.Metrics = metrics
			cfg.Preview.Addr = addr
			cfg.Preview.BasePath = basePath

			module, err := root.module(cfg)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           module.PreviewHandler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			serverErrors := make(chan error, 1)
			go func() {
				fmt.Fprintf(cmd.OutOrStdout(), "serving previews on %s\n", addr)
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(shutdown)

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-shutdown:
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					_ = srv.Close()
					return fmt.Errorf("shutdown: %w", err)
				}
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/", "Path prefix for every route")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "Expose Prometheus metrics at /metrics")
	return cmd
}
