package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/storygraph"
	"github.com/aretw0/storygraph/internal/cli"
	"github.com/aretw0/storygraph/internal/presentation/tui"
	httpAdapter "github.com/aretw0/storygraph/pkg/adapters/http"
	"github.com/aretw0/storygraph/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP editing server",
	Long: `Serves the story graph over HTTP: graph export (JSON and Mermaid), unit and
edge editing, a server-sent event stream of graph diffs, Prometheus metrics,
and the raw store API under /files, /file and /rename.

With --watch the graph is rebuilt whenever the store changes externally.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		watch, _ := cmd.Flags().GetBool("watch")
		withMetrics, _ := cmd.Flags().GetBool("metrics")

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		logger := cli.CreateLogger(cfg)
		streams := httpAdapter.NewStreamManager(logger)
		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

		ed, closeStore, err := cli.OpenEditor(sc, cfg, logger, streams.Hooks(), metrics.Hooks())
		if err != nil {
			return err
		}
		defer closeStore()

		opts := []httpAdapter.Option{
			httpAdapter.WithStreams(streams),
			httpAdapter.WithLogger(logger),
		}
		if withMetrics {
			opts = append(opts, httpAdapter.WithMetricsHandler(promhttp.Handler()))
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           httpAdapter.NewHandler(ed, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		out := cmd.OutOrStdout()
		tui.PrintBanner(out, storygraph.Version)

		if watch {
			go func() {
				if err := ed.Sync(sc, 0); err != nil {
					logger.Warn("live sync disabled", "error", err)
				}
			}()
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Fprintf(out, "Serving story graph (%s) on %s\n", ed.Name, srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-sc.Done():
			fmt.Fprintf(out, "\nStart shutdown... Signal: %v\n", sc.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("failed to close server: %w", err)
				}
			}
			fmt.Fprintln(out, "Storygraph server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("watch", true, "Rebuild the graph when the store changes externally")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
}
