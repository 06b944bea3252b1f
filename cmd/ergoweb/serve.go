package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/ergoweb"
	httpAdapter "github.com/aretw0/ergoweb/internal/adapters/http"
	"github.com/aretw0/ergoweb/internal/config"
	"github.com/aretw0/ergoweb/internal/logging"
	"github.com/aretw0/ergoweb/internal/presentation/tui"
	"github.com/aretw0/ergoweb/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the studio HTTP server",
	Long:  `Starts the ErgoWeb studio in server mode, exposing the editing pipeline as a JSON API over HTTP with an SSE event stream.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		listen, _ := cmd.Flags().GetString("listen")

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("listen") {
			cfg.Listen = listen
		}

		logger := logging.New(slog.LevelInfo)

		registry := prometheus.NewRegistry()
		metrics := observability.NewMetrics(registry)

		studio, err := buildStudio(cfg, logger, metrics.Hooks())
		if err != nil {
			fmt.Printf("Error initializing ergoweb: %v\n", err)
			os.Exit(1)
		}

		if err := studio.Bootstrap(cmd.Context()); err != nil {
			fmt.Printf("Error restoring persisted configuration: %v\n", err)
			os.Exit(1)
		}

		handler := httpAdapter.NewHandler(studio,
			httpAdapter.WithPanel(studio.Panel(), studio.Classifier()),
			httpAdapter.WithPackager(studio.Packager()),
			httpAdapter.WithLifecycleHooks(metrics.Hooks()),
			httpAdapter.WithPanelSelectionHook(metrics.ObservePanelSelection),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: handler,
		}

		tui.PrintBanner(ergoweb.Version)

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting ErgoWeb Server on %s\n", srv.Addr)
			fmt.Printf("Store backend: %s\n", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("ErgoWeb Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", ":8080", "Address to listen on")
}
