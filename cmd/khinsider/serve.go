package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/khinsider-go/api"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	var host string
	var port int

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session history over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				config.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				config.Server.Port = port
			}

			log, err := newLogger(config)
			if err != nil {
				return err
			}
			defer log.Sync()

			repo, err := openHistory(opts)
			if err != nil {
				return err
			}
			defer repo.Close()

			router := api.SetupRouter(repo, config.Logging.EventsDir, log)

			addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
			server := &http.Server{
				Addr:    addr,
				Handler: router,
			}

			serverErr := make(chan error, 1)
			go func() {
				log.Info("HTTP server listening", zap.String("addr", addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serverErr <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case <-quit:
				log.Info("Received shutdown signal")
			case err := <-serverErr:
				return fmt.Errorf("failed to start server: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Server forced to shutdown", zap.Error(err))
			}

			log.Info("Server exited")
			return nil
		},
	}

	serveCmd.Flags().StringVar(&host, "host", "", "Listen host (overrides server.host)")
	serveCmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides server.port)")

	return serveCmd
}
