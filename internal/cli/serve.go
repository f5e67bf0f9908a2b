// Package cli provides the serve subcommand for cloudrules.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p4th0r/cloudrules/internal/config"
	"github.com/p4th0r/cloudrules/internal/logging"
	"github.com/p4th0r/cloudrules/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var (
		listen  string
		dir     string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Publish generated rule files over HTTP",
		Long: `Serves the .lsrules files in the output directory so Little Snitch can
subscribe to them by URL.

Routes:
  GET /healthz          liveness
  GET /rules            JSON index of available rule files
  GET /rules/<name>     a rule file, e.g. /rules/cloud_rules_microsoft.lsrules
  GET /metrics          Prometheus request counters

Regenerate the files with a scheduled "cloudrules" run; the server always
serves what is currently on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger(cmd.ErrOrStderr(), false, verbose)
			return runServe(commandContext(cmd), listen, dir, logger)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", ":8080", "Address to listen on")
	cmd.Flags().StringVar(&dir, "output-dir", config.DefaultOutputDir, "Directory holding the rule files")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every served file")

	return cmd
}

func runServe(ctx context.Context, listen, dir string, logger *logging.StderrLogger) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           server.New(server.Config{Dir: dir, Logger: logger}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving rule files from %s on %s", dir, listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", listen, err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
