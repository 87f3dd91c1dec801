// internal/cli/serve.go
package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"commit-evidence/internal/api"
	"commit-evidence/internal/store"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored evidence over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, root)
		},
	}
	cmd.Flags().String("listen", ":8080", "address the API listens on")
	cmd.Flags().String("db-url", "", "Postgres connection URL (DB_URL)")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions) error {
	ctx := cmd.Context()
	cfg, logger, err := root.load(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateStore(); err != nil {
		return usageError(err)
	}

	st, err := store.Open(ctx, cfg.DBURL, logger)
	if err != nil {
		return Wrap(ExitFailure, "evidence store unavailable", err)
	}
	defer st.Close()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewRouter(st.Querier(), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Evidence API listening", "addr", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return Wrap(ExitFailure, "server failed", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Shutdown signal received. Exiting.")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
