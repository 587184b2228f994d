package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/metrics"
	"github.com/glorpus-work/vguard/pkg/rpc"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local backend over HTTP",
		Long: `Expose this machine's installation to a front end running with backend.mode: remote.
Prometheus metrics are served at /metrics when server.metrics is enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on (default: server.listen)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, listen string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listen == "" {
		listen = cfg.Server.Listen
	}

	opts := []rpc.ServerOption{rpc.WithToken(cfg.Server.Token)}
	if cfg.Server.Metrics {
		prom, err := metrics.NewProm(nil)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		opts = append(opts, rpc.WithMetrics(prom))
	}

	srv := rpc.NewServer(newLocalBackend(cfg), listen, opts...)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", srv.Addr())

	<-ctx.Done()
	logger.Info("Shutting down backend server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
