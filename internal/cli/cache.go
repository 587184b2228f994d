package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/model"
	"github.com/glorpus-work/vguard/pkg/orchestrator"
)

// NewCacheCmd creates the cache command with subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the application cache",
		Long:  "Show the size of the application cache or clean it",
	}

	cmd.AddCommand(
		newCacheSizeCmd(),
		newCacheCleanCmd(),
	)

	return cmd
}

func newCacheSizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size",
		Short: "Show cache size",
		Long:  "Display the size of the application's cache directories",
		Args:  cobra.NoArgs,
		RunE:  runCacheSize,
	}

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the cache",
		Long:  "Remove the application's cache directories",
		Args:  cobra.NoArgs,
		RunE:  runCacheClean,
	}

	return cmd
}

func runCacheSize(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	size, err := s.svc.CalculateCacheSize(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to calculate cache size: %w", err)
	}

	if wantJSON(s.cfg) {
		return writeJSON(cmd.OutOrStdout(), map[string]float64{"size_mb": size})
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cache: %.1f MB\n", size)
	return nil
}

func runCacheClean(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	o, err := s.orchestrator(orchestrator.DashboardViews)
	if err != nil {
		return err
	}
	s.recordRuns(o)

	res, err := o.CleanCache(cmd.Context())
	if wantJSON(s.cfg) && err == nil {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	for _, line := range model.ParseLogLines(res.Logs) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), logMark(line))
	}
	if err != nil {
		return fmt.Errorf("failed to clean cache: %w", err)
	}

	logger.Success(o.View().Notice)
	return nil
}
