package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/history"
	"github.com/glorpus-work/vguard/pkg/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	var (
		kind  string
		limit int
		prune int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past protect, switch and clean runs",
		Long:  "Show the recorded runs, newest first. --prune keeps only the newest N records.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("prune") {
				return runHistoryPrune(prune)
			}
			return runHistory(cmd, kind, limit)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only show runs of this kind (protect, switch, clean)")
	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultHistoryLimit, "Maximum number of runs to show (0 for all)")
	cmd.Flags().IntVar(&prune, "prune", 0, "Delete all but the newest N records")

	return cmd
}

func openHistoryStore() (*history.Store, bool, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, false, err
	}
	store, err := history.Open(cfg.GetHistoryPath())
	if err != nil {
		return nil, false, err
	}
	return store, wantJSON(cfg), nil
}

func runHistory(cmd *cobra.Command, kind string, limit int) error {
	switch model.RunKind(kind) {
	case "", model.RunProtect, model.RunSwitch, model.RunClean:
	default:
		return errors.Wrapf(errors.ErrConfigValidation, "unknown run kind %q (valid: protect, switch, clean)", kind)
	}

	store, asJSON, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.List(cmd.Context(), history.Filter{Kind: model.RunKind(kind), Limit: limit})
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), runs)
	}
	if len(runs) == 0 {
		logger.Info("No runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tKIND\tRESULT\tDURATION\tDETAILS")
	_, _ = fmt.Fprintln(tw, "-------\t----\t------\t--------\t-------")
	for _, r := range runs {
		result := "ok"
		if !r.Success {
			result = "failed"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Kind, result, r.Duration.Round(time.Millisecond), runDetails(r))
	}
	return tw.Flush()
}

func runDetails(r model.RunRecord) string {
	var parts []string
	if r.Target != "" {
		parts = append(parts, "target="+r.Target)
	}
	if len(r.Deleted) > 0 {
		parts = append(parts, fmt.Sprintf("deleted=%d", len(r.Deleted)))
	}
	if r.Error != "" {
		parts = append(parts, "error="+r.Error)
	}
	return strings.Join(parts, " ")
}

func runHistoryPrune(keep int) error {
	if keep < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "--prune cannot be negative")
	}
	store, _, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	removed, err := store.Prune(keep)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	logger.Success("History pruned", logger.Fields{"removed": removed, "kept": keep})
	return nil
}
