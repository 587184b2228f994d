package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/orchestrator"
)

// NewSwitchCmd creates the switch command.
func NewSwitchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switch VERSION",
		Short: "Make an installed version the active one",
		Long: `Make an installed version the active one without deleting anything.
VERSION is the version's directory name or its full path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSwitch(cmd, args[0])
		},
	}

	return cmd
}

func runSwitch(cmd *cobra.Command, query string) error {
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

	ctx := cmd.Context()
	if err := load(ctx, o, orchestrator.LoadInstalled); err != nil {
		return fmt.Errorf("failed to scan versions: %w", err)
	}
	target, err := findInstalled(o.View().Installed, query)
	if err != nil {
		return err
	}
	if err := o.RequestSwitch(target.Path); err != nil {
		return err
	}

	res, err := o.ConfirmSwitch(ctx)
	if err != nil {
		return fmt.Errorf("failed to switch to %s: %w", target.Name, err)
	}
	if wantJSON(s.cfg) {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	logger.Success(res.Message, logger.Fields{"path": target.Path})
	return nil
}
