package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/errors"
)

// NewLaunchCmd creates the launch command.
func NewLaunchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Start the application",
		Long:  "Start the active version, or the newest installed one when no version is marked active",
		Args:  cobra.NoArgs,
		RunE:  runLaunch,
	}

	return cmd
}

func runLaunch(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.svc.Launch(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to launch %s: %w", s.cfg.App.Name, err)
	}
	if !res.Success {
		return &errors.BackendFailure{Op: "launch", Message: res.Error}
	}
	logger.Success("Launched", logger.Fields{"app": s.cfg.App.Name})
	return nil
}
