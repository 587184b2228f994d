package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/cache"
	"github.com/glorpus-work/vguard/pkg/errors"
)

// NewBackupCmd creates the backup command with subcommands.
func NewBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage version backups",
		Long:  "List, restore and delete the backups taken before versions were deleted",
	}

	cmd.AddCommand(
		newBackupListCmd(),
		newBackupRestoreCmd(),
		newBackupDeleteCmd(),
		newBackupClearCmd(),
	)

	return cmd
}

func newBackupListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backups",
		Long:  "List version backups, newest first, and their total size",
		Args:  cobra.NoArgs,
		RunE:  runBackupList,
	}

	return cmd
}

func newBackupRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore ID",
		Short: "Restore a backup",
		Long:  "Restore a version backup to its original location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackupRestore(cmd, args[0])
		},
	}

	return cmd
}

func newBackupDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackupDelete(cmd, args[0])
		},
	}

	return cmd
}

func newBackupClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBackupClear(cmd, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runBackupList(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	backups, err := s.svc.ListBackups(ctx)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if wantJSON(s.cfg) {
		return writeJSON(cmd.OutOrStdout(), backups)
	}
	if len(backups) == 0 {
		logger.Info("No backups found")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tVERSION\tCREATED\tSIZE\tREASON")
	_, _ = fmt.Fprintln(tw, "--\t-------\t-------\t----\t------")
	for _, b := range backups {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.VersionName, b.CreatedAt.Local().Format("2006-01-02 15:04"), cache.FormatBytes(b.SizeBytes), b.Reason)
	}
	_ = tw.Flush()

	if total, err := s.svc.BackupSize(ctx); err == nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d backup(s), %s\n", len(backups), cache.FormatBytes(total))
	}
	return nil
}

func runBackupRestore(cmd *cobra.Command, id string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.svc.RestoreBackup(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to restore backup %s: %w", id, err)
	}
	if wantJSON(s.cfg) {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	if !res.Success {
		return &errors.BackendFailure{Op: "restore", Message: res.Error}
	}
	logger.Success("Backup restored", logger.Fields{"id": id, "path": res.RestoredPath})
	return nil
}

func runBackupDelete(cmd *cobra.Command, id string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.svc.DeleteBackup(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete backup %s: %w", id, err)
	}
	logger.Success("Backup deleted", logger.Fields{"id": id})
	return nil
}

func runBackupClear(cmd *cobra.Command, yes bool) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete all backups?") {
		logger.Info("Nothing deleted")
		return nil
	}
	n, err := s.svc.ClearBackups(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clear backups: %w", err)
	}
	logger.Success("Backups cleared", logger.Fields{"removed": n})
	return nil
}
