package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/vguard/internal/cli"
)

var (
	configPath   string
	verbose      bool
	outputFormat string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vguard",
		Short: "Keep a chosen CapCut version and stop it from updating",
		Long: `vguard manages the installed CapCut versions on this machine:
- Inspect: status, installed versions, cache size, archive releases
- Protect: keep one version, delete the rest, lock the config and block the updater
- Switch: make another installed version active without deleting anything`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json)")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.OutputFormat = &outputFormat

	// Add subcommands
	cmd.AddCommand(
		cli.NewStatusCmd(),
		cli.NewListCmd(),
		cli.NewArchiveCmd(),
		cli.NewCacheCmd(),
		cli.NewSwitchCmd(),
		cli.NewProtectCmd(),
		cli.NewBackupCmd(),
		cli.NewLaunchCmd(),
		cli.NewHistoryCmd(),
		cli.NewHooksCmd(),
		cli.NewServeCmd(),
		cli.NewUICmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
