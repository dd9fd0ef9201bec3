package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var envFlag string
	var verboseFlag bool

	ctx := newCommandContext(&envFlag, &verboseFlag)

	rootCmd := &cobra.Command{
		Use:           "cellar",
		Short:         "Manage your wine cellar from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.close(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "Path to a .env file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Write structured logs to stderr")

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newScanCommand(ctx))
	for _, cmd := range newStockCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newRestoreCommand(ctx))

	return rootCmd
}
