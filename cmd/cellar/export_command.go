package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mamadbah2/cellar/internal/app"
	"github.com/mamadbah2/cellar/internal/domain/models"
	"github.com/mamadbah2/cellar/internal/service/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		flags  criteriaFlags
		stdout bool
		sheets bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the cellar as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := flags.criteria()
			if err != nil {
				return err
			}

			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				out := cmd.OutOrStdout()
				switch {
				case sheets:
					rows, err := a.Export.PushToSheet(cmd.Context(), criteria)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Mirrored %d wines to Google Sheets\n", rows)
				case stdout:
					if err := export.WriteCSV(out, a.Export.Projection(criteria)); err != nil {
						return err
					}
					fmt.Fprintln(out)
				default:
					path, err := a.Export.WriteSnapshot(criteria)
					if err != nil {
						return err
					}
					size := "0 B"
					if info, err := os.Stat(path); err == nil {
						size = humanize.Bytes(uint64(info.Size()))
					}
					fmt.Fprintf(out, "Wrote %s (%s)\n", path, size)
				}
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write the CSV to standard output")
	cmd.Flags().BoolVar(&sheets, "sheets", false, "Mirror to the configured Google Sheet instead")
	return cmd
}

func newRestoreCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <backup.json>",
		Short: "Replace the whole cellar with a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			var wines []models.Wine
			if err := json.Unmarshal(raw, &wines); err != nil {
				return fmt.Errorf("decode backup: %w", err)
			}

			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				if !yes && len(a.Store.Wines()) > 0 {
					return fmt.Errorf("cellar is not empty, pass --yes to replace %d wines", len(a.Store.Wines()))
				}
				stored := a.Store.ReplaceAll(cmd.Context(), wines)
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d wines\n", len(stored))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Replace a non-empty cellar")
	return cmd
}
