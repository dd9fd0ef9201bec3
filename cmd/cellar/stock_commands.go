package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/cellar/internal/app"
	"github.com/mamadbah2/cellar/internal/domain/models"
	"github.com/mamadbah2/cellar/internal/service/inventory"
)

func newStockCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newIncrementCommand(ctx),
		newDecrementCommand(ctx),
		newPriceCommand(ctx),
		newRemoveCommand(ctx),
	}
}

func newIncrementCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inc <id>",
		Short: "Add one bottle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				id, err := resolveID(a, args[0])
				if err != nil {
					return err
				}
				wine, err := a.Store.IncrementStock(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bottles\n", wine.Name, wine.Stock)
				return nil
			})
		},
	}
}

func newDecrementCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dec <id>",
		Short: "Take one bottle out; the last one removes the wine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				id, err := resolveID(a, args[0])
				if err != nil {
					return err
				}
				change, err := a.Store.DecrementStock(cmd.Context(), id)
				if err != nil {
					return err
				}
				if change.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: last bottle taken, removed from cellar\n", change.Wine.Name)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bottles\n", change.Wine.Name, change.Wine.Stock)
				return nil
			})
		},
	}
}

func newPriceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "price <id> <amount>",
		Short: "Set the acquisition price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				id, err := resolveID(a, args[0])
				if err != nil {
					return err
				}
				wine, err := a.Store.SetAcquisitionPrice(cmd.Context(), id, strings.TrimSpace(args[1]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", wine.Name, models.FormatPrice(wine.AcquisitionPrice))
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a wine from the cellar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				id, err := resolveID(a, args[0])
				if err != nil {
					return err
				}
				wine, err := a.Store.Get(id)
				if err != nil {
					return err
				}

				if !yes {
					fmt.Fprintf(cmd.OutOrStdout(), "Remove %s (%s) from the cellar? [y/N] ", wine.Name, wine.Vintage)
					answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					answer = strings.ToLower(strings.TrimSpace(answer))
					if answer != "y" && answer != "yes" {
						fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
						return nil
					}
				}

				if err := a.Store.Remove(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", wine.Name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// resolveID accepts a full id or an unambiguous prefix of one.
func resolveID(a *app.App, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", inventory.ErrWineNotFound
	}

	var matches []string
	for _, w := range a.Store.Wines() {
		if w.ID == ref {
			return ref, nil
		}
		if strings.HasPrefix(w.ID, ref) {
			matches = append(matches, w.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", inventory.ErrWineNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous (%d wines)", ref, len(matches))
	}
}
