package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/cellar/internal/app"
	"github.com/mamadbah2/cellar/internal/domain/models"
	"github.com/mamadbah2/cellar/internal/service/scanner"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		stock    string
		price    string
		webImage bool
	)

	cmd := &cobra.Command{
		Use:   "scan <photo>",
		Short: "Analyse a label photo and add the wine to the cellar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read photo: %w", err)
			}

			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				res, analysis, err := a.Scanner.Scan(cmd.Context(), data, "", scanner.Confirmation{
					Stock:            scanner.ParseStock(stock),
					AcquisitionPrice: price,
					UseWebImage:      webImage,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				rows := [][]string{
					{"Name", analysis.Name},
					{"Producer", analysis.Producer},
					{"Vintage", analysis.Vintage},
					{"Country", analysis.Country},
					{"Grape", analysis.GrapeVariety},
					{"Reference price", models.FormatPrice(analysis.ReferencePrice)},
				}
				fmt.Fprintln(out, renderTable([]string{"Field", "Detected"}, rows, nil))

				if res.Merged {
					fmt.Fprintf(out, "Already in your cellar: stock is now %d (id %s)\n", res.Wine.Stock, shortID(res.Wine.ID))
				} else {
					fmt.Fprintf(out, "Added with %d bottles (id %s)\n", res.Wine.Stock, shortID(res.Wine.ID))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&stock, "stock", "1", "Number of bottles")
	cmd.Flags().StringVar(&price, "price", "", "Acquisition price")
	cmd.Flags().BoolVar(&webImage, "web-image", false, "Use the web image found by the analysis")
	return cmd
}
