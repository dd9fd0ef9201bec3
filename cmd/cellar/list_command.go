package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/cellar/internal/app"
	"github.com/mamadbah2/cellar/internal/domain/models"
	"github.com/mamadbah2/cellar/internal/service/query"
)

type criteriaFlags struct {
	search  string
	country string
	grape   string
	sort    string
	dir     string
}

func (f *criteriaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Match name or producer (case-insensitive)")
	cmd.Flags().StringVar(&f.country, "country", "", "Only wines from this country")
	cmd.Flags().StringVar(&f.grape, "grape", "", "Only wines of this grape variety")
	cmd.Flags().StringVar(&f.sort, "sort", string(query.SortByName), "Sort key: name, vintage, country, acquisitionPrice, stock")
	cmd.Flags().StringVar(&f.dir, "dir", string(query.Ascending), "Sort direction: asc or desc")
}

func (f *criteriaFlags) criteria() (query.Criteria, error) {
	key, err := query.ParseSortKey(f.sort)
	if err != nil {
		return query.Criteria{}, err
	}
	dir, err := query.ParseDirection(f.dir)
	if err != nil {
		return query.Criteria{}, err
	}
	return query.Criteria{
		Search:    f.search,
		Country:   f.country,
		Grape:     f.grape,
		SortKey:   key,
		Direction: dir,
	}, nil
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var flags criteriaFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the wines in the cellar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := flags.criteria()
			if err != nil {
				return err
			}
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				all := a.Store.Wines()
				out := cmd.OutOrStdout()
				if len(all) == 0 {
					fmt.Fprintln(out, "Your cellar is empty. Scan a label to add your first wine.")
					return nil
				}

				wines := query.Project(all, criteria)
				if len(wines) == 0 {
					fmt.Fprintln(out, "No wines match the current filters.")
					return nil
				}

				fmt.Fprintln(out, renderWineTable(wines, shouldColorize(out)))
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func renderWineTable(wines []models.Wine, colorize bool) string {
	headers := []string{"ID", "Name", "Producer", "Vintage", "Country", "Grape", "Stock", "Price"}
	rows := make([][]string, 0, len(wines))
	for _, w := range wines {
		rows = append(rows, []string{
			shortID(w.ID),
			w.Name,
			w.Producer,
			w.Vintage,
			w.Country,
			w.GrapeVariety,
			stockCell(w, colorize),
			models.FormatPrice(w.AcquisitionPrice),
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}
	return renderTable(headers, rows, aligns)
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cellar totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				wines := a.Store.Wines()
				stats := query.Summarize(wines)
				facets := query.ExtractFacets(wines)

				rows := [][]string{
					{"Cellar value", stats.FormattedValue()},
					{"Bottles", itoa(stats.Bottles)},
					{"Labels", itoa(stats.Labels)},
					{"Countries", itoa(len(facets.Countries))},
					{"Grape varieties", itoa(len(facets.Grapes))},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

// shortID trims generated ids for display. Commands accept the short form.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
