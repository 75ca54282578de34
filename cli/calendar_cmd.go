package cli

import (
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/roster-engine/calendar"
	"github.com/warp/roster-engine/generic"
)

func newPeriodCmd(app *App) *cobra.Command {
	var today string

	cmd := &cobra.Command{
		Use:   "period",
		Short: "Show the scheduling cycle to plan next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := app.now()
			if today != "" {
				t, err := generic.ParseDate(today)
				if err != nil {
					return fmt.Errorf("--today: %w", err)
				}
				day = t
			}

			p := calendar.TargetPeriod(day)
			w := p.Window()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s .. %s\n",
				p, p.YearMonth(), generic.FormatDate(w.Start), generic.FormatDate(w.End))
			return nil
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "Reference day (YYYY-MM-DD), defaults to now")

	return cmd
}

func newHolidaysCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "holidays YEAR",
		Short: "List the holidays of a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}

			table := app.Calendar.Holidays(year)
			dates := make([]string, 0, len(table))
			for d := range table {
				dates = append(dates, d)
			}
			sort.Strings(dates)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, d := range dates {
				fixed := ""
				if app.Calendar.IsFixedHoliday(d) {
					fixed = "fixed"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d, table[d], fixed)
			}
			return tw.Flush()
		},
	}
}
