package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/roster-engine/vacation"
)

func newVacationCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vacation",
		Short: "Vacation quotas and statistics",
	}
	cmd.AddCommand(newVacationStatsCmd(app))
	return cmd
}

func newVacationStatsCmd(app *App) *cobra.Command {
	var month string
	var totalRest int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Per-person leave counts and remaining quota for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			m, err := vacation.ParseMonth(month)
			if err != nil {
				return fmt.Errorf("--month: %w", err)
			}
			if !cmd.Flags().Changed("total-rest-days") {
				totalRest = app.Rules.SchedulingOrder.Rules().BasicRestRules.MinLegalRestDays
			}
			if totalRest < 0 {
				return fmt.Errorf("--total-rest-days must not be negative")
			}

			staff, err := app.Roster.ListStaff(ctx)
			if err != nil {
				return err
			}
			book, err := app.Roster.LoadBook(ctx, m)
			if err != nil {
				return err
			}
			ledger := vacation.NewLedger(book, app.Calendar, app.FullRest)
			stats := ledger.AllVacationStats(staff, m)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d work days, %d weekend days, %d rest days each\n",
				m, vacation.WorkDaysInMonth(m.Year, m.Month), vacation.WeekendDaysInMonth(m.Year, m.Month), totalRest)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tNAME\tANNUAL\tLEGAL\tREMAINING")
			for _, s := range stats.Staff {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n",
					s.Key, s.Name, s.Distribution.Annual, s.Distribution.Legal,
					ledger.RemainingVacationDays(s.Key, m, totalRest))
			}
			fmt.Fprintf(tw, "TOTAL\t\t%d\t%d\t\n", stats.Totals.Annual, stats.Totals.Legal)
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month as YYYYMM or YYYY-MM")
	cmd.Flags().IntVar(&totalRest, "total-rest-days", 0, "Rest days per person (default: minimum legal rest days)")
	cmd.MarkFlagRequired("month")

	return cmd
}
