package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/rules"
)

func newRulesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show, export, import and reset rule domains",
	}

	cmd.AddCommand(
		newRulesListCmd(app),
		newRulesExportCmd(app),
		newRulesImportCmd(app),
		newRulesResetCmd(app),
	)

	return cmd
}

func domainArg(app *App, arg string) (rules.Domain, error) {
	id, err := generic.ParseDomain(arg)
	if err != nil {
		return nil, err
	}
	return app.Rules.Domain(id)
}

func newRulesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the rule domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DOMAIN\tDIRTY")
			for _, d := range app.Rules.All() {
				fmt.Fprintf(tw, "%s\t%t\n", d.ID(), d.Dirty())
			}
			return tw.Flush()
		},
	}
}

func newRulesExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export DOMAIN",
		Short: "Print a domain's rules as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domainArg(app, args[0])
			if err != nil {
				return err
			}
			doc, err := d.ExportRules()
			if err != nil {
				return err
			}
			if out != "" {
				return os.WriteFile(out, []byte(doc+"\n"), 0o644)
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")

	return cmd
}

func newRulesImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import DOMAIN FILE",
		Short: "Replace a domain's rules from an exported document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domainArg(app, args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[1], err)
			}
			if !d.ImportRules(context.Background(), string(data)) {
				return fmt.Errorf("%s: not a valid %s rules document", args[1], d.ID())
			}
			return reportWrite(cmd, d, "imported")
		},
	}
}

func newRulesResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset DOMAIN",
		Short: "Restore a domain's default rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domainArg(app, args[0])
			if err != nil {
				return err
			}
			d.ResetToDefault(context.Background())
			return reportWrite(cmd, d, "reset")
		},
	}
}

// reportWrite fails when the change stayed in memory only.
func reportWrite(cmd *cobra.Command, d rules.Domain, verb string) error {
	if d.Dirty() {
		return fmt.Errorf("%s %s but saving to storage failed", d.ID(), verb)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d.ID(), verb)
	return nil
}
