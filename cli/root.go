/*
Package cli implements rosterctl, the operator command line.

PURPOSE:
  Lets an operator inspect the scheduling calendar, move rule documents
  between environments and check vacation quotas without the HTTP server.
  It runs against the same storage backend the server uses.

COMMANDS:
  period [--today DATE]                 Target scheduling cycle
  holidays YEAR                         Holiday table of a year
  rules list                            Every domain and its dirty flag
  rules export DOMAIN [--out FILE]      Pretty JSON document
  rules import DOMAIN FILE              Replace a domain from a document
  rules reset DOMAIN                    Restore the defaults
  vacation stats --month M [--total-rest-days N]

SEE ALSO:
  - cmd/rosterctl/main.go: Backend wiring
  - api/handlers.go: The same operations over HTTP
*/
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/roster-engine/calendar"
	"github.com/warp/roster-engine/rules"
	"github.com/warp/roster-engine/vacation"
)

// App holds the services every command runs against.
type App struct {
	Rules    *rules.Registry
	Calendar *calendar.Resolver
	Roster   vacation.RequestStore
	FullRest vacation.FullRestSource

	// Now defaults to time.Now.
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// NewRootCmd builds the rosterctl command tree over app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Inspect and maintain the roster rules engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPeriodCmd(app),
		newHolidaysCmd(app),
		newRulesCmd(app),
		newVacationCmd(app),
	)

	return root
}
