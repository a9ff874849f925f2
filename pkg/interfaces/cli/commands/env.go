// Package commands holds the bodies of the fleetdash subcommands. Each
// command is built from its Config and run with Execute.
package commands

import (
	"github.com/vsinha/fleetdash/pkg/application/services"
	"github.com/vsinha/fleetdash/pkg/application/services/reporting"
	"github.com/vsinha/fleetdash/pkg/domain/repositories"
	"github.com/vsinha/fleetdash/pkg/interfaces/cli/output"
)

// Env is shared by every command.
type Env struct {
	Session  *services.Session
	Reporter *reporting.Reporter
	Reader   repositories.TabularReader
	Printer  *output.Printer
	// BusyDays is how many days the busy-hours report covers.
	BusyDays int
}

func (e *Env) upcomingTable(title string) (output.Table, []output.AssignmentRow) {
	s := e.Session
	upcoming := s.Engine().Upcoming(s.Records().Reservations, s.Now())
	rows := output.AssignmentRows(upcoming, s.Result())
	return output.AssignmentTable(title, rows), rows
}
