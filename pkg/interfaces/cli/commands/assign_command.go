package commands

import (
	"context"

	"github.com/vsinha/fleetdash/pkg/interfaces/cli/output"
)

// AssignConfig holds configuration for the assign command
type AssignConfig struct {
	// All lists every stored entry instead of the upcoming reservations.
	All bool
}

// AssignCommand recomputes automatic assignments and prints them.
type AssignCommand struct {
	env    *Env
	config AssignConfig
}

func NewAssignCommand(env *Env, config AssignConfig) *AssignCommand {
	return &AssignCommand{env: env, config: config}
}

func (c *AssignCommand) Execute(ctx context.Context) error {
	result, err := c.env.Session.Recompute(ctx)
	if err != nil {
		return err
	}

	if c.config.All {
		rows := output.SortedAssignments(c.env.Session.Records(), result)
		return c.env.Printer.Print(rows, output.AssignmentTable("Assignments", rows))
	}
	table, rows := c.env.upcomingTable("Upcoming reservations")
	return c.env.Printer.Print(rows, table)
}
