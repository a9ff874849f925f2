package commands

import (
	"context"
	"strings"

	"github.com/vsinha/fleetdash/pkg/application/dto"
	"github.com/vsinha/fleetdash/pkg/domain/entities"
	"github.com/vsinha/fleetdash/pkg/interfaces/cli/output"
)

// OverrideConfig holds configuration for the override command
type OverrideConfig struct {
	ResNumber string
	// Unit is a unit number or "none".
	Unit string
	// Release drops the operator's choice and lets the engine decide again.
	Release bool
}

// OverrideCommand pins a unit, or no unit, to a reservation.
type OverrideCommand struct {
	env    *Env
	config OverrideConfig
}

func NewOverrideCommand(env *Env, config OverrideConfig) *OverrideCommand {
	return &OverrideCommand{env: env, config: config}
}

func (c *OverrideCommand) Execute(ctx context.Context) error {
	var (
		result dto.AssignmentResult
		err    error
	)
	if c.config.Release {
		result, err = c.env.Session.Unpin(ctx, c.config.ResNumber)
	} else {
		result, err = c.env.Session.Override(ctx, c.config.ResNumber, c.config.Unit)
	}
	if err != nil {
		return err
	}

	res := strings.TrimSpace(c.config.ResNumber)
	rows := output.SortedAssignments(c.env.Session.Records(), dto.AssignmentResult{
		Assignments: entities.Assignments{res: result.Assignments[res]},
		Metadata:    entities.MetadataMap{res: result.Metadata[res]},
	})
	if c.config.Release {
		c.env.Printer.Message("Released %s", res)
	}
	return c.env.Printer.Print(rows, output.AssignmentTable("", rows))
}
