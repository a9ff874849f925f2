package commands

import (
	"context"

	"github.com/vsinha/fleetdash/pkg/application/services/reporting"
	"github.com/vsinha/fleetdash/pkg/domain/entities"
	"github.com/vsinha/fleetdash/pkg/interfaces/cli/output"
)

// VerifyConfig holds configuration for the verify command. Nil fields are
// left as recorded.
type VerifyConfig struct {
	Unit    string
	Km      *float64
	Fuel    *string
	Checked *bool
}

// VerifyCommand records a walk-around check of a unit on the lot.
type VerifyCommand struct {
	env    *Env
	config VerifyConfig
}

func NewVerifyCommand(env *Env, config VerifyConfig) *VerifyCommand {
	return &VerifyCommand{env: env, config: config}
}

func (c *VerifyCommand) Execute(ctx context.Context) error {
	update := entities.VerificationUpdate{
		ActualKm: c.config.Km,
		Fuel:     c.config.Fuel,
		Checked:  c.config.Checked,
	}
	if _, err := c.env.Session.SetVerification(ctx, c.config.Unit, update); err != nil {
		return err
	}

	s := c.env.Session
	unitID := entities.CleanUnitID(c.config.Unit)
	var rows []reporting.VerificationRow
	for _, row := range c.env.Reporter.VerificationSheet(s.Records(), s.Verification()) {
		if row.Unit.UnitID == unitID {
			rows = append(rows, row)
		}
	}
	return c.env.Printer.Print(rows, output.VerificationTable(rows))
}
