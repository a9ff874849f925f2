package commands

import (
	"context"

	"github.com/vsinha/fleetdash/pkg/application/dto"
	"github.com/vsinha/fleetdash/pkg/domain/entities"
	"github.com/vsinha/fleetdash/pkg/interfaces/cli/output"
)

// OptionsConfig holds configuration for the options command
type OptionsConfig struct {
	ResNumber string
}

// OptionsCommand lists the units an operator may pick for a reservation.
type OptionsCommand struct {
	env    *Env
	config OptionsConfig
}

func NewOptionsCommand(env *Env, config OptionsConfig) *OptionsCommand {
	return &OptionsCommand{env: env, config: config}
}

func (c *OptionsCommand) Execute(ctx context.Context) error {
	res, opts, err := c.env.Session.Options(ctx, c.config.ResNumber)
	if err != nil {
		return err
	}
	payload := struct {
		Reservation entities.Reservation `json:"reservation"`
		Options     []dto.UnitOption     `json:"options"`
	}{res, opts}
	return c.env.Printer.Print(payload, output.OptionsTable(res, opts))
}
