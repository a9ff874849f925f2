package commands

import (
	"context"
)

// ResetCommand forgets every import, assignment and lot check.
type ResetCommand struct {
	env *Env
}

func NewResetCommand(env *Env) *ResetCommand {
	return &ResetCommand{env: env}
}

func (c *ResetCommand) Execute(ctx context.Context) error {
	if err := c.env.Session.Reset(ctx); err != nil {
		return err
	}
	c.env.Printer.Message("Session cleared")
	return nil
}
