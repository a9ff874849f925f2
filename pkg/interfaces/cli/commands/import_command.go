package commands

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/vsinha/fleetdash/pkg/application/dto"
	"github.com/vsinha/fleetdash/pkg/application/services"
	"github.com/vsinha/fleetdash/pkg/interfaces/cli/output"
	"github.com/vsinha/fleetdash/pkg/logging"
)

// ImportConfig holds configuration for the import command
type ImportConfig struct {
	Files []string
}

// ImportCommand reads exports and feeds them to the session in order.
type ImportCommand struct {
	env    *Env
	config ImportConfig
}

func NewImportCommand(env *Env, config ImportConfig) *ImportCommand {
	return &ImportCommand{env: env, config: config}
}

// importReport is the machine-readable result of an import run.
type importReport struct {
	Imports     []dto.ImportResult     `json:"imports"`
	Skipped     []string               `json:"skipped,omitempty"`
	Assignments []output.AssignmentRow `json:"assignments"`
}

// Execute imports every file. A file that cannot be read or recognized is
// skipped and reported; the others are still imported.
func (c *ImportCommand) Execute(ctx context.Context) error {
	if len(c.config.Files) == 0 {
		return fmt.Errorf("no files to import")
	}
	logger := logging.FromContext(ctx)

	var (
		report importReport
		errs   []error
	)
	for _, path := range c.config.Files {
		table, err := c.env.Reader.Read(ctx, path)
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("Cannot read file")
			report.Skipped = append(report.Skipped, path)
			errs = append(errs, err)
			continue
		}

		result, err := c.env.Session.Import(ctx, table)
		if err != nil {
			if services.IsUnrecognizedTable(err) {
				logger.Warn().Str("file", path).Msg("File is not a reservations, available or due-in export")
			}
			report.Skipped = append(report.Skipped, path)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		report.Imports = append(report.Imports, result)
	}

	upcoming, rows := c.env.upcomingTable("Upcoming reservations")
	report.Assignments = rows
	if err := c.env.Printer.Print(report, output.ImportTable(report.Imports), upcoming); err != nil {
		return err
	}
	return stderrors.Join(errs...)
}
