package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/vsinha/fleetdash/pkg/errors"
	"github.com/vsinha/fleetdash/pkg/interfaces/cli/output"
)

// Report sections, in the order "all" prints them.
var ReportSections = []string{"kpis", "returns", "overdue", "locations", "availability", "busy", "verification"}

// ReportConfig holds configuration for the report command
type ReportConfig struct {
	// Sections to print; empty or "all" prints every section.
	Sections []string
}

// ReportCommand prints dashboard reports.
type ReportCommand struct {
	env    *Env
	config ReportConfig
}

func NewReportCommand(env *Env, config ReportConfig) *ReportCommand {
	return &ReportCommand{env: env, config: config}
}

func (c *ReportCommand) sections() ([]string, error) {
	if len(c.config.Sections) == 0 {
		return ReportSections, nil
	}
	var out []string
	seen := map[string]bool{}
	for _, raw := range c.config.Sections {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "all" {
			return ReportSections, nil
		}
		known := false
		for _, s := range ReportSections {
			if s == name {
				known = true
				break
			}
		}
		if !known {
			return nil, errors.NewValidationError("section", raw,
				fmt.Sprintf("must be one of %s or all", strings.Join(ReportSections, ", ")))
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

func (c *ReportCommand) Execute(ctx context.Context) error {
	sections, err := c.sections()
	if err != nil {
		return err
	}

	// Reservations enter the window as time passes, so every report starts
	// from a fresh assignment run.
	s, r := c.env.Session, c.env.Reporter
	result, err := s.Recompute(ctx)
	if err != nil {
		return err
	}
	records, now := s.Records(), s.Now()

	payload := map[string]any{}
	var tables []output.Table
	for _, name := range sections {
		switch name {
		case "kpis":
			kpis, summary := r.KPIs(records, now), r.Summary(records, result, now)
			payload["kpis"] = kpis
			payload["summary"] = summary
			tables = append(tables, output.KPITable(kpis, summary))
		case "returns":
			units := r.UpcomingReturns(records, now)
			payload[name] = units
			tables = append(tables, output.DueInTable("Upcoming returns", units))
		case "overdue":
			units := r.Overdue(records)
			payload[name] = units
			tables = append(tables, output.DueInTable("Overdue", units))
		case "locations":
			groups := r.DueInByLocation(records)
			payload[name] = groups
			tables = append(tables, output.LocationTable(groups))
		case "availability":
			groups := r.AvailabilityByCategory(records, result)
			payload[name] = groups
			tables = append(tables, output.AvailabilityTable(groups))
		case "busy":
			days := r.BusyDays(records, now, c.env.BusyDays)
			payload[name] = days
			tables = append(tables, output.BusyTable(days))
		case "verification":
			rows := r.VerificationSheet(records, s.Verification())
			payload[name] = rows
			tables = append(tables, output.VerificationTable(rows))
		}
	}
	return c.env.Printer.Print(payload, tables...)
}
