package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsinha/fleetdash/pkg/interfaces/cli/commands"
)

func (a *App) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Import reservation, available or due-in exports",
		Long: `Import one or more exports (.xlsx, .csv or .tsv). The kind of each file
is recognized from its columns. Each import replaces the records of that
kind and recomputes every automatic assignment; operator choices are kept.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewImportCommand(a.env, commands.ImportConfig{Files: args}).Execute(cmd.Context())
		},
	}
}

func (a *App) assignCommand() *cobra.Command {
	var cfg commands.AssignConfig
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Recompute automatic assignments and list them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return commands.NewAssignCommand(a.env, cfg).Execute(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&cfg.All, "all", false, "list every stored entry, not only upcoming reservations")
	return cmd
}

func (a *App) overrideCommand() *cobra.Command {
	var release bool
	cmd := &cobra.Command{
		Use:   "override RES [UNIT|none]",
		Short: "Pin a unit, or no unit, to a reservation",
		Example: `  fleetdash override R100 U42
  fleetdash override R100 none
  fleetdash override R100 --release`,
		Args: func(cmd *cobra.Command, args []string) error {
			if release {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := commands.OverrideConfig{ResNumber: args[0], Release: release}
			if len(args) > 1 {
				cfg.Unit = args[1]
			}
			return commands.NewOverrideCommand(a.env, cfg).Execute(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&release, "release", false, "drop the operator's choice and let the engine decide")
	return cmd
}

func (a *App) optionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "options RES",
		Short: "List the units that can serve a reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewOptionsCommand(a.env, commands.OptionsConfig{ResNumber: args[0]}).Execute(cmd.Context())
		},
	}
}

func (a *App) reportCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "report [SECTION...]",
		Short:     "Print dashboard reports",
		Long:      "Recompute assignments for the current time and print dashboard reports. Sections: " + strings.Join(commands.ReportSections, ", ") + " or all (the default).",
		ValidArgs: append([]string{"all"}, commands.ReportSections...),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewReportCommand(a.env, commands.ReportConfig{Sections: args}).Execute(cmd.Context())
		},
	}
}

func (a *App) verifyCommand() *cobra.Command {
	var (
		km      float64
		fuel    string
		checked bool
	)
	cmd := &cobra.Command{
		Use:   "verify UNIT",
		Short: "Record a lot check of an available unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := commands.VerifyConfig{Unit: args[0]}
			if cmd.Flags().Changed("km") {
				cfg.Km = &km
			}
			if cmd.Flags().Changed("fuel") {
				cfg.Fuel = &fuel
			}
			if cmd.Flags().Changed("checked") {
				cfg.Checked = &checked
			}
			return commands.NewVerifyCommand(a.env, cfg).Execute(cmd.Context())
		},
	}
	cmd.Flags().Float64Var(&km, "km", 0, "odometer reading")
	cmd.Flags().StringVar(&fuel, "fuel", "", "observed fuel level, e.g. F, 3/4, 50%")
	cmd.Flags().BoolVar(&checked, "checked", false, "mark the unit ready")
	return cmd
}

func (a *App) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget all imports, assignments and lot checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return commands.NewResetCommand(a.env).Execute(cmd.Context())
		},
	}
}
