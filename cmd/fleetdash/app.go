package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vsinha/fleetdash/pkg/application/services"
	"github.com/vsinha/fleetdash/pkg/application/services/assignment"
	"github.com/vsinha/fleetdash/pkg/application/services/reporting"
	"github.com/vsinha/fleetdash/pkg/config"
	"github.com/vsinha/fleetdash/pkg/domain/services/datenorm"
	"github.com/vsinha/fleetdash/pkg/domain/services/ingest"
	"github.com/vsinha/fleetdash/pkg/infrastructure/events"
	"github.com/vsinha/fleetdash/pkg/infrastructure/repositories/sqlite"
	"github.com/vsinha/fleetdash/pkg/infrastructure/repositories/tabular"
	"github.com/vsinha/fleetdash/pkg/interfaces/cli/commands"
	"github.com/vsinha/fleetdash/pkg/interfaces/cli/output"
	"github.com/vsinha/fleetdash/pkg/logging"
)

// App wires configuration, storage and the session behind the cobra commands.
type App struct {
	stdout io.Writer
	// envFiles and searchPaths are passed to config.Load; nil means defaults.
	envFiles    []string
	searchPaths []string

	configFile string
	verbose    bool

	cfg    *config.Config
	logger zerolog.Logger
	store  *sqlite.KeyValueStore
	env    *commands.Env
}

func NewApp(stdout io.Writer) *App {
	return &App{stdout: stdout, logger: *logging.Default()}
}

// Execute runs the command line in args.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	err := root.ExecuteContext(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "fleetdash",
		Short:   "Rental counter dashboard",
		Version: version,
		Long: `fleetdash reads the reservations, units available and units due-in
exports of a rental branch, assigns a unit to every reservation picking up
in the coming days and reports on the fleet.

State is kept between runs, so exports can be imported one at a time and
operator choices survive later imports.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configFile, "config", "", "config file (default is ./.fleetdash.yaml or $HOME/.fleetdash.yaml)")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	f.String("state", config.DefaultState, `state database path, or ":memory:"`)
	f.String("timezone", "", "IANA time zone pickups are grouped in (default local)")
	f.Int("window", 7, "days ahead to assign")
	f.Duration("margin", assignment.DefaultEligibilityMargin, "minimum time between a return and the pickup it serves")
	f.StringP("output", "o", config.DefaultOutput, "output format: table, json, yaml, csv")
	f.String("log-level", "info", "log level: trace, debug, info, warn, error")
	f.String("log-format", "auto", "log format: auto, console, json")
	f.String("log-output", "stderr", "log destination: stderr, stdout, discard or a file")
	f.Bool("no-color", false, "disable colored logs")

	root.AddCommand(
		a.importCommand(),
		a.assignCommand(),
		a.overrideCommand(),
		a.optionsCommand(),
		a.reportCommand(),
		a.verifyCommand(),
		a.resetCommand(),
	)
	return root
}

// setup loads the configuration and opens the session before any
// subcommand runs.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Options{
		ConfigFile:  a.configFile,
		SearchPaths: a.searchPaths,
		EnvFiles:    a.envFiles,
		Flags:       cmd.Flags(),
	})
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	a.logger = logging.NewLoggerFromConfig(&cfg.Log)
	logging.SetDefault(a.logger)
	ctx := logging.WithLogger(cmd.Context(), &a.logger)
	ctx = logging.WithOperation(ctx, cmd.Name())
	cmd.SetContext(ctx)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(ctx, cfg.StatePath)
	if err != nil {
		return err
	}
	a.store = store

	eventStore := events.NewInMemoryEventStore()
	if err := eventStore.Subscribe(nil, events.NewLogHandler(&a.logger)); err != nil {
		return err
	}

	engine := assignment.NewEngine(cfg.Policy(), loc)
	session := services.NewSession(services.SessionConfig{
		Store:     store,
		Projector: ingest.NewProjector(cfg.Schema, datenorm.New(loc)),
		Engine:    engine,
		Events:    eventStore,
	})
	if err := session.Load(ctx); err != nil {
		return err
	}

	a.env = &commands.Env{
		Session:  session,
		Reporter: reporting.New(engine, cfg.FuelFullThreshold),
		Reader:   tabular.NewReader(),
		Printer:  output.NewPrinter(a.stdout, format),
		BusyDays: cfg.BusyDays,
	}

	a.logger.Debug().
		Str("config", cfg.ConfigFile).
		Str("state", store.Path()).
		Str("timezone", loc.String()).
		Int("window_days", cfg.WindowDays).
		Msg("Session ready")
	return nil
}

// Close releases the state database.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}
