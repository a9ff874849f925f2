// Package config loads fleetdash settings from, in order of precedence:
// command-line flags, FLEETDASH_* environment variables, .env files, the
// .fleetdash.yaml config file and built-in defaults.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vsinha/fleetdash/pkg/application/services/assignment"
	"github.com/vsinha/fleetdash/pkg/domain/entities"
	"github.com/vsinha/fleetdash/pkg/domain/services/ingest"
	"github.com/vsinha/fleetdash/pkg/errors"
	"github.com/vsinha/fleetdash/pkg/logging"
)

const (
	EnvPrefix      = "FLEETDASH"
	ConfigName     = ".fleetdash"
	DefaultState   = ".fleetdash/state.db"
	DefaultOutput  = "table"
	MemoryState    = ":memory:"
	DefaultBusyDay = 7
)

// Output formats accepted by the CLI.
var OutputFormats = []string{"table", "json", "yaml", "csv"}

// Config is the resolved configuration.
type Config struct {
	ConfigFile string

	// StatePath is the SQLite file holding the session, or ":memory:".
	StatePath string
	// Timezone names the IANA zone pickup days are grouped in. Empty means
	// the machine's local zone.
	Timezone string

	WindowDays             int
	EligibilityMargin      time.Duration
	FuelFullThreshold      float64
	ExcludedReturnAccounts []string
	BusyDays               int

	Output string
	Log    logging.Config
	Schema ingest.Schema
}

// Options controls where configuration is looked up.
type Options struct {
	// ConfigFile forces a config file; it must exist.
	ConfigFile string
	// SearchPaths are scanned for .fleetdash.yaml when ConfigFile is empty.
	// Defaults to the working directory and the home directory.
	SearchPaths []string
	// EnvFiles are loaded into the environment without overriding it.
	// Defaults to .env.local then .env.
	EnvFiles []string
	// Flags are bound over every other source.
	Flags *pflag.FlagSet
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"state":      "state_path",
	"timezone":   "timezone",
	"window":     "window_days",
	"margin":     "eligibility_margin",
	"output":     "output",
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-output": "log.output",
	"no-color":   "log.no_color",
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	loadEnvFiles(opts.EnvFiles)

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if opts.Flags != nil {
		for flag, key := range flagKeys {
			if f := opts.Flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if err := readConfigFile(v, opts); err != nil {
		return nil, err
	}

	cfg := &Config{
		ConfigFile:             v.ConfigFileUsed(),
		StatePath:              v.GetString("state_path"),
		Timezone:               v.GetString("timezone"),
		WindowDays:             v.GetInt("window_days"),
		EligibilityMargin:      v.GetDuration("eligibility_margin"),
		FuelFullThreshold:      v.GetFloat64("fuel_full_threshold"),
		ExcludedReturnAccounts: stringList(v.Get("excluded_return_accounts")),
		BusyDays:               v.GetInt("busy_days"),
		Output:                 strings.ToLower(v.GetString("output")),
		Log: logging.Config{
			Level:   v.GetString("log.level"),
			Format:  v.GetString("log.format"),
			Output:  v.GetString("log.output"),
			NoColor: v.GetBool("log.no_color"),
		},
		Schema: ingest.DefaultSchema(),
	}

	// Lists given in the schema section replace the built-in ones; untouched
	// fields keep their defaults.
	if v.IsSet("schema") {
		replace := func(dc *mapstructure.DecoderConfig) { dc.ZeroFields = true }
		if err := v.UnmarshalKey("schema", &cfg.Schema, replace); err != nil {
			return nil, fmt.Errorf("config schema: %w", err)
		}
		// viper lower-cases keys; branch codes are upper case.
		cfg.Schema.Locations.Cities = upperKeys(cfg.Schema.Locations.Cities)
		cfg.Schema.Locations.Sites = upperKeys(cfg.Schema.Locations.Sites)
	}
	if err := cfg.Schema.Compile(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("state_path", DefaultState)
	v.SetDefault("timezone", "")
	v.SetDefault("window_days", int(assignment.DefaultWindow/(24*time.Hour)))
	v.SetDefault("eligibility_margin", assignment.DefaultEligibilityMargin)
	v.SetDefault("fuel_full_threshold", entities.DefaultFuelFullThreshold)
	v.SetDefault("excluded_return_accounts", []string{})
	v.SetDefault("busy_days", DefaultBusyDay)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.no_color", os.Getenv("NO_COLOR") != "")
}

func readConfigFile(v *viper.Viper, opts Options) error {
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.WrapIO("read config", opts.ConfigFile, err)
		}
		return nil
	}

	paths := opts.SearchPaths
	if paths == nil {
		paths = []string{"."}
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, home)
		}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if stderrors.As(err, &notFound) {
			return nil
		}
		return errors.WrapIO("read config", v.ConfigFileUsed(), err)
	}
	return nil
}

// loadEnvFiles loads .env files. godotenv never overrides a variable that is
// already set, so earlier files win.
func loadEnvFiles(files []string) {
	if files == nil {
		files = []string{".env.local", ".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// stringList accepts a YAML list or a comma separated string, as set from
// the environment.
func stringList(raw any) []string {
	var items []string
	switch x := raw.(type) {
	case nil:
	case string:
		items = strings.Split(x, ",")
	case []string:
		items = x
	case []any:
		for _, it := range x {
			items = append(items, fmt.Sprint(it))
		}
	default:
		items = []string{fmt.Sprint(x)}
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

func upperKeys(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] = v
	}
	return out
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.WindowDays <= 0 {
		return errors.NewValidationError("window_days", c.WindowDays, "must be positive")
	}
	if c.EligibilityMargin < 0 {
		return errors.NewValidationError("eligibility_margin", c.EligibilityMargin, "must not be negative")
	}
	if c.FuelFullThreshold <= 0 || c.FuelFullThreshold > 1 {
		return errors.NewValidationError("fuel_full_threshold", c.FuelFullThreshold, "must be in (0, 1]")
	}
	if c.BusyDays <= 0 {
		return errors.NewValidationError("busy_days", c.BusyDays, "must be positive")
	}
	valid := false
	for _, f := range OutputFormats {
		if c.Output == f {
			valid = true
			break
		}
	}
	if !valid {
		return errors.NewValidationError("output", c.Output, "must be one of "+strings.Join(OutputFormats, ", "))
	}
	if _, err := c.Location(); err != nil {
		return errors.NewValidationError("timezone", c.Timezone, err.Error())
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Policy builds the assignment policy.
func (c *Config) Policy() assignment.Policy {
	return assignment.Policy{
		Window:                 time.Duration(c.WindowDays) * 24 * time.Hour,
		EligibilityMargin:      c.EligibilityMargin,
		ExcludedReturnAccounts: append([]string(nil), c.ExcludedReturnAccounts...),
	}
}

// StateDir is the directory holding the state database, if any.
func (c *Config) StateDir() string {
	if c.StatePath == MemoryState {
		return ""
	}
	return filepath.Dir(c.StatePath)
}
