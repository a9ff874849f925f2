package ingest

import (
	"fmt"
	"regexp"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

// FieldSpec names the columns a canonical field may come from. Aliases are
// tried in order; Pattern, when set, is matched against every folded header
// once no alias produced a value.
type FieldSpec struct {
	Aliases []string `mapstructure:"aliases" yaml:"aliases"`
	Pattern string   `mapstructure:"pattern" yaml:"pattern,omitempty"`

	re *regexp.Regexp
}

// Fields builds a FieldSpec from aliases.
func Fields(aliases ...string) FieldSpec {
	return FieldSpec{Aliases: aliases}
}

func (f FieldSpec) matcher() *regexp.Regexp {
	if f.re != nil || f.Pattern == "" {
		return f.re
	}
	re, err := regexp.Compile("(?i)" + f.Pattern)
	if err != nil {
		return nil
	}
	return re
}

func (f *FieldSpec) compile() error {
	if f.Pattern == "" {
		f.re = nil
		return nil
	}
	re, err := regexp.Compile("(?i)" + f.Pattern)
	if err != nil {
		return fmt.Errorf("pattern %q: %w", f.Pattern, err)
	}
	f.re = re
	return nil
}

// Rule classifies a table as Kind when every group has at least one of its
// headers present.
type Rule struct {
	Kind   entities.RecordKind `mapstructure:"kind" yaml:"kind"`
	Groups [][]string          `mapstructure:"groups" yaml:"groups"`
}

// FileHint classifies a table by its file name prefix when no rule matched.
type FileHint struct {
	Prefix string              `mapstructure:"prefix" yaml:"prefix"`
	Kind   entities.RecordKind `mapstructure:"kind" yaml:"kind"`
}

type ReservationFields struct {
	ResNumber FieldSpec `mapstructure:"res_number" yaml:"res_number"`
	Name      FieldSpec `mapstructure:"name" yaml:"name"`
	Class     FieldSpec `mapstructure:"class" yaml:"class"`
	Pickup    FieldSpec `mapstructure:"pickup" yaml:"pickup"`
	DropOff   FieldSpec `mapstructure:"drop_off" yaml:"drop_off"`
	DailyRate FieldSpec `mapstructure:"daily_rate" yaml:"daily_rate"`
}

type AvailableFields struct {
	UnitID   FieldSpec `mapstructure:"unit_id" yaml:"unit_id"`
	Class    FieldSpec `mapstructure:"class" yaml:"class"`
	Fuel     FieldSpec `mapstructure:"fuel" yaml:"fuel"`
	Odometer FieldSpec `mapstructure:"odometer" yaml:"odometer"`
	Plate    FieldSpec `mapstructure:"plate" yaml:"plate"`
	Location FieldSpec `mapstructure:"location" yaml:"location"`
}

type DueInFields struct {
	UnitID         FieldSpec `mapstructure:"unit_id" yaml:"unit_id"`
	Model          FieldSpec `mapstructure:"model" yaml:"model"`
	Class          FieldSpec `mapstructure:"class" yaml:"class"`
	DaysLate       FieldSpec `mapstructure:"days_late" yaml:"days_late"`
	Name           FieldSpec `mapstructure:"name" yaml:"name"`
	Location       FieldSpec `mapstructure:"location" yaml:"location"`
	ExpectedReturn FieldSpec `mapstructure:"expected_return" yaml:"expected_return"`
}

// Schema is the column vocabulary of the three exports. It is data so sites
// with different export templates can extend it from configuration.
type Schema struct {
	Rules        []Rule                 `mapstructure:"rules" yaml:"rules"`
	FileHints    []FileHint             `mapstructure:"file_hints" yaml:"file_hints"`
	Reservations ReservationFields      `mapstructure:"reservations" yaml:"reservations"`
	Available    AvailableFields        `mapstructure:"available" yaml:"available"`
	DueIn        DueInFields            `mapstructure:"due_in" yaml:"due_in"`
	Locations    entities.LocationCodes `mapstructure:"locations" yaml:"locations"`
}

const odometerPattern = `^(km|kms|km\(s\)|kilometrage|od(o|omet(er)?)|mileage)$`

var (
	unitAliases     = []string{"Unit #", "Unit#", "Unit", "VIN", "Vin #", "Vin"}
	classAliases    = []string{"Class", "Categorie", "Category", "Car Class"}
	locationAliases = []string{"Current Location", "Curr Loc", "Location"}
	returnAliases   = []string{"Expected Return", "Expected Return Date", "Return Date", "Due", "Due In"}
)

// DefaultSchema returns the vocabulary of the reservation manifest, units
// available and units due-in exports.
func DefaultSchema() Schema {
	return Schema{
		Rules: []Rule{
			{Kind: entities.KindReservations, Groups: [][]string{
				{"Res #"},
				{"Pickup Date", "Pick Up Date"},
			}},
			// Due-in exports also carry a location and a unit column, so
			// they must be recognized before the available-units rule.
			{Kind: entities.KindDueIn, Groups: [][]string{
				returnAliases,
				{"Unit #", "Name", "Client"},
			}},
			{Kind: entities.KindAvailable, Groups: [][]string{
				{"Curr Loc", "Current Location", "Location"},
				{"Vin #", "Vin", "Unit #", "Unit", "Plate", "Registration"},
			}},
		},
		FileHints: []FileHint{
			{Prefix: "ResManifest", Kind: entities.KindReservations},
			{Prefix: "UnitsAvailable", Kind: entities.KindAvailable},
			{Prefix: "UnitsDueIn", Kind: entities.KindDueIn},
		},
		Reservations: ReservationFields{
			ResNumber: Fields("Res #", "RES #"),
			Name:      Fields("Name", "Client", "Customer"),
			Class:     Fields(classAliases...),
			Pickup:    Fields("Pickup Date", "Pick Up Date"),
			DropOff:   Fields("Drop Off Date", "Return Date"),
			DailyRate: Fields("Daily Rate", "Rate", "Prix"),
		},
		Available: AvailableFields{
			UnitID: Fields(unitAliases...),
			Class:  Fields(classAliases...),
			Fuel:   Fields("Curr Fuel", "Current Fuel", "Fuel", "Fuel Level"),
			Odometer: FieldSpec{
				Aliases: []string{
					"Odometer", "Current Odometer", "Curr Odometer", "Current Odo", "Curr Odo",
					"Cur Odo", "Odo", "KM", "KMS", "Kilométrage", "Mileage",
				},
				Pattern: odometerPattern,
			},
			Plate:    Fields("Plate", "Registration", "Matricule", "License", "Immatriculation"),
			Location: Fields(locationAliases...),
		},
		DueIn: DueInFields{
			UnitID:         Fields(append(append([]string{}, unitAliases...), "__EMPTY", "__EMPTY_1", "Unnamed: 0")...),
			Model:          Fields("Model", "Vehicle", "Vehicule"),
			Class:          Fields(classAliases...),
			DaysLate:       Fields("Days Late", "Days Out"),
			Name:           Fields("Name", "Client"),
			Location:       Fields(locationAliases...),
			ExpectedReturn: Fields(returnAliases...),
		},
		Locations: entities.DefaultLocationCodes(),
	}
}

// Compile validates and compiles every field pattern.
func (s *Schema) Compile() error {
	specs := map[string]*FieldSpec{
		"reservations.res_number": &s.Reservations.ResNumber,
		"reservations.name":       &s.Reservations.Name,
		"reservations.class":      &s.Reservations.Class,
		"reservations.pickup":     &s.Reservations.Pickup,
		"reservations.drop_off":   &s.Reservations.DropOff,
		"reservations.daily_rate": &s.Reservations.DailyRate,
		"available.unit_id":       &s.Available.UnitID,
		"available.class":         &s.Available.Class,
		"available.fuel":          &s.Available.Fuel,
		"available.odometer":      &s.Available.Odometer,
		"available.plate":         &s.Available.Plate,
		"available.location":      &s.Available.Location,
		"due_in.unit_id":          &s.DueIn.UnitID,
		"due_in.model":            &s.DueIn.Model,
		"due_in.class":            &s.DueIn.Class,
		"due_in.days_late":        &s.DueIn.DaysLate,
		"due_in.name":             &s.DueIn.Name,
		"due_in.location":         &s.DueIn.Location,
		"due_in.expected_return":  &s.DueIn.ExpectedReturn,
	}
	for name, spec := range specs {
		if err := spec.compile(); err != nil {
			return fmt.Errorf("schema field %s: %w", name, err)
		}
	}
	for i, rule := range s.Rules {
		if len(rule.Groups) == 0 {
			return fmt.Errorf("schema rule %d (%s): no column groups", i, rule.Kind)
		}
	}
	return nil
}
