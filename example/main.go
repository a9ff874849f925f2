// Example embeds the fleetdash session as a library: it feeds three
// in-memory exports, pins one reservation by hand and prints the result.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/vsinha/fleetdash/pkg/application/services"
	"github.com/vsinha/fleetdash/pkg/application/services/assignment"
	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

func main() {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	session := services.NewSession(services.SessionConfig{
		Engine: assignment.NewEngine(assignment.DefaultPolicy(), time.UTC),
		Clock:  func() time.Time { return now },
	})

	tables := []entities.Table{
		entities.NewTable("ResManifest.xlsx",
			[]string{"Res #", "Name", "Class", "Pickup Date", "Drop Off Date", "Daily Rate"},
			[][]any{
				{"R100", "ALAMI", "CDMR", "02/06/2025 12:00", "05/06/2025 12:00", "350"},
				{"R101", "BENNANI", "IDAR", "02/06/2025 14:00", "03/06/2025 14:00", "500"},
				{"R102", "CHRAIBI", "MDMR", "03/06/2025 10:00", "", ""},
			}),
		entities.NewTable("UnitsAvailable.xlsx",
			[]string{"Unit #", "Class", "Curr Fuel", "Curr Loc"},
			[][]any{
				{"U1", "CDMR", "F", "CMNO"},
				{"U2", "MDAR", "3/4", "CMNC"},
			}),
		entities.NewTable("UnitsDueIn.xlsx",
			[]string{"Unit #", "Class", "Name", "Expected Return", "Days Late"},
			[][]any{
				{"U7 (retour)", "IDAR", "SMITH", "02/06/2025 11:00", "0"},
			}),
	}

	for _, table := range tables {
		res, err := session.Import(ctx, table)
		if err != nil {
			fmt.Fprintf(os.Stderr, "import %s: %v\n", table.Name, err)
			os.Exit(1)
		}
		fmt.Printf("Imported %-20s %-12s kept %d of %d\n", res.Source, res.Kind, res.Stats.Kept, res.Stats.Read)
	}

	if _, err := session.Override(ctx, "R102", "none"); err != nil {
		fmt.Fprintf(os.Stderr, "override: %v\n", err)
		os.Exit(1)
	}

	result := session.Result()
	resNumbers := make([]string, 0, len(result.Assignments))
	for res := range result.Assignments {
		resNumbers = append(resNumbers, res)
	}
	sort.Strings(resNumbers)

	fmt.Println()
	for _, res := range resNumbers {
		md := result.Metadata[res]
		fmt.Printf("%-6s -> %-5s source=%-9s upgrade=%-5t pinned=%t\n",
			res, result.Assignments[res], md.Source, md.Upgrade, md.Pinned)
	}
}
