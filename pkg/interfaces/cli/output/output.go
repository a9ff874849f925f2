// Package output renders command results as tables, JSON, YAML or CSV.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vsinha/fleetdash/pkg/errors"
)

// Format selects a renderer.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
)

// ParseFormat validates s. An empty string picks a table on a terminal and
// JSON when stdout is piped.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	case "":
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return FormatTable, nil
		}
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: output %q (want table, json, yaml or csv)", errors.ErrUnsupportedFormat, s)
	}
}

// Table is a titled grid of cells. Headers are given in lower case and
// title-cased on output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Printer writes results in one format.
type Printer struct {
	w      io.Writer
	format Format
}

func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

func (p *Printer) Format() Format { return p.format }

// Print renders v. JSON and YAML encode v itself; tables and CSV render the
// given tables.
func (p *Printer) Print(v any, tables ...Table) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		data, err := yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.IndentSequence(false))
		if err != nil {
			return err
		}
		_, err = p.w.Write(data)
		return err
	case FormatCSV:
		return p.csv(tables)
	default:
		return p.tables(tables)
	}
}

// Message writes a line of prose. It is dropped for machine formats so that
// their output stays parseable.
func (p *Printer) Message(format string, args ...any) {
	if p.format != FormatTable {
		return
	}
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) tables(tables []Table) error {
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		if t.Title != "" {
			fmt.Fprintln(p.w, t.Title)
		}
		if len(t.Rows) == 0 {
			fmt.Fprintln(p.w, "  (none)")
			continue
		}

		table := tablewriter.NewTable(p.w)
		table.Header(toAny(titleCase(t.Headers))...)
		for _, row := range t.Rows {
			if err := table.Append(toAny(row)...); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	return nil
}

// csv writes each table as a header line plus rows, tables separated by a
// blank line.
func (p *Printer) csv(tables []Table) error {
	for i, t := range tables {
		if i > 0 {
			if _, err := io.WriteString(p.w, "\n"); err != nil {
				return err
			}
		}
		w := csv.NewWriter(p.w)
		if err := w.Write(t.Headers); err != nil {
			return err
		}
		if err := w.WriteAll(t.Rows); err != nil {
			return err
		}
	}
	return nil
}

func titleCase(headers []string) []string {
	caser := cases.Title(language.English)
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = caser.String(strings.ReplaceAll(h, "_", " "))
	}
	return out
}

func toAny(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
