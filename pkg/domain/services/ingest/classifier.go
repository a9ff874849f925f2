package ingest

import (
	"path/filepath"
	"strings"

	"github.com/vsinha/fleetdash/pkg/domain/entities"
)

// Classifier decides which export a table came from.
type Classifier struct {
	rules []Rule
	hints []FileHint
}

// NewClassifier builds a classifier from the schema's rules and file hints.
func NewClassifier(schema Schema) *Classifier {
	return &Classifier{rules: schema.Rules, hints: schema.FileHints}
}

// Classify applies the rules in order to headers. The first rule whose
// column groups are all present wins.
func (c *Classifier) Classify(headers []string) entities.RecordKind {
	e := NewExtractor(headers)
	for _, rule := range c.rules {
		if matches(e, rule) {
			return rule.Kind
		}
	}
	return entities.KindUnknown
}

// ClassifyTable classifies by headers, falling back to the file name.
func (c *Classifier) ClassifyTable(table entities.Table) entities.RecordKind {
	if kind := c.Classify(table.Headers); kind != entities.KindUnknown {
		return kind
	}
	return c.fromName(table.Name)
}

func (c *Classifier) fromName(name string) entities.RecordKind {
	base := strings.ToLower(filepath.Base(name))
	if base == "" || base == "." {
		return entities.KindUnknown
	}
	for _, hint := range c.hints {
		if hint.Prefix != "" && strings.HasPrefix(base, strings.ToLower(hint.Prefix)) {
			return hint.Kind
		}
	}
	return entities.KindUnknown
}

func matches(e *Extractor, rule Rule) bool {
	if len(rule.Groups) == 0 {
		return false
	}
	for _, group := range rule.Groups {
		found := false
		for _, h := range group {
			if e.Has(h) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
