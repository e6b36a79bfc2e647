// Package rules loads the reconciliation rules file: tax-category markers,
// card-network prefixes and an optional date tolerance override.
package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/journal"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/reconcile"
)

// Rules represents the reconcile-rules.yaml file.
type Rules struct {
	TaxMarkers        journal.Markers `yaml:"tax_markers"`
	CardPrefixes      []string        `yaml:"card_prefixes"`
	DateToleranceDays *int            `yaml:"date_tolerance_days"`
}

// Default returns the built-in rules.
func Default() Rules {
	return Rules{
		TaxMarkers:   journal.DefaultMarkers(),
		CardPrefixes: append([]string(nil), reconcile.DefaultCardPrefixes...),
	}
}

// Load reads a rules file. A missing file yields Default().
// Keys absent from the file keep their defaults.
func Load(path string) (Rules, error) {
	rules := Default()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Rules file not found, using defaults", "path", path)
		return rules, nil
	}
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if rules.DateToleranceDays != nil && *rules.DateToleranceDays < 0 {
		return Rules{}, fmt.Errorf("date_tolerance_days must not be negative: %d", *rules.DateToleranceDays)
	}

	return rules, nil
}

// Tolerance returns the rules' date tolerance, or fallback when unset.
func (r Rules) Tolerance(fallback int) int {
	if r.DateToleranceDays != nil {
		return *r.DateToleranceDays
	}
	return fallback
}

// ReconcileOptions builds reconcile.Options using the given default tolerance.
func (r Rules) ReconcileOptions(defaultTolerance int) reconcile.Options {
	return reconcile.Options{
		DateToleranceDays: r.Tolerance(defaultTolerance),
		CardPrefixes:      r.CardPrefixes,
	}
}
