// Package formulatrace analyzes the formula network of a spreadsheet: it
// finds input and output cells, traces every output down to its inputs and
// synthesizes a closed-form expression per output.
package formulatrace

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/classify"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/header"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/parser"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/trace"
)

// Mode represents the analysis mode.
type Mode string

const (
	// ModeLight lists input and output cells only.
	ModeLight Mode = "light"
	// ModeStandard adds dependency traces and synthesized expressions.
	ModeStandard Mode = "standard"
	// ModeVerbose adds every formula record and the dependency trees.
	ModeVerbose Mode = "verbose"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLight, ModeStandard, ModeVerbose:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode: %s (must be light, standard, or verbose)", s)
	}
}

// Options configures analysis behavior.
type Options struct {
	// Mode specifies the analysis mode (light, standard, verbose).
	Mode Mode `toml:"mode"`
	// ResultsSheet is the sheet whose formula cells are the outputs.
	ResultsSheet string `toml:"results_sheet"`
	// InputFills lists the fill colors that mark input cells.
	InputFills []string `toml:"input_fills"`
	// UnitKeywords lists header tokens that do not end a header search.
	UnitKeywords []string `toml:"unit_keywords"`
	// MaxPending bounds the pending queue of one trace.
	MaxPending int `toml:"max_pending"`
	// Workers is the number of traces run in parallel (1 = sequential).
	Workers int `toml:"workers"`
	// MaxRows caps the rows read per sheet.
	MaxRows int `toml:"max_rows"`
	// MaxCols caps the columns read per sheet.
	MaxCols int `toml:"max_cols"`
	// IncludeFormulas specifies whether to list every formula record.
	// If nil, defaults to true for verbose mode, false otherwise.
	IncludeFormulas *bool `toml:"include_formulas"`
	// IncludeTrees specifies whether to attach dependency trees.
	// If nil, defaults to true for verbose mode, false otherwise.
	IncludeTrees *bool `toml:"include_trees"`
	// Logger receives progress and per-output failures. Nil selects
	// slog.Default().
	Logger *slog.Logger `toml:"-"`
}

// DefaultOptions returns default analysis options.
func DefaultOptions() Options {
	load := parser.DefaultLoadOptions()
	return Options{
		Mode:         ModeStandard,
		ResultsSheet: classify.DefaultResultsSheet,
		InputFills:   classify.DefaultInputFills,
		UnitKeywords: header.DefaultUnitKeywords,
		MaxPending:   trace.DefaultMaxPending,
		Workers:      1,
		MaxRows:      load.MaxRows,
		MaxCols:      load.MaxCols,
	}
}

// ShouldTrace returns whether outputs are traced and synthesized.
func (o Options) ShouldTrace() bool {
	return o.Mode != ModeLight
}

// ShouldIncludeFormulas returns whether to list every formula record.
func (o Options) ShouldIncludeFormulas() bool {
	if o.IncludeFormulas != nil {
		return *o.IncludeFormulas
	}
	return o.Mode == ModeVerbose
}

// ShouldIncludeTrees returns whether to attach dependency trees.
func (o Options) ShouldIncludeTrees() bool {
	if o.IncludeTrees != nil {
		return *o.IncludeTrees
	}
	return o.Mode == ModeVerbose
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) loadOptions() parser.LoadOptions {
	return parser.LoadOptions{MaxRows: o.MaxRows, MaxCols: o.MaxCols}
}

// LoadOptionsFile reads a TOML configuration file and applies it over
// DefaultOptions. Only keys present in the file override defaults.
func LoadOptionsFile(path string) (Options, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("reading %s: %w", path, err)
	}

	var override Options
	if err := toml.Unmarshal(data, &override); err != nil {
		return opts, fmt.Errorf("parsing %s: %w", path, err)
	}
	if override.Mode != "" {
		if _, err := ParseMode(string(override.Mode)); err != nil {
			return opts, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	mergeOptions(&opts, &override)
	return opts, nil
}

// mergeOptions merges override into base.
// Only non-zero values in override are applied.
func mergeOptions(base, override *Options) {
	if override.Mode != "" {
		base.Mode = override.Mode
	}
	if override.ResultsSheet != "" {
		base.ResultsSheet = override.ResultsSheet
	}
	if override.InputFills != nil {
		base.InputFills = override.InputFills
	}
	if override.UnitKeywords != nil {
		base.UnitKeywords = override.UnitKeywords
	}
	if override.MaxPending != 0 {
		base.MaxPending = override.MaxPending
	}
	if override.Workers != 0 {
		base.Workers = override.Workers
	}
	if override.MaxRows != 0 {
		base.MaxRows = override.MaxRows
	}
	if override.MaxCols != 0 {
		base.MaxCols = override.MaxCols
	}
	if override.IncludeFormulas != nil {
		base.IncludeFormulas = override.IncludeFormulas
	}
	if override.IncludeTrees != nil {
		base.IncludeTrees = override.IncludeTrees
	}
}
