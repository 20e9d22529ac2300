// Package classify assigns a role to every cell of a workbook.
package classify

import (
	"sort"
	"strings"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/parser"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
)

// Role is the classification of a cell.
type Role int

const (
	// Literal is a non-formula cell without input styling.
	Literal Role = iota
	// Formula is a cell whose content starts with "=".
	Formula
	// Input is a cell styled with one of the input fill colors.
	Input
	// OutputCandidate is a formula cell on the results sheet.
	OutputCandidate
	// Error marks a reference to a missing sheet or an out-of-bounds cell.
	Error
)

// String returns the lower-case role name.
func (r Role) String() string {
	switch r {
	case Literal:
		return "literal"
	case Formula:
		return "formula"
	case Input:
		return "input"
	case OutputCandidate:
		return "output"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Expandable reports whether a tracer should follow the references of a
// cell with this role.
func (r Role) Expandable() bool {
	return r == Formula || r == OutputCandidate
}

// Unclassified is the table name of cells outside any merged title block.
const Unclassified = "unclassified"

// DefaultResultsSheet is the sheet holding the designated outputs.
const DefaultResultsSheet = "测算结果输出"

// DefaultInputFills are the fill colors that mark user input cells.
var DefaultInputFills = []string{"FFFF00", "FFFFE0", "FFFFD7", "FFFFF0"}

// Config configures classification.
type Config struct {
	// ResultsSheet is the sheet scanned for output candidates.
	ResultsSheet string
	// InputFills lists input fill colors as RGB or ARGB hex.
	InputFills []string
}

// DefaultConfig returns the default classification settings.
func DefaultConfig() Config {
	return Config{
		ResultsSheet: DefaultResultsSheet,
		InputFills:   DefaultInputFills,
	}
}

// Index holds the role of every in-bounds cell. It is computed once and
// only read afterwards.
type Index struct {
	wb           *workbook.Workbook
	resultsSheet string
	roles        map[string]map[workbook.Coord]Role
	inputs       []workbook.Ref
	outputs      []workbook.Ref
}

// NewIndex classifies every cell of the workbook.
func NewIndex(wb *workbook.Workbook, cfg Config) *Index {
	fills := make(map[string]struct{}, len(cfg.InputFills))
	for _, c := range cfg.InputFills {
		fills[parser.NormalizeColor(c)] = struct{}{}
	}

	idx := &Index{
		wb:           wb,
		resultsSheet: cfg.ResultsSheet,
		roles:        make(map[string]map[workbook.Coord]Role),
	}
	for _, sheet := range wb.Sheets() {
		roles := make(map[workbook.Coord]Role)
		results := sheet.Name == cfg.ResultsSheet
		for row := 1; row <= sheet.MaxRow; row++ {
			for col := 1; col <= sheet.MaxCol; col++ {
				cell := sheet.Cell(row, col)
				ref := workbook.Ref{Sheet: sheet.Name, Col: col, Row: row}
				role := roleOf(cell, fills, results)
				switch role {
				case Literal:
					continue
				case Input:
					idx.inputs = append(idx.inputs, ref)
				case OutputCandidate:
					idx.outputs = append(idx.outputs, ref)
				}
				roles[workbook.Coord{Row: row, Col: col}] = role
			}
		}
		idx.roles[sheet.Name] = roles
	}
	return idx
}

func roleOf(cell workbook.Cell, fills map[string]struct{}, results bool) Role {
	if cell.Fill != "" {
		if _, ok := fills[cell.Fill]; ok {
			return Input
		}
	}
	if !cell.IsFormula() {
		return Literal
	}
	if results {
		return OutputCandidate
	}
	return Formula
}

// RoleAt returns the role of the referenced cell; Error for a missing sheet
// or an address outside the sheet bounds.
func (idx *Index) RoleAt(ref workbook.Ref) Role {
	sheet, ok := idx.wb.Sheet(ref.Sheet)
	if !ok || !sheet.InBounds(ref.Row, ref.Col) {
		return Error
	}
	role, ok := idx.roles[ref.Sheet][workbook.Coord{Row: ref.Row, Col: ref.Col}]
	if !ok {
		return Literal
	}
	return role
}

// ResultsSheet returns the configured results sheet name.
func (idx *Index) ResultsSheet() string {
	return idx.resultsSheet
}

// Inputs returns every input cell of the workbook sorted by table name,
// sheet, row and column.
func (idx *Index) Inputs() []workbook.Ref {
	return idx.sortByTable(idx.inputs)
}

// OutputCandidates returns the formula cells of the results sheet sorted
// by table name, sheet, row and column.
func (idx *Index) OutputCandidates() []workbook.Ref {
	return idx.sortByTable(idx.outputs)
}

func (idx *Index) sortByTable(refs []workbook.Ref) []workbook.Ref {
	out := make([]workbook.Ref, len(refs))
	copy(out, refs)
	names := make(map[workbook.Ref]string, len(out))
	for _, r := range out {
		names[r] = idx.TableName(r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if names[a] != names[b] {
			return names[a] < names[b]
		}
		return a.Less(b)
	})
	return out
}

// TableName returns the title of the block a cell belongs to: walking up the
// cell's column from the row above, the first merged range found yields its
// top-left content. Cells outside any titled block are Unclassified.
func (idx *Index) TableName(ref workbook.Ref) string {
	sheet, ok := idx.wb.Sheet(ref.Sheet)
	if !ok {
		return Unclassified
	}
	for row := ref.Row - 1; row >= 1; row-- {
		m, ok := sheet.MergeAt(row, ref.Col)
		if !ok {
			continue
		}
		title := strings.TrimSpace(sheet.Cell(m.R1, m.C1).Content)
		if title == "" {
			return Unclassified
		}
		return title
	}
	return Unclassified
}
