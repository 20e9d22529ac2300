package formula

import (
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
)

// MaxRangeCells bounds range expansion; larger ranges are left unexpanded.
const MaxRangeCells = 1 << 20

// ExpandRange lists the cells of the inclusive range from..to row by row.
func ExpandRange(from, to workbook.Ref) []workbook.Ref {
	from, to = normalizeRange(from, to)
	rows := to.Row - from.Row + 1
	cols := to.Col - from.Col + 1
	if rows*cols > MaxRangeCells {
		return nil
	}
	cells := make([]workbook.Ref, 0, rows*cols)
	for r := from.Row; r <= to.Row; r++ {
		for c := from.Col; c <= to.Col; c++ {
			cells = append(cells, workbook.Ref{Sheet: from.Sheet, Col: c, Row: r})
		}
	}
	return cells
}

// References returns every reference occurrence of a formula in order, with
// ranges expanded row-major. Repeated references are kept.
func References(formula, home string) []workbook.Ref {
	var refs []workbook.Ref
	for _, t := range Parse(formula, home) {
		refs = append(refs, t.Cells()...)
	}
	return refs
}

// ExtractReferences returns the distinct references of a formula in order of
// first occurrence.
func ExtractReferences(formula, home string) []workbook.Ref {
	return Dedup(References(formula, home))
}

// Dedup removes repeated references, keeping the first occurrence.
func Dedup(refs []workbook.Ref) []workbook.Ref {
	seen := make(map[workbook.Ref]struct{}, len(refs))
	out := make([]workbook.Ref, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
