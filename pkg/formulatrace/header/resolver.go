// Package header infers human-readable labels for cells from the nearest
// row and column headers of the grid.
package header

import (
	"strconv"
	"strings"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
	"golang.org/x/text/unicode/norm"
)

// DefaultUnitKeywords are header tokens that name a unit rather than a
// quantity; the search continues past them.
var DefaultUnitKeywords = []string{"万元", "元", "%", "百分比", "比例"}

// Resolver finds headers within one sheet.
type Resolver struct {
	sheet    *workbook.Sheet
	keywords map[string]struct{}
}

// NewResolver creates a resolver for a sheet. A nil keyword list selects
// DefaultUnitKeywords.
func NewResolver(sheet *workbook.Sheet, keywords []string) *Resolver {
	if keywords == nil {
		keywords = DefaultUnitKeywords
	}
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		set[norm.NFKC.String(strings.TrimSpace(k))] = struct{}{}
	}
	return &Resolver{sheet: sheet, keywords: set}
}

// FindNearestHeader returns the row header, the column header and the
// combined label of a cell. Empty strings mean no header was found.
func (r *Resolver) FindNearestHeader(row, col int) (rowHeader, colHeader, combined string) {
	rowParts, foundAdjacent := r.scanRow(row, col)
	rowHeader = strings.Join(rowParts, "_")

	// Simple list tables keep their label in the adjacent left column and
	// nothing to the right; column headers would mislabel them.
	searchColumn := r.sheet.ColumnHasContent(col+1) || !foundAdjacent
	if searchColumn {
		colHeader = strings.Join(r.scanColumn(row, col), "_")
		if colHeader == "" {
			colHeader = r.numericHeader(row, col)
		}
	}

	return rowHeader, colHeader, Combine(rowHeader, colHeader)
}

// Combine joins a row and column header as "row.col".
func Combine(rowHeader, colHeader string) string {
	switch {
	case rowHeader != "" && colHeader != "":
		return rowHeader + "." + colHeader
	case rowHeader != "":
		return rowHeader
	default:
		return colHeader
	}
}

// scanRow walks left from the cell. foundAdjacent reports whether a text
// header sat in the immediately left column.
func (r *Resolver) scanRow(row, col int) (parts []string, foundAdjacent bool) {
	for c := col - 1; c >= 1; c-- {
		text, ok := headerText(r.sheet.Cell(row, c))
		if !ok || isNumeric(text) {
			continue
		}
		parts = append([]string{text}, parts...)
		if c == col-1 {
			foundAdjacent = true
		}
		if !r.isUnitKeyword(text) {
			break
		}
	}
	return parts, foundAdjacent
}

// scanColumn walks up from the cell, stopping at the first merged cell.
func (r *Resolver) scanColumn(row, col int) []string {
	var parts []string
	for rr := row - 1; rr >= 1; rr-- {
		if r.sheet.IsMerged(rr, col) {
			break
		}
		text, ok := headerText(r.sheet.Cell(rr, col))
		if !ok || isNumeric(text) {
			continue
		}
		parts = append([]string{text}, parts...)
		if !r.isUnitKeyword(text) {
			break
		}
	}
	return parts
}

// numericHeader handles numbered columns: it looks up the column for a number
// sitting directly under a merged section break (or on row 1) and pairs it
// with the nearest text anchor to its left, e.g. "Year_2024".
func (r *Resolver) numericHeader(row, col int) string {
	for rr := row - 1; rr >= 1; rr-- {
		if r.sheet.IsMerged(rr, col) {
			break
		}
		number, ok := headerText(r.sheet.Cell(rr, col))
		if !ok || !isNumeric(number) {
			continue
		}
		if rr > 1 && !r.sheet.IsMerged(rr-1, col) {
			continue
		}
		for c := col - 1; c >= 1; c-- {
			anchor, ok := headerText(r.sheet.Cell(rr, c))
			if !ok || isNumeric(anchor) {
				continue
			}
			return anchor + "_" + number
		}
	}
	return ""
}

func (r *Resolver) isUnitKeyword(text string) bool {
	_, ok := r.keywords[norm.NFKC.String(text)]
	return ok
}

// headerText returns the trimmed content of a cell that may serve as a
// header: non-empty, not "0" and not a formula.
func headerText(c workbook.Cell) (string, bool) {
	if c.IsFormula() {
		return "", false
	}
	text := strings.TrimSpace(c.Content)
	if text == "" || text == "0" {
		return "", false
	}
	return text, true
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
