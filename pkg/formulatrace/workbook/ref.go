package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// Ref addresses a single cell of a named sheet.
type Ref struct {
	// Sheet is the owning sheet name (unquoted).
	Sheet string
	// Col is the column index (1-based).
	Col int
	// Row is the row index (1-based).
	Row int
}

// Cell returns the unqualified A1-style name of the cell.
func (r Ref) Cell() string {
	return CellName(r.Col, r.Row)
}

// String returns the qualified reference, e.g. Sheet1!B2 or 'My Sheet'!B2.
func (r Ref) String() string {
	if r.Sheet == "" {
		return r.Cell()
	}
	return QuoteSheet(r.Sheet) + "!" + r.Cell()
}

// Less orders references by sheet name, then row, then column.
func (r Ref) Less(o Ref) bool {
	if r.Sheet != o.Sheet {
		return r.Sheet < o.Sheet
	}
	if r.Row != o.Row {
		return r.Row < o.Row
	}
	return r.Col < o.Col
}

// CellName converts 1-based coordinates to an A1-style name.
func CellName(col, row int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return "#REF!"
	}
	return name + strconv.Itoa(row)
}

// ParseRef parses "A1", "$A$1", "Sheet1!A1" or "'My Sheet'!A1".
// Unqualified references are attributed to home.
func ParseRef(s, home string) (Ref, error) {
	sheet, cell, found := cutSheet(s)
	if !found {
		sheet = home
	}
	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(cell, "$", ""))
	if err != nil {
		return Ref{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	return Ref{Sheet: sheet, Col: col, Row: row}, nil
}

// cutSheet splits a sheet qualifier off a reference, unquoting it.
func cutSheet(s string) (sheet, cell string, found bool) {
	idx := strings.LastIndex(s, "!")
	if idx < 0 {
		return "", s, false
	}
	return UnquoteSheet(s[:idx]), s[idx+1:], true
}

// UnquoteSheet removes surrounding single quotes and collapses doubled quotes.
func UnquoteSheet(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, "'") && strings.HasSuffix(name, "'") {
		return strings.ReplaceAll(name[1:len(name)-1], "''", "'")
	}
	return name
}

// QuoteSheet quotes a sheet name when it cannot appear bare in a formula.
func QuoteSheet(name string) string {
	if name == "" {
		return name
	}
	quote := unicode.IsDigit([]rune(name)[0])
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			quote = true
			break
		}
	}
	if !quote {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
