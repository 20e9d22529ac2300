package header

import (
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
)

// Entry is the cached label information of one cell.
type Entry struct {
	// RowHeader is the nearest row header ("" when none).
	RowHeader string `json:"row_header,omitempty"`
	// ColHeader is the nearest column header ("" when none).
	ColHeader string `json:"col_header,omitempty"`
	// Combined is "row.col", or whichever header exists.
	Combined string `json:"combined,omitempty"`
	// Value is the last evaluated value of the cell, for display.
	Value string `json:"value,omitempty"`
}

// Label returns the combined header, falling back to the row header.
func (e Entry) Label() string {
	if e.Combined != "" {
		return e.Combined
	}
	return e.RowHeader
}

// Cache holds one Entry per in-bounds cell of every sheet. It is built once
// and never mutated, so it is safe for concurrent readers.
type Cache struct {
	sheets map[string]map[workbook.Coord]Entry
}

// BuildCache resolves the headers of every cell in the workbook.
func BuildCache(wb *workbook.Workbook, keywords []string) *Cache {
	c := &Cache{sheets: make(map[string]map[workbook.Coord]Entry)}
	for _, sheet := range wb.Sheets() {
		c.sheets[sheet.Name] = buildSheet(sheet, keywords)
	}
	return c
}

func buildSheet(sheet *workbook.Sheet, keywords []string) map[workbook.Coord]Entry {
	resolver := NewResolver(sheet, keywords)
	entries := make(map[workbook.Coord]Entry)
	for row := 1; row <= sheet.MaxRow; row++ {
		for col := 1; col <= sheet.MaxCol; col++ {
			rowHeader, colHeader, combined := resolver.FindNearestHeader(row, col)
			entry := Entry{
				RowHeader: rowHeader,
				ColHeader: colHeader,
				Combined:  combined,
				Value:     sheet.Cell(row, col).Value,
			}
			if entry == (Entry{}) {
				continue
			}
			entries[workbook.Coord{Row: row, Col: col}] = entry
		}
	}
	return entries
}

// Lookup returns the cached entry of a cell. ok is false for unknown sheets
// and for cells with neither a header nor a value.
func (c *Cache) Lookup(ref workbook.Ref) (Entry, bool) {
	sheet, ok := c.sheets[ref.Sheet]
	if !ok {
		return Entry{}, false
	}
	e, ok := sheet[workbook.Coord{Row: ref.Row, Col: ref.Col}]
	return e, ok
}

// Label returns the display label of a cell ("" when unlabeled).
func (c *Cache) Label(ref workbook.Ref) string {
	e, _ := c.Lookup(ref)
	return e.Label()
}

// Value returns the cached display value of a cell.
func (c *Cache) Value(ref workbook.Ref) string {
	e, _ := c.Lookup(ref)
	return e.Value
}
