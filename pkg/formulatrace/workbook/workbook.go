// Package workbook holds the immutable in-memory view of a spreadsheet that
// the formula engine reads from.
package workbook

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound indicates a reference to a sheet the workbook does not have.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrOutOfRange indicates a reference beyond the used bounds of a sheet.
var ErrOutOfRange = errors.New("cell out of range")

// Cell is the content of one grid position.
type Cell struct {
	// Content is the raw content: formula text starting with "=" or a literal.
	Content string `json:"content,omitempty"`
	// Value is the last evaluated value, used only for display.
	Value string `json:"value,omitempty"`
	// Fill is the pattern fill color as 6-digit uppercase RGB ("" when unfilled).
	Fill string `json:"fill,omitempty"`
}

// IsFormula reports whether the content is formula text.
func (c Cell) IsFormula() bool {
	return strings.HasPrefix(c.Content, "=")
}

// IsBlank reports whether the cell has no content or holds a numeric zero.
func (c Cell) IsBlank() bool {
	s := strings.TrimSpace(c.Content)
	if s == "" {
		return true
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f == 0
}

// Coord is a 1-based (row, column) grid position.
type Coord struct {
	Row int
	Col int
}

// MergedRange represents the inclusive bounds of a merged cell range.
type MergedRange struct {
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive).
	C2 int `json:"c2"`
}

// Contains reports whether the position lies inside the range.
func (m MergedRange) Contains(row, col int) bool {
	return row >= m.R1 && row <= m.R2 && col >= m.C1 && col <= m.C2
}

// Sheet is a sparse 2-D grid. It is populated once by a loader and only read
// afterwards, so concurrent readers need no locking.
type Sheet struct {
	// Name is the sheet name.
	Name string
	// MaxRow is the last used row (1-based).
	MaxRow int
	// MaxCol is the last used column (1-based).
	MaxCol int
	// Merges lists the merged ranges of the sheet.
	Merges []MergedRange

	cells      map[Coord]Cell
	mergeIndex map[Coord]int
	colFilled  map[int]int
}

func newSheet(name string) *Sheet {
	return &Sheet{
		Name:       name,
		cells:      make(map[Coord]Cell),
		mergeIndex: make(map[Coord]int),
		colFilled:  make(map[int]int),
	}
}

// Set stores a cell and grows the sheet bounds to include it.
func (s *Sheet) Set(row, col int, c Cell) {
	if row < 1 || col < 1 {
		return
	}
	s.Grow(row, col)
	key := Coord{Row: row, Col: col}
	if old, ok := s.cells[key]; ok && !old.IsBlank() {
		s.colFilled[col]--
	}
	if c == (Cell{}) {
		delete(s.cells, key)
		return
	}
	s.cells[key] = c
	if !c.IsBlank() {
		s.colFilled[col]++
	}
}

// Grow extends the used bounds to include the given position.
func (s *Sheet) Grow(row, col int) {
	if row > s.MaxRow {
		s.MaxRow = row
	}
	if col > s.MaxCol {
		s.MaxCol = col
	}
}

// Merge registers a merged range such as "A1:C1".
func (s *Sheet) Merge(ref string) error {
	area, err := parseArea(ref)
	if err != nil {
		return err
	}
	idx := len(s.Merges)
	s.Merges = append(s.Merges, area)
	for r := area.R1; r <= area.R2; r++ {
		for c := area.C1; c <= area.C2; c++ {
			s.mergeIndex[Coord{Row: r, Col: c}] = idx
		}
	}
	return nil
}

// Cell returns the cell at the position; missing cells are zero values.
func (s *Sheet) Cell(row, col int) Cell {
	return s.cells[Coord{Row: row, Col: col}]
}

// InBounds reports whether the position lies within the used sheet bounds.
func (s *Sheet) InBounds(row, col int) bool {
	return row >= 1 && row <= s.MaxRow && col >= 1 && col <= s.MaxCol
}

// MergeAt returns the merged range covering the position, if any.
func (s *Sheet) MergeAt(row, col int) (MergedRange, bool) {
	idx, ok := s.mergeIndex[Coord{Row: row, Col: col}]
	if !ok {
		return MergedRange{}, false
	}
	return s.Merges[idx], true
}

// IsMerged reports whether the position belongs to a merged range.
func (s *Sheet) IsMerged(row, col int) bool {
	_, ok := s.mergeIndex[Coord{Row: row, Col: col}]
	return ok
}

// ColumnHasContent reports whether any cell of the column is non-blank.
func (s *Sheet) ColumnHasContent(col int) bool {
	return s.colFilled[col] > 0
}

// Workbook is an ordered set of named sheets.
type Workbook struct {
	// Name is the workbook file name (no path).
	Name string

	sheets []*Sheet
	byName map[string]*Sheet
}

// New creates an empty workbook.
func New(name string) *Workbook {
	return &Workbook{
		Name:   name,
		byName: make(map[string]*Sheet),
	}
}

// AddSheet appends a sheet, returning the existing one if the name is taken.
func (wb *Workbook) AddSheet(name string) *Sheet {
	if s, ok := wb.byName[name]; ok {
		return s
	}
	s := newSheet(name)
	wb.sheets = append(wb.sheets, s)
	wb.byName[name] = s
	return s
}

// Sheet looks up a sheet by name.
func (wb *Workbook) Sheet(name string) (*Sheet, bool) {
	s, ok := wb.byName[name]
	return s, ok
}

// Sheets returns the sheets in workbook order.
func (wb *Workbook) Sheets() []*Sheet {
	return wb.sheets
}

// SheetNames returns the sheet names in workbook order.
func (wb *Workbook) SheetNames() []string {
	names := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		names[i] = s.Name
	}
	return names
}

// Resolve returns the cell a reference points at. The error wraps
// ErrSheetNotFound or ErrOutOfRange.
func (wb *Workbook) Resolve(ref Ref) (Cell, error) {
	s, ok := wb.byName[ref.Sheet]
	if !ok {
		return Cell{}, fmt.Errorf("%s: %w", ref, ErrSheetNotFound)
	}
	if !s.InBounds(ref.Row, ref.Col) {
		return Cell{}, fmt.Errorf("%s: %w", ref, ErrOutOfRange)
	}
	return s.Cell(ref.Row, ref.Col), nil
}

// parseArea parses a range string like $A$1:$D$10.
func parseArea(ref string) (MergedRange, error) {
	ref = strings.ReplaceAll(ref, "$", "")
	from, to, found := strings.Cut(ref, ":")
	if !found {
		to = from
	}
	c1, r1, err := excelize.CellNameToCoordinates(from)
	if err != nil {
		return MergedRange{}, fmt.Errorf("invalid range %q: %w", ref, err)
	}
	c2, r2, err := excelize.CellNameToCoordinates(to)
	if err != nil {
		return MergedRange{}, fmt.Errorf("invalid range %q: %w", ref, err)
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	return MergedRange{R1: r1, C1: c1, R2: r2, C2: c2}, nil
}
