// Package parser reads excelize workbooks into the workbook model.
package parser

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadOptions bounds how much of a sheet is read.
type LoadOptions struct {
	// MaxRows caps the rows taken from the declared sheet dimension.
	MaxRows int
	// MaxCols caps the columns taken from the declared sheet dimension.
	MaxCols int
}

// DefaultLoadOptions returns default load limits.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		MaxRows: 65536,
		MaxCols: 1024,
	}
}

// SheetBounds returns the last used row and column of a sheet. Cells with
// data always count; the declared dimension (which also covers styled empty
// cells) counts up to the configured limits.
func SheetBounds(f *excelize.File, sheetName string, rows [][]string, opts LoadOptions) (maxRow, maxCol int) {
	_, maxRow, _, maxCol = findDataBounds(rows)
	maxRow++
	maxCol++

	dim, err := f.GetSheetDimension(sheetName)
	if err != nil || dim == "" {
		return maxRow, maxCol
	}
	end := dim
	if _, after, found := strings.Cut(dim, ":"); found {
		end = after
	}
	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(end, "$", ""))
	if err != nil {
		return maxRow, maxCol
	}
	if opts.MaxRows > 0 && row > opts.MaxRows {
		row = opts.MaxRows
	}
	if opts.MaxCols > 0 && col > opts.MaxCols {
		col = opts.MaxCols
	}
	if row > maxRow {
		maxRow = row
	}
	if col > maxCol {
		maxCol = col
	}
	return maxRow, maxCol
}

// findDataBounds finds the bounding box of non-empty cells (0-based, -1 when empty).
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell != "" {
				if minRow < 0 || rowIdx < minRow {
					minRow = rowIdx
				}
				if maxRow < 0 || rowIdx > maxRow {
					maxRow = rowIdx
				}
				if minCol < 0 || colIdx < minCol {
					minCol = colIdx
				}
				if maxCol < 0 || colIdx > maxCol {
					maxCol = colIdx
				}
			}
		}
	}

	return
}
