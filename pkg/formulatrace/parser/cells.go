package parser

import (
	"strconv"
	"strings"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
	"github.com/xuri/excelize/v2"
)

// ExtractCells reads every used cell of a sheet into the workbook model.
// Formula cells keep their formula text (prefixed with "=") as content and
// their cached result as value; other cells keep their raw value as both.
func ExtractCells(f *excelize.File, sheetName string, sheet *workbook.Sheet, opts LoadOptions) error {
	raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}
	formatted, err := f.GetRows(sheetName)
	if err != nil {
		return err
	}

	maxRow, maxCol := SheetBounds(f, sheetName, raw, opts)
	fills := newFillCache(f)

	for rowNum := 1; rowNum <= maxRow; rowNum++ {
		for colNum := 1; colNum <= maxCol; colNum++ {
			cellName, err := excelize.CoordinatesToCellName(colNum, rowNum)
			if err != nil {
				return err
			}

			content := valueAt(raw, rowNum, colNum)
			formula, err := f.GetCellFormula(sheetName, cellName)
			if err != nil {
				return err
			}
			if formula != "" {
				content = "=" + strings.TrimPrefix(formula, "=")
			}

			fill, err := fills.cellFill(sheetName, cellName)
			if err != nil {
				return err
			}

			sheet.Set(rowNum, colNum, workbook.Cell{
				Content: content,
				Value:   valueAt(formatted, rowNum, colNum),
				Fill:    fill,
			})
		}
	}
	sheet.Grow(maxRow, maxCol)

	return nil
}

// valueAt returns the 1-based cell of a GetRows result, or "" when absent.
func valueAt(rows [][]string, rowNum, colNum int) string {
	if rowNum > len(rows) {
		return ""
	}
	row := rows[rowNum-1]
	if colNum > len(row) {
		return ""
	}
	return row[colNum-1]
}

// ParseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, nil for an empty
// string, or the original string.
func ParseValue(s string) interface{} {
	if s == "" {
		return nil
	}
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// Return as string
	return s
}
