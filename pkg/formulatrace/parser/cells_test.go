package parser

import (
	"path/filepath"
	"testing"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
	"github.com/xuri/excelize/v2"
)

func TestExtractCells(t *testing.T) {
	// Create a temporary Excel file for testing
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "A1", "Header1")
	f.SetCellValue(sheetName, "B1", "Header2")
	f.SetCellValue(sheetName, "A2", 100)
	f.SetCellValue(sheetName, "B2", 200.5)
	f.SetCellValue(sheetName, "C3", "Text")
	if err := f.SetCellFormula(sheetName, "B3", "A2*2"); err != nil {
		t.Fatalf("SetCellFormula failed: %v", err)
	}

	yellow, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
	})
	if err != nil {
		t.Fatalf("NewStyle failed: %v", err)
	}
	if err := f.SetCellStyle(sheetName, "A2", "A2", yellow); err != nil {
		t.Fatalf("SetCellStyle failed: %v", err)
	}
	if err := f.MergeCell(sheetName, "A1", "B1"); err != nil {
		t.Fatalf("MergeCell failed: %v", err)
	}

	// Save to temp file and reopen, as a real workbook would be read
	tmpFile := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	f2, err := excelize.OpenFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer f2.Close()

	sheet := workbook.New("test.xlsx").AddSheet(sheetName)
	if err := ExtractCells(f2, sheetName, sheet, DefaultLoadOptions()); err != nil {
		t.Fatalf("ExtractCells failed: %v", err)
	}
	if err := ExtractMerges(f2, sheetName, sheet); err != nil {
		t.Fatalf("ExtractMerges failed: %v", err)
	}

	if sheet.MaxRow < 3 || sheet.MaxCol < 3 {
		t.Errorf("Expected bounds to cover C3, got (%d, %d)", sheet.MaxRow, sheet.MaxCol)
	}
	if got := sheet.Cell(1, 1).Content; got != "Header1" {
		t.Errorf("Expected 'Header1', got %q", got)
	}
	if got := sheet.Cell(2, 2).Content; got != "200.5" {
		t.Errorf("Expected '200.5', got %q", got)
	}
	if got := sheet.Cell(3, 2).Content; got != "=A2*2" {
		t.Errorf("Expected formula '=A2*2', got %q", got)
	}
	if got := sheet.Cell(2, 1).Fill; got != "FFFF00" {
		t.Errorf("Expected yellow fill on A2, got %q", got)
	}
	if got := sheet.Cell(2, 2).Fill; got != "" {
		t.Errorf("Expected no fill on B2, got %q", got)
	}
	if !sheet.IsMerged(1, 2) {
		t.Error("Expected B1 to be part of a merged range")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"123", int64(123)},
		{"123.45", 123.45},
		{"-100", int64(-100)},
		{"hello", "hello"},
		{"", nil},
	}

	for _, tt := range tests {
		result := ParseValue(tt.input)
		if result != tt.expected {
			t.Errorf("ParseValue(%q) = %v (type: %T), expected %v (type: %T)",
				tt.input, result, result, tt.expected, tt.expected)
		}
	}
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"FFFF00", "FFFF00"},
		{"#ffff00", "FFFF00"},
		{"FFFFFF00", "FFFF00"},
		{" ff00b0f0 ", "00B0F0"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeColor(tt.input); got != tt.expected {
			t.Errorf("NormalizeColor(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestFindDataBounds(t *testing.T) {
	rows := [][]string{
		{},
		{"", "x"},
		{"", "", "", "y"},
	}
	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	if minRow != 1 || maxRow != 2 || minCol != 1 || maxCol != 3 {
		t.Errorf("findDataBounds = (%d, %d, %d, %d), want (1, 2, 1, 3)", minRow, maxRow, minCol, maxCol)
	}

	minRow, _, _, _ = findDataBounds(nil)
	if minRow != -1 {
		t.Errorf("expected -1 for empty rows, got %d", minRow)
	}
}
