// Package models defines the data structures of an analysis report.
package models

// CellInfo describes an input or output cell.
type CellInfo struct {
	// Sheet is the owning sheet name.
	Sheet string `json:"sheet"`
	// Cell is the A1-style address.
	Cell string `json:"cell"`
	// TableName is the title of the block holding the cell.
	TableName string `json:"table_name"`
	// Header is the combined header label ("unlabeled" when none was found).
	Header string `json:"header"`
	// Value is the last evaluated value (int64, float64, string or nil).
	Value interface{} `json:"value"`
}

// FormulaRecord is the decomposition of one formula cell.
type FormulaRecord struct {
	// Sheet is the owning sheet name.
	Sheet string `json:"sheet"`
	// Cell is the A1-style address.
	Cell string `json:"cell"`
	// Formula is the original formula text including "=".
	Formula string `json:"formula"`
	// Header is the combined header label.
	Header string `json:"header,omitempty"`
	// Decomposed is the formula with aggregate functions expanded.
	Decomposed string `json:"decomposed"`
	// Expression is the decomposed formula with references replaced by labels.
	Expression string `json:"expression"`
	// BaseCells lists the distinct references of the decomposed formula.
	BaseCells []string `json:"base_cells,omitempty"`
}
