package models

// Synthesis is the closed-form expression of one output cell.
type Synthesis struct {
	// Sheet is the owning sheet name.
	Sheet string `json:"sheet"`
	// Cell is the A1-style address.
	Cell string `json:"cell"`
	// TableName is the title of the block holding the cell.
	TableName string `json:"table_name"`
	// Header is the combined header label.
	Header string `json:"header"`
	// Expression is the synthesized expression over input labels.
	Expression string `json:"expression"`
}

// Failure records an output that could not be analyzed.
type Failure struct {
	// Sheet is the owning sheet name.
	Sheet string `json:"sheet"`
	// Cell is the A1-style address.
	Cell string `json:"cell"`
	// Kind is "pending_limit", "invalid_output" or "trace".
	Kind string `json:"kind"`
	// Message is the error text.
	Message string `json:"message"`
}

// Report is the result of analyzing one workbook.
type Report struct {
	// RunID identifies this analysis run.
	RunID string `json:"run_id"`
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Mode is the analysis mode.
	Mode string `json:"mode"`
	// ResultsSheet is the sheet scanned for outputs.
	ResultsSheet string `json:"results_sheet"`
	// Inputs lists the input cells.
	Inputs []CellInfo `json:"inputs"`
	// Outputs lists the output cells.
	Outputs []CellInfo `json:"outputs"`
	// Formulas lists every formula record (verbose mode only).
	Formulas []FormulaRecord `json:"formulas,omitempty"`
	// Dependencies holds one trace per output.
	Dependencies []DependencyRecord `json:"dependencies,omitempty"`
	// Syntheses holds one expression per output.
	Syntheses []Synthesis `json:"syntheses,omitempty"`
	// Failures lists outputs whose analysis failed.
	Failures []Failure `json:"failures,omitempty"`
}
