package models

// DependencyNode is one node of a nested dependency tree.
type DependencyNode struct {
	// Index is the node number, unique and increasing within one trace.
	Index int `json:"index"`
	// Ref is the qualified cell address.
	Ref string `json:"ref"`
	// Kind is FORMULA, INPUT, ERROR or REVISIT.
	Kind string `json:"kind"`
	// Content is the original cell content or an error description.
	Content string `json:"content,omitempty"`
	// Label is the header label of the cell.
	Label string `json:"label,omitempty"`
	// Expression is the rendered decomposed formula, or the node kind for
	// input and error leaves.
	Expression string `json:"expression,omitempty"`
	// Value is the last evaluated value.
	Value string `json:"value,omitempty"`
	// Children are the referenced cells in occurrence order.
	Children []DependencyNode `json:"children,omitempty"`
}

// TraceStep is one expanded cell in trace order.
type TraceStep struct {
	// Index is the node number.
	Index int `json:"index"`
	// Ref is the qualified cell address.
	Ref string `json:"ref"`
	// Label is the header label of the cell.
	Label string `json:"label,omitempty"`
	// Formula is the original formula text.
	Formula string `json:"formula"`
	// Expression is the rendered decomposed formula.
	Expression string `json:"expression"`
}

// DependencyRecord is the full trace of one output cell.
type DependencyRecord struct {
	// Sheet is the owning sheet name.
	Sheet string `json:"sheet"`
	// Cell is the A1-style address.
	Cell string `json:"cell"`
	// TableName is the title of the block holding the cell.
	TableName string `json:"table_name"`
	// Formula is the original formula text.
	Formula string `json:"formula"`
	// Header is the combined header label.
	Header string `json:"header"`
	// Decomposed is the formula with aggregate functions expanded.
	Decomposed string `json:"decomposed"`
	// Expression is the rendered decomposed formula.
	Expression string `json:"expression"`
	// BaseCells lists the inputs and literals reached.
	BaseCells []string `json:"base_cells"`
	// Path lists the expanded cells in trace order.
	Path []TraceStep `json:"path"`
	// Tree is the nested dependency tree (verbose mode only).
	Tree *DependencyNode `json:"tree,omitempty"`
	// View is the visualization payload (verbose mode only).
	View *TreeView `json:"-"`
}

// TreeView is the visualization payload of a dependency tree.
type TreeView struct {
	// ID is the node number as a string.
	ID string `json:"id"`
	// Brief is a one-line summary: label, formula type and value.
	Brief string `json:"brief"`
	// Detail adds the address and full content.
	Detail string `json:"detail"`
	// Children are the child views.
	Children []TreeView `json:"children"`
}
