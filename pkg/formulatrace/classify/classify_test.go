package classify

import (
	"testing"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
)

func buildWorkbook(t *testing.T) *workbook.Workbook {
	t.Helper()
	wb := workbook.New("book.xlsx")

	in := wb.AddSheet("Inputs")
	in.Set(1, 1, workbook.Cell{Content: "Prices"})
	if err := in.Merge("A1:C1"); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	in.Set(2, 1, workbook.Cell{Content: "unit_price"})
	in.Set(2, 2, workbook.Cell{Content: "5", Fill: "FFFF00"})
	in.Set(3, 2, workbook.Cell{Content: "=B2*2", Fill: "FFFFE0"})
	in.Set(4, 2, workbook.Cell{Content: "=B3+1"})
	in.Set(5, 2, workbook.Cell{Content: "7", Fill: "00B0F0"})

	out := wb.AddSheet(DefaultResultsSheet)
	out.Set(1, 1, workbook.Cell{Content: "=Inputs!B4"})
	out.Set(2, 1, workbook.Cell{Content: "=Inputs!B2", Fill: "FFFF00"})
	out.Set(3, 1, workbook.Cell{Content: "total"})
	return wb
}

func TestRoleAt(t *testing.T) {
	idx := NewIndex(buildWorkbook(t), DefaultConfig())

	tests := []struct {
		ref  workbook.Ref
		want Role
	}{
		{workbook.Ref{Sheet: "Inputs", Col: 1, Row: 2}, Literal},
		{workbook.Ref{Sheet: "Inputs", Col: 2, Row: 2}, Input},
		{workbook.Ref{Sheet: "Inputs", Col: 2, Row: 3}, Input},
		{workbook.Ref{Sheet: "Inputs", Col: 2, Row: 4}, Formula},
		{workbook.Ref{Sheet: "Inputs", Col: 2, Row: 5}, Literal},
		{workbook.Ref{Sheet: "Inputs", Col: 1, Row: 5}, Literal},
		{workbook.Ref{Sheet: DefaultResultsSheet, Col: 1, Row: 1}, OutputCandidate},
		{workbook.Ref{Sheet: DefaultResultsSheet, Col: 1, Row: 2}, Input},
		{workbook.Ref{Sheet: DefaultResultsSheet, Col: 1, Row: 3}, Literal},
		{workbook.Ref{Sheet: "Missing", Col: 1, Row: 1}, Error},
		{workbook.Ref{Sheet: "Inputs", Col: 40, Row: 1}, Error},
		{workbook.Ref{Sheet: "Inputs", Col: 1, Row: 999}, Error},
	}

	for _, tt := range tests {
		t.Run(tt.ref.String(), func(t *testing.T) {
			if got := idx.RoleAt(tt.ref); got != tt.want {
				t.Errorf("RoleAt(%s) = %s, want %s", tt.ref, got, tt.want)
			}
		})
	}
}

func TestInputsAndOutputs(t *testing.T) {
	idx := NewIndex(buildWorkbook(t), DefaultConfig())

	inputs := idx.Inputs()
	want := []string{
		"Inputs!B2",
		"Inputs!B3",
		DefaultResultsSheet + "!A2",
	}
	if len(inputs) != len(want) {
		t.Fatalf("got %d inputs, want %d: %v", len(inputs), len(want), inputs)
	}
	for i, ref := range inputs {
		if ref.String() != want[i] {
			t.Errorf("inputs[%d] = %s, want %s", i, ref, want[i])
		}
	}

	outputs := idx.OutputCandidates()
	if len(outputs) != 1 || outputs[0].String() != DefaultResultsSheet+"!A1" {
		t.Errorf("outputs = %v", outputs)
	}
}

func TestCustomConfig(t *testing.T) {
	idx := NewIndex(buildWorkbook(t), Config{
		ResultsSheet: "Inputs",
		InputFills:   []string{"#ff00b0f0"},
	})

	if got := idx.RoleAt(workbook.Ref{Sheet: "Inputs", Col: 2, Row: 5}); got != Input {
		t.Errorf("blue cell role = %s, want input", got)
	}
	if got := idx.RoleAt(workbook.Ref{Sheet: "Inputs", Col: 2, Row: 3}); got != OutputCandidate {
		t.Errorf("B3 role = %s, want output", got)
	}
	if got := len(idx.OutputCandidates()); got != 2 {
		t.Errorf("got %d outputs, want 2", got)
	}
}

func TestTableName(t *testing.T) {
	idx := NewIndex(buildWorkbook(t), DefaultConfig())

	tests := []struct {
		ref  workbook.Ref
		want string
	}{
		{workbook.Ref{Sheet: "Inputs", Col: 2, Row: 4}, "Prices"},
		{workbook.Ref{Sheet: "Inputs", Col: 1, Row: 1}, Unclassified},
		{workbook.Ref{Sheet: "Inputs", Col: 4, Row: 4}, Unclassified},
		{workbook.Ref{Sheet: DefaultResultsSheet, Col: 1, Row: 3}, Unclassified},
		{workbook.Ref{Sheet: "Missing", Col: 1, Row: 3}, Unclassified},
	}
	for _, tt := range tests {
		if got := idx.TableName(tt.ref); got != tt.want {
			t.Errorf("TableName(%s) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestRoleString(t *testing.T) {
	if Input.String() != "input" || Error.String() != "error" || Role(42).String() != "unknown" {
		t.Error("unexpected role names")
	}
	if !Formula.Expandable() || !OutputCandidate.Expandable() || Input.Expandable() {
		t.Error("unexpected Expandable results")
	}
}
