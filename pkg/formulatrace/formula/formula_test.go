package formula

import (
	"strings"
	"testing"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
)

func refs(t *testing.T, names ...string) []workbook.Ref {
	t.Helper()
	out := make([]workbook.Ref, len(names))
	for i, n := range names {
		r, err := workbook.ParseRef(n, "")
		if err != nil {
			t.Fatalf("bad ref %q: %v", n, err)
		}
		out[i] = r
	}
	return out
}

func equalRefs(a, b []workbook.Ref) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    string
	}{
		{"sum range", "=SUM(A1:A3)", "(Sheet1!A1 + Sheet1!A2 + Sheet1!A3)"},
		{"average range", "=AVERAGE(A1:A2)", "((Sheet1!A1 + Sheet1!A2)/2)"},
		{"plain arithmetic", "=B2*2", "Sheet1!B2*2"},
		{"anchors stripped", "=$B$2+C$3", "Sheet1!B2+Sheet1!C3"},
		{"sum arguments", "=SUM(A1,B1)", "(Sheet1!A1 + Sheet1!B1)"},
		{"nested sum", "=SUM(SUM(A1:A2),B1)", "((Sheet1!A1 + Sheet1!A2) + Sheet1!B1)"},
		{"sum 2-d range row-major", "=SUM(A1:B2)", "(Sheet1!A1 + Sheet1!B1 + Sheet1!A2 + Sheet1!B2)"},
		{"average of mixed terms", "=AVERAGE(A1,B1*2)", "((Sheet1!A1 + Sheet1!B1*2)/2)"},
		{"irr", "=IRR(A1:A3)", "IRR(Sheet1!A1,Sheet1!A2,Sheet1!A3)"},
		{"npv", "=NPV(B1,A1:A2)", "NPV(Sheet1!B1,Sheet1!A1,Sheet1!A2)"},
		{"irr without range", "=IRR(A1)", "IRR(Sheet1!A1)"},
		{"qualifier inheritance", "=Sheet2!A1+B1", "Sheet2!A1+Sheet2!B1"},
		{"quoted sheet", "='My Sheet'!$A$1*2", "'My Sheet'!A1*2"},
		{"text literal", `=IF(A1>0,"yes","no")`, `IF(Sheet1!A1>0,"yes","no")`},
		{"prefix minus", "=-A1", "-Sheet1!A1"},
		{"lower-case function", "=sum(A1:A2)", "(Sheet1!A1 + Sheet1!A2)"},
		{"not a formula", "42", "42"},
		{"text content", "Revenue", "Revenue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decompose(tt.formula, "Sheet1"); got != tt.want {
				t.Errorf("Decompose(%q) = %q, want %q", tt.formula, got, tt.want)
			}
		})
	}
}

func TestDecomposeMalformedTerminates(t *testing.T) {
	got := Decompose("=SUM(", "Sheet1")
	if !strings.HasPrefix(got, "SUM") {
		t.Errorf("Decompose of unbalanced call = %q, want it left in place", got)
	}
}

func TestDecomposeKeepsReferences(t *testing.T) {
	formula := "=SUM(A1:A3)+AVERAGE(B1:B2)*Other!C1"
	decomposed := Decompose(formula, "Sheet1")
	if got, want := References(decomposed, "Sheet1"), References(formula, "Sheet1"); !equalRefs(got, want) {
		t.Errorf("references changed by decomposition:\n%v\n%v", got, want)
	}
}

func TestReferences(t *testing.T) {
	tests := []struct {
		formula string
		want    []workbook.Ref
	}{
		{"=A1+A1", refs(t, "S!A1", "S!A1")},
		{"=SUM(A1:B2)", refs(t, "S!A1", "S!B1", "S!A2", "S!B2")},
		{"=Sheet2!A1+B1+'Other'!C1+D1", refs(t, "Sheet2!A1", "Sheet2!B1", "Other!C1", "Other!D1")},
		{"=Rate*A1", refs(t, "S!A1")},
		{"=SUM(A:A)", nil},
		{`="A1"&B1`, refs(t, "S!B1")},
		{"no formula", nil},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			got := References(tt.formula, "S")
			if !equalRefs(got, tt.want) {
				t.Errorf("References(%q) = %v, want %v", tt.formula, got, tt.want)
			}
		})
	}
}

func TestExtractReferences(t *testing.T) {
	got := ExtractReferences("=B1+A1:A2+B1+A2", "S")
	want := refs(t, "S!B1", "S!A1", "S!A2")
	if !equalRefs(got, want) {
		t.Fatalf("ExtractReferences = %v, want %v", got, want)
	}

	var b strings.Builder
	b.WriteString("=")
	for i, r := range got {
		if i > 0 {
			b.WriteString("+")
		}
		b.WriteString(r.String())
	}
	if again := ExtractReferences(b.String(), "S"); !equalRefs(again, got) {
		t.Errorf("ExtractReferences is not idempotent: %v vs %v", again, got)
	}
}

func TestExpandRange(t *testing.T) {
	from := workbook.Ref{Sheet: "S", Col: 2, Row: 3}
	to := workbook.Ref{Sheet: "S", Col: 1, Row: 2}
	got := ExpandRange(from, to)
	want := refs(t, "S!A2", "S!B2", "S!A3", "S!B3")
	if !equalRefs(got, want) {
		t.Errorf("ExpandRange = %v, want %v", got, want)
	}

	huge := ExpandRange(workbook.Ref{Sheet: "S", Col: 1, Row: 1}, workbook.Ref{Sheet: "S", Col: 16384, Row: 1048576})
	if huge != nil {
		t.Errorf("expected oversized range to stay unexpanded, got %d cells", len(huge))
	}
}

func TestParseKinds(t *testing.T) {
	tokens := Parse("=ROUND(Sheet2!A1:B2,2)", "S")
	kinds := []Kind{Function, Punctuation, Reference, Punctuation, Literal, Punctuation}
	if len(tokens) != len(kinds) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(kinds), tokens)
	}
	for i, k := range kinds {
		if tokens[i].Kind != k {
			t.Errorf("token %d kind = %s, want %s", i, tokens[i].Kind, k)
		}
	}
	if !tokens[2].Range || tokens[2].String() != "Sheet2!A1:B2" {
		t.Errorf("range token = %+v (%s)", tokens[2], tokens[2])
	}
}

type mapLabels map[workbook.Ref]string

func (m mapLabels) Label(ref workbook.Ref) string { return m[ref] }

func TestRender(t *testing.T) {
	labels := mapLabels{
		{Sheet: "Sheet1", Col: 1, Row: 1}: "price",
		{Sheet: "Sheet1", Col: 2, Row: 1}: "产品.单价",
	}

	tests := []struct {
		decomposed string
		labels     Labels
		want       string
	}{
		{"(Sheet1!A1 + Sheet1!A2)", labels, "( price + Sheet1!A2 )"},
		{"Sheet1!B2*2", nil, "Sheet1!B2 * 2"},
		{"Sheet1!B1*Sheet1!A1", labels, "产品.单价 * price"},
		{"IRR(Sheet1!A1,Sheet1!A2)", labels, "IRR ( price , Sheet1!A2 )"},
		{"((Sheet1!A1 + Sheet1!A2)/2)", labels, "( ( price + Sheet1!A2 ) / 2 )"},
		{"A1*3", labels, "price * 3"},
	}

	for _, tt := range tests {
		t.Run(tt.decomposed, func(t *testing.T) {
			if got := Render(tt.decomposed, "Sheet1", tt.labels); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.decomposed, got, tt.want)
			}
		})
	}
}
