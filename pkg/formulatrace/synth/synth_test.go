package synth

import (
	"strings"
	"testing"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
)

func ref(cell string) workbook.Ref {
	r, err := workbook.ParseRef(cell, "Sheet1")
	if err != nil {
		panic(err)
	}
	return r
}

func TestSynthesize(t *testing.T) {
	inputs := map[workbook.Ref]string{
		ref("A1"): "unit_price",
		ref("A2"): "",
		ref("B5"): "qty",
		ref("B6"): "discount",
	}
	records := map[workbook.Ref]string{
		ref("B1"): "Sheet1!A1*2",
		ref("C1"): "Sheet1!B1+10",
		ref("D1"): "Sheet1!C1*3",
		ref("E1"): "Sheet1!B1+Sheet1!B1",
		ref("F1"): "Sheet1!Z9+Other!B2",
		ref("G1"): "Sheet1!A2/4",
		ref("H1"): "(Sheet1!B5 + Sheet1!B6)",
		ref("H2"): "Sheet1!H1*2",
		ref("I1"): "Sheet1!B1",
		ref("I2"): "Sheet1!I1-1",
		ref("J1"): "",
	}

	tests := []struct {
		name string
		cell string
		want string
	}{
		{"two levels", "C1", "(unit_price*2)+10"},
		{"three levels", "D1", "((unit_price*2)+10)*3"},
		{"repeated reference", "E1", "(unit_price*2)+(unit_price*2)"},
		{"unknown references stay", "F1", "Sheet1!Z9+Other!B2"},
		{"unlabeled input", "G1", "Sheet1!A2/4"},
		{"already parenthesized", "H2", "(qty+discount)*2"},
		{"bare reference", "I2", "(unit_price*2)-1"},
		{"input itself", "A1", "unit_price"},
		{"empty formula", "J1", Failed},
	}

	s := New(records, inputs)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Synthesize(ref(tt.cell)); got != tt.want {
				t.Errorf("Synthesize(%s) = %q, want %q", tt.cell, got, tt.want)
			}
		})
	}
}

func TestSynthesizeCycle(t *testing.T) {
	records := map[workbook.Ref]string{
		ref("A1"): "Sheet1!B1+1",
		ref("B1"): "Sheet1!A1*2",
		ref("C1"): "Sheet1!C1",
	}
	s := New(records, nil)

	got := s.Synthesize(ref("A1"))
	if got != "("+Unresolvable+"*2)+1" {
		t.Errorf("Synthesize(A1) = %q", got)
	}
	// The cycle marker depends on where the walk started, so it is not memoized.
	if got := s.Synthesize(ref("B1")); got != "("+Unresolvable+"+1)*2" {
		t.Errorf("Synthesize(B1) = %q", got)
	}
	if got := s.Synthesize(ref("C1")); !strings.Contains(got, Unresolvable) {
		t.Errorf("Synthesize(C1) = %q, want the cycle marker", got)
	}
}
