package formula

import (
	"strings"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
)

// Labels resolves the display label of a cell ("" when unlabeled).
type Labels interface {
	Label(ref workbook.Ref) string
}

// Render rewrites a decomposed formula for reading: single-cell references
// become their labels when labeled, operators, parentheses and commas are
// padded with one space, and runs of whitespace collapse.
func Render(decomposed, home string, labels Labels) string {
	var b strings.Builder
	for _, t := range Parse(decomposed, home) {
		switch t.Kind {
		case Reference:
			text := t.String()
			if !t.Range && labels != nil {
				if label := labels.Label(t.Ref); label != "" {
					text = label
				}
			}
			b.WriteString(text)
		case Operator, Punctuation:
			b.WriteString(" " + t.Text + " ")
		default:
			b.WriteString(t.Text)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
