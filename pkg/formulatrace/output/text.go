package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/models"
)

var (
	tableRule = strings.Repeat("=", 80)
	entryRule = strings.Repeat("-", 80)
)

// listing writes a titled list grouped by table name. Entries must already
// be ordered by table name; a separator opens each new table.
func listing(title string, n int, tableAt func(i int) string, entry func(b *strings.Builder, i int)) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	current := ""
	for i := 0; i < n; i++ {
		if table := tableAt(i); i == 0 || table != current {
			current = table
			fmt.Fprintf(&b, "\n%s\nTable: %s\n%s\n", tableRule, current, tableRule)
		}
		b.WriteString("\n")
		entry(&b, i)
	}
	return b.String()
}

// byTable returns the cells ordered by table name, keeping the existing
// order within a table.
func byTable(cells []models.CellInfo) []models.CellInfo {
	sorted := append([]models.CellInfo(nil), cells...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TableName < sorted[j].TableName
	})
	return sorted
}

func formatValue(v interface{}) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprint(v)
}

// InputsText lists the input cells with their current values.
func InputsText(report *models.Report) string {
	cells := byTable(report.Inputs)
	return listing("Input cells:", len(cells),
		func(i int) string { return cells[i].TableName },
		func(b *strings.Builder, i int) {
			c := cells[i]
			fmt.Fprintf(b, "Input: %s\nValue: %s  Location: %s!%s\n", c.Header, formatValue(c.Value), c.Sheet, c.Cell)
		})
}

// OutputsText lists the output cells with their evaluated results.
func OutputsText(report *models.Report) string {
	cells := byTable(report.Outputs)
	return listing("Output cells:", len(cells),
		func(i int) string { return cells[i].TableName },
		func(b *strings.Builder, i int) {
			c := cells[i]
			fmt.Fprintf(b, "Output: %s\nResult: %s  Location: %s!%s\n%s\n", c.Header, formatValue(c.Value), c.Sheet, c.Cell, entryRule)
		})
}

// DependenciesText lists each traced output with its rendered formula, the
// expansion path and the base cells it depends on.
func DependenciesText(report *models.Report) string {
	deps := report.Dependencies
	return listing("Output formulas:", len(deps),
		func(i int) string { return deps[i].TableName },
		func(b *strings.Builder, i int) {
			d := deps[i]
			path := make([]string, 0, len(d.Path))
			for _, step := range d.Path {
				path = append(path, step.Ref)
			}
			fmt.Fprintf(b, "Output: %s\nFormula: %s\nPath: %s\nBase cells: %s\n%s\n",
				d.Header, d.Expression, strings.Join(path, " -> "), strings.Join(d.BaseCells, ", "), entryRule)
		})
}

// SynthesesText lists the synthesized expression of every output.
func SynthesesText(report *models.Report) string {
	syn := report.Syntheses
	return listing("Synthesized formulas:", len(syn),
		func(i int) string { return syn[i].TableName },
		func(b *strings.Builder, i int) {
			s := syn[i]
			fmt.Fprintf(b, "Output: %s\nLocation: %s!%s\nSynthesized: %s\n%s\n", s.Header, s.Sheet, s.Cell, s.Expression, entryRule)
		})
}
