package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/models"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0369a1", Dark: "#39bae6"})
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#7fd962"}).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f07178"}).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#8a9199"})
)

// PrintSummary prints a short overview of a report: cell counts, traced
// outputs and any failures.
func PrintSummary(w io.Writer, report *models.Report) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(report.BookName), dimStyle.Render("("+report.Mode+", run "+report.RunID+")"))
	fmt.Fprintf(w, "  inputs:  %s\n", countStyle.Render(fmt.Sprint(len(report.Inputs))))
	fmt.Fprintf(w, "  outputs: %s %s\n", countStyle.Render(fmt.Sprint(len(report.Outputs))), dimStyle.Render("on "+report.ResultsSheet))
	if report.Mode == "light" {
		return
	}

	fmt.Fprintf(w, "  traced:  %s\n", okStyle.Render(fmt.Sprint(len(report.Dependencies))))
	if len(report.Failures) == 0 {
		return
	}
	fmt.Fprintf(w, "  failed:  %s\n", failStyle.Render(fmt.Sprint(len(report.Failures))))
	for _, f := range report.Failures {
		fmt.Fprintf(w, "    %s %s\n", failStyle.Render(f.Sheet+"!"+f.Cell), dimStyle.Render(f.Kind+": "+f.Message))
	}
}
