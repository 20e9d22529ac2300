// Package output serializes analysis reports as JSON, plain-text listings
// and per-output tree files.
package output

import (
	"encoding/json"

	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/models"
)

// ToJSON serializes a report to JSON.
func ToJSON(report *models.Report, pretty bool) ([]byte, error) {
	return marshal(report, pretty)
}

// TreeToJSON serializes a dependency tree view to JSON.
func TreeToJSON(view *models.TreeView, pretty bool) ([]byte, error) {
	return marshal(view, pretty)
}

func marshal(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
