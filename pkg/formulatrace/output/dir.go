package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/models"
)

// Names of the files written by WriteDir.
const (
	ReportFile       = "report.json"
	InputsFile       = "input_cells.txt"
	OutputsFile      = "output_cells.txt"
	DependenciesFile = "output_formulas.txt"
	SynthesesFile    = "synthesized_formulas.txt"
	TreesDir         = "trees"
	LockFile         = ".formulatrace.lock"
)

// LockTimeout bounds how long WriteDir waits for another writer.
var LockTimeout = 5 * time.Second

// WriteDir writes the report, its text listings and one tree file per traced
// output into dir. Text listings for traces and syntheses are written only
// when the report has them; tree files only when trees were attached.
func WriteDir(dir string, report *models.Report, pretty bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	lock, err := lockDir(dir)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	data, err := ToJSON(report, pretty)
	if err != nil {
		return fmt.Errorf("serializing report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ReportFile), data, 0644); err != nil {
		return err
	}

	texts := map[string]string{
		InputsFile:  InputsText(report),
		OutputsFile: OutputsText(report),
	}
	if len(report.Dependencies) > 0 {
		texts[DependenciesFile] = DependenciesText(report)
	}
	if len(report.Syntheses) > 0 {
		texts[SynthesesFile] = SynthesesText(report)
	}
	for name, text := range texts {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0644); err != nil {
			return err
		}
	}

	return writeTrees(filepath.Join(dir, TreesDir), report.Dependencies, pretty)
}

func writeTrees(dir string, deps []models.DependencyRecord, pretty bool) error {
	created := false
	for _, d := range deps {
		if d.View == nil {
			continue
		}
		if !created {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			created = true
		}

		data, err := TreeToJSON(d.View, pretty)
		if err != nil {
			return fmt.Errorf("serializing tree of %s!%s: %w", d.Sheet, d.Cell, err)
		}
		if err := os.WriteFile(filepath.Join(dir, TreeFileName(d.Sheet, d.Cell)), data, 0644); err != nil {
			return err
		}
	}
	return nil
}

// TreeFileName returns the tree file name of one output cell.
func TreeFileName(sheet, cell string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, sheet)
	return safe + "_" + cell + ".json"
}

func lockDir(dir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(dir, LockFile))
	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("timeout waiting for output directory lock")
	}
	return lock, nil
}
