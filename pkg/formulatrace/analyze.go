package formulatrace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/classify"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/formula"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/header"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/models"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/parser"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/synth"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/trace"
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
	"github.com/xuri/excelize/v2"
)

// Analyze analyzes an Excel file.
func Analyze(path string, opts Options) (*models.Report, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer f.Close()

	wb, err := LoadWorkbook(f, filepath.Base(path), opts)
	if err != nil {
		return nil, err
	}
	return AnalyzeWorkbook(wb, opts)
}

// LoadWorkbook reads every sheet of an open excelize file. A sheet that
// fails to load is logged and kept with whatever was read.
func LoadWorkbook(f *excelize.File, name string, opts Options) (*workbook.Workbook, error) {
	logger := opts.logger().With("component", "loader")

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrInvalidFormat, name)
	}

	wb := workbook.New(name)
	for _, sheetName := range sheetList {
		sheet := wb.AddSheet(sheetName)

		if err := parser.ExtractCells(f, sheetName, sheet, opts.loadOptions()); err != nil {
			logger.Warn("sheet cells incomplete", "error", NewExtractionError(sheetName, "cells", err))
		}
		if err := parser.ExtractMerges(f, sheetName, sheet); err != nil {
			logger.Warn("sheet merges incomplete", "error", NewExtractionError(sheetName, "merges", err))
		}

		logger.Debug("sheet loaded", "sheet", sheetName, "rows", sheet.MaxRow, "cols", sheet.MaxCol, "merges", len(sheet.Merges))
	}
	return wb, nil
}

// analysis holds the read-only indexes shared by every output.
type analysis struct {
	opts    Options
	wb      *workbook.Workbook
	headers *header.Cache
	roles   *classify.Index
}

// AnalyzeWorkbook analyzes an in-memory workbook.
func AnalyzeWorkbook(wb *workbook.Workbook, opts Options) (*models.Report, error) {
	logger := opts.logger().With("component", "analyzer")

	if _, ok := wb.Sheet(opts.ResultsSheet); !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrResultsSheetNotFound, opts.ResultsSheet, wb.Name)
	}

	a := &analysis{
		opts:    opts,
		wb:      wb,
		headers: header.BuildCache(wb, opts.UnitKeywords),
		roles: classify.NewIndex(wb, classify.Config{
			ResultsSheet: opts.ResultsSheet,
			InputFills:   opts.InputFills,
		}),
	}

	outputs := a.roles.OutputCandidates()
	report := &models.Report{
		RunID:        uuid.NewString(),
		BookName:     wb.Name,
		Mode:         string(opts.Mode),
		ResultsSheet: opts.ResultsSheet,
		Inputs:       a.cellInfos(a.roles.Inputs()),
		Outputs:      a.cellInfos(outputs),
	}
	logger.Info("cells classified", "run_id", report.RunID, "inputs", len(report.Inputs), "outputs", len(report.Outputs))

	if !opts.ShouldTrace() {
		return report, nil
	}

	records, decomposed := a.formulaRecords()
	if opts.ShouldIncludeFormulas() {
		report.Formulas = records
	}

	tracer := trace.New(wb, a.roles, a.headers, trace.Config{MaxPending: opts.MaxPending})
	outcomes := a.traceAll(tracer, outputs)
	for i, out := range outputs {
		o := outcomes[i]
		if o.err != nil {
			failure := newFailure(out, o.err)
			logger.Warn("trace failed", "cell", out.String(), "kind", failure.Kind, "error", o.err)
			report.Failures = append(report.Failures, failure)
			continue
		}
		report.Dependencies = append(report.Dependencies, a.dependencyRecord(out, o.result))
	}

	labels := make(map[workbook.Ref]string, len(report.Inputs))
	for _, ref := range a.roles.Inputs() {
		labels[ref] = a.headers.Label(ref)
	}
	s := synth.New(decomposed, labels)
	for _, out := range outputs {
		report.Syntheses = append(report.Syntheses, models.Synthesis{
			Sheet:      out.Sheet,
			Cell:       out.Cell(),
			TableName:  a.roles.TableName(out),
			Header:     a.header(out),
			Expression: s.Synthesize(out),
		})
	}

	logger.Info("analysis complete",
		"run_id", report.RunID,
		"traced", len(report.Dependencies),
		"failures", len(report.Failures))
	return report, nil
}

func (a *analysis) header(ref workbook.Ref) string {
	if label := a.headers.Label(ref); label != "" {
		return label
	}
	return trace.Unlabeled
}

func (a *analysis) cellInfos(refs []workbook.Ref) []models.CellInfo {
	infos := make([]models.CellInfo, 0, len(refs))
	for _, ref := range refs {
		infos = append(infos, models.CellInfo{
			Sheet:     ref.Sheet,
			Cell:      ref.Cell(),
			TableName: a.roles.TableName(ref),
			Header:    a.header(ref),
			Value:     parser.ParseValue(a.headers.Value(ref)),
		})
	}
	return infos
}

// formulaRecords decomposes every formula cell. It also returns the
// decomposed formulas keyed by cell for the synthesizer.
func (a *analysis) formulaRecords() ([]models.FormulaRecord, map[workbook.Ref]string) {
	var records []models.FormulaRecord
	decomposed := make(map[workbook.Ref]string)

	for _, sheet := range a.wb.Sheets() {
		for row := 1; row <= sheet.MaxRow; row++ {
			for col := 1; col <= sheet.MaxCol; col++ {
				ref := workbook.Ref{Sheet: sheet.Name, Col: col, Row: row}
				if !a.roles.RoleAt(ref).Expandable() {
					continue
				}
				content := sheet.Cell(row, col).Content
				d := formula.Decompose(content, sheet.Name)
				decomposed[ref] = d

				var base []string
				for _, r := range formula.ExtractReferences(d, sheet.Name) {
					base = append(base, r.String())
				}
				records = append(records, models.FormulaRecord{
					Sheet:      sheet.Name,
					Cell:       ref.Cell(),
					Formula:    content,
					Header:     a.headers.Label(ref),
					Decomposed: d,
					Expression: formula.Render(d, sheet.Name, a.headers),
					BaseCells:  base,
				})
			}
		}
	}
	return records, decomposed
}

type traceOutcome struct {
	result *trace.Result
	err    error
}

// traceAll traces every output, in parallel when Workers > 1. Outcomes keep
// the order of outputs.
func (a *analysis) traceAll(tracer *trace.Tracer, outputs []workbook.Ref) []traceOutcome {
	outcomes := make([]traceOutcome, len(outputs))
	workers := a.opts.Workers
	if workers <= 1 {
		for i, out := range outputs {
			res, err := tracer.Trace(out)
			outcomes[i] = traceOutcome{result: res, err: err}
		}
		return outcomes
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, out := range outputs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, out workbook.Ref) {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := tracer.Trace(out)
			outcomes[i] = traceOutcome{result: res, err: err}
		}(i, out)
	}
	wg.Wait()
	return outcomes
}

func (a *analysis) dependencyRecord(out workbook.Ref, res *trace.Result) models.DependencyRecord {
	root := res.Root()
	base := make([]string, 0, len(res.BaseCells))
	for _, r := range res.BaseCells {
		base = append(base, r.String())
	}

	rec := models.DependencyRecord{
		Sheet:      out.Sheet,
		Cell:       out.Cell(),
		TableName:  a.roles.TableName(out),
		Formula:    root.Content,
		Header:     a.header(out),
		Decomposed: root.Decomposed,
		Expression: root.Expression,
		BaseCells:  base,
		Path:       res.Steps(),
	}
	if a.opts.ShouldIncludeTrees() {
		rec.Tree = res.Tree()
		rec.View = res.View()
	}
	return rec
}

func newFailure(out workbook.Ref, err error) models.Failure {
	kind := "trace"
	var ple *trace.PendingLimitError
	switch {
	case errors.As(err, &ple):
		kind = "pending_limit"
	case errors.Is(err, trace.ErrInvalidOutput):
		kind = "invalid_output"
	}
	return models.Failure{
		Sheet:   out.Sheet,
		Cell:    out.Cell(),
		Kind:    kind,
		Message: err.Error(),
	}
}
