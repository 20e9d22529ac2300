package parser

import (
	"github.com/ukaji3/formulatrace-go/pkg/formulatrace/workbook"
	"github.com/xuri/excelize/v2"
)

// ExtractMerges registers the merged ranges of a sheet.
func ExtractMerges(f *excelize.File, sheetName string, sheet *workbook.Sheet) error {
	merged, err := f.GetMergeCells(sheetName)
	if err != nil {
		return err
	}

	for _, mc := range merged {
		ref := mc.GetStartAxis() + ":" + mc.GetEndAxis()
		if err := sheet.Merge(ref); err != nil {
			return err
		}
	}

	return nil
}
