package parser

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// fillCache resolves the fill color of cells, caching by style index.
type fillCache struct {
	f       *excelize.File
	byStyle map[int]string
}

func newFillCache(f *excelize.File) *fillCache {
	return &fillCache{f: f, byStyle: make(map[int]string)}
}

// cellFill returns the normalized fill color of a cell ("" when unfilled).
func (fc *fillCache) cellFill(sheetName, cellName string) (string, error) {
	idx, err := fc.f.GetCellStyle(sheetName, cellName)
	if err != nil {
		return "", err
	}
	if fill, ok := fc.byStyle[idx]; ok {
		return fill, nil
	}

	fill := ""
	style, err := fc.f.GetStyle(idx)
	if err == nil && style != nil {
		fill = styleFill(style.Fill)
	}
	fc.byStyle[idx] = fill
	return fill, nil
}

// styleFill extracts the foreground color of a solid, patterned or gradient fill.
func styleFill(fill excelize.Fill) string {
	if len(fill.Color) == 0 {
		return ""
	}
	if fill.Type == "pattern" && fill.Pattern == 0 {
		return ""
	}
	return NormalizeColor(fill.Color[0])
}

// NormalizeColor converts "#ffff00", "FFFF00" or ARGB "FFFFFF00" to "FFFF00".
func NormalizeColor(c string) string {
	c = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c), "#"))
	if len(c) == 8 {
		c = c[2:]
	}
	return c
}
