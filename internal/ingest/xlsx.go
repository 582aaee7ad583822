package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxFormat struct{}

func (xlsxFormat) Name() string { return "xlsx" }

func (xlsxFormat) CanParse(filename string) bool { return hasExt(filename, ".xlsx", ".xlsm") }

// Parse reads one worksheet. Cells are taken as displayed text so the same
// value parsers apply as for delimited input.
func (xlsxFormat) Parse(content []byte, opt ParseOptions) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ParseError{Reason: "open workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Reason: "workbook has no sheets", Err: ErrNoHeader}
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, &ParseError{Reason: fmt.Sprintf("sheet %q not found (available: %s)", opt.Sheet, strings.Join(sheets, ", "))}
		}
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("read sheet %q", sheet), Err: err}
	}
	// leading empty rows carry no header
	for len(records) > 0 && blankRecord(records[0]) {
		records = records[1:]
	}
	return FromRecords(records)
}
