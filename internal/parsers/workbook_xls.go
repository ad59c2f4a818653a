package parsers

import (
	"fmt"

	"github.com/shakinm/xlsReader/xls"

	"validation-rules-service/internal/rules"
)

// ParseLegacyWorkbook compiles a binary (.xls) workbook. The sheet layout is
// identical to the OOXML format; only the reader differs, so the rows feed
// the same sheet walker.
func ParseLegacyWorkbook(path string, templateID int) (*rules.ParsedValidationRules, error) {
	wb, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy workbook: %w", err)
	}

	sheets := make(map[string][][]string, wb.GetNumberSheets())
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil {
			continue
		}

		var sheetRows [][]string
		for r := 0; r <= sheet.GetNumberRows(); r++ {
			row, err := sheet.GetRow(r)
			if err != nil {
				continue
			}
			var cells []string
			for _, cell := range row.GetCols() {
				cells = append(cells, cell.GetString())
			}
			sheetRows = append(sheetRows, cells)
		}
		sheets[sheet.GetName()] = sheetRows
	}

	return compileWorkbookSheets(sheets, templateID), nil
}
