package parsers

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"validation-rules-service/internal/rules"
)

// Fixed sheet names the workbook format is keyed on. Sheets absent from the
// workbook contribute nothing; there is no error for a missing sheet.
const (
	metadataSheet          = "Metadata"
	columnValidationsSheet = "Column Validations"
	crossFieldSheet        = "Cross-Field Validations"
)

// ParseWorkbook compiles an OOXML (.xlsx) workbook. The whole workbook is
// loaded into memory before any row is visited.
func ParseWorkbook(path string, templateID int) (*rules.ParsedValidationRules, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	sheets := make(map[string][][]string)
	for _, name := range wb.GetSheetList() {
		sheetRows, err := wb.GetRows(name)
		if err != nil {
			continue
		}
		sheets[name] = sheetRows
	}

	return compileWorkbookSheets(sheets, templateID), nil
}

// compileWorkbookSheets walks the three fixed sheets. Both workbook readers
// deliver their rows here, so .xlsx and .xls compile identically.
func compileWorkbookSheets(sheets map[string][][]string, templateID int) *rules.ParsedValidationRules {
	result := rules.NewParsedValidationRules()
	readWorkbookMetadata(sheets[metadataSheet], result)
	readWorkbookColumnValidations(sheets[columnValidationsSheet], result, templateID)
	readWorkbookCrossFieldValidations(sheets[crossFieldSheet], result, templateID)
	return result
}

// readWorkbookMetadata reads the two-column Metadata sheet: field name and
// value, with row 1 as a header.
func readWorkbookMetadata(sheetRows [][]string, result *rules.ParsedValidationRules) {
	for i, row := range sheetRows {
		if i == 0 || len(row) < 1 {
			continue
		}
		key := rules.MetadataKey(row[0])
		if key == "" {
			continue
		}
		result.Metadata[key] = strings.TrimSpace(workbookCell(row, 1))
	}
}

// readWorkbookColumnValidations reads the ten fixed columns of the
// Column Validations sheet (sheet name, column, data type, required flag,
// min/max length, min/max value, enum values, pattern) and routes every
// populated constraint through the condition synthesizer.
func readWorkbookColumnValidations(sheetRows [][]string, result *rules.ParsedValidationRules, templateID int) {
	for i, row := range sheetRows {
		if i == 0 || recordEmpty(row) {
			continue
		}

		sheet := strings.TrimSpace(workbookCell(row, 0))
		column := strings.TrimSpace(workbookCell(row, 1))
		if sheet == "" || column == "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s row %d: missing sheet or column name", columnValidationsSheet, i+1))
			continue
		}

		add := func(kind string, value interface{}) {
			if rule, ok := rules.NewColumnRule(templateID, sheet, column, kind, value); ok {
				result.Rules = append(result.Rules, rule)
			}
		}

		if strings.EqualFold(strings.TrimSpace(workbookCell(row, 3)), "true") {
			add(rules.TypeRequired, nil)
		}
		if v := strings.TrimSpace(workbookCell(row, 2)); v != "" {
			add(rules.TypeDataType, v)
		}
		if v := strings.TrimSpace(workbookCell(row, 4)); v != "" {
			add(rules.TypeMinLength, v)
		}
		if v := strings.TrimSpace(workbookCell(row, 5)); v != "" {
			add(rules.TypeMaxLength, v)
		}
		if v := strings.TrimSpace(workbookCell(row, 6)); v != "" {
			add(rules.TypeMinimum, v)
		}
		if v := strings.TrimSpace(workbookCell(row, 7)); v != "" {
			add(rules.TypeMaximum, v)
		}
		if v := strings.TrimSpace(workbookCell(row, 9)); v != "" {
			add(rules.TypePattern, v)
		}
		if v := strings.TrimSpace(workbookCell(row, 8)); v != "" {
			add(rules.TypeEnum, splitEnum(v))
		}
	}
}

// readWorkbookCrossFieldValidations maps each row of the Cross-Field
// Validations sheet (name, description, expression, severity, applicable
// sheets) to one crossField rule; a blank applicable-sheets cell scopes the
// rule to the whole submission.
func readWorkbookCrossFieldValidations(sheetRows [][]string, result *rules.ParsedValidationRules, templateID int) {
	for i, row := range sheetRows {
		if i == 0 || recordEmpty(row) {
			continue
		}

		expression := strings.TrimSpace(workbookCell(row, 2))
		if expression == "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s row %d: missing expression", crossFieldSheet, i+1))
			continue
		}

		field := strings.TrimSpace(workbookCell(row, 4))
		sheetID := field
		if field == "" {
			field = rules.FieldGlobal
			sheetID = ""
		}

		message := strings.TrimSpace(workbookCell(row, 1))
		if message == "" {
			name := strings.TrimSpace(workbookCell(row, 0))
			if name != "" {
				message = fmt.Sprintf("Cross-field validation %s failed", name)
			} else {
				message = fmt.Sprintf("Cross-field validation failed for %s", field)
			}
		}

		result.Rules = append(result.Rules, rules.ValidationRule{
			TemplateID:   templateID,
			SheetID:      sheetID,
			Field:        field,
			RuleType:     rules.TypeCrossField,
			Condition:    expression,
			ErrorMessage: message,
			Severity:     rules.NormalizeSeverity(workbookCell(row, 3)),
			IsActive:     true,
		})
	}
}

// workbookCell returns the cell at position i; both readers trim trailing
// empty cells from a row, so short rows are the normal case.
func workbookCell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
