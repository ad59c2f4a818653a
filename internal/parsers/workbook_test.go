package parsers

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"validation-rules-service/internal/rules"
)

func writeWorkbook(t *testing.T, build func(wb *excelize.File)) string {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()

	build(wb)

	path := filepath.Join(t.TempDir(), "rules.xlsx")
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

func setRow(t *testing.T, wb *excelize.File, sheet string, row int, cells ...interface{}) {
	t.Helper()
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		t.Fatalf("failed to build cell name: %v", err)
	}
	if err := wb.SetSheetRow(sheet, cell, &cells); err != nil {
		t.Fatalf("failed to set row: %v", err)
	}
}

func addSheet(t *testing.T, wb *excelize.File, name string) {
	t.Helper()
	if _, err := wb.NewSheet(name); err != nil {
		t.Fatalf("failed to add sheet %s: %v", name, err)
	}
}

func TestParseWorkbook(t *testing.T) {
	path := writeWorkbook(t, func(wb *excelize.File) {
		if err := wb.SetSheetName(wb.GetSheetName(0), "Metadata"); err != nil {
			t.Fatalf("failed to rename sheet: %v", err)
		}
		setRow(t, wb, "Metadata", 1, "Field", "Value")
		setRow(t, wb, "Metadata", 2, "Template Name", "Quarterly Liabilities")
		setRow(t, wb, "Metadata", 3, "Version", "3")

		addSheet(t, wb, "Column Validations")
		setRow(t, wb, "Column Validations", 1,
			"Sheet", "Column", "Data Type", "Required", "Min Length", "Max Length", "Min Value", "Max Value", "Enum Values", "Pattern")
		setRow(t, wb, "Column Validations", 2,
			"Liabilities", "Amount", "number", "true", "", "", "0", "1000000", "", "")
		setRow(t, wb, "Column Validations", 3,
			"Liabilities", "Currency", "", "true", "3", "3", "", "", "GBP,EUR,USD", "^[A-Z]{3}$")

		addSheet(t, wb, "Cross-Field Validations")
		setRow(t, wb, "Cross-Field Validations", 1,
			"Name", "Description", "Expression", "Severity", "Applicable Sheets")
		setRow(t, wb, "Cross-Field Validations", 2,
			"balance", "Assets and liabilities must balance", "Assets.Total == Liabilities.Total", "warning", "Liabilities")
		setRow(t, wb, "Cross-Field Validations", 3,
			"nonempty", "Submission must not be empty", "ROW_COUNT > 0", "", "")
	})

	parsed, err := ParseWorkbook(path, 11)
	if err != nil {
		t.Fatalf("ParseWorkbook failed: %v", err)
	}
	if len(parsed.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", parsed.Errors)
	}

	if parsed.Metadata["templatename"] != "Quarterly Liabilities" {
		t.Errorf("metadata templatename = %q", parsed.Metadata["templatename"])
	}
	if parsed.Metadata["version"] != "3" {
		t.Errorf("metadata version = %q", parsed.Metadata["version"])
	}

	// Amount: required + dataType + min + max. Currency: required + minLength +
	// maxLength + enum + pattern. Plus two cross-field rules.
	if len(parsed.Rules) != 11 {
		t.Fatalf("expected 11 rules, got %d (%v)", len(parsed.Rules), ruleTypes(parsed))
	}

	required := findRule(t, parsed, "Liabilities.Amount", rules.TypeRequired)
	if required.Condition != "NOT_EMPTY" {
		t.Errorf("required condition = %q", required.Condition)
	}

	minimum := findRule(t, parsed, "Liabilities.Amount", rules.TypeMinimum)
	if minimum.Condition != "VALUE >= 0" {
		t.Errorf("minimum condition = %q", minimum.Condition)
	}

	enum := findRule(t, parsed, "Liabilities.Currency", rules.TypeEnum)
	if enum.Condition != "VALUE IN ['GBP', 'EUR', 'USD']" {
		t.Errorf("enum condition = %q", enum.Condition)
	}

	pattern := findRule(t, parsed, "Liabilities.Currency", rules.TypePattern)
	if pattern.Condition != `REGEX("^[A-Z]{3}$")` {
		t.Errorf("pattern condition = %q", pattern.Condition)
	}

	cross := findRule(t, parsed, "Liabilities", rules.TypeCrossField)
	if cross.Severity != rules.SeverityWarning {
		t.Errorf("crossField severity = %q", cross.Severity)
	}

	// Blank applicable-sheets scopes the rule to the whole submission.
	global := findRule(t, parsed, rules.FieldGlobal, rules.TypeCrossField)
	if global.Condition != "ROW_COUNT > 0" {
		t.Errorf("global-scope crossField condition = %q", global.Condition)
	}

	// pattern is emitted before enum for the same column, matching the
	// document and CSV adapters.
	patternIdx, enumIdx := -1, -1
	for i, rule := range parsed.Rules {
		if rule.Field != "Liabilities.Currency" {
			continue
		}
		switch rule.RuleType {
		case rules.TypePattern:
			patternIdx = i
		case rules.TypeEnum:
			enumIdx = i
		}
	}
	if patternIdx == -1 || enumIdx == -1 || patternIdx > enumIdx {
		t.Errorf("constraint order: pattern at %d, enum at %d, want pattern first", patternIdx, enumIdx)
	}
}

func TestParseWorkbookMissingSheets(t *testing.T) {
	path := writeWorkbook(t, func(wb *excelize.File) {
		if err := wb.SetSheetName(wb.GetSheetName(0), "Metadata"); err != nil {
			t.Fatalf("failed to rename sheet: %v", err)
		}
		setRow(t, wb, "Metadata", 1, "Field", "Value")
		setRow(t, wb, "Metadata", 2, "Template Name", "Sparse")
	})

	parsed, err := ParseWorkbook(path, 1)
	if err != nil {
		t.Fatalf("ParseWorkbook failed: %v", err)
	}
	if len(parsed.Rules) != 0 {
		t.Errorf("expected no rules, got %d", len(parsed.Rules))
	}
	// Missing optional sheets are not an error.
	if len(parsed.Errors) != 0 {
		t.Errorf("unexpected errors: %v", parsed.Errors)
	}
	if parsed.Metadata["templatename"] != "Sparse" {
		t.Errorf("metadata templatename = %q", parsed.Metadata["templatename"])
	}
}

func TestParseWorkbookRowErrors(t *testing.T) {
	path := writeWorkbook(t, func(wb *excelize.File) {
		if err := wb.SetSheetName(wb.GetSheetName(0), "Column Validations"); err != nil {
			t.Fatalf("failed to rename sheet: %v", err)
		}
		setRow(t, wb, "Column Validations", 1,
			"Sheet", "Column", "Data Type", "Required", "Min Length", "Max Length", "Min Value", "Max Value", "Enum Values", "Pattern")
		setRow(t, wb, "Column Validations", 2,
			"", "Amount", "number", "true", "", "", "", "", "", "")
		setRow(t, wb, "Column Validations", 3,
			"Liabilities", "Amount", "", "true", "", "", "", "", "", "")
	})

	parsed, err := ParseWorkbook(path, 1)
	if err != nil {
		t.Fatalf("ParseWorkbook failed: %v", err)
	}
	if len(parsed.Errors) != 1 {
		t.Errorf("row without a sheet name should be recorded, got %v", parsed.Errors)
	}
	if len(parsed.Rules) != 1 {
		t.Errorf("good row should still compile, got %d rules", len(parsed.Rules))
	}
}

func TestParseWorkbookCorruptFile(t *testing.T) {
	path := writeRuleFile(t, "rules.xlsx", "this is not a zip archive")

	if _, err := ParseWorkbook(path, 1); err == nil {
		t.Fatalf("expected an error for a corrupt workbook")
	}
}

func TestParseLegacyWorkbookCorruptFile(t *testing.T) {
	path := writeRuleFile(t, "rules.xls", "this is not a compound file")

	if _, err := ParseLegacyWorkbook(path, 1); err == nil {
		t.Fatalf("expected an error for a corrupt legacy workbook")
	}
}

// An OOXML workbook mislabeled .xls belongs to the legacy reader and must
// come back as a contained error, not a panic.
func TestParseLegacyWorkbookRejectsOOXML(t *testing.T) {
	xlsxPath := writeWorkbook(t, func(wb *excelize.File) {
		setRow(t, wb, wb.GetSheetName(0), 1, "Field", "Value")
	})

	if _, err := ParseLegacyWorkbook(xlsxPath, 1); err == nil {
		t.Fatalf("expected an error for an OOXML file behind the .xls extension")
	}
}

// compileWorkbookSheets is the shared walker behind both readers; feeding it
// rows directly pins down that .xls input compiles through the exact same
// semantics as .xlsx.
func TestCompileWorkbookSheets(t *testing.T) {
	sheets := map[string][][]string{
		"Metadata": {
			{"Field", "Value"},
			{"Template Name", "Legacy Quarterly"},
		},
		"Column Validations": {
			{"Sheet", "Column", "Data Type", "Required", "Min Length", "Max Length", "Min Value", "Max Value", "Enum Values", "Pattern"},
			{"Liabilities", "Amount", "number", "true", "", "", "0", "1000000", "", ""},
		},
	}

	parsed := compileWorkbookSheets(sheets, 3)
	if len(parsed.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", parsed.Errors)
	}
	if parsed.Metadata["templatename"] != "Legacy Quarterly" {
		t.Errorf("metadata templatename = %q", parsed.Metadata["templatename"])
	}
	if len(parsed.Rules) != 4 {
		t.Fatalf("expected 4 rules, got %d (%v)", len(parsed.Rules), ruleTypes(parsed))
	}
	maximum := findRule(t, parsed, "Liabilities.Amount", rules.TypeMaximum)
	if maximum.Condition != "VALUE <= 1000000" {
		t.Errorf("maximum condition = %q, want VALUE <= 1000000", maximum.Condition)
	}
}
