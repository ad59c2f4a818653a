package parsers

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"validation-rules-service/internal/rules"
)

// csvRow gives named, case-insensitive access to one CSV record through the
// header index built from the first row.
type csvRow struct {
	index  map[string]int
	record []string
}

func (r csvRow) get(name string) string {
	pos, ok := r.index[strings.ToLower(name)]
	if !ok || pos >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[pos])
}

func (r csvRow) address() rules.Address {
	return rules.Address{
		Column:      r.get("Column"),
		Row:         r.get("Row"),
		ColumnRange: r.get("ColumnRange"),
		RowRange:    r.get("RowRange"),
		CellRange:   r.get("CellRange"),
	}
}

// ParseCSV compiles a row-oriented CSV rule file. Each row's RuleType cell
// (read case-insensitively) selects one of five behaviors: column, cell,
// range, cross_field or global. Rows with an unrecognized RuleType are
// recorded as parse errors; rule rows that parse keep being emitted, so a
// bad row never aborts the file.
func ParseCSV(path string, templateID int) (*rules.ParsedValidationRules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV rules: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV rules: %w", err)
	}

	result := rules.NewParsedValidationRules()
	if len(records) == 0 {
		result.Errors = append(result.Errors, "CSV rule file is empty")
		return result, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for i, record := range records[1:] {
		line := i + 2
		if recordEmpty(record) {
			continue
		}
		row := csvRow{index: index, record: record}

		switch strings.ToLower(row.get("RuleType")) {
		case "column":
			result.Rules = append(result.Rules, csvColumnRules(templateID, row)...)
		case "cell":
			appendCSVCellRule(result, templateID, row, line)
		case "range":
			appendCSVRangeRule(result, templateID, row, line)
		case "cross_field":
			appendCSVCrossFieldRule(result, templateID, row, line)
		case "global":
			appendCSVGlobalRule(result, templateID, row, line)
		default:
			result.Errors = append(result.Errors,
				fmt.Sprintf("line %d: unrecognized rule type %q", line, row.get("RuleType")))
		}
	}

	return result, nil
}

// csvColumnRules emits up to eight rules from one column row, one per
// populated constraint cell, each carrying the row's addressing fields
// verbatim.
func csvColumnRules(templateID int, row csvRow) []rules.ValidationRule {
	sheet := row.get("SheetName")
	column := row.get("Column")
	addr := row.address()
	applyAll := row.get("ApplyToAllRows") == "true"
	severity := rules.NormalizeSeverity(row.get("Severity"))

	var out []rules.ValidationRule
	add := func(kind string, value interface{}) {
		rule, ok := rules.NewColumnRule(templateID, sheet, column, kind, value)
		if !ok {
			return
		}
		rule.Severity = severity
		rule.RowRange = addr.RowRange
		rule.ColumnRange = addr.ColumnRange
		rule.CellRange = addr.CellRange
		rule.ApplyToAllRows = applyAll
		out = append(out, rule)
	}

	if row.get("Required") == "true" {
		add(rules.TypeRequired, nil)
	}
	if v := row.get("DataType"); v != "" {
		add(rules.TypeDataType, v)
	}
	if v := row.get("MinLength"); v != "" {
		add(rules.TypeMinLength, v)
	}
	if v := row.get("MaxLength"); v != "" {
		add(rules.TypeMaxLength, v)
	}
	if v := row.get("Minimum"); v != "" {
		add(rules.TypeMinimum, v)
	}
	if v := row.get("Maximum"); v != "" {
		add(rules.TypeMaximum, v)
	}
	if v := row.get("Pattern"); v != "" {
		add(rules.TypePattern, v)
	}
	if v := row.get("Enum"); v != "" {
		add(rules.TypeEnum, splitEnum(v))
	}

	return out
}

func appendCSVCellRule(result *rules.ParsedValidationRules, templateID int, row csvRow, line int) {
	addr := row.address()
	ref := addr.Normalize()
	if ref == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("line %d: cell rule has no derivable address", line))
		return
	}

	ruleType := rules.TypeCustom
	if row.get("Required") == "true" {
		ruleType = rules.TypeRequired
	}
	condition := row.get("Expression")
	if condition == "" {
		condition = "NOT_EMPTY"
	}
	message := row.get("Description")
	if message == "" {
		message = fmt.Sprintf("Validation failed for cell %s", ref)
		if ruleType == rules.TypeRequired {
			message = fmt.Sprintf("Cell %s is required", ref)
		}
	}

	result.Rules = append(result.Rules, rules.ValidationRule{
		TemplateID:   templateID,
		SheetID:      row.get("SheetName"),
		Field:        ref,
		RuleType:     ruleType,
		Condition:    condition,
		ErrorMessage: message,
		Severity:     rules.NormalizeSeverity(row.get("Severity")),
		IsActive:     true,
		RowRange:     addr.RowRange,
		ColumnRange:  addr.ColumnRange,
		CellRange:    ref,
	})
}

func appendCSVRangeRule(result *rules.ParsedValidationRules, templateID int, row csvRow, line int) {
	addr := row.address()
	ref := addr.Normalize()
	if ref == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("line %d: range rule has no derivable address", line))
		return
	}

	ruleType := rules.TypeRange
	if row.get("Required") == "true" {
		ruleType = rules.TypeRequired
	}
	condition := row.get("Expression")
	if condition == "" {
		condition = "NOT_EMPTY"
	}
	message := row.get("Description")
	if message == "" {
		message = fmt.Sprintf("Validation failed for range %s", ref)
		if ruleType == rules.TypeRequired {
			message = fmt.Sprintf("Range %s is required", ref)
		}
	}

	result.Rules = append(result.Rules, rules.ValidationRule{
		TemplateID:   templateID,
		SheetID:      row.get("SheetName"),
		Field:        ref,
		RuleType:     ruleType,
		Condition:    condition,
		ErrorMessage: message,
		Severity:     rules.NormalizeSeverity(row.get("Severity")),
		IsActive:     true,
		RowRange:     addr.RowRange,
		ColumnRange:  addr.ColumnRange,
		CellRange:    ref,
	})
}

func appendCSVCrossFieldRule(result *rules.ParsedValidationRules, templateID int, row csvRow, line int) {
	expression := row.get("Expression")
	if expression == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("line %d: cross_field rule has no expression", line))
		return
	}
	sheet := row.get("SheetName")
	message := row.get("Description")
	if message == "" {
		message = fmt.Sprintf("Cross-field validation failed for %s", sheet)
	}

	result.Rules = append(result.Rules, rules.ValidationRule{
		TemplateID:   templateID,
		SheetID:      sheet,
		Field:        sheet,
		RuleType:     rules.TypeCrossField,
		Condition:    expression,
		ErrorMessage: message,
		Severity:     rules.NormalizeSeverity(row.get("Severity")),
		IsActive:     true,
	})
}

func appendCSVGlobalRule(result *rules.ParsedValidationRules, templateID int, row csvRow, line int) {
	expression := row.get("Expression")
	if expression == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("line %d: global rule has no expression", line))
		return
	}
	message := row.get("Description")
	if message == "" {
		message = "Global validation failed"
	}

	result.Rules = append(result.Rules, rules.ValidationRule{
		TemplateID:   templateID,
		Field:        rules.FieldGlobal,
		RuleType:     rules.TypeGlobal,
		Condition:    expression,
		ErrorMessage: message,
		Severity:     rules.NormalizeSeverity(row.get("Severity")),
		IsActive:     true,
	})
}

func splitEnum(cell string) []string {
	parts := strings.Split(cell, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}

func recordEmpty(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
