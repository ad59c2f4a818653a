package parsers

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"validation-rules-service/internal/rules"
)

// ruleDocument is the structured-schema shape shared by the JSON and YAML
// formats: template metadata, per-sheet column and cross-field validations,
// and submission-wide global validations.
type ruleDocument struct {
	Metadata          map[string]interface{}     `json:"metadata" yaml:"metadata"`
	SheetValidations  map[string]sheetValidation `json:"sheetValidations" yaml:"sheetValidations"`
	GlobalValidations []expressionValidation     `json:"globalValidations" yaml:"globalValidations"`
}

type sheetValidation struct {
	ColumnValidations     map[string]columnConstraints `json:"columnValidations" yaml:"columnValidations"`
	CrossFieldValidations []expressionValidation       `json:"crossFieldValidations" yaml:"crossFieldValidations"`
}

// columnConstraints uses pointers for numeric constraints so that an explicit
// zero is distinguishable from an absent key.
type columnConstraints struct {
	Required  *bool    `json:"required" yaml:"required"`
	DataType  string   `json:"dataType" yaml:"dataType"`
	MinLength *int     `json:"minLength" yaml:"minLength"`
	MaxLength *int     `json:"maxLength" yaml:"maxLength"`
	Minimum   *float64 `json:"minimum" yaml:"minimum"`
	Maximum   *float64 `json:"maximum" yaml:"maximum"`
	Pattern   string   `json:"pattern" yaml:"pattern"`
	Enum      []string `json:"enum" yaml:"enum"`
}

type expressionValidation struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Expression  string `json:"expression" yaml:"expression"`
	Severity    string `json:"severity" yaml:"severity"`
}

// ParseSchemaDocument compiles a JSON rule document.
func ParseSchemaDocument(path string, templateID int) (*rules.ParsedValidationRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule document: %w", err)
	}

	var doc ruleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rule document: %w", err)
	}

	return buildRulesFromDocument(&doc, templateID), nil
}

// buildRulesFromDocument turns an already-parsed rule document into the
// canonical rule set. Both the JSON and YAML adapters delegate here, so the
// YAML path never round-trips through a re-serialized file.
func buildRulesFromDocument(doc *ruleDocument, templateID int) *rules.ParsedValidationRules {
	result := rules.NewParsedValidationRules()
	result.Metadata = coerceMetadata(doc.Metadata)

	if doc.SheetValidations == nil {
		result.Errors = append(result.Errors, "rule document has no sheetValidations section")
		return result
	}

	// Map iteration order is randomized; sort sheet and column names so the
	// same document always compiles to the same rule list.
	for _, sheet := range sortedKeys(doc.SheetValidations) {
		sv := doc.SheetValidations[sheet]

		columns := make([]string, 0, len(sv.ColumnValidations))
		for column := range sv.ColumnValidations {
			columns = append(columns, column)
		}
		sort.Strings(columns)

		for _, column := range columns {
			result.Rules = append(result.Rules, columnRules(templateID, sheet, column, sv.ColumnValidations[column])...)
		}

		for _, cf := range sv.CrossFieldValidations {
			result.Rules = append(result.Rules, crossFieldRule(templateID, sheet, cf))
		}
	}

	for _, gv := range doc.GlobalValidations {
		result.Rules = append(result.Rules, globalRule(templateID, gv))
	}

	return result
}

// columnRules emits one rule per populated constraint key; a column with both
// required and dataType produces two independent rules so the evaluator can
// report exactly which sub-constraint failed.
func columnRules(templateID int, sheet, column string, c columnConstraints) []rules.ValidationRule {
	var out []rules.ValidationRule
	add := func(kind string, value interface{}) {
		if rule, ok := rules.NewColumnRule(templateID, sheet, column, kind, value); ok {
			out = append(out, rule)
		}
	}

	if c.Required != nil && *c.Required {
		add(rules.TypeRequired, nil)
	}
	if c.DataType != "" {
		add(rules.TypeDataType, c.DataType)
	}
	if c.MinLength != nil {
		add(rules.TypeMinLength, *c.MinLength)
	}
	if c.MaxLength != nil {
		add(rules.TypeMaxLength, *c.MaxLength)
	}
	if c.Minimum != nil {
		add(rules.TypeMinimum, *c.Minimum)
	}
	if c.Maximum != nil {
		add(rules.TypeMaximum, *c.Maximum)
	}
	if c.Pattern != "" {
		add(rules.TypePattern, c.Pattern)
	}
	if len(c.Enum) > 0 {
		add(rules.TypeEnum, c.Enum)
	}

	return out
}

// crossFieldRule scopes an expression to a sheet: the field names the sheet,
// not a single column.
func crossFieldRule(templateID int, sheet string, v expressionValidation) rules.ValidationRule {
	return rules.ValidationRule{
		TemplateID:   templateID,
		SheetID:      sheet,
		Field:        sheet,
		RuleType:     rules.TypeCrossField,
		Condition:    v.Expression,
		ErrorMessage: crossFieldMessage(v, sheet),
		Severity:     rules.NormalizeSeverity(v.Severity),
		IsActive:     true,
	}
}

func globalRule(templateID int, v expressionValidation) rules.ValidationRule {
	message := v.Description
	if message == "" {
		message = "Global validation failed"
		if v.Name != "" {
			message = fmt.Sprintf("Global validation %s failed", v.Name)
		}
	}
	return rules.ValidationRule{
		TemplateID:   templateID,
		Field:        rules.FieldGlobal,
		RuleType:     rules.TypeGlobal,
		Condition:    v.Expression,
		ErrorMessage: message,
		Severity:     rules.NormalizeSeverity(v.Severity),
		IsActive:     true,
	}
}

func crossFieldMessage(v expressionValidation, sheet string) string {
	if v.Description != "" {
		return v.Description
	}
	if v.Name != "" {
		return fmt.Sprintf("Cross-field validation %s failed", v.Name)
	}
	return fmt.Sprintf("Cross-field validation failed for %s", sheet)
}

func coerceMetadata(metadata map[string]interface{}) map[string]string {
	out := make(map[string]string, len(metadata))
	for key, value := range metadata {
		normalized := rules.MetadataKey(key)
		if normalized == "" {
			continue
		}
		out[normalized] = fmt.Sprint(value)
	}
	return out
}

func sortedKeys(m map[string]sheetValidation) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
