package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition synthesizes the canonical condition string for a column
// constraint. The second return is false when the constraint kind is not one
// of the eight column-constraint types (cross-field, global, custom and
// legacy rules carry caller-supplied expressions instead).
func Condition(kind string, value interface{}) (string, bool) {
	switch kind {
	case TypeRequired:
		return "NOT_EMPTY", true
	case TypeDataType:
		return "TYPE_IS_" + strings.ToUpper(fmt.Sprint(value)), true
	case TypeMinLength:
		return fmt.Sprintf("LENGTH >= %s", numberString(value)), true
	case TypeMaxLength:
		return fmt.Sprintf("LENGTH <= %s", numberString(value)), true
	case TypeMinimum:
		return fmt.Sprintf("VALUE >= %s", numberString(value)), true
	case TypeMaximum:
		return fmt.Sprintf("VALUE <= %s", numberString(value)), true
	case TypePattern:
		return fmt.Sprintf("REGEX(%q)", value), true
	case TypeEnum:
		values, ok := value.([]string)
		if !ok || len(values) == 0 {
			return "", false
		}
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = "'" + v + "'"
		}
		return "VALUE IN [" + strings.Join(quoted, ", ") + "]", true
	default:
		return "", false
	}
}

// Message synthesizes the default human-readable error message for a column
// constraint. The field argument is the column name; sheet may be empty for
// positional sources.
func Message(kind, field, sheet string, value interface{}) string {
	switch kind {
	case TypeRequired:
		if sheet == "" {
			return fmt.Sprintf("%s is required", field)
		}
		return fmt.Sprintf("%s is required in %s", field, sheet)
	case TypeDataType:
		return fmt.Sprintf("%s must be of type %v", field, value)
	case TypeMinLength:
		return fmt.Sprintf("%s must be at least %s characters", field, numberString(value))
	case TypeMaxLength:
		return fmt.Sprintf("%s must not exceed %s characters", field, numberString(value))
	case TypeMinimum:
		return fmt.Sprintf("%s must be at least %s", field, numberString(value))
	case TypeMaximum:
		return fmt.Sprintf("%s must not exceed %s", field, numberString(value))
	case TypePattern:
		return fmt.Sprintf("%s format is invalid", field)
	case TypeEnum:
		values, _ := value.([]string)
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(values, ", "))
	default:
		return fmt.Sprintf("Validation failed for %s", field)
	}
}

// numberString renders a numeric bound in plain decimal notation. Bounds
// unmarshaled from JSON or YAML arrive as float64, which %v prints in
// scientific notation from 1e6 upward; row-oriented sources pass the raw
// cell string through unchanged.
func numberString(value interface{}) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// NewColumnRule builds one canonical rule for a single column constraint,
// addressed by name as Sheet.Column. The second return is false when the
// constraint kind has no condition mapping.
func NewColumnRule(templateID int, sheet, column, kind string, value interface{}) (ValidationRule, bool) {
	condition, ok := Condition(kind, value)
	if !ok {
		return ValidationRule{}, false
	}
	return ValidationRule{
		TemplateID:   templateID,
		SheetID:      sheet,
		Field:        sheet + "." + column,
		RuleType:     kind,
		Condition:    condition,
		ErrorMessage: Message(kind, column, sheet, value),
		Severity:     SeverityError,
		IsActive:     true,
	}, true
}
