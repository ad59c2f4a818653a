package rules

import (
	"strings"
	"unicode"
)

// Rule type vocabulary. Every compiled rule carries exactly one of these tags.
const (
	TypeRequired   = "required"
	TypeDataType   = "dataType"
	TypeMinLength  = "minLength"
	TypeMaxLength  = "maxLength"
	TypeMinimum    = "minimum"
	TypeMaximum    = "maximum"
	TypePattern    = "pattern"
	TypeEnum       = "enum"
	TypeCrossField = "crossField"
	TypeGlobal     = "global"
	TypeCustom     = "custom"
	TypeRange      = "range"
	TypeLegacy     = "legacy"
)

// Severity levels understood by the downstream evaluator.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// FieldGlobal is the sentinel field for rules that apply to the whole
// submission rather than a single column or cell.
const FieldGlobal = "GLOBAL"

// ValidationRule is the canonical unit of compiled output, decoupled from
// whichever source format it was authored in. The condition string is opaque:
// the compiler synthesizes or passes it through, the evaluator interprets it.
type ValidationRule struct {
	TemplateID     int    `json:"templateId" yaml:"templateId"`
	SheetID        string `json:"sheetId,omitempty" yaml:"sheetId,omitempty"`
	Field          string `json:"field" yaml:"field"`
	RuleType       string `json:"ruleType" yaml:"ruleType"`
	Condition      string `json:"condition" yaml:"condition"`
	ErrorMessage   string `json:"errorMessage" yaml:"errorMessage"`
	Severity       string `json:"severity" yaml:"severity"`
	IsActive       bool   `json:"isActive" yaml:"isActive"`
	RowRange       string `json:"rowRange,omitempty" yaml:"rowRange,omitempty"`
	ColumnRange    string `json:"columnRange,omitempty" yaml:"columnRange,omitempty"`
	CellRange      string `json:"cellRange,omitempty" yaml:"cellRange,omitempty"`
	ApplyToAllRows bool   `json:"applyToAllRows,omitempty" yaml:"applyToAllRows,omitempty"`
}

// ParsedValidationRules is the compiler's output envelope. Rules preserve
// source order, metadata keys follow the lower-case space-stripped
// convention, and errors record parse problems without implying the rule
// list is empty: partial success is the normal failure mode.
type ParsedValidationRules struct {
	Rules    []ValidationRule  `json:"rules" yaml:"rules"`
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
	Errors   []string          `json:"errors" yaml:"errors"`
}

// NewParsedValidationRules returns an empty envelope with initialized
// collections so callers can append without nil checks.
func NewParsedValidationRules() *ParsedValidationRules {
	return &ParsedValidationRules{
		Rules:    []ValidationRule{},
		Metadata: map[string]string{},
		Errors:   []string{},
	}
}

// NormalizeSeverity maps a raw severity cell to the canonical set,
// defaulting to error for blank or unknown values.
func NormalizeSeverity(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), SeverityWarning) {
		return SeverityWarning
	}
	return SeverityError
}

// MetadataKey coerces a metadata field name to the common convention:
// lower-case with all whitespace removed.
func MetadataKey(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}
