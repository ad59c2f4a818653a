package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"validation-rules-service/internal/rules"
)

func sampleParsed() *rules.ParsedValidationRules {
	parsed := rules.NewParsedValidationRules()
	parsed.Metadata["templatename"] = "Quarterly Liabilities"
	parsed.Rules = append(parsed.Rules,
		rules.ValidationRule{
			TemplateID:   4,
			SheetID:      "Liabilities",
			Field:        "Liabilities.Amount",
			RuleType:     rules.TypeRequired,
			Condition:    "NOT_EMPTY",
			ErrorMessage: "Amount is required in Liabilities",
			Severity:     rules.SeverityError,
			IsActive:     true,
		},
		rules.ValidationRule{
			TemplateID:   4,
			Field:        "A2:C5",
			RuleType:     rules.TypeRange,
			Condition:    "NOT_EMPTY",
			ErrorMessage: "Range A2:C5 is required",
			Severity:     rules.SeverityWarning,
			IsActive:     true,
			CellRange:    "A2:C5",
		},
	)
	parsed.Errors = append(parsed.Errors, "line 7: unrecognized rule type \"wibble\"")
	return parsed
}

func TestNewReport(t *testing.T) {
	report := NewReport("rules.csv", 4, sampleParsed())

	if report.RuleCount != 2 {
		t.Errorf("RuleCount = %d, want 2", report.RuleCount)
	}
	if report.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", report.ErrorCount)
	}
	if report.Source != "rules.csv" {
		t.Errorf("Source = %q", report.Source)
	}
	if report.GeneratedAt == "" {
		t.Errorf("GeneratedAt should be populated")
	}
}

func TestMarshalReport(t *testing.T) {
	report := NewReport("rules.csv", 4, sampleParsed())

	data, err := MarshalReport(report)
	if err != nil {
		t.Fatalf("MarshalReport failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded["templateId"].(float64) != 4 {
		t.Errorf("templateId = %v, want 4", decoded["templateId"])
	}
	compiled, ok := decoded["rules"].([]interface{})
	if !ok || len(compiled) != 2 {
		t.Fatalf("rules = %v", decoded["rules"])
	}
	first := compiled[0].(map[string]interface{})
	if first["field"] != "Liabilities.Amount" {
		t.Errorf("field = %v", first["field"])
	}
	if first["condition"] != "NOT_EMPTY" {
		t.Errorf("condition = %v", first["condition"])
	}
}

func TestTextString(t *testing.T) {
	out := TextString(NewReport("rules.csv", 4, sampleParsed()))

	for _, want := range []string{
		"Rules compiled: 2",
		"Parse errors:   1",
		"templatename: Quarterly Liabilities",
		"Liabilities.Amount [required] NOT_EMPTY (error)",
		"A2:C5 [range] NOT_EMPTY (warning)",
		"line 7: unrecognized rule type",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text summary missing %q:\n%s", want, out)
		}
	}
}

func TestHTML(t *testing.T) {
	page, err := HTML(NewReport("rules.csv", 4, sampleParsed()))
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}

	for _, want := range []string{
		"Liabilities.Amount",
		"NOT_EMPTY",
		"unrecognized rule type",
		"Quarterly Liabilities",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("HTML report missing %q", want)
		}
	}
}
