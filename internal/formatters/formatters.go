package formatters

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"validation-rules-service/internal/rules"
	"validation-rules-service/web"
)

// Report wraps a compiled rule set with run context for output and upload.
type Report struct {
	Source      string                 `json:"source" yaml:"source"`
	TemplateID  int                    `json:"templateId" yaml:"templateId"`
	GeneratedAt string                 `json:"generatedAt" yaml:"generatedAt"`
	RuleCount   int                    `json:"ruleCount" yaml:"ruleCount"`
	ErrorCount  int                    `json:"errorCount" yaml:"errorCount"`
	Metadata    map[string]string      `json:"metadata" yaml:"metadata"`
	Rules       []rules.ValidationRule `json:"rules" yaml:"rules"`
	Errors      []string               `json:"errors" yaml:"errors"`
}

// NewReport builds a report for one compiled source file.
func NewReport(source string, templateID int, parsed *rules.ParsedValidationRules) Report {
	return Report{
		Source:      source,
		TemplateID:  templateID,
		GeneratedAt: time.Now().Format(time.RFC3339),
		RuleCount:   len(parsed.Rules),
		ErrorCount:  len(parsed.Errors),
		Metadata:    parsed.Metadata,
		Rules:       parsed.Rules,
		Errors:      parsed.Errors,
	}
}

// MarshalReport renders the report as indented JSON for files and uploads.
func MarshalReport(report Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// JSON prints the report to stdout in JSON format.
func JSON(report Report) {
	data, err := MarshalReport(report)
	if err != nil {
		log.Fatalf("Error marshaling JSON: %v", err)
	}
	fmt.Println(string(data))
}

// YAML prints the report to stdout in YAML format.
func YAML(report Report) {
	data, err := yaml.Marshal(report)
	if err != nil {
		log.Fatalf("Error marshaling YAML: %v", err)
	}
	fmt.Print(string(data))
}

// Text prints a human-readable summary of the compiled rule set.
func Text(report Report) {
	fmt.Print(TextString(report))
}

// TextString renders the text summary: metadata, per-type rule counts, the
// rule list, and any parse errors.
func TextString(report Report) string {
	var out strings.Builder

	fmt.Fprintf(&out, "Validation Rules for %s (template %d)\n", report.Source, report.TemplateID)
	fmt.Fprintf(&out, "=====================================\n\n")
	fmt.Fprintf(&out, "Rules compiled: %d\n", report.RuleCount)
	fmt.Fprintf(&out, "Parse errors:   %d\n\n", report.ErrorCount)

	if len(report.Metadata) > 0 {
		out.WriteString("Metadata:\n")
		keys := make([]string, 0, len(report.Metadata))
		for k := range report.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&out, "  %s: %s\n", k, report.Metadata[k])
		}
		out.WriteString("\n")
	}

	if counts := countByType(report.Rules); len(counts) > 0 {
		out.WriteString("Rules by type:\n")
		types := make([]string, 0, len(counts))
		for t := range counts {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Fprintf(&out, "  %-12s %d\n", t, counts[t])
		}
		out.WriteString("\n")
	}

	for _, rule := range report.Rules {
		fmt.Fprintf(&out, "%s [%s] %s (%s)\n", rule.Field, rule.RuleType, rule.Condition, rule.Severity)
	}

	if len(report.Errors) > 0 {
		out.WriteString("\nParse errors:\n")
		for _, e := range report.Errors {
			fmt.Fprintf(&out, "  - %s\n", e)
		}
	}

	return out.String()
}

// HTML renders the self-contained HTML report page.
func HTML(report Report) (string, error) {
	tmpl, err := template.ParseFS(web.Templates, "templates/report.html")
	if err != nil {
		return "", fmt.Errorf("failed to parse report template: %w", err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, report); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out.String(), nil
}

func countByType(compiled []rules.ValidationRule) map[string]int {
	counts := make(map[string]int, len(compiled))
	for _, rule := range compiled {
		counts[rule.RuleType]++
	}
	return counts
}
