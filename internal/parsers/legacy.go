package parsers

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"validation-rules-service/internal/rules"
)

// ParseLegacyText compiles the line-oriented fallback format: one rule per
// non-blank line, written as field:condition with the first colon as the
// delimiter. Lines starting with # are comments. A line without a parseable
// pair is skipped and recorded in errors; this format has intentionally
// minimal semantics and exists for backward compatibility.
func ParseLegacyText(path string, templateID int) (*rules.ParsedValidationRules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy rules: %w", err)
	}
	defer f.Close()

	result := rules.NewParsedValidationRules()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		field, condition, ok := strings.Cut(line, ":")
		field = strings.TrimSpace(field)
		condition = strings.TrimSpace(condition)
		if !ok || field == "" || condition == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to parse line: %s", line))
			continue
		}

		result.Rules = append(result.Rules, rules.ValidationRule{
			TemplateID:   templateID,
			Field:        field,
			RuleType:     rules.TypeLegacy,
			Condition:    condition,
			ErrorMessage: fmt.Sprintf("Validation failed for %s", field),
			Severity:     rules.SeverityError,
			IsActive:     true,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read legacy rules: %w", err)
	}

	return result, nil
}
