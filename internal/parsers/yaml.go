package parsers

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"validation-rules-service/internal/rules"
)

// ParseYAML compiles a YAML rule document. The format is structurally
// identical to the JSON schema document; once unmarshaled, the parsed
// object is handed to the shared builder directly.
func ParseYAML(path string, templateID int) (*rules.ParsedValidationRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule document: %w", err)
	}

	var doc ruleDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML rules: %w", err)
	}

	return buildRulesFromDocument(&doc, templateID), nil
}
