package parsers

import (
	"fmt"
	"path/filepath"
	"strings"

	"validation-rules-service/internal/rules"
)

// supportedExtensions maps a lower-cased file extension to its adapter.
var supportedExtensions = map[string]func(string, int) (*rules.ParsedValidationRules, error){
	".json": ParseSchemaDocument,
	".yaml": ParseYAML,
	".yml":  ParseYAML,
	".csv":  ParseCSV,
	".xlsx": ParseWorkbook,
	".xls":  ParseLegacyWorkbook,
	".txt":  ParseLegacyText,
}

// Supported reports whether the file's extension selects an adapter.
func Supported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Compile selects an adapter from the file's extension and compiles the rule
// definition into the canonical rule set. It never returns an error or lets
// a panic escape: unsupported extensions, I/O failures and malformed
// documents all come back as an envelope with the reason recorded in Errors.
func Compile(path string, templateID int) (result *rules.ParsedValidationRules) {
	defer func() {
		if r := recover(); r != nil {
			result = errorResult(fmt.Sprintf("failed to parse %s: %v", filepath.Base(path), r))
		}
	}()

	adapter, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return errorResult(fmt.Sprintf("unsupported file format: %q", filepath.Ext(path)))
	}

	parsed, err := adapter(path, templateID)
	if err != nil {
		return errorResult(err.Error())
	}
	return parsed
}

func errorResult(reason string) *rules.ParsedValidationRules {
	result := rules.NewParsedValidationRules()
	result.Errors = append(result.Errors, reason)
	return result
}
