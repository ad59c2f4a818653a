package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"validation-rules-service/internal/formatters"
	"validation-rules-service/internal/parsers"
	"validation-rules-service/internal/storage"

	"github.com/spf13/cobra"
)

var (
	// Common flags
	compileTemplateID int
	outputFormats     string // Comma-separated: text,json,yaml,html
	jsonFile          string
	htmlFile          string

	// S3 flags
	compileS3Source bool
	compileS3Upload bool
	compileS3Bucket string
	compileS3Prefix string
	compileS3Region string
	compileS3RunID  string
)

var compileCmd = &cobra.Command{
	Use:   "compile <rule-file>",
	Short: "Compile one rule definition file into a canonical rule set",
	Long: `Compile a validation-rule definition into the canonical rule set.

The adapter is selected by file extension: .json, .yaml/.yml, .csv,
.xlsx/.xls or .txt. Compilation is best-effort: parse problems are
reported alongside whatever rules could still be compiled.

Examples:
  # Compile a workbook and print the text summary
  validation-rules compile rules.xlsx --template-id 42

  # Compile to JSON and HTML files
  validation-rules compile rules.csv --template-id 42 \
    --output json,html --json-file rules.json --html-file rules.html

  # Fetch the source from S3, compile, publish report + manifest
  validation-rules compile uploads/rules.yaml --template-id 42 \
    --s3-source --s3-upload --s3-bucket reg-reports`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCompile(args[0])
	},
}

func init() {
	compileCmd.Flags().IntVarP(&compileTemplateID, "template-id", "t", 0, "Report template the rules belong to (required)")
	compileCmd.MarkFlagRequired("template-id")
	compileCmd.Flags().StringVarP(&outputFormats, "output", "o", "text", "Output formats (comma-separated): text,json,yaml,html")
	compileCmd.Flags().StringVar(&jsonFile, "json-file", "", "JSON output file path")
	compileCmd.Flags().StringVar(&htmlFile, "html-file", "", "HTML output file path")

	compileCmd.Flags().BoolVar(&compileS3Source, "s3-source", false, "Treat <rule-file> as an S3 key and download it first")
	compileCmd.Flags().BoolVar(&compileS3Upload, "s3-upload", false, "Upload the compiled report and manifest to S3")
	compileCmd.Flags().StringVar(&compileS3Bucket, "s3-bucket", "", "S3 bucket name (or use S3_BUCKET env var)")
	compileCmd.Flags().StringVar(&compileS3Prefix, "s3-prefix", "", "S3 key prefix/path (or use S3_PREFIX env var)")
	compileCmd.Flags().StringVar(&compileS3Region, "s3-region", "eu-west-1", "AWS region (or use AWS_REGION env var)")
	compileCmd.Flags().StringVar(&compileS3RunID, "s3-run-id", "", "Run ID for S3 organization (default: auto-generated timestamp)")
}

func runCompile(source string) {
	path := source
	if compileS3Source {
		bucket, prefix, region := s3Settings()
		localPath, err := storage.DownloadRuleSource(storage.RuleSourceDownloadConfig{
			Bucket: bucket,
			Prefix: prefix,
			Region: region,
			Key:    source,
		})
		if err != nil {
			log.Fatalf("Error: Failed to download from S3: %v", err)
		}
		defer os.RemoveAll(filepath.Dir(localPath))
		path = localPath
	}

	parsed := parsers.Compile(path, compileTemplateID)
	report := formatters.NewReport(filepath.Base(source), compileTemplateID, parsed)

	var htmlPage string
	for _, format := range strings.Split(outputFormats, ",") {
		switch strings.TrimSpace(strings.ToLower(format)) {
		case "text":
			formatters.Text(report)
		case "json":
			if jsonFile != "" {
				data, err := formatters.MarshalReport(report)
				if err != nil {
					log.Fatalf("Error: %v", err)
				}
				if err := os.WriteFile(jsonFile, data, 0644); err != nil {
					log.Fatalf("Error: Failed to write %s: %v", jsonFile, err)
				}
				fmt.Printf("Wrote JSON report to %s\n", jsonFile)
			} else {
				formatters.JSON(report)
			}
		case "yaml":
			formatters.YAML(report)
		case "html":
			page, err := formatters.HTML(report)
			if err != nil {
				log.Fatalf("Error: %v", err)
			}
			htmlPage = page
			out := htmlFile
			if out == "" {
				out = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + ".html"
			}
			if err := os.WriteFile(out, []byte(page), 0644); err != nil {
				log.Fatalf("Error: Failed to write %s: %v", out, err)
			}
			fmt.Printf("Wrote HTML report to %s\n", out)
		case "":
		default:
			log.Fatalf("Error: unknown output format %q", format)
		}
	}

	if compileS3Upload {
		bucket, prefix, region := s3Settings()
		data, err := formatters.MarshalReport(report)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		manifest := &storage.CompileManifest{
			TemplateID: compileTemplateID,
			SourceFile: filepath.Base(source),
			RuleCount:  report.RuleCount,
			ErrorCount: report.ErrorCount,
		}
		if err := storage.UploadCompileResults(storage.CompileUploadConfig{
			Bucket:   bucket,
			Prefix:   prefix,
			Region:   region,
			RunID:    compileS3RunID,
			Report:   data,
			HTML:     []byte(htmlPage),
			Manifest: manifest,
		}); err != nil {
			log.Fatalf("Error: Failed to upload to S3: %v", err)
		}
	}

	if len(parsed.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "\nCompleted with %d parse error(s); %d rule(s) were still compiled\n",
			len(parsed.Errors), len(parsed.Rules))
	}
}

func s3Settings() (bucket, prefix, region string) {
	bucket = compileS3Bucket
	if bucket == "" {
		bucket = os.Getenv("S3_BUCKET")
	}
	prefix = compileS3Prefix
	if prefix == "" {
		prefix = os.Getenv("S3_PREFIX")
	}
	region = compileS3Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
		if region == "" {
			region = "eu-west-1"
		}
	}
	return bucket, prefix, region
}
