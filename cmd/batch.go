package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"validation-rules-service/internal/formatters"
	"validation-rules-service/internal/parsers"
	"validation-rules-service/internal/storage"

	"github.com/spf13/cobra"
)

var (
	batchTemplateID int
	batchOutputDir  string

	batchS3Upload bool
	batchS3Bucket string
	batchS3Prefix string
	batchS3Region string
	batchS3RunID  string
)

var batchCmd = &cobra.Command{
	Use:   "batch <rule-dir>",
	Short: "Compile every supported rule file in a directory",
	Long: `Compile all supported rule definition files found in a directory.

One JSON report is written per source file, plus a printed summary of
rule and error counts across the whole directory.

Examples:
  # Compile a directory of uploaded rule files
  validation-rules batch ./uploads --template-id 42 --output-dir ./reports

  # Compile and publish all reports to S3
  validation-rules batch ./uploads --template-id 42 \
    --output-dir ./reports --s3-upload --s3-bucket reg-reports`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runBatch(args[0])
	},
}

func init() {
	batchCmd.Flags().IntVarP(&batchTemplateID, "template-id", "t", 0, "Report template the rules belong to (required)")
	batchCmd.MarkFlagRequired("template-id")
	batchCmd.Flags().StringVarP(&batchOutputDir, "output-dir", "d", "./reports", "Directory for per-file JSON reports")

	batchCmd.Flags().BoolVar(&batchS3Upload, "s3-upload", false, "Upload the report directory to S3")
	batchCmd.Flags().StringVar(&batchS3Bucket, "s3-bucket", "", "S3 bucket name (or use S3_BUCKET env var)")
	batchCmd.Flags().StringVar(&batchS3Prefix, "s3-prefix", "", "S3 key prefix/path (or use S3_PREFIX env var)")
	batchCmd.Flags().StringVar(&batchS3Region, "s3-region", "eu-west-1", "AWS region (or use AWS_REGION env var)")
	batchCmd.Flags().StringVar(&batchS3RunID, "s3-run-id", "", "Run ID for S3 organization (default: auto-generated timestamp)")
}

func runBatch(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("Error: Failed to read directory %s: %v", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !parsers.Supported(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	if len(files) == 0 {
		log.Fatalf("Error: No supported rule files found in %s", dir)
	}

	if err := os.MkdirAll(batchOutputDir, 0755); err != nil {
		log.Fatalf("Error: Failed to create output directory: %v", err)
	}

	totalRules, totalErrors := 0, 0
	for _, name := range files {
		parsed := parsers.Compile(filepath.Join(dir, name), batchTemplateID)
		report := formatters.NewReport(name, batchTemplateID, parsed)

		data, err := formatters.MarshalReport(report)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		outName := name[:len(name)-len(filepath.Ext(name))] + ".report.json"
		outPath := filepath.Join(batchOutputDir, outName)
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			log.Fatalf("Error: Failed to write %s: %v", outPath, err)
		}

		status := "ok"
		if len(parsed.Errors) > 0 {
			status = fmt.Sprintf("%d parse error(s)", len(parsed.Errors))
		}
		fmt.Printf("%-40s %4d rules  %s\n", name, len(parsed.Rules), status)

		totalRules += len(parsed.Rules)
		totalErrors += len(parsed.Errors)
	}

	fmt.Printf("\nCompiled %d file(s): %d rules, %d parse errors\n", len(files), totalRules, totalErrors)
	fmt.Printf("Reports written to %s\n", batchOutputDir)

	if batchS3Upload {
		bucket := batchS3Bucket
		if bucket == "" {
			bucket = os.Getenv("S3_BUCKET")
		}
		prefix := batchS3Prefix
		if prefix == "" {
			prefix = os.Getenv("S3_PREFIX")
		}
		region := batchS3Region
		if region == "" {
			region = os.Getenv("AWS_REGION")
			if region == "" {
				region = "eu-west-1"
			}
		}

		s3Client, err := storage.NewS3Client(bucket, prefix, region)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		runID := batchS3RunID
		if runID == "" {
			runID = "batch"
		}
		uploaded, err := s3Client.UploadDirectory(batchOutputDir, fmt.Sprintf("rule_sets/%s", runID))
		if err != nil {
			log.Fatalf("Error: Failed to upload reports: %v", err)
		}
		fmt.Printf("Uploaded %d report(s) to %s\n", len(uploaded), s3Client.GetS3URI(fmt.Sprintf("rule_sets/%s", runID)))
	}
}
