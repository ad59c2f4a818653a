package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CompileUploadConfig describes where to publish the artifacts of one
// compile run.
type CompileUploadConfig struct {
	Bucket   string
	Prefix   string
	Region   string
	RunID    string
	Report   []byte
	HTML     []byte
	Manifest *CompileManifest
}

// RuleSourceDownloadConfig describes a rule file to fetch from S3 before
// compiling.
type RuleSourceDownloadConfig struct {
	Bucket string
	Prefix string
	Region string
	Key    string
}

// CompileManifest records the metadata of one compile run alongside its
// report artifacts.
type CompileManifest struct {
	Timestamp  string `json:"timestamp"`
	RunID      string `json:"run_id"`
	TemplateID int    `json:"template_id"`
	SourceFile string `json:"source_file"`
	RuleCount  int    `json:"rule_count"`
	ErrorCount int    `json:"error_count"`
	Files      struct {
		Report   string `json:"report,omitempty"`
		HTML     string `json:"html,omitempty"`
		Manifest string `json:"manifest"`
	} `json:"files"`
}

// UploadCompileResults uploads the compiled-rules report plus a manifest
// under rule_sets/<run id>/.
func UploadCompileResults(config CompileUploadConfig) error {
	s3Client, err := NewS3Client(config.Bucket, config.Prefix, config.Region)
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}

	runID := config.RunID
	if runID == "" {
		runID = fmt.Sprintf("compile_%s", time.Now().Format("20060102_150405"))
	}
	s3Prefix := fmt.Sprintf("rule_sets/%s", runID)

	if config.Manifest == nil {
		config.Manifest = &CompileManifest{}
	}
	config.Manifest.RunID = runID
	if config.Manifest.Timestamp == "" {
		config.Manifest.Timestamp = time.Now().Format(time.RFC3339)
	}

	if len(config.Report) > 0 {
		s3Key := fmt.Sprintf("%s/report.json", s3Prefix)
		if err := s3Client.UploadContent(config.Report, s3Key); err != nil {
			return fmt.Errorf("failed to upload report: %w", err)
		}
		config.Manifest.Files.Report = s3Key
		fmt.Printf("Uploaded report to %s\n", s3Client.GetS3URI(s3Key))
	}

	if len(config.HTML) > 0 {
		s3Key := fmt.Sprintf("%s/report.html", s3Prefix)
		if err := s3Client.UploadContent(config.HTML, s3Key); err != nil {
			return fmt.Errorf("failed to upload HTML report: %w", err)
		}
		config.Manifest.Files.HTML = s3Key
		fmt.Printf("Uploaded HTML report to %s\n", s3Client.GetS3URI(s3Key))
	}

	manifestS3Key := fmt.Sprintf("%s/manifest.json", s3Prefix)
	config.Manifest.Files.Manifest = manifestS3Key
	manifestData, err := json.MarshalIndent(config.Manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := s3Client.UploadContent(manifestData, manifestS3Key); err != nil {
		return fmt.Errorf("failed to upload manifest: %w", err)
	}
	fmt.Printf("Uploaded manifest to %s\n", s3Client.GetS3URI(manifestS3Key))

	fmt.Printf("\nRule Set Package: s3://%s/%s/\n", config.Bucket, s3Prefix)
	fmt.Printf("   Run ID: %s\n", runID)
	fmt.Printf("   Rules: %d (%d parse errors)\n", config.Manifest.RuleCount, config.Manifest.ErrorCount)

	return nil
}

// DownloadRuleSource fetches one rule file from S3 into a temp directory and
// returns the local path. The caller owns the returned directory's cleanup.
func DownloadRuleSource(config RuleSourceDownloadConfig) (string, error) {
	s3Client, err := NewS3Client(config.Bucket, config.Prefix, config.Region)
	if err != nil {
		return "", fmt.Errorf("failed to create S3 client: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "validation-rules-s3-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	localPath := filepath.Join(tmpDir, filepath.Base(config.Key))
	fmt.Printf("Downloading rule source from %s\n", s3Client.GetS3URI(config.Key))
	if err := s3Client.DownloadFile(config.Key, localPath); err != nil {
		os.RemoveAll(tmpDir)
		return "", fmt.Errorf("failed to download rule source: %w", err)
	}

	return localPath, nil
}
