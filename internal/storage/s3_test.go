package storage

import (
	"os"
	"testing"
)

func TestNewS3Client(t *testing.T) {
	tests := []struct {
		name        string
		bucket      string
		prefix      string
		region      string
		expectError bool
	}{
		{
			name:        "valid configuration",
			bucket:      "test-bucket",
			prefix:      "test-prefix",
			region:      "eu-west-1",
			expectError: false,
		},
		{
			name:        "empty bucket",
			bucket:      "",
			prefix:      "test-prefix",
			region:      "eu-west-1",
			expectError: true,
		},
		{
			name:        "empty prefix is valid",
			bucket:      "test-bucket",
			prefix:      "",
			region:      "eu-west-1",
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewS3Client(tt.bucket, tt.prefix, tt.region)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.GetBucket() != tt.bucket {
				t.Errorf("bucket = %v, want %v", client.GetBucket(), tt.bucket)
			}
			if client.GetPrefix() != tt.prefix {
				t.Errorf("prefix = %v, want %v", client.GetPrefix(), tt.prefix)
			}
		})
	}
}

func TestNewS3ClientFromEnv(t *testing.T) {
	origBucket := os.Getenv("S3_BUCKET")
	origPrefix := os.Getenv("S3_PREFIX")
	origRegion := os.Getenv("AWS_REGION")
	defer func() {
		os.Setenv("S3_BUCKET", origBucket)
		os.Setenv("S3_PREFIX", origPrefix)
		os.Setenv("AWS_REGION", origRegion)
	}()

	os.Setenv("S3_BUCKET", "env-bucket")
	os.Setenv("S3_PREFIX", "env-prefix")
	os.Setenv("AWS_REGION", "")

	client, err := NewS3ClientFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.GetBucket() != "env-bucket" {
		t.Errorf("bucket = %v, want env-bucket", client.GetBucket())
	}

	os.Setenv("S3_BUCKET", "")
	if _, err := NewS3ClientFromEnv(); err == nil {
		t.Errorf("expected error for missing S3_BUCKET")
	}
}

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{"no prefix", "", "rule_sets/run/report.json", "rule_sets/run/report.json"},
		{"with prefix", "team-a", "report.json", "team-a/report.json"},
		{"leading slash stripped", "team-a", "/report.json", "team-a/report.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewS3Client("bucket", tt.prefix, "eu-west-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := client.buildKey(tt.key); got != tt.want {
				t.Errorf("buildKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestGetS3URI(t *testing.T) {
	client, err := NewS3Client("bucket", "team-a", "eu-west-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "s3://bucket/team-a/report.json"
	if got := client.GetS3URI("report.json"); got != want {
		t.Errorf("GetS3URI() = %q, want %q", got, want)
	}
}
