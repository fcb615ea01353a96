package s3_test

import (
	"context"
	"os"
	"testing"

	"github.com/NVIDIA/vfscore"
	"github.com/NVIDIA/vfscore/backend/s3"
	"github.com/NVIDIA/vfscore/config"
	"github.com/NVIDIA/vfscore/fstest"
)

// TestConformance runs the full conformance suite against a real bucket.
// Set VFSCORE_S3_TEST_BUCKET (and standard AWS credentials/region env vars)
// to exercise it; it is skipped otherwise, the same way the teacher's own
// backend-specific integration tests are gated behind live credentials
// rather than run unconditionally in CI.
func TestConformance(t *testing.T) {
	bucket := os.Getenv("VFSCORE_S3_TEST_BUCKET")
	if bucket == "" {
		t.Skip("VFSCORE_S3_TEST_BUCKET not set; skipping live S3 conformance run")
	}

	fstest.Run(t, func(t *testing.T) vfs.FileSystem {
		fsys, err := s3.New(context.Background(), config.S3Options{
			Bucket: bucket,
			Prefix: t.Name(),
			Region: os.Getenv("AWS_REGION"),
		})
		if err != nil {
			t.Fatalf("s3.New: %v", err)
		}
		return fsys
	})
}

func TestCapabilities(t *testing.T) {
	fsys, err := s3.New(context.Background(), config.S3Options{Bucket: "unused", Region: "us-east-1"})
	if err != nil {
		t.Fatalf("s3.New: %v", err)
	}
	caps := fsys.Capabilities()
	if !caps.HaveImplicitDirectories {
		t.Errorf("HaveImplicitDirectories = false, want true")
	}
	if caps.AllowMoveDir {
		t.Errorf("AllowMoveDir = true, want false")
	}
	if caps.AllowAppendToFile {
		t.Errorf("AllowAppendToFile = true, want false")
	}
	if caps.HaveDirectoryMTimes {
		t.Errorf("HaveDirectoryMTimes = true, want false")
	}
}
