package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NVIDIA/vfscore/config"
)

func TestFromURI_S3(t *testing.T) {
	opts, err := config.FromURI("s3://my-bucket/some/prefix?region=us-west-2&force_path_style=true")
	if err != nil {
		t.Fatalf("FromURI: %v", err)
	}
	if opts.Scheme != "s3" || opts.S3 == nil {
		t.Fatalf("FromURI = %+v, want S3 options", opts)
	}
	if opts.S3.Bucket != "my-bucket" {
		t.Errorf("Bucket = %q, want my-bucket", opts.S3.Bucket)
	}
	if opts.S3.Prefix != "some/prefix" {
		t.Errorf("Prefix = %q, want some/prefix", opts.S3.Prefix)
	}
	if opts.S3.Region != "us-west-2" {
		t.Errorf("Region = %q, want us-west-2", opts.S3.Region)
	}
	if !opts.S3.ForcePathStyle {
		t.Errorf("ForcePathStyle = false, want true")
	}
}

func TestFromURI_File(t *testing.T) {
	opts, err := config.FromURI("file:///data/root")
	if err != nil {
		t.Fatalf("FromURI: %v", err)
	}
	if opts.Local == nil || opts.Local.RootDir != "/data/root" {
		t.Errorf("Local = %+v, want RootDir /data/root", opts.Local)
	}
}

func TestFromURI_HDFS(t *testing.T) {
	opts, err := config.FromURI("hdfs://nn-host:8020")
	if err != nil {
		t.Fatalf("FromURI: %v", err)
	}
	if opts.HDFS == nil || opts.HDFS.Host != "nn-host" || opts.HDFS.Port != 8020 {
		t.Errorf("HDFS = %+v, want Host nn-host Port 8020", opts.HDFS)
	}
}

func TestFromURI_UnsupportedScheme(t *testing.T) {
	if _, err := config.FromURI("ftp://host/path"); err == nil {
		t.Errorf("FromURI(ftp://...) = nil error, want failure")
	}
}

func TestLoad_S3(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "msc.yaml")
	doc := "scheme: s3\nbucket: my-bucket\nregion: us-east-1\nprefix: data/\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opts, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.S3 == nil || opts.S3.Bucket != "my-bucket" || opts.S3.Region != "us-east-1" {
		t.Errorf("S3 = %+v, want Bucket=my-bucket Region=us-east-1", opts.S3)
	}
}

func TestLoad_MissingScheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "msc.yaml")
	if err := os.WriteFile(path, []byte("bucket: my-bucket\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Errorf("Load with no scheme = nil error, want failure")
	}
}
