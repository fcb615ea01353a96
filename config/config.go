// Package config parses backend connection options from YAML documents and
// from URIs, the way a caller picks a vfs.FileSystem without hard-coding a
// constructor per scheme.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options holds the parsed, scheme-dispatched configuration for exactly one
// backend. Only the field matching Scheme is populated.
type Options struct {
	Scheme string

	S3    *S3Options
	Local *LocalOptions
	HDFS  *HDFSOptions
}

// S3Options configures backend/s3. AccessKeyID and SecretAccessKey are
// optional; when empty, the backend falls back to the AWS SDK's default
// credential chain.
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string
}

// LocalOptions configures backend/local.
type LocalOptions struct {
	RootDir string
}

// HDFSOptions mirrors Apache Arrow's HdfsOptions field-for-field. No HDFS
// backend is implemented against it; it exists so a future backend has
// somewhere to put its options without inventing a new shape.
type HDFSOptions struct {
	Host             string
	Port             int
	User             string
	UseHdfs3         bool
	Replication      int16
	BufferSize       int32
	DefaultBlockSize int64
}

// FromURI dispatches on the URI scheme (s3://, file://, hdfs://) and returns
// the Options populated from the URI's host/path/query.
func FromURI(raw string) (*Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("config: parse uri %q: %w", raw, err)
	}

	switch u.Scheme {
	case "s3":
		opts := &S3Options{
			Bucket: u.Host,
			Prefix: strings.TrimPrefix(u.Path, "/"),
		}
		q := u.Query()
		opts.Region = q.Get("region")
		opts.Endpoint = q.Get("endpoint")
		opts.AccessKeyID = q.Get("access_key_id")
		opts.SecretAccessKey = q.Get("secret_access_key")
		if v := q.Get("force_path_style"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("config: force_path_style: %w", err)
			}
			opts.ForcePathStyle = b
		}
		return &Options{Scheme: u.Scheme, S3: opts}, nil

	case "file", "":
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		return &Options{Scheme: "file", Local: &LocalOptions{RootDir: path}}, nil

	case "hdfs":
		opts := &HDFSOptions{Host: u.Hostname(), User: u.User.Username()}
		if p := u.Port(); p != "" {
			port, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("config: hdfs port: %w", err)
			}
			opts.Port = port
		}
		return &Options{Scheme: "hdfs", HDFS: opts}, nil

	default:
		return nil, fmt.Errorf("config: unsupported scheme %q", u.Scheme)
	}
}

// Load reads a YAML document from path and returns the Options for the
// backend named by its top-level "scheme" key.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	doc := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	scheme, ok := parseString(doc, "scheme", nil)
	if !ok {
		return nil, fmt.Errorf("config: %q: missing \"scheme\"", path)
	}

	switch scheme {
	case "s3":
		opts := &S3Options{}
		opts.Bucket, _ = parseString(doc, "bucket", "")
		opts.Region, _ = parseString(doc, "region", "")
		opts.Endpoint, _ = parseString(doc, "endpoint", "")
		opts.Prefix, _ = parseString(doc, "prefix", "")
		opts.ForcePathStyle, _ = parseBool(doc, "force_path_style", false)
		opts.AccessKeyID, _ = parseString(doc, "access_key_id", "")
		opts.SecretAccessKey, _ = parseString(doc, "secret_access_key", "")
		return &Options{Scheme: scheme, S3: opts}, nil

	case "local", "file":
		opts := &LocalOptions{}
		opts.RootDir, _ = parseString(doc, "root_dir", "")
		return &Options{Scheme: "file", Local: opts}, nil

	case "hdfs":
		opts := &HDFSOptions{}
		opts.Host, _ = parseString(doc, "host", "")
		opts.User, _ = parseString(doc, "user", "")
		if port, ok := parseUint64(doc, "port", nil); ok {
			opts.Port = int(port)
		}
		if replication, ok := parseUint64(doc, "replication", uint64(3)); ok {
			opts.Replication = int16(replication)
		}
		if bufSize, ok := parseUint64(doc, "buffer_size", nil); ok {
			opts.BufferSize = int32(bufSize)
		}
		if blockSize, ok := parseUint64(doc, "default_block_size", nil); ok {
			opts.DefaultBlockSize = int64(blockSize)
		}
		opts.UseHdfs3, _ = parseBool(doc, "use_hdfs3", false)
		return &Options{Scheme: scheme, HDFS: opts}, nil

	default:
		return nil, fmt.Errorf("config: %q: unsupported scheme %q", path, scheme)
	}
}
