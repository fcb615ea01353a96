// Package s3 is an S3-backed vfs.FileSystem. It synthesizes directories from
// key prefixes: there is no real directory object, only keys, and a "/"
// delimiter listing groups keys into CommonPrefixes the way S3 consoles show
// folders.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/vfscore"
	"github.com/NVIDIA/vfscore/config"
	vfspath "github.com/NVIDIA/vfscore/path"
)

const dirMarkerSuffix = "/"

// fanOutLimit bounds how many HeadObject/DeleteObject requests StatMany and
// DeleteFiles keep in flight at once, so a large batch doesn't open an
// unbounded number of connections against the bucket.
const fanOutLimit = 16

// FS is an S3-backed vfs.FileSystem rooted at one bucket and key prefix.
type FS struct {
	client *s3.Client
	bucket string
	prefix string
}

// New builds an FS from opts, loading AWS credentials from the default
// chain unless opts carries static credentials.
func New(ctx context.Context, opts config.S3Options) (*FS, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryer(func() aws.Retryer { return retryer{} }),
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     opts.AccessKeyID,
				SecretAccessKey: opts.SecretAccessKey,
			},
		}))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.ForcePathStyle
	})

	return &FS{
		client: client,
		bucket: opts.Bucket,
		prefix: strings.TrimSuffix(opts.Prefix, "/"),
	}, nil
}

func (fsys *FS) Capabilities() vfs.CapabilityFlags {
	return vfs.CapabilityFlags{
		HaveImplicitDirectories: true,
		AllowWriteFileOverDir:   true,
		AllowMoveDir:            false,
		AllowAppendToFile:       false,
		HaveDirectoryMTimes:     false,
	}
}

func (fsys *FS) fullKey(path string) string {
	path = vfspath.Normalize(path)
	if fsys.prefix == "" {
		return path
	}
	if path == "" {
		return fsys.prefix
	}
	return fsys.prefix + "/" + path
}

func (fsys *FS) ctx() context.Context { return context.Background() }

func (fsys *FS) Stat(path string) (vfs.FileStat, error) {
	path = vfspath.Normalize(path)
	if vfspath.IsRoot(path) {
		return vfs.FileStat{Path: "", Type: vfs.Directory, Size: vfs.NoSize, MTime: vfs.NoTime}, nil
	}

	key := fsys.fullKey(path)

	head, err := fsys.client.HeadObject(fsys.ctx(), &s3.HeadObjectInput{
		Bucket: aws.String(fsys.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		st := vfs.FileStat{Path: path, Type: vfs.File, BaseName: vfspath.Base(path), MTime: vfs.NoTime}
		if head.ContentLength != nil {
			st.Size = *head.ContentLength
		}
		if head.LastModified != nil {
			st.MTime = *head.LastModified
		}
		return st, nil
	}
	if !isNotFound(err) {
		return vfs.FileStat{}, vfs.NewIOError("Stat", path, err)
	}

	out, err := fsys.client.ListObjectsV2(fsys.ctx(), &s3.ListObjectsV2Input{
		Bucket:  aws.String(fsys.bucket),
		Prefix:  aws.String(key + dirMarkerSuffix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return vfs.FileStat{}, vfs.NewIOError("Stat", path, err)
	}
	if len(out.Contents) == 0 && len(out.CommonPrefixes) == 0 {
		return vfs.NewNonExistentStat(path), nil
	}
	return vfs.FileStat{Path: path, Type: vfs.Directory, BaseName: vfspath.Base(path), Size: vfs.NoSize, MTime: vfs.NoTime}, nil
}

// StatMany issues one HeadObject per path concurrently, bounded by
// fanOutLimit, since each Stat is an independent network round trip and the
// caller usually wants the whole batch back, not the latency of the
// slowest-plus-every-other-one-after-it.
func (fsys *FS) StatMany(paths []string) ([]vfs.FileStat, error) {
	out := make([]vfs.FileStat, len(paths))
	var g errgroup.Group
	g.SetLimit(fanOutLimit)
	for i, p := range paths {
		g.Go(func() error {
			st, err := fsys.Stat(p)
			if err != nil {
				return err
			}
			out[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (fsys *FS) List(sel vfs.Selector) ([]vfs.FileStat, error) {
	base, err := fsys.Stat(sel.BaseDir)
	if err != nil {
		return nil, err
	}
	if base.Type == vfs.NonExistent {
		if sel.AllowNonExistent {
			return []vfs.FileStat{}, nil
		}
		return nil, vfs.NewIOError("List", sel.BaseDir, nil)
	}
	if base.Type != vfs.Directory {
		return nil, vfs.NewIOError("List", sel.BaseDir, nil)
	}

	var out []vfs.FileStat
	var walk func(dir string, depth int) error
	walk = func(dir string, depth int) error {
		entries, err := fsys.listOneLevel(dir)
		if err != nil {
			return err
		}
		for _, st := range entries {
			out = append(out, st)
			if st.Type == vfs.Directory && sel.Recursive && (sel.MaxRecursion < 0 || depth < sel.MaxRecursion) {
				if err := walk(st.Path, depth+1); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(sel.BaseDir, 0); err != nil {
		return nil, err
	}
	return out, nil
}

// listOneLevel returns the immediate children of dir using a "/" delimiter,
// the way an S3 console groups keys into folders.
func (fsys *FS) listOneLevel(dir string) ([]vfs.FileStat, error) {
	prefix := fsys.fullKey(dir)
	if prefix != "" {
		prefix += "/"
	}

	var out []vfs.FileStat
	var token *string
	for {
		resp, err := fsys.client.ListObjectsV2(fsys.ctx(), &s3.ListObjectsV2Input{
			Bucket:            aws.String(fsys.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, vfs.NewIOError("List", dir, err)
		}

		for _, cp := range resp.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			out = append(out, vfs.FileStat{
				Path: vfspath.Join(dir, name), Type: vfs.Directory, BaseName: name,
				Size: vfs.NoSize, MTime: vfs.NoTime,
			})
		}
		for _, obj := range resp.Contents {
			key := aws.ToString(obj.Key)
			name := strings.TrimPrefix(key, prefix)
			if name == "" {
				continue // the directory marker object itself
			}
			st := vfs.FileStat{Path: vfspath.Join(dir, name), Type: vfs.File, BaseName: name, MTime: vfs.NoTime}
			if obj.Size != nil {
				st.Size = *obj.Size
			}
			if obj.LastModified != nil {
				st.MTime = *obj.LastModified
			}
			out = append(out, st)
		}

		if resp.IsTruncated == nil || !*resp.IsTruncated {
			break
		}
		token = resp.NextContinuationToken
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (fsys *FS) checkAncestorsNotFiles(path string) error {
	segs := strings.Split(path, "/")
	for i := range segs {
		ancestor := strings.Join(segs[:i+1], "/")
		st, err := fsys.Stat(ancestor)
		if err != nil {
			return err
		}
		if st.Type == vfs.File {
			return vfs.NewIOError("CreateDir", path, nil)
		}
	}
	return nil
}

func (fsys *FS) CreateDir(path string, recursive bool) error {
	path = vfspath.Normalize(path)
	if vfspath.IsRoot(path) {
		return nil
	}
	if err := fsys.checkAncestorsNotFiles(path); err != nil {
		return err
	}
	_, err := fsys.client.PutObject(fsys.ctx(), &s3.PutObjectInput{
		Bucket: aws.String(fsys.bucket),
		Key:    aws.String(fsys.fullKey(path) + dirMarkerSuffix),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return vfs.NewIOError("CreateDir", path, err)
	}
	return nil
}

// listAllKeys lists every object key under dir's prefix, without a
// delimiter, for recursive delete.
func (fsys *FS) listAllKeys(dir string) ([]string, error) {
	prefix := fsys.fullKey(dir)
	if prefix != "" {
		prefix += "/"
	}
	var keys []string
	var token *string
	for {
		resp, err := fsys.client.ListObjectsV2(fsys.ctx(), &s3.ListObjectsV2Input{
			Bucket:            aws.String(fsys.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range resp.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if resp.IsTruncated == nil || !*resp.IsTruncated {
			break
		}
		token = resp.NextContinuationToken
	}
	return keys, nil
}

func (fsys *FS) deleteKeys(keys []string) error {
	for _, k := range keys {
		if _, err := fsys.client.DeleteObject(fsys.ctx(), &s3.DeleteObjectInput{
			Bucket: aws.String(fsys.bucket),
			Key:    aws.String(k),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (fsys *FS) DeleteDir(path string) error {
	path = vfspath.Normalize(path)
	if vfspath.IsRoot(path) {
		return vfs.NewIOError("DeleteDir", path, nil)
	}
	st, err := fsys.Stat(path)
	if err != nil {
		return err
	}
	if st.Type != vfs.Directory {
		return vfs.NewIOError("DeleteDir", path, nil)
	}
	keys, err := fsys.listAllKeys(path)
	if err != nil {
		return vfs.NewIOError("DeleteDir", path, err)
	}
	keys = append(keys, fsys.fullKey(path)+dirMarkerSuffix)
	if err := fsys.deleteKeys(keys); err != nil {
		return vfs.NewIOError("DeleteDir", path, err)
	}
	return nil
}

func (fsys *FS) DeleteDirContents(path string) error {
	path = vfspath.Normalize(path)
	if !vfspath.IsRoot(path) {
		st, err := fsys.Stat(path)
		if err != nil {
			return err
		}
		if st.Type != vfs.Directory {
			return vfs.NewIOError("DeleteDirContents", path, nil)
		}
	}
	keys, err := fsys.listAllKeys(path)
	if err != nil {
		return vfs.NewIOError("DeleteDirContents", path, err)
	}
	if err := fsys.deleteKeys(keys); err != nil {
		return vfs.NewIOError("DeleteDirContents", path, err)
	}
	return nil
}

func (fsys *FS) DeleteFile(path string) error {
	path = vfspath.Normalize(path)
	st, err := fsys.Stat(path)
	if err != nil {
		return err
	}
	if st.Type != vfs.File {
		return vfs.NewIOError("DeleteFile", path, nil)
	}
	if _, err := fsys.client.DeleteObject(fsys.ctx(), &s3.DeleteObjectInput{
		Bucket: aws.String(fsys.bucket),
		Key:    aws.String(fsys.fullKey(path)),
	}); err != nil {
		return vfs.NewIOError("DeleteFile", path, err)
	}
	return nil
}

// DeleteFiles deletes every path concurrently, bounded by fanOutLimit.
// Every path is attempted regardless of earlier failures (best-effort,
// matching DeleteFile's own semantics); the first failure by paths' index
// order is what's returned.
func (fsys *FS) DeleteFiles(paths []string) error {
	errs := make([]error, len(paths))
	var g errgroup.Group
	g.SetLimit(fanOutLimit)
	for i, p := range paths {
		g.Go(func() error {
			errs[i] = fsys.DeleteFile(p)
			return nil
		})
	}
	g.Wait()

	for _, err := range errs {
		if err != nil {
			return vfs.NewIOError("DeleteFiles", "", err)
		}
	}
	return nil
}

func (fsys *FS) Move(src, dst string) error {
	src = vfspath.Normalize(src)
	dst = vfspath.Normalize(dst)

	srcStat, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	if srcStat.Type == vfs.NonExistent {
		return vfs.NewIOError("Move", src, nil)
	}
	if srcStat.Type == vfs.Directory {
		if vfspath.HasPrefix(dst, src) {
			return vfs.NewIOError("Move", dst, nil)
		}
		return vfs.NewInvalidError("Move", src, nil)
	}
	if src == dst {
		return nil
	}
	if parent := vfspath.Dir(dst); !vfspath.IsRoot(parent) {
		parentStat, err := fsys.Stat(parent)
		if err != nil {
			return err
		}
		if parentStat.Type == vfs.File {
			return vfs.NewIOError("Move", dst, nil)
		}
	}

	dstStat, err := fsys.Stat(dst)
	if err != nil {
		return err
	}
	if dstStat.Type == vfs.Directory {
		children, err := fsys.listOneLevel(dst)
		if err != nil {
			return err
		}
		if len(children) > 0 && !fsys.Capabilities().AllowWriteFileOverDir {
			return vfs.NewIOError("Move", dst, nil)
		}
	}

	if err := fsys.copyObject(src, dst); err != nil {
		return vfs.NewIOError("Move", dst, err)
	}
	if _, err := fsys.client.DeleteObject(fsys.ctx(), &s3.DeleteObjectInput{
		Bucket: aws.String(fsys.bucket),
		Key:    aws.String(fsys.fullKey(src)),
	}); err != nil {
		return vfs.NewIOError("Move", src, err)
	}
	return nil
}

func (fsys *FS) CopyFile(src, dst string) error {
	src = vfspath.Normalize(src)
	dst = vfspath.Normalize(dst)

	srcStat, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	if srcStat.Type != vfs.File {
		return vfs.NewIOError("CopyFile", src, nil)
	}
	if src == dst {
		return nil
	}
	if parent := vfspath.Dir(dst); !vfspath.IsRoot(parent) {
		parentStat, err := fsys.Stat(parent)
		if err != nil {
			return err
		}
		if parentStat.Type == vfs.File {
			return vfs.NewIOError("CopyFile", dst, nil)
		}
	}

	dstStat, err := fsys.Stat(dst)
	if err != nil {
		return err
	}
	if dstStat.Type == vfs.Directory {
		children, err := fsys.listOneLevel(dst)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return vfs.NewIOError("CopyFile", dst, nil)
		}
	}

	if err := fsys.copyObject(src, dst); err != nil {
		return vfs.NewIOError("CopyFile", dst, err)
	}
	return nil
}

func (fsys *FS) copyObject(src, dst string) error {
	source := fsys.bucket + "/" + fsys.fullKey(src)
	_, err := fsys.client.CopyObject(fsys.ctx(), &s3.CopyObjectInput{
		Bucket:     aws.String(fsys.bucket),
		Key:        aws.String(fsys.fullKey(dst)),
		CopySource: aws.String(source),
	})
	return err
}

func (fsys *FS) OpenInputStream(path string) (vfs.SequentialReader, error) {
	path = vfspath.Normalize(path)
	out, err := fsys.client.GetObject(fsys.ctx(), &s3.GetObjectInput{
		Bucket: aws.String(fsys.bucket),
		Key:    aws.String(fsys.fullKey(path)),
	})
	if err != nil {
		return nil, vfs.NewIOError("OpenInputStream", path, err)
	}
	return &sequentialReader{path: path, body: out.Body}, nil
}

func (fsys *FS) OpenInputFile(path string) (vfs.RandomReader, error) {
	path = vfspath.Normalize(path)
	st, err := fsys.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.Type != vfs.File {
		return nil, vfs.NewIOError("OpenInputFile", path, nil)
	}
	return &randomReader{fsys: fsys, path: path, size: st.Size}, nil
}

func (fsys *FS) OpenOutputStream(path string) (vfs.Writer, error) {
	path = vfspath.Normalize(path)

	st, err := fsys.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.Type == vfs.Directory {
		children, err := fsys.listOneLevel(path)
		if err != nil {
			return nil, err
		}
		if len(children) > 0 && !fsys.Capabilities().AllowWriteFileOverDir {
			return nil, vfs.NewIOError("OpenOutputStream", path, nil)
		}
	}
	return &writer{fsys: fsys, path: path}, nil
}

func (fsys *FS) OpenAppendStream(path string) (vfs.Writer, error) {
	return nil, vfs.NewInvalidError("OpenAppendStream", path, errors.New("s3: append is not supported"))
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}

type sequentialReader struct {
	path   string
	body   io.ReadCloser
	closed bool
}

func (r *sequentialReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, vfs.NewInvalidError("Read", r.path, nil)
	}
	return r.body.Read(p)
}

func (r *sequentialReader) Close() error {
	r.closed = true
	return r.body.Close()
}

// randomReader issues one ranged GetObject per ReadAt call, the same
// per-range fetch shape as the teacher's cache-line reads.
type randomReader struct {
	fsys   *FS
	path   string
	size   int64
	closed bool
}

func (r *randomReader) ReadAt(p []byte, off int64) (int, error) {
	if r.closed {
		return 0, vfs.NewInvalidError("ReadAt", r.path, nil)
	}
	if off < 0 || off >= r.size {
		return 0, io.EOF
	}
	end := off + int64(len(p)) - 1
	if end >= r.size {
		end = r.size - 1
	}
	out, err := r.fsys.client.GetObject(r.fsys.ctx(), &s3.GetObjectInput{
		Bucket: aws.String(r.fsys.bucket),
		Key:    aws.String(r.fsys.fullKey(r.path)),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return 0, vfs.NewIOError("ReadAt", r.path, err)
	}
	defer out.Body.Close()

	n, err := io.ReadFull(out.Body, p[:end-off+1])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, vfs.NewIOError("ReadAt", r.path, err)
	}
	if int64(n) < int64(len(p)) {
		return n, io.EOF
	}
	return n, nil
}

func (r *randomReader) Size() (int64, error) {
	return r.size, nil
}

func (r *randomReader) Close() error {
	r.closed = true
	return nil
}

// writer buffers the whole object in memory and uploads it on Close, since
// S3 has no append-in-place write.
type writer struct {
	fsys   *FS
	path   string
	buf    bytes.Buffer
	closed bool
}

func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, vfs.NewInvalidError("Write", w.path, nil)
	}
	return w.buf.Write(p)
}

func (w *writer) Tell() (int64, error) {
	if w.closed {
		return 0, vfs.NewInvalidError("Tell", w.path, nil)
	}
	return int64(w.buf.Len()), nil
}

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_, err := w.fsys.client.PutObject(w.fsys.ctx(), &s3.PutObjectInput{
		Bucket: aws.String(w.fsys.bucket),
		Key:    aws.String(w.fsys.fullKey(w.path)),
		Body:   bytes.NewReader(w.buf.Bytes()),
	})
	if err != nil {
		return vfs.NewIOError("Close", w.path, err)
	}
	return nil
}

// retryer adapts aws.Retryer to a small fixed backoff schedule, grounded on
// the teacher's backendStruct retryer but without its config-driven delay
// table.
type retryer struct{}

var retryDelays = []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 2 * time.Second}

func (retryer) IsErrorRetryable(err error) bool {
	var httpErr *awshttp.ResponseError
	if !errors.As(err, &httpErr) {
		return true
	}
	code := httpErr.HTTPStatusCode()
	return code < 400 || code == 429 || code >= 500
}

func (retryer) MaxAttempts() int { return len(retryDelays) + 1 }

func (retryer) RetryDelay(attempt int, _ error) (time.Duration, error) {
	if attempt < 1 || attempt > len(retryDelays) {
		return 0, fmt.Errorf("s3: unexpected retry attempt %d", attempt)
	}
	return retryDelays[attempt-1], nil
}

func (retryer) GetRetryToken(context.Context, error) (func(error) error, error) {
	return func(error) error { return nil }, nil
}

func (retryer) GetInitialToken() func(error) error {
	return func(error) error { return nil }
}

func (retryer) GetAttemptToken(context.Context) (func(error) error, error) {
	return func(error) error { return nil }, nil
}
