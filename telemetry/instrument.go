package telemetry

import (
	"context"
	"time"

	"github.com/NVIDIA/vfscore"
)

// Instrument wraps inner so every vfs.FileSystem call records request and
// operation metrics against m, the operation-level equivalent of the
// teacher's recordRequest/recordBackendMetrics pair generalized from one
// backend type switch to any vfs.FileSystem. The backend's name and
// capability flags are baked into m's attributes once, up front, rather
// than recomputed on every call.
func Instrument(inner vfs.FileSystem, m *Metrics, backendName string) vfs.FileSystem {
	backendMetrics := m.WithBackendAttributes(backendName, inner.Capabilities())
	return &instrumented{inner: inner, metrics: &backendMetrics, backend: backendName}
}

type instrumented struct {
	inner   vfs.FileSystem
	metrics *Metrics
	backend string
}

func (i *instrumented) around(op string, bytesTransferred int64, fn func() error) error {
	ctx := context.Background()
	i.metrics.RecordRequest(ctx, i.backend, op)
	start := time.Now()
	err := fn()
	i.metrics.RecordOperation(ctx, i.backend, op, start, err, bytesTransferred)
	return err
}

func (i *instrumented) Capabilities() vfs.CapabilityFlags {
	return i.inner.Capabilities()
}

func (i *instrumented) Stat(path string) (vfs.FileStat, error) {
	var st vfs.FileStat
	err := i.around("Stat", 0, func() error {
		var err error
		st, err = i.inner.Stat(path)
		return err
	})
	return st, err
}

func (i *instrumented) StatMany(paths []string) ([]vfs.FileStat, error) {
	var sts []vfs.FileStat
	err := i.around("StatMany", 0, func() error {
		var err error
		sts, err = i.inner.StatMany(paths)
		return err
	})
	return sts, err
}

func (i *instrumented) List(sel vfs.Selector) ([]vfs.FileStat, error) {
	var sts []vfs.FileStat
	err := i.around("List", 0, func() error {
		var err error
		sts, err = i.inner.List(sel)
		return err
	})
	return sts, err
}

func (i *instrumented) CreateDir(path string, recursive bool) error {
	return i.around("CreateDir", 0, func() error { return i.inner.CreateDir(path, recursive) })
}

func (i *instrumented) DeleteDir(path string) error {
	return i.around("DeleteDir", 0, func() error { return i.inner.DeleteDir(path) })
}

func (i *instrumented) DeleteDirContents(path string) error {
	return i.around("DeleteDirContents", 0, func() error { return i.inner.DeleteDirContents(path) })
}

func (i *instrumented) DeleteFile(path string) error {
	return i.around("DeleteFile", 0, func() error { return i.inner.DeleteFile(path) })
}

func (i *instrumented) DeleteFiles(paths []string) error {
	return i.around("DeleteFiles", 0, func() error { return i.inner.DeleteFiles(paths) })
}

func (i *instrumented) Move(src, dst string) error {
	return i.around("Move", 0, func() error { return i.inner.Move(src, dst) })
}

func (i *instrumented) CopyFile(src, dst string) error {
	return i.around("CopyFile", 0, func() error { return i.inner.CopyFile(src, dst) })
}

func (i *instrumented) OpenInputStream(path string) (vfs.SequentialReader, error) {
	var r vfs.SequentialReader
	err := i.around("OpenInputStream", 0, func() error {
		var err error
		r, err = i.inner.OpenInputStream(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &countingReader{SequentialReader: r, instrumented: i, op: "OpenInputStream"}, nil
}

func (i *instrumented) OpenInputFile(path string) (vfs.RandomReader, error) {
	var r vfs.RandomReader
	err := i.around("OpenInputFile", 0, func() error {
		var err error
		r, err = i.inner.OpenInputFile(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &countingRandomReader{RandomReader: r, instrumented: i, op: "OpenInputFile"}, nil
}

func (i *instrumented) OpenOutputStream(path string) (vfs.Writer, error) {
	var w vfs.Writer
	err := i.around("OpenOutputStream", 0, func() error {
		var err error
		w, err = i.inner.OpenOutputStream(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &countingWriter{Writer: w, instrumented: i, op: "OpenOutputStream"}, nil
}

func (i *instrumented) OpenAppendStream(path string) (vfs.Writer, error) {
	var w vfs.Writer
	err := i.around("OpenAppendStream", 0, func() error {
		var err error
		w, err = i.inner.OpenAppendStream(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &countingWriter{Writer: w, instrumented: i, op: "OpenAppendStream"}, nil
}

// countingReader records the total bytes read once the stream is closed, so
// a stream's data-size metric reflects the whole transfer rather than one
// Read call.
type countingReader struct {
	vfs.SequentialReader
	instrumented *instrumented
	op           string
	n            int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.SequentialReader.Read(p)
	r.n += int64(n)
	return n, err
}

func (r *countingReader) Close() error {
	err := r.SequentialReader.Close()
	r.instrumented.metrics.RecordOperation(context.Background(), r.instrumented.backend, r.op+".bytes", time.Now(), nil, r.n)
	return err
}

// countingRandomReader records the cumulative bytes served across every
// ReadAt call once the reader is closed, the same way countingReader does
// for sequential reads.
type countingRandomReader struct {
	vfs.RandomReader
	instrumented *instrumented
	op           string
	n            int64
}

func (r *countingRandomReader) ReadAt(p []byte, off int64) (int, error) {
	n, err := r.RandomReader.ReadAt(p, off)
	r.n += int64(n)
	return n, err
}

func (r *countingRandomReader) Close() error {
	err := r.RandomReader.Close()
	r.instrumented.metrics.RecordOperation(context.Background(), r.instrumented.backend, r.op+".bytes", time.Now(), nil, r.n)
	return err
}

type countingWriter struct {
	vfs.Writer
	instrumented *instrumented
	op           string
	n            int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.Writer.Write(p)
	w.n += int64(n)
	return n, err
}

func (w *countingWriter) Close() error {
	err := w.Writer.Close()
	w.instrumented.metrics.RecordOperation(context.Background(), w.instrumented.backend, w.op+".bytes", time.Now(), nil, w.n)
	return err
}
