package fstest

import (
	"testing"

	"github.com/NVIDIA/vfscore"
)

// testOpenOutputStream mirrors S6's output-stream half.
func testOpenOutputStream(t *testing.T, fsys vfs.FileSystem) {
	w, err := fsys.OpenOutputStream("abc")
	if err != nil {
		t.Fatalf("OpenOutputStream(abc): %v", err)
	}
	pos, err := w.Tell()
	if err != nil {
		t.Fatalf("Tell: %v", err)
	}
	if pos != 0 {
		t.Errorf("Tell() on a fresh output stream = %d, want 0", pos)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	AssertAllDirs(t, fsys, []string{})
	AssertAllFiles(t, fsys, []string{"abc"})
	AssertFileContents(t, fsys, "abc", "")

	if !fsys.Capabilities().HaveImplicitDirectories {
		if _, err := fsys.OpenOutputStream("AB/def"); err == nil || !vfs.IsIOError(err) {
			t.Errorf("OpenOutputStream(AB/def) missing parent: got %v, want IOError", err)
		}
	}
	AssertAllDirs(t, fsys, []string{})
	AssertAllFiles(t, fsys, []string{"abc"})

	mustCreateDir(t, fsys, "CD", false)
	w, err = fsys.OpenOutputStream("CD/ghi")
	if err != nil {
		t.Fatalf("OpenOutputStream(CD/ghi): %v", err)
	}
	if _, err := w.Write([]byte("some ")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Write([]byte("data")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if pos, err = w.Tell(); err != nil {
		t.Fatalf("Tell: %v", err)
	} else if pos != 9 {
		t.Errorf("Tell() after 9 bytes written = %d, want 9", pos)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	AssertAllDirs(t, fsys, []string{"CD"})
	AssertAllFiles(t, fsys, []string{"CD/ghi", "abc"})
	AssertFileContents(t, fsys, "CD/ghi", "some data")

	// OpenOutputStream truncates: re-opening and writing less data
	// discards the old content entirely.
	w, err = fsys.OpenOutputStream("CD/ghi")
	if err != nil {
		t.Fatalf("OpenOutputStream(CD/ghi) overwrite: %v", err)
	}
	if _, err := w.Write([]byte("overwritten")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	AssertAllDirs(t, fsys, []string{"CD"})
	AssertAllFiles(t, fsys, []string{"CD/ghi", "abc"})
	AssertFileContents(t, fsys, "CD/ghi", "overwritten")

	if _, err := w.Write([]byte("x")); err == nil || !vfs.IsInvalid(err) {
		t.Errorf("Write on closed stream: got %v, want Invalid", err)
	}

	if !fsys.Capabilities().AllowWriteFileOverDir {
		if _, err := fsys.OpenOutputStream("CD"); err == nil || !vfs.IsIOError(err) {
			t.Errorf("OpenOutputStream(CD) over a directory: got %v, want IOError", err)
		}
		AssertAllDirs(t, fsys, []string{"CD"})
	}
}

// testOpenAppendStream mirrors S6's append half; skipped on backends
// without AllowAppendToFile.
func testOpenAppendStream(t *testing.T, fsys vfs.FileSystem) {
	if !fsys.Capabilities().AllowAppendToFile {
		t.Skip("backend does not support append")
	}

	w, err := fsys.OpenAppendStream("abc")
	if err != nil {
		t.Fatalf("OpenAppendStream(abc): %v", err)
	}
	if pos, err := w.Tell(); err != nil {
		t.Fatalf("Tell: %v", err)
	} else if pos != 0 {
		t.Errorf("Tell() on a fresh append stream = %d, want 0", pos)
	}
	if _, err := w.Write([]byte("some ")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Write([]byte("data")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if pos, err := w.Tell(); err != nil {
		t.Fatalf("Tell: %v", err)
	} else if pos != 9 {
		t.Errorf("Tell() after 9 bytes written = %d, want 9", pos)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	AssertAllDirs(t, fsys, []string{})
	AssertAllFiles(t, fsys, []string{"abc"})
	AssertFileContents(t, fsys, "abc", "some data")

	w, err = fsys.OpenAppendStream("abc")
	if err != nil {
		t.Fatalf("OpenAppendStream(abc) again: %v", err)
	}
	if pos, err := w.Tell(); err != nil {
		t.Fatalf("Tell: %v", err)
	} else if pos != 9 {
		t.Errorf("Tell() on re-opened append stream = %d, want 9 (prior size)", pos)
	}
	if _, err := w.Write([]byte(" appended")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	AssertAllDirs(t, fsys, []string{})
	AssertAllFiles(t, fsys, []string{"abc"})
	AssertFileContents(t, fsys, "abc", "some data appended")

	if _, err := w.Write([]byte("x")); err == nil || !vfs.IsInvalid(err) {
		t.Errorf("Write on closed stream: got %v, want Invalid", err)
	}
}

func testOpenInputStream(t *testing.T, fsys vfs.FileSystem) {
	mustCreateDir(t, fsys, "AB", false)
	CreateFile(t, fsys, "AB/abc", "some data")

	r, err := fsys.OpenInputStream("AB/abc")
	if err != nil {
		t.Fatalf("OpenInputStream(AB/abc): %v", err)
	}
	buf := make([]byte, 4)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != "some" {
		t.Errorf("Read(4) = %q, want %q", buf[:n], "some")
	}
	buf = make([]byte, 6)
	n, err = r.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != " data" {
		t.Errorf("Read(6) = %q, want %q", buf[:n], " data")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := r.Read(buf); err == nil || !vfs.IsInvalid(err) {
		t.Errorf("Read on closed stream: got %v, want Invalid", err)
	}

	if _, err := fsys.OpenInputStream("AB/def"); err == nil || !vfs.IsIOError(err) {
		t.Errorf("OpenInputStream(AB/def) absent: got %v, want IOError", err)
	}
	if _, err := fsys.OpenInputStream("def"); err == nil || !vfs.IsIOError(err) {
		t.Errorf("OpenInputStream(def) absent: got %v, want IOError", err)
	}
	if _, err := fsys.OpenInputStream("AB"); err == nil || !vfs.IsIOError(err) {
		t.Errorf("OpenInputStream(AB) on a directory: got %v, want IOError", err)
	}
}

func testOpenInputFile(t *testing.T, fsys vfs.FileSystem) {
	mustCreateDir(t, fsys, "AB", false)
	CreateFile(t, fsys, "AB/abc", "some other data")

	f, err := fsys.OpenInputFile("AB/abc")
	if err != nil {
		t.Fatalf("OpenInputFile(AB/abc): %v", err)
	}
	buf := make([]byte, 6)
	n, err := f.ReadAt(buf, 5)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(buf[:n]) != "other " {
		t.Errorf("ReadAt(5, 6) = %q, want %q", buf[:n], "other ")
	}
	size, err := f.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 15 {
		t.Errorf("Size() = %d, want 15", size)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := f.ReadAt(buf[:1], 1); err == nil || !vfs.IsInvalid(err) {
		t.Errorf("ReadAt on closed stream: got %v, want Invalid", err)
	}

	if _, err := fsys.OpenInputFile("AB/def"); err == nil || !vfs.IsIOError(err) {
		t.Errorf("OpenInputFile(AB/def) absent: got %v, want IOError", err)
	}
	if _, err := fsys.OpenInputFile("def"); err == nil || !vfs.IsIOError(err) {
		t.Errorf("OpenInputFile(def) absent: got %v, want IOError", err)
	}
	if _, err := fsys.OpenInputFile("AB"); err == nil || !vfs.IsIOError(err) {
		t.Errorf("OpenInputFile(AB) on a directory: got %v, want IOError", err)
	}
}
