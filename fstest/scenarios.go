package fstest

import (
	"testing"

	"github.com/NVIDIA/vfscore"
)

func testEmpty(t *testing.T, fsys vfs.FileSystem) {
	AssertAllDirs(t, fsys, []string{})
	AssertAllFiles(t, fsys, []string{})
}

// testCreateDir mirrors S1 CreateDir.
func testCreateDir(t *testing.T, fsys vfs.FileSystem) {
	if err := fsys.CreateDir("AB", false); err != nil {
		t.Fatalf("CreateDir(AB): %v", err)
	}
	if err := fsys.CreateDir("AB/CD/EF", true); err != nil {
		t.Fatalf("CreateDir(AB/CD/EF, recursive): %v", err)
	}
	if !fsys.Capabilities().HaveImplicitDirectories {
		if err := fsys.CreateDir("AB/GH/IJ", false); err == nil {
			t.Errorf("CreateDir(AB/GH/IJ, recursive=false) missing parent: got nil error, want IOError")
		} else if !vfs.IsIOError(err) {
			t.Errorf("CreateDir(AB/GH/IJ, recursive=false) missing parent: got %v, want IOError", err)
		}
	}
	if err := fsys.CreateDir("AB/GH", false); err != nil {
		t.Fatalf("CreateDir(AB/GH): %v", err)
	}
	// Idempotent: creating an already-existing directory succeeds twice.
	if err := fsys.CreateDir("AB/GH/IJ", false); err != nil {
		t.Fatalf("CreateDir(AB/GH/IJ) first: %v", err)
	}
	if err := fsys.CreateDir("AB/GH/IJ", false); err != nil {
		t.Fatalf("CreateDir(AB/GH/IJ) second: %v", err)
	}
	if err := fsys.CreateDir("XY", false); err != nil {
		t.Fatalf("CreateDir(XY): %v", err)
	}
	AssertAllDirs(t, fsys, []string{"AB", "AB/CD", "AB/CD/EF", "AB/GH", "AB/GH/IJ", "XY"})
	AssertAllFiles(t, fsys, []string{})

	CreateFile(t, fsys, "AB/def", "")
	AssertAllDirs(t, fsys, []string{"AB", "AB/CD", "AB/CD/EF", "AB/GH", "AB/GH/IJ", "XY"})
	AssertAllFiles(t, fsys, []string{"AB/def"})

	if err := fsys.CreateDir("AB/def/EF/GH", true); err == nil {
		t.Errorf("CreateDir(AB/def/EF/GH, recursive) over a file: got nil error, want IOError")
	} else if !vfs.IsIOError(err) {
		t.Errorf("CreateDir(AB/def/EF/GH, recursive) over a file: got %v, want IOError", err)
	}
	if err := fsys.CreateDir("AB/def/EF", false); err == nil {
		t.Errorf("CreateDir(AB/def/EF) over a file: got nil error, want IOError")
	} else if !vfs.IsIOError(err) {
		t.Errorf("CreateDir(AB/def/EF): got %v, want IOError", err)
	}

	AssertAllDirs(t, fsys, []string{"AB", "AB/CD", "AB/CD/EF", "AB/GH", "AB/GH/IJ", "XY"})
	AssertAllFiles(t, fsys, []string{"AB/def"})
}

// testDeleteDir mirrors S2 DeleteDir.
func testDeleteDir(t *testing.T, fsys vfs.FileSystem) {
	mustCreateDir(t, fsys, "AB/CD/EF", true)
	mustCreateDir(t, fsys, "AB/GH/IJ", true)
	CreateFile(t, fsys, "AB/abc", "")
	CreateFile(t, fsys, "AB/CD/def", "")
	CreateFile(t, fsys, "AB/CD/EF/ghi", "")

	if err := fsys.DeleteDir("AB/CD"); err != nil {
		t.Fatalf("DeleteDir(AB/CD): %v", err)
	}
	AssertAllDirs(t, fsys, []string{"AB", "AB/GH", "AB/GH/IJ"})
	AssertAllFiles(t, fsys, []string{"AB/abc"})

	if err := fsys.DeleteDir("AB/GH/IJ"); err != nil {
		t.Fatalf("DeleteDir(AB/GH/IJ): %v", err)
	}
	AssertAllDirs(t, fsys, []string{"AB", "AB/GH"})
	AssertAllFiles(t, fsys, []string{"AB/abc"})

	if err := fsys.DeleteDir("AB/GH/IJ"); err == nil {
		t.Errorf("DeleteDir(AB/GH/IJ) again: got nil error, want IOError")
	} else if !vfs.IsIOError(err) {
		t.Errorf("DeleteDir(AB/GH/IJ) again: got %v, want IOError", err)
	}
	if err := fsys.DeleteDir(""); err == nil {
		t.Errorf("DeleteDir(\"\"): got nil error, want IOError")
	} else if !vfs.IsIOError(err) {
		t.Errorf("DeleteDir(\"\"): got %v, want IOError", err)
	}
}

func testDeleteDirContents(t *testing.T, fsys vfs.FileSystem) {
	mustCreateDir(t, fsys, "AB/CD/EF", true)
	CreateFile(t, fsys, "AB/abc", "")
	CreateFile(t, fsys, "AB/CD/def", "")
	CreateFile(t, fsys, "AB/CD/EF/ghi", "")

	if err := fsys.DeleteDirContents("AB/CD"); err != nil {
		t.Fatalf("DeleteDirContents(AB/CD): %v", err)
	}
	AssertAllDirs(t, fsys, []string{"AB", "AB/CD"})
	AssertAllFiles(t, fsys, []string{"AB/abc"})

	// Empty string wipes the filesystem: a deliberate, documented idiom.
	if err := fsys.DeleteDirContents(""); err != nil {
		t.Fatalf("DeleteDirContents(\"\"): %v", err)
	}
	AssertAllDirs(t, fsys, []string{})
	AssertAllFiles(t, fsys, []string{})
}

func testDeleteFile(t *testing.T, fsys vfs.FileSystem) {
	mustCreateDir(t, fsys, "AB", false)
	CreateFile(t, fsys, "AB/def", "")
	AssertAllDirs(t, fsys, []string{"AB"})
	AssertAllFiles(t, fsys, []string{"AB/def"})

	if err := fsys.DeleteFile("AB/def"); err != nil {
		t.Fatalf("DeleteFile(AB/def): %v", err)
	}
	AssertAllDirs(t, fsys, []string{"AB"})
	AssertAllFiles(t, fsys, []string{})

	if err := fsys.DeleteFile("AB/def"); err == nil {
		t.Errorf("DeleteFile(AB/def) again: got nil error, want IOError")
	} else if !vfs.IsIOError(err) {
		t.Errorf("DeleteFile(AB/def) again: got %v, want IOError", err)
	}
	if err := fsys.DeleteFile("AB"); err == nil {
		t.Errorf("DeleteFile(AB) on a directory: got nil error, want IOError")
	} else if !vfs.IsIOError(err) {
		t.Errorf("DeleteFile(AB): got %v, want IOError", err)
	}
}

// testDeleteFiles checks the best-effort contract: every path is
// attempted even after an earlier one fails, and the call still reports
// an IOError.
func testDeleteFiles(t *testing.T, fsys vfs.FileSystem) {
	mustCreateDir(t, fsys, "AB", false)
	CreateFile(t, fsys, "abc", "")
	CreateFile(t, fsys, "AB/def", "123")
	CreateFile(t, fsys, "AB/ghi", "456")
	CreateFile(t, fsys, "AB/jkl", "789")
	CreateFile(t, fsys, "AB/mno", "789")
	AssertAllFiles(t, fsys, []string{"AB/def", "AB/ghi", "AB/jkl", "AB/mno", "abc"})

	if err := fsys.DeleteFiles([]string{"AB/def", "abc"}); err != nil {
		t.Fatalf("DeleteFiles(AB/def, abc): %v", err)
	}
	AssertAllFiles(t, fsys, []string{"AB/ghi", "AB/jkl", "AB/mno"})

	// One absent path among valid ones: every target is still attempted.
	err := fsys.DeleteFiles([]string{"AB/jkl", "AB/zzz", "AB/mno"})
	if err == nil {
		t.Errorf("DeleteFiles with one absent path: got nil error, want IOError")
	} else if !vfs.IsIOError(err) {
		t.Errorf("DeleteFiles with one absent path: got %v, want IOError", err)
	}
	AssertAllFiles(t, fsys, []string{"AB/ghi"})
}

// testMoveFile mirrors S3 MoveFile clobber.
func testMoveFile(t *testing.T, fsys vfs.FileSystem) {
	CreateFile(t, fsys, "abc", "data")

	if err := fsys.Move("abc", "def"); err != nil {
		t.Fatalf("Move(abc, def): %v", err)
	}
	AssertAllFiles(t, fsys, []string{"def"})
	AssertFileContents(t, fsys, "def", "data")

	mustCreateDir(t, fsys, "AB/CD", true)
	if err := fsys.Move("def", "AB/CD/ghi"); err != nil {
		t.Fatalf("Move(def, AB/CD/ghi): %v", err)
	}
	AssertAllFiles(t, fsys, []string{"AB/CD/ghi"})
	AssertFileContents(t, fsys, "AB/CD/ghi", "data")

	CreateFile(t, fsys, "AB/pqr", "other data")
	if err := fsys.Move("AB/CD/ghi", "AB/pqr"); err != nil {
		t.Fatalf("Move(AB/CD/ghi, AB/pqr) clobber: %v", err)
	}
	AssertAllFiles(t, fsys, []string{"AB/pqr"})
	AssertFileContents(t, fsys, "AB/pqr", "data")

	if err := fsys.Move("xxx", "yyy"); err == nil {
		t.Errorf("Move(xxx, yyy) of non-existent source: got nil error, want IOError")
	} else if !vfs.IsIOError(err) {
		t.Errorf("Move(xxx, yyy): got %v, want IOError", err)
	}

	// src == dst: either success (no-op) or IOError, never data loss.
	if err := fsys.Move("AB/pqr", "AB/pqr"); err != nil && !vfs.IsIOError(err) {
		t.Errorf("Move(AB/pqr, AB/pqr): got %v, want nil or IOError", err)
	}
	AssertAllFiles(t, fsys, []string{"AB/pqr"})
	AssertFileContents(t, fsys, "AB/pqr", "data")

	if !fsys.Capabilities().HaveImplicitDirectories {
		if err := fsys.Move("AB/pqr", "XX/mno"); err == nil || !vfs.IsIOError(err) {
			t.Errorf("Move(AB/pqr, XX/mno) missing parent: got %v, want IOError", err)
		}
	}

	CreateFile(t, fsys, "xxx", "")
	if err := fsys.Move("AB/pqr", "xxx/mno"); err == nil || !vfs.IsIOError(err) {
		t.Errorf("Move(AB/pqr, xxx/mno) parent is a file: got %v, want IOError", err)
	}

	if !fsys.Capabilities().AllowWriteFileOverDir {
		mustCreateDir(t, fsys, "EF", false)
		if err := fsys.Move("AB/pqr", "EF"); err == nil || !vfs.IsIOError(err) {
			t.Errorf("Move(AB/pqr, EF) onto a directory: got %v, want IOError", err)
		}
	}

	AssertAllFiles(t, fsys, []string{"AB/pqr", "xxx"})
}

// testMoveDir mirrors the directory half of §4.3; it is skipped on
// backends that don't advertise AllowMoveDir.
func testMoveDir(t *testing.T, fsys vfs.FileSystem) {
	if !fsys.Capabilities().AllowMoveDir {
		t.Skip("backend does not support directory move")
	}
	mustCreateDir(t, fsys, "AB/CD", true)
	mustCreateDir(t, fsys, "EF", false)
	CreateFile(t, fsys, "AB/abc", "abc data")
	CreateFile(t, fsys, "AB/CD/def", "def data")
	CreateFile(t, fsys, "EF/ghi", "ghi data")
	AssertAllDirs(t, fsys, []string{"AB", "AB/CD", "EF"})
	AssertAllFiles(t, fsys, []string{"AB/CD/def", "AB/abc", "EF/ghi"})

	if err := fsys.Move("AB", "GH"); err != nil {
		t.Fatalf("Move(AB, GH): %v", err)
	}
	AssertAllDirs(t, fsys, []string{"EF", "GH", "GH/CD"})
	AssertAllFiles(t, fsys, []string{"EF/ghi", "GH/CD/def", "GH/abc"})

	if err := fsys.Move("GH", "EF/IJ"); err != nil {
		t.Fatalf("Move(GH, EF/IJ): %v", err)
	}
	AssertAllDirs(t, fsys, []string{"EF", "EF/IJ", "EF/IJ/CD"})
	AssertAllFiles(t, fsys, []string{"EF/IJ/CD/def", "EF/IJ/abc", "EF/ghi"})

	if err := fsys.Move("EF/IJ", "KL"); err != nil {
		t.Fatalf("Move(EF/IJ, KL): %v", err)
	}
	AssertAllDirs(t, fsys, []string{"EF", "KL", "KL/CD"})
	AssertAllFiles(t, fsys, []string{"EF/ghi", "KL/CD/def", "KL/abc"})

	// Destination is a non-empty directory.
	if err := fsys.Move("KL", "EF"); err == nil || !vfs.IsIOError(err) {
		t.Errorf("Move(KL, EF) onto non-empty dir: got %v, want IOError", err)
	}
	AssertAllDirs(t, fsys, []string{"EF", "KL", "KL/CD"})

	// Cannot move a directory inside itself.
	if err := fsys.Move("KL", "KL/ZZ"); err == nil || !vfs.IsIOError(err) {
		t.Errorf("Move(KL, KL/ZZ) into itself: got %v, want IOError", err)
	}

	AssertAllDirs(t, fsys, []string{"EF", "KL", "KL/CD"})
	AssertFileContents(t, fsys, "KL/abc", "abc data")
	AssertFileContents(t, fsys, "KL/CD/def", "def data")
}

// testCopyFile mirrors S4 CopyFile clobber.
func testCopyFile(t *testing.T, fsys vfs.FileSystem) {
	mustCreateDir(t, fsys, "AB/CD", true)
	mustCreateDir(t, fsys, "EF", false)
	CreateFile(t, fsys, "AB/abc", "data")
	allDirs := []string{"AB", "AB/CD", "EF"}

	if err := fsys.CopyFile("AB/abc", "def"); err != nil {
		t.Fatalf("CopyFile(AB/abc, def): %v", err)
	}
	AssertAllDirs(t, fsys, allDirs)
	AssertAllFiles(t, fsys, []string{"AB/abc", "def"})

	if err := fsys.CopyFile("def", "EF/ghi"); err != nil {
		t.Fatalf("CopyFile(def, EF/ghi): %v", err)
	}
	AssertAllDirs(t, fsys, allDirs)
	AssertAllFiles(t, fsys, []string{"AB/abc", "EF/ghi", "def"})

	CreateFile(t, fsys, "def", "other data")
	AssertFileContents(t, fsys, "AB/abc", "data")
	AssertFileContents(t, fsys, "def", "other data")
	AssertFileContents(t, fsys, "EF/ghi", "data")

	if err := fsys.CopyFile("def", "AB/abc"); err != nil {
		t.Fatalf("CopyFile(def, AB/abc) clobber: %v", err)
	}
	AssertAllDirs(t, fsys, allDirs)
	AssertAllFiles(t, fsys, []string{"AB/abc", "EF/ghi", "def"})
	AssertFileContents(t, fsys, "AB/abc", "other data")
	AssertFileContents(t, fsys, "def", "other data")
	AssertFileContents(t, fsys, "EF/ghi", "data")

	// Identical source and destination: allowed to succeed or fail, but
	// must not lose data.
	if err := fsys.CopyFile("def", "def"); err != nil && !vfs.IsIOError(err) {
		t.Errorf("CopyFile(def, def): got %v, want nil or IOError", err)
	}
	AssertAllFiles(t, fsys, []string{"AB/abc", "EF/ghi", "def"})
	AssertFileContents(t, fsys, "def", "other data")

	if err := fsys.CopyFile("abc", "xxx"); err == nil || !vfs.IsIOError(err) {
		t.Errorf("CopyFile(abc, xxx) from absent source: got %v, want IOError", err)
	}
	if !fsys.Capabilities().AllowWriteFileOverDir {
		if err := fsys.CopyFile("def", "AB"); err == nil || !vfs.IsIOError(err) {
			t.Errorf("CopyFile(def, AB) onto non-empty dir: got %v, want IOError", err)
		}
	}
	if !fsys.Capabilities().HaveImplicitDirectories {
		if err := fsys.CopyFile("AB/abc", "XX/mno"); err == nil || !vfs.IsIOError(err) {
			t.Errorf("CopyFile(AB/abc, XX/mno) missing parent: got %v, want IOError", err)
		}
	}
	if err := fsys.CopyFile("AB/abc", "def/mno"); err == nil || !vfs.IsIOError(err) {
		t.Errorf("CopyFile(AB/abc, def/mno) parent is a file: got %v, want IOError", err)
	}
	AssertAllDirs(t, fsys, allDirs)
	AssertAllFiles(t, fsys, []string{"AB/abc", "EF/ghi", "def"})
}

func mustCreateDir(t *testing.T, fsys vfs.FileSystem, path string, recursive bool) {
	t.Helper()
	if err := fsys.CreateDir(path, recursive); err != nil {
		t.Fatalf("CreateDir(%q, recursive=%v): %v", path, recursive, err)
	}
}
