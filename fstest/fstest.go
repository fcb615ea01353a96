// Package fstest is the executable specification of package vfs: a
// generic scenario suite parameterized by a backend factory, grounded
// directly on Apache Arrow's GenericFileSystemTest
// (cpp/src/arrow/filesystem/test_util.cc). Any backend that passes
// Run satisfies the vfs.FileSystem contract.
package fstest

import (
	"testing"

	"github.com/NVIDIA/vfscore"
)

// NewFileSystem returns a fresh, empty backend instance. Run calls it
// once per scenario so scenarios never observe another scenario's state.
type NewFileSystem func(t *testing.T) vfs.FileSystem

// Run exercises every scenario in this package against instances
// produced by newFS, as subtests of t. It is the single entry point
// backend packages call from their own TestXxx functions, e.g.:
//
//	func TestConformance(t *testing.T) {
//		fstest.Run(t, func(t *testing.T) vfs.FileSystem { return memfs.New() })
//	}
func Run(t *testing.T, newFS NewFileSystem) {
	t.Run("Empty", func(t *testing.T) { testEmpty(t, newFS(t)) })
	t.Run("CreateDir", func(t *testing.T) { testCreateDir(t, newFS(t)) })
	t.Run("DeleteDir", func(t *testing.T) { testDeleteDir(t, newFS(t)) })
	t.Run("DeleteDirContents", func(t *testing.T) { testDeleteDirContents(t, newFS(t)) })
	t.Run("DeleteFile", func(t *testing.T) { testDeleteFile(t, newFS(t)) })
	t.Run("DeleteFiles", func(t *testing.T) { testDeleteFiles(t, newFS(t)) })
	t.Run("MoveFile", func(t *testing.T) { testMoveFile(t, newFS(t)) })
	t.Run("MoveDir", func(t *testing.T) { testMoveDir(t, newFS(t)) })
	t.Run("CopyFile", func(t *testing.T) { testCopyFile(t, newFS(t)) })
	t.Run("StatSingle", func(t *testing.T) { testStatSingle(t, newFS(t)) })
	t.Run("StatMany", func(t *testing.T) { testStatMany(t, newFS(t)) })
	t.Run("StatSelector", func(t *testing.T) { testStatSelector(t, newFS(t)) })
	t.Run("StatSelectorWithRecursion", func(t *testing.T) { testStatSelectorWithRecursion(t, newFS(t)) })
	t.Run("OpenOutputStream", func(t *testing.T) { testOpenOutputStream(t, newFS(t)) })
	t.Run("OpenAppendStream", func(t *testing.T) { testOpenAppendStream(t, newFS(t)) })
	t.Run("OpenInputStream", func(t *testing.T) { testOpenInputStream(t, newFS(t)) })
	t.Run("OpenInputFile", func(t *testing.T) { testOpenInputFile(t, newFS(t)) })
}
