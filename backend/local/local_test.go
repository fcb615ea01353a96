package local_test

import (
	"testing"

	"github.com/NVIDIA/vfscore"
	"github.com/NVIDIA/vfscore/backend/local"
	"github.com/NVIDIA/vfscore/fstest"
)

func TestConformance(t *testing.T) {
	fstest.Run(t, func(t *testing.T) vfs.FileSystem {
		fsys, err := local.New(t.TempDir())
		if err != nil {
			t.Fatalf("local.New: %v", err)
		}
		return fsys
	})
}

func TestNewRejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	fsys, err := local.New(dir)
	if err != nil {
		t.Fatalf("local.New(%q): %v", dir, err)
	}
	w, err := fsys.OpenOutputStream("file")
	if err != nil {
		t.Fatalf("OpenOutputStream: %v", err)
	}
	w.Close()

	if _, err := local.New(dir + "/file"); err == nil {
		t.Errorf("local.New on a file path: got nil error, want failure")
	}
}
