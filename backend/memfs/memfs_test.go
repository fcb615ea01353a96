package memfs_test

import (
	"testing"

	"github.com/NVIDIA/vfscore"
	"github.com/NVIDIA/vfscore/backend/memfs"
	"github.com/NVIDIA/vfscore/fstest"
)

func TestConformance(t *testing.T) {
	fstest.Run(t, func(t *testing.T) vfs.FileSystem { return memfs.New() })
}

func TestCapabilities(t *testing.T) {
	fsys := memfs.New()
	caps := fsys.Capabilities()
	if !caps.HaveImplicitDirectories || !caps.AllowWriteFileOverDir || !caps.AllowMoveDir ||
		!caps.AllowAppendToFile || !caps.HaveDirectoryMTimes {
		t.Errorf("memfs.Capabilities() = %+v, want every flag true", caps)
	}
}

func TestStatNonExistentHasNoErrorAndSentinelFields(t *testing.T) {
	fsys := memfs.New()
	st, err := fsys.Stat("nope")
	if err != nil {
		t.Fatalf("Stat(nope): %v", err)
	}
	if st.Type != vfs.NonExistent {
		t.Errorf("Type = %v, want NonExistent", st.Type)
	}
	if st.Size != vfs.NoSize {
		t.Errorf("Size = %d, want NoSize", st.Size)
	}
	if st.MTime != vfs.NoTime {
		t.Errorf("MTime = %v, want NoTime", st.MTime)
	}
}
