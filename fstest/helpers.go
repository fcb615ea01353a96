package fstest

import (
	"io"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/NVIDIA/vfscore"
)

// TimeSlack bounds the clock skew tolerated between two mtime
// observations that the suite expects to be ordered but not identical.
// Wall clocks on CI hosts and networked backends are imprecise; 10
// seconds is generous enough to absorb that without masking a real
// ordering violation.
const TimeSlack = 10 * time.Second

// CreateFile writes data to path via OpenOutputStream, failing the test
// on any error. It is the suite's equivalent of touching a fixture file.
func CreateFile(t *testing.T, fsys vfs.FileSystem, path, data string) {
	t.Helper()
	w, err := fsys.OpenOutputStream(path)
	if err != nil {
		t.Fatalf("OpenOutputStream(%q): %v", path, err)
	}
	if data != "" {
		if _, err := io.WriteString(w, data); err != nil {
			t.Fatalf("Write(%q): %v", path, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close(%q): %v", path, err)
	}
}

// listAll lists the entire tree rooted at the backend's root, recursing
// without limit. Scenarios use it after every mutation to make sure the
// mutation didn't leak state elsewhere in the tree.
func listAll(t *testing.T, fsys vfs.FileSystem) []vfs.FileStat {
	t.Helper()
	stats, err := fsys.List(vfs.Selector{BaseDir: "", Recursive: true, MaxRecursion: vfs.Unbounded, AllowNonExistent: true})
	if err != nil {
		t.Fatalf("List(root): %v", err)
	}
	return stats
}

func withType(stats []vfs.FileStat, typ vfs.FileType) []vfs.FileStat {
	out := make([]vfs.FileStat, 0, len(stats))
	for _, s := range stats {
		if s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

// SortStats sorts stats by path, giving scenarios a deterministic order
// to compare against, since List's result order is unspecified.
func SortStats(stats []vfs.FileStat) {
	sort.Slice(stats, func(i, j int) bool { return stats[i].Path < stats[j].Path })
}

// AssertPaths checks that stats contains exactly the paths in expected,
// irrespective of order.
func AssertPaths(t *testing.T, stats []vfs.FileStat, expected []string) {
	t.Helper()
	got := make([]string, len(stats))
	for i, s := range stats {
		got[i] = s.Path
	}
	sort.Strings(got)
	want := append([]string(nil), expected...)
	sort.Strings(want)
	if want == nil {
		want = []string{}
	}
	if got == nil {
		got = []string{}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

// AssertAllDirs re-lists the whole tree and checks its Directory entries
// equal expected.
func AssertAllDirs(t *testing.T, fsys vfs.FileSystem, expected []string) {
	t.Helper()
	AssertPaths(t, withType(listAll(t, fsys), vfs.Directory), expected)
}

// AssertAllFiles re-lists the whole tree and checks its File entries
// equal expected.
func AssertAllFiles(t *testing.T, fsys vfs.FileSystem, expected []string) {
	t.Helper()
	AssertPaths(t, withType(listAll(t, fsys), vfs.File), expected)
}

// AssertFileContents reads path in full and compares it to want.
func AssertFileContents(t *testing.T, fsys vfs.FileSystem, path, want string) {
	t.Helper()
	r, err := fsys.OpenInputStream(path)
	if err != nil {
		t.Fatalf("OpenInputStream(%q): %v", path, err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll(%q): %v", path, err)
	}
	if string(got) != want {
		t.Errorf("contents of %q = %q, want %q", path, got, want)
	}
}

// AssertFileStat checks st describes path as type typ. For typ ==
// vfs.File it additionally checks st.Size == wantSize; for every other
// type it checks st.Size == vfs.NoSize and wantSize is ignored.
func AssertFileStat(t *testing.T, st vfs.FileStat, path string, typ vfs.FileType, wantSize int64) {
	t.Helper()
	if st.Path != path {
		t.Errorf("stat path = %q, want %q", st.Path, path)
	}
	if st.Type != typ {
		t.Errorf("stat(%q).Type = %v, want %v", path, st.Type, typ)
	}
	if typ == vfs.File {
		if st.Size != wantSize {
			t.Errorf("stat(%q).Size = %d, want %d", path, st.Size, wantSize)
		}
	} else if st.Size != vfs.NoSize {
		t.Errorf("stat(%q).Size = %d, want vfs.NoSize", path, st.Size)
	}
	if typ == vfs.NonExistent && st.MTime != vfs.NoTime {
		t.Errorf("stat(%q).MTime = %v, want vfs.NoTime", path, st.MTime)
	}
}

// ValidateTimePoint fails the test if tp looks uninitialized, i.e. the
// backend reported the zero time for a mtime it claims to support.
func ValidateTimePoint(t *testing.T, tp time.Time) {
	t.Helper()
	if tp.IsZero() {
		t.Errorf("mtime is zero, want a valid time point")
	}
}

// AssertMTimeOrdered checks that later is not before earlier by more than
// TimeSlack, the allowance for clock skew. It places no upper bound on how
// far later may follow earlier.
func AssertMTimeOrdered(t *testing.T, earlier, later time.Time) {
	t.Helper()
	delta := later.Sub(earlier)
	if delta < -TimeSlack {
		t.Errorf("mtime ordering violated: later %v is before earlier %v by more than %v", later, earlier, TimeSlack)
	}
}
