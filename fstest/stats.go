package fstest

import (
	"testing"

	"github.com/NVIDIA/vfscore"
)

func testStatSingle(t *testing.T, fsys vfs.FileSystem) {
	mustCreateDir(t, fsys, "AB/CD/EF", true)
	CreateFile(t, fsys, "AB/CD/ghi", "some data")
	CreateFile(t, fsys, "AB/CD/jkl", "some other data")

	caps := fsys.Capabilities()

	st, err := fsys.Stat("AB")
	if err != nil {
		t.Fatalf("Stat(AB): %v", err)
	}
	AssertFileStat(t, st, "AB", vfs.Directory, vfs.NoSize)
	if st.BaseName != "AB" {
		t.Errorf("Stat(AB).BaseName = %q, want %q", st.BaseName, "AB")
	}
	firstDirTime := st.MTime
	if caps.HaveDirectoryMTimes {
		ValidateTimePoint(t, firstDirTime)
	}

	st, err = fsys.Stat("AB/CD/EF")
	if err != nil {
		t.Fatalf("Stat(AB/CD/EF): %v", err)
	}
	AssertFileStat(t, st, "AB/CD/EF", vfs.Directory, vfs.NoSize)
	if st.BaseName != "EF" {
		t.Errorf("Stat(AB/CD/EF).BaseName = %q, want %q", st.BaseName, "EF")
	}
	if caps.HaveDirectoryMTimes {
		AssertMTimeOrdered(t, firstDirTime, st.MTime)
	}

	st, err = fsys.Stat("AB/CD/ghi")
	if err != nil {
		t.Fatalf("Stat(AB/CD/ghi): %v", err)
	}
	AssertFileStat(t, st, "AB/CD/ghi", vfs.File, 9)
	if st.BaseName != "ghi" {
		t.Errorf("Stat(AB/CD/ghi).BaseName = %q, want %q", st.BaseName, "ghi")
	}
	firstFileTime := st.MTime
	if caps.HaveDirectoryMTimes {
		AssertMTimeOrdered(t, firstDirTime, firstFileTime)
	}

	st, err = fsys.Stat("AB/CD/jkl")
	if err != nil {
		t.Fatalf("Stat(AB/CD/jkl): %v", err)
	}
	AssertFileStat(t, st, "AB/CD/jkl", vfs.File, 15)
	AssertMTimeOrdered(t, firstFileTime, st.MTime)

	st, err = fsys.Stat("zz")
	if err != nil {
		t.Fatalf("Stat(zz): %v", err)
	}
	AssertFileStat(t, st, "zz", vfs.NonExistent, vfs.NoSize)
	if st.BaseName != "zz" {
		t.Errorf("Stat(zz).BaseName = %q, want %q", st.BaseName, "zz")
	}
}

func testStatMany(t *testing.T, fsys vfs.FileSystem) {
	mustCreateDir(t, fsys, "AB/CD", true)
	CreateFile(t, fsys, "AB/CD/ghi", "some data")

	caps := fsys.Capabilities()

	stats, err := fsys.StatMany([]string{"AB", "AB/CD", "AB/zz", "zz", "XX/zz", "AB/CD/ghi"})
	if err != nil {
		t.Fatalf("StatMany: %v", err)
	}
	if len(stats) != 6 {
		t.Fatalf("StatMany returned %d stats, want 6", len(stats))
	}
	AssertFileStat(t, stats[0], "AB", vfs.Directory, vfs.NoSize)
	dirTime := stats[0].MTime
	if caps.HaveDirectoryMTimes {
		ValidateTimePoint(t, dirTime)
	}
	AssertFileStat(t, stats[1], "AB/CD", vfs.Directory, vfs.NoSize)
	AssertFileStat(t, stats[2], "AB/zz", vfs.NonExistent, vfs.NoSize)
	AssertFileStat(t, stats[3], "zz", vfs.NonExistent, vfs.NoSize)
	AssertFileStat(t, stats[4], "XX/zz", vfs.NonExistent, vfs.NoSize)
	AssertFileStat(t, stats[5], "AB/CD/ghi", vfs.File, 9)
	fileTime := stats[5].MTime
	if caps.HaveDirectoryMTimes {
		AssertMTimeOrdered(t, dirTime, fileTime)
	} else {
		ValidateTimePoint(t, fileTime)
	}

	// mtime is stable across repeated stats of the same state.
	if caps.HaveDirectoryMTimes {
		st, err := fsys.Stat("AB")
		if err != nil {
			t.Fatalf("Stat(AB): %v", err)
		}
		if st.MTime != dirTime {
			t.Errorf("Stat(AB).MTime = %v, want %v (stable across calls)", st.MTime, dirTime)
		}
	}
	st, err := fsys.Stat("AB/CD/ghi")
	if err != nil {
		t.Fatalf("Stat(AB/CD/ghi): %v", err)
	}
	if st.MTime != fileTime {
		t.Errorf("Stat(AB/CD/ghi).MTime = %v, want %v (stable across calls)", st.MTime, fileTime)
	}
}

func testStatSelector(t *testing.T, fsys vfs.FileSystem) {
	mustCreateDir(t, fsys, "AB/CD", true)
	CreateFile(t, fsys, "abc", "data")
	CreateFile(t, fsys, "AB/def", "some data")
	CreateFile(t, fsys, "AB/CD/ghi", "some other data")
	CreateFile(t, fsys, "AB/CD/jkl", "yet other data")

	caps := fsys.Capabilities()

	stats, err := fsys.List(vfs.Selector{BaseDir: ""})
	if err != nil {
		t.Fatalf("List(base=\"\"): %v", err)
	}
	SortStats(stats)
	if len(stats) != 2 {
		t.Fatalf("List(base=\"\") returned %d entries, want 2", len(stats))
	}
	AssertFileStat(t, stats[0], "AB", vfs.Directory, vfs.NoSize)
	firstDirTime := stats[0].MTime
	if caps.HaveDirectoryMTimes {
		ValidateTimePoint(t, firstDirTime)
	}
	AssertFileStat(t, stats[1], "abc", vfs.File, 4)

	stats, err = fsys.List(vfs.Selector{BaseDir: "AB"})
	if err != nil {
		t.Fatalf("List(base=AB): %v", err)
	}
	SortStats(stats)
	if len(stats) != 2 {
		t.Fatalf("List(base=AB) returned %d entries, want 2", len(stats))
	}
	AssertFileStat(t, stats[0], "AB/CD", vfs.Directory, vfs.NoSize)
	AssertFileStat(t, stats[1], "AB/def", vfs.File, 9)

	stats, err = fsys.List(vfs.Selector{BaseDir: "AB/CD"})
	if err != nil {
		t.Fatalf("List(base=AB/CD): %v", err)
	}
	SortStats(stats)
	if len(stats) != 2 {
		t.Fatalf("List(base=AB/CD) returned %d entries, want 2", len(stats))
	}
	AssertFileStat(t, stats[0], "AB/CD/ghi", vfs.File, 15)
	AssertFileStat(t, stats[1], "AB/CD/jkl", vfs.File, 14)
	firstFileTime := stats[0].MTime
	if caps.HaveDirectoryMTimes {
		AssertMTimeOrdered(t, firstDirTime, firstFileTime)
	}
	AssertMTimeOrdered(t, firstFileTime, stats[1].MTime)

	// Recursive.
	stats, err = fsys.List(vfs.Selector{BaseDir: "AB", Recursive: true, MaxRecursion: vfs.Unbounded})
	if err != nil {
		t.Fatalf("List(base=AB, recursive): %v", err)
	}
	SortStats(stats)
	if len(stats) != 4 {
		t.Fatalf("List(base=AB, recursive) returned %d entries, want 4", len(stats))
	}
	AssertFileStat(t, stats[0], "AB/CD", vfs.Directory, vfs.NoSize)
	AssertFileStat(t, stats[1], "AB/CD/ghi", vfs.File, 15)
	AssertFileStat(t, stats[2], "AB/CD/jkl", vfs.File, 14)
	AssertFileStat(t, stats[3], "AB/def", vfs.File, 9)

	// Doesn't exist.
	if _, err := fsys.List(vfs.Selector{BaseDir: "XX"}); err == nil || !vfs.IsIOError(err) {
		t.Errorf("List(base=XX): got %v, want IOError", err)
	}
	stats, err = fsys.List(vfs.Selector{BaseDir: "XX", AllowNonExistent: true})
	if err != nil {
		t.Fatalf("List(base=XX, allow_non_existent): %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("List(base=XX, allow_non_existent) returned %d entries, want 0", len(stats))
	}

	// Base is not a directory.
	if _, err := fsys.List(vfs.Selector{BaseDir: "abc"}); err == nil || !vfs.IsIOError(err) {
		t.Errorf("List(base=abc) on a file: got %v, want IOError", err)
	}
}

// testStatSelectorWithRecursion mirrors S5 Selector with max_recursion,
// the exact tree fixture from test_util.cc's
// TestGetTargetStatsSelectorWithRecursion.
func testStatSelectorWithRecursion(t *testing.T, fsys vfs.FileSystem) {
	mustCreateDir(t, fsys, "01/02/03/04", true)
	mustCreateDir(t, fsys, "AA", false)
	CreateFile(t, fsys, "00.file", "00")
	CreateFile(t, fsys, "01/01.file", "01")
	CreateFile(t, fsys, "AA/AA.file", "aa")
	CreateFile(t, fsys, "01/02/02.file", "02")
	CreateFile(t, fsys, "01/02/03/03.file", "03")
	CreateFile(t, fsys, "01/02/03/04/04.file", "04")

	assertPaths := func(sel vfs.Selector, want []string) {
		t.Helper()
		stats, err := fsys.List(sel)
		if err != nil {
			t.Fatalf("List(%+v): %v", sel, err)
		}
		SortStats(stats)
		got := make([]string, len(stats))
		for i, s := range stats {
			got[i] = s.Path
		}
		if len(got) != len(want) {
			t.Fatalf("List(%+v) = %v, want %v", sel, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("List(%+v)[%d] = %q, want %q", sel, i, got[i], want[i])
			}
		}
	}

	assertPaths(vfs.Selector{BaseDir: "", Recursive: false}, []string{"00.file", "01", "AA"})

	// Recursive=false means MaxRecursion is ignored, even set absurdly high.
	assertPaths(vfs.Selector{BaseDir: "", Recursive: false, MaxRecursion: 9000}, []string{"00.file", "01", "AA"})

	// Recursive but no traversal below immediate children.
	assertPaths(vfs.Selector{BaseDir: "", Recursive: true, MaxRecursion: 0}, []string{"00.file", "01", "AA"})

	assertPaths(vfs.Selector{BaseDir: "", Recursive: true, MaxRecursion: 1},
		[]string{"00.file", "01", "01/01.file", "01/02", "AA", "AA/AA.file"})

	assertPaths(vfs.Selector{BaseDir: "", Recursive: true, MaxRecursion: 2},
		[]string{"00.file", "01", "01/01.file", "01/02", "01/02/02.file", "01/02/03", "AA", "AA/AA.file"})

	assertPaths(vfs.Selector{BaseDir: "01", Recursive: false}, []string{"01/01.file", "01/02"})

	assertPaths(vfs.Selector{BaseDir: "01", Recursive: true, MaxRecursion: 1},
		[]string{"01/01.file", "01/02", "01/02/02.file", "01/02/03"})

	assertPaths(vfs.Selector{BaseDir: "", Recursive: true, MaxRecursion: vfs.Unbounded},
		[]string{
			"00.file", "01", "01/01.file", "01/02", "01/02/02.file", "01/02/03",
			"01/02/03/03.file", "01/02/03/04", "01/02/03/04/04.file", "AA", "AA/AA.file",
		})
}
