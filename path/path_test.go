package path_test

import (
	"testing"

	"github.com/NVIDIA/vfscore/path"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"/":               "",
		"AB":              "AB",
		"AB/":             "AB",
		"/AB/CD":          "AB/CD",
		"AB//CD":          "AB/CD",
		"AB/./CD":         "AB/CD",
		"AB/../CD":        "CD",
		"AB/CD/..":        "AB",
		"../AB":           "AB",
	}
	for in, want := range cases {
		if got := path.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := path.Join("AB", "CD", "EF"); got != "AB/CD/EF" {
		t.Errorf("Join(AB, CD, EF) = %q, want AB/CD/EF", got)
	}
	if got := path.Join("", "AB"); got != "AB" {
		t.Errorf("Join(\"\", AB) = %q, want AB", got)
	}
	if got := path.Join(); got != "" {
		t.Errorf("Join() = %q, want \"\"", got)
	}
}

func TestSplitBaseDir(t *testing.T) {
	dir, base := path.Split("AB/CD/EF")
	if dir != "AB/CD" || base != "EF" {
		t.Errorf("Split(AB/CD/EF) = (%q, %q), want (AB/CD, EF)", dir, base)
	}
	dir, base = path.Split("AB")
	if dir != "" || base != "AB" {
		t.Errorf("Split(AB) = (%q, %q), want (\"\", AB)", dir, base)
	}

	if got := path.Base("AB/CD"); got != "CD" {
		t.Errorf("Base(AB/CD) = %q, want CD", got)
	}
	if got := path.Dir("AB/CD"); got != "AB" {
		t.Errorf("Dir(AB/CD) = %q, want AB", got)
	}
}

func TestJoinSplitInverse(t *testing.T) {
	for _, p := range []string{"AB", "AB/CD", "AB/CD/EF"} {
		dir, base := path.Split(p)
		if got := path.Join(dir, base); got != p {
			t.Errorf("Join(Split(%q)) = %q, want %q", p, got, p)
		}
	}
}

func TestIsRoot(t *testing.T) {
	if !path.IsRoot("") || !path.IsRoot("/") || !path.IsRoot(".") {
		t.Errorf("IsRoot should be true for empty, slash, and dot paths")
	}
	if path.IsRoot("AB") {
		t.Errorf("IsRoot(AB) = true, want false")
	}
}

func TestHasPrefixAndDepth(t *testing.T) {
	if !path.HasPrefix("AB/CD/EF", "AB") {
		t.Errorf("HasPrefix(AB/CD/EF, AB) = false, want true")
	}
	if path.HasPrefix("ABC/DE", "AB") {
		t.Errorf("HasPrefix(ABC/DE, AB) = true, want false (segment boundary)")
	}
	if got := path.Depth("AB/CD/EF", "AB"); got != 2 {
		t.Errorf("Depth(AB/CD/EF, AB) = %d, want 2", got)
	}
	if got := path.Depth("AB", "AB"); got != 0 {
		t.Errorf("Depth(AB, AB) = %d, want 0", got)
	}
	if got := path.Depth("XY", "AB"); got != -1 {
		t.Errorf("Depth(XY, AB) = %d, want -1", got)
	}
}
