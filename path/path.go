// Package path implements the lexical path rules vfscore's FileSystem
// operations rely on: a normalized, slash-delimited, relative path with no
// drive letters, where the empty string denotes the root.
//
// All operations are purely lexical. They never touch a filesystem and
// never allocate more than the input requires.
package path

import "strings"

// Root is the canonical path denoting a backend's root directory.
const Root = ""

// Normalize rewrites p into the canonical form FileSystem operations
// require: '/'-separated segments with no empty interior segment, no "."
// or ".." segment, and no trailing slash except for the root, which
// normalizes to the empty string.
//
// Normalize does not resolve ".." against a parent on disk; it works
// lexically, dropping "." segments and letting each ".." remove the segment
// before it (a ".." with nothing before it is dropped). Callers that need
// ".." resolved against real ancestors must do so before calling into
// vfscore.
func Normalize(p string) string {
	if p == "" || p == "/" {
		return Root
	}
	segments := strings.Split(p, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	return strings.Join(out, "/")
}

// IsRoot reports whether p denotes the root, i.e. Normalize(p) == Root.
func IsRoot(p string) bool { return Normalize(p) == Root }

// Join joins elem, normalizing the result. Empty elements are skipped.
//
//	Join("AB", "CD", "EF") == "AB/CD/EF"
//	Join("", "AB")         == "AB"
func Join(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		if e == "" {
			continue
		}
		parts = append(parts, e)
	}
	return Normalize(strings.Join(parts, "/"))
}

// Split splits p into its parent directory and final segment. Split is the
// inverse of Join in the sense that Join(Split(p)) == Normalize(p) for any
// non-root p.
//
//	Split("AB/CD/EF") == ("AB/CD", "EF")
//	Split("AB")       == ("", "AB")
func Split(p string) (dir, base string) {
	p = Normalize(p)
	if p == Root {
		return Root, ""
	}
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return Root, p
	}
	return p[:i], p[i+1:]
}

// Dir returns the parent directory of p. Dir("") is undefined for the
// root and returns "" by convention; callers must check IsRoot first, per
// the data model's invariant that Parent is defined for every non-root
// path.
func Dir(p string) string {
	dir, _ := Split(p)
	return dir
}

// Base returns the final segment of p, i.e. its FileStat.BaseName.
// Base("") == "".
func Base(p string) string {
	_, base := Split(p)
	return base
}

// HasPrefix reports whether dir is p itself or an ancestor directory of p,
// i.e. whether p lies at or under dir in the tree. Both arguments are
// normalized first.
func HasPrefix(p, dir string) bool {
	p, dir = Normalize(p), Normalize(dir)
	if dir == Root {
		return true
	}
	if p == dir {
		return true
	}
	return strings.HasPrefix(p, dir+"/")
}

// Depth returns the number of segments below dir that p is nested at,
// or -1 if p does not lie under dir. Depth(dir, dir) == 0.
func Depth(p, dir string) int {
	if !HasPrefix(p, dir) {
		return -1
	}
	p, dir = Normalize(p), Normalize(dir)
	if p == dir {
		return 0
	}
	rel := p
	if dir != Root {
		rel = strings.TrimPrefix(p, dir+"/")
	}
	return strings.Count(rel, "/") + 1
}
