package vfs

import (
	"time"

	vfspath "github.com/NVIDIA/vfscore/path"
)

// FileType classifies the target of a FileStat. NonExistent is a
// first-class value rather than an error so that Stat and StatMany can
// report absence for arbitrary batches of paths without per-entry errors.
type FileType int

const (
	// Unknown means the backend could not determine the target's type,
	// distinct from NonExistent (which means the backend is certain there
	// is nothing at this path).
	Unknown FileType = iota
	// NonExistent means nothing exists at this path.
	NonExistent
	// File is a regular, readable/writable byte sequence.
	File
	// Directory is a container of further paths.
	Directory
)

func (t FileType) String() string {
	switch t {
	case NonExistent:
		return "NonExistent"
	case File:
		return "File"
	case Directory:
		return "Directory"
	default:
		return "Unknown"
	}
}

// NoSize is the sentinel FileStat.Size for any FileType other than File.
const NoSize int64 = -1

// NoTime is the sentinel FileStat.MTime for a path whose modification time
// is unavailable, or for a NonExistent entry.
var NoTime time.Time

// FileStat is an immutable metadata snapshot for one path at one instant.
// Two FileStat values obtained from the same backend state for the same
// path must compare equal on (Type, Size, MTime).
type FileStat struct {
	Path     string
	Type     FileType
	Size     int64
	MTime    time.Time
	BaseName string
}

// NewNonExistentStat builds the canonical FileStat for an absent path,
// satisfying the invariant that NonExistent implies NoSize and NoTime.
func NewNonExistentStat(path string) FileStat {
	return FileStat{
		Path:     path,
		Type:     NonExistent,
		Size:     NoSize,
		MTime:    NoTime,
		BaseName: vfspath.Base(path),
	}
}
