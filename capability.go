package vfs

// CapabilityFlags records the semantic differences between backends that
// the conformance suite must treat as legitimate variation rather than
// bugs. A backend reports one fixed CapabilityFlags value for its
// lifetime; the suite reads it once per backend under test and adjusts
// which assertions it makes accordingly.
type CapabilityFlags struct {
	// HaveImplicitDirectories is true when the backend has no real
	// directory entries and instead synthesizes Directory stats for any
	// path that is a strict prefix of some existing file's path (e.g.
	// object stores keyed by flat paths with '/' as a separator
	// convention only).
	HaveImplicitDirectories bool

	// AllowWriteFileOverDir is true when OpenOutputStream is permitted to
	// replace an existing directory with a file of the same path.
	AllowWriteFileOverDir bool

	// AllowMoveDir is true when Move supports directories as well as
	// files. Backends without atomic server-side rename of a whole
	// subtree (e.g. most object stores) report false here.
	AllowMoveDir bool

	// AllowAppendToFile is true when OpenAppendStream is supported.
	AllowAppendToFile bool

	// HaveDirectoryMTimes is true when Stat/StatMany report a meaningful
	// MTime for directories. Backends that synthesize directories
	// (HaveImplicitDirectories) typically report false here since there
	// is no underlying object carrying a directory timestamp.
	HaveDirectoryMTimes bool
}
