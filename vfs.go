// Package vfs defines a uniform contract over heterogeneous storage
// backends: local disk, object stores, and anything else that can stat,
// list, move, copy, and stream bytes under a path hierarchy.
//
// A backend implements FileSystem and reports its CapabilityFlags once;
// package fstest runs the same scenario suite against any FileSystem,
// adjusting its assertions to the backend's reported capabilities.
package vfs

// FileSystem is the contract every backend implements. Paths passed to
// any method are relative paths as described in package path; callers are
// expected to have normalized them (package path's Normalize/Join do this).
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FileSystem interface {
	// Capabilities reports the fixed set of semantic differences this
	// backend exhibits relative to a fully POSIX-like filesystem.
	Capabilities() CapabilityFlags

	// Stat returns the FileStat for path. A path with nothing at it
	// returns a FileStat with Type == NonExistent and a nil error, not
	// an error — absence is a normal outcome, not a failure.
	Stat(path string) (FileStat, error)

	// StatMany returns one FileStat per entry in paths, in the same
	// order, best-effort: an absent path yields a NonExistent FileStat
	// rather than aborting the batch. StatMany returns a non-nil error
	// only when a backend failure occurs while resolving the batch (e.g.
	// a connectivity failure); an absent path never causes one.
	StatMany(paths []string) ([]FileStat, error)

	// List returns the FileStat of every path matched by sel: BaseDir's
	// immediate children when !sel.Recursive, and descendants bounded by
	// sel.MaxRecursion when sel.Recursive. Results are unordered; callers
	// that need a deterministic order must sort them. If sel.BaseDir does
	// not exist and sel.AllowNonExistent is false, List returns an
	// IOError. If sel.BaseDir exists but is a file, List returns an
	// IOError unconditionally.
	List(sel Selector) ([]FileStat, error)

	// CreateDir creates path as a directory. If recursive is true,
	// missing parent directories are created as needed, and CreateDir
	// succeeds if path already exists as a directory. If recursive is
	// false, CreateDir's immediate parent must already exist.
	CreateDir(path string, recursive bool) error

	// DeleteDir removes path and everything under it. DeleteDir on a
	// non-existent path is an IOError; DeleteDir on a path that is a
	// File (not a Directory) is also an IOError.
	DeleteDir(path string) error

	// DeleteDirContents removes everything under path but leaves path
	// itself in place as an empty directory.
	DeleteDirContents(path string) error

	// DeleteFile removes the file at path. DeleteFile on a directory or
	// a non-existent path is an IOError.
	DeleteFile(path string) error

	// DeleteFiles removes every file named in paths, best-effort: it
	// does not stop at the first failure, but it returns the first
	// error encountered (if any) once every path has been attempted.
	DeleteFiles(paths []string) error

	// Move renames src to dst, clobbering any existing file at dst.
	// Moving a directory requires CapabilityFlags.AllowMoveDir. Moving a
	// directory into itself or one of its own descendants is always an
	// IOError regardless of capability.
	Move(src, dst string) error

	// CopyFile copies the file at src to dst, clobbering any existing
	// file at dst. CopyFile on a directory src is an IOError.
	CopyFile(src, dst string) error

	// OpenInputStream opens path for sequential forward-only reading.
	OpenInputStream(path string) (SequentialReader, error)

	// OpenInputFile opens path for random access reading. Backends that
	// cannot offer cheap random access return an ErrInvalid error.
	OpenInputFile(path string) (RandomReader, error)

	// OpenOutputStream opens path for writing, creating it if absent and
	// truncating it if present. Writing over an existing directory
	// requires CapabilityFlags.AllowWriteFileOverDir.
	OpenOutputStream(path string) (Writer, error)

	// OpenAppendStream opens path for writing starting at its current
	// end, creating it if absent. Requires CapabilityFlags.AllowAppendToFile.
	OpenAppendStream(path string) (Writer, error)
}
