package vfs

// Selector describes a listing query rooted at BaseDir.
//
// List enumerates BaseDir's immediate children when Recursive is false;
// MaxRecursion is ignored in that case. When Recursive is true,
// MaxRecursion bounds how many levels below the immediate children the
// listing descends: 0 means immediate children only (same result as
// Recursive == false), 1 additionally includes grandchildren, and so on.
// A negative MaxRecursion means unbounded recursion. The zero value of
// Selector lists only BaseDir's immediate children.
type Selector struct {
	// BaseDir is the directory to list. It must name an existing
	// directory unless AllowNonExistent is set.
	BaseDir string

	// Recursive enables descending into subdirectories. See MaxRecursion.
	Recursive bool

	// MaxRecursion bounds recursion depth below BaseDir's immediate
	// children when Recursive is true. Negative means unbounded. Ignored
	// when Recursive is false.
	MaxRecursion int

	// AllowNonExistent, when true, makes List return an empty result
	// instead of an error if BaseDir does not exist.
	AllowNonExistent bool
}

// Unbounded is the MaxRecursion value meaning "no recursion limit".
const Unbounded = -1
