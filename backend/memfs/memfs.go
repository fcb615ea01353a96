// Package memfs is an in-memory vfs.FileSystem, the reference backend
// the conformance suite runs against in this repository's own tests. It
// sits at the most permissive end of the capability matrix: every
// CapabilityFlags field is true.
package memfs

import (
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/NVIDIA/vfscore"
	vfspath "github.com/NVIDIA/vfscore/path"
)

type node struct {
	typ      vfs.FileType
	data     []byte
	mtime    time.Time
	children map[string]*node
}

func newDir() *node {
	return &node{typ: vfs.Directory, children: map[string]*node{}, mtime: time.Now()}
}

// FS is an in-memory vfs.FileSystem. The zero value is not usable; use
// New.
type FS struct {
	mu   sync.RWMutex
	root *node
}

// New returns an empty in-memory backend.
func New() *FS {
	return &FS{root: newDir()}
}

func (fs *FS) Capabilities() vfs.CapabilityFlags {
	return vfs.CapabilityFlags{
		HaveImplicitDirectories: true,
		AllowWriteFileOverDir:   true,
		AllowMoveDir:            true,
		AllowAppendToFile:       true,
		HaveDirectoryMTimes:     true,
	}
}

func segments(path string) []string {
	path = vfspath.Normalize(path)
	if path == vfspath.Root {
		return nil
	}
	return strings.Split(path, "/")
}

// walk resolves path to its node, without creating anything. It returns
// ok == false if any segment is missing, and mismatch == true if an
// interior segment exists but is a File (so cannot be descended into).
func (fs *FS) walk(path string) (n *node, ok bool, mismatch bool) {
	n = fs.root
	segs := segments(path)
	for i, seg := range segs {
		if n.typ != vfs.Directory {
			return nil, false, true
		}
		child, exists := n.children[seg]
		if !exists {
			return nil, false, false
		}
		if i < len(segs)-1 && child.typ != vfs.Directory {
			return nil, false, true
		}
		n = child
	}
	return n, true, false
}

// mkdirAll creates every missing directory segment of path, failing if
// any existing segment along the way is a File.
func (fs *FS) mkdirAll(path string) error {
	n := fs.root
	for _, seg := range segments(path) {
		if n.typ != vfs.Directory {
			return vfs.NewIOError("CreateDir", path, nil)
		}
		child, exists := n.children[seg]
		if !exists {
			child = newDir()
			n.children[seg] = child
			n.mtime = time.Now()
		} else if child.typ != vfs.Directory {
			return vfs.NewIOError("CreateDir", path, nil)
		}
		n = child
	}
	return nil
}

func (fs *FS) CreateDir(path string, recursive bool) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if vfspath.IsRoot(path) {
		return nil
	}
	return fs.mkdirAll(path)
}

func (fs *FS) Stat(path string) (vfs.FileStat, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.statLocked(path), nil
}

func (fs *FS) statLocked(path string) vfs.FileStat {
	path = vfspath.Normalize(path)
	if vfspath.IsRoot(path) {
		return vfs.FileStat{Path: path, Type: vfs.Directory, Size: vfs.NoSize, MTime: fs.root.mtime, BaseName: ""}
	}
	n, ok, _ := fs.walk(path)
	if !ok {
		return vfs.NewNonExistentStat(path)
	}
	st := vfs.FileStat{Path: path, Type: n.typ, BaseName: vfspath.Base(path), MTime: n.mtime}
	if n.typ == vfs.File {
		st.Size = int64(len(n.data))
	} else {
		st.Size = vfs.NoSize
	}
	return st
}

func (fs *FS) StatMany(paths []string) ([]vfs.FileStat, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	out := make([]vfs.FileStat, len(paths))
	for i, p := range paths {
		out[i] = fs.statLocked(p)
	}
	return out, nil
}

func (fs *FS) List(sel vfs.Selector) ([]vfs.FileStat, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	base, ok, mismatch := fs.walk(sel.BaseDir)
	if vfspath.IsRoot(sel.BaseDir) {
		base, ok, mismatch = fs.root, true, false
	}
	if mismatch || (ok && base.typ != vfs.Directory) {
		return nil, vfs.NewIOError("List", sel.BaseDir, nil)
	}
	if !ok {
		if sel.AllowNonExistent {
			return []vfs.FileStat{}, nil
		}
		return nil, vfs.NewIOError("List", sel.BaseDir, nil)
	}

	// depth counts immediate children of BaseDir as 0, grandchildren as 1,
	// and so on, matching Selector.MaxRecursion's doc: 0 == immediate
	// children only, 1 == additionally grandchildren.
	var out []vfs.FileStat
	var walkChildren func(n *node, prefix string, depth int)
	walkChildren = func(n *node, prefix string, depth int) {
		names := make([]string, 0, len(n.children))
		for name := range n.children {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			child := n.children[name]
			childPath := vfspath.Join(prefix, name)
			st := vfs.FileStat{Path: childPath, Type: child.typ, BaseName: name, MTime: child.mtime}
			if child.typ == vfs.File {
				st.Size = int64(len(child.data))
			} else {
				st.Size = vfs.NoSize
			}
			out = append(out, st)
			if child.typ == vfs.Directory && sel.Recursive && (sel.MaxRecursion < 0 || depth < sel.MaxRecursion) {
				walkChildren(child, childPath, depth+1)
			}
		}
	}
	walkChildren(base, sel.BaseDir, 0)
	return out, nil
}

func (fs *FS) DeleteDir(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if vfspath.IsRoot(path) {
		return vfs.NewIOError("DeleteDir", path, nil)
	}
	parent, name, err := fs.parentOf(path)
	if err != nil {
		return err
	}
	child, exists := parent.children[name]
	if !exists || child.typ != vfs.Directory {
		return vfs.NewIOError("DeleteDir", path, nil)
	}
	delete(parent.children, name)
	parent.mtime = time.Now()
	return nil
}

func (fs *FS) DeleteDirContents(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if vfspath.IsRoot(path) {
		fs.root.children = map[string]*node{}
		fs.root.mtime = time.Now()
		return nil
	}
	n, ok, mismatch := fs.walk(path)
	if mismatch || !ok || n.typ != vfs.Directory {
		return vfs.NewIOError("DeleteDirContents", path, nil)
	}
	n.children = map[string]*node{}
	n.mtime = time.Now()
	return nil
}

func (fs *FS) DeleteFile(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	parent, name, err := fs.parentOf(path)
	if err != nil {
		return err
	}
	child, exists := parent.children[name]
	if !exists || child.typ != vfs.File {
		return vfs.NewIOError("DeleteFile", path, nil)
	}
	delete(parent.children, name)
	parent.mtime = time.Now()
	return nil
}

func (fs *FS) DeleteFiles(paths []string) error {
	var firstErr error
	for _, p := range paths {
		if err := fs.DeleteFile(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return vfs.NewIOError("DeleteFiles", "", firstErr)
	}
	return nil
}

// parentOf resolves path's parent directory node and final segment
// name, locked. Callers must hold fs.mu.
func (fs *FS) parentOf(path string) (*node, string, error) {
	dir, name := vfspath.Split(path)
	if name == "" {
		return nil, "", vfs.NewIOError("parentOf", path, nil)
	}
	var parent *node
	if vfspath.IsRoot(dir) {
		parent = fs.root
	} else {
		n, ok, mismatch := fs.walk(dir)
		if mismatch || !ok || n.typ != vfs.Directory {
			return nil, "", vfs.NewIOError("parentOf", path, nil)
		}
		parent = n
	}
	return parent, name, nil
}

func (fs *FS) Move(src, dst string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	src = vfspath.Normalize(src)
	dst = vfspath.Normalize(dst)

	srcParent, srcName, err := fs.parentOf(src)
	if err != nil {
		return vfs.NewIOError("Move", src, nil)
	}
	srcNode, exists := srcParent.children[srcName]
	if !exists {
		return vfs.NewIOError("Move", src, nil)
	}

	if src == dst {
		return nil
	}
	if srcNode.typ == vfs.Directory && vfspath.HasPrefix(dst, src) {
		return vfs.NewIOError("Move", dst, nil)
	}
	if srcNode.typ == vfs.Directory && !fs.Capabilities().AllowMoveDir {
		return vfs.NewInvalidError("Move", src, nil)
	}

	dstParent, dstName, err := fs.parentOf(dst)
	if err != nil {
		if err2 := fs.mkdirAll(vfspath.Dir(dst)); err2 != nil {
			return vfs.NewIOError("Move", dst, nil)
		}
		dstParent, dstName, err = fs.parentOf(dst)
		if err != nil {
			return vfs.NewIOError("Move", dst, nil)
		}
	}
	if existing, ok := dstParent.children[dstName]; ok {
		switch {
		case existing.typ == vfs.Directory && srcNode.typ == vfs.File:
			if !fs.Capabilities().AllowWriteFileOverDir {
				return vfs.NewIOError("Move", dst, nil)
			}
		case existing.typ == vfs.Directory && len(existing.children) > 0:
			return vfs.NewIOError("Move", dst, nil)
		}
	}

	delete(srcParent.children, srcName)
	srcParent.mtime = time.Now()
	dstParent.children[dstName] = srcNode
	dstParent.mtime = time.Now()
	return nil
}

func (fs *FS) CopyFile(src, dst string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	src = vfspath.Normalize(src)
	dst = vfspath.Normalize(dst)

	srcParent, srcName, err := fs.parentOf(src)
	if err != nil {
		return vfs.NewIOError("CopyFile", src, nil)
	}
	srcNode, exists := srcParent.children[srcName]
	if !exists || srcNode.typ != vfs.File {
		return vfs.NewIOError("CopyFile", src, nil)
	}

	if src == dst {
		return nil
	}

	dstParent, dstName, err := fs.parentOf(dst)
	if err != nil {
		if err2 := fs.mkdirAll(vfspath.Dir(dst)); err2 != nil {
			return vfs.NewIOError("CopyFile", dst, nil)
		}
		dstParent, dstName, err = fs.parentOf(dst)
		if err != nil {
			return vfs.NewIOError("CopyFile", dst, nil)
		}
	}
	if existing, ok := dstParent.children[dstName]; ok && existing.typ == vfs.Directory && len(existing.children) > 0 {
		return vfs.NewIOError("CopyFile", dst, nil)
	}

	data := make([]byte, len(srcNode.data))
	copy(data, srcNode.data)
	dstParent.children[dstName] = &node{typ: vfs.File, data: data, mtime: time.Now()}
	dstParent.mtime = time.Now()
	return nil
}

func (fs *FS) OpenInputStream(path string) (vfs.SequentialReader, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	n, ok, mismatch := fs.walk(path)
	if mismatch || !ok || n.typ != vfs.File {
		return nil, vfs.NewIOError("OpenInputStream", path, nil)
	}
	data := make([]byte, len(n.data))
	copy(data, n.data)
	return &sequentialReader{path: path, data: data}, nil
}

func (fs *FS) OpenInputFile(path string) (vfs.RandomReader, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	n, ok, mismatch := fs.walk(path)
	if mismatch || !ok || n.typ != vfs.File {
		return nil, vfs.NewIOError("OpenInputFile", path, nil)
	}
	data := make([]byte, len(n.data))
	copy(data, n.data)
	return &randomReader{path: path, data: data}, nil
}

func (fs *FS) OpenOutputStream(path string) (vfs.Writer, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	path = vfspath.Normalize(path)

	parent, name, err := fs.parentOf(path)
	if err != nil {
		if err2 := fs.mkdirAll(vfspath.Dir(path)); err2 != nil {
			return nil, vfs.NewIOError("OpenOutputStream", path, nil)
		}
		parent, name, err = fs.parentOf(path)
		if err != nil {
			return nil, vfs.NewIOError("OpenOutputStream", path, nil)
		}
	}
	if existing, ok := parent.children[name]; ok && existing.typ == vfs.Directory {
		if len(existing.children) > 0 {
			return nil, vfs.NewIOError("OpenOutputStream", path, nil)
		}
	}
	n := &node{typ: vfs.File, mtime: time.Now()}
	parent.children[name] = n
	parent.mtime = time.Now()
	return &writer{fs: fs, path: path, node: n}, nil
}

func (fs *FS) OpenAppendStream(path string) (vfs.Writer, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	path = vfspath.Normalize(path)

	parent, name, err := fs.parentOf(path)
	if err != nil {
		if err2 := fs.mkdirAll(vfspath.Dir(path)); err2 != nil {
			return nil, vfs.NewIOError("OpenAppendStream", path, nil)
		}
		parent, name, err = fs.parentOf(path)
		if err != nil {
			return nil, vfs.NewIOError("OpenAppendStream", path, nil)
		}
	}
	n, exists := parent.children[name]
	if !exists {
		n = &node{typ: vfs.File, mtime: time.Now()}
		parent.children[name] = n
		parent.mtime = time.Now()
	} else if n.typ != vfs.File {
		return nil, vfs.NewIOError("OpenAppendStream", path, nil)
	}
	return &writer{fs: fs, path: path, node: n, pos: int64(len(n.data))}, nil
}

type sequentialReader struct {
	path   string
	data   []byte
	offset int
	closed bool
}

func (r *sequentialReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, vfs.NewInvalidError("Read", r.path, nil)
	}
	if r.offset >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.offset:])
	r.offset += n
	return n, nil
}

func (r *sequentialReader) Close() error {
	r.closed = true
	return nil
}

type randomReader struct {
	path   string
	data   []byte
	closed bool
}

func (r *randomReader) ReadAt(p []byte, off int64) (int, error) {
	if r.closed {
		return 0, vfs.NewInvalidError("ReadAt", r.path, nil)
	}
	if off < 0 || off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *randomReader) Size() (int64, error) {
	return int64(len(r.data)), nil
}

func (r *randomReader) Close() error {
	r.closed = true
	return nil
}

type writer struct {
	fs     *FS
	path   string
	node   *node
	pos    int64
	closed bool
}

func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, vfs.NewInvalidError("Write", w.path, nil)
	}
	w.fs.mu.Lock()
	w.node.data = append(w.node.data, p...)
	w.node.mtime = time.Now()
	w.fs.mu.Unlock()
	w.pos += int64(len(p))
	return len(p), nil
}

func (w *writer) Tell() (int64, error) {
	if w.closed {
		return 0, vfs.NewInvalidError("Tell", w.path, nil)
	}
	return w.pos, nil
}

func (w *writer) Close() error {
	w.closed = true
	return nil
}
