// Package local is a vfs.FileSystem backed by a real POSIX directory
// tree: every operation is a thin translation from vfs paths to os/io
// calls rooted at the directory given to New.
package local

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/NVIDIA/vfscore"
	vfspath "github.com/NVIDIA/vfscore/path"
)

// FS is a vfs.FileSystem backed by a directory on local disk.
type FS struct {
	root string
}

// New opens root, which must already exist as a directory, as the root
// of a vfs.FileSystem.
func New(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, vfs.NewIOError("New", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, vfs.NewIOError("New", root, err)
	}
	if !info.IsDir() {
		return nil, vfs.NewInvalidError("New", root, nil)
	}
	return &FS{root: abs}, nil
}

func (f *FS) Capabilities() vfs.CapabilityFlags {
	return vfs.CapabilityFlags{
		HaveImplicitDirectories: false,
		AllowWriteFileOverDir:   false,
		AllowMoveDir:            true,
		AllowAppendToFile:       true,
		HaveDirectoryMTimes:     true,
	}
}

func (f *FS) hostPath(p string) string {
	p = vfspath.Normalize(p)
	if vfspath.IsRoot(p) {
		return f.root
	}
	return filepath.Join(f.root, filepath.FromSlash(p))
}

func toFileType(info os.FileInfo) vfs.FileType {
	if info.IsDir() {
		return vfs.Directory
	}
	return vfs.File
}

func (f *FS) statOne(path string) vfs.FileStat {
	path = vfspath.Normalize(path)
	info, err := os.Stat(f.hostPath(path))
	if err != nil {
		return vfs.NewNonExistentStat(path)
	}
	typ := toFileType(info)
	st := vfs.FileStat{Path: path, Type: typ, BaseName: vfspath.Base(path), MTime: info.ModTime()}
	if typ == vfs.File {
		st.Size = info.Size()
	} else {
		st.Size = vfs.NoSize
	}
	return st
}

func (f *FS) Stat(path string) (vfs.FileStat, error) {
	return f.statOne(path), nil
}

func (f *FS) StatMany(paths []string) ([]vfs.FileStat, error) {
	out := make([]vfs.FileStat, len(paths))
	for i, p := range paths {
		out[i] = f.statOne(p)
	}
	return out, nil
}

func (f *FS) CreateDir(path string, recursive bool) error {
	host := f.hostPath(path)
	var err error
	if recursive {
		err = os.MkdirAll(host, 0o755)
	} else {
		err = os.Mkdir(host, 0o755)
		if os.IsExist(err) {
			if info, statErr := os.Stat(host); statErr == nil && info.IsDir() {
				err = nil
			}
		}
	}
	if err != nil {
		return vfs.NewIOError("CreateDir", path, err)
	}
	return nil
}

func (f *FS) List(sel vfs.Selector) ([]vfs.FileStat, error) {
	host := f.hostPath(sel.BaseDir)
	info, err := os.Stat(host)
	if err != nil {
		if sel.AllowNonExistent {
			return []vfs.FileStat{}, nil
		}
		return nil, vfs.NewIOError("List", sel.BaseDir, err)
	}
	if !info.IsDir() {
		return nil, vfs.NewIOError("List", sel.BaseDir, nil)
	}

	base := vfspath.Normalize(sel.BaseDir)
	var out []vfs.FileStat
	var walk func(hostDir, vfsDir string, depth int)
	walk = func(hostDir, vfsDir string, depth int) {
		entries, err := os.ReadDir(hostDir)
		if err != nil {
			return
		}
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		sort.Strings(names)
		for _, name := range names {
			childVFS := vfspath.Join(vfsDir, name)
			childHost := filepath.Join(hostDir, name)
			fi, err := os.Stat(childHost)
			if err != nil {
				continue
			}
			typ := toFileType(fi)
			st := vfs.FileStat{Path: childVFS, Type: typ, BaseName: name, MTime: fi.ModTime()}
			if typ == vfs.File {
				st.Size = fi.Size()
			} else {
				st.Size = vfs.NoSize
			}
			out = append(out, st)
			if typ == vfs.Directory && sel.Recursive && (sel.MaxRecursion < 0 || depth < sel.MaxRecursion) {
				walk(childHost, childVFS, depth+1)
			}
		}
	}
	walk(host, base, 0)
	return out, nil
}

func (f *FS) DeleteDir(path string) error {
	if vfspath.IsRoot(path) {
		return vfs.NewIOError("DeleteDir", path, nil)
	}
	host := f.hostPath(path)
	info, err := os.Stat(host)
	if err != nil || !info.IsDir() {
		return vfs.NewIOError("DeleteDir", path, err)
	}
	if err := os.RemoveAll(host); err != nil {
		return vfs.NewIOError("DeleteDir", path, err)
	}
	return nil
}

func (f *FS) DeleteDirContents(path string) error {
	host := f.hostPath(path)
	info, err := os.Stat(host)
	if err != nil || !info.IsDir() {
		return vfs.NewIOError("DeleteDirContents", path, err)
	}
	entries, err := os.ReadDir(host)
	if err != nil {
		return vfs.NewIOError("DeleteDirContents", path, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(host, e.Name())); err != nil {
			return vfs.NewIOError("DeleteDirContents", path, err)
		}
	}
	return nil
}

func (f *FS) DeleteFile(path string) error {
	host := f.hostPath(path)
	info, err := os.Stat(host)
	if err != nil || info.IsDir() {
		return vfs.NewIOError("DeleteFile", path, err)
	}
	if err := os.Remove(host); err != nil {
		return vfs.NewIOError("DeleteFile", path, err)
	}
	return nil
}

func (f *FS) DeleteFiles(paths []string) error {
	var firstErr error
	for _, p := range paths {
		if err := f.DeleteFile(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return vfs.NewIOError("DeleteFiles", "", firstErr)
	}
	return nil
}

func (f *FS) Move(src, dst string) error {
	srcHost, dstHost := f.hostPath(src), f.hostPath(dst)
	srcInfo, err := os.Stat(srcHost)
	if err != nil {
		return vfs.NewIOError("Move", src, err)
	}
	if vfspath.Normalize(src) == vfspath.Normalize(dst) {
		return nil
	}
	if srcInfo.IsDir() && vfspath.HasPrefix(vfspath.Normalize(dst), vfspath.Normalize(src)) {
		return vfs.NewIOError("Move", dst, nil)
	}
	if dstInfo, err := os.Stat(dstHost); err == nil {
		if dstInfo.IsDir() {
			if srcInfo.IsDir() {
				entries, _ := os.ReadDir(dstHost)
				if len(entries) > 0 {
					return vfs.NewIOError("Move", dst, nil)
				}
				if err := os.Remove(dstHost); err != nil {
					return vfs.NewIOError("Move", dst, err)
				}
			} else if !f.Capabilities().AllowWriteFileOverDir {
				return vfs.NewIOError("Move", dst, nil)
			}
		}
	}
	if parent, err := os.Stat(filepath.Dir(dstHost)); err == nil && !parent.IsDir() {
		return vfs.NewIOError("Move", dst, nil)
	}
	if err := os.Rename(srcHost, dstHost); err != nil {
		return vfs.NewIOError("Move", dst, err)
	}
	return nil
}

func (f *FS) CopyFile(src, dst string) error {
	srcHost, dstHost := f.hostPath(src), f.hostPath(dst)
	srcInfo, err := os.Stat(srcHost)
	if err != nil || srcInfo.IsDir() {
		return vfs.NewIOError("CopyFile", src, err)
	}
	if vfspath.Normalize(src) == vfspath.Normalize(dst) {
		return nil
	}
	if dstInfo, err := os.Stat(dstHost); err == nil && dstInfo.IsDir() {
		entries, _ := os.ReadDir(dstHost)
		if len(entries) > 0 && !f.Capabilities().AllowWriteFileOverDir {
			return vfs.NewIOError("CopyFile", dst, nil)
		}
	}
	if parent, err := os.Stat(filepath.Dir(dstHost)); err == nil && !parent.IsDir() {
		return vfs.NewIOError("CopyFile", dst, nil)
	}
	in, err := os.Open(srcHost)
	if err != nil {
		return vfs.NewIOError("CopyFile", src, err)
	}
	defer in.Close()
	out, err := os.Create(dstHost)
	if err != nil {
		return vfs.NewIOError("CopyFile", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return vfs.NewIOError("CopyFile", dst, err)
	}
	if err := out.Close(); err != nil {
		return vfs.NewIOError("CopyFile", dst, err)
	}
	return nil
}

func (f *FS) OpenInputStream(path string) (vfs.SequentialReader, error) {
	host := f.hostPath(path)
	info, err := os.Stat(host)
	if err != nil || info.IsDir() {
		return nil, vfs.NewIOError("OpenInputStream", path, err)
	}
	file, err := os.Open(host)
	if err != nil {
		return nil, vfs.NewIOError("OpenInputStream", path, err)
	}
	return &fileStream{path: path, f: file}, nil
}

func (f *FS) OpenInputFile(path string) (vfs.RandomReader, error) {
	host := f.hostPath(path)
	info, err := os.Stat(host)
	if err != nil || info.IsDir() {
		return nil, vfs.NewIOError("OpenInputFile", path, err)
	}
	file, err := os.Open(host)
	if err != nil {
		return nil, vfs.NewIOError("OpenInputFile", path, err)
	}
	return &fileStream{path: path, f: file, size: info.Size()}, nil
}

func (f *FS) OpenOutputStream(path string) (vfs.Writer, error) {
	host := f.hostPath(path)
	if info, err := os.Stat(host); err == nil && info.IsDir() {
		return nil, vfs.NewIOError("OpenOutputStream", path, nil)
	}
	file, err := os.OpenFile(host, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, vfs.NewIOError("OpenOutputStream", path, err)
	}
	return &fileStream{path: path, f: file}, nil
}

func (f *FS) OpenAppendStream(path string) (vfs.Writer, error) {
	host := f.hostPath(path)
	if info, err := os.Stat(host); err == nil && info.IsDir() {
		return nil, vfs.NewIOError("OpenAppendStream", path, nil)
	}
	file, err := os.OpenFile(host, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, vfs.NewIOError("OpenAppendStream", path, err)
	}
	pos, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		file.Close()
		return nil, vfs.NewIOError("OpenAppendStream", path, err)
	}
	return &fileStream{path: path, f: file, pos: pos}, nil
}

// fileStream implements vfs.SequentialReader, vfs.RandomReader, and
// vfs.Writer by delegating straight to *os.File; the state machine in
// §4.7 is enforced by the closed flag alone, since os.File already
// returns an error on use after Close.
type fileStream struct {
	path   string
	f      *os.File
	pos    int64
	size   int64
	closed bool
}

func (s *fileStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, vfs.NewInvalidError("Read", s.path, nil)
	}
	return s.f.Read(p)
}

func (s *fileStream) ReadAt(p []byte, off int64) (int, error) {
	if s.closed {
		return 0, vfs.NewInvalidError("ReadAt", s.path, nil)
	}
	return s.f.ReadAt(p, off)
}

func (s *fileStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, vfs.NewInvalidError("Write", s.path, nil)
	}
	n, err := s.f.Write(p)
	s.pos += int64(n)
	return n, err
}

func (s *fileStream) Size() (int64, error) {
	if s.closed {
		return 0, vfs.NewInvalidError("Size", s.path, nil)
	}
	return s.size, nil
}

func (s *fileStream) Tell() (int64, error) {
	if s.closed {
		return 0, vfs.NewInvalidError("Tell", s.path, nil)
	}
	return s.pos, nil
}

func (s *fileStream) Close() error {
	s.closed = true
	return s.f.Close()
}
