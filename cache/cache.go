// Package cache decorates a vfs.FileSystem with a read-through Stat cache
// backed by an embedded pebble store, generalizing the teacher's in-memory
// cache-line LRU from caching file content ranges to caching stat metadata.
package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble/v2"

	"github.com/NVIDIA/vfscore"
	vfspath "github.com/NVIDIA/vfscore/path"
)

const statKeyPrefix = "stat:"

// FS wraps a vfs.FileSystem, caching Stat/StatMany results in an embedded
// pebble database keyed by path. Any call that mutates a path invalidates
// that path's cached entry and every cached entry below it.
type FS struct {
	inner vfs.FileSystem
	db    *pebble.DB
	ttl   time.Duration
}

// New opens (or creates) a pebble database at dir and wraps inner with a
// Stat cache whose entries expire after ttl.
func New(inner vfs.FileSystem, dir string, ttl time.Duration) (*FS, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("cache: open %q: %w", dir, err)
	}
	return &FS{inner: inner, db: db, ttl: ttl}, nil
}

// Close closes the underlying pebble database. It does not close inner.
func (c *FS) Close() error {
	return c.db.Close()
}

func (c *FS) Capabilities() vfs.CapabilityFlags {
	return c.inner.Capabilities()
}

type cacheEntry struct {
	Stat    vfs.FileStat
	Expires time.Time
}

func statKey(path string) []byte {
	return []byte(statKeyPrefix + vfspath.Normalize(path))
}

func (c *FS) lookup(path string) (vfs.FileStat, bool) {
	val, closer, err := c.db.Get(statKey(path))
	if err != nil {
		return vfs.FileStat{}, false
	}
	defer closer.Close()

	var entry cacheEntry
	if err := gob.NewDecoder(bytes.NewReader(val)).Decode(&entry); err != nil {
		return vfs.FileStat{}, false
	}
	if time.Now().After(entry.Expires) {
		return vfs.FileStat{}, false
	}
	return entry.Stat, true
}

func (c *FS) store(path string, st vfs.FileStat) {
	var buf bytes.Buffer
	entry := cacheEntry{Stat: st, Expires: time.Now().Add(c.ttl)}
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return
	}
	_ = c.db.Set(statKey(path), buf.Bytes(), pebble.NoSync)
}

// invalidateSubtree drops the cached entry for path and every entry below
// it, called after any mutating operation touching that path.
func (c *FS) invalidateSubtree(path string) {
	path = vfspath.Normalize(path)
	lower := []byte(statKeyPrefix + path)
	upper := append(append([]byte{}, lower...), 0xff)
	_ = c.db.DeleteRange(lower, upper, pebble.NoSync)
}

func (c *FS) Stat(path string) (vfs.FileStat, error) {
	if st, ok := c.lookup(path); ok {
		return st, nil
	}
	st, err := c.inner.Stat(path)
	if err != nil {
		return st, err
	}
	c.store(path, st)
	return st, nil
}

func (c *FS) StatMany(paths []string) ([]vfs.FileStat, error) {
	out := make([]vfs.FileStat, len(paths))
	var misses []string
	var missIdx []int
	for i, p := range paths {
		if st, ok := c.lookup(p); ok {
			out[i] = st
		} else {
			misses = append(misses, p)
			missIdx = append(missIdx, i)
		}
	}
	if len(misses) == 0 {
		return out, nil
	}
	fetched, err := c.inner.StatMany(misses)
	if err != nil {
		return nil, err
	}
	for i, st := range fetched {
		out[missIdx[i]] = st
		c.store(misses[i], st)
	}
	return out, nil
}

func (c *FS) List(sel vfs.Selector) ([]vfs.FileStat, error) {
	return c.inner.List(sel)
}

func (c *FS) CreateDir(path string, recursive bool) error {
	err := c.inner.CreateDir(path, recursive)
	c.invalidateSubtree(path)
	return err
}

func (c *FS) DeleteDir(path string) error {
	err := c.inner.DeleteDir(path)
	c.invalidateSubtree(path)
	return err
}

func (c *FS) DeleteDirContents(path string) error {
	err := c.inner.DeleteDirContents(path)
	c.invalidateSubtree(path)
	return err
}

func (c *FS) DeleteFile(path string) error {
	err := c.inner.DeleteFile(path)
	c.invalidateSubtree(path)
	return err
}

func (c *FS) DeleteFiles(paths []string) error {
	err := c.inner.DeleteFiles(paths)
	for _, p := range paths {
		c.invalidateSubtree(p)
	}
	return err
}

func (c *FS) Move(src, dst string) error {
	err := c.inner.Move(src, dst)
	c.invalidateSubtree(src)
	c.invalidateSubtree(dst)
	return err
}

func (c *FS) CopyFile(src, dst string) error {
	err := c.inner.CopyFile(src, dst)
	c.invalidateSubtree(dst)
	return err
}

func (c *FS) OpenInputStream(path string) (vfs.SequentialReader, error) {
	return c.inner.OpenInputStream(path)
}

func (c *FS) OpenInputFile(path string) (vfs.RandomReader, error) {
	return c.inner.OpenInputFile(path)
}

func (c *FS) OpenOutputStream(path string) (vfs.Writer, error) {
	w, err := c.inner.OpenOutputStream(path)
	if err != nil {
		return nil, err
	}
	return &invalidatingWriter{Writer: w, cache: c, path: path}, nil
}

func (c *FS) OpenAppendStream(path string) (vfs.Writer, error) {
	w, err := c.inner.OpenAppendStream(path)
	if err != nil {
		return nil, err
	}
	return &invalidatingWriter{Writer: w, cache: c, path: path}, nil
}

// invalidatingWriter drops the cached stat for path once the underlying
// write is durable, since Write calls alone don't necessarily change size
// or mtime from the backend's point of view until Close.
type invalidatingWriter struct {
	vfs.Writer
	cache *FS
	path  string
}

func (w *invalidatingWriter) Close() error {
	err := w.Writer.Close()
	w.cache.invalidateSubtree(w.path)
	return err
}
