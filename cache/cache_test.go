package cache_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/NVIDIA/vfscore"
	"github.com/NVIDIA/vfscore/backend/memfs"
	"github.com/NVIDIA/vfscore/cache"
)

func newCachedFS(t *testing.T, ttl time.Duration) (*cache.FS, vfs.FileSystem) {
	t.Helper()
	inner := memfs.New()
	c, err := cache.New(inner, filepath.Join(t.TempDir(), "statcache"), ttl)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, inner
}

func TestStatIsServedFromCache(t *testing.T) {
	c, inner := newCachedFS(t, time.Minute)

	w, err := inner.OpenOutputStream("file")
	if err != nil {
		t.Fatalf("OpenOutputStream: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st1, err := c.Stat("file")
	if err != nil {
		t.Fatalf("Stat (first, miss): %v", err)
	}
	if st1.Size != 5 {
		t.Errorf("Size = %d, want 5", st1.Size)
	}

	// Mutate directly through inner, bypassing the cache's invalidation;
	// a cached Stat should still return the stale size until it expires.
	w2, err := inner.OpenOutputStream("file")
	if err != nil {
		t.Fatalf("OpenOutputStream (2nd): %v", err)
	}
	if _, err := w2.Write([]byte("hello world")); err != nil {
		t.Fatalf("Write (2nd): %v", err)
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("Close (2nd): %v", err)
	}

	st2, err := c.Stat("file")
	if err != nil {
		t.Fatalf("Stat (second, cached): %v", err)
	}
	if st2.Size != 5 {
		t.Errorf("Size = %d, want 5 (stale cached value)", st2.Size)
	}
}

func TestWriteThroughCacheInvalidates(t *testing.T) {
	c, _ := newCachedFS(t, time.Minute)

	w, err := c.OpenOutputStream("file")
	if err != nil {
		t.Fatalf("OpenOutputStream: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err := c.Stat("file")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if st.Size != 5 {
		t.Errorf("Size = %d, want 5", st.Size)
	}

	w2, err := c.OpenOutputStream("file")
	if err != nil {
		t.Fatalf("OpenOutputStream (2nd): %v", err)
	}
	if _, err := w2.Write([]byte("hello world")); err != nil {
		t.Fatalf("Write (2nd): %v", err)
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("Close (2nd): %v", err)
	}

	st2, err := c.Stat("file")
	if err != nil {
		t.Fatalf("Stat (after rewrite): %v", err)
	}
	if st2.Size != 11 {
		t.Errorf("Size = %d, want 11 (cache invalidated by write-through Close)", st2.Size)
	}
}

func TestExpiredEntryRefetches(t *testing.T) {
	c, inner := newCachedFS(t, time.Millisecond)

	w, err := inner.OpenOutputStream("file")
	if err != nil {
		t.Fatalf("OpenOutputStream: %v", err)
	}
	w.Close()

	if _, err := c.Stat("file"); err != nil {
		t.Fatalf("Stat: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	w2, _ := inner.OpenOutputStream("file")
	w2.Write([]byte("data"))
	w2.Close()

	st, err := c.Stat("file")
	if err != nil {
		t.Fatalf("Stat (after expiry): %v", err)
	}
	if st.Size != 4 {
		t.Errorf("Size = %d, want 4 (expired entry should refetch)", st.Size)
	}
}
