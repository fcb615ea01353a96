package telemetry_test

import (
	"testing"

	"github.com/NVIDIA/vfscore"
	"github.com/NVIDIA/vfscore/backend/memfs"
	"github.com/NVIDIA/vfscore/telemetry"
)

func TestInstrumentPassesThroughOperations(t *testing.T) {
	metrics, err := telemetry.NewMetrics("vfscore-test", nil)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	var fsys vfs.FileSystem = memfs.New()
	instrumented := telemetry.Instrument(fsys, &metrics, "memfs")

	if err := instrumented.CreateDir("AB", false); err != nil {
		t.Fatalf("CreateDir: %v", err)
	}

	w, err := instrumented.OpenOutputStream("AB/file")
	if err != nil {
		t.Fatalf("OpenOutputStream: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err := instrumented.Stat("AB/file")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if st.Size != 5 {
		t.Errorf("Size = %d, want 5", st.Size)
	}

	r, err := instrumented.OpenInputStream("AB/file")
	if err != nil {
		t.Fatalf("OpenInputStream: %v", err)
	}
	buf := make([]byte, 5)
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close (reader): %v", err)
	}
	if string(buf) != "hello" {
		t.Errorf("content = %q, want hello", buf)
	}
}

func TestInstrumentPropagatesErrors(t *testing.T) {
	metrics, err := telemetry.NewMetrics("vfscore-test", nil)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	instrumented := telemetry.Instrument(memfs.New(), &metrics, "memfs")

	if _, err := instrumented.Stat("nope"); err != nil {
		t.Fatalf("Stat(nope): %v", err)
	}
	if _, err := instrumented.OpenInputStream("nope"); err == nil {
		t.Errorf("OpenInputStream(nope) = nil error, want failure")
	}
}
