package attributes_test

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"

	"github.com/NVIDIA/vfscore"
	"github.com/NVIDIA/vfscore/telemetry/attributes"
)

func TestBackendAttributesProvider(t *testing.T) {
	caps := vfs.CapabilityFlags{
		HaveImplicitDirectories: true,
		AllowMoveDir:            false,
		AllowAppendToFile:       true,
	}
	provider := attributes.NewBackendAttributesProvider("s3", caps)

	got := make(map[attribute.Key]attribute.Value)
	for _, kv := range provider.Attributes() {
		got[kv.Key] = kv.Value
	}

	if v, ok := got["vfscore.backend"]; !ok || v.AsString() != "s3" {
		t.Errorf("vfscore.backend = %v, want \"s3\"", v)
	}
	if v, ok := got["vfscore.backend.implicit_directories"]; !ok || !v.AsBool() {
		t.Errorf("vfscore.backend.implicit_directories = %v, want true", v)
	}
	if v, ok := got["vfscore.backend.allow_move_dir"]; !ok || v.AsBool() {
		t.Errorf("vfscore.backend.allow_move_dir = %v, want false", v)
	}
	if v, ok := got["vfscore.backend.allow_append"]; !ok || !v.AsBool() {
		t.Errorf("vfscore.backend.allow_append = %v, want true", v)
	}
}
