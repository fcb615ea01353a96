package telemetry_test

import (
	"context"
	"testing"

	"github.com/NVIDIA/vfscore/telemetry"
	"github.com/NVIDIA/vfscore/telemetry/attributes"
)

func TestSetupBuildsMeterProvider(t *testing.T) {
	provider, attrs, err := telemetry.Setup(telemetry.Config{
		OTLPEndpoint: "127.0.0.1:4318",
		ServiceName:  "vfscore-test",
		Insecure:     true,
		AttributeProviders: []attributes.AttributesProvider{
			attributes.NewProcessAttributesProvider(map[string]interface{}{
				"attributes": map[string]interface{}{"process.pid": "pid"},
			}),
		},
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if provider == nil {
		t.Fatal("Setup returned a nil MeterProvider")
	}
	defer provider.Shutdown(context.Background())

	if len(attrs) == 0 {
		t.Error("expected at least one metric attribute from the process provider")
	}
}

func TestSetupDefaultsIntervalsWhenUnset(t *testing.T) {
	provider, _, err := telemetry.Setup(telemetry.Config{
		OTLPEndpoint: "127.0.0.1:4318",
		ServiceName:  "vfscore-test-defaults",
		Insecure:     true,
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer provider.Shutdown(context.Background())
}
