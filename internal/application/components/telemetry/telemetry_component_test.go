package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTelemetryExportsSpansToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "spans.json")
	tc := NewTelemetryComponent(&Config{
		Enabled:     true,
		ServiceName: "warehouse-management",
		StdoutFile:  out,
	})
	ctx := context.Background()
	if err := tc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	_, span := tc.Tracer("test").Start(ctx, "list-products")
	if !span.SpanContext().IsValid() {
		t.Fatal("span must carry a valid trace id")
	}
	span.End()
	if err := tc.Stop(ctx); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "list-products") {
		t.Fatalf("span not exported: %s", data)
	}
}

func TestTelemetryRequiresServiceName(t *testing.T) {
	tc := NewTelemetryComponent(&Config{Enabled: true, Exporter: ExporterNone})
	if err := tc.Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
