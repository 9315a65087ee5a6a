package services_test

import (
	"context"
	"testing"

	"toolbox/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithFileIndex(ctx, 0)
	ctx = services.WithTargetFormat(ctx, "png")

	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if idx, ok := services.FileIndexFromContext(ctx); !ok || idx != 0 {
		t.Fatalf("unexpected file index: %v %v", idx, ok)
	}
	if target, ok := services.TargetFormatFromContext(ctx); !ok || target != "png" {
		t.Fatalf("unexpected target: %v %v", target, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "")
	ctx = services.WithTargetFormat(ctx, "")
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id")
	}
	if _, ok := services.TargetFormatFromContext(ctx); ok {
		t.Fatal("expected no target")
	}
	if _, ok := services.FileIndexFromContext(ctx); ok {
		t.Fatal("expected no file index")
	}
}
