package services_test

import (
	"context"
	"testing"

	"lyricrater/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRow(ctx, 42)
	ctx = services.WithProvider(ctx, "gemini")
	ctx = services.WithRunID(ctx, "run-123")

	if row, ok := services.RowFromContext(ctx); !ok || row != 42 {
		t.Fatalf("unexpected row: %v %v", row, ok)
	}
	if provider, ok := services.ProviderFromContext(ctx); !ok || provider != "gemini" {
		t.Fatalf("unexpected provider: %v %v", provider, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
}

func TestProviderBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithProvider(ctx, "")
	if _, ok := services.ProviderFromContext(ctx); ok {
		t.Fatal("expected no provider value")
	}
	if _, ok := services.RowFromContext(ctx); ok {
		t.Fatal("expected no row value")
	}
}
