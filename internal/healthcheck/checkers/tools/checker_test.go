package toolschecker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/memohai/websearch-mcp/internal/mcp"
)

type fakeToolLister struct {
	items []mcp.ToolDescriptor
	err   error
}

func (f *fakeToolLister) ListTools(ctx context.Context, session mcp.ToolSessionContext) ([]mcp.ToolDescriptor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckerListChecks(t *testing.T) {
	t.Parallel()

	checker := NewChecker(
		newTestLogger(),
		&fakeToolLister{items: []mcp.ToolDescriptor{{Name: "web_search"}}},
		"web_search", "get_strategy",
	)

	items := checker.ListChecks(context.Background())
	if len(items) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(items))
	}
	if items[0].ID != "mcp.tool.web_search" || items[0].Status != "ok" {
		t.Fatalf("unexpected web_search check: %#v", items[0])
	}
	if items[1].ID != "mcp.tool.get_strategy" || items[1].Status != "error" {
		t.Fatalf("unexpected get_strategy check: %#v", items[1])
	}
}

func TestCheckerListChecksToolListError(t *testing.T) {
	t.Parallel()

	checker := NewChecker(newTestLogger(), &fakeToolLister{err: errors.New("gateway down")}, "web_search")

	items := checker.ListChecks(context.Background())
	if len(items) != 1 {
		t.Fatalf("expected 1 check, got %d", len(items))
	}
	if items[0].Status != "error" {
		t.Fatalf("expected error status, got %s", items[0].Status)
	}
	if items[0].Detail == "" {
		t.Fatalf("expected non-empty detail")
	}
}

func TestCheckerNilLister(t *testing.T) {
	t.Parallel()

	items := NewChecker(nil, nil, "web_search").ListChecks(context.Background())
	if len(items) != 1 || items[0].Status != "warn" {
		t.Fatalf("unexpected checks: %#v", items)
	}
}
