package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStoreSetGet(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	value := []byte("abc")
	if err := s.Set(ctx, "k", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'x' // caller mutation must not leak into the store

	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(got) != "abc" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
	}
	got[1] = 'y'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("returned slice aliases stored value: %q", again)
	}

	if s.Len() != 1 {
		t.Fatalf("expected one key, got %d", s.Len())
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "transactions.json"), []byte("[]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := NewFromFiles(dir, "transactions", "absent")
	got, ok, _ := s.Get(context.Background(), "transactions")
	if !ok || string(got) != "[]" {
		t.Fatalf("expected preloaded value, got %q ok=%v", got, ok)
	}
	if _, ok, _ := s.Get(context.Background(), "absent"); ok {
		t.Fatalf("missing file must not create a key")
	}
}
