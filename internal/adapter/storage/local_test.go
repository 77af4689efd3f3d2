package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStore_SaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(filepath.Join(dir, "proofs"), "http://localhost:8080/")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	url, n, err := s.Save(context.Background(), "abc.png", strings.NewReader("receipt"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if url != "http://localhost:8080/uploads/abc.png" {
		t.Fatalf("url = %q", url)
	}
	if n != int64(len("receipt")) {
		t.Fatalf("size = %d", n)
	}
	b, err := os.ReadFile(filepath.Join(s.Dir(), "abc.png"))
	if err != nil || string(b) != "receipt" {
		t.Fatalf("stored content = %q err=%v", b, err)
	}

	// names are never overwritten
	if _, _, err := s.Save(context.Background(), "abc.png", strings.NewReader("other")); err == nil {
		t.Fatal("expected error on duplicate name")
	}

	if err := s.Remove(context.Background(), url); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "abc.png")); !os.IsNotExist(err) {
		t.Fatalf("file still present: %v", err)
	}
	// idempotent
	if err := s.Remove(context.Background(), url); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}

func TestLocalStore_RejectsPaths(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	for _, name := range []string{"../evil.png", "a/b.png", ""} {
		if _, _, err := s.Save(context.Background(), name, strings.NewReader("x")); err == nil {
			t.Fatalf("Save(%q) should fail", name)
		}
	}
	for _, url := range []string{"http://x/other/a.png", "/uploads/", "/uploads/../a.png"} {
		if err := s.Remove(context.Background(), url); err == nil {
			t.Fatalf("Remove(%q) should fail", url)
		}
	}
}

func TestLocalStore_RelativeURL(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	url, _, err := s.Save(context.Background(), "r.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if url != "/uploads/r.pdf" {
		t.Fatalf("url = %q", url)
	}
}
