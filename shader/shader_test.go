package shader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReadsFixedPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "opaque.vert.wgsl"), []byte("@vertex fn vsMain() {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(dir)
	src, err := l.Load("opaque", "vert", "vsMain")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.EntryPoint != "vsMain" {
		t.Errorf("EntryPoint = %q, want vsMain", src.EntryPoint)
	}
	if src.Code == "" {
		t.Error("Code is empty")
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	l := NewLoader(t.TempDir())
	if _, err := l.Load("missing", "comp", "main"); err == nil {
		t.Fatal("expected error for missing shader file")
	}
}

func TestNewLoaderDefaultsDir(t *testing.T) {
	l := NewLoader("")
	if l.dir != DefaultDir {
		t.Errorf("dir = %q, want %q", l.dir, DefaultDir)
	}
}
