package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureParentDirCreatesNested(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "keeper.log")
	if err := EnsureParentDir(path); err != nil {
		t.Fatalf("EnsureParentDir: %v", err)
	}
	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("stat parent: %v", err)
	}
	if !info.IsDir() {
		t.Error("parent is not a directory")
	}
}

func TestOpenAppendAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "keeper.log")
	for _, line := range []string{"first\n", "second\n"} {
		f, err := OpenAppend(path)
		if err != nil {
			t.Fatalf("OpenAppend: %v", err)
		}
		if _, err := f.WriteString(line); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("content = %q", data)
	}
}
