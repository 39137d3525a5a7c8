package uploads

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestDiskStore_Save(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name, err := store.Save(context.Background(), "scan.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pattern := regexp.MustCompile(`^report-\d+-[0-9a-f]{8}\.pdf$`)
	if !pattern.MatchString(name) {
		t.Errorf("stored name %q does not match expected pattern", name)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	if err != nil {
		t.Fatalf("stored file not readable: %v", err)
	}
	if string(data) != "pdf-bytes" {
		t.Errorf("unexpected file content %q", data)
	}
}

func TestDiskStore_Save_UniqueNames(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		name, err := store.Save(context.Background(), "scan.pdf", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("save %d: unexpected error: %v", i, err)
		}
		if seen[name] {
			t.Fatalf("name collision on %q", name)
		}
		seen[name] = true
	}
}

func TestDiskStore_Save_MissingName(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = store.Save(context.Background(), "", strings.NewReader("x"))
	if !errors.Is(err, ErrMissingFileName) {
		t.Errorf("expected ErrMissingFileName, got %v", err)
	}
}

func TestDiskStore_Save_PreservesExtension(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name, err := store.Save(context.Background(), "results.jpeg", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(name, ".jpeg") {
		t.Errorf("expected .jpeg suffix, got %q", name)
	}
}

func TestNewDiskStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	if _, err := NewDiskStore(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory at %s", dir)
	}
}
