package probe

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestLookupRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bin")
	if err := os.WriteFile(path, make([]byte, 1234), 0o640); err != nil {
		t.Fatal(err)
	}

	meta, err := New(nil).Lookup(path)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if meta.Size != 1234 {
		t.Errorf("Size = %d, want 1234", meta.Size)
	}
	if meta.Nlink < 1 {
		t.Errorf("Nlink = %d, want >= 1", meta.Nlink)
	}
	if meta.Mtime.IsZero() {
		t.Error("Mtime is zero")
	}
}

func TestLookupSymlinkIsNotFollowed(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	if err := os.WriteFile(target, []byte("content"), 0o600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	p := New(nil)
	if _, err := p.Lookup(link); !errors.Is(err, ErrSymlink) {
		t.Fatalf("Lookup(link) error = %v, want ErrSymlink", err)
	}
	if meta := p.Probe(link); meta != nil {
		t.Fatalf("Probe(link) = %+v, want nil", meta)
	}
}

func TestLookupDanglingSymlink(t *testing.T) {
	link := filepath.Join(t.TempDir(), "dangling")
	if err := os.Symlink("/does/not/exist", link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if _, err := New(nil).Lookup(link); !errors.Is(err, ErrSymlink) {
		t.Fatalf("Lookup(dangling) error = %v, want ErrSymlink", err)
	}
}

func TestProbeMissingPathIsSoftFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vanished")

	p := New(nil)
	if _, err := p.Lookup(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Lookup(missing) error = %v, want fs.ErrNotExist", err)
	}
	if meta := p.Probe(path); meta != nil {
		t.Fatalf("Probe(missing) = %+v, want nil", meta)
	}
}
