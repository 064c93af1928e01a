package scanner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/soyunomas/dupescan/internal/source"
)

func buildTree(t *testing.T) (root string, want []string) {
	t.Helper()
	root = t.TempDir()
	files := map[string]int{
		"a.txt":                 10,
		"sub/b.bin":             200,
		"sub/deeper/c.bin":      300,
		".git/objects/x":        500,
		"node_modules/pkg/y.js": 500,
	}
	for name, size := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, bytes.Repeat([]byte{'x'}, size), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	want = []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "sub/b.bin"),
		filepath.Join(root, "sub/deeper/c.bin"),
	}
	return root, want
}

func lines(s string) []string {
	out := strings.Split(strings.TrimSpace(s), "\n")
	sort.Strings(out)
	return out
}

func TestWalkSkipsExcludedAndNonRegular(t *testing.T) {
	root, want := buildTree(t)

	var buf bytes.Buffer
	n, err := New(Config{Excludes: DefaultExcludes}, nil).Walk(context.Background(), []string{root}, &buf)
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if n != len(want) {
		t.Fatalf("Walk() = %d paths, want %d", n, len(want))
	}
	if got := lines(buf.String()); !reflect.DeepEqual(got, want) {
		t.Fatalf("listing = %v, want %v", got, want)
	}
}

func TestWalkMinSize(t *testing.T) {
	root, _ := buildTree(t)

	var buf bytes.Buffer
	if _, err := New(Config{MinSize: 200, Excludes: DefaultExcludes}, nil).Walk(context.Background(), []string{root}, &buf); err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(root, "sub/deeper/c.bin")}
	if got := lines(buf.String()); !reflect.DeepEqual(got, want) {
		t.Fatalf("listing = %v, want %v", got, want)
	}
}

func TestWalkMissingRootIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	n, err := New(Config{}, nil).Walk(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, &buf)
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if n != 0 || buf.Len() != 0 {
		t.Fatalf("Walk() = %d, %q", n, buf.String())
	}
}

func TestWalkCancelled(t *testing.T) {
	root, _ := buildTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if _, err := New(Config{}, nil).Walk(ctx, []string{root}, &buf); !errors.Is(err, context.Canceled) {
		t.Fatalf("Walk() error = %v, want context.Canceled", err)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	root, want := buildTree(t)

	for _, name := range []string{"listing.txt", "listing.txt.gz", "listing.txt.zst"} {
		t.Run(name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), name)
			n, err := New(Config{Excludes: DefaultExcludes}, nil).WriteFile(context.Background(), []string{root}, out)
			if err != nil {
				t.Fatalf("WriteFile() error: %v", err)
			}
			if n != len(want) {
				t.Fatalf("WriteFile() = %d, want %d", n, len(want))
			}

			l, err := source.NewReader(nil).Read(context.Background(), out)
			if err != nil {
				t.Fatalf("Read() error: %v", err)
			}
			got := append([]string(nil), l.Paths...)
			sort.Strings(got)
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("paths = %v, want %v", got, want)
			}
		})
	}
}
