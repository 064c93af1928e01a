//go:build linux

package hasher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestHashReadTimeoutOnStalledFile(t *testing.T) {
	fifo := filepath.Join(t.TempDir(), "stalled")
	if err := unix.Mkfifo(fifo, 0o600); err != nil {
		t.Skipf("mkfifo unsupported: %v", err)
	}
	t.Cleanup(func() {
		// Unblock the reader goroutine still waiting in open.
		if w, err := os.OpenFile(fifo, os.O_WRONLY, 0); err == nil {
			w.Close()
		}
	})

	h, _ := New(Options{ReadTimeout: 50 * time.Millisecond})

	start := time.Now()
	sum, err := h.Hash(context.Background(), fifo)
	if !errors.Is(err, ErrReadTimeout) {
		t.Fatalf("Hash() error = %v, want ErrReadTimeout", err)
	}
	if sum != "" {
		t.Fatalf("Hash() = %q, want empty digest", sum)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Hash() took %v, deadline not applied", elapsed)
	}
}
