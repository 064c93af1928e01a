// Package progress renders a terminal progress bar over the candidate paths
// of a scan.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Options configures progress bar behavior
type Options struct {
	Quiet  bool
	Writer io.Writer // defaults to os.Stderr
}

// Bar counts processed candidates. A quiet Bar only counts.
// Safe for concurrent use.
type Bar struct {
	mu       sync.Mutex
	bar      *progressbar.ProgressBar
	done     int64
	finished bool
}

// New creates a bar over total candidates.
func New(total int, description string, opts Options) *Bar {
	b := &Bar{}
	if opts.Quiet {
		return b
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(65),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)
	return b
}

// Add records n processed candidates.
func (b *Bar) Add(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.done += int64(n)
	if b.bar != nil {
		_ = b.bar.Add(n)
	}
}

// Finish completes the bar. Later calls to Add are ignored.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.finished = true
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

// Done returns the number of candidates recorded so far.
func (b *Bar) Done() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}
