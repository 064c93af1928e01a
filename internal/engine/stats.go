package engine

import (
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/soyunomas/dupescan/internal/entities"
)

// Stats summarizes one run. Every candidate is accounted for exactly once in
// Hashed, Symlinks, ProbeFailures, BelowMinSize or HashFailures.
type Stats struct {
	Candidates     int64
	Symlinks       int64
	ProbeFailures  int64
	BelowMinSize   int64
	Hashed         int64
	HashFailures   int64
	HashedBytes    int64
	DuplicateFiles int64 // members beyond the first of every group
	WastedBytes    int64
	Groups         []*entities.DuplicateGroup // ranked, largest waste first
	Duration       time.Duration
}

// Excluded is the number of candidates that could not take part in grouping.
func (s *Stats) Excluded() int64 {
	return s.Symlinks + s.ProbeFailures + s.BelowMinSize + s.HashFailures
}

// counters are shared by all map tasks of a run.
type counters struct {
	symlinks      *xsync.Counter
	probeFailures *xsync.Counter
	belowMinSize  *xsync.Counter
	hashed        *xsync.Counter
	hashFailures  *xsync.Counter
	hashedBytes   *xsync.Counter
}

func newCounters() *counters {
	return &counters{
		symlinks:      xsync.NewCounter(),
		probeFailures: xsync.NewCounter(),
		belowMinSize:  xsync.NewCounter(),
		hashed:        xsync.NewCounter(),
		hashFailures:  xsync.NewCounter(),
		hashedBytes:   xsync.NewCounter(),
	}
}

func (c *counters) fill(s *Stats) {
	s.Symlinks = c.symlinks.Value()
	s.ProbeFailures = c.probeFailures.Value()
	s.BelowMinSize = c.belowMinSize.Value()
	s.Hashed = c.hashed.Value()
	s.HashFailures = c.hashFailures.Value()
	s.HashedBytes = c.hashedBytes.Value()
}
