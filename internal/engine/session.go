package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soyunomas/dupescan/internal/hasher"
	"github.com/soyunomas/dupescan/internal/logging"
	"github.com/soyunomas/dupescan/internal/probe"
	"github.com/soyunomas/dupescan/internal/workerpool"
)

// DefaultPartitions is the number of reduce partitions used when none is set.
const DefaultPartitions = 20

// ErrSessionClosed is returned when a closed Session is used.
var ErrSessionClosed = errors.New("session closed")

// SessionConfig sizes the execution context.
type SessionConfig struct {
	Workers    int
	Partitions int
	Hasher     hasher.Options
	Log        *zap.Logger
}

// Session is the execution context of a scan: the worker pool plus the
// shared probe and hasher. Acquire it once with NewSession, pass it to
// Runner.Run, and release it with Close.
type Session struct {
	log        *zap.Logger
	pool       *workerpool.Pool
	prober     *probe.Prober
	hasher     *hasher.Hasher
	partitions int

	mu     sync.Mutex
	closed bool
}

func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Partitions < 1 {
		cfg.Partitions = DefaultPartitions
	}

	h, err := hasher.New(cfg.Hasher)
	if err != nil {
		return nil, err
	}

	log := logging.Component(cfg.Log, "engine")
	s := &Session{
		log:        log,
		pool:       workerpool.New(cfg.Workers, cfg.Workers*2, cfg.Log),
		prober:     probe.New(cfg.Log),
		hasher:     h,
		partitions: cfg.Partitions,
	}
	log.Info("session started",
		zap.Int("workers", cfg.Workers),
		zap.Int("partitions", cfg.Partitions),
		zap.String("algorithm", h.Algorithm()))
	return s, nil
}

// Workers returns the size of the worker pool.
func (s *Session) Workers() int {
	return s.pool.Workers()
}

// Partitions returns the number of reduce partitions.
func (s *Session) Partitions() int {
	return s.partitions
}

// Close drains the worker pool. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.pool.Close(ctx)
	s.log.Debug("session closed")
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
