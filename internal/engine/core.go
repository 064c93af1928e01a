package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soyunomas/dupescan/internal/entities"
	"github.com/soyunomas/dupescan/internal/logging"
	"github.com/soyunomas/dupescan/internal/probe"
	"github.com/soyunomas/dupescan/internal/source"
)

// chunkSize es el número de candidatos que procesa cada tarea map.
const chunkSize = 256

type Options struct {
	MinSize  int64
	Strategy KeepStrategy
	// Deduped indica que las rutas ya son únicas (salida de source.Reader),
	// así Run no vuelve a deduplicarlas.
	Deduped bool
}

// Progress recibe un tick por candidato procesado. Las implementaciones
// deben ser seguras para uso concurrente.
type Progress interface {
	Add(n int)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Add(int) {}
func (nopProgress) Finish() {}

type Runner struct {
	opts     Options
	progress Progress
}

func New(opts Options) *Runner {
	return &Runner{opts: opts, progress: nopProgress{}}
}

// WithProgress asigna el destino del progreso y devuelve el runner.
func (r *Runner) WithProgress(p Progress) *Runner {
	if p != nil {
		r.progress = p
	}
	return r
}

// Run ejecuta el pipeline sobre paths en la sesión s:
// dedup -> probe -> filtro de tamaño -> hash (tareas map en paralelo), luego
// la barrera de agrupación y el ranking. Los fallos por archivo solo reducen
// el conjunto de candidatos; Run solo falla por cancelación o sesión cerrada.
func (r *Runner) Run(ctx context.Context, s *Session, paths []string) (*Stats, error) {
	if s == nil || s.isClosed() {
		return nil, ErrSessionClosed
	}
	start := time.Now()

	// --- PASO 1: ENTRADA ---
	candidates := paths
	if !r.opts.Deduped {
		candidates = source.Dedup(paths)
	}
	s.log.Info("scan started",
		zap.Int("candidates", len(candidates)),
		zap.Int64("min_size", r.opts.MinSize),
		zap.Stringer("keep", r.opts.Strategy))

	// --- PASO 2: MAP (probe + filtro + hash) ---
	c := newCounters()
	partials, err := r.mapPhase(ctx, s, candidates, c)
	r.progress.Finish()
	if err != nil {
		return nil, err
	}

	// --- PASO 3: AGRUPAR ---
	groups, err := Merge(ctx, partials, s.partitions)
	if err != nil {
		return nil, fmt.Errorf("merge partitions: %w", err)
	}
	// --- PASO 4: ORDENAR Y FINALIZAR ---
	sortGroups(groups, r.opts.Strategy)
	ranked := Rank(groups)

	stats := &Stats{
		Candidates: int64(len(candidates)),
		Groups:     ranked,
	}
	c.fill(stats)
	for _, g := range ranked {
		stats.DuplicateFiles += g.Count - 1
		stats.WastedBytes += g.WastedSpace
	}
	stats.Duration = time.Since(start)

	s.log.Info("scan finished",
		zap.Int64("hashed", stats.Hashed),
		zap.Int64("excluded", stats.Excluded()),
		zap.Int64("symlinks", stats.Symlinks),
		zap.Int64("probe_failures", stats.ProbeFailures),
		zap.Int64("below_min_size", stats.BelowMinSize),
		zap.Int64("hash_failures", stats.HashFailures),
		zap.Int("groups", len(ranked)),
		zap.Int64("wasted_bytes", stats.WastedBytes),
		zap.Duration("duration", stats.Duration))
	return stats, nil
}

// mapPhase parte los candidatos en bloques, lanza cada bloque como tarea del
// pool con su propio Tally y espera a que terminen todas.
func (r *Runner) mapPhase(ctx context.Context, s *Session, candidates []string, c *counters) ([]*Tally, error) {
	nChunks := (len(candidates) + chunkSize - 1) / chunkSize
	partials := make([]*Tally, nChunks)

	var wg sync.WaitGroup
	var submitErr error
	for i := 0; i < nChunks; i++ {
		lo := i * chunkSize
		hi := min(lo+chunkSize, len(candidates))
		chunk := candidates[lo:hi]

		wg.Add(1)
		err := s.pool.Submit(ctx, func() {
			defer wg.Done()
			partials[i] = r.mapChunk(ctx, s, chunk, c)
		})
		if err != nil {
			wg.Done()
			submitErr = err
			break
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if submitErr != nil {
		if errors.Is(submitErr, context.Canceled) || errors.Is(submitErr, context.DeadlineExceeded) {
			return nil, submitErr
		}
		return nil, fmt.Errorf("schedule map task: %w", submitErr)
	}
	return partials, nil
}

func (r *Runner) mapChunk(ctx context.Context, s *Session, chunk []string, c *counters) *Tally {
	t := NewTally()
	for _, path := range chunk {
		if ctx.Err() != nil {
			return t
		}
		r.visit(ctx, s, t, path, c)
	}
	return t
}

// visit procesa un candidato. Un panic queda confinado a ese candidato: se
// registra en el log y, si process aún no lo había contado, cuenta como
// fallo de hash. El resto del bloque sigue.
func (r *Runner) visit(ctx context.Context, s *Session, t *Tally, path string, c *counters) {
	counted := false
	defer func() {
		if p := recover(); p != nil {
			if !counted {
				c.hashFailures.Inc()
			}
			s.log.Error("panic processing file",
				zap.String(logging.KeyPath, path),
				zap.Any("panic", p),
				zap.Stack("stack"))
		}
	}()

	rec := r.process(ctx, s, path, c)
	counted = true
	if rec != nil {
		t.Add(rec)
	}
	r.progress.Add(1)
}

// process pasa un candidato por probe, filtro de tamaño y hasher. Un nil
// significa que se descartó; el motivo queda contado en c.
func (r *Runner) process(ctx context.Context, s *Session, path string, c *counters) *entities.FileRecord {
	// 1. Metadatos (lstat)
	meta, err := s.prober.Lookup(path)
	if err != nil {
		s.prober.Report(path, err)
		if errors.Is(err, probe.ErrSymlink) {
			c.symlinks.Inc()
		} else {
			c.probeFailures.Inc()
		}
		return nil
	}

	// 2. Filtro de tamaño
	if !PassesSizeFilter(meta, r.opts.MinSize) {
		c.belowMinSize.Inc()
		return nil
	}

	// 3. Hash del contenido
	digest, err := s.hasher.Hash(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			// Cancelado: no cuenta como fallo
			return nil
		}
		c.hashFailures.Inc()
		s.log.Warn("error hashing file", zap.String(logging.KeyPath, path), zap.Error(err))
		return nil
	}

	// 4. Construcción de la entidad
	c.hashed.Inc()
	c.hashedBytes.Add(meta.Size)
	return &entities.FileRecord{Path: path, Meta: meta, Digest: digest}
}
