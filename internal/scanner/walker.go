// Package scanner recorre árboles de directorios y escribe el listado de
// rutas que consume el pipeline de escaneo.
package scanner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/soyunomas/dupescan/internal/logging"
)

// DefaultExcludes son carpetas en las que nunca se entra.
var DefaultExcludes = []string{".git", "node_modules", ".DS_Store", "TRASH_BIN"}

// Config define las reglas para el recorrido.
type Config struct {
	MinSize  int64    // Tamaño mínimo: no se listan archivos <= MinSize
	Excludes []string // Lista de carpetas a ignorar
}

// FileScanner lista los archivos regulares bajo un conjunto de raíces.
type FileScanner struct {
	cfg        Config
	excludeMap map[string]struct{}
	log        *zap.Logger
}

func New(cfg Config, log *zap.Logger) *FileScanner {
	exMap := make(map[string]struct{}, len(cfg.Excludes))
	for _, e := range cfg.Excludes {
		exMap[e] = struct{}{}
	}

	return &FileScanner{
		cfg:        cfg,
		excludeMap: exMap,
		log:        logging.Component(log, "scanner"),
	}
}

// Walk escribe en w una ruta por línea por cada archivo regular bajo roots y
// devuelve cuántas escribió. Las entradas ilegibles se registran y se saltan;
// solo un fallo de escritura o la cancelación detienen el recorrido.
func (s *FileScanner) Walk(ctx context.Context, roots []string, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	written := 0

	for _, root := range roots {
		s.log.Info("walking", zap.String(logging.KeyPath, root))

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// 1. Manejo de errores de acceso (permisos, etc)
			if err != nil {
				s.log.Warn("error walking", zap.String(logging.KeyPath, path), zap.Error(err))
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// 2. Si es directorio, verificamos si debemos ignorarlo
			if d.IsDir() {
				if _, ok := s.excludeMap[d.Name()]; ok && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			// 3. Symlinks, dispositivos, sockets y pipes nunca son candidatos
			if !d.Type().IsRegular() {
				return nil
			}

			// 4. Filtro de tamaño
			if s.cfg.MinSize > 0 {
				info, err := d.Info()
				if err != nil {
					s.log.Warn("error reading metadata", zap.String(logging.KeyPath, path), zap.Error(err))
					return nil
				}
				if info.Size() <= s.cfg.MinSize {
					return nil
				}
			}

			// 5. Escribir la ruta
			if _, err := bw.WriteString(path + "\n"); err != nil {
				return fmt.Errorf("write listing: %w", err)
			}
			written++
			return nil
		})
		if err != nil {
			return written, err
		}
	}

	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("write listing: %w", err)
	}
	return written, nil
}

// WriteFile vuelca el recorrido de roots en el archivo out, comprimido si out
// termina en .gz o .zst.
func (s *FileScanner) WriteFile(ctx context.Context, roots []string, out string) (int, error) {
	f, err := os.Create(out)
	if err != nil {
		return 0, fmt.Errorf("create listing: %w", err)
	}

	w, err := compress(out, f)
	if err != nil {
		f.Close()
		return 0, err
	}

	n, walkErr := s.Walk(ctx, roots, w)
	closeErr := w.Close()
	if err := f.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	if walkErr != nil {
		return n, walkErr
	}
	if closeErr != nil {
		return n, fmt.Errorf("close listing: %w", closeErr)
	}

	s.log.Info("listing written", zap.String(logging.KeyPath, out), zap.Int("paths", n))
	return n, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func compress(name string, dst io.Writer) (io.WriteCloser, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return gzip.NewWriter(dst), nil
	case strings.HasSuffix(name, ".zst"):
		enc, err := zstd.NewWriter(dst)
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return enc, nil
	default:
		return nopWriteCloser{dst}, nil
	}
}
