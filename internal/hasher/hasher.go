package hasher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

// BlockSize es el buffer de lectura por defecto (128 KiB). La memoria por
// worker es constante sin importar el tamaño del archivo.
const BlockSize = 128 * 1024

const (
	SHA256 = "sha256"
	BLAKE3 = "blake3"
)

// ErrReadTimeout se devuelve cuando un archivo no se pudo hashear dentro del
// plazo de lectura.
var ErrReadTimeout = errors.New("read deadline exceeded")

type Options struct {
	Algorithm   string        // sha256 (por defecto) o blake3
	BufferSize  int           // Tamaño del buffer, BlockSize si <= 0
	ReadTimeout time.Duration // Plazo por archivo, sin plazo si <= 0
}

// Hasher calcula digests de 256 bits del contenido. Seguro para uso concurrente.
type Hasher struct {
	opts       Options
	bufferPool sync.Pool
	hashPool   sync.Pool
}

func New(opts Options) (*Hasher, error) {
	if opts.BufferSize <= 0 {
		opts.BufferSize = BlockSize
	}
	opts.Algorithm = strings.ToLower(opts.Algorithm)
	if opts.Algorithm == "" {
		opts.Algorithm = SHA256
	}

	var newDigest func() hash.Hash
	switch opts.Algorithm {
	case SHA256:
		newDigest = sha256.New
	case BLAKE3:
		newDigest = func() hash.Hash { return blake3.New() }
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", opts.Algorithm)
	}

	size := opts.BufferSize
	h := &Hasher{opts: opts}
	h.bufferPool.New = func() any {
		b := make([]byte, size)
		return &b
	}
	h.hashPool.New = func() any {
		return newDigest()
	}
	return h, nil
}

// Algorithm devuelve el nombre del digest configurado.
func (h *Hasher) Algorithm() string {
	return h.opts.Algorithm
}

// Hash lee el archivo en streaming y devuelve su digest en hex minúsculas.
// Cualquier fallo al abrir o leer, o un plazo vencido, devuelve error; nunca
// se devuelve un digest parcial.
func (h *Hasher) Hash(ctx context.Context, path string) (string, error) {
	if h.opts.ReadTimeout <= 0 {
		return h.hashFile(ctx, path)
	}

	ctx, cancel := context.WithTimeout(ctx, h.opts.ReadTimeout)
	defer cancel()

	type result struct {
		sum string
		err error
	}
	done := make(chan result, 1)
	go func() {
		sum, err := h.hashFile(ctx, path)
		done <- result{sum, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) {
			return "", fmt.Errorf("hash %s: %w", path, ErrReadTimeout)
		}
		return r.sum, r.err
	case <-ctx.Done():
		// La goroutine lectora sale en el siguiente bloque o cuando vuelva
		// la lectura bloqueada.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("hash %s: %w", path, ErrReadTimeout)
		}
		return "", ctx.Err()
	}
}

func (h *Hasher) hashFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	// Reutilizamos estado del digest y buffer (Pools)
	d := h.hashPool.Get().(hash.Hash)
	d.Reset()
	defer h.hashPool.Put(d)

	bufPtr := h.bufferPool.Get().(*[]byte)
	defer h.bufferPool.Put(bufPtr)

	if _, err := io.CopyBuffer(d, &ctxReader{ctx: ctx, r: file}, *bufPtr); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return hex.EncodeToString(d.Sum(nil)), nil
}

// ctxReader corta la copia entre bloques cuando ctx termina.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
