// Package source reads path listings and reduces them to a deduplicated
// candidate set.
//
// A listing location is a single file, a directory whose visible files are
// all listing parts, or an s3://bucket/prefix URL. Parts ending in .gz or
// .zst are decompressed transparently.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/soyunomas/dupescan/internal/logging"
)

// maxLineSize bounds a single path line in a listing.
const maxLineSize = 1 << 20

// Listing is the result of reading a location.
type Listing struct {
	Paths      []string // distinct paths, first-occurrence order
	Lines      int      // non-blank lines read
	Duplicates int      // lines collapsed by deduplication
}

// Reader opens listing locations.
type Reader struct {
	log      *zap.Logger
	newStore StoreFactory
}

// StoreFactory builds an ObjectStore for a bucket.
type StoreFactory func(ctx context.Context, bucket string) (ObjectStore, error)

type Option func(*Reader)

// WithStoreFactory overrides how s3:// locations are opened.
func WithStoreFactory(f StoreFactory) Option {
	return func(r *Reader) { r.newStore = f }
}

func NewReader(log *zap.Logger, opts ...Option) *Reader {
	r := &Reader{
		log:      logging.Component(log, "source"),
		newStore: NewS3Store,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Read loads every part of location and returns the deduplicated paths.
// Any failure to open or read a part is fatal for the run.
func (r *Reader) Read(ctx context.Context, location string) (*Listing, error) {
	d := newDeduper()

	if bucket, prefix, ok := parseS3(location); ok {
		if err := r.readS3(ctx, bucket, prefix, d); err != nil {
			return nil, err
		}
	} else if err := r.readLocal(ctx, location, d); err != nil {
		return nil, err
	}

	l := d.listing()
	r.log.Info("listing loaded",
		zap.String("location", location),
		zap.Int("lines", l.Lines),
		zap.Int("paths", len(l.Paths)),
		zap.Int("duplicates", l.Duplicates))
	return l, nil
}

func (r *Reader) readLocal(ctx context.Context, location string, d *deduper) error {
	info, err := os.Stat(location)
	if err != nil {
		return fmt.Errorf("open listing: %w", err)
	}

	parts := []string{location}
	if info.IsDir() {
		parts, err = localParts(location)
		if err != nil {
			return err
		}
	}

	for _, part := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := readLocalPart(part, d); err != nil {
			return err
		}
		r.log.Debug("listing part read", zap.String(logging.KeyPath, part))
	}
	return nil
}

func readLocalPart(part string, d *deduper) error {
	f, err := os.Open(part)
	if err != nil {
		return fmt.Errorf("open listing part: %w", err)
	}
	defer f.Close()
	return readPart(part, f, d)
}

// localParts lists the visible regular files of dir in name order. Hidden
// and underscore-prefixed files (_SUCCESS and friends) are skipped.
func localParts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read listing dir: %w", err)
	}
	var parts []string
	for _, e := range entries {
		if !e.Type().IsRegular() || isHiddenPart(e.Name()) {
			continue
		}
		parts = append(parts, filepath.Join(dir, e.Name()))
	}
	sort.Strings(parts)
	return parts, nil
}

func isHiddenPart(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// readPart decompresses src according to name and feeds each line to d.
func readPart(name string, src io.Reader, d *deduper) error {
	rc, err := decompress(name, src)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", name, err)
	}
	defer rc.Close()

	if err := ScanLines(rc, d.add); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}

// ScanLines calls fn for every non-blank line of r, with any trailing
// carriage return removed.
func ScanLines(r io.Reader, fn func(string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fn(line)
	}
	return sc.Err()
}
