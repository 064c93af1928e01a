// Package probe collects per-file metadata without following symbolic links.
//
// A failed probe is never fatal: Probe logs the cause and returns nil, and the
// caller drops the record.
package probe

import (
	"errors"

	"go.uber.org/zap"

	"github.com/soyunomas/dupescan/internal/entities"
	"github.com/soyunomas/dupescan/internal/logging"
)

// ErrSymlink is returned by Lookup for symbolic links, which are never followed.
var ErrSymlink = errors.New("path is a symbolic link")

type Prober struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Prober {
	return &Prober{log: logging.Component(log, "probe")}
}

// Lookup returns the lstat metadata of path.
func (p *Prober) Lookup(path string) (*entities.Metadata, error) {
	return lstat(path)
}

// Probe is Lookup with soft failure: symlinks and errors yield nil.
func (p *Prober) Probe(path string) *entities.Metadata {
	meta, err := p.Lookup(path)
	if err != nil {
		p.Report(path, err)
		return nil
	}
	return meta
}

// Report logs a Lookup failure for path. Symlinks are expected and only
// logged at debug level.
func (p *Prober) Report(path string, err error) {
	if errors.Is(err, ErrSymlink) {
		p.log.Debug("skipping symlink", zap.String(logging.KeyPath, path))
		return
	}
	p.log.Warn("error reading metadata", zap.String(logging.KeyPath, path), zap.Error(err))
}
