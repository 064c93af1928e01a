// Package report renders ranked duplicate groups as CSV, JSON or YAML.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soyunomas/dupescan/internal/engine"
	"github.com/soyunomas/dupescan/internal/entities"
)

// TimeLayout renders the st_*time columns.
const TimeLayout = "2006-01-02 15:04:05"

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat maps a format name to a Format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return CSV, nil
	case CSV, JSON, YAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Metadata describes the run that produced a report.
type Metadata struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Input     string    `json:"input_folder" yaml:"input_folder"`
	Algorithm string    `json:"hash_algorithm" yaml:"hash_algorithm"`
	MinSize   int64     `json:"min_size" yaml:"min_size"`
	Keep      string    `json:"keep" yaml:"keep"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Duration  string    `json:"duration_human" yaml:"duration_human"`
}

type Summary struct {
	Candidates       int64  `json:"candidates" yaml:"candidates"`
	Hashed           int64  `json:"hashed" yaml:"hashed"`
	Symlinks         int64  `json:"symlinks" yaml:"symlinks"`
	ProbeFailures    int64  `json:"probe_failures" yaml:"probe_failures"`
	BelowMinSize     int64  `json:"below_min_size" yaml:"below_min_size"`
	HashFailures     int64  `json:"hash_failures" yaml:"hash_failures"`
	Groups           int    `json:"groups" yaml:"groups"`
	DuplicateFiles   int64  `json:"duplicate_files" yaml:"duplicate_files"`
	WastedBytes      int64  `json:"wasted_bytes" yaml:"wasted_bytes"`
	WastedBytesHuman string `json:"wasted_bytes_human" yaml:"wasted_bytes_human"`
}

// Report is the document written by the JSON and YAML sinks. The CSV sink
// writes only Groups.
type Report struct {
	Metadata Metadata                   `json:"metadata" yaml:"metadata"`
	Summary  Summary                    `json:"summary" yaml:"summary"`
	Groups   []*entities.DuplicateGroup `json:"groups" yaml:"groups"`
}

// Build assembles a Report from the statistics of a finished run.
func Build(meta Metadata, st *engine.Stats) *Report {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Duration = st.Duration.Round(time.Millisecond).String()

	groups := st.Groups
	if groups == nil {
		groups = []*entities.DuplicateGroup{}
	}
	return &Report{
		Metadata: meta,
		Summary: Summary{
			Candidates:       st.Candidates,
			Hashed:           st.Hashed,
			Symlinks:         st.Symlinks,
			ProbeFailures:    st.ProbeFailures,
			BelowMinSize:     st.BelowMinSize,
			HashFailures:     st.HashFailures,
			Groups:           len(st.Groups),
			DuplicateFiles:   st.DuplicateFiles,
			WastedBytes:      st.WastedBytes,
			WastedBytesHuman: humanize.Bytes(uint64(max(st.WastedBytes, 0))),
		},
		Groups: groups,
	}
}

// Options tune rendering.
type Options struct {
	Location *time.Location // for CSV timestamps; defaults to time.Local
}

// Write renders r to w in format f.
func Write(w io.Writer, f Format, r *Report, opts Options) error {
	switch f {
	case CSV, "":
		return writeCSV(w, r.Groups, opts)
	case JSON:
		return writeJSON(w, r)
	case YAML:
		return writeYAML(w, r)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// WriteFile renders r into path. The file is written next to its final name
// and renamed into place, so a failed run never leaves a partial report.
func WriteFile(path string, f Format, r *Report, opts Options) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, f, r, opts); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}
