package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/soyunomas/dupescan/internal/report"
	"github.com/soyunomas/dupescan/internal/source"
)

// printSummary writes the end-of-run overview, including every reason a
// candidate was left out of grouping.
func printSummary(w io.Writer, r *report.Report, l *source.Listing, output string) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	s := r.Summary
	fmt.Fprintln(w, "------------------------------------------------")
	bold.Fprintf(w, "Run %s finished in %s\n", r.Metadata.RunID, r.Metadata.Duration)
	fmt.Fprintf(w, "Listing: %d lines, %d distinct paths\n", l.Lines, len(l.Paths))
	fmt.Fprintf(w, "Hashed: %d files\n", s.Hashed)

	excluded := s.Symlinks + s.ProbeFailures + s.BelowMinSize + s.HashFailures
	if excluded > 0 {
		yellow.Fprintf(w, "Excluded: %d\n", excluded)
		fmt.Fprintf(w, "  symlinks:        %d\n", s.Symlinks)
		fmt.Fprintf(w, "  metadata errors: %d\n", s.ProbeFailures)
		fmt.Fprintf(w, "  below min size:  %d\n", s.BelowMinSize)
		fmt.Fprintf(w, "  read errors:     %d\n", s.HashFailures)
	}

	if s.Groups == 0 {
		green.Fprintln(w, "No duplicates found.")
	} else {
		fmt.Fprintf(w, "Duplicate groups: %d (%d redundant files)\n", s.Groups, s.DuplicateFiles)
		green.Fprintf(w, "Recoverable space: %s\n", humanize.IBytes(uint64(max(s.WastedBytes, 0))))
	}
	fmt.Fprintf(w, "Report: %s\n", output)
}
