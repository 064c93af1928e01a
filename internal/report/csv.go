package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/soyunomas/dupescan/internal/entities"
)

// Columns is the CSV header. name and the st_* columns describe the
// representative member of each group.
var Columns = []string{
	"name", "hash", "st_size", "count", "members", "wasted_space",
	"st_mode", "st_ino", "st_nlink", "st_uid", "st_gid",
	"st_atime", "st_mtime", "st_ctime",
}

func writeCSV(w io.Writer, groups []*entities.DuplicateGroup, opts Options) error {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, g := range groups {
		if err := cw.Write(csvRow(g, loc)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(g *entities.DuplicateGroup, loc *time.Location) []string {
	row := make([]string, 0, len(Columns))
	var name string
	var meta *entities.Metadata
	if rep := g.Representative(); rep != nil {
		name, meta = rep.Path, rep.Meta
	}
	row = append(row,
		name,
		g.Digest,
		strconv.FormatInt(g.Size, 10),
		strconv.FormatInt(g.Count, 10),
		EncodeMembers(g.Paths()),
		strconv.FormatInt(g.WastedSpace, 10),
	)

	if meta == nil {
		return append(row, make([]string, 8)...)
	}
	return append(row,
		strconv.FormatUint(uint64(meta.Mode), 10),
		strconv.FormatUint(meta.Inode, 10),
		strconv.FormatUint(meta.Nlink, 10),
		strconv.FormatUint(uint64(meta.UID), 10),
		strconv.FormatUint(uint64(meta.GID), 10),
		formatTime(meta.Atime, loc),
		formatTime(meta.Mtime, loc),
		formatTime(meta.Ctime, loc),
	)
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(TimeLayout)
}
