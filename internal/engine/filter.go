package engine

import "github.com/soyunomas/dupescan/internal/entities"

// DefaultMinSize is the library default size threshold in bytes.
const DefaultMinSize int64 = 2_000_000

// PassesSizeFilter reports whether a record with meta is worth hashing:
// metadata present and size strictly above minSize.
func PassesSizeFilter(meta *entities.Metadata, minSize int64) bool {
	return meta != nil && meta.Size > minSize
}
