package engine

import (
	"sort"

	"github.com/soyunomas/dupescan/internal/entities"
)

// WastedSpace is the number of bytes freed by keeping one of count copies.
func WastedSpace(size, count int64) int64 {
	if count < 2 || size < 0 {
		return 0
	}
	return size * (count - 1)
}

// Rank fills in WastedSpace and returns the groups ordered by it, largest
// first. Ties keep their input order. The input slice is not reordered.
func Rank(groups []*entities.DuplicateGroup) []*entities.DuplicateGroup {
	ranked := make([]*entities.DuplicateGroup, len(groups))
	copy(ranked, groups)

	for _, g := range ranked {
		g.WastedSpace = WastedSpace(g.Size, g.Count)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].WastedSpace > ranked[j].WastedSpace
	})
	return ranked
}
