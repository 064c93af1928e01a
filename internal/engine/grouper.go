package engine

import (
	"context"
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/soyunomas/dupescan/internal/entities"
)

// Tally is the partial grouping table built by one map task. It is owned by
// a single goroutine until it is handed to Merge.
type Tally struct {
	groups map[entities.GroupKey]*entities.DuplicateGroup
}

func NewTally() *Tally {
	return &Tally{groups: make(map[entities.GroupKey]*entities.DuplicateGroup)}
}

// Add records r under its (digest, size) key. Records lacking metadata or
// digest are ignored and Add reports false.
func (t *Tally) Add(r *entities.FileRecord) bool {
	if r == nil || !r.HasMeta() || !r.HasDigest() {
		return false
	}
	key := entities.GroupKey{Digest: r.Digest, Size: r.Meta.Size}
	g, ok := t.groups[key]
	if !ok {
		g = &entities.DuplicateGroup{Digest: key.Digest, Size: key.Size}
		t.groups[key] = g
	}
	g.Add(r)
	return true
}

// Len returns the number of distinct keys in the tally.
func (t *Tally) Len() int {
	return len(t.groups)
}

// Partition maps key onto one of n reduce partitions.
func Partition(key entities.GroupKey, n int) int {
	if n <= 1 {
		return 0
	}
	d := xxhash.New()
	_, _ = d.WriteString(key.Digest)
	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(key.Size))
	_, _ = d.Write(size[:])
	return int(d.Sum64() % uint64(n))
}

// Merge is the grouping barrier. Partial groups from every tally are routed
// to a reduce partition by key, each partition is reduced concurrently, and
// only keys with more than one member survive. The result is ordered by
// (digest, size) and members are ordered by path. Tallies are not modified.
func Merge(ctx context.Context, partials []*Tally, partitions int) ([]*entities.DuplicateGroup, error) {
	if partitions < 1 {
		partitions = 1
	}

	shuffled := make([][]*entities.DuplicateGroup, partitions)
	for _, t := range partials {
		if t == nil {
			continue
		}
		for key, g := range t.groups {
			i := Partition(key, partitions)
			shuffled[i] = append(shuffled[i], g)
		}
	}

	reduced := make([][]*entities.DuplicateGroup, partitions)
	eg, ctx := errgroup.WithContext(ctx)
	for i := range shuffled {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reduced[i] = reduce(shuffled[i])
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []*entities.DuplicateGroup
	for _, part := range reduced {
		out = append(out, part...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Digest != out[j].Digest {
			return out[i].Digest < out[j].Digest
		}
		return out[i].Size < out[j].Size
	})
	return out, nil
}

// reduce merges the partial groups of one partition by key.
func reduce(parts []*entities.DuplicateGroup) []*entities.DuplicateGroup {
	merged := make(map[entities.GroupKey]*entities.DuplicateGroup)
	for _, p := range parts {
		key := p.Key()
		g, ok := merged[key]
		if !ok {
			g = &entities.DuplicateGroup{Digest: key.Digest, Size: key.Size}
			merged[key] = g
		}
		for _, m := range p.Members {
			g.Add(m)
		}
	}

	out := make([]*entities.DuplicateGroup, 0, len(merged))
	for _, g := range merged {
		if g.Count < 2 {
			continue
		}
		sort.Slice(g.Members, func(i, j int) bool {
			return g.Members[i].Path < g.Members[j].Path
		})
		out = append(out, g)
	}
	return out
}
