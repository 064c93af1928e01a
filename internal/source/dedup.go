package source

// Dedup returns the distinct entries of paths in first-occurrence order.
// Applying it twice yields the same result as applying it once.
func Dedup(paths []string) []string {
	d := newDeduper()
	for _, p := range paths {
		d.add(p)
	}
	return d.paths
}

type deduper struct {
	seen  map[string]struct{}
	paths []string
	lines int
}

func newDeduper() *deduper {
	return &deduper{seen: make(map[string]struct{})}
}

func (d *deduper) add(p string) {
	d.lines++
	if _, ok := d.seen[p]; ok {
		return
	}
	d.seen[p] = struct{}{}
	d.paths = append(d.paths, p)
}

func (d *deduper) listing() *Listing {
	return &Listing{
		Paths:      d.paths,
		Lines:      d.lines,
		Duplicates: d.lines - len(d.paths),
	}
}
