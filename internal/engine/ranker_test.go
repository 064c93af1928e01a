package engine

import (
	"testing"

	"github.com/soyunomas/dupescan/internal/entities"
)

func TestWastedSpace(t *testing.T) {
	tests := []struct {
		size, count, want int64
	}{
		{5_000_000, 3, 10_000_000},
		{100, 2, 100},
		{0, 10, 0},
		{100, 1, 0},
		{100, 0, 0},
	}
	for _, tt := range tests {
		if got := WastedSpace(tt.size, tt.count); got != tt.want {
			t.Errorf("WastedSpace(%d, %d) = %d, want %d", tt.size, tt.count, got, tt.want)
		}
	}
}

func TestPassesSizeFilter(t *testing.T) {
	tests := []struct {
		name string
		meta *entities.Metadata
		want bool
	}{
		{"no metadata", nil, false},
		{"below", &entities.Metadata{Size: 1_999_999}, false},
		{"exactly min", &entities.Metadata{Size: DefaultMinSize}, false},
		{"above", &entities.Metadata{Size: DefaultMinSize + 1}, true},
	}
	for _, tt := range tests {
		if got := PassesSizeFilter(tt.meta, DefaultMinSize); got != tt.want {
			t.Errorf("%s: PassesSizeFilter = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func group(digest string, size, count int64) *entities.DuplicateGroup {
	g := &entities.DuplicateGroup{Digest: digest, Size: size}
	for i := int64(0); i < count; i++ {
		g.Add(&entities.FileRecord{Path: digest})
	}
	return g
}

func TestRankOrdersByWastedSpaceDescending(t *testing.T) {
	in := []*entities.DuplicateGroup{
		group("small", 10, 2),  // 10
		group("big", 1000, 3),  // 2000
		group("tie-a", 50, 3),  // 100
		group("mid", 500, 2),   // 500
		group("tie-b", 100, 2), // 100
	}

	ranked := Rank(in)
	want := []string{"big", "mid", "tie-a", "tie-b", "small"}
	for i, g := range ranked {
		if g.Digest != want[i] {
			t.Fatalf("rank %d = %s, want %s", i, g.Digest, want[i])
		}
		if g.WastedSpace != g.Size*(g.Count-1) || g.WastedSpace < 0 {
			t.Fatalf("%s: WastedSpace = %d", g.Digest, g.WastedSpace)
		}
		if i > 0 && ranked[i-1].WastedSpace < g.WastedSpace {
			t.Fatalf("not descending at %d", i)
		}
	}
	if in[0].Digest != "small" {
		t.Fatal("Rank reordered its input slice")
	}
}
