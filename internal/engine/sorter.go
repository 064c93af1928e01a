package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/soyunomas/dupescan/internal/entities"
)

// KeepStrategy decide qué miembro del grupo se reporta como representante
// (columna "name").
type KeepStrategy int

const (
	KeepShortestPath KeepStrategy = iota // Default
	KeepLongestPath
	KeepOldest
	KeepNewest
)

func (k KeepStrategy) String() string {
	switch k {
	case KeepLongestPath:
		return "longest"
	case KeepOldest:
		return "oldest"
	case KeepNewest:
		return "newest"
	default:
		return "shortest"
	}
}

// ParseKeepStrategy acepta shortest, longest, oldest o newest.
func ParseKeepStrategy(s string) (KeepStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shortest":
		return KeepShortestPath, nil
	case "longest":
		return KeepLongestPath, nil
	case "oldest":
		return KeepOldest, nil
	case "newest":
		return KeepNewest, nil
	default:
		return 0, fmt.Errorf("unknown keep strategy %q", s)
	}
}

// sortGroups organiza los miembros de cada grupo según la estrategia.
// El objetivo es que Members[0] sea el representante. El orden es
// totalmente determinista.
func sortGroups(groups []*entities.DuplicateGroup, strategy KeepStrategy) {
	for _, group := range groups {
		sort.SliceStable(group.Members, func(i, j int) bool {
			return keepBefore(group.Members[i], group.Members[j], strategy)
		})
	}
}

func keepBefore(f1, f2 *entities.FileRecord, strategy KeepStrategy) bool {
	switch strategy {
	case KeepShortestPath:
		// [0] debe ser el más corto
		if len(f1.Path) != len(f2.Path) {
			return len(f1.Path) < len(f2.Path)
		}

	case KeepLongestPath:
		// [0] debe ser el más largo
		if len(f1.Path) != len(f2.Path) {
			return len(f1.Path) > len(f2.Path)
		}

	case KeepOldest:
		// [0] debe ser el más viejo (mtime menor)
		if m1, m2 := mtime(f1), mtime(f2); !m1.Equal(m2) {
			return m1.Before(m2)
		}

	case KeepNewest:
		// [0] debe ser el más nuevo (mtime mayor)
		if m1, m2 := mtime(f1), mtime(f2); !m1.Equal(m2) {
			return m1.After(m2)
		}
	}

	// --- CRITERIOS DE DESEMPATE ---
	// 1. Longitud de ruta, en la dirección de la estrategia
	if len(f1.Path) != len(f2.Path) {
		if strategy == KeepLongestPath {
			return len(f1.Path) > len(f2.Path)
		}
		return len(f1.Path) < len(f2.Path)
	}
	// 2. Alfabético (último recurso)
	return f1.Path < f2.Path
}

func mtime(r *entities.FileRecord) time.Time {
	if r.Meta == nil {
		return time.Time{}
	}
	return r.Meta.Mtime
}
