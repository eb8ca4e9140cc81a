// Package memory holds map-backed repositories used by the "memory"
// database driver and by tests. Every store copies values on the way in and
// out, so callers never share state with the store.
package memory

import (
	"sort"
	"strings"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
)

// page sorts items by creation time and cuts out the requested page
func page[T any](items []T, filter shared.Filter, createdAt func(T) time.Time) []T {
	f := filter.Normalize()
	sort.SliceStable(items, func(i, j int) bool {
		if f.OrderDir == "asc" {
			return createdAt(items[i]).Before(createdAt(items[j]))
		}
		return createdAt(items[i]).After(createdAt(items[j]))
	})

	start := f.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + f.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// containsFold reports whether any of the values contains needle, ignoring case
func containsFold(needle string, values ...string) bool {
	needle = strings.ToLower(needle)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func stamp(e *shared.BaseEntity) {
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = now
	}
}
