package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortField selects the entry field used by Reorder.
type SortField int

const (
	// SortByByteSize compares normalized byte sizes numerically.
	SortByByteSize SortField = iota
	// SortByAddress compares addresses as ordinal strings.
	SortByAddress
)

func (f SortField) String() string {
	switch f {
	case SortByAddress:
		return "address"
	default:
		return "size"
	}
}

// ParseSortField maps a user-facing name to a SortField.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "size", "bytes", "byte_size":
		return SortByByteSize, nil
	case "address", "path":
		return SortByAddress, nil
	default:
		return 0, fmt.Errorf("invalid sort field %q (must be size or address)", s)
	}
}

type sizedEntry struct {
	entry *Entry
	bytes float64
	ok    bool
}

// Reorder sorts g's entries in place. The sort is stable, so equal keys keep
// their previous relative order. Entries whose size has an unknown unit are
// placed after all others regardless of direction.
func Reorder(g *Group, field SortField, ascending bool) {
	if g == nil || len(g.Entries) < 2 {
		return
	}

	if field == SortByAddress {
		slices.SortStableFunc(g.Entries, func(a, b *Entry) int {
			c := strings.Compare(a.Address, b.Address)
			if !ascending {
				c = -c
			}
			return c
		})
		return
	}

	keyed := make([]sizedEntry, len(g.Entries))
	for i, e := range g.Entries {
		b, err := e.ByteSize()
		keyed[i] = sizedEntry{entry: e, bytes: b, ok: err == nil}
	}

	slices.SortStableFunc(keyed, func(a, b sizedEntry) int {
		switch {
		case a.ok && !b.ok:
			return -1
		case !a.ok && b.ok:
			return 1
		case !a.ok && !b.ok:
			return 0
		}
		c := cmp.Compare(a.bytes, b.bytes)
		if !ascending {
			c = -c
		}
		return c
	})

	for i := range keyed {
		g.Entries[i] = keyed[i].entry
	}
}
