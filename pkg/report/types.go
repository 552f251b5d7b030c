// Package report parses asset-bundle build layout reports into groups of
// sized entries.
package report

import (
	"github.com/ccollicutt/bundlereport/pkg/size"
)

// Group is one asset-bundle group declared in the report.
type Group struct {
	// Name is the group identifier as written. Not unique: duplicate
	// headers produce separate groups.
	Name string

	// BundleCount is the number of bundles the header reports.
	BundleCount int

	// Size and SizeUnit are the reported total size of the group.
	Size     float64
	SizeUnit string

	// ExplicitAssetCount is the count the header reports. It is not required
	// to match len(Entries).
	ExplicitAssetCount int

	// Entries holds the group's assets in their current sort order.
	Entries []*Entry

	// line is the 1-based line of the header in the parsed text.
	line int
}

// ByteSize returns the group's reported total size in bytes.
func (g *Group) ByteSize() (float64, error) {
	return size.ToBytes(g.Size, g.SizeUnit)
}

// Line returns the 1-based line on which the group header starts, or 0 for
// groups that were not produced by the parser.
func (g *Group) Line() int {
	return g.line
}

// Entry is one asset inside a group.
type Entry struct {
	// Address is the asset path as written, with tab characters removed.
	Address string

	// Size and SizeUnit are the reported size of the asset.
	Size     float64
	SizeUnit string

	// Line is the 1-based line of the asset in the parsed text.
	Line int
}

// ByteSize returns the entry size in bytes. It is computed on every call.
func (e *Entry) ByteSize() (float64, error) {
	return size.ToBytes(e.Size, e.SizeUnit)
}

// Result is the model produced by a single parse.
type Result struct {
	// Groups are in the order their headers appear in the text.
	Groups []*Group

	// Issues lists every non-fatal problem found while parsing.
	Issues []Issue

	// Selected is the default group selection: the last group, or -1 when
	// there are no groups.
	Selected int
}

// SelectedGroup returns the default selected group, or nil.
func (r *Result) SelectedGroup() *Group {
	if r.Selected < 0 || r.Selected >= len(r.Groups) {
		return nil
	}
	return r.Groups[r.Selected]
}

// Group returns the first group with the given name, or nil.
func (r *Result) Group(name string) *Group {
	for _, g := range r.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// TotalEntries returns the number of entries across all groups.
func (r *Result) TotalEntries() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Entries)
	}
	return n
}

// TotalBytes sums the byte size of every entry whose unit is known.
func (r *Result) TotalBytes() float64 {
	var total float64
	for _, g := range r.Groups {
		for _, e := range g.Entries {
			if b, err := e.ByteSize(); err == nil {
				total += b
			}
		}
	}
	return total
}

// HasIssues reports whether any non-informational issue was collected.
func (r *Result) HasIssues() bool {
	for _, issue := range r.Issues {
		if !issue.Informational() {
			return true
		}
	}
	return false
}

// IssueCount returns the number of non-informational issues.
func (r *Result) IssueCount() int {
	n := 0
	for _, issue := range r.Issues {
		if !issue.Informational() {
			n++
		}
	}
	return n
}
