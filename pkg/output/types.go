// Package output provides formatting and output generation for parsed build reports.
package output

import (
	"time"

	"github.com/ccollicutt/bundlereport/pkg/report"
)

// Report is the complete output of a parse, shaped for rendering.
type Report struct {
	Summary  Summary        `json:"summary"`
	Groups   []GroupView    `json:"groups"`
	Issues   []report.Issue `json:"issues"`
	Metadata Metadata       `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	// Groups is the number of groups in the report (after filtering).
	Groups int `json:"groups"`

	// Entries is the number of assets across the reported groups.
	Entries int `json:"entries"`

	// TotalBytes sums the known sizes of the reported entries.
	TotalBytes float64 `json:"total_bytes"`

	// Issues counts non-informational parse issues.
	Issues int `json:"issues"`

	// Selected names the default group selection, if any.
	Selected string `json:"selected,omitempty"`
}

// GroupView is a group as rendered.
type GroupView struct {
	Name               string      `json:"name"`
	BundleCount        int         `json:"bundle_count"`
	Size               float64     `json:"size"`
	SizeUnit           string      `json:"size_unit"`
	ByteSize           *float64    `json:"byte_size,omitempty"`
	ExplicitAssetCount int         `json:"explicit_asset_count"`
	Entries            []EntryView `json:"entries"`

	// Hidden is the number of entries dropped by the size filter.
	Hidden int `json:"hidden,omitempty"`
}

// EntryView is an entry as rendered.
type EntryView struct {
	Address  string   `json:"address"`
	Size     float64  `json:"size"`
	SizeUnit string   `json:"size_unit"`
	ByteSize *float64 `json:"byte_size,omitempty"`
}

// Metadata provides context about the parse run.
type Metadata struct {
	// Source is the path of the parsed report file.
	Source string `json:"source"`

	// Sort describes the entry order, e.g. "size desc".
	Sort string `json:"sort"`

	// ParsedAt is when the parse was performed.
	ParsedAt time.Time `json:"parsed_at"`

	// Duration is how long the parse took.
	Duration time.Duration `json:"duration"`
}

// ReportOptions selects what NewReport includes.
type ReportOptions struct {
	// Groups limits the report to the named groups. Empty means all.
	Groups []string

	// MinBytes hides entries smaller than this many bytes. Entries with an
	// unknown unit are never hidden.
	MinBytes float64

	// Sort is recorded in the metadata.
	Sort string
}

// NewReport builds a Report from a parse result.
func NewReport(result *report.Result, source string, opts ReportOptions) *Report {
	r := &Report{
		Groups: []GroupView{},
		Issues: result.Issues,
		Metadata: Metadata{
			Source: source,
			Sort:   opts.Sort,
		},
	}
	if r.Issues == nil {
		r.Issues = []report.Issue{}
	}

	var filter map[string]bool
	if len(opts.Groups) > 0 {
		filter = make(map[string]bool, len(opts.Groups))
		for _, name := range opts.Groups {
			filter[name] = true
		}
	}

	for _, g := range result.Groups {
		if filter != nil && !filter[g.Name] {
			continue
		}

		view := GroupView{
			Name:               g.Name,
			BundleCount:        g.BundleCount,
			Size:               g.Size,
			SizeUnit:           g.SizeUnit,
			ExplicitAssetCount: g.ExplicitAssetCount,
			Entries:            make([]EntryView, 0, len(g.Entries)),
		}
		if b, err := g.ByteSize(); err == nil {
			view.ByteSize = &b
		}

		for _, e := range g.Entries {
			ev := EntryView{
				Address:  e.Address,
				Size:     e.Size,
				SizeUnit: e.SizeUnit,
			}
			if b, err := e.ByteSize(); err == nil {
				if b < opts.MinBytes {
					view.Hidden++
					continue
				}
				ev.ByteSize = &b
				r.Summary.TotalBytes += b
			}
			view.Entries = append(view.Entries, ev)
		}

		r.Summary.Entries += len(view.Entries)
		r.Groups = append(r.Groups, view)
	}

	r.Summary.Groups = len(r.Groups)
	r.Summary.Issues = result.IssueCount()
	if g := result.SelectedGroup(); g != nil {
		r.Summary.Selected = g.Name
	}

	return r
}

// HasIssues returns true if the parse reported non-informational issues.
func (r *Report) HasIssues() bool {
	return r.Summary.Issues > 0
}
