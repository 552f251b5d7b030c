package output

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollicutt/bundlereport/pkg/report"
	"github.com/ccollicutt/bundlereport/pkg/size"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "bundlereport: %d groups, %d assets, %s, %d issues\n",
		report.Summary.Groups,
		report.Summary.Entries,
		size.Format(report.Summary.TotalBytes),
		report.Summary.Issues)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "=== Bundle Report: %s ===\n", report.Metadata.Source)
	fmt.Fprintln(w)

	for i := range report.Groups {
		f.formatGroup(&report.Groups[i], w)
	}

	f.formatIssues(report.Issues, w)

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d groups, %d assets, %s total, %d issues\n",
		report.Summary.Groups,
		report.Summary.Entries,
		size.Format(report.Summary.TotalBytes),
		report.Summary.Issues)

	if report.Summary.Selected != "" {
		fmt.Fprintf(w, "Selected: %s\n", report.Summary.Selected)
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "Sort: %s\n", report.Metadata.Sort)
		_, err := fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e3))
		return err
	}

	return nil
}

func (f *TextFormatter) formatGroup(g *GroupView, w io.Writer) {
	fmt.Fprintf(w, "[GROUP] %s\n", g.Name)

	total := size.FormatReported(g.Size, g.SizeUnit)
	if g.ByteSize == nil {
		total += " (unknown unit)"
	}
	fmt.Fprintf(w, "  Bundles: %d, Total Size: %s, Explicit Assets: %d, Parsed: %d\n",
		g.BundleCount, total, g.ExplicitAssetCount, len(g.Entries)+g.Hidden)

	if len(g.Entries) == 0 && g.Hidden == 0 {
		fmt.Fprintln(w, "  No assets")
		fmt.Fprintln(w)
		return
	}

	for _, e := range g.Entries {
		reported := size.FormatReported(e.Size, e.SizeUnit)
		if e.ByteSize == nil {
			fmt.Fprintf(w, "  %12s  %s (unknown unit)\n", reported, e.Address)
			continue
		}
		fmt.Fprintf(w, "  %12s  %s\n", reported, e.Address)
	}

	if g.Hidden > 0 {
		fmt.Fprintf(w, "  ... %d smaller asset(s) hidden\n", g.Hidden)
	}

	fmt.Fprintln(w)
}

func (f *TextFormatter) formatIssues(issues []report.Issue, w io.Writer) {
	shown := visibleIssues(issues, f.opts.Verbose)
	if len(shown) == 0 {
		return
	}

	fmt.Fprintf(w, "Issues: %d\n", len(shown))
	for _, issue := range shown {
		fmt.Fprintf(w, "  - [%s] %s\n", issue.Kind, issue.Error())
	}
	fmt.Fprintln(w)
}
