package output

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollicutt/bundlereport/pkg/report"
)

// Formatter renders a parse Report.
type Formatter interface {
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the value accepted by NewFormatter.
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose keeps informational issues and adds timing to text output.
	Verbose bool

	// Quiet reduces output to the summary.
	Quiet bool
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", name)
	}
}

// visibleIssues filters out informational issues unless verbose is set.
// The result is never nil.
func visibleIssues(issues []report.Issue, verbose bool) []report.Issue {
	shown := make([]report.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.Informational() && !verbose {
			continue
		}
		shown = append(shown, issue)
	}
	return shown
}
