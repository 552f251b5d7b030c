package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// JSONFormatter writes reports as indented JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns "json".
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format encodes the report, or only its summary when Quiet is set. The
// report itself is not modified.
func (f *JSONFormatter) Format(ctx context.Context, rpt *Report, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var v any = rpt.Summary
	if !f.opts.Quiet {
		shown := *rpt
		shown.Issues = visibleIssues(rpt.Issues, f.opts.Verbose)
		v = &shown
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
