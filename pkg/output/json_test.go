package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ccollicutt/bundlereport/pkg/report"
)

func TestNewJSONFormatter(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewJSONFormatter() returned nil")
	}
	if f.Name() != "json" {
		t.Errorf("Name() = %q, want %q", f.Name(), "json")
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	r := NewReport(parseTestReport(t), "layout.txt", ReportOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), r, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed Report
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if len(parsed.Groups) != 2 {
		t.Fatalf("len(Groups) = %d, want 2", len(parsed.Groups))
	}
	first := parsed.Groups[0].Entries[0]
	if first.Address != "Assets/b.png" || first.ByteSize == nil || *first.ByteSize != 1000000 {
		t.Errorf("first entry = %+v, want Assets/b.png with 1000000 bytes", first)
	}
	if len(parsed.Issues) != 2 || parsed.Issues[0].Kind != report.IssueUnknownUnit {
		t.Errorf("Issues = %+v, want two unknown_unit issues", parsed.Issues)
	}
}

func TestJSONFormatter_Format_FieldNames(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	r := NewReport(parseTestReport(t), "layout.txt", ReportOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), r, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	for _, key := range []string{"summary", "groups", "issues", "metadata"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
	group := raw["groups"].([]any)[0].(map[string]any)
	for _, key := range []string{"name", "bundle_count", "size", "size_unit", "byte_size", "explicit_asset_count", "entries"} {
		if _, ok := group[key]; !ok {
			t.Errorf("missing group key %q", key)
		}
	}
}

func TestJSONFormatter_Format_Quiet(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{Quiet: true})
	r := NewReport(parseTestReport(t), "layout.txt", ReportOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), r, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed Summary
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if parsed.Groups != 2 || parsed.Entries != 4 {
		t.Errorf("Summary = %+v, want 2 groups and 4 entries", parsed)
	}
}

func TestJSONFormatter_Format_Empty(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	r := NewReport(report.Parse(""), "empty.txt", ReportOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), r, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed Report
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if parsed.Groups == nil || len(parsed.Groups) != 0 {
		t.Errorf("Groups = %v, want empty array", parsed.Groups)
	}
}

func TestJSONFormatter_Format_InformationalIssues(t *testing.T) {
	// One unknown unit plus one count mismatch on group Short.
	text := testReportText + "\n" +
		"Group Short (Bundles: 1, Total Size: 1.00KB, Explicit Asset Count: 2)\n" +
		"\t\tAssets/one.png (Size: 1.00KB, x)"

	tests := []struct {
		name    string
		verbose bool
		want    []report.IssueKind
	}{
		{"default hides count mismatch", false, []report.IssueKind{report.IssueUnknownUnit, report.IssueUnknownUnit}},
		{"verbose keeps count mismatch", true, []report.IssueKind{report.IssueUnknownUnit, report.IssueUnknownUnit, report.IssueCountMismatch}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReport(report.Parse(text), "layout.txt", ReportOptions{})
			before := len(r.Issues)

			var buf bytes.Buffer
			if err := NewJSONFormatter(FormatOptions{Verbose: tt.verbose}).Format(context.Background(), r, &buf); err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			var parsed Report
			if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
				t.Fatalf("Output is not valid JSON: %v", err)
			}
			if len(parsed.Issues) != len(tt.want) {
				t.Fatalf("len(Issues) = %d, want %d: %+v", len(parsed.Issues), len(tt.want), parsed.Issues)
			}
			for i, kind := range tt.want {
				if parsed.Issues[i].Kind != kind {
					t.Errorf("Issues[%d].Kind = %q, want %q", i, parsed.Issues[i].Kind, kind)
				}
			}
			if parsed.Summary.Issues != 2 {
				t.Errorf("Summary.Issues = %d, want 2", parsed.Summary.Issues)
			}
			if len(r.Issues) != before {
				t.Errorf("report issues changed from %d to %d", before, len(r.Issues))
			}
		})
	}
}

func TestJSONFormatter_Format_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := NewJSONFormatter(FormatOptions{}).Format(ctx, NewReport(parseTestReport(t), "layout.txt", ReportOptions{}), &buf)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Format() error = %v, want context.Canceled", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes after cancellation", buf.Len())
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"yaml", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(tt.name, FormatOptions{})
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewFormatter(%q) expected error", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFormatter(%q) error = %v", tt.name, err)
			}
			if f.Name() != tt.name {
				t.Errorf("Name() = %q, want %q", f.Name(), tt.name)
			}
		})
	}
}
