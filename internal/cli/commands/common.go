package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollicutt/bundlereport/pkg/config"
	"github.com/ccollicutt/bundlereport/pkg/report"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// loadConfig loads the config file at path, or the defaults when path is empty.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newParser builds a parser from config. Diagnostics go to diag when verbose.
func newParser(cfg *config.Config, verbose bool, diag io.Writer) *report.Parser {
	opts := []report.Option{report.WithMinIndent(cfg.Parser.AssetIndent)}
	if verbose {
		opts = append(opts, report.WithDiagnostics(diag))
	}
	return report.NewParser(opts...)
}

// applySort reorders every group unless the order is the parser default.
func applySort(result *report.Result, field report.SortField, ascending bool) {
	if field == report.SortByByteSize && !ascending {
		return
	}
	for _, g := range result.Groups {
		report.Reorder(g, field, ascending)
	}
}

func sortLabel(field report.SortField, ascending bool) string {
	if ascending {
		return field.String() + " asc"
	}
	return field.String() + " desc"
}
