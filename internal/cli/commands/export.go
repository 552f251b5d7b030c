package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/bundlereport/pkg/report"
	"github.com/ccollicutt/bundlereport/pkg/size"
	"github.com/ccollicutt/bundlereport/pkg/source"
	"github.com/ccollicutt/bundlereport/pkg/store"
)

// ExportOptions holds command-line options for the export command.
type ExportOptions struct {
	Config  string
	DB      string
	Label   string
	Verbose bool
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export <report-file>...",
		Short: "Parse build layout reports and store them in the history database",
		Long: `Parse build layout reports and store every group, asset and issue in
a SQLite history database, so sizes can be compared across builds.

Each file is stored as its own parse. Glob patterns are expanded and
files are stored in sorted path order.

Examples:
  # Store a report in the default database
  bundlereport export BuildLayout.txt --label "release 1.4"

  # Store every archived build in a specific database
  bundlereport export 'builds/*/BuildLayout.txt' --db ./reports/history.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file (YAML)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "History database path (default from config)")
	cmd.Flags().StringVarP(&opts.Label, "label", "l", "", "Label to store with each parse")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show parse diagnostics")

	return cmd
}

func runExport(cmd *cobra.Command, args []string, opts *ExportOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ExitCode = 0

	cfg, err := loadConfig(ctx, opts.Config)
	if err != nil {
		return err
	}

	files, err := source.ExpandGlobs(args)
	if err != nil {
		return err
	}

	dbPath := opts.DB
	if dbPath == "" {
		dbPath = cfg.History.Path
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	parser := newParser(cfg, opts.Verbose, cmd.ErrOrStderr())

	for _, reportPath := range files {
		rec, err := exportFile(ctx, db, parser, reportPath, opts.Label)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Stored parse #%d (%d groups, %d assets, %s) from %s in %s\n",
			rec.ID, rec.GroupCount, rec.EntryCount, size.Format(rec.TotalBytes), reportPath, dbPath)
		if rec.IssueCount > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %d issue(s) found while parsing %s\n", rec.IssueCount, reportPath)
			ExitCode = 1
		}
	}

	return nil
}

func exportFile(ctx context.Context, db *store.DB, parser *report.Parser, path, label string) (*store.ParseRecord, error) {
	text, err := source.Read(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := parser.ParseContext(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return db.SaveResult(ctx, result, store.SaveOptions{
		Label:    label,
		Source:   path,
		ParsedAt: start,
	})
}
