package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/bundlereport/pkg/output"
	"github.com/ccollicutt/bundlereport/pkg/report"
	"github.com/ccollicutt/bundlereport/pkg/size"
	"github.com/ccollicutt/bundlereport/pkg/store"
)

// HistoryOptions holds command-line options for the history command.
type HistoryOptions struct {
	Config string
	DB     string
	Limit  int
	Asset  string
	ID     int64
	Delete int64
	Output string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show parses stored in the history database",
		Long: `Show parses stored in the history database by the export command.

Without flags the most recent parses are listed. Use --asset to follow one
asset address across builds, or --id to print a stored parse in full.
--delete removes a stored parse with its groups, assets and issues.

Examples:
  bundlereport history --limit 5
  bundlereport history --asset Assets/Textures/hero.png
  bundlereport history --id 3 -o json
  bundlereport history --delete 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file (YAML)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "History database path (default from config)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum rows to show (0 for all)")
	cmd.Flags().StringVar(&opts.Asset, "asset", "", "Show the size history of one asset address")
	cmd.Flags().Int64Var(&opts.ID, "id", 0, "Show one stored parse in full")
	cmd.Flags().Int64Var(&opts.Delete, "delete", 0, "Delete one stored parse")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ExitCode = 0

	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	cfg, err := loadConfig(ctx, opts.Config)
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

	w := cmd.OutOrStdout()
	switch {
	case opts.Delete != 0:
		if err := db.DeleteParse(ctx, opts.Delete); err != nil {
			return err
		}
		fmt.Fprintf(w, "Deleted parse #%d from %s\n", opts.Delete, dbPath)
		return nil
	case opts.ID != 0:
		return showParse(ctx, db, opts, w)
	case opts.Asset != "":
		return showAsset(ctx, db, opts, w)
	default:
		return listParses(ctx, db, opts, w)
	}
}

func listParses(ctx context.Context, db *store.DB, opts *HistoryOptions, w io.Writer) error {
	recs, err := db.ListParses(ctx, opts.Limit)
	if err != nil {
		return err
	}

	if opts.Output == "json" {
		return writeJSON(w, recs)
	}

	if len(recs) == 0 {
		fmt.Fprintln(w, "No stored parses")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPARSED\tGROUPS\tASSETS\tTOTAL\tISSUES\tLABEL\tSOURCE")
	for _, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%d\t%s\t%s\n",
			r.ID, r.ParsedAt.Local().Format("2006-01-02 15:04:05"), r.GroupCount, r.EntryCount,
			size.Format(r.TotalBytes), r.IssueCount, r.Label, r.Source)
	}
	return tw.Flush()
}

func showAsset(ctx context.Context, db *store.DB, opts *HistoryOptions, w io.Writer) error {
	sizes, err := db.AssetHistory(ctx, opts.Asset, opts.Limit)
	if err != nil {
		return err
	}

	if opts.Output == "json" {
		return writeJSON(w, sizes)
	}

	if len(sizes) == 0 {
		fmt.Fprintf(w, "No history for %s\n", opts.Asset)
		return nil
	}

	fmt.Fprintf(w, "History for %s\n", opts.Asset)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARSE\tPARSED\tGROUP\tSIZE\tBYTES")
	for _, s := range sizes {
		bytes := "unknown unit"
		if s.ByteSize != nil {
			bytes = size.Format(*s.ByteSize)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			s.ParseID, s.ParsedAt.Local().Format("2006-01-02 15:04:05"), s.Group,
			size.FormatReported(s.Size, s.SizeUnit), bytes)
	}
	return tw.Flush()
}

func showParse(ctx context.Context, db *store.DB, opts *HistoryOptions, w io.Writer) error {
	rec, err := db.GetParse(ctx, opts.ID)
	if err != nil {
		return err
	}

	groups, err := db.LoadGroups(ctx, rec.ID)
	if err != nil {
		return err
	}

	issues, err := db.LoadIssues(ctx, rec.ID)
	if err != nil {
		return err
	}

	result := &report.Result{Groups: groups, Issues: issues, Selected: len(groups) - 1}
	rpt := output.NewReport(result, rec.Source, output.ReportOptions{Sort: "stored"})
	rpt.Metadata.ParsedAt = rec.ParsedAt

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{})
	if err != nil {
		return err
	}
	return formatter.Format(ctx, rpt, w)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
