package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/bundlereport/pkg/config"
	"github.com/ccollicutt/bundlereport/pkg/output"
	"github.com/ccollicutt/bundlereport/pkg/source"
	"github.com/ccollicutt/bundlereport/pkg/webhook"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Config    string
	Output    string
	Sort      string
	Ascending bool
	Groups    []string
	MinSize   string
	Verbose   bool
	Quiet     bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <report-file>",
		Short: "Parse a build layout report",
		Long: `Parse a build layout report and list every group with its assets.

Groups are listed in the order they appear in the report. Assets are
sorted largest first unless --sort/--ascending say otherwise.

Exit codes:
  0 - Report parsed cleanly
  1 - Report parsed with issues (unknown units, malformed lines, no groups)
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file (YAML)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", config.DefaultOutput, "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Sort, "sort", config.DefaultSortField, "Sort assets by field (size|address)")
	cmd.Flags().BoolVar(&opts.Ascending, "ascending", false, "Sort ascending instead of descending")
	cmd.Flags().StringSliceVarP(&opts.Groups, "group", "g", nil, "Show only the named group(s) (can be repeated)")
	cmd.Flags().StringVar(&opts.MinSize, "min-size", "", "Hide assets smaller than this (e.g. 100KB)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show parse diagnostics and informational issues")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_issues", "When to fire webhook (on_issues|always|never)")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	reportPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ExitCode = 0

	cfg, err := loadConfig(ctx, opts.Config)
	if err != nil {
		return err
	}
	if err := applyParseFlags(cmd, cfg, opts); err != nil {
		return err
	}

	formatter, err := createFormatter(cfg.Output, opts)
	if err != nil {
		return err
	}

	text, err := source.Read(reportPath)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := newParser(cfg, opts.Verbose, cmd.ErrOrStderr()).ParseContext(ctx, text)
	if err != nil {
		return fmt.Errorf("parsing report: %w", err)
	}

	field := cfg.Sort.SortField()
	applySort(result, field, cfg.Sort.Ascending)

	for _, name := range cfg.Groups {
		if result.Group(name) == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: group %q not found in report\n", name)
		}
	}

	rpt := output.NewReport(result, reportPath, output.ReportOptions{
		Groups:   cfg.Groups,
		MinBytes: cfg.MinBytes(),
		Sort:     sortLabel(field, cfg.Sort.Ascending),
	})
	rpt.Metadata.ParsedAt = start
	rpt.Metadata.Duration = time.Since(start)

	if err := formatter.Format(ctx, rpt, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Webhook errors are logged but don't fail the parse
	sendWebhooks(ctx, cfg, opts, rpt, cmd.ErrOrStderr())

	if rpt.HasIssues() {
		ExitCode = 1
	}

	return nil
}

// applyParseFlags overrides config values with flags the user set, then
// re-validates.
func applyParseFlags(cmd *cobra.Command, cfg *config.Config, opts *ParseOptions) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = opts.Output
	}
	if flags.Changed("sort") {
		cfg.Sort.Field = opts.Sort
	}
	if flags.Changed("ascending") {
		cfg.Sort.Ascending = opts.Ascending
	}
	if flags.Changed("group") {
		cfg.Groups = opts.Groups
	}
	if flags.Changed("min-size") {
		cfg.MinSize = opts.MinSize
	}

	trigger, err := config.ParseWebhookTrigger(opts.WebhookTrigger)
	if err != nil {
		return fmt.Errorf("invalid options: --webhook-trigger: %w", err)
	}
	opts.WebhookTrigger = string(trigger)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

func createFormatter(format string, opts *ParseOptions) (output.Formatter, error) {
	return output.NewFormatter(format, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
}

// sendWebhooks sends the report to all configured webhooks.
// Errors are logged to stderr but don't fail the parse.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *ParseOptions, rpt *output.Report, stderr io.Writer) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		if !shouldFireWebhook(wh.Trigger, rpt.HasIssues()) {
			continue
		}

		resp := client.Send(ctx, rpt, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			fmt.Fprintf(stderr, "Webhook %s: sent (%d, %s)\n", name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(stderr, "Webhook %s: failed (%v)\n", name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *ParseOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger, err := config.ParseWebhookTrigger(opts.WebhookTrigger)
		if err != nil {
			trigger = config.WebhookTriggerOnIssues
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire based on trigger and issues.
func shouldFireWebhook(trigger config.WebhookTrigger, hasIssues bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasIssues
	}
}
