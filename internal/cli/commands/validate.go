package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/bundlereport/pkg/config"
	"github.com/ccollicutt/bundlereport/pkg/size"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a bundlereport configuration file without parsing a report.

Checks:
  - YAML syntax
  - Sort field and output format
  - Minimum size and its unit
  - Webhook URLs and triggers`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()
	ExitCode = 0

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	order := "descending"
	if cfg.Sort.Ascending {
		order = "ascending"
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Sort:         %s (%s)\n", cfg.Sort.SortField(), order)
	fmt.Fprintf(w, "  Output:       %s\n", cfg.Output)
	fmt.Fprintf(w, "  Asset indent: %d tab(s)\n", cfg.Parser.AssetIndent)
	fmt.Fprintf(w, "  History:      %s\n", cfg.History.Path)
	if cfg.MinSize != "" {
		fmt.Fprintf(w, "  Min size:     %s (%s)\n", cfg.MinSize, size.Format(cfg.MinBytes()))
	}
	if len(cfg.Groups) > 0 {
		fmt.Fprintf(w, "  Groups:       %s\n", strings.Join(cfg.Groups, ", "))
	}

	if len(cfg.Webhooks) > 0 {
		fmt.Fprintf(w, "\nWebhooks:\n")
		for i, wh := range cfg.Webhooks {
			fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, wh.Trigger, wh.Name)
		}
	}

	return nil
}
