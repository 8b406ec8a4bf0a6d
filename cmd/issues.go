package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/forage-assist/internal/config"
	"github.com/firefly-engineering/forage-assist/internal/errors"
	"github.com/firefly-engineering/forage-assist/internal/gap"
	"github.com/firefly-engineering/forage-assist/internal/issues"
	"github.com/firefly-engineering/forage-assist/internal/tui"
)

var (
	issuesGaps   string
	issuesMode   string
	issuesDryRun bool
	issuesNoTUI  bool
	issuesOutput string
)

var premortemIssuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Create tracker issues from a gap analysis",
	Long: `Create one issue per gap that still needs work.

Modes:
  all            every gap that is not covered
  critical_high  critical and high priority gaps that are not covered
  selective      pick gaps interactively (default)
  none           create nothing

Issues are filed with the gh CLI unless issues.backend is "api", which
uses the GitHub REST API with the token from issues.token_env.`,
	Args: cobra.NoArgs,
	RunE: runPremortemIssues,
}

func init() {
	premortemIssuesCmd.Flags().StringVar(&issuesGaps, "gaps", "", "Gap analysis result or session file (JSON or YAML)")
	premortemIssuesCmd.Flags().StringVar(&issuesMode, "mode", "", "Creation mode: all, critical_high, selective, none (default issues.mode)")
	premortemIssuesCmd.Flags().BoolVar(&issuesDryRun, "dry-run", false, "Print the issues without creating them")
	premortemIssuesCmd.Flags().BoolVar(&issuesNoTUI, "no-tui", false, "Use a line prompt instead of the full-screen picker in selective mode")
	premortemIssuesCmd.Flags().StringVarP(&issuesOutput, "output", "o", "", "Write the creation result as JSON to this file")
	_ = premortemIssuesCmd.MarkFlagRequired("gaps")

	premortemCmd.AddCommand(premortemIssuesCmd)
}

// gapChooser returns the full-screen picker on a terminal and the line
// prompt otherwise.
func gapChooser(cmd *cobra.Command) issues.Chooser {
	if !issuesNoTUI && isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()) {
		return tui.RunPicker
	}
	return tui.PromptChooser(cmd.InOrStdin(), cmd.ErrOrStderr())
}

func runPremortemIssues(cmd *cobra.Command, args []string) error {
	mode := issuesMode
	if mode == "" {
		mode = application.Config.Issues.Mode
	}
	if err := config.ValidateMode(mode); err != nil {
		return errors.InvalidInput(err.Error())
	}

	data, err := readInput(issuesGaps)
	if err != nil {
		return err
	}
	res, err := gap.ParseResult(data, filepath.Ext(issuesGaps))
	if err != nil {
		return errors.InvalidInputf("%s: %v", issuesGaps, err)
	}

	ctx := cmd.Context()
	tracker, err := application.Tracker(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if issuesDryRun {
		return issues.DryRun(out, issues.Filter(res.Gaps, mode), tracker)
	}

	selected, skipped, err := issues.Plan(res.Gaps, mode, gapChooser(cmd))
	if errors.Is(err, tui.ErrCancelled) {
		logWarning("Selection cancelled, no issues created")
		return nil
	}
	if err != nil {
		return errors.InvalidInput(err.Error())
	}

	fmt.Fprintf(out, "Creating issues in mode: %s\n\n", mode)
	result := issues.NewCreator(tracker, application.Config.Issues.CheckExisting).CreateAll(ctx, selected)
	result.Skipped = append(result.Skipped, skipped...)

	fmt.Fprintln(out, "\n=== Summary ===")
	fmt.Fprintf(out, "Created: %d issues\n", len(result.Created))
	fmt.Fprintf(out, "Skipped: %d\n", len(result.Skipped))
	fmt.Fprintf(out, "Errors: %d\n", len(result.Errors))
	if len(result.Created) > 0 {
		fmt.Fprintln(out, "\n✅ Created Issues:")
		for _, url := range result.Created {
			fmt.Fprintf(out, "  - %s\n", url)
		}
	}
	if len(result.Errors) > 0 {
		fmt.Fprintln(out, "\n❌ Failed Issues:")
		for _, id := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", id)
		}
	}

	if issuesOutput != "" {
		if err := writeJSON(cmd, issuesOutput, result); err != nil {
			return err
		}
	}

	if len(result.Errors) > 0 {
		return errors.PartialFailure(len(result.Errors), len(selected))
	}
	return nil
}
