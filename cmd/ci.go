package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/forage-assist/internal/ci"
	"github.com/firefly-engineering/forage-assist/internal/errors"
)

var (
	ciPR         int
	ciFailedOnly bool
)

var ciCmd = &cobra.Command{
	Use:   "ci",
	Short: "Inspect pull request checks with the gh CLI",
}

var ciChecksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List the checks of a pull request",
	Args:  cobra.NoArgs,
	RunE:  runCIChecks,
}

var ciAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify failed checks and suggest fix strategies",
	Args:  cobra.NoArgs,
	RunE:  runCIAnalyze,
}

var ciLogsCmd = &cobra.Command{
	Use:   "logs <run-id>",
	Short: "Print the log of a workflow run",
	Args:  cobra.ExactArgs(1),
	RunE:  runCILogs,
}

func init() {
	for _, c := range []*cobra.Command{ciChecksCmd, ciAnalyzeCmd} {
		c.Flags().IntVar(&ciPR, "pr", 0, "Pull request number (default: the current branch's PR)")
	}
	ciChecksCmd.Flags().BoolVar(&ciFailedOnly, "failed", false, "Only list failed checks")

	ciCmd.AddCommand(ciChecksCmd)
	ciCmd.AddCommand(ciAnalyzeCmd)
	ciCmd.AddCommand(ciLogsCmd)
	rootCmd.AddCommand(ciCmd)
}

// resolvePR returns --pr, or asks gh for the current branch's pull request.
func resolvePR(ctx context.Context) (int, error) {
	if ciPR > 0 {
		return ciPR, nil
	}
	if ciPR < 0 {
		return 0, errors.InvalidInputf("--pr must be positive, got %d", ciPR)
	}
	pr, ok := application.Repo().CurrentPRNumber(ctx)
	if !ok {
		return 0, errors.InvalidInput("no pull request found for the current branch; pass --pr")
	}
	return pr, nil
}

func runCIChecks(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	pr, err := resolvePR(ctx)
	if err != nil {
		return err
	}

	client := application.CI()
	var checks []ci.Check
	if ciFailedOnly {
		checks = client.FailedChecks(ctx, pr)
	} else {
		checks = client.PRChecks(ctx, pr)
	}
	return writeJSON(cmd, "", checks)
}

func runCIAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	pr, err := resolvePR(ctx)
	if err != nil {
		return err
	}

	analyses := application.CI().AnalyzeFailures(ctx, pr)
	if len(analyses) == 0 {
		logSuccess("No failed checks on #%d", pr)
	}
	return writeJSON(cmd, "", analyses)
}

func runCILogs(cmd *cobra.Command, args []string) error {
	log := application.CI().RunLogs(cmd.Context(), args[0])
	if log == "" {
		logWarning("No log available for run %s", args[0])
		return nil
	}
	return writeOutput(cmd, "", log)
}
