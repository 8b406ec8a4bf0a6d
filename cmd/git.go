package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/forage-assist/internal/errors"
	"github.com/firefly-engineering/forage-assist/internal/git"
)

var (
	gitBase    string
	gitRecent  int
	gitMessage string
)

var gitCmd = &cobra.Command{
	Use:   "git",
	Short: "Git status, changed files and checkpoints",
}

var gitStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the work tree status as JSON",
	Args:  cobra.NoArgs,
	RunE:  runGitStatus,
}

var gitChangedCmd = &cobra.Command{
	Use:   "changed",
	Short: "List files changed against a base branch or in recent commits",
	Args:  cobra.NoArgs,
	RunE:  runGitChanged,
}

var gitCommitCmd = &cobra.Command{
	Use:   "commit [file]...",
	Short: "Stage the given files and commit",
	RunE:  runGitCommit,
}

var gitCheckpointCmd = &cobra.Command{
	Use:   "checkpoint <description>",
	Short: "Commit every pending change as a checkpoint",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGitCheckpoint,
}

var gitRollbackCmd = &cobra.Command{
	Use:   "rollback <hash>",
	Short: "Hard-reset the work tree to a commit",
	Args:  cobra.ExactArgs(1),
	RunE:  runGitRollback,
}

func init() {
	gitChangedCmd.Flags().StringVar(&gitBase, "base", "main", "Base branch to diff against")
	gitChangedCmd.Flags().IntVar(&gitRecent, "recent", 0, "List files of the last N commits instead")
	gitCommitCmd.Flags().StringVarP(&gitMessage, "message", "m", "", "Commit message")
	_ = gitCommitCmd.MarkFlagRequired("message")

	gitCmd.AddCommand(gitStatusCmd)
	gitCmd.AddCommand(gitChangedCmd)
	gitCmd.AddCommand(gitCommitCmd)
	gitCmd.AddCommand(gitCheckpointCmd)
	gitCmd.AddCommand(gitRollbackCmd)
	rootCmd.AddCommand(gitCmd)
}

func runGitStatus(cmd *cobra.Command, args []string) error {
	return writeJSON(cmd, "", application.Repo().Status(cmd.Context()))
}

func runGitChanged(cmd *cobra.Command, args []string) error {
	repo := application.Repo()
	if gitRecent > 0 {
		return writeJSON(cmd, "", repo.RecentCommitFiles(cmd.Context(), gitRecent))
	}
	return writeJSON(cmd, "", repo.ChangedFiles(cmd.Context(), gitBase))
}

// gitFailure maps git errors to exit codes: outside a repository is bad
// input, anything else a general failure.
func gitFailure(err error) error {
	if errors.Is(err, git.ErrNotRepository) {
		return errors.InvalidInput(err.Error())
	}
	return errors.Wrap(errors.ExitGeneralError, "git failed", err)
}

func runGitCommit(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(gitMessage) == "" {
		return errors.InvalidInput("commit message must not be empty")
	}
	if err := application.Repo().Commit(cmd.Context(), gitMessage, args...); err != nil {
		return gitFailure(err)
	}
	logSuccess("Committed: %s", gitMessage)
	return nil
}

func runGitCheckpoint(cmd *cobra.Command, args []string) error {
	cp, err := application.Repo().CreateCheckpoint(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return gitFailure(err)
	}
	return writeJSON(cmd, "", cp)
}

func runGitRollback(cmd *cobra.Command, args []string) error {
	if err := application.Repo().Rollback(cmd.Context(), args[0]); err != nil {
		return gitFailure(err)
	}
	logSuccess("Rolled back to %s", args[0])
	return nil
}
