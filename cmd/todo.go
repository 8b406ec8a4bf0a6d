package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/forage-assist/internal/errors"
	"github.com/firefly-engineering/forage-assist/internal/todo"
)

var (
	todoInput      string
	todoReviewMode string
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Build todo lists for the assistant's todo tool",
}

var todoCreateCmd = &cobra.Command{
	Use:   "create <task>...",
	Short: "Create a todo list from task descriptions, the first in progress",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTodoCreate,
}

var todoRefactorCmd = &cobra.Command{
	Use:   "refactor",
	Short: "Create todos from refactoring proposals",
	Args:  cobra.NoArgs,
	RunE:  runTodoRefactor,
}

var todoReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Create todos from code review issues",
	Args:  cobra.NoArgs,
	RunE:  runTodoReview,
}

func init() {
	for _, c := range []*cobra.Command{todoRefactorCmd, todoReviewCmd} {
		c.Flags().StringVar(&todoInput, "input", "", "JSON list of proposals or issues")
		_ = c.MarkFlagRequired("input")
	}
	todoReviewCmd.Flags().StringVar(&todoReviewMode, "mode", todo.ReviewDetailed, "Review mode: simple or detailed")

	todoCmd.AddCommand(todoCreateCmd)
	todoCmd.AddCommand(todoRefactorCmd)
	todoCmd.AddCommand(todoReviewCmd)
	rootCmd.AddCommand(todoCmd)
}

func runTodoCreate(cmd *cobra.Command, args []string) error {
	return writeJSON(cmd, "", todo.FromTasks(args))
}

// decodeInput reads --input as JSON into v.
func decodeInput(v any) error {
	data, err := readInput(todoInput)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.InvalidInputf("%s: %v", todoInput, err)
	}
	return nil
}

func runTodoRefactor(cmd *cobra.Command, args []string) error {
	var proposals []todo.Proposal
	if err := decodeInput(&proposals); err != nil {
		return err
	}
	return writeJSON(cmd, "", todo.Refactoring(proposals))
}

func runTodoReview(cmd *cobra.Command, args []string) error {
	if todoReviewMode != todo.ReviewSimple && todoReviewMode != todo.ReviewDetailed {
		return errors.InvalidInputf("--mode must be %q or %q, got %q", todo.ReviewSimple, todo.ReviewDetailed, todoReviewMode)
	}
	var issues []todo.ReviewIssue
	if err := decodeInput(&issues); err != nil {
		return err
	}
	return writeJSON(cmd, "", todo.Review(todoReviewMode, issues))
}
