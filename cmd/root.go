package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/forage-assist/internal/app"
	"github.com/firefly-engineering/forage-assist/internal/logging"
	"github.com/firefly-engineering/forage-assist/internal/system"
)

var (
	verbose    bool
	logJSON    bool
	configPath string
	rootDir    string
)

var (
	// application is built from the persistent flags before any subcommand runs.
	application *app.App

	// executor replaces the real command executor when set (tests).
	executor system.CommandExecutor
)

var rootCmd = &cobra.Command{
	Use:   "forage-assist",
	Short: "Task routing, project detection and premortem analysis for coding assistants",
	Long: `forage-assist backs an AI coding assistant's commands and skills.

It can:
  - classify a task and pick the sub-agent and skills for it
  - detect a project's language, frameworks and tools
  - run a premortem: score planning questions, find documentation gaps,
    render reports and file issues for the gaps
  - wrap git, gh and rg for status, CI diagnosis and quality gates`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose, logJSON, os.Stderr)

		var opts []app.Option
		if executor != nil {
			opts = append(opts, app.WithExecutor(executor))
		}
		a, err := app.Load(rootDir, configPath, opts...)
		if err != nil {
			return err
		}
		application = a
		return nil
	},
}

// Execute runs the root command. Interrupts cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default <root>/.forage-assist.toml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
	logError   = logging.UserError
)
