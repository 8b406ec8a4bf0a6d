package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/forage-assist/internal/errors"
	"github.com/firefly-engineering/forage-assist/internal/project"
	"github.com/firefly-engineering/forage-assist/internal/quality"
)

var (
	qualityTypeCheck      bool
	qualityLint           bool
	qualityTest           bool
	qualityBuild          bool
	qualityFix            bool
	qualityFiles          string
	qualityPackageManager string
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Run project quality gates",
}

var qualityRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run type check, lint, test and build gates, stopping at the first failure",
	Long: `Run the selected quality gates in order: type check, lint, test, build.

Each gate tries the package scripts and common tools in turn and is skipped
when none applies. The run stops at the first failing gate and exits 1.
Progress goes to stderr; the JSON report goes to stdout.`,
	Args: cobra.NoArgs,
	RunE: runQuality,
}

func init() {
	defaults := quality.DefaultOptions()
	qualityRunCmd.Flags().BoolVar(&qualityTypeCheck, "typecheck", defaults.TypeCheck, "Run the type check gate")
	qualityRunCmd.Flags().BoolVar(&qualityLint, "lint", defaults.Lint, "Run the lint gate")
	qualityRunCmd.Flags().BoolVar(&qualityTest, "test", defaults.Test, "Run the test gate")
	qualityRunCmd.Flags().BoolVar(&qualityBuild, "build", defaults.Build, "Run the build gate")
	qualityRunCmd.Flags().BoolVar(&qualityFix, "fix", false, "Let the linter fix what it can")
	qualityRunCmd.Flags().StringVar(&qualityFiles, "files", "", "Comma separated test files")
	qualityRunCmd.Flags().StringVar(&qualityPackageManager, "package-manager", "", "Prefer pnpm, npm or yarn commands (default: detected)")

	qualityCmd.AddCommand(qualityRunCmd)
	rootCmd.AddCommand(qualityCmd)
}

func runQuality(cmd *cobra.Command, args []string) error {
	restore := quietUserInfo(cmd)
	defer restore()

	pm := qualityPackageManager
	if pm == "" {
		pm = project.Detect(application.Root).PackageManager
	}

	report := application.Gates(pm).RunAll(cmd.Context(), quality.Options{
		TypeCheck: qualityTypeCheck,
		Lint:      qualityLint,
		Test:      qualityTest,
		Build:     qualityBuild,
		FixLint:   qualityFix,
		TestFiles: splitList(qualityFiles),
	})

	if err := writeJSON(cmd, "", report); err != nil {
		return err
	}
	if !report.Passed() {
		return errors.New(errors.ExitGeneralError, "quality gates failed")
	}
	return nil
}
