package quality

import (
	"context"

	"github.com/firefly-engineering/forage-assist/internal/logging"
)

// Gate names used as keys of a Report.
const (
	GateTypeCheck = "type_check"
	GateLint      = "lint"
	GateTest      = "test"
	GateBuild     = "build"
)

// Options selects which gates RunAll runs.
type Options struct {
	TypeCheck bool
	Lint      bool
	Test      bool
	Build     bool
	FixLint   bool
	TestFiles []string
}

// DefaultOptions runs type check, lint and tests but not the build.
func DefaultOptions() Options {
	return Options{TypeCheck: true, Lint: true, Test: true}
}

// Report maps gate names to their results. Gates after the first failure
// are absent.
type Report map[string]*Result

// Passed reports whether every gate that ran succeeded.
func (r Report) Passed() bool {
	for _, res := range r {
		if !res.Success {
			return false
		}
	}
	return true
}

// RunAll runs the selected gates in order, stopping at the first failure.
// Progress is written through the user-output logger.
func (g *Gates) RunAll(ctx context.Context, opts Options) Report {
	report := Report{}

	if opts.TypeCheck {
		logging.UserInfo("Type checking...")
		r := g.TypeCheck(ctx)
		report[GateTypeCheck] = r
		if !r.Success {
			logging.UserError("Type check failed (%d errors)", r.ErrorCount)
			return report
		}
		logging.UserSuccess("Type check passed")
	}

	if opts.Lint {
		logging.UserInfo("Linting...")
		r := g.Lint(ctx, opts.FixLint)
		report[GateLint] = r
		if !r.Success {
			logging.UserError("Lint failed (%d errors, %d warnings)", r.ErrorCount, r.WarningCount)
			return report
		}
		logging.UserSuccess("Lint passed")
	}

	if opts.Test {
		logging.UserInfo("Testing...")
		r := g.Test(ctx, opts.TestFiles)
		report[GateTest] = r
		if !r.Success {
			logging.UserError("Tests failed")
			return report
		}
		logging.UserSuccess("Tests passed")
	}

	if opts.Build {
		logging.UserInfo("Building...")
		r := g.Build(ctx)
		report[GateBuild] = r
		if !r.Success {
			logging.UserError("Build failed")
			return report
		}
		logging.UserSuccess("Build passed")
	}

	return report
}

// ValidateChanges runs type check, lint and optionally tests, and reports
// whether all of them passed.
func (g *Gates) ValidateChanges(ctx context.Context, runTests bool) bool {
	opts := DefaultOptions()
	opts.Test = runTests
	return g.RunAll(ctx, opts).Passed()
}
