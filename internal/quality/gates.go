// Package quality runs the project's type-check, lint, test and build
// commands as quality gates.
//
// Each gate tries a list of candidate commands and keeps the first one whose
// output shows it actually ran. When no candidate applies the gate is
// reported as skipped and successful.
package quality

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/firefly-engineering/forage-assist/internal/logging"
	"github.com/firefly-engineering/forage-assist/internal/system"
)

// Result is the outcome of one gate.
type Result struct {
	Success      bool   `json:"success"`
	Command      string `json:"command"`
	Stdout       string `json:"stdout"`
	Stderr       string `json:"stderr"`
	ErrorCount   int    `json:"error_count"`
	WarningCount int    `json:"warning_count"`
	Skipped      bool   `json:"skipped,omitempty"`
}

func (r *Result) combined() string {
	return r.Stdout + r.Stderr
}

func skipped(command, label string) *Result {
	return &Result{
		Success: true,
		Command: command,
		Stdout:  label + " skipped (no suitable command found)",
		Skipped: true,
	}
}

// Gates runs quality commands in a project root.
type Gates struct {
	root           string
	exec           system.CommandExecutor
	packageManager string
}

// Option configures Gates.
type Option func(*Gates)

// WithExecutor sets the command executor.
func WithExecutor(exec system.CommandExecutor) Option {
	return func(g *Gates) {
		g.exec = exec
	}
}

// WithPackageManager moves candidates using pm (pnpm, npm or yarn) to the
// front of every gate's command list.
func WithPackageManager(pm string) Option {
	return func(g *Gates) {
		g.packageManager = pm
	}
}

// New creates Gates for root.
func New(root string, opts ...Option) *Gates {
	g := &Gates{root: root, exec: system.DefaultExecutor()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// run executes argv. A command that cannot be started returns nil.
func (g *Gates) run(ctx context.Context, argv []string) *Result {
	res, err := g.exec.Run(ctx, system.Command{Name: argv[0], Args: argv[1:], Dir: g.root})
	if err != nil {
		logging.Debug("quality command unavailable", "cmd", argv[0], "error", err)
		return nil
	}
	return &Result{
		Success: res.Success(),
		Command: logging.QuoteCommand(argv[0], argv[1:]...),
		Stdout:  res.Stdout,
		Stderr:  res.Stderr,
	}
}

// first runs candidates in order and returns the first result accepted.
func (g *Gates) first(ctx context.Context, candidates [][]string, accept func(*Result) bool) *Result {
	for _, argv := range g.order(candidates) {
		if r := g.run(ctx, argv); r != nil && accept(r) {
			return r
		}
	}
	return nil
}

func (g *Gates) order(candidates [][]string) [][]string {
	if g.packageManager == "" {
		return candidates
	}
	var preferred, rest [][]string
	for _, c := range candidates {
		if c[0] == g.packageManager {
			preferred = append(preferred, c)
		} else {
			rest = append(rest, c)
		}
	}
	return append(preferred, rest...)
}

// TypeCheck runs the TypeScript type checker and counts "error TS" lines.
func (g *Gates) TypeCheck(ctx context.Context) *Result {
	candidates := [][]string{
		{"pnpm", "type-check"},
		{"pnpm", "tsc", "--noEmit"},
		{"npm", "run", "type-check"},
		{"yarn", "type-check"},
		{"tsc", "--noEmit"},
	}

	r := g.first(ctx, candidates, func(r *Result) bool {
		return r.Success || strings.Contains(r.combined(), "error TS")
	})
	if r == nil {
		return skipped("type-check", "Type checking")
	}
	r.ErrorCount = strings.Count(r.Stdout, "error TS") + strings.Count(r.Stderr, "error TS")
	return r
}

var (
	errorCountPattern   = regexp.MustCompile(`(\d+)\s+error`)
	warningCountPattern = regexp.MustCompile(`(\d+)\s+warning`)
)

// Lint runs ESLint, optionally with --fix, and parses its problem summary.
func (g *Gates) Lint(ctx context.Context, fix bool) *Result {
	withFix := func(argv []string, flags ...string) []string {
		if fix {
			return append(argv, flags...)
		}
		return argv
	}
	candidates := [][]string{
		withFix([]string{"pnpm", "lint"}, "--fix"),
		withFix([]string{"npm", "run", "lint"}, "--", "--fix"),
		withFix([]string{"yarn", "lint"}, "--fix"),
		withFix([]string{"eslint", "."}, "--fix"),
	}

	r := g.first(ctx, candidates, func(r *Result) bool {
		return strings.Contains(strings.ToLower(r.combined()), "eslint")
	})
	if r == nil {
		return skipped("lint", "Linting")
	}

	out := r.combined()
	if strings.Contains(out, "✖") || strings.Contains(out, "problem") {
		r.ErrorCount = firstInt(errorCountPattern, out)
		r.WarningCount = firstInt(warningCountPattern, out)
	}
	return r
}

func firstInt(p *regexp.Regexp, s string) int {
	m := p.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// Test runs the test suite, limited to files when given.
func (g *Gates) Test(ctx context.Context, files []string) *Result {
	with := func(argv ...string) []string {
		return append(argv, files...)
	}
	candidates := [][]string{
		with("pnpm", "test"),
		with("npm", "test"),
		with("yarn", "test"),
		with("jest"),
		with("pytest"),
	}

	r := g.first(ctx, candidates, func(r *Result) bool {
		return r.Success || strings.Contains(strings.ToLower(r.combined()), "test")
	})
	if r == nil {
		return skipped("test", "Testing")
	}
	return r
}

// Build runs the project build.
func (g *Gates) Build(ctx context.Context) *Result {
	candidates := [][]string{
		{"pnpm", "build"},
		{"npm", "run", "build"},
		{"yarn", "build"},
	}

	r := g.first(ctx, candidates, func(r *Result) bool {
		return strings.Contains(strings.ToLower(r.combined()), "build")
	})
	if r == nil {
		return skipped("build", "Build")
	}
	return r
}
