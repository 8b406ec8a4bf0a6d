package quality

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/firefly-engineering/forage-assist/internal/logging"
	"github.com/firefly-engineering/forage-assist/internal/system"
)

func newTestGates(opts ...Option) (*Gates, *system.MockExecutor) {
	exec := system.NewMockExecutor()
	opts = append([]Option{WithExecutor(exec)}, opts...)
	return New("/project", opts...), exec
}

func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	logging.SetUserOutput(&stdout, &stderr)
	t.Cleanup(func() { logging.SetUserOutput(nil, nil) })
	return &stdout, &stderr
}

func TestTypeCheck(t *testing.T) {
	t.Run("first command succeeds", func(t *testing.T) {
		g, exec := newTestGates()
		exec.AddResponse("pnpm type-check", "ok")

		r := g.TypeCheck(context.Background())
		if !r.Success || r.Command != "pnpm type-check" || r.ErrorCount != 0 {
			t.Errorf("TypeCheck() = %+v", r)
		}
		cmd, _ := exec.LastCommand()
		if cmd.Dir != "/project" {
			t.Errorf("Dir = %q", cmd.Dir)
		}
	})

	t.Run("errors are counted", func(t *testing.T) {
		g, exec := newTestGates()
		exec.AddFailure("pnpm type-check", "ERR_PNPM_NO_SCRIPT", 1)
		exec.On("pnpm tsc", system.MockResponse{
			Stdout:   "a.ts(1,1): error TS2322: x\nb.ts(2,2): error TS2304: y\n",
			Stderr:   "c.ts(3,3): error TS1005: z\n",
			ExitCode: 2,
		})

		r := g.TypeCheck(context.Background())
		if r.Success || r.Command != "pnpm tsc --noEmit" || r.ErrorCount != 3 {
			t.Errorf("TypeCheck() = %+v", r)
		}
	})

	t.Run("missing tools are skipped", func(t *testing.T) {
		g, exec := newTestGates()
		exec.Missing["pnpm"] = true
		exec.AddFailure("npm run type-check", "missing script", 1)
		exec.Missing["yarn"] = true
		exec.AddResponse("tsc --noEmit", "")

		r := g.TypeCheck(context.Background())
		if !r.Success || r.Command != "tsc --noEmit" {
			t.Errorf("TypeCheck() = %+v", r)
		}
	})

	t.Run("nothing applies", func(t *testing.T) {
		g, exec := newTestGates()
		exec.DefaultResponse = system.MockResponse{Stderr: "command failed", ExitCode: 1}

		r := g.TypeCheck(context.Background())
		if !r.Success || !r.Skipped || r.Command != "type-check" {
			t.Errorf("TypeCheck() = %+v", r)
		}
		if r.Stdout != "Type checking skipped (no suitable command found)" {
			t.Errorf("Stdout = %q", r.Stdout)
		}
		if got := len(exec.Commands); got != 5 {
			t.Errorf("tried %d commands, want 5", got)
		}
	})
}

func TestLint(t *testing.T) {
	t.Run("counts problems", func(t *testing.T) {
		g, exec := newTestGates()
		exec.On("pnpm lint --fix", system.MockResponse{
			Stdout:   "> eslint .\n\n✖ 5 problems (3 errors, 2 warnings)\n",
			ExitCode: 1,
		})

		r := g.Lint(context.Background(), true)
		if r.Success || r.ErrorCount != 3 || r.WarningCount != 2 {
			t.Errorf("Lint() = %+v", r)
		}
	})

	t.Run("npm fix flag", func(t *testing.T) {
		g, exec := newTestGates()
		exec.AddFailure("pnpm lint", "no script", 1)
		exec.AddResponse("npm run lint -- --fix", "> eslint src\n")

		r := g.Lint(context.Background(), true)
		if !r.Success || r.Command != "npm run lint -- --fix" {
			t.Errorf("Lint() = %+v", r)
		}
		if r.ErrorCount != 0 || r.WarningCount != 0 {
			t.Errorf("clean run should not report counts: %+v", r)
		}
	})

	t.Run("skipped", func(t *testing.T) {
		g, _ := newTestGates()

		r := g.Lint(context.Background(), false)
		if !r.Skipped || r.Command != "lint" || r.Stdout != "Linting skipped (no suitable command found)" {
			t.Errorf("Lint() = %+v", r)
		}
	})
}

func TestTest(t *testing.T) {
	g, exec := newTestGates()
	exec.AddFailure("pnpm test", "", 1)
	exec.AddFailure("npm test", "", 1)
	exec.AddFailure("yarn test", "", 1)
	exec.AddFailure("jest", "", 127)
	exec.On("pytest", system.MockResponse{Stdout: "FAILED tests/test_api.py::test_create\n1 failed, 3 passed", ExitCode: 1})

	r := g.Test(context.Background(), []string{"tests/test_api.py"})
	if r.Success || r.Command != "pytest tests/test_api.py" {
		t.Errorf("Test() = %+v", r)
	}
	if !strings.Contains(r.Stdout, "failed") {
		t.Errorf("Stdout = %q", r.Stdout)
	}
}

func TestBuild(t *testing.T) {
	g, exec := newTestGates()
	exec.AddResponse("pnpm build", "vite v5 building for production...")

	if r := g.Build(context.Background()); !r.Success || r.Command != "pnpm build" {
		t.Errorf("Build() = %+v", r)
	}

	g, exec = newTestGates()
	exec.AddResponse("pnpm build", "done")
	exec.AddResponse("npm run build", "done")
	exec.AddResponse("yarn build", "done")
	if r := g.Build(context.Background()); !r.Skipped || r.Stdout != "Build skipped (no suitable command found)" {
		t.Errorf("Build() = %+v", r)
	}
}

func TestPackageManagerPreference(t *testing.T) {
	g, exec := newTestGates(WithPackageManager("yarn"))
	exec.AddResponse("yarn build", "build finished")

	r := g.Build(context.Background())
	if r.Command != "yarn build" {
		t.Errorf("Command = %q, want yarn build", r.Command)
	}
	if got := exec.Lines(); len(got) != 1 {
		t.Errorf("expected yarn to be tried first, got %v", got)
	}
}

func TestRunAll(t *testing.T) {
	t.Run("stops at first failure", func(t *testing.T) {
		stdout, stderr := captureOutput(t)
		g, exec := newTestGates()
		exec.AddResponse("pnpm type-check", "")
		exec.On("pnpm lint", system.MockResponse{Stdout: "eslint\n✖ 1 problem (1 error, 0 warnings)", ExitCode: 1})

		report := g.RunAll(context.Background(), DefaultOptions())

		if report.Passed() {
			t.Error("Passed() = true, want false")
		}
		if _, ok := report[GateTest]; ok {
			t.Error("tests should not run after a lint failure")
		}
		if !strings.Contains(stdout.String(), "✓ Type check passed") {
			t.Errorf("stdout = %q", stdout.String())
		}
		if !strings.Contains(stderr.String(), "✗ Lint failed (1 errors, 0 warnings)") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})

	t.Run("all pass with build", func(t *testing.T) {
		captureOutput(t)
		g, exec := newTestGates()
		exec.AddResponse("pnpm type-check", "")
		exec.AddResponse("pnpm lint", "eslint ok")
		exec.AddResponse("pnpm test", "")
		exec.AddResponse("pnpm build", "build ok")

		opts := DefaultOptions()
		opts.Build = true
		report := g.RunAll(context.Background(), opts)

		if !report.Passed() || len(report) != 4 {
			t.Errorf("RunAll() = %+v", report)
		}
	})

	t.Run("nothing selected", func(t *testing.T) {
		g, _ := newTestGates()
		report := g.RunAll(context.Background(), Options{})
		if len(report) != 0 || !report.Passed() {
			t.Errorf("RunAll() = %+v", report)
		}
	})
}

func TestValidateChanges(t *testing.T) {
	captureOutput(t)
	g, exec := newTestGates()
	exec.AddResponse("pnpm type-check", "")
	exec.AddResponse("pnpm lint", "eslint ok")

	if !g.ValidateChanges(context.Background(), false) {
		t.Error("ValidateChanges() = false, want true")
	}
	if exec.Called("pnpm test") != 0 {
		t.Error("tests should be skipped")
	}
}
