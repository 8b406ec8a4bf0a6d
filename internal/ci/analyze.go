package ci

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// FailureType classifies why a check failed.
type FailureType string

const (
	TypeError   FailureType = "type_error"
	LintError   FailureType = "lint_error"
	TestFailure FailureType = "test_failure"
	BuildError  FailureType = "build_error"
	Unknown     FailureType = "unknown"
)

// ErrorDetail is one error parsed from a CI log. Code is set for TypeScript
// errors; Severity and Rule for ESLint findings.
type ErrorDetail struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Code     string `json:"code,omitempty"`
	Severity string `json:"severity,omitempty"`
	Rule     string `json:"rule,omitempty"`
	Message  string `json:"message"`
}

// Analysis describes one failed check.
type Analysis struct {
	CheckName     string        `json:"check_name"`
	FailureType   FailureType   `json:"failure_type"`
	Priority      string        `json:"priority"`
	FilesAffected []string      `json:"files_affected"`
	ErrorDetails  []ErrorDetail `json:"error_details"`
	FixStrategy   string        `json:"fix_strategy"`
	DetailsURL    string        `json:"details_url"`
}

var tsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([^\s:]+\.tsx?)\((\d+),(\d+)\):\s*error\s*TS(\d+):\s*(.+)$`),
	regexp.MustCompile(`^([^\s:]+\.tsx?):(\d+):(\d+)\s*-\s*error\s*TS(\d+):\s*(.+)$`),
	regexp.MustCompile(`^([^\s:]+\.tsx?):(\d+):(\d+)\s*error\s*TS(\d+):\s*(.+)$`),
}

var eslintPattern = regexp.MustCompile(`(?i)^([^\s:]+\.tsx?):(\d+):(\d+)\s+(error|warning)\s+(.+?)\s+([\w@/-]+)$`)

// ParseTypeScriptErrors extracts tsc diagnostics in the paren, dash and
// plain colon formats.
func ParseTypeScriptErrors(log string) []ErrorDetail {
	results := []ErrorDetail{}
	for _, line := range strings.Split(log, "\n") {
		line = strings.TrimSpace(line)
		for _, p := range tsPatterns {
			m := p.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			results = append(results, ErrorDetail{
				File:    m[1],
				Line:    atoi(m[2]),
				Column:  atoi(m[3]),
				Code:    "TS" + m[4],
				Message: strings.TrimSpace(m[5]),
			})
			break
		}
	}
	return results
}

// ParseESLintErrors extracts "file:line:col severity message rule" lines.
func ParseESLintErrors(log string) []ErrorDetail {
	results := []ErrorDetail{}
	for _, line := range strings.Split(log, "\n") {
		m := eslintPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		results = append(results, ErrorDetail{
			File:     m[1],
			Line:     atoi(m[2]),
			Column:   atoi(m[3]),
			Severity: strings.ToLower(m[4]),
			Rule:     m[6],
			Message:  strings.TrimSpace(m[5]),
		})
	}
	return results
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ClassifyFailure guesses the failure type from the check name first and the
// log text second, trying type, lint, test and build in that order.
func ClassifyFailure(checkName, log string) FailureType {
	name := strings.ToLower(checkName)
	text := strings.ToLower(log)

	switch {
	case containsAny(name, "type", "tsc", "typescript", "typecheck"):
		return TypeError
	case containsAny(text, "error ts", "typescript"):
		return TypeError
	case containsAny(name, "lint", "eslint"):
		return LintError
	case strings.Contains(text, "eslint"):
		return LintError
	case containsAny(name, "test", "jest", "pytest", "vitest"):
		return TestFailure
	case containsAny(text, "test", "assert"):
		return TestFailure
	case containsAny(name, "build", "compile", "bundle"):
		return BuildError
	case containsAny(text, "build", "webpack", "vite"):
		return BuildError
	}
	return Unknown
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// DeterminePriority ranks a failure: type and test failures, or more than
// ten errors, are high; lint is medium; the rest low.
func DeterminePriority(ft FailureType, errorCount int) string {
	switch {
	case ft == TypeError || ft == TestFailure:
		return "high"
	case errorCount > 10:
		return "high"
	case ft == LintError:
		return "medium"
	}
	return "low"
}

var fixStrategies = map[FailureType]string{
	TypeError:   "Add missing types, fix incompatible types, and update type definitions.",
	LintError:   "Run eslint --fix where possible, then resolve remaining rule violations.",
	TestFailure: "Identify failing tests, fix test data/mocks, and align assertions.",
	BuildError:  "Inspect build logs, verify configuration and dependencies, and fix compile errors.",
	Unknown:     "Inspect logs and narrow down the failure cause before applying fixes.",
}

// FixStrategy returns the default remediation advice for a failure type.
func FixStrategy(ft FailureType) string {
	if s, ok := fixStrategies[ft]; ok {
		return s
	}
	return fixStrategies[Unknown]
}

// AnalyzeFailures fetches the failed checks of a pull request, pulls the run
// logs of each and classifies the failure.
func (c *Client) AnalyzeFailures(ctx context.Context, pr int) []Analysis {
	results := []Analysis{}
	for _, check := range c.FailedChecks(ctx, pr) {
		results = append(results, c.analyze(ctx, check))
	}
	return results
}

func (c *Client) analyze(ctx context.Context, check Check) Analysis {
	url := check.DetailsURL
	if url == "" {
		url = check.Link
	}

	var log string
	if runID, ok := ExtractRunID(url); ok {
		log = c.RunLogs(ctx, runID)
	}

	ft := ClassifyFailure(check.Name, log)
	details := []ErrorDetail{}
	switch ft {
	case TypeError:
		details = ParseTypeScriptErrors(log)
	case LintError:
		details = ParseESLintErrors(log)
	}

	return Analysis{
		CheckName:     check.Name,
		FailureType:   ft,
		Priority:      DeterminePriority(ft, len(details)),
		FilesAffected: affectedFiles(details),
		ErrorDetails:  details,
		FixStrategy:   FixStrategy(ft),
		DetailsURL:    url,
	}
}

func affectedFiles(details []ErrorDetail) []string {
	seen := make(map[string]bool)
	files := []string{}
	for _, d := range details {
		if d.File != "" && !seen[d.File] {
			seen[d.File] = true
			files = append(files, d.File)
		}
	}
	sort.Strings(files)
	return files
}
