package todo

import (
	"fmt"
	"strings"
)

// Proposal is an improvement proposal from a refactoring analysis.
// Priority runs from 1 to 10; nil means 5.
type Proposal struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Priority    *int   `json:"priority"`
}

// ReviewIssue is a finding from a code review.
type ReviewIssue struct {
	Priority string `json:"priority"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Review modes.
const (
	ReviewSimple   = "simple"
	ReviewDetailed = "detailed"
)

// NumericMarker maps a 1-10 priority to a colour marker.
func NumericMarker(priority int) string {
	switch priority {
	case 10, 9:
		return "🔴"
	case 8, 7:
		return "🟠"
	case 6, 5:
		return "🟡"
	}
	return "🟢"
}

// LevelMarker maps a named priority to a colour marker; unknown levels are
// treated as medium.
func LevelMarker(level string) string {
	switch level {
	case "critical":
		return "🔴"
	case "high":
		return "🟠"
	case "low":
		return "🟢"
	}
	return "🟡"
}

// Refactoring lists the analysis and proposal phases, one todo per
// proposal, and a final quality-gate run.
func Refactoring(proposals []Proposal) []Todo {
	m := NewManager()
	m.Add("Analyze code quality and identify improvement areas",
		"Analyzing code quality and identifying improvement areas")
	m.Add("Generate improvement proposals with priorities",
		"Generating improvement proposals with priorities")

	for i, p := range proposals {
		priority := 5
		if p.Priority != nil {
			priority = *p.Priority
		}
		kind := p.Type
		if kind == "" {
			kind = "Fix"
		}
		desc := p.Description
		if desc == "" {
			desc = fmt.Sprintf("Proposal %d", i+1)
		}

		content := fmt.Sprintf("%s %s: %s", NumericMarker(priority), kind, desc)
		active := strings.NewReplacer("Fix:", "Fixing:", "Refactor:", "Refactoring:").Replace(content)
		m.Add(content, active)
	}

	m.Add("Run quality gates (type-check, lint, test)",
		"Running quality gates (type-check, lint, test)")
	m.MarkInProgress(0)
	return m.Todos()
}

// Review lists the review run followed by one todo per issue.
func Review(mode string, issues []ReviewIssue) []Todo {
	m := NewManager()
	if mode == ReviewSimple {
		m.Add("Run quick code review with parallel agents",
			"Running quick code review with parallel agents")
	} else {
		m.Add("Run comprehensive code review with ⭐️ ratings",
			"Running comprehensive code review with ⭐️ ratings")
	}

	for _, issue := range issues {
		category := issue.Category
		if category == "" {
			category = "Issue"
		}
		message := issue.Message
		if message == "" {
			message = "Fix issue"
		}
		marker := LevelMarker(issue.Priority)
		m.Add(fmt.Sprintf("%s %s: %s", marker, category, message),
			fmt.Sprintf("%s Addressing %s: %s", marker, category, message))
	}

	m.MarkInProgress(0)
	return m.Todos()
}
