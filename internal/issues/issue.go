// Package issues turns premortem gaps into tracker issues.
//
// Title, Body and Labels describe the issue for a gap; Filter applies a
// creation mode; Creator files the issues through a Tracker, reusing an
// existing issue with the same title when asked to.
package issues

import (
	"fmt"
	"strings"

	"github.com/firefly-engineering/forage-assist/internal/config"
	"github.com/firefly-engineering/forage-assist/internal/gap"
	"github.com/firefly-engineering/forage-assist/internal/premortem"
)

const (
	maxTitleRunes    = 80
	highRiskBelow    = 0.3
	defaultMarker    = "📝"
	footer           = "*This issue was automatically generated by Premortem Analysis*"
	noRecommendation = "No specific recommendation"
)

var priorityMarkers = map[string]string{
	premortem.PriorityCritical: "🔴",
	premortem.PriorityHigh:     "🟠",
	premortem.PriorityMedium:   "🟡",
	premortem.PriorityLow:      "🟢",
}

// Issue is an issue ready to be filed.
type Issue struct {
	QuestionID string   `json:"question_id"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Labels     []string `json:"labels"`
	Priority   string   `json:"priority"`
}

// Build describes the issue for g.
func Build(g gap.Gap) Issue {
	return Issue{
		QuestionID: questionID(g),
		Title:      Title(g),
		Body:       Body(g),
		Labels:     Labels(g),
		Priority:   priority(g),
	}
}

// Title is the priority marker, "[Premortem]" and the first line of the
// question cut to 80 characters.
func Title(g gap.Gap) string {
	marker, ok := priorityMarkers[priority(g)]
	if !ok {
		marker = defaultMarker
	}
	first, _, _ := strings.Cut(g.QuestionText, "\n")
	if r := []rune(first); len(r) > maxTitleRunes {
		first = string(r[:maxTitleRunes])
	}
	return marker + " [Premortem] " + first
}

// Body renders the markdown issue body.
func Body(g gap.Gap) string {
	question := g.QuestionText
	if question == "" {
		question = "N/A"
	}
	lines := []string{
		"# Premortem Analysis: Identified Gap",
		"",
		"## Question",
		"",
		question,
		"",
		"## Analysis",
		"",
		"- **Status**: " + string(status(g)),
		fmt.Sprintf("- **Coverage**: %.1f%%", g.Coverage*100),
		"- **Priority**: " + priority(g),
		"",
	}

	if a := g.AutoAnswer; a != nil && a.Text != "" {
		lines = append(lines,
			"## Current State (Auto-detected)",
			"",
			a.Text,
			"",
			fmt.Sprintf("*Confidence: %.1f%%*", a.Confidence*100),
			"",
		)
		if len(a.Sources) > 0 {
			lines = append(lines, "**Sources:**")
			for _, src := range a.Sources {
				lines = append(lines, "- `"+src+"`")
			}
			lines = append(lines, "")
		}
	}

	rec := g.Recommendation
	if rec == "" {
		rec = noRecommendation
	}
	lines = append(lines,
		"## Recommended Actions",
		"",
		rec,
		"",
		"---",
		"",
		footer,
	)
	return strings.Join(lines, "\n")
}

// Labels returns premortem, planning, the priority label, a status label
// and high-risk when coverage is below 0.3.
func Labels(g gap.Gap) []string {
	labels := []string{"premortem", "planning", "priority:" + priority(g)}
	switch status(g) {
	case gap.StatusMissing:
		labels = append(labels, "needs-investigation")
	case gap.StatusNeedsClarification:
		labels = append(labels, "needs-clarification")
	}
	if g.Coverage < highRiskBelow {
		labels = append(labels, "high-risk")
	}
	return labels
}

// Filter selects the gaps a mode files issues for. Selective mode returns
// every candidate; the caller narrows the list interactively.
func Filter(gaps []gap.Gap, mode string) []gap.Gap {
	var out []gap.Gap
	for _, g := range gaps {
		if status(g) == gap.StatusCovered {
			continue
		}
		switch mode {
		case config.ModeAll, config.ModeSelective:
			out = append(out, g)
		case config.ModeCriticalHigh:
			if g.Priority == premortem.PriorityCritical || g.Priority == premortem.PriorityHigh {
				out = append(out, g)
			}
		}
	}
	return out
}

func priority(g gap.Gap) string {
	if g.Priority == "" {
		return premortem.PriorityMedium
	}
	return g.Priority
}

func status(g gap.Gap) gap.Status {
	if g.Status == "" {
		return gap.StatusMissing
	}
	return g.Status
}

func questionID(g gap.Gap) string {
	if g.QuestionID == "" {
		return "UNKNOWN"
	}
	return g.QuestionID
}
