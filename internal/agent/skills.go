package agent

import (
	"sort"
	"strings"
)

// SkillSuggestion is a skill worth launching before or alongside an agent.
type SkillSuggestion struct {
	Name       string   `json:"name"`
	Reason     string   `json:"reason"`
	Confidence float64  `json:"confidence"`
	Triggers   []string `json:"triggers"`
}

var (
	securityKeywords     = []string{"security", "auth", "jwt", "csrf", "xss", "認証", "認可"}
	architectureKeywords = []string{"clean architecture", "usecase", "use case", "domain", "境界"}
	impactKeywords       = []string{"impact", "dependency", "refactor", "breaking", "影響", "依存"}
	qualityKeywords      = []string{"lint", "quality", "format", "readability", "可読性"}
	docsKeywords         = []string{"doc", "docs", "markdown", "documentation", "readme"}
	ciSkillKeywords      = []string{
		"ci failure", "ci failed", "ci diagnostic", "ci diagnosis", "ci失敗", "ci診断",
		"github actions", "workflow failure", "workflow failed", "failing checks", "check failed",
	}
)

type skillSet struct {
	list []*SkillSuggestion
}

// add records a suggestion. A repeated name only replaces the earlier entry
// when its confidence is strictly higher.
func (s *skillSet) add(name, reason string, confidence float64, triggers []string) {
	confidence = clamp(confidence)
	for _, existing := range s.list {
		if existing.Name != name {
			continue
		}
		if confidence > existing.Confidence {
			existing.Confidence = confidence
			existing.Reason = reason
			existing.Triggers = triggers
		}
		return
	}
	s.list = append(s.list, &SkillSuggestion{
		Name:       name,
		Reason:     reason,
		Confidence: confidence,
		Triggers:   triggers,
	})
}

func (s *skillSet) sorted() []SkillSuggestion {
	out := make([]SkillSuggestion, len(s.list))
	for i, sk := range s.list {
		out[i] = *sk
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// DetectSkills suggests skills from the task text and project metadata,
// ordered by confidence, highest first.
func DetectSkills(description string, meta ProjectMetadata) []SkillSuggestion {
	text := strings.ToLower(description)
	language := strings.ToLower(meta.Language)
	frameworks := lowerAll(meta.Frameworks)
	tools := lowerAll(meta.Tools)

	var set skillSet

	if language == "typescript" || strings.Contains(text, "typescript") || strings.Contains(text, "tsconfig") {
		set.add("typescript", "Apply TypeScript type-safety and linting guidance", 0.86,
			[]string{"typescript", "tsconfig", "ts"})
	}

	if frameworks["react"] || frameworks["nextjs"] || strings.Contains(text, "react") {
		set.add("react", "Preload React/Next.js component design and optimisation patterns", 0.80,
			[]string{"react", "nextjs", "hooks"})
	}

	if language == "go" || strings.Contains(text, "golang") || strings.Contains(text, " go ") {
		set.add("golang", "Apply Go idioms, error handling and concurrency guidance", 0.78,
			[]string{"golang", "go", "goroutine"})
	}

	if containsAny(text, securityKeywords) {
		set.add("security", "Build in authentication, authorisation and input validation hardening", 0.74,
			securityKeywords)
	}

	if containsAny(text, architectureKeywords) {
		set.add("clean-architecture", "Check layering and dependency direction constraints", 0.68,
			[]string{"clean architecture", "usecase", "domain"})
	}

	if containsAny(text, impactKeywords) {
		set.add("semantic-analysis", "Analyse dependencies and blast radius to plan a safe change", 0.70,
			[]string{"impact", "dependency", "refactor", "breaking"})
	}

	if containsAny(text, qualityKeywords) {
		set.add("code-quality-improvement", "Apply quality improvement patterns and auto-fix guidance", 0.62,
			[]string{"lint", "quality", "format"})
	}

	if containsAny(text, ciSkillKeywords) {
		set.add("ci-diagnostics", "Diagnose the CI failure and plan the fix", 0.72, ciSkillKeywords)
		set.add("gh-fix-ci", "Collect and analyse CI failure logs with the gh CLI", 0.68, ciSkillKeywords)
	}

	if containsAny(text, docsKeywords) {
		set.add("markdown-docs", "Support Markdown structure, link and formatting improvements", 0.58,
			[]string{"docs", "markdown", "documentation"})
	}

	if tools["eslint"] || tools["prettier"] {
		set.add("code-quality-improvement", "Propose fixes that follow the existing lint and format config", 0.64,
			[]string{"eslint", "prettier"})
	}

	return set.sorted()
}

func lowerAll(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[strings.ToLower(it)] = true
	}
	return m
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
