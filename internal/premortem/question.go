package premortem

import (
	"sort"
	"strings"
)

// Priorities, most urgent first.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// RelevanceBoost lists the contexts a question is especially relevant to.
type RelevanceBoost struct {
	Domains  []string `json:"domains,omitempty" yaml:"domains,omitempty"`
	Maturity []string `json:"maturity,omitempty" yaml:"maturity,omitempty"`
}

// Question is a planning question from a question pool.
type Question struct {
	ID             string         `json:"id" yaml:"id"`
	Text           string         `json:"text" yaml:"text"`
	Category       string         `json:"category,omitempty" yaml:"category,omitempty"`
	Priority       string         `json:"priority,omitempty" yaml:"priority,omitempty"`
	Triggers       []string       `json:"triggers,omitempty" yaml:"triggers,omitempty"`
	RelevanceBoost RelevanceBoost `json:"relevance_boost" yaml:"relevance_boost"`
}

// ScoredQuestion is a question with its relevance score.
type ScoredQuestion struct {
	Question `yaml:",inline"`
	Score    float64 `json:"score" yaml:"score"`
}

// PriorityRank orders priorities: critical 0, high 1, medium 2, low 3.
// Unknown and empty priorities rank as medium.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityLow:
		return 3
	}
	return 2
}

// ScoreQuestion rates q against ctx from 0 to 1: trigger in description +0.3,
// domain boost +0.2, maturity boost +0.2, tech stack in question text +0.3.
func ScoreQuestion(q Question, ctx ProjectContext) float64 {
	tenths := 0
	desc := strings.ToLower(ctx.Description)

	for _, trig := range q.Triggers {
		if strings.Contains(desc, strings.ToLower(trig)) {
			tenths += 3
			break
		}
	}
	if contains(q.RelevanceBoost.Domains, ctx.Domain) {
		tenths += 2
	}
	if contains(q.RelevanceBoost.Maturity, ctx.Maturity) {
		tenths += 2
	}

	text := strings.ToLower(q.Text)
	for _, tech := range ctx.TechStack {
		if strings.Contains(text, strings.ToLower(tech)) {
			tenths += 3
			break
		}
	}

	if tenths > 10 {
		tenths = 10
	}
	return float64(tenths) / 10
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// SelectOptions bound question selection.
type SelectOptions struct {
	MinCount int
	MaxCount int
	MinScore float64
}

// DefaultSelectOptions selects three to five questions scoring at least 0.5.
func DefaultSelectOptions() SelectOptions {
	return SelectOptions{MinCount: 3, MaxCount: 5, MinScore: 0.5}
}

// SelectTopQuestions scores the pool and returns up to MaxCount questions
// scoring at least MinScore. When fewer than MinCount pass the threshold the
// best MinCount questions are returned regardless of score.
func SelectTopQuestions(pool []Question, ctx ProjectContext, opts SelectOptions) []ScoredQuestion {
	scored := make([]ScoredQuestion, len(pool))
	for i, q := range pool {
		scored[i] = ScoredQuestion{Question: q, Score: ScoreQuestion(q, ctx)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return PriorityRank(scored[i].Priority) < PriorityRank(scored[j].Priority)
	})

	filtered := make([]ScoredQuestion, 0, len(scored))
	for _, sq := range scored {
		if sq.Score >= opts.MinScore {
			filtered = append(filtered, sq)
		}
	}

	if len(filtered) >= opts.MinCount {
		return head(filtered, opts.MaxCount)
	}
	return head(scored, opts.MinCount)
}

func head(list []ScoredQuestion, n int) []ScoredQuestion {
	if n < 0 {
		n = 0
	}
	if n < len(list) {
		list = list[:n]
	}
	return list
}
