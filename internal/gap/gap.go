package gap

import (
	"fmt"
	"strings"

	"github.com/firefly-engineering/forage-assist/internal/premortem"
)

// Status classifies how well a question is addressed.
type Status string

const (
	StatusCovered            Status = "covered"
	StatusNeedsClarification Status = "needs_clarification"
	StatusMissing            Status = "missing"
	StatusNotApplicable      Status = "not_applicable"
)

// NoAnswerText is the auto answer text when no file was relevant.
const NoAnswerText = "No relevant information found in project files."

// AutoAnswer is an answer assembled from project files.
type AutoAnswer struct {
	Text       string   `json:"text" yaml:"text"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	Sources    []string `json:"sources" yaml:"sources"`
}

// Gap is the analysis of one question.
type Gap struct {
	QuestionID     string      `json:"question_id" yaml:"question_id"`
	QuestionText   string      `json:"question_text" yaml:"question_text"`
	Status         Status      `json:"status" yaml:"status"`
	AutoAnswer     *AutoAnswer `json:"auto_answer" yaml:"auto_answer"`
	Coverage       float64     `json:"coverage" yaml:"coverage"`
	Recommendation string      `json:"recommendation" yaml:"recommendation"`
	Priority       string      `json:"priority" yaml:"priority"`
}

// Summary counts gaps per status.
type Summary struct {
	Total              int `json:"total" yaml:"total"`
	Covered            int `json:"covered" yaml:"covered"`
	NeedsClarification int `json:"needs_clarification" yaml:"needs_clarification"`
	Missing            int `json:"missing" yaml:"missing"`
	NotApplicable      int `json:"not_applicable" yaml:"not_applicable"`
}

// Result is the output of a gap analysis run.
type Result struct {
	Gaps    []Gap   `json:"gaps" yaml:"gaps"`
	Summary Summary `json:"summary" yaml:"summary"`
}

// Summarize counts gaps per status.
func Summarize(gaps []Gap) Summary {
	s := Summary{Total: len(gaps)}
	for _, g := range gaps {
		switch g.Status {
		case StatusCovered:
			s.Covered++
		case StatusNeedsClarification:
			s.NeedsClarification++
		case StatusMissing:
			s.Missing++
		case StatusNotApplicable:
			s.NotApplicable++
		}
	}
	return s
}

// Coverage rates how well answer addresses its question: 60% of the
// confidence, up to 0.2 for multiple sources and up to 0.2 for length.
// An answer with zero confidence has zero coverage.
func Coverage(answer AutoAnswer) float64 {
	if answer.Confidence == 0 {
		return 0
	}
	coverage := answer.Confidence * 0.6
	coverage += min(float64(len(answer.Sources))*0.1, 0.2)
	coverage += min(float64(len(strings.Fields(answer.Text)))/500, 0.2)
	return clamp(coverage)
}

var notApplicableMarkers = []string{"n/a", "not applicable", "doesn't apply"}

// Classify maps coverage and answer confidence to a Status.
func Classify(answer AutoAnswer, coverage float64) Status {
	switch {
	case coverage > 0.8 && answer.Confidence > 0.7:
		return StatusCovered
	case coverage > 0.5:
		return StatusNeedsClarification
	case coverage < 0.2:
		return StatusMissing
	}

	text := strings.ToLower(answer.Text)
	for _, m := range notApplicableMarkers {
		if strings.Contains(text, m) {
			return StatusNotApplicable
		}
	}
	return StatusMissing
}

// Recommend returns the follow-up advice for a question with the given status.
func Recommend(q premortem.Question, status Status, answer AutoAnswer) string {
	sources := strings.Join(answer.Sources, ", ")

	switch status {
	case StatusCovered:
		return fmt.Sprintf("✅ This aspect is well-documented. Review %s to ensure alignment.", sources)
	case StatusNeedsClarification:
		return "⚠️ Partial coverage found. Consider:\n" +
			"1. Review existing documentation: " + sources + "\n" +
			"2. Fill gaps in: " + q.Text + "\n" +
			"3. Add to design document or steering files"
	case StatusMissing:
		if priorityOf(q) == premortem.PriorityCritical {
			return "🔴 CRITICAL: Address immediately before implementation:\n" +
				"1. Research best practices for: " + q.Text + "\n" +
				"2. Document decisions in .kiro/steering/ or design files\n" +
				"3. Consider creating a GitHub Issue to track"
		}
		return "📝 TODO: Document this in planning phase:\n" +
			"1. " + q.Text + "\n" +
			"2. Add to .kiro/steering/ or create Issue"
	}
	return "ℹ️ This question may not apply to your project. Verify and mark as not applicable if confirmed."
}

func priorityOf(q premortem.Question) string {
	if q.Priority == "" {
		return premortem.PriorityMedium
	}
	return q.Priority
}

func clamp(v float64) float64 {
	return max(0, min(v, 1))
}
