package report

import (
	"strings"

	"github.com/firefly-engineering/forage-assist/internal/gap"
	"github.com/firefly-engineering/forage-assist/internal/premortem"
)

const untitled = "Unknown"

// unknownMarkers flag a hand-written response as "don't know".
var unknownMarkers = []string{"わからない", "不明"}

// reviewNeeded is the recommendation for unanswered legacy questions.
const reviewNeeded = "This item needs further consideration"

// FindingsFromGaps converts gap analysis results into findings.
// Not-applicable gaps are skipped.
func FindingsFromGaps(gaps []gap.Gap) []Finding {
	findings := []Finding{}
	for _, g := range gaps {
		var risk string
		switch g.Status {
		case gap.StatusCovered:
			risk = RiskCovered
		case gap.StatusNeedsClarification:
			risk = RiskMedium
		case gap.StatusNotApplicable:
			continue
		default:
			risk = RiskHigh
			if g.Priority == premortem.PriorityCritical {
				risk = RiskCritical
			}
		}

		f := Finding{
			Title:          g.QuestionID,
			Description:    g.QuestionText,
			RiskLevel:      risk,
			Recommendation: g.Recommendation,
			Coverage:       g.Coverage,
		}
		if f.Title == "" {
			f.Title = untitled
		}
		if g.AutoAnswer != nil {
			f.Sources = g.AutoAnswer.Sources
			if g.AutoAnswer.Text != "" {
				f.AutoAnswer = g.AutoAnswer.Text
				f.Confidence = g.AutoAnswer.Confidence
			}
		}
		findings = append(findings, f)
	}
	return findings
}

// CategorizeFindings turns hand-answered questions into findings. An empty
// response, or one saying the answer is unknown, is a risk at the question's
// priority with high promoted to critical; anything else is covered.
func CategorizeFindings(items []QuestionResponse) []Finding {
	findings := []Finding{}
	for _, item := range items {
		title := item.Question.ID
		if title == "" {
			title = untitled
		}

		if !isUnknown(item.Response) {
			findings = append(findings, Finding{Title: title, RiskLevel: RiskCovered})
			continue
		}

		risk := item.Question.Priority
		switch risk {
		case "":
			risk = RiskMedium
		case RiskHigh:
			risk = RiskCritical
		}
		findings = append(findings, Finding{
			Title:          title,
			Description:    item.Question.Text,
			RiskLevel:      risk,
			Recommendation: reviewNeeded,
		})
	}
	return findings
}

func isUnknown(response string) bool {
	if response == "" {
		return true
	}
	lower := strings.ToLower(response)
	for _, m := range unknownMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ResolveFindings returns the session's findings. A session without a
// findings key derives them from its hand answers; when that still leaves
// no findings, gap results are converted. An explicit empty findings list
// skips the hand answers but not the gaps.
func (d *Document) ResolveFindings() []Finding {
	findings := d.Findings
	if findings == nil && d.QuestionsAndResponses != nil {
		findings = CategorizeFindings(d.QuestionsAndResponses)
	}
	if len(findings) == 0 && len(d.Gaps) > 0 {
		findings = FindingsFromGaps(d.Gaps)
	}
	return findings
}
