package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firefly-engineering/forage-assist/internal/gap"
	"github.com/firefly-engineering/forage-assist/internal/premortem"
)

var generated = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

const gapSession = `{
  "context": {
    "domain": "web-development",
    "maturity": "mvp",
    "scale": "medium",
    "tech_stack": ["Go", "React"],
    "description": "Shop <beta> & friends"
  },
  "gap_summary": {"total": 4, "covered": 1, "needs_clarification": 1, "missing": 1, "not_applicable": 1},
  "gaps": [
    {"question_id": "sec-1", "question_text": "How are secrets stored?", "status": "missing",
     "priority": "critical", "coverage": 0, "recommendation": "Write it down", "auto_answer": null},
    {"question_id": "ops-1", "question_text": "Who is on call?", "status": "missing",
     "priority": "high", "coverage": 0.1, "recommendation": "Pick someone", "auto_answer": null},
    {"question_id": "api-1", "question_text": "Is the API versioned?", "status": "needs_clarification",
     "priority": "medium", "coverage": 0.6, "recommendation": "Clarify versioning",
     "auto_answer": {"text": "From README.md:\nv1", "confidence": 0.5, "sources": ["README.md"]}},
    {"question_id": "doc-1", "question_text": "Is there a README?", "status": "covered",
     "priority": "low", "coverage": 0.9, "recommendation": "ok"},
    {"question_id": "na-1", "question_text": "Mobile?", "status": "not_applicable", "priority": "low"}
  ],
  "action_items": [
    {"title": "Document secrets", "description": "Add a vault section", "priority": "high", "resources": ["docs/vault.md", "RUNBOOK.md"]},
    {"title": "Versioning", "description": "Decide on v2"}
  ]
}`

const wantGapReport = `# Premortem Analysis Report

**Generated**: 2026-03-04 05:06:07

## Executive Summary

**Total Questions Analyzed**: 4
- ✅ Already Covered: 1
- ⚠️ Needs Clarification: 1
- 🔴 Missing/Not Addressed: 1

**Overall Coverage**: 25.0%

## Project Context

- **Domain**: web-development
- **Maturity**: mvp
- **Scale**: medium
- **Tech Stack**: Go, React

**Description**: Shop <beta> & friends

## Critical Issues (🔴)

### 1. sec-1

How are secrets stored?

**Recommendation**: Write it down

## Medium Issues (🟡)

### 1. api-1

Is the API versioned?

**Recommendation**: Clarify versioning

## Already Covered (✅)

- doc-1

## Recommended Actions

1. **Document secrets** (high priority)
   - Add a vault section
   - Resources: docs/vault.md, RUNBOOK.md

2. **Versioning** (medium priority)
   - Decide on v2

## Next Steps

1. Start with the highest-priority Critical and Medium issues
2. Reflect the blind spots found here in the design documents
3. Review this report again before implementation starts
`

func TestFormatMarkdown_Gaps(t *testing.T) {
	s, err := Parse([]byte(gapSession), ".json")
	require.NoError(t, err)

	got, err := FormatAt(s, "markdown", generated)
	require.NoError(t, err)
	assert.Equal(t, wantGapReport, got)
}

func TestFormatMarkdown_Minimal(t *testing.T) {
	s, err := Parse([]byte(`{}`), ".json")
	require.NoError(t, err)

	got, err := FormatAt(s, "markdown", generated)
	require.NoError(t, err)

	want := `# Premortem Analysis Report

**Generated**: 2026-03-04 05:06:07

## Project Context

- **Domain**: N/A
- **Maturity**: N/A
- **Scale**: N/A
- **Tech Stack**: 

**Description**: N/A

## Next Steps

1. Start with the highest-priority Critical and Medium issues
2. Reflect the blind spots found here in the design documents
3. Review this report again before implementation starts
`
	assert.Equal(t, want, got)
}

func TestFormatMarkdown_HighFindingsHaveNoSection(t *testing.T) {
	s, err := Parse([]byte(`{"gaps": [
		{"question_id": "ops-1", "question_text": "Who is on call?", "status": "missing", "priority": "high"}
	]}`), ".json")
	require.NoError(t, err)
	require.Len(t, s.ResolveFindings(), 1)
	assert.Equal(t, RiskHigh, s.ResolveFindings()[0].RiskLevel)

	got, err := FormatAt(s, "markdown", generated)
	require.NoError(t, err)
	assert.NotContains(t, got, "High Issues")
	assert.NotContains(t, got, "ops-1")
	assert.Contains(t, got, "**Description**: N/A\n\n## Next Steps")
}

func TestFormatMarkdown_ZeroTotalOmitsCoverage(t *testing.T) {
	s, err := Parse([]byte(`{"gap_summary": {"total": 0}}`), ".json")
	require.NoError(t, err)

	got, err := FormatAt(s, "markdown", generated)
	require.NoError(t, err)
	assert.Contains(t, got, "**Total Questions Analyzed**: 0\n")
	assert.NotContains(t, got, "Overall Coverage")
}

func TestFormatMarkdown_LowFindingsHaveNoRecommendation(t *testing.T) {
	s, err := Parse([]byte(`{"findings": [
		{"title": "lint", "description": "Style drift", "risk_level": "low", "recommendation": "Add a linter"},
		{"description": "No title", "risk_level": "critical"}
	]}`), ".json")
	require.NoError(t, err)

	got, err := FormatAt(s, "markdown", generated)
	require.NoError(t, err)
	assert.Contains(t, got, "## Low Priority Issues (🟢)\n\n### 1. lint\n\nStyle drift\n\n## Next Steps")
	assert.NotContains(t, got, "Add a linter")
	assert.Contains(t, got, "### 1. Untitled\n\nNo title\n\n## Low Priority")
}

func TestFormatJSON_Passthrough(t *testing.T) {
	s, err := Parse([]byte(gapSession), ".json")
	require.NoError(t, err)

	got, err := FormatAt(s, "json", generated)
	require.NoError(t, err)
	assert.Contains(t, got, "Shop <beta> & friends", "HTML must not be escaped")
	assert.Contains(t, got, "\n  \"context\"", "output is indented by two spaces")

	var want, roundTrip any
	require.NoError(t, json.Unmarshal([]byte(gapSession), &want))
	require.NoError(t, json.Unmarshal([]byte(got), &roundTrip))
	assert.Equal(t, want, roundTrip)
}

func TestFormatJSON_KeepsUnknownKeys(t *testing.T) {
	s, err := Parse([]byte(`{"custom": {"nested": [1, 2.5, "x"]}, "big": 12345678901234567890}`), ".json")
	require.NoError(t, err)

	got, err := FormatAt(s, "json", generated)
	require.NoError(t, err)
	assert.Contains(t, got, `"big": 12345678901234567890`)
	assert.Contains(t, got, `"nested": [`)
}

func TestFormat_UnknownFormat(t *testing.T) {
	s, err := Parse([]byte(`{}`), ".json")
	require.NoError(t, err)
	_, err = Format(s, "html")
	assert.Error(t, err)
}

func TestParse_YAML(t *testing.T) {
	s, err := Parse([]byte(`
context:
  domain: data-systems
  tech_stack: [Kafka]
questions_and_responses:
  - question:
      id: q1
      text: Who owns the data
      priority: high
    response: ""
  - question:
      id: q2
      text: Where is it stored
    response: S3
`), ".yaml")
	require.NoError(t, err)
	assert.Equal(t, "data-systems", s.Context.Domain)

	findings := s.ResolveFindings()
	require.Len(t, findings, 2)
	assert.Equal(t, RiskCritical, findings[0].RiskLevel)
	assert.Equal(t, RiskCovered, findings[1].RiskLevel)

	raw, ok := s.Raw().(map[string]any)
	require.True(t, ok)
	assert.Contains(t, raw, "questions_and_responses")
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`[1, 2]`), ".json")
	assert.Error(t, err, "a session must be an object")

	_, err = Parse([]byte(`{"context": {"tech_stack": "React"}}`), ".json")
	assert.Error(t, err)

	_, err = Parse([]byte("a: [\n"), ".yml")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(gapSession), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Gaps, 5)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFindingsFromGaps(t *testing.T) {
	gaps := []gap.Gap{
		{QuestionID: "a", Status: gap.StatusMissing, Priority: "critical"},
		{QuestionID: "b", Status: gap.StatusMissing, Priority: "low"},
		{QuestionID: "c", Status: gap.StatusNotApplicable},
		{Status: gap.StatusCovered, Coverage: 0.9,
			AutoAnswer: &gap.AutoAnswer{Text: "yes", Confidence: 0.8, Sources: []string{"README.md"}}},
	}

	got := FindingsFromGaps(gaps)
	require.Len(t, got, 3)
	assert.Equal(t, RiskCritical, got[0].RiskLevel)
	assert.Equal(t, RiskHigh, got[1].RiskLevel)
	assert.Equal(t, Finding{
		Title:      "Unknown",
		RiskLevel:  RiskCovered,
		Coverage:   0.9,
		Sources:    []string{"README.md"},
		AutoAnswer: "yes",
		Confidence: 0.8,
	}, got[2])
}

func TestCategorizeFindings(t *testing.T) {
	items := []QuestionResponse{
		{Question: premortem.Question{ID: "q1", Text: "t1", Priority: "high"}, Response: "不明です"},
		{Question: premortem.Question{ID: "q2", Text: "t2", Priority: "low"}, Response: ""},
		{Question: premortem.Question{ID: "q3", Text: "t3"}, Response: "まだわからない"},
		{Question: premortem.Question{Text: "t4"}, Response: "We use Postgres"},
	}

	got := CategorizeFindings(items)
	require.Len(t, got, 4)
	assert.Equal(t, Finding{Title: "q1", Description: "t1", RiskLevel: RiskCritical, Recommendation: reviewNeeded}, got[0])
	assert.Equal(t, RiskLow, got[1].RiskLevel)
	assert.Equal(t, RiskMedium, got[2].RiskLevel)
	assert.Equal(t, Finding{Title: "Unknown", RiskLevel: RiskCovered}, got[3])
}

func TestResolveFindings_Precedence(t *testing.T) {
	doc := Document{
		Gaps:                  []gap.Gap{{QuestionID: "g", Status: gap.StatusCovered}},
		QuestionsAndResponses: []QuestionResponse{{Question: premortem.Question{ID: "qa"}, Response: "done"}},
	}
	assert.Equal(t, "qa", doc.ResolveFindings()[0].Title)

	doc.Findings = []Finding{{Title: "explicit", RiskLevel: RiskLow}}
	assert.Equal(t, "explicit", doc.ResolveFindings()[0].Title)

	assert.Nil(t, (&Document{}).ResolveFindings())
}

func TestResolveFindings_ExplicitEmpty(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "empty findings skip hand answers",
			doc: `{"findings": [], "questions_and_responses": [
				{"question": {"id": "qa", "priority": "high"}, "response": ""}]}`,
			want: []string{},
		},
		{
			name: "empty findings still use gaps",
			doc: `{"findings": [], "gaps": [{"question_id": "g", "status": "covered"}],
				"questions_and_responses": [{"question": {"id": "qa"}, "response": ""}]}`,
			want: []string{"g"},
		},
		{
			name: "no findings key uses hand answers",
			doc: `{"gaps": [{"question_id": "g", "status": "covered"}],
				"questions_and_responses": [{"question": {"id": "qa"}, "response": ""}]}`,
			want: []string{"qa"},
		},
		{
			name: "empty hand answers fall back to gaps",
			doc:  `{"questions_and_responses": [], "gaps": [{"question_id": "g", "status": "missing"}]}`,
			want: []string{"g"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.doc), ".json")
			require.NoError(t, err)

			titles := []string{}
			for _, f := range s.ResolveFindings() {
				titles = append(titles, f.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestNewSession(t *testing.T) {
	pctx := premortem.ProjectContext{Domain: "security", TechStack: []string{"Go"}}
	res := &gap.Result{
		Gaps:    []gap.Gap{{QuestionID: "q1", Status: gap.StatusMissing, Priority: "critical"}},
		Summary: gap.Summary{Total: 1, Missing: 1},
	}

	s, err := NewSession(pctx, res, generated)
	require.NoError(t, err)

	_, err = uuid.Parse(s.SessionID)
	assert.NoError(t, err, "session id should be a UUID")
	assert.Equal(t, "2026-03-04T05:06:07Z", s.CreatedAt)
	assert.Equal(t, map[string]int{"total": 1, "covered": 0, "needs_clarification": 0, "missing": 1, "not_applicable": 0}, s.GapSummary)

	md, err := FormatAt(s, "markdown", generated)
	require.NoError(t, err)
	assert.Contains(t, md, "**Overall Coverage**: 0.0%")
	assert.Contains(t, md, "## Critical Issues (🔴)\n\n### 1. q1")

	out, err := FormatAt(s, "json", generated)
	require.NoError(t, err)
	assert.Contains(t, out, s.SessionID)
}
