package gap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firefly-engineering/forage-assist/internal/codesearch"
	"github.com/firefly-engineering/forage-assist/internal/premortem"
)

const readme = "# Project\n\nUsers login with OAuth.\n\nAuthentication is handled by the auth service.\n\nUnrelated paragraph."

var (
	authQuestion = premortem.Question{
		ID:       "auth-1",
		Text:     "How is authentication handled?",
		Triggers: []string{"auth", "login"},
		Priority: premortem.PriorityCritical,
	}
	drQuestion = premortem.Question{
		ID:       "dr-1",
		Text:     "Disaster recovery?",
		Triggers: []string{"backup"},
		Priority: premortem.PriorityCritical,
	}
	regionQuestion = premortem.Question{
		Text:     "Which regions?",
		Triggers: []string{"latency"},
	}
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "README.md", readme)
	writeFile(t, root, "go.mod", "module example.com/app\n\ngo 1.22\n")
	writeFile(t, root, ".kiro/steering/security.md", "---\ninclusion: always\n---\nAll login flows use auth tokens.\n")
	writeFile(t, root, ".kiro/specs/login/design.md", "Disaster recovery relies on nightly backup jobs.")
	return root
}

func TestKeywords(t *testing.T) {
	assert.Equal(t,
		[]string{"auth", "login", "how", "is", "authentication", "handled?"},
		Keywords(authQuestion))

	long := premortem.Question{Text: "a b c d e f g h i j k l"}
	assert.Len(t, Keywords(long), 10)
	assert.Empty(t, Keywords(premortem.Question{}))
}

func TestCandidateFiles(t *testing.T) {
	root := newProject(t)
	writeFile(t, root, ".kiro/steering/api.md", "api")
	writeFile(t, root, ".kiro/steering/notes.txt", "ignored")
	writeFile(t, root, "package.json", "{}")

	a := New(root)
	assert.Equal(t, []string{
		"README.md",
		filepath.Join(".kiro", "steering", "api.md"),
		filepath.Join(".kiro", "steering", "security.md"),
		filepath.Join(".kiro", "specs", "login", "design.md"),
		"package.json",
		"go.mod",
	}, a.CandidateFiles())
}

func TestCandidateFiles_SymlinkStaysInRoot(t *testing.T) {
	outside := t.TempDir()
	writeFile(t, outside, "secret.md", "auth login")

	root := t.TempDir()
	if err := os.Symlink(filepath.Join(outside, "secret.md"), filepath.Join(root, "README.md")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	assert.Empty(t, New(root).CandidateFiles())
}

func TestExtractRelevant(t *testing.T) {
	a := New(newProject(t))

	content, relevance, ok := a.ExtractRelevant("README.md", authQuestion)
	require.True(t, ok)
	assert.InDelta(t, 4.0/6.0, relevance, 1e-9)
	assert.Equal(t, "Users login with OAuth.\n\nAuthentication is handled by the auth service.", content)

	_, _, ok = a.ExtractRelevant("go.mod", authQuestion)
	assert.False(t, ok, "go.mod should be below the relevance threshold")

	_, _, ok = a.ExtractRelevant("missing.md", authQuestion)
	assert.False(t, ok)

	_, _, ok = a.ExtractRelevant("README.md", premortem.Question{})
	assert.False(t, ok, "a question without keywords matches nothing")
}

func TestExtractRelevant_StripsFrontMatter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "CLAUDE.md", "---\ntitle: auth login how authentication\n---\nNothing here.\n")

	_, _, ok := New(root).ExtractRelevant("CLAUDE.md", authQuestion)
	assert.False(t, ok)
}

func TestExtractRelevant_CachesContent(t *testing.T) {
	root := newProject(t)
	a := New(root)

	_, _, ok := a.ExtractRelevant("README.md", authQuestion)
	require.True(t, ok)

	require.NoError(t, os.Remove(filepath.Join(root, "README.md")))
	_, _, ok = a.ExtractRelevant("README.md", authQuestion)
	assert.True(t, ok, "second read should come from the cache")
}

func TestExtractRelevant_LimitsParagraphs(t *testing.T) {
	root := t.TempDir()
	paras := make([]string, 8)
	for i := range paras {
		paras[i] = "auth login note"
	}
	writeFile(t, root, "AGENTS.md", strings.Join(paras, "\n\n"))

	content, _, ok := New(root).ExtractRelevant("AGENTS.md", authQuestion)
	require.True(t, ok)
	assert.Equal(t, 5, strings.Count(content, "auth login note"))
}

func TestExtractRelevant_CountsCharacters(t *testing.T) {
	tests := []struct {
		name    string
		prefix  int
		matched bool
	}{
		{"multibyte prefix within the window", 3400, true},
		{"paragraph past the window", maxReadChars, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, "README.md", strings.Repeat("設", tt.prefix)+"\n\nUsers login through the auth service.")

			content, _, ok := New(root).ExtractRelevant("README.md", authQuestion)
			assert.Equal(t, tt.matched, ok)
			if tt.matched {
				assert.Equal(t, "Users login through the auth service.", content)
			}
		})
	}
}

func TestFirstChars(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"aあb", 2, "aあ"},
		{"設計書", 1, "設"},
		{"short", 10, "short"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		got := firstChars([]byte(tt.in), tt.n)
		assert.Equal(t, tt.want, string(got))
		assert.True(t, utf8.Valid(got))
	}
}

func TestInferAnswer(t *testing.T) {
	a := New(newProject(t))

	answer := a.InferAnswer(authQuestion, []string{"README.md", "go.mod"})
	assert.Equal(t, "From README.md:\nUsers login with OAuth.\n\nAuthentication is handled by the auth service.", answer.Text)
	assert.InDelta(t, 4.0/6.0, answer.Confidence, 1e-9)
	assert.Equal(t, []string{"README.md"}, answer.Sources)

	none := a.InferAnswer(regionQuestion, []string{"README.md"})
	assert.Equal(t, NoAnswerText, none.Text)
	assert.Zero(t, none.Confidence)
	assert.Empty(t, none.Sources)
}

func TestCoverage(t *testing.T) {
	tests := []struct {
		name   string
		answer AutoAnswer
		want   float64
	}{
		{"zero confidence", AutoAnswer{Text: strings.Repeat("word ", 400), Sources: []string{"a", "b"}}, 0},
		{"one source", AutoAnswer{Text: "a b", Confidence: 0.5, Sources: []string{"a"}}, 0.404},
		{"capped bonuses", AutoAnswer{Text: strings.Repeat("w ", 1000), Confidence: 1, Sources: []string{"a", "b", "c"}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Coverage(tt.answer), 1e-9)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		coverage   float64
		text       string
		want       Status
	}{
		{"covered", 0.8, 0.9, "", StatusCovered},
		{"high coverage low confidence", 0.5, 0.9, "", StatusNeedsClarification},
		{"partial", 0.5, 0.6, "", StatusNeedsClarification},
		{"low", 0.1, 0.1, "", StatusMissing},
		{"not applicable marker", 0.4, 0.3, "This is N/A for us", StatusNotApplicable},
		{"doesn't apply", 0.4, 0.3, "it doesn't apply", StatusNotApplicable},
		{"middle without marker", 0.4, 0.3, "nothing", StatusMissing},
		{"boundary 0.5", 0.4, 0.5, "nothing", StatusMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer := AutoAnswer{Text: tt.text, Confidence: tt.confidence}
			assert.Equal(t, tt.want, Classify(answer, tt.coverage))
		})
	}
}

func TestRecommend(t *testing.T) {
	answer := AutoAnswer{Sources: []string{"README.md", "go.mod"}}

	assert.Equal(t,
		"✅ This aspect is well-documented. Review README.md, go.mod to ensure alignment.",
		Recommend(authQuestion, StatusCovered, answer))

	assert.Equal(t,
		"⚠️ Partial coverage found. Consider:\n"+
			"1. Review existing documentation: README.md, go.mod\n"+
			"2. Fill gaps in: How is authentication handled?\n"+
			"3. Add to design document or steering files",
		Recommend(authQuestion, StatusNeedsClarification, answer))

	assert.True(t, strings.HasPrefix(Recommend(authQuestion, StatusMissing, answer), "🔴 CRITICAL:"))
	assert.Equal(t,
		"📝 TODO: Document this in planning phase:\n1. Which regions?\n2. Add to .kiro/steering/ or create Issue",
		Recommend(regionQuestion, StatusMissing, answer))

	assert.Equal(t,
		"ℹ️ This question may not apply to your project. Verify and mark as not applicable if confirmed.",
		Recommend(authQuestion, StatusNotApplicable, answer))
}

type fakeSearcher struct {
	calls int
}

func (f *fakeSearcher) SearchQuestion(_ context.Context, q premortem.Question) []codesearch.TermHits {
	f.calls++
	return []codesearch.TermHits{{Term: q.Triggers[0], Hits: []codesearch.Hit{{Path: "src/x.go", Line: 7}}}}
}

func TestAnalyzeAll(t *testing.T) {
	search := &fakeSearcher{}
	a := New(newProject(t), WithCodeSearch(search))

	res := a.AnalyzeAll(context.Background(), []premortem.Question{authQuestion, drQuestion, regionQuestion})
	require.Len(t, res.Gaps, 3)

	auth := res.Gaps[0]
	assert.Equal(t, "auth-1", auth.QuestionID)
	assert.Equal(t, StatusNeedsClarification, auth.Status)
	assert.InDelta(t, 0.544, auth.Coverage, 1e-9)
	require.NotNil(t, auth.AutoAnswer)
	assert.InDelta(t, 0.5, auth.AutoAnswer.Confidence, 1e-9)
	assert.Equal(t, []string{"README.md", filepath.Join(".kiro", "steering", "security.md")}, auth.AutoAnswer.Sources)
	assert.Contains(t, auth.AutoAnswer.Text, "From security.md:\nAll login flows use auth tokens.")
	assert.Contains(t, auth.AutoAnswer.Text, "## Codebase Analysis")
	assert.Contains(t, auth.AutoAnswer.Text, "- match in `src/x.go:7`")

	dr := res.Gaps[1]
	assert.Equal(t, StatusNeedsClarification, dr.Status)
	require.NotNil(t, dr.AutoAnswer)
	assert.Equal(t, []string{filepath.Join(".kiro", "specs", "login", "design.md")}, dr.AutoAnswer.Sources)

	region := res.Gaps[2]
	assert.Equal(t, "UNKNOWN", region.QuestionID)
	assert.Equal(t, StatusMissing, region.Status)
	assert.Zero(t, region.Coverage)
	assert.Nil(t, region.AutoAnswer)
	assert.Equal(t, premortem.PriorityMedium, region.Priority)

	assert.Equal(t, Summary{Total: 3, NeedsClarification: 2, Missing: 1}, res.Summary)
	assert.Equal(t, 2, search.calls, "code search runs only for kept answers")
}

func TestSummarize(t *testing.T) {
	gaps := []Gap{
		{Status: StatusCovered}, {Status: StatusCovered},
		{Status: StatusNotApplicable}, {Status: StatusMissing},
	}
	assert.Equal(t, Summary{Total: 4, Covered: 2, Missing: 1, NotApplicable: 1}, Summarize(gaps))
}

func TestParseSelection(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		sel, err := ParseSelection([]byte(`{
			"domain": "web-development",
			"selected_questions": [{"id": "q1", "text": "Why?", "score": 0.7, "triggers": ["x"]}]
		}`), ".json")
		require.NoError(t, err)
		assert.Equal(t, "web-development", sel.Domain)
		require.Len(t, sel.SelectedQuestions, 1)
		assert.Equal(t, 0.7, sel.SelectedQuestions[0].Score)
		assert.Equal(t, []premortem.Question{{ID: "q1", Text: "Why?", Triggers: []string{"x"}}}, sel.Questions())
	})

	t.Run("yaml", func(t *testing.T) {
		sel, err := ParseSelection([]byte("selected_questions:\n  - id: q2\n    text: When?\n    score: 0.5\n"), ".YML")
		require.NoError(t, err)
		require.Len(t, sel.SelectedQuestions, 1)
		assert.Equal(t, "q2", sel.SelectedQuestions[0].ID)
		assert.Equal(t, 0.5, sel.SelectedQuestions[0].Score)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseSelection([]byte("{"), ".json")
		assert.Error(t, err)
	})
}

func TestLoadSelection_Missing(t *testing.T) {
	_, err := LoadSelection(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestParseResult(t *testing.T) {
	t.Run("json with extra keys", func(t *testing.T) {
		res, err := ParseResult([]byte(`{
			"session_id": "abc",
			"gaps": [
				{"question_id": "q1", "status": "missing", "auto_answer": null, "priority": "critical"},
				{"question_id": "q2", "status": "covered", "auto_answer": {"text": "x", "confidence": 0.9, "sources": ["README.md"]}}
			]
		}`), ".json")
		require.NoError(t, err)
		require.Len(t, res.Gaps, 2)
		assert.Nil(t, res.Gaps[0].AutoAnswer)
		require.NotNil(t, res.Gaps[1].AutoAnswer)
		assert.Equal(t, []string{"README.md"}, res.Gaps[1].AutoAnswer.Sources)
		assert.Equal(t, Summary{Total: 2, Covered: 1, Missing: 1}, res.Summary)
	})

	t.Run("yaml without gaps", func(t *testing.T) {
		res, err := ParseResult([]byte("summary:\n  total: 3\n"), ".yaml")
		require.NoError(t, err)
		assert.NotNil(t, res.Gaps)
		assert.Equal(t, Summary{}, res.Summary)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseResult([]byte("[1, 2"), ".json")
		assert.Error(t, err)
	})
}
