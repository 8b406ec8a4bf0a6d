package agent

import (
	"reflect"
	"strings"
	"testing"

	"github.com/firefly-engineering/forage-assist/internal/project"
)

func TestClassifyTask(t *testing.T) {
	tests := []struct {
		description string
		want        TaskType
	}{
		{"CI failed on the main branch", TaskCIDiagnosis},
		{"GitHub Actions build error in workflow", TaskCIDiagnosis},
		{"Fix the login bug", TaskErrorFixing},
		{"Resolve a TypeScript error", TaskErrorFixing},
		{"Review the payment module", TaskCodeReview},
		{"Audit our best practice usage", TaskCodeReview},
		{"What is the impact of renaming this symbol", TaskSemanticAnalysis},
		{"Where is the router configured", TaskExploration},
		{"Why does the cache grow", TaskInvestigation},
		{"Implement OAuth login", TaskImplementation},
		{"", TaskInvestigation},
		{"hello there", TaskInvestigation},
		// "check" outranks "refactor"
		{"Check the refactor", TaskCodeReview},
		// "ci失敗" is matched as a raw substring
		{"ci失敗を直す", TaskCIDiagnosis},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if got := ClassifyTask(tt.description); got != tt.want {
				t.Errorf("ClassifyTask(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

func TestSelectAgent(t *testing.T) {
	tests := []struct {
		name string
		task TaskType
		opts Overrides
		want Type
	}{
		{"investigation", TaskInvestigation, Overrides{}, Researcher},
		{"implementation", TaskImplementation, Overrides{}, Orchestrator},
		{"error fixing", TaskErrorFixing, Overrides{}, ErrorFixer},
		{"ci diagnosis", TaskCIDiagnosis, Overrides{}, ErrorFixer},
		{"code review", TaskCodeReview, Overrides{}, CodeReviewer},
		{"semantic", TaskSemanticAnalysis, Overrides{}, Serena},
		{"exploration", TaskExploration, Overrides{}, Explore},
		{"unknown", TaskType("mystery"), Overrides{}, Researcher},
		{"use serena", TaskImplementation, Overrides{UseSerena: true}, Serena},
		{"quick explore", TaskImplementation, Overrides{QuickExplore: true}, Explore},
		{"serena wins", TaskImplementation, Overrides{UseSerena: true, QuickExplore: true}, Serena},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectAgent(tt.task, tt.opts); got != tt.want {
				t.Errorf("SelectAgent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func skillNames(skills []SkillSuggestion) []string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names
}

func TestDetectSkills(t *testing.T) {
	tests := []struct {
		name        string
		description string
		meta        ProjectMetadata
		want        []string
	}{
		{
			name:        "nothing",
			description: "hello",
			want:        []string{},
		},
		{
			name:        "typescript language",
			description: "add a form",
			meta:        ProjectMetadata{Language: "TypeScript", Frameworks: []string{"NextJS"}},
			want:        []string{"typescript", "react"},
		},
		{
			name:        "go with spaces",
			description: "port this to go please",
			want:        []string{"golang"},
		},
		{
			name:        "ci failure",
			description: "CI failure in github actions",
			want:        []string{"ci-diagnostics", "gh-fix-ci"},
		},
		{
			name:        "security and docs",
			description: "document the jwt auth flow in the readme",
			want:        []string{"security", "markdown-docs"},
		},
		{
			name:        "architecture and impact",
			description: "refactor the usecase layer",
			want:        []string{"semantic-analysis", "clean-architecture"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := skillNames(DetectSkills(tt.description, tt.meta))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectSkills() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectSkills_DuplicateKeepsHigherConfidence(t *testing.T) {
	meta := ProjectMetadata{Tools: []string{"ESLint"}}

	skills := DetectSkills("improve lint quality", meta)

	if len(skills) != 1 {
		t.Fatalf("expected one suggestion, got %v", skillNames(skills))
	}
	s := skills[0]
	if s.Name != "code-quality-improvement" || s.Confidence != 0.64 {
		t.Errorf("got %s %.2f, want code-quality-improvement 0.64", s.Name, s.Confidence)
	}
	if !reflect.DeepEqual(s.Triggers, []string{"eslint", "prettier"}) {
		t.Errorf("Triggers = %v, want the replacing suggestion's triggers", s.Triggers)
	}
}

func TestDetectSkills_SortedByConfidence(t *testing.T) {
	skills := DetectSkills("typescript react security docs lint impact", ProjectMetadata{})

	for i := 1; i < len(skills); i++ {
		if skills[i-1].Confidence < skills[i].Confidence {
			t.Fatalf("not sorted: %v", skills)
		}
	}
	if skills[0].Name != "typescript" {
		t.Errorf("first skill = %q, want typescript", skills[0].Name)
	}
}

func TestNormalizeMetadata(t *testing.T) {
	info := &project.Info{
		Language:   project.Unknown,
		Frameworks: []string{"react", "nextjs"},
		Tools:      []string{"eslint"},
	}

	got := NormalizeMetadata(
		ProjectMetadata{Frameworks: []string{"nextjs"}},
		nil,
		DetectedProject{Info: info},
		ProjectMetadata{Language: "typescript", Tools: []string{"eslint", "prettier"}},
		ProjectMetadata{Language: "go"},
	)

	want := ProjectMetadata{
		Language:   "typescript",
		Frameworks: []string{"nextjs", "react"},
		Tools:      []string{"eslint", "prettier"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeMetadata() = %+v, want %+v", got, want)
	}
}

func TestParseContextFile(t *testing.T) {
	data := []byte(`{
		"project_type": "nextjs-fullstack",
		"focus_areas": "auth",
		"thoroughness": "very thorough",
		"use_serena": true,
		"project_info": {"lang": "typescript", "stack": ["react", "nextjs"]},
		"project": {"language": "go", "frameworks": "gin", "tools": ["eslint", 3]},
		"projectInfo": {"project_language": "python", "tools": "prettier"}
	}`)

	cf, err := ParseContextFile(data)
	if err != nil {
		t.Fatalf("ParseContextFile() error = %v", err)
	}

	meta := cf.ProjectMetadata()
	want := ProjectMetadata{
		Language:   "typescript",
		Frameworks: []string{"react", "nextjs", "gin"},
		Tools:      []string{"eslint", "3", "prettier"},
	}
	if !reflect.DeepEqual(meta, want) {
		t.Errorf("ProjectMetadata() = %+v, want %+v", meta, want)
	}
	if !cf.UseSerena || cf.QuickExplore {
		t.Errorf("Overrides = %+v", cf.Overrides)
	}

	pc := cf.PromptContext()
	if pc.ProjectType != "nextjs-fullstack" || !reflect.DeepEqual(pc.FocusAreas, []string{"auth"}) {
		t.Errorf("PromptContext() = %+v", pc)
	}

	if _, err := ParseContextFile([]byte(`{"frameworks": {"a": 1}}`)); err == nil {
		t.Error("expected error for object frameworks")
	}
	if _, err := ParseContextFile([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestCreatePrompt(t *testing.T) {
	t.Run("minimal", func(t *testing.T) {
		got := CreatePrompt("Find the router", Type("unknown"), PromptContext{}, nil)
		if got != "\nTask: Find the router\n\n\n" {
			t.Errorf("CreatePrompt() = %q", got)
		}
	})

	t.Run("researcher with context and skills", func(t *testing.T) {
		ctx := PromptContext{
			ProjectType: "react-app",
			Language:    "typescript",
			Frameworks:  []string{"react", "vite"},
			Constraints: "no new deps",
		}
		skills := []SkillSuggestion{{Name: "typescript", Reason: "types", Confidence: 0.86}}

		got := CreatePrompt("Why is it slow", Researcher, ctx, skills)

		want := "\nTask: Why is it slow\n\n" +
			"Context:\n- Project Type: react-app\n- Language: typescript\n- Frameworks: react, vite\n- Constraints: no new deps\n" +
			"\nApproach:\n1. Use MCP Serena for semantic code understanding\n2. Perform targeted searches with Grep\n" +
			"3. Analyze patterns and relationships\n4. Provide comprehensive insights\n\n" +
			"Focus on deep understanding and thorough analysis.\n" +
			"\nRecommended Skills to launch before/with this agent:\n" +
			"- typescript (confidence: 0.86) — types\n" +
			"Launch via the Skills system so the agent can use bundled playbooks.\n"
		if got != want {
			t.Errorf("CreatePrompt() =\n%q\nwant\n%q", got, want)
		}
	})

	t.Run("explore thoroughness", func(t *testing.T) {
		got := CreatePrompt("x", Explore, PromptContext{}, nil)
		if !strings.HasSuffix(got, "Thoroughness level: medium\n") {
			t.Errorf("default thoroughness missing: %q", got)
		}
		got = CreatePrompt("x", Explore, PromptContext{Thoroughness: "quick"}, nil)
		if !strings.HasSuffix(got, "Thoroughness level: quick\n") {
			t.Errorf("thoroughness not applied: %q", got)
		}
		if strings.Contains(got, "Context:") {
			t.Error("thoroughness alone should not render a context block")
		}
	})

	for _, agent := range []Type{Orchestrator, ErrorFixer, CodeReviewer, Serena} {
		t.Run(string(agent), func(t *testing.T) {
			if got := CreatePrompt("x", agent, PromptContext{}, nil); !strings.Contains(got, "\nApproach:\n1. ") {
				t.Errorf("missing approach for %s: %q", agent, got)
			}
		})
	}
}

func TestSelectOptimal(t *testing.T) {
	sel := SelectOptimal("Fix the TypeScript error in tsconfig",
		Overrides{}, ProjectMetadata{Tools: []string{"eslint"}}, PromptContext{Language: "typescript"})

	if sel.TaskType != TaskErrorFixing || sel.AgentType != ErrorFixer {
		t.Errorf("got task=%q agent=%q", sel.TaskType, sel.AgentType)
	}
	if !reflect.DeepEqual(skillNames(sel.Skills), []string{"typescript", "code-quality-improvement"}) {
		t.Errorf("Skills = %v", skillNames(sel.Skills))
	}
	if !strings.Contains(sel.Prompt, "Run quality gates after each fix.") {
		t.Errorf("Prompt missing error-fixer approach: %q", sel.Prompt)
	}
	if !strings.Contains(sel.Prompt, "- Language: typescript") {
		t.Errorf("Prompt missing context: %q", sel.Prompt)
	}
}
