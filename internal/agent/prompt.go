package agent

import (
	"bytes"
	"embed"
	"strings"
	"text/template"
)

//go:embed templates/*.md.tmpl
var templatesFS embed.FS

var promptTemplates *template.Template

func init() {
	funcs := template.FuncMap{
		"joinStrings": strings.Join,
	}
	promptTemplates = template.Must(
		template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.md.tmpl"),
	)
}

// renderTemplate executes a named template with the given data and returns the result.
func renderTemplate(name string, data any) string {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		panic("agent: failed to render template " + name + ": " + err.Error())
	}
	return buf.String()
}

// DefaultThoroughness is the explore agent's thoroughness when none is given.
const DefaultThoroughness = "medium"

// PromptContext is optional project context included in agent prompts.
type PromptContext struct {
	ProjectType  string   `json:"project_type,omitempty"`
	Language     string   `json:"language,omitempty"`
	Frameworks   []string `json:"frameworks,omitempty"`
	FocusAreas   []string `json:"focus_areas,omitempty"`
	Constraints  string   `json:"constraints,omitempty"`
	Thoroughness string   `json:"thoroughness,omitempty"`
}

func (c PromptContext) empty() bool {
	return c.ProjectType == "" && c.Language == "" && len(c.Frameworks) == 0 &&
		len(c.FocusAreas) == 0 && c.Constraints == ""
}

// CreatePrompt renders the prompt for agent. The context block is omitted
// when ctx carries no project fields.
func CreatePrompt(description string, agent Type, ctx PromptContext, skills []SkillSuggestion) string {
	var block *PromptContext
	if !ctx.empty() {
		block = &ctx
	}

	var b strings.Builder
	b.WriteString(renderTemplate("task", struct {
		Task    string
		Context *PromptContext
	}{description, block}))

	if _, known := approachAgents[agent]; known {
		thoroughness := ctx.Thoroughness
		if thoroughness == "" {
			thoroughness = DefaultThoroughness
		}
		b.WriteString(renderTemplate(string(agent), struct{ Thoroughness string }{thoroughness}))
	}

	b.WriteString(renderTemplate("skills", skills))
	return b.String()
}

var approachAgents = map[Type]struct{}{
	Researcher:   {},
	Orchestrator: {},
	ErrorFixer:   {},
	CodeReviewer: {},
	Serena:       {},
	Explore:      {},
}

// Selection is the outcome of SelectOptimal.
type Selection struct {
	AgentType Type              `json:"agent_type"`
	TaskType  TaskType          `json:"task_type"`
	Prompt    string            `json:"prompt"`
	Skills    []SkillSuggestion `json:"skills"`
}

// SelectOptimal classifies description, selects the agent, detects skills and
// renders the prompt.
func SelectOptimal(description string, overrides Overrides, meta ProjectMetadata, ctx PromptContext) *Selection {
	task := ClassifyTask(description)
	agent := SelectAgent(task, overrides)
	skills := DetectSkills(description, meta)

	return &Selection{
		AgentType: agent,
		TaskType:  task,
		Prompt:    CreatePrompt(description, agent, ctx, skills),
		Skills:    skills,
	}
}
