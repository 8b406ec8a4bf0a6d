// Package agent picks a sub-agent and companion skills for a developer task
// and renders the prompt handed to that agent.
//
// The pipeline is keyword driven and deterministic:
//
//	task := agent.ClassifyTask(description)
//	kind := agent.SelectAgent(task, agent.Overrides{})
//	skills := agent.DetectSkills(description, meta)
//	prompt := agent.CreatePrompt(description, kind, promptCtx, skills)
//
// SelectOptimal chains the four steps.
package agent

// TaskType is the classification of a task description.
type TaskType string

const (
	TaskInvestigation    TaskType = "investigation"
	TaskImplementation   TaskType = "implementation"
	TaskErrorFixing      TaskType = "error_fixing"
	TaskCIDiagnosis      TaskType = "ci_diagnosis"
	TaskCodeReview       TaskType = "code_review"
	TaskSemanticAnalysis TaskType = "semantic_analysis"
	TaskExploration      TaskType = "exploration"
)

// Type identifies a sub-agent.
type Type string

const (
	Researcher   Type = "researcher"
	Orchestrator Type = "orchestrator"
	ErrorFixer   Type = "error-fixer"
	CodeReviewer Type = "code-reviewer"
	Serena       Type = "serena"
	Explore      Type = "explore"
)

// Overrides force a particular agent regardless of the task type.
// UseSerena takes precedence over QuickExplore.
type Overrides struct {
	UseSerena    bool `json:"use_serena"`
	QuickExplore bool `json:"quick_explore"`
}

var agentForTask = map[TaskType]Type{
	TaskInvestigation:    Researcher,
	TaskImplementation:   Orchestrator,
	TaskErrorFixing:      ErrorFixer,
	TaskCIDiagnosis:      ErrorFixer,
	TaskCodeReview:       CodeReviewer,
	TaskSemanticAnalysis: Serena,
	TaskExploration:      Explore,
}

// SelectAgent maps a task type to its agent. Unknown task types get the
// researcher.
func SelectAgent(task TaskType, opts Overrides) Type {
	agent, ok := agentForTask[task]
	if !ok {
		agent = Researcher
	}

	switch {
	case opts.UseSerena:
		return Serena
	case opts.QuickExplore:
		return Explore
	}
	return agent
}
