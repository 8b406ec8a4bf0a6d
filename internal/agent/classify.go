package agent

import "strings"

var (
	ciKeywords = []string{
		"ci failure", "ci failed", "ci diagnose", "ci diagnosis", "ci失敗", "ci診断",
		"github actions", "workflow failure", "workflow failed", "failing checks",
		"check failed", "build error", "test failure",
	}
	errorKeywords = []string{
		"fix", "error", "bug", "issue", "problem", "broken", "failing", "eslint",
		"typescript error", "type error",
	}
	reviewKeywords = []string{
		"review", "quality", "best practice", "check", "evaluate", "assess", "audit", "verify",
	}
	semanticKeywords = []string{
		"impact", "dependency", "reference", "symbol", "api change", "breaking change", "refactor",
	}
	explorationKeywords = []string{
		"where", "structure", "codebase", "architecture", "find files", "search for", "locate", "pattern",
	}
	investigationKeywords = []string{
		"why", "analyze", "investigate", "understand", "explore", "research", "find out",
		"discover", "what is", "how does",
	}
	implementationKeywords = []string{
		"implement", "create", "build", "add", "develop", "construct", "make", "write", "code", "feature",
	}
)

// classification order; the first list with a hit decides.
var taskRules = []struct {
	task     TaskType
	keywords []string
}{
	{TaskCIDiagnosis, ciKeywords},
	{TaskErrorFixing, errorKeywords},
	{TaskCodeReview, reviewKeywords},
	{TaskSemanticAnalysis, semanticKeywords},
	{TaskExploration, explorationKeywords},
	{TaskInvestigation, investigationKeywords},
	{TaskImplementation, implementationKeywords},
}

// ClassifyTask classifies description by case-insensitive substring matching.
// Descriptions with no recognised keyword are investigations.
func ClassifyTask(description string) TaskType {
	text := strings.ToLower(description)
	for _, rule := range taskRules {
		if containsAny(text, rule.keywords) {
			return rule.task
		}
	}
	return TaskInvestigation
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
