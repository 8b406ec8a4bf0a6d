package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/forage-assist/internal/agent"
	"github.com/firefly-engineering/forage-assist/internal/errors"
	"github.com/firefly-engineering/forage-assist/internal/project"
)

var (
	agentUseSerena    bool
	agentQuickExplore bool
	agentLanguage     string
	agentFrameworks   string
	agentTools        string
	agentContextFile  string
	agentDetect       bool
	agentThoroughness string
	agentPromptOnly   bool
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Pick sub-agents and skills for a task",
}

var agentSelectCmd = &cobra.Command{
	Use:   "select <task description>",
	Short: "Classify a task and select the agent, skills and prompt for it",
	Long: `Classify a task description, select the sub-agent that should handle it,
suggest companion skills and render the agent prompt.

Project metadata for skill detection is merged from, in order: the
--language/--frameworks/--tools flags, the --context-file document and,
with --detect, the project found under --root.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAgentSelect,
}

func init() {
	agentSelectCmd.Flags().BoolVar(&agentUseSerena, "use-serena", false, "Force the serena agent")
	agentSelectCmd.Flags().BoolVar(&agentQuickExplore, "quick-explore", false, "Force the explore agent")
	agentSelectCmd.Flags().StringVar(&agentLanguage, "language", "", "Project language")
	agentSelectCmd.Flags().StringVar(&agentFrameworks, "frameworks", "", "Comma separated frameworks")
	agentSelectCmd.Flags().StringVar(&agentTools, "tools", "", "Comma separated tools")
	agentSelectCmd.Flags().StringVar(&agentContextFile, "context-file", "", "JSON context document")
	agentSelectCmd.Flags().BoolVar(&agentDetect, "detect", false, "Detect project metadata under --root")
	agentSelectCmd.Flags().StringVar(&agentThoroughness, "thoroughness", "", "Explore thoroughness (quick, medium, very thorough)")
	agentSelectCmd.Flags().BoolVar(&agentPromptOnly, "prompt-only", false, "Print only the rendered prompt")

	agentCmd.AddCommand(agentSelectCmd)
	rootCmd.AddCommand(agentCmd)
}

func runAgentSelect(cmd *cobra.Command, args []string) error {
	description := strings.TrimSpace(strings.Join(args, " "))
	if description == "" {
		return errors.InvalidInput("task description must not be empty")
	}

	overrides := agent.Overrides{UseSerena: agentUseSerena, QuickExplore: agentQuickExplore}
	sources := []agent.MetadataSource{agent.ProjectMetadata{
		Language:   agentLanguage,
		Frameworks: splitList(agentFrameworks),
		Tools:      splitList(agentTools),
	}}
	var promptCtx agent.PromptContext

	if agentContextFile != "" {
		data, err := readInput(agentContextFile)
		if err != nil {
			return err
		}
		cf, err := agent.ParseContextFile(data)
		if err != nil {
			return errors.InvalidInputf("%s: %v", agentContextFile, err)
		}
		sources = append(sources, cf)
		promptCtx = cf.PromptContext()
		overrides.UseSerena = overrides.UseSerena || cf.UseSerena
		overrides.QuickExplore = overrides.QuickExplore || cf.QuickExplore
	}

	if agentDetect {
		info := project.Detect(application.Root)
		sources = append(sources, agent.DetectedProject{Info: info})
		if promptCtx.ProjectType == "" && info.ProjectType != project.Unknown {
			promptCtx.ProjectType = info.ProjectType
		}
		if promptCtx.Language == "" && info.Language != project.Unknown {
			promptCtx.Language = info.Language
		}
		if len(promptCtx.Frameworks) == 0 {
			promptCtx.Frameworks = info.Frameworks
		}
	}

	if agentThoroughness != "" {
		promptCtx.Thoroughness = agentThoroughness
	}

	sel := agent.SelectOptimal(description, overrides, agent.NormalizeMetadata(sources...), promptCtx)
	if agentPromptOnly {
		return writeOutput(cmd, "", sel.Prompt)
	}
	return writeJSON(cmd, "", sel)
}
