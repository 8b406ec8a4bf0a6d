package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/forage-assist/internal/errors"
	"github.com/firefly-engineering/forage-assist/internal/project"
)

var projectFirstMatch bool

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Inspect the project under --root",
}

var projectDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect project type, language, frameworks and tools",
	Args:  cobra.NoArgs,
	RunE:  runProjectDetect,
}

var projectLayerCmd = &cobra.Command{
	Use:   "layer <file>...",
	Short: "Map files to their architectural layer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProjectLayer,
}

func init() {
	projectDetectCmd.Flags().BoolVar(&projectFirstMatch, "first-match", false, "Let the first matching detector set type and language")

	projectCmd.AddCommand(projectDetectCmd)
	projectCmd.AddCommand(projectLayerCmd)
	rootCmd.AddCommand(projectCmd)
}

func detectProject() *project.Info {
	policy := project.LastMatchWins
	if projectFirstMatch {
		policy = project.FirstMatchWins
	}
	return project.NewAnalyzer(application.Root, project.WithPolicy(policy)).Analyze()
}

func runProjectDetect(cmd *cobra.Command, args []string) error {
	return writeJSON(cmd, "", detectProject())
}

func runProjectLayer(cmd *cobra.Command, args []string) error {
	info := project.Detect(application.Root)

	layers := make(map[string]string, len(args))
	for _, f := range args {
		if f == "" {
			return errors.InvalidInput("file path must not be empty")
		}
		layers[f] = project.Layer(f, info)
	}
	return writeJSON(cmd, "", layers)
}
