package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/forage-assist/internal/config"
	"github.com/firefly-engineering/forage-assist/internal/errors"
	"github.com/firefly-engineering/forage-assist/internal/gap"
	"github.com/firefly-engineering/forage-assist/internal/logging"
	"github.com/firefly-engineering/forage-assist/internal/premortem"
	"github.com/firefly-engineering/forage-assist/internal/report"
)

// questionFlags are the question selection flags shared by context and run.
type questionFlags struct {
	dir      string
	min      int
	max      int
	minScore float64
}

func (q *questionFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.dir, "questions-dir", "", "Directory with question pools (default premortem.questions_dir)")
	cmd.Flags().IntVar(&q.min, "min-questions", 3, "Minimum number of questions")
	cmd.Flags().IntVar(&q.max, "max-questions", 5, "Maximum number of questions")
	cmd.Flags().Float64Var(&q.minScore, "min-score", 0.5, "Minimum relevance score")
}

// resolve merges the flags over the configuration. Only flags set on the
// command line override configured values.
func (q *questionFlags) resolve(cmd *cobra.Command) (string, premortem.SelectOptions, error) {
	cfg := application.Config.Premortem
	opts := premortem.SelectOptions{MinCount: cfg.MinQuestions, MaxCount: cfg.MaxQuestions, MinScore: cfg.MinScore}
	dir := application.QuestionsDir()

	flags := cmd.Flags()
	if flags.Changed("questions-dir") {
		dir = q.dir
	}
	if flags.Changed("min-questions") {
		opts.MinCount = q.min
	}
	if flags.Changed("max-questions") {
		opts.MaxCount = q.max
	}
	if flags.Changed("min-score") {
		opts.MinScore = q.minScore
	}

	switch {
	case opts.MinCount < 1:
		return "", opts, errors.InvalidInputf("--min-questions must be at least 1, got %d", opts.MinCount)
	case opts.MaxCount < opts.MinCount:
		return "", opts, errors.InvalidInputf("--max-questions (%d) must not be below --min-questions (%d)", opts.MaxCount, opts.MinCount)
	case opts.MinScore < 0 || opts.MinScore > 1:
		return "", opts, errors.InvalidInputf("--min-score must be within [0,1], got %v", opts.MinScore)
	}
	return dir, opts, nil
}

// selectQuestions loads the pools for the context's domain and picks the
// top questions. No directory, or a missing one, selects nothing.
func (q *questionFlags) selectQuestions(cmd *cobra.Command, pctx premortem.ProjectContext) ([]premortem.ScoredQuestion, error) {
	dir, opts, err := q.resolve(cmd)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		logging.Debug("no questions directory configured")
		return nil, nil
	}
	if _, err := os.Stat(dir); err != nil {
		logWarning("Questions directory %s not found, skipping question selection", dir)
		return nil, nil
	}

	pool, caps, err := premortem.LoadQuestionPool(dir, pctx.Domain)
	if err != nil {
		var poolErr *premortem.PoolError
		if errors.As(err, &poolErr) {
			return nil, errors.InvalidInputf("%v", poolErr)
		}
		return nil, errors.IOError(dir, err)
	}
	logging.Debug("question pool loaded", "dir", dir, "domain", pctx.Domain, "questions", len(pool), "yaml", caps.YAMLSupported)

	return premortem.SelectTopQuestions(pool, pctx, opts), nil
}

var (
	contextInput     string
	contextFiles     string
	contextOutput    string
	contextQuestions questionFlags

	gapsInput      string
	gapsOutput     string
	gapsCodeSearch bool

	reportInput  string
	reportFormat string
	reportOutput string

	runInput         string
	runFiles         string
	runFormat        string
	runOutput        string
	runSessionOutput string
	runCodeSearch    bool
	runQuestions     questionFlags
)

var premortemCmd = &cobra.Command{
	Use:   "premortem",
	Short: "Find planning blind spots before implementation starts",
	Long: `A premortem imagines the project has already failed and asks why.

The pipeline has four steps, each available on its own:
  context  analyze the project and select planning questions
  gaps     answer the questions from project documentation
  report   render a session as markdown or JSON
  issues   file tracker issues for the gaps

run chains context, gaps and report in one go.`,
}

var premortemContextCmd = &cobra.Command{
	Use:   "context",
	Short: "Analyze the project context and select questions",
	Long: `Analyze the project context from --input, or from the project
documentation when --input is empty, and select the most relevant questions
from the question pools.`,
	Args: cobra.NoArgs,
	RunE: runPremortemContext,
}

var premortemGapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Answer selected questions from project files and classify the gaps",
	Args:  cobra.NoArgs,
	RunE:  runPremortemGaps,
}

var premortemReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a premortem session as markdown or JSON",
	Args:  cobra.NoArgs,
	RunE:  runPremortemReport,
}

var premortemRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run context analysis, gap analysis and reporting in one go",
	Args:  cobra.NoArgs,
	RunE:  runPremortemRun,
}

func init() {
	premortemContextCmd.Flags().StringVar(&contextInput, "input", "", "Project description (inferred from docs when empty)")
	premortemContextCmd.Flags().StringVar(&contextFiles, "files", "", "Comma separated files to scan for the tech stack")
	premortemContextCmd.Flags().StringVarP(&contextOutput, "output", "o", "", "Output file (default stdout)")
	contextQuestions.bind(premortemContextCmd)

	premortemGapsCmd.Flags().StringVar(&gapsInput, "input", "", "Question selection from premortem context (JSON or YAML)")
	premortemGapsCmd.Flags().StringVarP(&gapsOutput, "output", "o", "", "Output file (default stdout)")
	premortemGapsCmd.Flags().BoolVar(&gapsCodeSearch, "code-search", false, "Enrich answers with rg code search")
	_ = premortemGapsCmd.MarkFlagRequired("input")

	premortemReportCmd.Flags().StringVar(&reportInput, "input", "", "Session file (JSON or YAML)")
	premortemReportCmd.Flags().StringVar(&reportFormat, "format", "", "Output format: markdown or json (default premortem.report_format)")
	premortemReportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output file (default stdout)")
	_ = premortemReportCmd.MarkFlagRequired("input")

	premortemRunCmd.Flags().StringVar(&runInput, "input", "", "Project description (inferred from docs when empty)")
	premortemRunCmd.Flags().StringVar(&runFiles, "files", "", "Comma separated files to scan for the tech stack")
	premortemRunCmd.Flags().StringVar(&runFormat, "format", "", "Report format: markdown or json (default premortem.report_format)")
	premortemRunCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Report file (default stdout)")
	premortemRunCmd.Flags().StringVar(&runSessionOutput, "session-output", "", "Also write the session as JSON to this file")
	premortemRunCmd.Flags().BoolVar(&runCodeSearch, "code-search", false, "Enrich answers with rg code search")
	runQuestions.bind(premortemRunCmd)

	premortemCmd.AddCommand(premortemContextCmd)
	premortemCmd.AddCommand(premortemGapsCmd)
	premortemCmd.AddCommand(premortemReportCmd)
	premortemCmd.AddCommand(premortemRunCmd)
	rootCmd.AddCommand(premortemCmd)
}

func runPremortemContext(cmd *cobra.Command, args []string) error {
	pctx := premortem.AnalyzeContext(application.Root, contextInput, splitList(contextFiles))

	questions, err := contextQuestions.selectQuestions(cmd, pctx)
	if err != nil {
		return err
	}

	return writeJSON(cmd, contextOutput, gap.Selection{
		ProjectContext:    pctx,
		SelectedQuestions: questions,
	})
}

func runPremortemGaps(cmd *cobra.Command, args []string) error {
	data, err := readInput(gapsInput)
	if err != nil {
		return err
	}
	sel, err := gap.ParseSelection(data, filepath.Ext(gapsInput))
	if err != nil {
		return errors.InvalidInputf("%s: %v", gapsInput, err)
	}

	res := application.GapAnalyzer(gapsCodeSearch).AnalyzeAll(cmd.Context(), sel.Questions())
	return writeJSON(cmd, gapsOutput, res)
}

func reportFormatFor(flag string) (string, error) {
	format := flag
	if format == "" {
		format = application.Config.Premortem.ReportFormat
	}
	if err := config.ValidateFormat(format); err != nil {
		return "", errors.InvalidInput(err.Error())
	}
	return format, nil
}

func runPremortemReport(cmd *cobra.Command, args []string) error {
	format, err := reportFormatFor(reportFormat)
	if err != nil {
		return err
	}

	data, err := readInput(reportInput)
	if err != nil {
		return err
	}
	s, err := report.Parse(data, filepath.Ext(reportInput))
	if err != nil {
		return errors.InvalidInputf("%s: %v", reportInput, err)
	}

	out, err := report.Format(s, format)
	if err != nil {
		return errors.Wrap(errors.ExitGeneralError, "failed to render report", err)
	}
	return writeOutput(cmd, reportOutput, out)
}

func runPremortemRun(cmd *cobra.Command, args []string) error {
	format, err := reportFormatFor(runFormat)
	if err != nil {
		return err
	}

	pctx := premortem.AnalyzeContext(application.Root, runInput, splitList(runFiles))
	questions, err := runQuestions.selectQuestions(cmd, pctx)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return errors.InvalidInput("no questions selected: set --questions-dir or premortem.questions_dir")
	}
	logging.Debug("questions selected", "count", len(questions), "domain", pctx.Domain)

	sel := gap.Selection{ProjectContext: pctx, SelectedQuestions: questions}
	res := application.GapAnalyzer(runCodeSearch).AnalyzeAll(cmd.Context(), sel.Questions())

	s, err := report.NewSession(pctx, res, time.Now())
	if err != nil {
		return errors.Wrap(errors.ExitGeneralError, "failed to build session", err)
	}

	if runSessionOutput != "" {
		doc, err := report.Format(s, config.FormatJSON)
		if err != nil {
			return errors.Wrap(errors.ExitGeneralError, "failed to encode session", err)
		}
		if err := os.WriteFile(runSessionOutput, []byte(doc+"\n"), 0644); err != nil {
			return errors.IOError(runSessionOutput, err)
		}
	}

	out, err := report.Format(s, format)
	if err != nil {
		return errors.Wrap(errors.ExitGeneralError, "failed to render report", err)
	}
	if err := writeOutput(cmd, runOutput, out); err != nil {
		return err
	}

	sum := res.Summary
	fmt.Fprintf(cmd.ErrOrStderr(), "%d questions: %d covered, %d need clarification, %d missing, %d not applicable\n",
		sum.Total, sum.Covered, sum.NeedsClarification, sum.Missing, sum.NotApplicable)
	return nil
}
