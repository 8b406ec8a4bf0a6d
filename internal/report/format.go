package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/firefly-engineering/forage-assist/internal/config"
	"github.com/firefly-engineering/forage-assist/internal/premortem"
)

//go:embed templates/*.md.tmpl
var templatesFS embed.FS

var reportTemplates = template.Must(
	template.New("").Funcs(template.FuncMap{
		"joinStrings": strings.Join,
		"inc":         func(i int) int { return i + 1 },
	}).ParseFS(templatesFS, "templates/*.md.tmpl"),
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	notAvailable    = "N/A"
)

type section struct {
	Heading   string
	Findings  []Finding
	Recommend bool
}

type summaryView struct {
	Total              int
	Covered            int
	NeedsClarification int
	Missing            int
	CoveragePct        float64
}

type reportView struct {
	Generated string
	Summary   *summaryView
	Context   premortem.ProjectContext
	Sections  []section
	Covered   []Finding
	Actions   []ActionItem
}

// Format renders the session as format, "markdown" or "json".
func Format(s *Session, format string) (string, error) {
	return FormatAt(s, format, time.Now())
}

// FormatAt is Format with a fixed generation time.
func FormatAt(s *Session, format string, now time.Time) (string, error) {
	switch format {
	case config.FormatJSON:
		return formatJSON(s.raw)
	case config.FormatMarkdown, "":
		return formatMarkdown(s, now)
	}
	return "", fmt.Errorf("unknown report format %q", format)
}

func formatJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func formatMarkdown(s *Session, now time.Time) (string, error) {
	view := reportView{
		Generated: now.Format(timestampLayout),
		Summary:   summarize(s.GapSummary),
		Context:   contextView(s.Context),
	}

	byRisk := make(map[string][]Finding)
	for _, f := range s.ResolveFindings() {
		if f.Title == "" {
			f.Title = "Untitled"
		}
		byRisk[f.RiskLevel] = append(byRisk[f.RiskLevel], f)
	}
	view.Sections = []section{
		{"Critical Issues (🔴)", byRisk[RiskCritical], true},
		{"Medium Issues (🟡)", byRisk[RiskMedium], true},
		{"Low Priority Issues (🟢)", byRisk[RiskLow], false},
	}
	view.Covered = byRisk[RiskCovered]

	for _, a := range s.ActionItems {
		if a.Title == "" {
			a.Title = "Untitled"
		}
		if a.Priority == "" {
			a.Priority = RiskMedium
		}
		view.Actions = append(view.Actions, a)
	}

	var buf bytes.Buffer
	if err := reportTemplates.ExecuteTemplate(&buf, "report", view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func summarize(counts map[string]int) *summaryView {
	if len(counts) == 0 {
		return nil
	}
	v := &summaryView{
		Total:              counts["total"],
		Covered:            counts["covered"],
		NeedsClarification: counts["needs_clarification"],
		Missing:            counts["missing"],
	}
	if v.Total > 0 {
		v.CoveragePct = float64(v.Covered) / float64(v.Total) * 100
	}
	return v
}

func contextView(c premortem.ProjectContext) premortem.ProjectContext {
	orNA := func(s string) string {
		if s == "" {
			return notAvailable
		}
		return s
	}
	c.Domain = orNA(c.Domain)
	c.Maturity = orNA(c.Maturity)
	c.Scale = orNA(c.Scale)
	c.Description = orNA(c.Description)
	return c
}
