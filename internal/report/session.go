package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/firefly-engineering/forage-assist/internal/gap"
	"github.com/firefly-engineering/forage-assist/internal/premortem"
)

// Risk levels a finding can carry.
const (
	RiskCritical = "critical"
	RiskHigh     = "high"
	RiskMedium   = "medium"
	RiskLow      = "low"
	RiskCovered  = "covered"
)

// Finding is one report entry.
type Finding struct {
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	RiskLevel      string   `json:"risk_level" yaml:"risk_level"`
	Recommendation string   `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	Coverage       float64  `json:"coverage,omitempty" yaml:"coverage,omitempty"`
	Sources        []string `json:"sources,omitempty" yaml:"sources,omitempty"`
	AutoAnswer     string   `json:"auto_answer,omitempty" yaml:"auto_answer,omitempty"`
	Confidence     float64  `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// ActionItem is a recommended follow-up.
type ActionItem struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Priority    string   `json:"priority" yaml:"priority"`
	Resources   []string `json:"resources,omitempty" yaml:"resources,omitempty"`
}

// QuestionResponse is a question answered by hand, the legacy session shape.
type QuestionResponse struct {
	Question premortem.Question `json:"question" yaml:"question"`
	Response string             `json:"response" yaml:"response"`
}

// Document is the typed view of a premortem session.
type Document struct {
	SessionID             string                   `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	CreatedAt             string                   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Context               premortem.ProjectContext `json:"context" yaml:"context"`
	GapSummary            map[string]int           `json:"gap_summary,omitempty" yaml:"gap_summary,omitempty"`
	Gaps                  []gap.Gap                `json:"gaps,omitempty" yaml:"gaps,omitempty"`
	Findings              []Finding                `json:"findings,omitempty" yaml:"findings,omitempty"`
	QuestionsAndResponses []QuestionResponse       `json:"questions_and_responses,omitempty" yaml:"questions_and_responses,omitempty"`
	ActionItems           []ActionItem             `json:"action_items,omitempty" yaml:"action_items,omitempty"`
}

// Session pairs the decoded session document with its typed view. The
// document is kept as read so JSON output can reproduce it unchanged.
type Session struct {
	Document
	raw any
}

// Raw returns the session document as decoded.
func (s *Session) Raw() any {
	return s.raw
}

// NewSession builds a session from a context and a gap analysis result.
func NewSession(pctx premortem.ProjectContext, res *gap.Result, now time.Time) (*Session, error) {
	doc := Document{
		SessionID: uuid.NewString(),
		CreatedAt: now.Format(time.RFC3339),
		Context:   pctx,
	}
	if res != nil {
		doc.Gaps = res.Gaps
		doc.GapSummary = map[string]int{
			"total":               res.Summary.Total,
			"covered":             res.Summary.Covered,
			"needs_clarification": res.Summary.NeedsClarification,
			"missing":             res.Summary.Missing,
			"not_applicable":      res.Summary.NotApplicable,
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// Load reads a session file. Files ending in .yaml or .yml are YAML,
// everything else JSON.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a session document; ext picks the format.
func Parse(data []byte, ext string) (*Session, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse session: %w", err)
		}
		normalized, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("parse session: %w", err)
		}
		return decode(normalized)
	default:
		return decode(data)
	}
}

func decode(data []byte) (*Session, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if _, ok := raw.(map[string]any); !ok {
		return nil, fmt.Errorf("parse session: expected an object, got %T", raw)
	}

	s := &Session{raw: raw}
	if err := json.Unmarshal(data, &s.Document); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return s, nil
}
