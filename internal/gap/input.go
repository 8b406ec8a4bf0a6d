package gap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/firefly-engineering/forage-assist/internal/premortem"
)

// Selection is the context analysis document: the project context fields
// at the top level, plus the selected questions when a pool was loaded.
type Selection struct {
	premortem.ProjectContext `yaml:",inline"`
	SelectedQuestions        []premortem.ScoredQuestion `json:"selected_questions,omitempty" yaml:"selected_questions,omitempty"`
}

// Questions returns the selected questions without their scores.
func (s *Selection) Questions() []premortem.Question {
	qs := make([]premortem.Question, len(s.SelectedQuestions))
	for i, sq := range s.SelectedQuestions {
		qs[i] = sq.Question
	}
	return qs
}

// LoadSelection reads a selection document. Files ending in .yaml or .yml
// are decoded as YAML, everything else as JSON.
func LoadSelection(path string) (*Selection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSelection(data, filepath.Ext(path))
}

// ParseSelection decodes a selection document; ext picks the format.
func ParseSelection(data []byte, ext string) (*Selection, error) {
	var sel Selection
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &sel); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &sel); err != nil {
			return nil, err
		}
	}
	return &sel, nil
}

// LoadResult reads a gap analysis result, or any document with a top-level
// gaps list such as a session. The summary is recomputed from the gaps.
func LoadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseResult(data, filepath.Ext(path))
}

// ParseResult decodes a gap analysis result; ext picks the format.
func ParseResult(data []byte, ext string) (*Result, error) {
	var res Result
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &res); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, err
		}
	}
	if res.Gaps == nil {
		res.Gaps = []Gap{}
	}
	res.Summary = Summarize(res.Gaps)
	return &res, nil
}
