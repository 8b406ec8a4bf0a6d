package agent

import (
	"encoding/json"
	"fmt"

	"github.com/firefly-engineering/forage-assist/internal/project"
)

// ProjectMetadata is the project information skill detection looks at.
type ProjectMetadata struct {
	Language   string   `json:"language"`
	Frameworks []string `json:"frameworks"`
	Tools      []string `json:"tools"`
}

// MetadataSource is anything that can describe a project.
type MetadataSource interface {
	ProjectMetadata() ProjectMetadata
}

// ProjectMetadata returns m itself.
func (m ProjectMetadata) ProjectMetadata() ProjectMetadata {
	return m
}

// DetectedProject adapts a detected project to a MetadataSource.
type DetectedProject struct {
	Info *project.Info
}

// ProjectMetadata returns the detected language, frameworks and tools.
// An unknown language is reported as empty.
func (d DetectedProject) ProjectMetadata() ProjectMetadata {
	if d.Info == nil {
		return ProjectMetadata{}
	}
	lang := d.Info.Language
	if lang == project.Unknown {
		lang = ""
	}
	return ProjectMetadata{
		Language:   lang,
		Frameworks: d.Info.Frameworks,
		Tools:      d.Info.Tools,
	}
}

// NormalizeMetadata merges sources in order. The first non-empty language
// wins; frameworks and tools keep first-seen order without duplicates.
func NormalizeMetadata(sources ...MetadataSource) ProjectMetadata {
	out := ProjectMetadata{Frameworks: []string{}, Tools: []string{}}
	seenFw := make(map[string]bool)
	seenTool := make(map[string]bool)

	for _, src := range sources {
		if src == nil {
			continue
		}
		m := src.ProjectMetadata()
		if out.Language == "" && m.Language != "" {
			out.Language = m.Language
		}
		for _, fw := range m.Frameworks {
			if fw != "" && !seenFw[fw] {
				seenFw[fw] = true
				out.Frameworks = append(out.Frameworks, fw)
			}
		}
		for _, tool := range m.Tools {
			if tool != "" && !seenTool[tool] {
				seenTool[tool] = true
				out.Tools = append(out.Tools, tool)
			}
		}
	}
	return out
}

// ContextFile is the JSON context document accepted by agent selection.
// Project metadata may live under project_info, project or projectInfo.
type ContextFile struct {
	ProjectType  string     `json:"project_type"`
	Language     string     `json:"language"`
	Frameworks   stringList `json:"frameworks"`
	FocusAreas   stringList `json:"focus_areas"`
	Constraints  string     `json:"constraints"`
	Thoroughness string     `json:"thoroughness"`
	Overrides

	ProjectInfo      *projectBlock `json:"project_info"`
	Project          *projectBlock `json:"project"`
	ProjectInfoCamel *projectBlock `json:"projectInfo"`
}

// ParseContextFile decodes a JSON context document.
func ParseContextFile(data []byte) (*ContextFile, error) {
	var cf ContextFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("invalid context JSON: %w", err)
	}
	return &cf, nil
}

// ProjectMetadata merges the nested project blocks in key order.
func (c *ContextFile) ProjectMetadata() ProjectMetadata {
	var sources []MetadataSource
	for _, b := range []*projectBlock{c.ProjectInfo, c.Project, c.ProjectInfoCamel} {
		if b != nil {
			sources = append(sources, *b)
		}
	}
	return NormalizeMetadata(sources...)
}

// PromptContext returns the prompt fields carried by the document.
func (c *ContextFile) PromptContext() PromptContext {
	return PromptContext{
		ProjectType:  c.ProjectType,
		Language:     c.Language,
		Frameworks:   c.Frameworks,
		FocusAreas:   c.FocusAreas,
		Constraints:  c.Constraints,
		Thoroughness: c.Thoroughness,
	}
}

type projectBlock struct {
	Language        string     `json:"language"`
	Lang            string     `json:"lang"`
	ProjectLanguage string     `json:"project_language"`
	Frameworks      stringList `json:"frameworks"`
	Stack           stringList `json:"stack"`
	Tools           stringList `json:"tools"`
}

func (b projectBlock) ProjectMetadata() ProjectMetadata {
	m := ProjectMetadata{Language: b.Language, Frameworks: b.Frameworks, Tools: b.Tools}
	if m.Language == "" {
		m.Language = b.Lang
	}
	if m.Language == "" {
		m.Language = b.ProjectLanguage
	}
	if len(m.Frameworks) == 0 {
		m.Frameworks = b.Stack
	}
	return m
}

// stringList decodes either a single string or a list of scalars.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*s = nil
		} else {
			*s = stringList{single}
		}
		return nil
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		var scalar any
		if err := json.Unmarshal(data, &scalar); err != nil {
			return err
		}
		if _, isObject := scalar.(map[string]any); isObject {
			return fmt.Errorf("expected string or list, got object")
		}
		raw = []any{scalar}
	}
	out := make(stringList, 0, len(raw))
	for _, v := range raw {
		if v == nil {
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	*s = out
	return nil
}
