package project

import (
	"os"
	"path/filepath"

	"github.com/firefly-engineering/forage-assist/internal/logging"
)

// Unknown is used for project type and language when nothing matched.
const Unknown = "unknown"

// Info holds detected project information.
type Info struct {
	ProjectType    string   `json:"project_type"`
	Language       string   `json:"language"`
	Frameworks     []string `json:"frameworks"`
	Tools          []string `json:"tools"`
	RootDir        string   `json:"root_dir"`
	PackageManager string   `json:"package_manager,omitempty"`
	HasGit         bool     `json:"has_git"`
	HasCI          bool     `json:"has_ci"`
	Detectors      []string `json:"detectors"`
}

// HasFramework reports whether name was detected.
func (i *Info) HasFramework(name string) bool {
	for _, f := range i.Frameworks {
		if f == name {
			return true
		}
	}
	return false
}

// Detection is what a single ecosystem detector found. Empty ProjectType or
// Language leave the merged value untouched.
type Detection struct {
	ProjectType    string
	Language       string
	Frameworks     []string
	Tools          []string
	PackageManager string
}

// Detector inspects a project root for one ecosystem.
type Detector interface {
	Name() string
	Detect(root string) (*Detection, bool)
}

// Policy decides which matching detector sets project type and language.
// Frameworks and tools are always merged across every match.
type Policy int

const (
	// LastMatchWins lets later detectors override earlier ones.
	LastMatchWins Policy = iota
	// FirstMatchWins keeps the first detector's project type and language.
	FirstMatchWins
)

// DefaultDetectors is the detection order: node, go, python, rust.
func DefaultDetectors() []Detector {
	return []Detector{
		nodeDetector{},
		goDetector{},
		pythonDetector{},
		rustDetector{},
	}
}

// Analyzer runs detectors over a project root.
type Analyzer struct {
	root      string
	detectors []Detector
	policy    Policy
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDetectors replaces the detector list.
func WithDetectors(d ...Detector) Option {
	return func(a *Analyzer) {
		a.detectors = d
	}
}

// WithPolicy sets the merge policy.
func WithPolicy(p Policy) Option {
	return func(a *Analyzer) {
		a.policy = p
	}
}

// NewAnalyzer creates a new project analyzer
func NewAnalyzer(root string, opts ...Option) *Analyzer {
	a := &Analyzer{
		root:      root,
		detectors: DefaultDetectors(),
		policy:    LastMatchWins,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Detect analyzes root with the default detectors and policy.
func Detect(root string) *Info {
	return NewAnalyzer(root).Analyze()
}

// Analyze runs every detector and merges the results.
func (a *Analyzer) Analyze() *Info {
	info := &Info{
		ProjectType: Unknown,
		Language:    Unknown,
		Frameworks:  []string{},
		Tools:       []string{},
		Detectors:   []string{},
		RootDir:     a.root,
	}

	logging.Debug("analyzing project", "path", a.root)

	info.HasGit = fileExists(a.root, ".git")
	info.HasCI = fileExists(a.root, ".github/workflows") ||
		fileExists(a.root, ".gitlab-ci.yml") ||
		fileExists(a.root, ".circleci")

	typeSet, langSet := false, false
	for _, d := range a.detectors {
		det, ok := d.Detect(a.root)
		if !ok {
			continue
		}
		info.Detectors = append(info.Detectors, d.Name())

		if det.ProjectType != "" && (a.policy == LastMatchWins || !typeSet) {
			info.ProjectType = det.ProjectType
			typeSet = true
		}
		if det.Language != "" && (a.policy == LastMatchWins || !langSet) {
			info.Language = det.Language
			langSet = true
		}
		if det.PackageManager != "" && info.PackageManager == "" {
			info.PackageManager = det.PackageManager
		}
		info.Frameworks = appendUnique(info.Frameworks, det.Frameworks...)
		info.Tools = appendUnique(info.Tools, det.Tools...)
	}

	logging.Debug("project analysis complete",
		"type", info.ProjectType,
		"language", info.Language,
		"detectors", info.Detectors,
	)

	return info
}

func fileExists(root, name string) bool {
	_, err := os.Stat(filepath.Join(root, name))
	return err == nil
}

func readFile(root, name string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(root, name))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func appendUnique(list []string, items ...string) []string {
	for _, it := range items {
		dup := false
		for _, existing := range list {
			if existing == it {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, it)
		}
	}
	return list
}
