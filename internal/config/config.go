package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFileName is looked up in the project root when --config is not given.
const DefaultFileName = ".forage-assist.toml"

// Report formats
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Issue tracker backends
const (
	BackendGH  = "gh"
	BackendAPI = "api"
)

// Issue creation modes
const (
	ModeAll          = "all"
	ModeCriticalHigh = "critical_high"
	ModeSelective    = "selective"
	ModeNone         = "none"
)

// Duration wraps time.Duration so TOML files can say "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the forage-assist configuration file.
type Config struct {
	Premortem  PremortemConfig  `toml:"premortem"`
	Issues     IssuesConfig     `toml:"issues"`
	CodeSearch CodeSearchConfig `toml:"code_search"`
	Timeouts   TimeoutConfig    `toml:"timeouts"`
}

// PremortemConfig tunes question selection and reporting.
type PremortemConfig struct {
	QuestionsDir string  `toml:"questions_dir"`
	MinQuestions int     `toml:"min_questions"`
	MaxQuestions int     `toml:"max_questions"`
	MinScore     float64 `toml:"min_score"`
	ReportFormat string  `toml:"report_format"`
}

// IssuesConfig selects how gaps become tracker issues.
type IssuesConfig struct {
	Mode          string `toml:"mode"`
	Backend       string `toml:"backend"`
	TokenEnv      string `toml:"token_env"`
	Repository    string `toml:"repository"`
	CheckExisting bool   `toml:"check_existing"`
}

// CodeSearchConfig controls ripgrep enrichment of auto answers.
type CodeSearchConfig struct {
	Enabled  bool `toml:"enabled"`
	MaxTerms int  `toml:"max_terms"`
	MaxHits  int  `toml:"max_hits"`
}

// TimeoutConfig bounds network-touching subprocess calls.
// Local git calls are never bounded.
type TimeoutConfig struct {
	AuthStatus  Duration `toml:"auth_status"`
	IssueSearch Duration `toml:"issue_search"`
	IssueCreate Duration `toml:"issue_create"`
	CodeSearch  Duration `toml:"code_search"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Premortem: PremortemConfig{
			MinQuestions: 3,
			MaxQuestions: 5,
			MinScore:     0.5,
			ReportFormat: FormatMarkdown,
		},
		Issues: IssuesConfig{
			Mode:          ModeSelective,
			Backend:       BackendGH,
			TokenEnv:      "GITHUB_TOKEN",
			CheckExisting: true,
		},
		CodeSearch: CodeSearchConfig{
			MaxTerms: 5,
			MaxHits:  10,
		},
		Timeouts: TimeoutConfig{
			AuthStatus:  Duration{5 * time.Second},
			IssueSearch: Duration{10 * time.Second},
			IssueCreate: Duration{30 * time.Second},
			CodeSearch:  Duration{5 * time.Second},
		},
	}
}

// Validate checks that the Config is usable.
func (c *Config) Validate() error {
	p := c.Premortem
	if p.MinScore < 0 || p.MinScore > 1 {
		return fmt.Errorf("premortem.min_score must be within [0,1], got %v", p.MinScore)
	}
	if p.MinQuestions < 1 {
		return fmt.Errorf("premortem.min_questions must be at least 1, got %d", p.MinQuestions)
	}
	if p.MaxQuestions < p.MinQuestions {
		return fmt.Errorf("premortem.max_questions (%d) must not be below min_questions (%d)", p.MaxQuestions, p.MinQuestions)
	}
	if err := ValidateFormat(p.ReportFormat); err != nil {
		return err
	}

	if err := ValidateMode(c.Issues.Mode); err != nil {
		return err
	}
	switch c.Issues.Backend {
	case BackendGH:
	case BackendAPI:
		if c.Issues.Repository != "" {
			if _, _, err := SplitRepository(c.Issues.Repository); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("issues.backend must be %q or %q, got %q", BackendGH, BackendAPI, c.Issues.Backend)
	}

	if c.CodeSearch.MaxTerms < 1 || c.CodeSearch.MaxHits < 1 {
		return fmt.Errorf("code_search.max_terms and code_search.max_hits must be positive")
	}
	return nil
}

// ValidateFormat checks a report format name.
func ValidateFormat(format string) error {
	if format != FormatMarkdown && format != FormatJSON {
		return fmt.Errorf("format must be %q or %q, got %q", FormatMarkdown, FormatJSON, format)
	}
	return nil
}

// ValidateMode checks an issue creation mode name.
func ValidateMode(mode string) error {
	switch mode {
	case ModeAll, ModeCriticalHigh, ModeSelective, ModeNone:
		return nil
	}
	return fmt.Errorf("mode must be one of all, critical_high, selective, none; got %q", mode)
}

// SplitRepository splits "owner/name".
func SplitRepository(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository must look like owner/name, got %q", repo)
	}
	return parts[0], parts[1], nil
}

// Load reads the configuration file at path over the defaults.
// When explicit is false a missing file is not an error.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// DefaultPath returns the config path for a project root.
func DefaultPath(root string) string {
	return filepath.Join(root, DefaultFileName)
}

// Token returns the API token from the configured environment variable.
func (c *IssuesConfig) Token() string {
	if c.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.TokenEnv)
}
