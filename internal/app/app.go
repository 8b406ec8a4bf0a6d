package app

import (
	"context"
	"path/filepath"

	"github.com/firefly-engineering/forage-assist/internal/ci"
	"github.com/firefly-engineering/forage-assist/internal/codesearch"
	"github.com/firefly-engineering/forage-assist/internal/config"
	"github.com/firefly-engineering/forage-assist/internal/errors"
	"github.com/firefly-engineering/forage-assist/internal/gap"
	"github.com/firefly-engineering/forage-assist/internal/git"
	"github.com/firefly-engineering/forage-assist/internal/issues"
	"github.com/firefly-engineering/forage-assist/internal/logging"
	"github.com/firefly-engineering/forage-assist/internal/quality"
	"github.com/firefly-engineering/forage-assist/internal/system"
)

// App holds the application dependencies
type App struct {
	// Root is the project directory commands operate on
	Root string

	// Config is the loaded configuration
	Config *config.Config

	// Exec runs git, gh and rg
	Exec system.CommandExecutor
}

// Option is a function that configures the App
type Option func(*App)

// WithRoot sets the project root
func WithRoot(root string) Option {
	return func(a *App) {
		a.Root = root
	}
}

// WithConfig sets a custom config
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.Config = cfg
	}
}

// WithExecutor sets a custom command executor
func WithExecutor(exec system.CommandExecutor) Option {
	return func(a *App) {
		a.Exec = exec
	}
}

// New creates a new App with the given options. Unset fields get the
// current directory, the built-in config and the real executor.
func New(opts ...Option) *App {
	app := &App{Root: "."}

	for _, opt := range opts {
		opt(app)
	}

	if app.Config == nil {
		app.Config = config.Default()
	}
	if app.Exec == nil {
		app.Exec = system.DefaultExecutor()
	}
	if abs, err := filepath.Abs(app.Root); err == nil {
		app.Root = abs
	}

	return app
}

// Load creates an App for root, reading configPath or the root's default
// config file. explicit marks a path given on the command line, which must
// exist.
func Load(root, configPath string, opts ...Option) (*App, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = config.DefaultPath(root)
	}

	cfg, err := config.Load(configPath, explicit)
	if err != nil {
		return nil, errors.ConfigError("failed to load configuration", err)
	}
	logging.Debug("configuration loaded", "path", configPath, "explicit", explicit)

	return New(append([]Option{WithRoot(root), WithConfig(cfg)}, opts...)...), nil
}

// Repo returns a git client for the project root
func (a *App) Repo() *git.Repo {
	return git.New(a.Root, git.WithExecutor(a.Exec))
}

// CI returns a CI client for the project root
func (a *App) CI() *ci.Client {
	return ci.New(a.Root, ci.WithExecutor(a.Exec))
}

// Gates returns the quality gates, preferring pm's commands when set
func (a *App) Gates(pm string) *quality.Gates {
	return quality.New(a.Root, quality.WithExecutor(a.Exec), quality.WithPackageManager(pm))
}

// Searcher returns an rg searcher configured from code_search
func (a *App) Searcher() *codesearch.Searcher {
	cs := a.Config.CodeSearch
	return codesearch.New(a.Root,
		codesearch.WithExecutor(a.Exec),
		codesearch.WithTimeout(a.Config.Timeouts.CodeSearch.Duration),
		codesearch.WithLimits(cs.MaxTerms, cs.MaxHits),
	)
}

// GapAnalyzer returns a gap analyzer. Code search is attached when enabled
// in the config, or by withSearch, and rg is installed.
func (a *App) GapAnalyzer(withSearch bool) *gap.Analyzer {
	var opts []gap.Option
	if withSearch || a.Config.CodeSearch.Enabled {
		s := a.Searcher()
		if s.Available() {
			opts = append(opts, gap.WithCodeSearch(s))
		} else {
			logging.UserWarning("rg not found, code search disabled")
		}
	}
	return gap.New(a.Root, opts...)
}

// Tracker returns the configured issue tracker
func (a *App) Tracker(ctx context.Context) (issues.Tracker, error) {
	ic := a.Config.Issues
	switch ic.Backend {
	case config.BackendAPI:
		token := ic.Token()
		if token == "" {
			return nil, errors.New(errors.ExitConfigError, "issues.backend is api but $"+ic.TokenEnv+" is empty")
		}
		owner, name, err := config.SplitRepository(ic.Repository)
		if err != nil {
			return nil, errors.ConfigError("issues.repository is required for the api backend", err)
		}
		t, err := issues.NewAPITracker(ctx, token, owner, name)
		if err != nil {
			return nil, errors.ConfigError("failed to create GitHub client", err)
		}
		return t, nil

	default:
		to := a.Config.Timeouts
		return issues.NewGHTracker(a.Root,
			issues.WithExecutor(a.Exec),
			issues.WithTimeouts(issues.Timeouts{
				AuthStatus:  to.AuthStatus.Duration,
				IssueSearch: to.IssueSearch.Duration,
				IssueCreate: to.IssueCreate.Duration,
			}),
		), nil
	}
}

// QuestionsDir returns the question pool directory, resolved against Root
// when relative. Empty means no directory is configured.
func (a *App) QuestionsDir() string {
	dir := a.Config.Premortem.QuestionsDir
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(a.Root, dir)
}
