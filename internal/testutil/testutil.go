package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/firefly-engineering/forage-assist/internal/app"
	"github.com/firefly-engineering/forage-assist/internal/config"
	"github.com/firefly-engineering/forage-assist/internal/system"
)

// TestEnv holds the test environment
type TestEnv struct {
	T      *testing.T
	Root   string
	Config *config.Config
	Exec   *system.MockExecutor
	App    *app.App
}

// NewTestEnv creates a project directory with a mock executor and the
// default configuration.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	exec := system.NewMockExecutor()

	return &TestEnv{
		T:      t,
		Root:   root,
		Config: cfg,
		Exec:   exec,
		App: app.New(
			app.WithRoot(root),
			app.WithConfig(cfg),
			app.WithExecutor(exec),
		),
	}
}

// Path returns rel resolved against the project root.
func (e *TestEnv) Path(rel string) string {
	return filepath.Join(e.Root, filepath.FromSlash(rel))
}

// WriteFile writes content to rel inside the project, creating parents.
func (e *TestEnv) WriteFile(rel, content string) string {
	e.T.Helper()

	path := e.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.T.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.T.Fatalf("Failed to write %s: %v", rel, err)
	}
	return path
}

// WriteJSON marshals v into rel inside the project.
func (e *TestEnv) WriteJSON(rel string, v any) string {
	e.T.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		e.T.Fatalf("Failed to marshal %s: %v", rel, err)
	}
	return e.WriteFile(rel, string(data))
}

// WriteFixture copies the named fixture to rel inside the project.
func (e *TestEnv) WriteFixture(name, rel string) string {
	e.T.Helper()
	return e.WriteFile(rel, string(MustFixture(e.T, name)))
}

// ReadFile returns the content of rel inside the project.
func (e *TestEnv) ReadFile(rel string) string {
	e.T.Helper()

	data, err := os.ReadFile(e.Path(rel))
	if err != nil {
		e.T.Fatalf("Failed to read %s: %v", rel, err)
	}
	return string(data)
}

// UseQuestionPools installs the question pool fixtures under questions/ and
// points the configuration at them.
func (e *TestEnv) UseQuestionPools() string {
	e.T.Helper()

	dir := e.Path("questions")
	CopyQuestionPools(e.T, dir)
	e.Config.Premortem.QuestionsDir = dir
	return dir
}

// WebProject writes a small React project with login documentation.
func (e *TestEnv) WebProject() {
	e.T.Helper()

	e.WriteFile("README.md", "# Portal\n\nCustomer portal built with React and Redis.\n\n"+
		"Login uses auth sessions stored in Redis. Logout deletes the session key.\n")
	e.WriteFile("package.json", `{"dependencies": {"react": "^18.2.0", "express": "^4.18.0"}}`)
	e.WriteFile("tsconfig.json", "{}")
}
