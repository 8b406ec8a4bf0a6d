package system

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MockExecutor implements CommandExecutor for testing.
type MockExecutor struct {
	mu sync.Mutex

	// Commands records all executed commands for verification.
	Commands []MockCommand

	// Responses maps command-line prefixes to responses.
	// Key format: "command arg1 arg2..."; the longest matching prefix wins.
	Responses map[string]MockResponse

	// DefaultResponse is used when no matching response is found.
	DefaultResponse MockResponse

	// Missing lists executables that LookPath should not find.
	Missing map[string]bool
}

// MockCommand records an executed command.
type MockCommand struct {
	Name    string
	Args    []string
	Dir     string
	Stdin   string
	Timeout time.Duration
}

// Line renders the recorded command like Command.Line.
func (c MockCommand) Line() string {
	return Command{Name: c.Name, Args: c.Args}.Line()
}

// MockResponse defines the response for a command.
type MockResponse struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// NewMockExecutor creates a new MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		Commands:  make([]MockCommand, 0),
		Responses: make(map[string]MockResponse),
		Missing:   make(map[string]bool),
	}
}

// AddResponse registers a successful response for a command prefix.
func (m *MockExecutor) AddResponse(pattern, stdout string) {
	m.On(pattern, MockResponse{Stdout: stdout})
}

// AddFailure registers a non-zero exit for a command prefix.
func (m *MockExecutor) AddFailure(pattern, stderr string, exitCode int) {
	m.On(pattern, MockResponse{Stderr: stderr, ExitCode: exitCode})
}

// On registers an arbitrary response for a command prefix.
func (m *MockExecutor) On(pattern string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[pattern] = resp
}

func (m *MockExecutor) Run(ctx context.Context, c Command) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, MockCommand{
		Name:    c.Name,
		Args:    c.Args,
		Dir:     c.Dir,
		Stdin:   c.Stdin,
		Timeout: c.Timeout,
	})

	if m.Missing[c.Name] {
		return nil, fmt.Errorf("exec: %q: executable file not found in $PATH", c.Name)
	}

	resp := m.match(c.Line())
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Result{Stdout: resp.Stdout, Stderr: resp.Stderr, ExitCode: resp.ExitCode}, nil
}

func (m *MockExecutor) match(line string) MockResponse {
	best := ""
	found := false
	for pattern := range m.Responses {
		if line != pattern && !strings.HasPrefix(line, pattern+" ") {
			continue
		}
		if !found || len(pattern) > len(best) {
			best = pattern
			found = true
		}
	}
	if found {
		return m.Responses[best]
	}
	return m.DefaultResponse
}

func (m *MockExecutor) LookPath(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Missing[name] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return "/usr/bin/" + name, nil
}

// LastCommand returns the most recently executed command.
func (m *MockExecutor) LastCommand() (MockCommand, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Commands) == 0 {
		return MockCommand{}, false
	}
	return m.Commands[len(m.Commands)-1], true
}

// Lines returns every recorded command rendered as a line.
func (m *MockExecutor) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := make([]string, len(m.Commands))
	for i, c := range m.Commands {
		lines[i] = c.Line()
	}
	return lines
}

// Called reports how many recorded commands start with the given prefix.
func (m *MockExecutor) Called(prefix string) int {
	n := 0
	for _, line := range m.Lines() {
		if line == prefix || strings.HasPrefix(line, prefix+" ") {
			n++
		}
	}
	return n
}

// Reset clears all recorded commands.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = make([]MockCommand, 0)
}
