// Package todo builds todo lists in the shape the assistant's TodoWrite tool
// expects: content, status and a present-continuous activeForm.
package todo

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status of a todo.
type Status string

const (
	Pending    Status = "pending"
	InProgress Status = "in_progress"
	Completed  Status = "completed"
)

// Todo is a single entry.
type Todo struct {
	Content    string `json:"content"`
	Status     Status `json:"status"`
	ActiveForm string `json:"activeForm"`
}

// Manager holds an ordered todo list.
type Manager struct {
	todos []Todo
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{todos: []Todo{}}
}

// Add appends a pending todo. An empty activeForm is derived from content.
func (m *Manager) Add(content, activeForm string) {
	if activeForm == "" {
		activeForm = ActiveForm(content)
	}
	m.todos = append(m.todos, Todo{Content: content, Status: Pending, ActiveForm: activeForm})
}

func (m *Manager) set(i int, s Status) {
	if i >= 0 && i < len(m.todos) {
		m.todos[i].Status = s
	}
}

// MarkInProgress marks todo i as in progress. Out-of-range indexes are ignored.
func (m *Manager) MarkInProgress(i int) { m.set(i, InProgress) }

// MarkCompleted marks todo i as completed. Out-of-range indexes are ignored.
func (m *Manager) MarkCompleted(i int) { m.set(i, Completed) }

// MarkCurrentCompleted completes the first in-progress todo.
func (m *Manager) MarkCurrentCompleted() {
	for i := range m.todos {
		if m.todos[i].Status == InProgress {
			m.MarkCompleted(i)
			return
		}
	}
}

// StartNext marks the first pending todo in progress and returns its index.
func (m *Manager) StartNext() (int, bool) {
	for i := range m.todos {
		if m.todos[i].Status == Pending {
			m.MarkInProgress(i)
			return i, true
		}
	}
	return 0, false
}

// Current returns the first in-progress todo.
func (m *Manager) Current() (Todo, bool) {
	for _, t := range m.todos {
		if t.Status == InProgress {
			return t, true
		}
	}
	return Todo{}, false
}

// Todos returns a copy of the list.
func (m *Manager) Todos() []Todo {
	out := make([]Todo, len(m.todos))
	copy(out, m.todos)
	return out
}

var activeVerbs = map[string]string{
	"fix":       "Fixing",
	"create":    "Creating",
	"update":    "Updating",
	"delete":    "Deleting",
	"remove":    "Removing",
	"add":       "Adding",
	"install":   "Installing",
	"run":       "Running",
	"test":      "Testing",
	"build":     "Building",
	"deploy":    "Deploying",
	"implement": "Implementing",
	"refactor":  "Refactoring",
	"analyze":   "Analyzing",
	"optimize":  "Optimizing",
	"validate":  "Validating",
	"integrate": "Integrating",
	"migrate":   "Migrating",
	"extract":   "Extracting",
	"move":      "Moving",
}

// ActiveForm turns an imperative sentence into its present-continuous form:
// "Fix type errors" becomes "Fixing type errors". Unknown verbs get "ing"
// appended, dropping a trailing "e".
func ActiveForm(content string) string {
	words := strings.Fields(content)
	if len(words) == 0 {
		return content
	}

	verb := strings.ToLower(words[0])
	active, ok := activeVerbs[verb]
	if !ok {
		active = cases.Title(language.English).String(strings.TrimSuffix(verb, "e") + "ing")
	}
	return strings.TrimSpace(active + " " + strings.Join(words[1:], " "))
}

// FromTasks builds a list from task descriptions with the first in progress.
func FromTasks(tasks []string) []Todo {
	m := NewManager()
	for _, t := range tasks {
		m.Add(t, "")
	}
	m.MarkInProgress(0)
	return m.Todos()
}
