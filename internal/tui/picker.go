package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/forage-assist/internal/gap"
	"github.com/firefly-engineering/forage-assist/internal/premortem"
)

// ErrCancelled is returned when the user leaves the picker without confirming.
var ErrCancelled = errors.New("selection cancelled")

// Action represents how the picker was closed
type Action int

const (
	ActionNone Action = iota
	ActionConfirm
	ActionQuit
)

// PickerResult holds the result of the picker
type PickerResult struct {
	Action Action
	Gaps   []gap.Gap
}

var priorityMarkers = map[string]string{
	premortem.PriorityCritical: "🔴",
	premortem.PriorityHigh:     "🟠",
	premortem.PriorityMedium:   "🟡",
	premortem.PriorityLow:      "🟢",
}

// gapItem implements list.Item for gap display
type gapItem struct {
	gap     gap.Gap
	index   int
	checked bool
}

func (i gapItem) Title() string {
	box := "[ ]"
	if i.checked {
		box = "[x]"
	}
	return box + " " + truncate(firstLine(i.gap.QuestionText), 70)
}

func (i gapItem) Description() string {
	id := i.gap.QuestionID
	if id == "" {
		id = "UNKNOWN"
	}
	return fmt.Sprintf("%s | %s | coverage %.0f%%", id, i.gap.Status, i.gap.Coverage*100)
}

func (i gapItem) FilterValue() string {
	return i.gap.QuestionText
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func truncate(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes-3]) + "..."
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the gap picker
type Model struct {
	list     list.Model
	gaps     []gap.Gap
	result   PickerResult
	quitting bool
	width    int
	height   int
}

// NewPicker creates a picker with every gap checked.
func NewPicker(gaps []gap.Gap) Model {
	l := list.New(buildGroupedItems(gaps), newGroupedDelegate(), 80, 20)
	l.Title = "Premortem - Select issues to create"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	skipHeaders(&l, 1)

	return Model{
		list: l,
		gaps: gaps,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case " ", "x":
			if item, ok := m.list.SelectedItem().(gapItem); ok {
				item.checked = !item.checked
				cmd := m.list.SetItem(m.list.Index(), item)
				return m, cmd
			}
			return m, nil

		case "a":
			m.setAll(!m.allChecked())
			return m, nil

		case "enter":
			m.result = PickerResult{Action: ActionConfirm, Gaps: m.Checked()}
			m.quitting = true
			return m, tea.Quit

		case "q", "esc", "ctrl+c":
			m.result = PickerResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit

		case "up", "k", "down", "j":
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			skipHeaders(&m.list, navigationDirection(msg))
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) allChecked() bool {
	for _, it := range m.list.Items() {
		if g, ok := it.(gapItem); ok && !g.checked {
			return false
		}
	}
	return true
}

func (m *Model) setAll(checked bool) {
	for idx, it := range m.list.Items() {
		if g, ok := it.(gapItem); ok {
			g.checked = checked
			m.list.SetItem(idx, g)
		}
	}
}

// Checked returns the checked gaps in their original order.
func (m Model) Checked() []gap.Gap {
	var idx []int
	for _, it := range m.list.Items() {
		if g, ok := it.(gapItem); ok && g.checked {
			idx = append(idx, g.index)
		}
	}
	sort.Ints(idx)
	out := make([]gap.Gap, 0, len(idx))
	for _, i := range idx {
		out = append(out, m.gaps[i])
	}
	return out
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[space] Toggle  [a] All/none  [enter] Create  [q] Cancel")

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive gap picker and returns the confirmed gaps.
// Leaving with q or esc returns ErrCancelled.
func RunPicker(gaps []gap.Gap) ([]gap.Gap, error) {
	if len(gaps) == 0 {
		return []gap.Gap{}, nil
	}

	p := tea.NewProgram(NewPicker(gaps), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	result := finalModel.(Model).Result()
	if result.Action != ActionConfirm {
		return nil, ErrCancelled
	}
	return result.Gaps, nil
}

// SimplePicker lists gaps with their numbers for the line-based prompt.
func SimplePicker(gaps []gap.Gap) string {
	var sb strings.Builder

	sb.WriteString("Premortem - Issue candidates\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	if len(gaps) == 0 {
		sb.WriteString("No gaps need an issue.\n")
		return sb.String()
	}

	for i, g := range gaps {
		marker, ok := priorityMarkers[groupKey(g)]
		if !ok {
			marker = "📝"
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, marker, truncate(firstLine(g.QuestionText), 70)))
		sb.WriteString(fmt.Sprintf("   %s | %s | coverage %.0f%%\n\n", g.QuestionID, g.Status, g.Coverage*100))
	}

	return sb.String()
}

// PromptChooser returns a chooser that prints SimplePicker to out and reads
// a selection line from in: "all", "none", or numbers such as "1,3 4".
// An empty line or end of input selects everything.
func PromptChooser(in io.Reader, out io.Writer) func([]gap.Gap) ([]gap.Gap, error) {
	return func(gaps []gap.Gap) ([]gap.Gap, error) {
		if len(gaps) == 0 {
			return []gap.Gap{}, nil
		}

		fmt.Fprint(out, SimplePicker(gaps))
		fmt.Fprint(out, "Select issues to create [all]: ")

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		return ParseSelection(line, gaps)
	}
}

// ParseSelection resolves a selection line against gaps.
func ParseSelection(line string, gaps []gap.Gap) ([]gap.Gap, error) {
	line = strings.ToLower(strings.TrimSpace(line))
	switch line {
	case "", "all", "a":
		return append([]gap.Gap{}, gaps...), nil
	case "none", "n":
		return []gap.Gap{}, nil
	case "q", "quit":
		return nil, ErrCancelled
	}

	picked := make(map[int]bool)
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' })
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > len(gaps) {
			return nil, fmt.Errorf("invalid selection %q: expected numbers between 1 and %d", f, len(gaps))
		}
		picked[n-1] = true
	}

	out := make([]gap.Gap, 0, len(picked))
	for i, g := range gaps {
		if picked[i] {
			out = append(out, g)
		}
	}
	return out, nil
}
