package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/firefly-engineering/forage-assist/internal/gap"
)

func testGaps() []gap.Gap {
	return []gap.Gap{
		{QuestionID: "q-med", QuestionText: "How are logs retained?", Status: gap.StatusMissing, Priority: "medium"},
		{QuestionID: "q-crit", QuestionText: "Who can reset passwords?\nDetails follow", Status: gap.StatusNeedsClarification, Coverage: 0.25, Priority: "critical"},
		{QuestionID: "q-low", QuestionText: "Is there a style guide?", Status: gap.StatusMissing, Priority: "low"},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

func ids(gaps []gap.Gap) []string {
	out := make([]string, len(gaps))
	for i, g := range gaps {
		out[i] = g.QuestionID
	}
	return out
}

func TestGapItem(t *testing.T) {
	item := gapItem{gap: testGaps()[1], checked: true}

	if got := item.Title(); got != "[x] Who can reset passwords?" {
		t.Errorf("Title() = %q", got)
	}
	if got := item.Description(); got != "q-crit | needs_clarification | coverage 25%" {
		t.Errorf("Description() = %q", got)
	}

	item.checked = false
	if !strings.HasPrefix(item.Title(), "[ ] ") {
		t.Errorf("unchecked Title() = %q", item.Title())
	}

	if got := (gapItem{}).Description(); !strings.HasPrefix(got, "UNKNOWN |") {
		t.Errorf("Description() without id = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("ログイン認証の設計方針", 6); got != "ログイ..." {
		t.Errorf("truncate() = %q", got)
	}
}

func TestNewPicker_StartsOnFirstGap(t *testing.T) {
	m := NewPicker(testGaps())

	item, ok := m.list.SelectedItem().(gapItem)
	if !ok {
		t.Fatalf("selected item is %T, want gapItem", m.list.SelectedItem())
	}
	if item.gap.QuestionID != "q-crit" {
		t.Errorf("selected = %s, want q-crit", item.gap.QuestionID)
	}
}

func TestModelUpdate(t *testing.T) {
	t.Run("enter confirms every gap by default", func(t *testing.T) {
		m, cmd := update(t, NewPicker(testGaps()), key("enter"))

		if m.result.Action != ActionConfirm {
			t.Errorf("Action = %v, want ActionConfirm", m.result.Action)
		}
		if got := strings.Join(ids(m.result.Gaps), ","); got != "q-med,q-crit,q-low" {
			t.Errorf("Gaps = %s", got)
		}
		if !m.quitting || cmd == nil {
			t.Error("enter should quit")
		}
	})

	t.Run("space unchecks the current gap", func(t *testing.T) {
		m, _ := update(t, NewPicker(testGaps()), key("space"))
		m, _ = update(t, m, key("enter"))

		if got := strings.Join(ids(m.result.Gaps), ","); got != "q-med,q-low" {
			t.Errorf("Gaps = %s", got)
		}
	})

	t.Run("a toggles all", func(t *testing.T) {
		m, _ := update(t, NewPicker(testGaps()), key("a"))
		if len(m.Checked()) != 0 {
			t.Errorf("Checked() = %v, want none", ids(m.Checked()))
		}

		m, _ = update(t, m, key("a"))
		if len(m.Checked()) != 3 {
			t.Errorf("Checked() = %v, want all", ids(m.Checked()))
		}
	})

	t.Run("down skips headers", func(t *testing.T) {
		m, _ := update(t, NewPicker(testGaps()), key("down"))

		item, ok := m.list.SelectedItem().(gapItem)
		if !ok {
			t.Fatalf("selected item is %T, want gapItem", m.list.SelectedItem())
		}
		if item.gap.QuestionID != "q-med" {
			t.Errorf("selected = %s, want q-med", item.gap.QuestionID)
		}
	})

	t.Run("quit with q", func(t *testing.T) {
		m, cmd := update(t, NewPicker(testGaps()), key("q"))

		if m.result.Action != ActionQuit {
			t.Errorf("Action = %v, want ActionQuit", m.result.Action)
		}
		if cmd == nil {
			t.Error("Should return tea.Quit command")
		}
	})

	t.Run("quit with esc", func(t *testing.T) {
		m, _ := update(t, NewPicker(testGaps()), key("esc"))

		if m.result.Action != ActionQuit {
			t.Errorf("Action = %v, want ActionQuit", m.result.Action)
		}
	})

	t.Run("window size update", func(t *testing.T) {
		m, cmd := update(t, NewPicker(testGaps()), tea.WindowSizeMsg{Width: 100, Height: 50})

		if m.width != 100 || m.height != 50 {
			t.Errorf("size = %dx%d, want 100x50", m.width, m.height)
		}
		if cmd != nil {
			t.Error("Window size update should not return a command")
		}
	})
}

func TestModelInit(t *testing.T) {
	m := Model{}
	if cmd := m.Init(); cmd != nil {
		t.Error("Init() should return nil")
	}
}

func TestModelView(t *testing.T) {
	t.Run("normal view contains help", func(t *testing.T) {
		view := NewPicker(testGaps()).View()

		for _, want := range []string{"[space] Toggle", "[enter] Create", "[q] Cancel"} {
			if !strings.Contains(view, want) {
				t.Errorf("View should contain %q", want)
			}
		}
	})

	t.Run("quitting view is empty", func(t *testing.T) {
		m := NewPicker(testGaps())
		m.quitting = true

		if view := m.View(); view != "" {
			t.Errorf("Quitting view should be empty, got %q", view)
		}
	})
}

func TestRunPickerEmptyGaps(t *testing.T) {
	got, err := RunPicker(nil)
	if err != nil {
		t.Fatalf("RunPicker with no gaps failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("RunPicker(nil) = %v, want empty slice", got)
	}
}

func TestSimplePicker(t *testing.T) {
	t.Run("empty gaps", func(t *testing.T) {
		if out := SimplePicker(nil); !strings.Contains(out, "No gaps need an issue") {
			t.Errorf("SimplePicker(nil) = %q", out)
		}
	})

	t.Run("with gaps", func(t *testing.T) {
		out := SimplePicker(testGaps())

		for _, want := range []string{
			"1. 🟡 How are logs retained?",
			"2. 🔴 Who can reset passwords?\n",
			"q-crit | needs_clarification | coverage 25%",
			"3. 🟢 Is there a style guide?",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		line    string
		want    string
		wantErr bool
	}{
		{"", "q-med,q-crit,q-low", false},
		{"all\n", "q-med,q-crit,q-low", false},
		{"none", "", false},
		{"3,1", "q-med,q-low", false},
		{"2 2", "q-crit", false},
		{"4", "", true},
		{"one", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseSelection(tt.line, testGaps())
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSelection() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && strings.Join(ids(got), ",") != tt.want {
				t.Errorf("ParseSelection() = %v, want %s", ids(got), tt.want)
			}
		})
	}

	if _, err := ParseSelection("q", testGaps()); !errors.Is(err, ErrCancelled) {
		t.Errorf("ParseSelection(q) error = %v, want ErrCancelled", err)
	}
}

func TestPromptChooser(t *testing.T) {
	var out bytes.Buffer
	choose := PromptChooser(strings.NewReader("2\n"), &out)

	got, err := choose(testGaps())
	if err != nil {
		t.Fatalf("choose() error = %v", err)
	}
	if strings.Join(ids(got), ",") != "q-crit" {
		t.Errorf("choose() = %v", ids(got))
	}
	if !strings.Contains(out.String(), "Select issues to create [all]: ") {
		t.Errorf("prompt missing:\n%s", out.String())
	}

	choose = PromptChooser(strings.NewReader(""), &out)
	got, err = choose(testGaps())
	if err != nil || len(got) != 3 {
		t.Errorf("choose() at EOF = %v, %v; want all gaps", ids(got), err)
	}
}
