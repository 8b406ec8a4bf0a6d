package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/forage-assist/internal/gap"
	"github.com/firefly-engineering/forage-assist/internal/premortem"
)

// headerItem is a non-selectable group separator in the picker list.
type headerItem struct {
	label string
}

func (h headerItem) FilterValue() string { return "" }
func (h headerItem) Title() string       { return h.label }
func (h headerItem) Description() string { return "" }

// groupKey returns the priority a gap is grouped under.
func groupKey(g gap.Gap) string {
	if g.Priority == "" {
		return premortem.PriorityMedium
	}
	return g.Priority
}

// groupLabel renders a header such as "🔴 Critical (2)".
func groupLabel(priority string, n int) string {
	marker, ok := priorityMarkers[priority]
	if !ok {
		marker = "📝"
	}
	name := priority
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%s %s (%d)", marker, name, n)
}

// buildGroupedItems groups gaps by priority, most urgent first, and returns
// list items with headerItem separators. Every gap starts checked.
func buildGroupedItems(gaps []gap.Gap) []list.Item {
	if len(gaps) == 0 {
		return nil
	}

	type group struct {
		key     string
		indexes []int
	}
	groupMap := make(map[string]*group)
	for i, g := range gaps {
		key := groupKey(g)
		grp, ok := groupMap[key]
		if !ok {
			grp = &group{key: key}
			groupMap[key] = grp
		}
		grp.indexes = append(grp.indexes, i)
	}

	groups := make([]*group, 0, len(groupMap))
	for _, grp := range groupMap {
		groups = append(groups, grp)
	}
	sort.Slice(groups, func(i, j int) bool {
		ri, rj := premortem.PriorityRank(groups[i].key), premortem.PriorityRank(groups[j].key)
		if ri != rj {
			return ri < rj
		}
		return groups[i].key < groups[j].key
	})

	var items []list.Item
	for _, grp := range groups {
		items = append(items, headerItem{label: groupLabel(grp.key, len(grp.indexes))})
		for _, i := range grp.indexes {
			items = append(items, gapItem{gap: gaps[i], index: i, checked: true})
		}
	}
	return items
}

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("241")).
	PaddingLeft(2)

// groupedDelegate renders both headerItem and gapItem in the picker list.
type groupedDelegate struct {
	inner list.DefaultDelegate
}

func newGroupedDelegate() groupedDelegate {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	return groupedDelegate{inner: delegate}
}

func (d groupedDelegate) Height() int                             { return d.inner.Height() }
func (d groupedDelegate) Spacing() int                            { return d.inner.Spacing() }
func (d groupedDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d groupedDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	if h, ok := item.(headerItem); ok {
		fmt.Fprint(w, headerStyle.Render(h.label))
		return
	}
	d.inner.Render(w, m, index, item)
}

// skipHeaders moves the cursor off a headerItem, preferring direction
// (1 down, -1 up) and falling back to the opposite one.
func skipHeaders(l *list.Model, direction int) {
	items := l.Items()
	if len(items) == 0 {
		return
	}

	idx := l.Index()
	if _, ok := items[idx].(headerItem); !ok {
		return
	}

	next := idx + direction
	if next >= 0 && next < len(items) {
		if _, ok := items[next].(headerItem); !ok {
			l.Select(next)
			return
		}
	}

	opposite := idx - direction
	if opposite >= 0 && opposite < len(items) {
		if _, ok := items[opposite].(headerItem); !ok {
			l.Select(opposite)
			return
		}
	}

	for i := 0; i < len(items); i++ {
		candidate := (idx + i*direction + len(items)) % len(items)
		if _, ok := items[candidate].(headerItem); !ok {
			l.Select(candidate)
			return
		}
	}
}

// navigationDirection returns 1 for down/j keys, -1 for up/k keys.
func navigationDirection(msg tea.KeyMsg) int {
	switch msg.String() {
	case "up", "k":
		return -1
	default:
		return 1
	}
}
