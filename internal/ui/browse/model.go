// Package browse is an interactive terminal view of a package registry.
package browse

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"projectjs/internal/engine/registry"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)
)

type item struct {
	pkg     string
	classes []string
}

func (i item) Title() string { return i.pkg }
func (i item) Description() string {
	return fmt.Sprintf("%d classes: %s", len(i.classes), strings.Join(i.classes, ", "))
}
func (i item) FilterValue() string { return i.pkg + " " + strings.Join(i.classes, " ") }

// UpdateMsg replaces the displayed registry. A non-nil Err keeps the
// current registry and shows the error.
type UpdateMsg struct {
	Registry *registry.PackageRegistry
	Err      error
}

type Model struct {
	list       list.Model
	reg        *registry.PackageRegistry
	err        error
	lastUpdate time.Time
	detail     bool
}

// New returns a model showing reg, which may be nil.
func New(reg *registry.PackageRegistry) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Packages"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	m := Model{list: l}
	if reg != nil {
		m = m.apply(UpdateMsg{Registry: reg})
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) apply(msg UpdateMsg) Model {
	m.lastUpdate = time.Now()
	m.err = msg.Err
	if msg.Err != nil || msg.Registry == nil {
		return m
	}
	m.reg = msg.Registry

	items := make([]list.Item, 0, msg.Registry.Len())
	msg.Registry.Each(func(pkg string, classes []string) bool {
		items = append(items, item{pkg: pkg, classes: classes})
		return true
	})
	m.list.SetItems(items)
	return m
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "enter":
				m.detail = !m.detail
				return m, nil
			case "esc":
				if m.detail {
					m.detail = false
					return m, nil
				}
			}
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case UpdateMsg:
		return m.apply(msg), nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var status string
	if m.reg != nil {
		status = statusStyle.Render(fmt.Sprintf("Last update: %v | %d packages | %d classes",
			m.lastUpdate.Format("15:04:05"), m.reg.Len(), m.reg.ClassCount()))
	} else {
		status = statusStyle.Render("No registry loaded")
	}

	summary := successStyle.Render("manifest ok")
	if m.err != nil {
		summary = errorStyle.Render(m.err.Error())
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("project.js registry"), status, summary)
	body := m.list.View()
	if m.detail {
		body = m.detailView()
	}
	return docStyle.Render(header + "\n" + body)
}

func (m Model) detailView() string {
	selected, ok := m.list.SelectedItem().(item)
	if !ok || m.reg == nil {
		return detailStyle.Render("nothing selected")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", titleStyle(selected.pkg))
	for _, class := range selected.classes {
		loc, _ := m.reg.Location(class)
		fmt.Fprintf(&b, "%s  %s\n", class, statusStyle.Render(loc))
	}
	return detailStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// Selected returns the highlighted package name.
func (m Model) Selected() (string, bool) {
	selected, ok := m.list.SelectedItem().(item)
	if !ok {
		return "", false
	}
	return selected.pkg, true
}
