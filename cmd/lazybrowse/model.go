package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fulldump/lazylist/lazylist"
)

// table is the part of a concurrent lazy list the browser needs.
type table interface {
	Get(ctx context.Context, index int) (json.RawMessage, bool, error)
	Size(ctx context.Context) (int, error)
	Sort(ctx context.Context, ascending bool, properties ...string) error
	Refresh(ctx context.Context) error
	Stats(ctx context.Context) (lazylist.Stats, error)
}

const maxColumnWidth = 24

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type model struct {
	list    table
	title   string
	columns []string

	cursor int
	top    int
	height int // visible rows
	width  int

	sortColumn int // -1 natural order
	ascending  bool

	err error
}

func newModel(list table, title string, columns []string) *model {
	return &model{
		list:       list,
		title:      title,
		columns:    columns,
		height:     20,
		width:      120,
		sortColumn: -1,
		ascending:  true,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {

	ctx := context.Background()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height - 4 // title, header, status and a blank line
		if m.height < 1 {
			m.height = 1
		}
		m.follow()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(ctx, -1)
		case "down", "j":
			m.move(ctx, 1)
		case "pgup":
			m.move(ctx, -m.height)
		case "pgdown", " ":
			m.move(ctx, m.height)
		case "home", "g":
			m.move(ctx, -m.cursor)
		case "end", "G":
			size, err := m.list.Size(ctx)
			m.err = err
			m.move(ctx, size)
		case "s":
			m.sortColumn++
			if m.sortColumn >= len(m.columns) {
				m.sortColumn = -1
			}
			m.applySort(ctx)
		case "r":
			m.ascending = !m.ascending
			m.applySort(ctx)
		case "R":
			m.err = m.list.Refresh(ctx)
			m.move(ctx, 0)
		}
	}

	return m, nil
}

// move shifts the cursor by delta rows, clamped to the list bounds.
func (m *model) move(ctx context.Context, delta int) {
	size, err := m.list.Size(ctx)
	if err != nil {
		m.err = err
		return
	}
	m.cursor += delta
	if m.cursor >= size {
		m.cursor = size - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.follow()
}

// follow scrolls so that the cursor is visible.
func (m *model) follow() {
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+m.height {
		m.top = m.cursor - m.height + 1
	}
}

func (m *model) applySort(ctx context.Context) {
	properties := []string{}
	if m.sortColumn >= 0 {
		properties = append(properties, m.columns[m.sortColumn])
	}
	m.err = m.list.Sort(ctx, m.ascending, properties...)
	m.cursor, m.top = 0, 0
}

func (m *model) View() string {

	ctx := context.Background()

	b := &strings.Builder{}
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	widths := m.columnWidths()

	header := make([]string, len(m.columns))
	for i, column := range m.columns {
		name := column
		if i == m.sortColumn {
			if m.ascending {
				name += " ▲"
			} else {
				name += " ▼"
			}
		}
		header[i] = cell(name, widths[i])
	}
	b.WriteString(headerStyle.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	size, err := m.list.Size(ctx)
	if err != nil {
		m.err = err
	}

	for i := m.top; i < m.top+m.height && i < size; i++ {
		item, found, err := m.list.Get(ctx, i)
		if err != nil {
			m.err = err
			break
		}
		if !found {
			break
		}
		line := m.renderRow(item, widths)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	status := fmt.Sprintf("row %d/%d", m.cursor+1, size)
	if stats, err := m.list.Stats(ctx); err == nil {
		status += fmt.Sprintf(" · fetches %d · counts %d", stats.Fetches, stats.Counts)
	}
	status += " · ↑↓ move · s sort · r reverse · R refresh · q quit"
	b.WriteString(statusStyle.Render(status))

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
	}

	return b.String()
}

func (m *model) columnWidths() []int {
	widths := make([]int, len(m.columns))
	if len(m.columns) == 0 {
		return widths
	}
	w := (m.width - len(m.columns) + 1) / len(m.columns)
	if w > maxColumnWidth {
		w = maxColumnWidth
	}
	if w < 4 {
		w = 4
	}
	for i := range widths {
		widths[i] = w
	}
	return widths
}

func (m *model) renderRow(item json.RawMessage, widths []int) string {
	data := map[string]interface{}{}
	json.Unmarshal(item, &data) // non objects render as empty cells

	cells := make([]string, len(m.columns))
	for i, column := range m.columns {
		cells[i] = cell(formatValue(data[column]), widths[i])
	}
	return strings.Join(cells, " ")
}

func cell(s string, width int) string {
	if lipgloss.Width(s) > width {
		runes := []rune(s)
		if len(runes) > width-1 {
			runes = runes[:width-1]
		}
		s = string(runes) + "…"
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// guessColumns takes the fields of the first document, sorted by name.
func guessColumns(ctx context.Context, list table) ([]string, error) {

	item, found, err := list.Get(ctx, 0)
	if err != nil {
		return nil, err
	}
	if !found {
		return []string{}, nil
	}

	data := map[string]interface{}{}
	err = json.Unmarshal(item, &data)
	if err != nil {
		return nil, fmt.Errorf("first document is not an object: %w", err)
	}

	columns := make([]string, 0, len(data))
	for key := range data {
		columns = append(columns, key)
	}
	sort.Strings(columns)

	return columns, nil
}
