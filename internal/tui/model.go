// Package tui provides the Bubble Tea dashboard interface.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/kostats/internal/model"
	"github.com/verte-zerg/kostats/internal/session"
	"github.com/verte-zerg/kostats/internal/stats"
)

const (
	tabOverview = iota
	tabBooks
	tabActivity
)

const defaultTopBooks = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea dashboard UI.
type Model struct {
	session *session.Session
	cfg     model.ReportConfig

	tabs      []string
	activeTab int
	viewports []viewport.Model
	bookTable table.Model

	picker  filepicker.Model
	picking bool
	pickErr string

	width  int
	height int
}

// NewModel constructs a dashboard model. When the session holds no
// loaded statistics the file picker is shown first.
func NewModel(sess *session.Session, cfg model.ReportConfig) *Model {
	m := &Model{
		session: sess,
		cfg:     cfg,
		tabs:    []string{"Overview", "Books", "Activity"},
	}
	m.initViewports()
	m.initBookTable()
	m.initPicker()
	m.picking = !sess.Loaded()
	if !m.picking {
		m.refresh()
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.picking {
		return m.picker.Init()
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		if m.picking {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.session.Reset()
			m.picking = true
			m.pickErr = ""
			return m, tea.Batch(m.picker.Init(), tea.ClearScreen)
		case "g", "home":
			if m.activeTab == tabBooks {
				m.bookTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabBooks {
				m.bookTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabBooks {
				var cmd tea.Cmd
				m.bookTable, cmd = m.bookTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
		return m, tea.Batch(cmd, m.loadFile(path))
	}
	if didSelect, path := m.picker.DidSelectDisabledFile(msg); didSelect {
		m.pickErr = fmt.Sprintf("%s is not a database file", filepath.Base(path))
	}
	return m, cmd
}

func (m *Model) loadFile(path string) tea.Cmd {
	if err := m.session.LoadFile(context.Background(), path); err != nil {
		m.pickErr = fmt.Sprintf("failed to load %s: %v", filepath.Base(path), err)
		return nil
	}
	m.picking = false
	m.pickErr = ""
	m.refresh()
	return tea.ClearScreen
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.picking {
		return m.viewPicker()
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) viewPicker() string {
	lines := []string{
		cardValueStyle.Render("Select a KoReader metadata.sqlite file"),
		"",
		m.picker.View(),
	}
	if m.pickErr != "" {
		lines = append(lines, errorStyle.Render(m.pickErr))
	}
	lines = append(lines, headerStyle.Render("Enter: open  q: quit"))
	return fitLines(strings.Join(lines, "\n"), m.width, m.height)
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initBookTable() {
	m.bookTable = table.New(
		table.WithColumns(bookColumns()),
		table.WithHeight(1),
	)
	m.bookTable.SetStyles(bookTableStyles())
}

func (m *Model) initPicker() {
	picker := filepicker.New()
	picker.AllowedTypes = []string{".sqlite", ".sqlite3", ".db"}
	picker.ShowHidden = false
	if dir, err := os.Getwd(); err == nil {
		picker.CurrentDirectory = dir
	}
	m.picker = picker
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.bookTable.SetWidth(m.width)
	m.bookTable.SetHeight(maxInt(1, bodyHeight-1))
	m.picker.Height = maxInt(1, m.height-5)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabBooks {
		m.bookTable.Focus()
	} else {
		m.bookTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	source := truncateLine(fmt.Sprintf("File: %s", m.session.Source()), m.width)
	return tabs + "\n" + headerStyle.Render(source)
}

func (m *Model) renderFooter() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Reset: r  Quit: q")
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabBooks {
		if len(m.session.Stats().AllBookStats) == 0 {
			return fitLines("No books found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.bookTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refresh() {
	overall := m.session.Stats()
	m.bookTable.SetRows(bookRows(overall.AllBookStats))
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 || m.picking {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	overall := m.session.Stats()
	m.viewports[tabOverview].SetContent(renderOverview(overall, width, m.cfg.Top))
	m.viewports[tabActivity].SetContent(renderActivity(overall.ReadingActivity, m.cfg, width))
}

func renderOverview(overall model.OverallStats, width, top int) string {
	if overall.TotalBooks == 0 {
		return "No books found."
	}
	if top <= 0 {
		top = defaultTopBooks
	}
	cards := renderSummaryCards(overall, width)
	var buf bytes.Buffer
	if err := stats.RenderTopBooks(&buf, "Top Books by Pages Read", overall.PagesReadPerBook, top); err != nil {
		return fmt.Sprintf("Failed to render overview: %v", err)
	}
	if err := stats.RenderTopBooks(&buf, "Top Books by Time Spent", overall.TimeSpentPerBook, top); err != nil {
		return fmt.Sprintf("Failed to render overview: %v", err)
	}
	return strings.TrimRight(cards+"\n\n"+buf.String(), "\n")
}

func renderSummaryCards(overall model.OverallStats, width int) string {
	cards := []string{
		metricCard("Books", fmt.Sprintf("%d", overall.TotalBooks)),
		metricCard("Pages Read", fmt.Sprintf("%d", overall.TotalPagesRead)),
		metricCard("Time Spent", stats.FormatMinutes(overall.TotalTimeMinutes)),
		metricCard("Sessions", fmt.Sprintf("%d", overall.TotalSessions)),
		metricCard("Active Days", fmt.Sprintf("%d", len(overall.ReadingActivity))),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderActivity(activity []model.ActivityPoint, cfg model.ReportConfig, width int) string {
	if len(activity) == 0 {
		return "No daily activity recorded. This database has no page_stat_data table."
	}
	_, minutes := stats.ActivitySeries(activity)
	spark := headerStyle.Render("Minutes/day: " + stats.Sparkline(minutes))
	var buf bytes.Buffer
	if err := stats.RenderActivity(&buf, activity, cfg.Window, width, cfg.PlotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render activity: %v", err)
	}
	return strings.TrimRight(spark+"\n\n"+buf.String(), "\n")
}

func bookColumns() []table.Column {
	return []table.Column{
		{Title: "Title", Width: 40},
		{Title: "Read", Width: 6},
		{Title: "Total", Width: 6},
		{Title: "Done", Width: 5},
		{Title: "Time", Width: 8},
		{Title: "Sessions", Width: 8},
		{Title: "Last Read", Width: 10},
	}
}

func bookRows(books []model.BookStat) []table.Row {
	rows := make([]table.Row, 0, len(books))
	for _, book := range books {
		done := "-"
		if c := book.Completion(); c >= 0 {
			done = fmt.Sprintf("%.0f%%", c*100)
		}
		total := "-"
		if book.TotalPages > 0 {
			total = fmt.Sprintf("%d", book.TotalPages)
		}
		lastRead := "-"
		if book.LastSessionDate != nil {
			lastRead = book.LastSessionDate.Format("2006-01-02")
		}
		rows = append(rows, table.Row{
			book.Title,
			fmt.Sprintf("%d", book.TotalPagesRead),
			total,
			done,
			stats.FormatMinutes(book.TotalTimeMinutes),
			fmt.Sprintf("%d", book.Sessions),
			lastRead,
		})
	}
	return rows
}

func bookTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func truncateLine(line string, width int) string {
	if width <= 0 {
		return line
	}
	if lipgloss.Width(line) <= width {
		return line
	}
	var b strings.Builder
	used := 0
	for _, r := range line {
		rw := runewidth.RuneWidth(r)
		if used+rw > width {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	return b.String()
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
