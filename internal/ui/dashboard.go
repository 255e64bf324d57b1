package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/vietdv277/sshdash/internal/analytics"
	"github.com/vietdv277/sshdash/internal/export"
	"github.com/vietdv277/sshdash/internal/filter"
	"github.com/vietdv277/sshdash/pkg/types"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	// Lines taken by header, tabs, filter bar, status and footer
	chromeHeight = 9
	timelineRows = 8
	minTableRows = 3
)

type tab int

const (
	tabDashboard tab = iota
	tabRawData
)

var tabNames = []string{"Dashboard", "Raw Data"}

type focus int

const (
	focusNone focus = iota
	focusFrom
	focusTo
	focusIPs
)

// DashboardOptions configures the interactive dashboard
type DashboardOptions struct {
	Source    string // shown in the header
	ExportDir string
	TopN      int
	Logger    *zap.Logger
}

// exportDoneMsg reports the outcome of an export started with the export key
type exportDoneMsg struct {
	path string
	rows int
	err  error
}

// Dashboard is the bubbletea model of the log dashboard. Every control
// change rebuilds the selection, re-filters the loaded table and recomputes
// the report.
type Dashboard struct {
	table  *types.LogTable
	opts   DashboardOptions
	logger *zap.Logger

	events   []string
	ips      []string
	eventIdx int
	sel      types.FilterSelection

	filtered *types.LogTable
	report   analytics.Report

	tab       tab
	focus     focus
	dateInput textinput.Model
	picker    ipPicker
	scroll    int

	width     int
	height    int
	status    string
	statusErr bool
	quitting  bool
}

// NewDashboard creates the model with the default selection: the full date
// range, every event and no IP restriction
func NewDashboard(table *types.LogTable, opts DashboardOptions) Dashboard {
	if opts.TopN <= 0 {
		opts.TopN = analytics.DefaultTopN
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	input := textinput.New()
	input.Placeholder = filter.DateLayout
	input.CharLimit = len(filter.DateLayout)
	input.Width = len(filter.DateLayout) + 1

	m := Dashboard{
		table:     table,
		opts:      opts,
		logger:    logger,
		events:    filter.EventOptions(table),
		ips:       filter.IPOptions(table),
		sel:       filter.DefaultSelection(table),
		dateInput: input,
		width:     defaultWidth,
		height:    defaultHeight,
	}
	m.recompute()
	return m
}

// Init implements tea.Model
func (m Dashboard) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update implements tea.Model
func (m Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampScroll()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Export failed: %v", msg.err), true)
			m.logger.Warn("export failed", zap.Error(msg.err))
		} else {
			m.setStatus(fmt.Sprintf("Exported %d rows to %s", msg.rows, msg.path), false)
			m.logger.Info("export written", zap.String("path", msg.path), zap.Int("rows", msg.rows))
		}
		return m, nil

	case tea.KeyMsg:
		switch m.focus {
		case focusFrom, focusTo:
			return m.updateDateInput(msg)
		case focusIPs:
			return m.updatePicker(msg), nil
		}
		return m.handleKey(msg)
	}

	if m.focus == focusFrom || m.focus == focusTo {
		var cmd tea.Cmd
		m.dateInput, cmd = m.dateInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Dashboard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.tab = (m.tab + 1) % tab(len(tabNames))
	case "1":
		m.tab = tabDashboard
	case "2":
		m.tab = tabRawData

	case "f":
		return m, m.openDateInput(focusFrom)
	case "t":
		return m, m.openDateInput(focusTo)

	case "]", "right":
		m.cycleEvent(1)
	case "[", "left":
		m.cycleEvent(-1)

	case "i":
		m.picker = newIPPicker(m.ips, m.sel.SourceIPs)
		m.focus = focusIPs

	case "e":
		return m, m.exportCmd()

	case "r":
		m.sel = filter.DefaultSelection(m.table)
		m.eventIdx = 0
		m.scroll = 0
		m.recompute()
		m.setStatus("Filters reset", false)

	case "up", "k":
		m.scrollBy(-1)
	case "down", "j":
		m.scrollBy(1)
	case "pgup":
		m.scrollBy(-m.pageRows())
	case "pgdown":
		m.scrollBy(m.pageRows())
	case "home", "g":
		m.scroll = 0
	case "end", "G":
		m.scroll = m.filtered.Len()
		m.clampScroll()
	}
	return m, nil
}

func (m *Dashboard) openDateInput(f focus) tea.Cmd {
	m.focus = f
	current := m.sel.Dates.Start
	m.dateInput.Prompt = "From: "
	if f == focusTo {
		current = m.sel.Dates.End
		m.dateInput.Prompt = "To: "
	}
	value := ""
	if !current.IsZero() {
		value = filter.FormatDate(current)
	}
	m.dateInput.SetValue(value)
	m.dateInput.CursorEnd()
	return m.dateInput.Focus()
}

func (m Dashboard) updateDateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeDateInput()
		return m, nil

	case tea.KeyEnter:
		if err := m.applyDate(strings.TrimSpace(m.dateInput.Value())); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.closeDateInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

func (m *Dashboard) closeDateInput() {
	m.focus = focusNone
	m.dateInput.Blur()
}

// applyDate sets the edited end of the date range. An empty value clears it,
// which disables the date filter until both ends are set again.
func (m *Dashboard) applyDate(value string) error {
	var d time.Time
	if value != "" {
		var err error
		if d, err = filter.ParseDate(value); err != nil {
			return err
		}
	}

	dates := m.sel.Dates
	if m.focus == focusFrom {
		dates.Start = d
	} else {
		dates.End = d
	}
	if dates.Complete() && dates.Start.After(dates.End) {
		return fmt.Errorf("start date %s is after end date %s", filter.FormatDate(dates.Start), filter.FormatDate(dates.End))
	}

	m.sel.Dates = dates
	m.scroll = 0
	m.recompute()
	m.status = ""
	return nil
}

func (m Dashboard) updatePicker(msg tea.KeyMsg) Dashboard {
	picker, done, apply := m.picker.update(msg)
	m.picker = picker
	if !done {
		return m
	}
	m.focus = focusNone
	if apply {
		m.sel.SourceIPs = picker.selected
		m.scroll = 0
		m.recompute()
	}
	return m
}

func (m *Dashboard) cycleEvent(delta int) {
	if len(m.events) == 0 {
		return
	}
	m.eventIdx = (m.eventIdx + delta + len(m.events)) % len(m.events)
	m.sel.EventID = m.events[m.eventIdx]
	m.scroll = 0
	m.recompute()
}

func (m Dashboard) exportCmd() tea.Cmd {
	dir, view := m.opts.ExportDir, m.filtered
	return func() tea.Msg {
		path, err := export.WriteFile(dir, view)
		return exportDoneMsg{path: path, rows: view.Len(), err: err}
	}
}

// recompute re-runs the filter and analytics for the current selection
func (m *Dashboard) recompute() {
	m.filtered = filter.Apply(m.table, m.sel)
	m.report = analytics.Build(m.filtered, m.opts.TopN)
	m.clampScroll()
	m.logger.Debug("filters applied",
		zap.String("event", m.sel.EventID),
		zap.Int("ips", len(m.sel.SelectedIPs())),
		zap.Int("rows", m.filtered.Len()),
	)
}

func (m *Dashboard) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Dashboard) pageRows() int {
	// Raw table borders, header and caption take 5 lines
	return max(m.height-chromeHeight-5, minTableRows)
}

func (m *Dashboard) scrollBy(delta int) {
	if m.tab != tabRawData {
		return
	}
	m.scroll += delta
	m.clampScroll()
}

func (m *Dashboard) clampScroll() {
	m.scroll = min(m.scroll, max(m.filtered.Len()-m.pageRows(), 0))
	m.scroll = max(m.scroll, 0)
}

// View implements tea.Model
func (m Dashboard) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("SSH Log Dashboard"))
	if m.opts.Source != "" {
		sb.WriteString(MutedStyle.Render("  " + m.opts.Source))
	}
	sb.WriteString("\n")
	sb.WriteString(m.renderTabs())
	sb.WriteString("\n")
	sb.WriteString(m.renderFilterBar())
	sb.WriteString("\n")
	if m.status != "" {
		if m.statusErr {
			sb.WriteString(ErrorStyle.Render("✗ " + m.status))
		} else {
			sb.WriteString(SuccessStyle.Render("✓ " + m.status))
		}
	}
	sb.WriteString("\n\n")

	switch {
	case m.focus == focusIPs:
		sb.WriteString(m.picker.view(m.width))
	case m.tab == tabRawData:
		sb.WriteString(m.renderRawData())
	default:
		sb.WriteString(m.renderDashboard())
	}

	sb.WriteString("\n")
	sb.WriteString(m.renderFooter())
	return sb.String()
}

func (m Dashboard) renderTabs() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if tab(i) == m.tab {
			parts[i] = ActiveTabStyle.Render(label)
		} else {
			parts[i] = InactiveTabStyle.Render(label)
		}
	}
	return strings.Join(parts, "   ")
}

func (m Dashboard) renderFilterBar() string {
	dateValue := func(f focus, d time.Time, label string) string {
		if m.focus == f {
			return m.dateInput.View()
		}
		value := "-"
		if !d.IsZero() {
			value = filter.FormatDate(d)
		}
		return MutedStyle.Render(label+": ") + TimestampStyle.Render(value)
	}

	ips := "all"
	if selected := m.sel.SelectedIPs(); len(selected) > 0 {
		ips = fmt.Sprintf("%d selected", len(selected))
	}

	return strings.Join([]string{
		dateValue(focusFrom, m.sel.Dates.Start, "From"),
		dateValue(focusTo, m.sel.Dates.End, "To"),
		MutedStyle.Render("Event: ") + EventStyle.Render(m.sel.EventID),
		MutedStyle.Render("IPs: ") + IPStyle.Render(ips),
	}, "   ")
}

func (m Dashboard) renderDashboard() string {
	if m.report.Empty {
		return WarningStyle.Render("⚠ " + EmptyResultMessage)
	}

	half := max(m.width/2-2, 30)
	topIPs := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("Top 5 Aggressive IPs"),
		RenderTopIPsChart(m.report.TopIPs, half),
	)
	timeline := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("Attack Frequency Over Time"),
		RenderTimelineChart(m.report.Hourly, half, timelineRows),
	)

	var charts string
	if m.width >= 2*30+4 {
		charts = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(half+2).Render(topIPs),
			timeline,
		)
	} else {
		charts = topIPs + "\n\n" + timeline
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		RenderMetrics(m.report.Metrics, m.width),
		"",
		charts,
	)
}

func (m Dashboard) renderRawData() string {
	caption := HeaderStyle.Render(fmt.Sprintf("Showing %d rows", m.filtered.Len()))
	if m.filtered.Empty() {
		return caption + "\n" + WarningStyle.Render("⚠ "+EmptyResultMessage)
	}
	rows := m.pageRows()
	end := min(m.scroll+rows, m.filtered.Len())
	caption += MutedStyle.Render(fmt.Sprintf("  (%d-%d)", m.scroll+1, end))
	return caption + "\n" + RenderRecordTable(m.filtered, m.scroll, rows, m.width)
}

func (m Dashboard) renderFooter() string {
	var hints string
	switch m.focus {
	case focusFrom, focusTo:
		hints = "[Enter:apply] [Esc:cancel] (empty clears the date)"
	case focusIPs:
		return ""
	default:
		hints = "[Tab:view] [f/t:dates] [←/→:event] [i:IPs] [e:export] [r:reset] [q:quit]"
		if m.tab == tabRawData {
			hints = "[↑/↓:scroll] " + hints
		}
	}
	return HintStyle.Render(hints)
}

// RunDashboard runs the dashboard full screen until the user quits
func RunDashboard(table *types.LogTable, opts DashboardOptions) error {
	p := tea.NewProgram(NewDashboard(table, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}
	return nil
}
