package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/voicetimeapp/voicetime/internal/model"
	"github.com/voicetimeapp/voicetime/internal/output"
	"github.com/voicetimeapp/voicetime/internal/storage"
)

// tickMsg is sent when the refresh timer ticks.
type tickMsg time.Time

// refreshMsg is sent when data needs to be reloaded.
type refreshMsg struct{}

// errMsg is sent when loading data fails.
type errMsg struct {
	err error
}

// DashboardModel is the bubbletea model for the dashboard: today's totals
// per category rendered as bars, plus the most recent entries.
type DashboardModel struct {
	totals     []storage.CategoryAggregate
	categories map[string]*model.Category
	recent     []*model.TimeEntry

	entryRepo    *storage.EntryRepo
	categoryRepo *storage.CategoryRepo

	width  int
	height int
	err    error

	refreshInterval time.Duration
	maxRecent       int
}

// DashboardConfig holds configuration for the dashboard.
type DashboardConfig struct {
	EntryRepo       *storage.EntryRepo
	CategoryRepo    *storage.CategoryRepo
	RefreshInterval time.Duration
	MaxRecent       int
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(config DashboardConfig) *DashboardModel {
	if config.RefreshInterval == 0 {
		config.RefreshInterval = 5 * time.Second
	}
	if config.MaxRecent == 0 {
		config.MaxRecent = 8
	}

	return &DashboardModel{
		entryRepo:       config.EntryRepo,
		categoryRepo:    config.CategoryRepo,
		refreshInterval: config.RefreshInterval,
		maxRecent:       config.MaxRecent,
		categories:      make(map[string]*model.Category),
	}
}

// Init initializes the model.
func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), func() tea.Msg { return refreshMsg{} })
}

// Update handles messages and updates the model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, func() tea.Msg { return refreshMsg{} }
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.tickCmd(), func() tea.Msg { return refreshMsg{} })

	case refreshMsg:
		if err := m.loadData(); err != nil {
			return m, func() tea.Msg { return errMsg{err} }
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	var sb strings.Builder

	sb.WriteString(StyleTitle.Render("Voicetime — today"))
	sb.WriteString("\n\n")

	if m.err != nil {
		sb.WriteString(StyleError.Render("error: " + m.err.Error()))
		sb.WriteString("\n")
	}

	if len(m.totals) == 0 {
		sb.WriteString(StyleSubtitle.Render("No entries yet today. Run: voicetime record"))
		sb.WriteString("\n")
	} else {
		sb.WriteString(m.renderTotals())
	}

	if len(m.recent) > 0 {
		sb.WriteString("\n")
		sb.WriteString(StyleTitle.Render("Recent entries"))
		sb.WriteString("\n")
		sb.WriteString(m.renderRecent())
	}

	sb.WriteString("\n")
	sb.WriteString(StyleSubtitle.Render("r refresh · q quit"))
	sb.WriteString("\n")

	return sb.String()
}

func (m *DashboardModel) renderTotals() string {
	var sb strings.Builder

	maxMinutes := 0
	for _, agg := range m.totals {
		if agg.Minutes > maxMinutes {
			maxMinutes = agg.Minutes
		}
	}

	barWidth := m.width - 40
	if barWidth < 10 {
		barWidth = 10
	}

	for _, agg := range m.totals {
		name := "uncategorized"
		icon := " "
		if c, ok := m.categories[agg.CategoryID]; ok {
			name = c.Name
			if c.Icon != "" {
				icon = c.Icon
			}
		}

		filled := 0
		if maxMinutes > 0 {
			filled = agg.Minutes * barWidth / maxMinutes
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

		sb.WriteString(fmt.Sprintf("%s %-14s %s %s\n",
			icon,
			StyleCategory.Render(name),
			StyleBar.Render(bar),
			output.FormatMinutes(agg.Minutes)))
	}

	return sb.String()
}

func (m *DashboardModel) renderRecent() string {
	var sb strings.Builder

	for _, e := range m.recent {
		summary := "(no summary)"
		if e.Summary != nil {
			summary = *e.Summary
		}
		marker := "  "
		if !e.Processed {
			marker = StyleWarning.Render("! ")
		}
		sb.WriteString(fmt.Sprintf("%s%s  %-10s %s\n",
			marker,
			output.FormatTimestamp(e.RecordedTime()),
			output.FormatMinutes(e.Duration),
			summary))
	}

	return sb.String()
}

// loadData reloads today's totals and the recent entries.
func (m *DashboardModel) loadData() error {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	totals, err := m.entryRepo.TotalsByCategory(start, start.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	m.totals = totals

	categories, err := m.categoryRepo.List()
	if err != nil {
		return err
	}
	m.categories = make(map[string]*model.Category, len(categories))
	for _, c := range categories {
		m.categories[c.ID] = c
	}

	recent, err := m.entryRepo.List()
	if err != nil {
		return err
	}
	if len(recent) > m.maxRecent {
		recent = recent[:m.maxRecent]
	}
	m.recent = recent

	return nil
}

func (m *DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
