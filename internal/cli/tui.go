package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/packhub/packhub/pkg/ops"
)

// watchPollInterval is how often the watch table refreshes.
const watchPollInterval = time.Second

// =============================================================================
// opsWatchModel - Live operations table
// =============================================================================

// opsTickMsg triggers the next poll.
type opsTickMsg time.Time

// opsLoadedMsg carries one poll's result.
type opsLoadedMsg struct {
	operations []*ops.Operation
	err        error
}

// opsWatchModel is the bubbletea model behind "packhub ops watch".
type opsWatchModel struct {
	client     *apiClient
	limit      int
	operations []*ops.Operation
	err        error
	lastUpdate time.Time
}

func newOpsWatchModel(client *apiClient, limit int) opsWatchModel {
	return opsWatchModel{client: client, limit: limit}
}

func (m opsWatchModel) Init() tea.Cmd {
	return tea.Batch(m.load(), opsTick())
}

func opsTick() tea.Cmd {
	return tea.Tick(watchPollInterval, func(t time.Time) tea.Msg {
		return opsTickMsg(t)
	})
}

// load fetches the current operation list off the UI goroutine.
func (m opsWatchModel) load() tea.Cmd {
	client, limit := m.client, m.limit
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), watchPollInterval)
		defer cancel()
		list, err := client.ListOperations(ctx, limit)
		return opsLoadedMsg{operations: list, err: err}
	}
}

func (m opsWatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.load()
		}
	case opsTickMsg:
		return m, tea.Batch(m.load(), opsTick())
	case opsLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.operations = msg.operations
			m.lastUpdate = time.Now()
		}
	}
	return m, nil
}

func (m opsWatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Operations"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("r refresh  q quit"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(StyleError.Render(fmt.Sprintf("  %s %v", iconError, m.err)))
		b.WriteString("\n")
		return b.String()
	}
	if len(m.operations) == 0 {
		b.WriteString(StyleDim.Render("  no operations yet"))
		b.WriteString("\n")
		return b.String()
	}

	rows := [][]string{}
	for _, op := range m.operations {
		progress := "-"
		if op.Progress != nil {
			progress = fmt.Sprintf("%d%%", *op.Progress)
		}
		rows = append(rows, []string{
			op.ID,
			string(op.Status),
			progress,
			op.Message,
			op.CreatedAt,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Status", "Progress", "Message", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 && row < len(m.operations) {
				return statusStyle(string(m.operations[row].Status))
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if !m.lastUpdate.IsZero() {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  updated %s", m.lastUpdate.Format("15:04:05"))))
		b.WriteString("\n")
	}
	return b.String()
}
