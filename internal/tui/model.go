package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdf-rag/internal/models"
)

// Asker is the TUI-facing subset of a session
type Asker interface {
	Ask(ctx context.Context, query string, mode models.Mode) (*models.Response, error)
}

type answerMsg struct {
	resp *models.Response
	err  error
}

// Model is the Bubble Tea model for asking questions about one document
type Model struct {
	ctx      context.Context
	session  Asker
	input    textinput.Model
	viewport viewport.Model
	title    string
	mode     models.Mode
	status   string
	resp     *models.Response
	busy     bool
	ready    bool
}

// New creates a new TUI model instance
func New(ctx context.Context, session Asker, title string, mode models.Mode) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Enter your question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		session:  session,
		input:    ti,
		viewport: vp,
		title:    title,
		mode:     mode,
		status:   "Document loaded. Tab switches between answer and quotes.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, status, query box, spacer
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderResponse())
		return m, nil
	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.resp = msg.resp
		m.status = fmt.Sprintf("%d sources", len(msg.resp.Sources().Chunks))
		m.viewport.SetContent(m.renderResponse())
		m.viewport.GotoTop()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.mode == models.ModeQuotes {
				m.mode = models.ModeQA
			} else {
				m.mode = models.ModeQuotes
			}
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			// one question at a time
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Retrieving and generating..."
			return m, m.ask(q, m.mode)
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(query string, mode models.Mode) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.session.Ask(m.ctx, query, mode)
		return answerMsg{resp: resp, err: err}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("PDF Assistant") + "  " +
		mutedStyle.Render(m.title) + "  " + modeStyle.Render("["+string(m.mode)+"]")
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderResponse() string {
	if m.resp == nil {
		return "No answer yet."
	}
	width := max(20, m.viewport.Width-4)
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	switch {
	case m.resp.Answer != nil:
		b.WriteString(headingStyle.Render("Answer") + "\n")
		b.WriteString(wrap.Render(m.resp.Answer.Text) + "\n\n")
	case m.resp.Quotes != nil:
		b.WriteString(headingStyle.Render("Exact Quotes") + "\n")
		b.WriteString(wrap.Render(m.resp.Quotes.Raw) + "\n\n")
	}
	b.WriteString(headingStyle.Render("Sources") + "\n")
	for i, c := range m.resp.Sources().Chunks {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d. page %d  similarity %.3f", i+1, c.Page, c.Score)) + "\n")
		b.WriteString(wrap.Render(c.Text) + "\n\n")
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	modeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
