// Package chatui is the terminal chat client.
package chatui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emery7592/presia-backend/internal/domain"
)

// ChatPort is the chatui-facing subset of the chat service.
type ChatPort interface {
	Chat(ctx context.Context, message string, history []domain.Turn) string
}

// answerMsg carries one finished exchange back into the update loop.
type answerMsg struct {
	question string
	answer   string
}

// Model is the Bubble Tea model for the chat client.
type Model struct {
	service  ChatPort
	input    textinput.Model
	viewport viewport.Model
	history  []domain.Turn
	status   string
	title    string
	ready    bool
	waiting  bool
}

// New creates a new chat client model.
func New(service ChatPort, title string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Écris ton message et appuie sur Entrée"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, viewport: vp, title: title, status: "Prêt."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and drives the exchange lifecycle.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // title, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	case answerMsg:
		m.history = append(m.history,
			domain.Turn{Role: domain.RoleUser, Content: msg.question},
			domain.Turn{Role: domain.RoleAssistant, Content: msg.answer},
		)
		m.waiting = false
		m.status = "Prêt."
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.waiting {
				m.input.SetValue("")
				m.waiting = true
				m.status = "Réflexion..."
				return m, m.ask(q)
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs the exchange off the update loop so typing stays responsive.
func (m Model) ask(question string) tea.Cmd {
	history := append([]domain.Turn(nil), m.history...)
	return func() tea.Msg {
		answer := m.service.Chat(context.Background(), question, history)
		return answerMsg{question: question, answer: answer}
	}
}

// View renders the TUI layout and the conversation so far.
func (m Model) View() string {
	if !m.ready {
		return "Chargement..."
	}
	title := lipgloss.NewStyle().Bold(true).Render(m.title)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return title + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return "Pas encore de messages."
	}
	var b strings.Builder
	for i, turn := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch turn.Role {
		case domain.RoleUser:
			b.WriteString(userStyle.Render("Toi : "))
		case domain.RoleAssistant:
			b.WriteString(assistantStyle.Render(m.title + " : "))
		}
		b.WriteString(turn.Content)
	}
	return b.String()
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
