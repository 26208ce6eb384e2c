package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agentic/internal/session"
	"agentic/internal/timeutil"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSessions
)

type (
	sendDoneMsg   struct{ err error }
	switchDoneMsg struct{}
	deleteDoneMsg struct{ err error }
	themeMsg      struct{ mode string }
)

// chatModel is the bubbletea model for the conversation view. All session
// state lives in the controller; the model only holds presentation state
// and the single-operation busy flag that serializes network work.
type chatModel struct {
	ctrl  *session.Controller
	theme Theme
	mode  string
	md    *markdownRenderer

	viewport  viewport.Model
	input     textinput.Model
	spin      spinner.Model
	focus     focusArea
	cursor    int
	searching bool
	search    textinput.Model
	busy      bool
	width     int
	height    int
	status    string
}

func newChatModel(ctrl *session.Controller, themeMode string) *chatModel {
	theme := NewTheme(themeMode)

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.PromptStyle = lipgloss.NewStyle().Foreground(theme.Accent)
	input.Focus()

	search := textinput.New()
	search.Placeholder = "Search chats..."
	search.Prompt = "/ "

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	return &chatModel{
		ctrl:     ctrl,
		theme:    theme,
		mode:     themeMode,
		md:       newMarkdownRenderer(72, themeMode),
		viewport: viewport.New(80, 20),
		input:    input,
		search:   search,
		spin:     spin,
	}
}

func (m *chatModel) Init() tea.Cmd {
	m.refreshTranscript()
	return textinput.Blink
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - sidebarWidth(msg.Width) - 2
		m.viewport.Height = msg.Height - 6
		m.md = newMarkdownRenderer(m.viewport.Width-4, m.mode)
		m.refreshTranscript()
		return m, nil

	case themeMsg:
		m.mode = msg.mode
		m.theme = NewTheme(msg.mode)
		m.md = newMarkdownRenderer(m.viewport.Width-4, msg.mode)
		m.refreshTranscript()
		return m, nil

	case sendDoneMsg:
		m.busy = false
		m.input.Focus()
		m.refreshTranscript()
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		return m, nil

	case switchDoneMsg:
		m.busy = false
		m.refreshTranscript()
		return m, nil

	case deleteDoneMsg:
		m.busy = false
		m.refreshTranscript()
		if msg.err != nil {
			m.status = "Failed to delete chat"
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *chatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+n":
		if !m.busy {
			m.ctrl.StartNewChat()
			m.status = ""
			m.refreshTranscript()
		}
		return m, nil
	case "tab":
		if m.focus == focusInput {
			m.focus = focusSessions
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.searching = false
			m.search.Blur()
			m.input.Focus()
		}
		return m, nil
	}

	if m.focus == focusSessions {
		return m.handleSessionKey(msg)
	}

	switch msg.String() {
	case "enter":
		return m.sendCurrent()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatModel) handleSessionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter", "esc":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.cursor = 0
		return m, cmd
	}

	sessions := m.visibleSessions()
	switch msg.String() {
	case "/":
		m.searching = true
		m.search.Focus()
		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(sessions)-1 {
			m.cursor++
		}
	case "enter":
		if m.busy || m.cursor >= len(sessions) {
			return m, nil
		}
		id := sessions[m.cursor].ID
		m.busy = true
		return m, tea.Batch(m.spin.Tick, func() tea.Msg {
			m.ctrl.SwitchTo(context.Background(), id)
			return switchDoneMsg{}
		})
	case "ctrl+d":
		if m.busy || m.cursor >= len(sessions) {
			return m, nil
		}
		id := sessions[m.cursor].ID
		m.busy = true
		return m, tea.Batch(m.spin.Tick, func() tea.Msg {
			return deleteDoneMsg{err: m.ctrl.Delete(context.Background(), id)}
		})
	}
	return m, nil
}

func (m *chatModel) sendCurrent() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" || m.busy {
		return m, nil
	}
	m.input.SetValue("")
	m.input.Blur()
	m.busy = true
	m.status = ""
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		return sendDoneMsg{err: m.ctrl.SendMessage(context.Background(), text)}
	})
}

func (m *chatModel) visibleSessions() []session.Session {
	if m.search.Value() != "" {
		return m.ctrl.Search(m.search.Value())
	}
	return m.ctrl.Sessions()
}

func (m *chatModel) refreshTranscript() {
	var b strings.Builder
	for _, msg := range m.ctrl.Messages() {
		switch msg.Role {
		case "user":
			b.WriteString(m.theme.UserLabel.Render("You"))
			if msg.Status == session.StatusFailed {
				b.WriteString(m.theme.ErrorText.Render("  (not delivered)"))
			} else if msg.Status == session.StatusPending {
				b.WriteString(m.theme.PendingMark.Render("  (sending)"))
			}
			b.WriteString("\n" + msg.Content + "\n\n")
		default:
			b.WriteString(m.theme.AgentLabel.Render(m.ctrl.AgentName()))
			b.WriteString("\n")
			if msg.IsError {
				b.WriteString(m.theme.ErrorText.Render(msg.Content))
			} else {
				b.WriteString(m.md.Render(msg.Content))
			}
			b.WriteString("\n\n")
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// truncateTitle shortens a title to max runes. Titles are arbitrary user
// text, so slicing bytes could split a multibyte character.
func truncateTitle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func sidebarWidth(total int) int {
	w := total / 4
	if w < 24 {
		w = 24
	}
	if w > 40 {
		w = 40
	}
	return w
}

func (m *chatModel) View() string {
	if m.width == 0 {
		return "loading..."
	}

	sidebar := m.renderSidebar()
	chat := m.renderChat()

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", chat)
}

func (m *chatModel) renderSidebar() string {
	width := sidebarWidth(m.width)
	var b strings.Builder

	b.WriteString(m.theme.Header.Render("Chats") + "\n")
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n")
	}

	sessions := m.visibleSessions()
	if len(sessions) == 0 {
		b.WriteString(m.theme.MutedText.Render("No chats yet") + "\n")
	}
	for i, s := range sessions {
		title := s.Title
		if title == "" {
			title = session.DefaultTitle
		}
		title = truncateTitle(title, width-4)
		line := "  " + title
		if s.ID == m.ctrl.ActiveID() {
			line = "• " + title
		}
		if m.focus == focusSessions && i == m.cursor {
			b.WriteString(m.theme.SidebarSel.Render(line))
		} else {
			b.WriteString(m.theme.Sidebar.Render(line))
		}
		if s.Status == session.StatusPending {
			b.WriteString(m.theme.PendingMark.Render(" *"))
		}
		b.WriteString("\n")
		if rel := timeutil.FormatRelativeTime(s.CreatedAt, time.Now()); rel != "" {
			b.WriteString(m.theme.MutedText.Render("    "+rel) + "\n")
		}
	}

	help := m.theme.MutedText.Render("tab focus · ctrl+n new · ctrl+d delete · / search")
	return lipgloss.NewStyle().Width(width).Height(m.height - 2).Render(b.String() + "\n" + help)
}

func (m *chatModel) renderChat() string {
	var parts []string
	parts = append(parts, m.theme.Header.Render(m.ctrl.AgentName()))
	parts = append(parts, m.viewport.View())

	inputLine := m.input.View()
	if m.busy {
		inputLine = m.spin.View() + " thinking..."
	}
	parts = append(parts, m.theme.InputBox.Width(m.viewport.Width).Render(inputLine))

	if m.status != "" {
		parts = append(parts, m.theme.ErrorText.Render(m.status))
	} else {
		parts = append(parts, m.theme.StatusLine.Render(fmt.Sprintf("%d chats", len(m.ctrl.Sessions()))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
