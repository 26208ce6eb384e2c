package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// Theme is the resolved color set for the chat view. Light/dark selection
// comes from config.yaml and can change at runtime via the config watcher.
type Theme struct {
	Accent     lipgloss.Color
	AccentDim  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	ErrorColor lipgloss.Color

	Header      lipgloss.Style
	UserLabel   lipgloss.Style
	AgentLabel  lipgloss.Style
	ErrorText   lipgloss.Style
	MutedText   lipgloss.Style
	InputBox    lipgloss.Style
	Sidebar     lipgloss.Style
	SidebarSel  lipgloss.Style
	StatusLine  lipgloss.Style
	PendingMark lipgloss.Style
}

const accentHex = "#ff4d00"

// NewTheme builds the style set for the given mode ("light" or "dark").
func NewTheme(mode string) Theme {
	t := Theme{
		Accent:     lipgloss.Color(accentHex),
		AccentDim:  lipgloss.Color(dimAccent(accentHex)),
		Foreground: lipgloss.Color("#dddddd"),
		Muted:      lipgloss.Color("#7f7f7f"),
		ErrorColor: lipgloss.Color("#bf5d47"),
	}
	if mode == "light" {
		t.Foreground = lipgloss.Color("#0f172a")
		t.Muted = lipgloss.Color("#64748b")
	}

	t.Header = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	t.UserLabel = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	t.AgentLabel = lipgloss.NewStyle().Foreground(t.AccentDim).Bold(true)
	t.ErrorText = lipgloss.NewStyle().Foreground(t.ErrorColor)
	t.MutedText = lipgloss.NewStyle().Foreground(t.Muted)
	t.InputBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.AccentDim).
		Padding(0, 1)
	t.Sidebar = lipgloss.NewStyle().Foreground(t.Foreground)
	t.SidebarSel = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	t.StatusLine = lipgloss.NewStyle().Foreground(t.Muted)
	t.PendingMark = lipgloss.NewStyle().Foreground(t.Muted).Italic(true)

	return t
}

// dimAccent derives a softer shade of the accent for secondary elements,
// degrading to the raw accent on terminals without truecolor.
func dimAccent(hex string) string {
	if termenv.ColorProfile() != termenv.TrueColor {
		return hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	h, s, l := c.Hsl()
	dimmed := colorful.Hsl(h, s*0.6, min(l+0.18, 0.85))
	return fmt.Sprintf("#%02x%02x%02x", uint8(dimmed.R*255), uint8(dimmed.G*255), uint8(dimmed.B*255))
}
