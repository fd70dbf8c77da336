package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dsaboost/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

type Command struct {
	Name  string
	Args  string
	Usage string
}

// Commands must stay in sync with the switch in app/model.go executePalette.
var Commands = []Command{
	{Name: "timer:start", Args: "[minutes]", Usage: "study the selected topic"},
	{Name: "timer:pause", Usage: "pause the running session"},
	{Name: "timer:resume", Usage: "resume a paused session"},
	{Name: "timer:stop", Usage: "stop and record the session"},
	{Name: "timer:reset", Usage: "discard the session"},
	{Name: "problems", Args: "<delta>", Usage: "adjust solved problems"},
	{Name: "topic:mark", Usage: "mark a problem solved on the selected topic"},
	{Name: "visit", Args: "<url> [title]", Usage: "record a page visit"},
	{Name: "activity:clear", Usage: "drop finished activity sessions"},
	{Name: "history:refresh", Usage: "reload the history tab"},
}

const maxSuggestions = 5

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	argStyle = lipgloss.NewStyle().Foreground(theme.Lavender)
)

// Palette is a command-palette overlay backed by bubbles/textinput. Tab
// completes the first matching command name.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 256
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette with an empty input and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			if matches := Suggest(p.input.Value()); len(matches) > 0 && !strings.Contains(p.input.Value(), " ") {
				p.input.SetValue(matches[0].Name + " ")
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

// Suggest returns up to five commands whose name starts with the first word
// of input, falling back to names containing it.
func Suggest(input string) []Command {
	word, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(input)), " ")
	var prefixed, contained []Command
	for _, c := range Commands {
		switch {
		case strings.HasPrefix(c.Name, word):
			prefixed = append(prefixed, c)
		case strings.Contains(c.Name, word):
			contained = append(contained, c)
		}
	}
	matches := append(prefixed, contained...)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return matches
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command Palette") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if matches := Suggest(p.input.Value()); len(matches) > 0 {
		sb.WriteString("\n")
		for _, c := range matches {
			line := "  " + c.Name
			if c.Args != "" {
				line += " " + argStyle.Render(c.Args)
			}
			sb.WriteString(line + theme.Muted.Render("  "+c.Usage) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
