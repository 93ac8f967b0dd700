package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"studylog/internal/ui/theme"
)

// PaletteSubmitMsg carries the confirmed input line.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is sent when the palette is dismissed with esc.
type PaletteCancelMsg struct{}

const (
	maxHints   = 6
	maxHistory = 20
)

var (
	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = theme.Muted
)

// Palette is a one-line command prompt with usage hints and a recall history
// (up/down). The caller owns the command grammar; the palette only collects
// lines.
type Palette struct {
	input   textinput.Model
	hints   []string
	history []string
	recall  int
	visible bool
	width   int
}

func NewPalette(hints ...string) Palette {
	ti := textinput.New()
	ti.Placeholder = "command…"
	ti.CharLimit = 256
	ti.Prompt = ": "
	return Palette{input: ti, hints: hints}
}

func (p Palette) Visible() bool { return p.visible }

func (p *Palette) Open() tea.Cmd {
	return p.OpenWith("")
}

// OpenWith shows the palette with prefix already typed.
func (p *Palette) OpenWith(prefix string) tea.Cmd {
	p.visible = true
	p.recall = len(p.history)
	p.input.SetValue(prefix)
	p.input.CursorEnd()
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p *Palette) remember(line string) {
	if line == "" || (len(p.history) > 0 && p.history[len(p.history)-1] == line) {
		return
	}
	p.history = append(p.history, line)
	if len(p.history) > maxHistory {
		p.history = p.history[1:]
	}
}

func (p *Palette) step(delta int) {
	next := p.recall + delta
	switch {
	case next < 0 || len(p.history) == 0:
		return
	case next >= len(p.history):
		p.recall = len(p.history)
		p.input.SetValue("")
	default:
		p.recall = next
		p.input.SetValue(p.history[next])
		p.input.CursorEnd()
	}
}

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
			line := strings.TrimSpace(p.input.Value())
			p.remember(line)
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: line} }
		case "up":
			p.step(-1)
			return p, nil
		case "down":
			p.step(1)
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// matchingHints returns the hints whose command word starts with the first
// word typed so far.
func (p Palette) matchingHints() []string {
	typed := strings.Fields(strings.ToLower(p.input.Value()))
	out := make([]string, 0, maxHints)
	for _, hint := range p.hints {
		if len(typed) > 0 && !strings.HasPrefix(strings.Fields(hint)[0], typed[0]) {
			continue
		}
		out = append(out, hint)
		if len(out) == maxHints {
			break
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	lines := []string{theme.Title.Render("Command"), p.input.View()}
	if hints := p.matchingHints(); len(hints) > 0 {
		lines = append(lines, "")
		for _, hint := range hints {
			lines = append(lines, hintStyle.Render("  "+hint))
		}
	}
	w := p.width
	if w < 20 {
		w = 64
	}
	return frameStyle.Width(w - 2).Render(strings.Join(lines, "\n"))
}
