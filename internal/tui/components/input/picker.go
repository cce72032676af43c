package input

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"tandem/internal/commands"
	"tandem/internal/tui/styles"
)

// commandPicker is the slash-command dropdown anchored above the textarea.
type commandPicker struct {
	open     bool
	all      []commands.Command
	filtered []commands.Command
	selected int
	maxWidth int
}

func (p *commandPicker) Open(items []commands.Command, maxWidth int) {
	p.open = true
	p.all = items
	p.filtered = items
	p.selected = 0
	p.maxWidth = maxWidth
}

func (p *commandPicker) Close() {
	p.open = false
	p.filtered = nil
	p.selected = 0
}

func (p *commandPicker) IsOpen() bool { return p.open }

func (p *commandPicker) IsActive() bool { return p.open && len(p.filtered) > 0 }

func (p *commandPicker) SetMaxWidth(w int) { p.maxWidth = w }

// Filter narrows the list to commands whose name contains q (sans slash).
func (p *commandPicker) Filter(q string) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		p.filtered = p.all
		p.clampSelection()
		return
	}
	filtered := make([]commands.Command, 0, len(p.all))
	for _, c := range p.all {
		name := strings.ToLower(strings.TrimPrefix(c.Name, "/"))
		if strings.Contains(name, q) {
			filtered = append(filtered, c)
		}
	}
	p.filtered = filtered
	p.clampSelection()
}

func (p *commandPicker) clampSelection() {
	if p.selected >= len(p.filtered) {
		p.selected = 0
	}
}

func (p *commandPicker) MoveNext() {
	if len(p.filtered) == 0 {
		return
	}
	p.selected = (p.selected + 1) % len(p.filtered)
}

func (p *commandPicker) MovePrev() {
	if len(p.filtered) == 0 {
		return
	}
	p.selected = (p.selected - 1 + len(p.filtered)) % len(p.filtered)
}

func (p *commandPicker) Selected() (commands.Command, bool) {
	if !p.IsActive() {
		return commands.Command{}, false
	}
	return p.filtered[p.selected], true
}

func (p *commandPicker) Height() int {
	if !p.IsActive() {
		return 0
	}
	return len(p.filtered) + 2
}

func (p *commandPicker) View() string {
	if !p.IsActive() {
		return ""
	}
	t := styles.CurrentTheme()
	rows := make([]string, len(p.filtered))
	for i, c := range p.filtered {
		name := c.Name
		if c.RequiresArgument {
			hint := c.ArgumentHint
			if hint == "" {
				hint = "arg"
			}
			name += " <" + hint + ">"
		}
		nameStyle := lipgloss.NewStyle().Foreground(t.FgBase)
		descStyle := lipgloss.NewStyle().Foreground(t.FgMuted)
		prefix := "  "
		if i == p.selected {
			prefix = lipgloss.NewStyle().Foreground(t.Primary).Render("❯ ")
			nameStyle = nameStyle.Foreground(t.Primary).Bold(true)
		}
		rows[i] = prefix + nameStyle.Render(name) + descStyle.Render("  "+c.Description)
	}
	box := t.S().Base.
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	if p.maxWidth > 4 {
		box = box.MaxWidth(p.maxWidth)
	}
	return box.Render(strings.Join(rows, "\n"))
}
