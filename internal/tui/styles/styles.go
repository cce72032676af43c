package styles

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/textarea"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/glamour/v2/ansi"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

const defaultListIndent uint = 2

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

// Theme is the app palette.
type Theme struct {
	Name   string
	IsDark bool

	Primary   color.Color
	Secondary color.Color

	BgBase    color.Color
	BgSubtle  color.Color
	BgOverlay color.Color

	FgBase     color.Color
	FgMuted    color.Color
	FgSubtle   color.Color
	FgSelected color.Color

	Border      color.Color
	BorderFocus color.Color

	Success color.Color
	Error   color.Color
	Warning color.Color
	Info    color.Color

	styles *Styles
}

// Styles are common pre-built lipgloss styles.
type Styles struct {
	Base         lipgloss.Style
	SelectedBase lipgloss.Style

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Subtle   lipgloss.Style

	Markdown ansi.StyleConfig

	TextArea textarea.Styles
	Help     help.Styles
}

// S returns lazily-initialized styles tied to the theme colors.
func (t *Theme) S() *Styles {
	if t.styles != nil {
		return t.styles
	}
	base := lipgloss.NewStyle().Foreground(t.FgBase)
	s := &Styles{
		Base:         base,
		SelectedBase: base.Background(t.Primary).Foreground(t.FgSelected),
		Title:        base.Foreground(t.Primary).Bold(true),
		Subtitle:     base.Foreground(t.Secondary).Bold(true),
		Text:         base,
		Muted:        base.Foreground(t.FgMuted),
		Subtle:       base.Foreground(t.FgSubtle),
	}

	s.TextArea = textarea.Styles{
		Focused: textarea.StyleState{
			Base:             base,
			Text:             base,
			LineNumber:       base.Foreground(t.FgSubtle),
			CursorLine:       base,
			CursorLineNumber: base.Foreground(t.FgSubtle),
			Placeholder:      base.Foreground(t.FgSubtle),
			Prompt:           base.Foreground(t.Primary),
		},
		Blurred: textarea.StyleState{
			Base:             base,
			Text:             base.Foreground(t.FgMuted),
			LineNumber:       base.Foreground(t.FgMuted),
			CursorLine:       base,
			CursorLineNumber: base.Foreground(t.FgMuted),
			Placeholder:      base.Foreground(t.FgSubtle),
			Prompt:           base.Foreground(t.FgMuted),
		},
		Cursor: textarea.CursorStyle{
			Color: t.Primary,
			Shape: tea.CursorUnderline,
			Blink: true,
		},
	}

	s.Markdown = markdownConfig()

	s.Help = help.Styles{
		Ellipsis:       base.Foreground(t.FgMuted).SetString("…"),
		ShortKey:       base.Foreground(t.FgMuted),
		ShortDesc:      base.Foreground(t.FgSubtle),
		ShortSeparator: base.Foreground(t.FgMuted).SetString(""),
		FullKey:        base.Foreground(t.FgMuted).Bold(true),
		FullDesc:       base.Foreground(t.FgBase),
		FullSeparator:  base.Foreground(t.FgSubtle).SetString("\n"),
	}

	t.styles = s
	return s
}

func markdownConfig() ansi.StyleConfig {
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(charmtone.Smoke.Hex()),
			},
		},
		BlockQuote: ansi.StyleBlock{
			Indent:      uintPtr(1),
			IndentToken: stringPtr("│ "),
		},
		List: ansi.StyleList{LevelIndent: defaultListIndent},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       stringPtr(charmtone.Malibu.Hex()),
				Bold:        boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color:           stringPtr(charmtone.Zest.Hex()),
				BackgroundColor: stringPtr(charmtone.Charple.Hex()),
				Bold:            boolPtr(true),
			},
		},
		Strikethrough: ansi.StylePrimitive{CrossedOut: boolPtr(true)},
		Emph:          ansi.StylePrimitive{Italic: boolPtr(true)},
		Strong:        ansi.StylePrimitive{Bold: boolPtr(true)},
		HorizontalRule: ansi.StylePrimitive{
			Color:  stringPtr(charmtone.Charcoal.Hex()),
			Format: "\n--------\n",
		},
		Item:        ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration: ansi.StylePrimitive{BlockPrefix: ". "},
		Task: ansi.StyleTask{
			Ticked:   "[✓] ",
			Unticked: "[ ] ",
		},
		Link: ansi.StylePrimitive{
			Color:     stringPtr(charmtone.Zinc.Hex()),
			Underline: boolPtr(true),
		},
		LinkText: ansi.StylePrimitive{
			Color: stringPtr(charmtone.Guac.Hex()),
			Bold:  boolPtr(true),
		},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           stringPtr("#9ad0c2"),
				BackgroundColor: stringPtr("#2a2a2e"),
			},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{
					Color: stringPtr(charmtone.Charcoal.Hex()),
				},
				Margin: uintPtr(defaultListIndent),
			},
			Chroma: &ansi.Chroma{
				Text:            ansi.StylePrimitive{Color: stringPtr(charmtone.Smoke.Hex())},
				Comment:         ansi.StylePrimitive{Color: stringPtr(charmtone.Oyster.Hex())},
				Keyword:         ansi.StylePrimitive{Color: stringPtr(charmtone.Malibu.Hex())},
				KeywordType:     ansi.StylePrimitive{Color: stringPtr(charmtone.Guppy.Hex())},
				Operator:        ansi.StylePrimitive{Color: stringPtr(charmtone.Salmon.Hex())},
				Punctuation:     ansi.StylePrimitive{Color: stringPtr(charmtone.Zest.Hex())},
				Name:            ansi.StylePrimitive{Color: stringPtr(charmtone.Smoke.Hex())},
				NameBuiltin:     ansi.StylePrimitive{Color: stringPtr(charmtone.Cheeky.Hex())},
				NameFunction:    ansi.StylePrimitive{Color: stringPtr(charmtone.Guac.Hex())},
				LiteralNumber:   ansi.StylePrimitive{Color: stringPtr(charmtone.Julep.Hex())},
				LiteralString:   ansi.StylePrimitive{Color: stringPtr(charmtone.Cumin.Hex())},
				GenericDeleted:  ansi.StylePrimitive{Color: stringPtr(charmtone.Coral.Hex())},
				GenericInserted: ansi.StylePrimitive{Color: stringPtr(charmtone.Guac.Hex())},
				GenericStrong:   ansi.StylePrimitive{Bold: boolPtr(true)},
				Background:      ansi.StylePrimitive{BackgroundColor: stringPtr(charmtone.Charcoal.Hex())},
			},
		},
	}
}

// CurrentTheme returns the built-in dark theme.
func CurrentTheme() Theme {
	primary := lipgloss.Color("#9ad0c2")   // seafoam
	secondary := lipgloss.Color("#d7a13c") // amber

	return Theme{
		Name:   "tandem-dark",
		IsDark: true,

		Primary:   primary,
		Secondary: secondary,

		BgBase:    color.RGBA{0x10, 0x10, 0x12, 0xff},
		BgSubtle:  color.RGBA{0x16, 0x16, 0x19, 0xff},
		BgOverlay: color.RGBA{0x0c, 0x0c, 0x0f, 0x99},

		FgBase:     color.RGBA{0xdd, 0xdd, 0xdd, 0xff},
		FgMuted:    color.RGBA{0x7f, 0x7f, 0x7f, 0xff},
		FgSubtle:   color.RGBA{0x58, 0x58, 0x5c, 0xff},
		FgSelected: color.RGBA{0x0b, 0x0b, 0x0d, 0xff},

		Border:      color.RGBA{0x33, 0x33, 0x38, 0xff},
		BorderFocus: primary,

		Success: color.RGBA{0x87, 0xbf, 0x47, 0xff},
		Error:   color.RGBA{0xbf, 0x5d, 0x47, 0xff},
		Warning: color.RGBA{0xff, 0xc1, 0x07, 0xff},
		Info:    color.RGBA{0x64, 0xb5, 0xf6, 0xff},
	}
}

// ApplyBoldForegroundGrad renders text with a foreground gradient, falling
// back to a solid color on terminals without TrueColor.
func ApplyBoldForegroundGrad(text string, from, to color.Color) string {
	rs := []rune(text)
	n := len(rs)
	if n == 0 {
		return ""
	}

	if termenv.ColorProfile() != termenv.TrueColor {
		c1, _ := colorful.MakeColor(from)
		hex := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", uint8(c1.R*255), uint8(c1.G*255), uint8(c1.B*255)))
		return lipgloss.NewStyle().Foreground(hex).Bold(true).Render(text)
	}

	c1, _ := colorful.MakeColor(from)
	c2, _ := colorful.MakeColor(to)
	var out string
	for i, r := range rs {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		c := c1.BlendLab(c2, t)
		hex := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", uint8(c.R*255), uint8(c.G*255), uint8(c.B*255)))
		out += lipgloss.NewStyle().Foreground(hex).Bold(true).Render(string(r))
	}
	return out
}
