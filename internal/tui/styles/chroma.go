package styles

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/charmbracelet/glamour/v2/ansi"
)

func chromaStyle(style ansi.StylePrimitive) string {
	var s string
	if style.Color != nil {
		s = *style.Color
	}
	if style.BackgroundColor != nil {
		if s != "" {
			s += " "
		}
		s += "bg:" + *style.BackgroundColor
	}
	if style.Italic != nil && *style.Italic {
		if s != "" {
			s += " "
		}
		s += "italic"
	}
	if style.Bold != nil && *style.Bold {
		if s != "" {
			s += " "
		}
		s += "bold"
	}
	if style.Underline != nil && *style.Underline {
		if s != "" {
			s += " "
		}
		s += "underline"
	}
	return s
}

// ChromaTheme exposes a chroma style palette derived from the active theme's
// markdown code block rules.
func ChromaTheme() chroma.StyleEntries {
	t := CurrentTheme()
	rules := t.S().Markdown.CodeBlock

	return chroma.StyleEntries{
		chroma.Text:            chromaStyle(rules.Chroma.Text),
		chroma.Comment:         chromaStyle(rules.Chroma.Comment),
		chroma.Keyword:         chromaStyle(rules.Chroma.Keyword),
		chroma.KeywordType:     chromaStyle(rules.Chroma.KeywordType),
		chroma.Operator:        chromaStyle(rules.Chroma.Operator),
		chroma.Punctuation:     chromaStyle(rules.Chroma.Punctuation),
		chroma.Name:            chromaStyle(rules.Chroma.Name),
		chroma.NameBuiltin:     chromaStyle(rules.Chroma.NameBuiltin),
		chroma.NameFunction:    chromaStyle(rules.Chroma.NameFunction),
		chroma.LiteralNumber:   chromaStyle(rules.Chroma.LiteralNumber),
		chroma.LiteralString:   chromaStyle(rules.Chroma.LiteralString),
		chroma.GenericDeleted:  chromaStyle(rules.Chroma.GenericDeleted),
		chroma.GenericInserted: chromaStyle(rules.Chroma.GenericInserted),
		chroma.GenericStrong:   chromaStyle(rules.Chroma.GenericStrong),
		chroma.Background:      chromaStyle(rules.Chroma.Background),
	}
}
