// Package highlight renders source snippets with chroma using the app
// theme.
package highlight

import (
	"bytes"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"tandem/internal/tui/styles"
)

// SyntaxHighlight colorizes source for terminal display. fileName guides
// lexer choice; the style background is cleared so the snippet sits on the
// app background.
func SyntaxHighlight(source, fileName string) (string, error) {
	lexer := lexers.Match(fileName)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	style := chroma.MustNewStyle("tandem", styles.ChromaTheme())
	builtStyle, err := style.Builder().Transform(func(entry chroma.StyleEntry) chroma.StyleEntry {
		entry.Background = 0
		return entry
	}).Build()
	if err != nil {
		builtStyle = chromaStyles.Fallback
	}

	tokens, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, builtStyle, tokens); err != nil {
		return "", err
	}
	return buf.String(), nil
}
