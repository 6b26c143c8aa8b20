// Package cli - help.go renders help text to the terminal's width.
//
// Description paragraphs are re-flowed to min(columns-2, 78) so the
// output reads well on narrow terminals without ever growing wider
// than classic man-page prose. Output that is not a terminal falls
// back to an assumed 80 columns.
package cli

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// maxHelpWidth caps help text regardless of how wide the terminal is.
const maxHelpWidth = 78

// fallbackColumns is assumed when the width cannot be determined,
// e.g. when stdout is a pipe.
const fallbackColumns = 80

// helpWidth returns the wrap width for help output.
func helpWidth() int {
	columns, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || columns <= 0 {
		columns = fallbackColumns
	}
	width := columns - 2
	if width > maxHelpWidth {
		width = maxHelpWidth
	}
	return width
}

// wrapText re-flows prose to the given width. Paragraphs separated by
// blank lines survive; line breaks inside a paragraph do not. Words
// longer than the width are emitted unbroken on their own line.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	paragraphs := strings.Split(text, "\n\n")
	wrapped := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		wrapped = append(wrapped, wrapParagraph(p, width))
	}
	return strings.Join(wrapped, "\n\n")
}

// wrapParagraph greedily packs words into lines of at most width runes.
func wrapParagraph(paragraph string, width int) string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			b.WriteString(line)
			b.WriteByte('\n')
			line = word
			continue
		}
		line += " " + word
	}
	b.WriteString(line)
	return b.String()
}
