// Package completion decides what the cursor is in front of and which fixed
// LC-3 vocabulary to offer there.
package completion

import (
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/corymhall/lc3lsp/lsp"
)

// Context is the syntactic situation at the cursor.
type Context int

const (
	Default = Context(iota)
	Directive
	RegisterOperand
	TrapOperand
)

func (c Context) String() string {
	switch c {
	case Directive:
		return "directive"
	case RegisterOperand:
		return "register"
	case TrapOperand:
		return "trap"
	default:
		return "default"
	}
}

// LinePrefix returns the text of line pos.Line before pos.Character.
// Character counts UTF-16 code units and is clamped to the end of the line.
// A line past the end of text yields "".
func LinePrefix(text string, pos lsp.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := strings.TrimSuffix(lines[pos.Line], "\r")

	units := 0
	for i, r := range line {
		n := utf16.RuneLen(r)
		if n < 0 {
			// invalid UTF-8 decodes as U+FFFD, one unit
			n = 1
		}
		if units+n > int(pos.Character) {
			return line[:i]
		}
		units += n
	}
	return line
}

// Classify picks the completion context for the text before the cursor.
// Leading whitespace is ignored and matching is case sensitive.
func Classify(prefix string) Context {
	prefix = strings.TrimLeftFunc(prefix, unicode.IsSpace)
	switch {
	case strings.HasPrefix(prefix, "."):
		return Directive
	case strings.HasSuffix(prefix, "ADD "), strings.HasSuffix(prefix, "AND "):
		return RegisterOperand
	case strings.HasSuffix(prefix, "TRAP "):
		return TrapOperand
	default:
		return Default
	}
}

// Complete returns the completion items for the cursor at pos in text.
func Complete(text string, pos lsp.Position) (Context, []lsp.CompletionItem) {
	ctx := Classify(LinePrefix(text, pos))
	return ctx, Items(ctx)
}
