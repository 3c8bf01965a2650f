package file

import (
	"fmt"

	"github.com/corymhall/lc3lsp/lsp"
)

// Kind describes the kind of the file in question.
type Kind int

const (
	// UnknownKind is a file type we don't know about.
	UnknownKind = Kind(iota)

	// Assembly is an LC-3 assembly source file.
	Assembly
)

func (k Kind) String() string {
	switch k {
	case Assembly:
		return "lc3"
	default:
		return fmt.Sprintf("internal error: unknown file kind %d", k)
	}
}

// KindForLang returns the file [Kind] associated with the given LSP
// LanguageKind string from the LanguageID field of [lsp.TextDocumentItem],
// or UnknownKind if the language is not LC-3 assembly.
func KindForLang(langID lsp.LanguageKind) Kind {
	switch langID {
	case "lc3", "lc3asm", "lc-3":
		return Assembly
	default:
		return UnknownKind
	}
}
