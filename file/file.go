package file

import (
	"github.com/corymhall/lc3lsp/lsp"
)

// Modification represents a modification to a file.
type Modification struct {
	URI    lsp.DocumentURI
	Action Action

	// Version is advisory; the store never uses it to reject a change.
	Version int32
	Text    string

	// LanguageID is only sent from the language client on textDocument/didOpen.
	LanguageID lsp.LanguageKind
}

// An Action is a type of file state change.
type Action int

const (
	UnknownAction = Action(iota)
	Open
	Change
)

func (a Action) String() string {
	switch a {
	case Open:
		return "Open"
	case Change:
		return "Change"
	default:
		return "Unknown"
	}
}
