package file

import (
	"fmt"
	"slices"

	"github.com/corymhall/lc3lsp/lsp"
)

// Document is the last full text received for a URI.
type Document struct {
	URI        lsp.DocumentURI
	Text       string
	Version    int32
	LanguageID lsp.LanguageKind
}

// Store maps URIs to the full text of open documents.
// It is not safe for concurrent use; the dispatch loop owns it.
type Store struct {
	docs map[lsp.DocumentURI]*Document
}

func NewStore() *Store {
	return &Store{docs: make(map[lsp.DocumentURI]*Document)}
}

// Open records text as the content of uri, replacing any previous entry.
func (s *Store) Open(uri lsp.DocumentURI, text string) {
	s.docs[uri] = &Document{URI: uri, Text: text}
}

// Replace sets the content of uri. An untracked uri is created.
func (s *Store) Replace(uri lsp.DocumentURI, text string) {
	doc, ok := s.docs[uri]
	if !ok {
		s.docs[uri] = &Document{URI: uri, Text: text}
		return
	}
	doc.Text = text
}

// Get returns the text stored for uri.
func (s *Store) Get(uri lsp.DocumentURI) (string, bool) {
	doc, ok := s.docs[uri]
	if !ok {
		return "", false
	}
	return doc.Text, true
}

// Text returns the text stored for uri, or "" when uri is not tracked.
func (s *Store) Text(uri lsp.DocumentURI) string {
	text, _ := s.Get(uri)
	return text
}

// Document returns a copy of the entry for uri.
func (s *Store) Document(uri lsp.DocumentURI) (Document, bool) {
	doc, ok := s.docs[uri]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// Apply routes a modification to Open or Replace and records its metadata.
func (s *Store) Apply(mod Modification) error {
	switch mod.Action {
	case Open:
		s.Open(mod.URI, mod.Text)
		doc := s.docs[mod.URI]
		doc.Version = mod.Version
		doc.LanguageID = mod.LanguageID
	case Change:
		s.Replace(mod.URI, mod.Text)
		s.docs[mod.URI].Version = mod.Version
	default:
		return fmt.Errorf("unsupported file action %s for %s", mod.Action, mod.URI)
	}
	return nil
}

// Len is the number of tracked documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// URIs returns the tracked URIs in sorted order.
func (s *Store) URIs() []lsp.DocumentURI {
	uris := make([]lsp.DocumentURI, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	slices.Sort(uris)
	return uris
}
