package file

import (
	"testing"

	"github.com/corymhall/lc3lsp/lsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uri = lsp.DocumentURI("file:///prog.asm")

func TestStoreOpen(t *testing.T) {
	s := NewStore()
	s.Open(uri, "ADD R0, R0, #1")
	s.Open(uri, ".ORIG x3000")

	text, ok := s.Get(uri)
	require.True(t, ok)
	assert.Equal(t, ".ORIG x3000", text)
	assert.Equal(t, 1, s.Len())
}

func TestStoreReplace(t *testing.T) {
	t.Run("untracked uri is created", func(t *testing.T) {
		s := NewStore()
		s.Replace(uri, "HALT")
		text, ok := s.Get(uri)
		require.True(t, ok)
		assert.Equal(t, "HALT", text)
	})

	t.Run("replace is idempotent", func(t *testing.T) {
		s := NewStore()
		s.Open(uri, "")
		s.Replace(uri, "TRAP x25")
		s.Replace(uri, "TRAP x25")
		assert.Equal(t, "TRAP x25", s.Text(uri))
		assert.Equal(t, 1, s.Len())
	})
}

func TestStoreMissing(t *testing.T) {
	s := NewStore()
	_, ok := s.Get(uri)
	assert.False(t, ok)
	assert.Equal(t, "", s.Text(uri))
	_, ok = s.Document(uri)
	assert.False(t, ok)
}

func TestStoreApply(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Apply(Modification{URI: uri, Action: Open, Version: 1, Text: "NOT R1, R2", LanguageID: "lc3"}))
	require.NoError(t, s.Apply(Modification{URI: uri, Action: Change, Version: 2, Text: "NOT R1, R3"}))

	doc, ok := s.Document(uri)
	require.True(t, ok)
	assert.Equal(t, Document{URI: uri, Text: "NOT R1, R3", Version: 2, LanguageID: "lc3"}, doc)

	err := s.Apply(Modification{URI: uri, Action: UnknownAction})
	assert.ErrorContains(t, err, "unsupported file action Unknown")
}

func TestStoreURIs(t *testing.T) {
	s := NewStore()
	s.Open("file:///b.asm", "")
	s.Open("file:///a.asm", "")
	s.Replace("file:///c.asm", "")
	assert.Equal(t, []lsp.DocumentURI{"file:///a.asm", "file:///b.asm", "file:///c.asm"}, s.URIs())
}

func TestKindForLang(t *testing.T) {
	assert.Equal(t, Assembly, KindForLang("lc3"))
	assert.Equal(t, UnknownKind, KindForLang("typescript"))
	assert.Equal(t, "lc3", Assembly.String())
}
