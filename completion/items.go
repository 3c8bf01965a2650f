package completion

import (
	"fmt"

	"github.com/corymhall/lc3lsp/lsp"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

type entry struct {
	label  string
	detail string
}

var opcodes = []entry{
	{"ADD", "Add two values"},
	{"AND", "Bitwise AND"},
	{"BR", "Branch unconditionally"},
	{"BRn", "Branch if negative"},
	{"BRz", "Branch if zero"},
	{"BRp", "Branch if positive"},
	{"BRnz", "Branch if negative or zero"},
	{"BRnp", "Branch if negative or positive"},
	{"BRzp", "Branch if zero or positive"},
	{"BRnzp", "Branch unconditionally"},
	{"JMP", "Jump to address"},
	{"JSR", "Jump to subroutine"},
	{"JSRR", "Jump to subroutine (register)"},
	{"LD", "Load from PC-relative address"},
	{"LDI", "Load indirect"},
	{"LDR", "Load base+offset"},
	{"LEA", "Load effective address"},
	{"NOT", "Bitwise NOT"},
	{"RET", "Return from subroutine"},
	{"RTI", "Return from interrupt"},
	{"ST", "Store to PC-relative address"},
	{"STI", "Store indirect"},
	{"STR", "Store base+offset"},
	{"TRAP", "System call"},
}

var directives = []entry{
	{".ORIG", "Set program origin address"},
	{".END", "End of program"},
	{".FILL", "Fill memory location with value"},
	{".BLKW", "Allocate block of words"},
	{".STRINGZ", "Null-terminated string"},
}

type trap struct {
	name   string
	vector string
	desc   string
}

var traps = []trap{
	{"GETC", "x20", "Read single character (no echo)"},
	{"OUT", "x21", "Output character in R0"},
	{"PUTS", "x22", "Output null-terminated string"},
	{"IN", "x23", "Read character with echo and prompt"},
	{"PUTSP", "x24", "Output packed string"},
	{"HALT", "x25", "Halt program execution"},
}

const registerCount = 8

// Items returns a fresh list of completion items for ctx.
func Items(ctx Context) []lsp.CompletionItem {
	switch ctx {
	case Directive:
		return keywords(directives)
	case RegisterOperand:
		return registers()
	case TrapOperand:
		return trapItems()
	case Default:
		return append(keywords(opcodes), keywords(directives)...)
	default:
		contract.Failf("unknown completion context %d", int(ctx))
		return nil
	}
}

func keywords(entries []entry) []lsp.CompletionItem {
	items := make([]lsp.CompletionItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, lsp.CompletionItem{
			Label:  e.label,
			Kind:   lsp.CompletionItemKindKeyword,
			Detail: e.detail,
		})
	}
	return items
}

func registers() []lsp.CompletionItem {
	items := make([]lsp.CompletionItem, 0, registerCount)
	for i := range registerCount {
		items = append(items, lsp.CompletionItem{
			Label:  fmt.Sprintf("R%d", i),
			Kind:   lsp.CompletionItemKindVariable,
			Detail: fmt.Sprintf("General purpose register %d", i),
		})
	}
	return items
}

func trapItems() []lsp.CompletionItem {
	items := make([]lsp.CompletionItem, 0, len(traps))
	for _, t := range traps {
		items = append(items, lsp.CompletionItem{
			Label:  t.name,
			Kind:   lsp.CompletionItemKindConstant,
			Detail: fmt.Sprintf("%s - %s", t.vector, t.desc),
		})
	}
	return items
}
