// Package inspect implements a terminal browser for an assembled object
// file: a tree of its sections (header, text, data, relocations, export
// trie) beside a detail pane that shows a hex dump of the text or data
// section, or the relocation-offset lists. The export trie's contents and
// the symbol table are not shown; the trie entry gives only the trie's
// offset. It reads an already-assembled
// word array; it never executes anything, since the target CPU has no
// runtime component in this module.
//
// Grounded on the reference debugger's tview Flex-panel layout (a left-hand
// tree/list paired with a right-hand detail pane), adapted from a live
// register/memory view to a static object-file view.
package inspect

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/kestrelvm/kestrelasm/internal/assembler"
)

// ObjectFile is the subset of an assembled program's layout the browser
// needs: the word array plus where its header, text, data, and trie begin.
type ObjectFile struct {
	Words          []int
	Magic          int
	TextOffset     int
	DataOffset     int
	TrieOffset     int
	DataTextRelocs []int
	DataDataRelocs []int
}

// FromLayout builds an ObjectFile from an assembler's result and the layout
// it recorded while building it.
func FromLayout(words []int, l assembler.Layout) ObjectFile {
	return ObjectFile{
		Words:          words,
		Magic:          l.Magic,
		TextOffset:     l.TextOffset,
		DataOffset:     l.DataOffset,
		TrieOffset:     l.TrieOffset,
		DataTextRelocs: l.DataTextRelocs,
		DataDataRelocs: l.DataDataRelocs,
	}
}

// Browser is a tview application showing an ObjectFile's structure.
type Browser struct {
	app  *tview.Application
	obj  ObjectFile
	tree *tview.TreeView
	detail *tview.TextView
}

// NewBrowser builds (but does not yet run) a browser over obj.
func NewBrowser(obj ObjectFile) *Browser {
	b := &Browser{app: tview.NewApplication(), obj: obj}
	b.build()
	return b
}

func (b *Browser) build() {
	root := tview.NewTreeNode("object").SetColor(tcell.ColorYellow)
	b.tree = tview.NewTreeView().SetRoot(root).SetCurrentNode(root)
	b.tree.SetBorder(true).SetTitle(" sections ")

	headerNode := tview.NewTreeNode(fmt.Sprintf("header (magic %#04x)", b.obj.Magic))
	textNode := tview.NewTreeNode(fmt.Sprintf("text (%d words @ %#x)", b.obj.DataOffset-b.obj.TextOffset, b.obj.TextOffset))
	dataEnd := len(b.obj.Words)
	if b.obj.TrieOffset > b.obj.DataOffset {
		// the two 0xFFFF-terminated relocation lists sit between data and trie
		dataEnd = b.obj.TrieOffset - len(b.obj.DataTextRelocs) - len(b.obj.DataDataRelocs) - 2
	}
	dataNode := tview.NewTreeNode(fmt.Sprintf("data (%d words @ %#x)", dataEnd-b.obj.DataOffset, b.obj.DataOffset))
	relocNode := tview.NewTreeNode(fmt.Sprintf("relocations (%d text, %d data)", len(b.obj.DataTextRelocs), len(b.obj.DataDataRelocs)))
	trieNode := tview.NewTreeNode(fmt.Sprintf("export trie @ %#x", b.obj.TrieOffset))

	for _, n := range []*tview.TreeNode{headerNode, textNode, dataNode, relocNode, trieNode} {
		root.AddChild(n)
	}

	b.detail = tview.NewTextView().SetDynamicColors(true)
	b.detail.SetBorder(true).SetTitle(" detail ")

	b.tree.SetSelectedFunc(func(node *tview.TreeNode) {
		b.showDetail(node.GetText())
	})

	flex := tview.NewFlex().
		AddItem(b.tree, 0, 1, true).
		AddItem(b.detail, 0, 2, false)

	b.app.SetRoot(flex, true).SetFocus(b.tree)
}

func (b *Browser) showDetail(label string) {
	switch {
	case hasPrefix(label, "text"):
		b.detail.SetText(hexDump(b.obj.Words[b.obj.TextOffset:b.obj.DataOffset], b.obj.TextOffset))
	case hasPrefix(label, "data"):
		end := len(b.obj.Words)
		if b.obj.TrieOffset > b.obj.DataOffset {
			end = b.obj.TrieOffset - len(b.obj.DataTextRelocs) - len(b.obj.DataDataRelocs) - 2
		}
		b.detail.SetText(hexDump(b.obj.Words[b.obj.DataOffset:end], b.obj.DataOffset))
	case hasPrefix(label, "relocations"):
		b.detail.SetText(relocDump(b.obj.DataTextRelocs, b.obj.DataDataRelocs))
	default:
		b.detail.SetText(label)
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func hexDump(words []int, base int) string {
	var out string
	for i := 0; i < len(words); i += 8 {
		end := i + 8
		if end > len(words) {
			end = len(words)
		}
		out += fmt.Sprintf("0x%04x:", base+i)
		for _, w := range words[i:end] {
			out += fmt.Sprintf(" %04x", w)
		}
		out += "\n"
	}
	return out
}

func relocDump(text, data []int) string {
	out := "[yellow]data->text relocations[-]\n"
	for _, off := range text {
		out += fmt.Sprintf("  0x%04x\n", off)
	}
	out += "[yellow]data->data relocations[-]\n"
	for _, off := range data {
		out += fmt.Sprintf("  0x%04x\n", off)
	}
	return out
}

// Run starts the terminal UI and blocks until the user quits.
func (b *Browser) Run() error {
	return b.app.Run()
}
