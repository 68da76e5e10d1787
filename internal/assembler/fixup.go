package assembler

import (
	"fmt"

	"github.com/kestrelvm/kestrelasm/internal/instrset"
	"github.com/kestrelvm/kestrelasm/internal/symtab"
)

// emitImportsAndLibraries appends, to the text section regardless of the
// current section state, one zero-terminated ASCII string per referenced
// library followed by one call-stub per import (a self-relative offset to
// its library's string, logged as a fixup, then the external name string).
// Grounded on the post-loop emission block in the reference assembler.
func (a *Assembler) emitImportsAndLibraries() {
	savedInText := a.inText
	a.inText = true
	defer func() { a.inText = savedInText }()

	for _, lib := range a.st.Libraries() {
		a.resolved["%lib_"+lib] = symtab.Label{Section: symtab.Text, Offset: a.currentOffset()}
		for _, c := range lib {
			a.addWord(int(c))
		}
		a.addWord(0)
	}

	for _, internal := range a.st.ImportsInOrder() {
		imp, _ := a.st.Import(internal)
		fixupPt := a.currentOffset()
		a.resolved[internal] = symtab.Label{Section: symtab.Text, Offset: fixupPt}
		a.refs = append(a.refs, symRef{InText: true, Offset: fixupPt, Symbol: "%lib_" + imp.Library})
		a.addWord((0x10000 - fixupPt) & 0xFFFF)
		for _, c := range imp.External {
			a.addWord(int(c))
		}
		a.addWord(0)
	}
}

// reserveDataLengthWord appends the %data length word (spec.md §4.8) to the
// text section ahead of computeBases, so the word is already accounted for
// in len(a.text) when the data base is derived from it. Doing this after
// computeBases instead would leave dataBase one word short of data's actual
// position in the final image, corrupting every data-section symbol fixup
// and relocation under an object wrapper.
func (a *Assembler) reserveDataLengthWord() {
	if !a.opts.WrapASM {
		return
	}
	a.resolved["%data"] = symtab.Label{Section: symtab.Text, Offset: len(a.text)}
	a.text = append(a.text, len(a.data))
}

// computeBases derives the absolute base address of the text and data
// sections. The object-wrapper header (when present) shifts the text base
// by its own length; data always follows text directly. When PICDefault is
// set, both bases collapse to zero since every reference is resolved
// relative to the loader's runtime placement instead of a fixed address.
func (a *Assembler) computeBases() {
	base := a.orgValue
	if a.opts.WrapASM {
		base += 2 + len([]rune(a.objName)) + 1 // magic word + trie-ptr word + name + NUL
	}
	a.textBase = base
	a.dataBase = base + len(a.text)
	if a.opts.PICDefault {
		a.textBase = 0
		a.dataBase = 0
	}
}

// fixReference resolves one deferred symbol reference, patching the word at
// ref.Offset (and, for a reference that needed one, the API-chooser word two
// words later) in place. Grounded on fix_reference.
func (a *Assembler) fixReference(ref symRef) error {
	lbl, ok := a.resolved[ref.Symbol]
	if !ok {
		return fmt.Errorf("unresolved symbol %q", ref.Symbol)
	}

	var symAddr int
	if lbl.Section == symtab.Text {
		symAddr = lbl.Offset + a.textBase
	} else {
		symAddr = lbl.Offset + a.dataBase
	}

	if ref.NeedsAPI {
		var apiChoice int
		if lbl.Section == symtab.Text || !ref.InText {
			apiChoice = instrset.APIGetRelativeOffset
		} else {
			apiChoice = instrset.APIGetVar
			if a.opts.PICDefault {
				symAddr = symAddr + ref.Offset + 1
			}
		}
		if ref.InText {
			a.text[ref.Offset+2] = apiChoice
		} else {
			a.data[ref.Offset+2] = apiChoice
		}
	}

	if ref.InText {
		a.text[ref.Offset] = (a.text[ref.Offset] + symAddr) & 0xFFFF
		return nil
	}

	a.data[ref.Offset] = (a.data[ref.Offset] + symAddr) & 0xFFFF
	if lbl.Section == symtab.Text {
		a.dataTextRelocs = append(a.dataTextRelocs, ref.Offset)
	} else {
		a.dataDataRelocs = append(a.dataDataRelocs, ref.Offset)
	}
	return nil
}
