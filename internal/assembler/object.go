package assembler

import (
	"fmt"

	"github.com/kestrelvm/kestrelasm/internal/objfile"
	"github.com/kestrelvm/kestrelasm/internal/symtab"
)

const objMagic = 0xCB07

// objTrieOffsetSlot is the word index of the placeholder that gets patched
// with a self-relative pointer to the export trie's root, once the trie's
// position is known. Grounded on obj_export_struct_ptr_offset.
const objTrieOffsetSlot = 1

// Layout records where each section of the final word array begins, for
// tools (internal/inspect) that want to browse an assembled result without
// reverse-parsing the raw word stream.
type Layout struct {
	Magic          int
	ObjName        string
	TextOffset     int
	DataOffset     int
	TrieOffset     int // 0 when WrapASM is false (no trie is emitted)
	DataTextRelocs []int
	DataDataRelocs []int
}

// Layout returns the most recent Assemble call's section layout.
func (a *Assembler) Layout() Layout {
	return a.layout
}

// buildFinal assembles the header (when wrapping), the concatenated
// text/data arrays (text already carries the %data length word, reserved by
// reserveDataLengthWord ahead of the fixup pass), the relocation-offset
// lists, and the export trie into one final word array. Grounded on the
// final assembly block and the Trie/form_trie algorithm in the reference
// assembler.
func (a *Assembler) buildFinal() ([]int, error) {
	var final []int

	if a.opts.WrapASM {
		final = append(final, objMagic, 0xFFFF)
		for _, c := range a.objName {
			final = append(final, int(c))
		}
		final = append(final, 0)
	}

	textOffsetInFinal := len(final)
	final = append(final, a.text...)
	dataOffsetInFinal := len(final)
	final = append(final, a.data...)

	a.layout = Layout{
		Magic:          objMagic,
		ObjName:        a.objName,
		TextOffset:     textOffsetInFinal,
		DataOffset:     dataOffsetInFinal,
		DataTextRelocs: a.dataTextRelocs,
		DataDataRelocs: a.dataDataRelocs,
	}

	if !a.opts.WrapASM {
		return final, nil
	}

	final = append(final, a.dataTextRelocs...)
	final = append(final, 0xFFFF)
	final = append(final, a.dataDataRelocs...)
	final = append(final, 0xFFFF)

	final[objTrieOffsetSlot] = (len(final) - objTrieOffsetSlot) & 0xFFFF
	a.layout.TrieOffset = final[objTrieOffsetSlot] + objTrieOffsetSlot

	root := objfile.NewNode()
	if err := root.Add("%data", "%data"); err != nil {
		return nil, err
	}
	for _, exp := range a.st.ExportsInOrder() {
		if err := root.Add(exp.External, exp.Internal); err != nil {
			return nil, err
		}
	}

	resolve := func(symbol string) (int, error) {
		lbl, ok := a.resolved[symbol]
		if !ok {
			return 0, fmt.Errorf("export references undefined symbol %q", symbol)
		}
		if lbl.Section == symtab.Text {
			return lbl.Offset + textOffsetInFinal, nil
		}
		return lbl.Offset + dataOffsetInFinal, nil
	}
	if _, err := objfile.Serialize(&final, root, false, resolve); err != nil {
		return nil, err
	}

	return final, nil
}
