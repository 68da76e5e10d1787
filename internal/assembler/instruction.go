package assembler

import (
	"strings"

	"github.com/kestrelvm/kestrelasm/internal/asmerr"
	"github.com/kestrelvm/kestrelasm/internal/asmlex"
	"github.com/kestrelvm/kestrelasm/internal/instrset"
	"github.com/kestrelvm/kestrelasm/internal/operand"
	"github.com/kestrelvm/kestrelasm/internal/symtab"
)

// tryInstruction handles one "mnemonic [dst[, src]]" line: decodes both
// operands, expands any symbolic operand into a PIC call sequence when PIC
// is active, validates the resulting operand modes against the instruction's
// table entry, then packs and emits the instruction word followed by its
// inline symbol/immediate tail words. Grounded on process_instructions.
func (a *Assembler) tryInstruction(line string, pos asmerr.Position) (bool, error) {
	mnemonic := asmlex.Mnemonic(line)
	if mnemonic == "" {
		return false, nil
	}
	entry, ok := instrset.Lookup(mnemonic)
	if !ok {
		return false, nil
	}

	rest := strings.TrimSpace(line[len(mnemonic):])
	var dstRaw, srcRaw string
	if rest != "" {
		parts := strings.SplitN(rest, ",", 3)
		switch len(parts) {
		case 1:
			srcRaw = parts[0]
		case 2:
			dstRaw, srcRaw = parts[0], parts[1]
		default:
			return true, asmerr.NewWithSource(pos, asmerr.KindSyntax, "too many operands", line)
		}
	}

	srcOp, err := operand.Decode(srcRaw, a.st, pos)
	if err != nil {
		return true, err
	}
	dstOp, err := operand.Decode(dstRaw, a.st, pos)
	if err != nil {
		return true, err
	}

	srcOp, srcUsedPIC := a.handleSymbolLookup(srcOp, false, false)
	dstOp, dstUsedPIC := a.handleSymbolLookup(dstOp, srcUsedPIC, srcOp.HasPtr)

	// When both operands needed PIC rewriting, dst's rewrite already
	// preserved src's prior D-register result into APIPICTemp; src now
	// reads it back from there instead of D (which dst's own sequence
	// clobbered).
	if srcUsedPIC && dstUsedPIC {
		srcOp = operand.Operand{HasPtr: true, HasImm: true, Imm: instrset.APIPICTemp}
	}

	if validateOperandMode(entry.Src, srcOp) || validateOperandMode(entry.Dst, dstOp) {
		return true, asmerr.NewWithSource(pos, asmerr.KindInvalidOperandMode, "invalid operand mode for "+mnemonic, line)
	}

	word := entry.Opcode | (assembleOperand(srcOp) << 11) | (assembleOperand(dstOp) << 6)
	a.addWord(word)
	a.emitOperandTail(srcOp)
	a.emitOperandTail(dstOp)
	return true, nil
}

// emitOperandTail appends an operand's inline word, if it has one. An
// operand can carry at most one inline word under this instruction set's
// addressing modes: a symbolic operand's fixup slot is seeded with any
// accompanying immediate displacement (so a later fixup's add-in-place
// produces symbol+displacement in the single available word), and a purely
// numeric operand just emits its value directly.
func (a *Assembler) emitOperandTail(op operand.Operand) {
	if op.HasSym {
		a.refs = append(a.refs, symRef{InText: a.inText, Offset: a.currentOffset(), Symbol: op.Sym})
		seed := 0
		if op.HasImm {
			seed = op.Imm
		}
		a.addWord(seed)
		return
	}
	if op.HasImm {
		a.addWord(op.Imm)
	}
}

// handleSymbolLookup expands a symbolic operand into a position-independent
// call sequence that resolves the symbol's address into D at runtime, then
// returns the rewritten operand (now addressing D, or [D] if the original
// was itself a pointer) plus whether a rewrite happened. Non-symbolic
// operands, and all operands when PIC is off, pass through unchanged.
//
// prevUsedPIC/prevHasPtr describe the instruction's other operand (src, when
// called for dst): if it also used PIC, D currently holds its result and
// must be preserved to APIPICTemp before D is reused for this operand's
// lookup. Grounded on handle_symbol_lookup; SPEC_FULL.md §4.5 makes the
// preservation step conditional on the *previous operand actually having
// used PIC*, correcting a reference-assembler bug where the equivalent
// check was always true regardless.
func (a *Assembler) handleSymbolLookup(op operand.Operand, prevUsedPIC, prevHasPtr bool) (operand.Operand, bool) {
	if !a.picOn || !op.HasSym {
		return op, false
	}

	if prevUsedPIC {
		if prevHasPtr {
			a.addWord(0x6781) // mov [APIPICTemp], [d]
		} else {
			a.addWord(0x2781) // mov [APIPICTemp], d
		}
		a.addWord(instrset.APIPICTemp)
	}

	a.addWord(0xF901) // mov d, <self-relative offset, patched below>
	fixupPt := a.currentOffset()
	a.addWord((0x10000 - (fixupPt + 1)) & 0xFFFF)
	a.addWord(0xF015) // call [imm16]

	if _, isImport := a.st.Import(op.Sym); isImport {
		a.refs = append(a.refs, symRef{InText: a.inText, Offset: fixupPt, Symbol: op.Sym, NeedsAPI: false})
		a.addWord(instrset.APIGetSymbol)
	} else {
		a.refs = append(a.refs, symRef{InText: a.inText, Offset: fixupPt, Symbol: op.Sym, NeedsAPI: true})
		a.addWord(0)
	}

	dReg, _ := symtab.RegisterNumber("d")
	if op.HasPtr {
		if op.HasReg {
			a.addWord(0x0102 | (op.Reg << 11)) // add d, <reg>
		}
		return operand.Operand{HasPtr: true, HasReg: true, Reg: dReg}, true
	}
	return operand.Operand{HasReg: true, Reg: dReg}, true
}
