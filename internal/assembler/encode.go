package assembler

import (
	"github.com/kestrelvm/kestrelasm/internal/instrset"
	"github.com/kestrelvm/kestrelasm/internal/operand"
)

// assembleOperand packs a decoded operand into its 5-bit mode field.
// Grounded on assemble_operand:
//
//	register direct:        1-8   (register number)
//	[register]:              9-16  (register number + 8)
//	[register+disp]:        17-24  (register number + 16)
//	[imm16] / [symbol]:      0x1E
//	imm16 / symbol:          0x1F
func assembleOperand(op operand.Operand) int {
	if op.HasReg {
		v := op.Reg
		if op.HasPtr {
			v += 8
			if op.HasImm || op.HasSym {
				v += 8
			}
		}
		return v
	}
	if op.HasImm || op.HasSym {
		if op.HasPtr {
			return 0x1E
		}
		return 0x1F
	}
	return 0
}

// validateOperandMode reports whether op is NOT a legal form for profile p.
// Grounded on validate_operand_mode, made fatal rather than a printed,
// ignored warning (SPEC_FULL.md Open Question decision #2).
func validateOperandMode(p instrset.Profile, op operand.Operand) bool {
	if op.HasPtr && p.MemOrReg {
		return false
	}
	if op.HasReg && p.MemOrReg {
		return false
	}
	if ((p.Imm && !op.HasPtr) || (op.HasPtr && p.MemOrReg)) && (op.HasImm || op.HasSym) {
		return false
	}
	if (p.Blank || (!p.MemOrReg && !p.Imm)) && !op.HasPtr && !op.HasReg && !op.HasImm && !op.HasSym {
		return false
	}
	return true
}
