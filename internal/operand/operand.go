// Package operand decodes assembly operand syntax into the 4-tuple the
// encoder needs: an optional memory-indirect flag plus at most one of
// register / immediate / symbol on the base, with a register allowed to
// combine with an immediate or symbol displacement inside brackets.
package operand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrelvm/kestrelasm/internal/asmerr"
	"github.com/kestrelvm/kestrelasm/internal/symtab"
)

// Operand is the decoded form of one instruction argument.
type Operand struct {
	HasPtr bool // [...] memory-indirect
	HasReg bool
	Reg    int // 1-8, register encoding number
	HasImm bool
	Imm    int // masked to 16 bits by the caller when emitted
	HasSym bool
	Sym    string // equate is resolved immediately; this is import/label only
}

// IsSymbolic reports whether this operand still needs symbol resolution
// (i.e. it is a candidate for PIC rewriting).
func (o Operand) IsSymbolic() bool {
	return o.HasSym
}

type atom struct {
	isReg bool
	reg   int
	isImm bool
	imm   int
	isSym bool
	sym   string
}

// parseInt implements Python's int(x, base=0) auto-base semantics: 0x/0X,
// 0o/0O, 0b/0B prefixes, otherwise decimal, with an optional leading sign.
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	var v int64
	var err error
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0x"):
		v, err = strconv.ParseInt(s[2:], 16, 64)
	case strings.HasPrefix(lower, "0o"):
		v, err = strconv.ParseInt(s[2:], 8, 64)
	case strings.HasPrefix(lower, "0b"):
		v, err = strconv.ParseInt(s[2:], 2, 64)
	default:
		v, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return int(v), true
}

// ParseInt exposes the operand package's literal parser for directives (DW
// arguments, EQU values, org) that accept the same numeric syntax.
func ParseInt(s string) (int, bool) {
	return parseInt(s)
}

func decodeAtom(tok string, st *symtab.SymbolTable) atom {
	tok = strings.TrimSpace(tok)
	if symtab.IsRegister(strings.ToLower(tok)) {
		n, _ := symtab.RegisterNumber(strings.ToLower(tok))
		return atom{isReg: true, reg: n}
	}
	if v, ok := st.Equate(tok); ok {
		return atom{isImm: true, imm: v}
	}
	if _, ok := st.Import(tok); ok {
		return atom{isSym: true, sym: tok}
	}
	if v, ok := parseInt(tok); ok {
		return atom{isImm: true, imm: v}
	}
	return atom{isSym: true, sym: tok}
}

// findSplit locates the operator splitting a bracket's inner content into
// two additive terms: the first '+', or else the first '-' that is not a
// leading sign.
func findSplit(s string) (idx int, op byte) {
	if i := strings.IndexByte(s, '+'); i >= 0 {
		return i, '+'
	}
	if i := strings.IndexByte(s, '-'); i > 0 {
		return i, '-'
	}
	return -1, 0
}

// Decode parses one operand string (already comma-split and trimmed).
func Decode(raw string, st *symtab.SymbolTable, pos asmerr.Position) (Operand, error) {
	tok := strings.TrimSpace(raw)
	if tok == "" {
		return Operand{}, nil
	}
	if len(tok) >= 2 && tok[0] == '[' && tok[len(tok)-1] == ']' {
		inner := tok[1 : len(tok)-1]
		op := Operand{HasPtr: true}
		idx, opChar := findSplit(inner)
		if idx < 0 {
			a := decodeAtom(inner, st)
			applyAtom(&op, a)
			return op, nil
		}
		left := decodeAtom(inner[:idx], st)
		right := decodeAtom(inner[idx+1:], st)
		if left.isReg && right.isReg {
			return Operand{}, asmerr.New(pos, asmerr.KindInvalidOperand, "two registers used in one operand")
		}
		if opChar == '-' && right.isReg {
			return Operand{}, asmerr.New(pos, asmerr.KindInvalidOperand, "register cannot be subtracted")
		}
		if opChar == '-' && right.isImm {
			right.imm = (0x10000 - right.imm) & 0xFFFF
		}
		if left.isReg {
			op.HasReg, op.Reg = true, left.reg
		}
		if right.isReg {
			op.HasReg, op.Reg = true, right.reg
		}
		sum := 0
		hasImm := false
		if left.isImm && !left.isReg {
			sum += left.imm
			hasImm = true
		}
		if right.isImm && !right.isReg {
			sum += right.imm
			hasImm = true
		}
		if hasImm {
			op.HasImm, op.Imm = true, sum&0xFFFF
		}
		if left.isSym {
			op.HasSym, op.Sym = true, left.sym
		}
		if right.isSym {
			op.HasSym, op.Sym = true, right.sym
		}
		return op, nil
	}
	a := decodeAtom(tok, st)
	op := Operand{}
	applyAtom(&op, a)
	return op, nil
}

func applyAtom(op *Operand, a atom) {
	switch {
	case a.isReg:
		op.HasReg, op.Reg = true, a.reg
	case a.isImm:
		op.HasImm, op.Imm = true, a.imm
	case a.isSym:
		op.HasSym, op.Sym = true, a.sym
	}
}

// String renders an operand for diagnostics.
func (o Operand) String() string {
	var sb strings.Builder
	if o.HasPtr {
		sb.WriteByte('[')
	}
	wrote := false
	if o.HasReg {
		fmt.Fprintf(&sb, "r%d", o.Reg)
		wrote = true
	}
	if o.HasSym {
		if wrote {
			sb.WriteByte('+')
		}
		sb.WriteString(o.Sym)
		wrote = true
	}
	if o.HasImm {
		if wrote {
			sb.WriteByte('+')
		}
		fmt.Fprintf(&sb, "%#x", o.Imm)
	}
	if o.HasPtr {
		sb.WriteByte(']')
	}
	return sb.String()
}
