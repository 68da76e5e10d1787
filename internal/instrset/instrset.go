// Package instrset holds the target CPU's fixed instruction table: one
// (opcode, srcProfile, dstProfile) entry per mnemonic, reproduced bit-exactly
// from the reference assembler.
package instrset

import "strings"

// Profile describes which operand forms a slot accepts.
//
//	MemOrReg: register or memory (direct/indirect) is acceptable
//	Imm:      a bare immediate is acceptable
//	Blank:    an absent operand is acceptable
//
// A slot with none of the three set accepts only an absent operand.
type Profile struct {
	MemOrReg bool
	Imm      bool
	Blank    bool
}

var (
	// SSrc accepts register/memory/immediate; must be present.
	SSrc = Profile{MemOrReg: true, Imm: true}
	// SDst accepts register/memory, not a bare immediate; must be present.
	SDst = Profile{MemOrReg: true}
	// SNon requires the operand to be absent.
	SNon = Profile{Blank: true}
	// SRet is ret's idiosyncratic profile: its sole operand is optional,
	// and when present it must be an immediate, never a register or memory
	// form. See SPEC_FULL.md §4.
	SRet = Profile{MemOrReg: false, Imm: true, Blank: true}
)

// Entry is one instruction table row.
type Entry struct {
	Opcode int
	Src    Profile
	Dst    Profile
}

// table is keyed by lower-case mnemonic; opcodes and profiles are
// reproduced exactly from the original assembler's normal_instructions map.
var table = map[string]Entry{
	"add":   {0x02, SSrc, SDst},
	"and":   {0x04, SSrc, SDst},
	"brk":   {0x00, SNon, SNon},
	"call":  {0x15, SSrc, SNon},
	"cmp":   {0x0C, SSrc, SDst},
	"dec":   {0x04, SDst, SNon},
	"div":   {0x18, SSrc, SNon},
	"hwi":   {0x09, SSrc, SNon},
	"hwq":   {0x1C, SSrc, SNon},
	"inc":   {0x2A, SDst, SNon},
	"ja":    {0x2E, SSrc, SNon},
	"jc":    {0x21, SSrc, SNon},
	"jg":    {0x0F, SSrc, SNon},
	"jge":   {0x10, SSrc, SNon},
	"jl":    {0x11, SSrc, SNon},
	"jle":   {0x12, SSrc, SNon},
	"jmp":   {0x0A, SSrc, SNon},
	"jna":   {0x2F, SSrc, SNon},
	"jnc":   {0x22, SSrc, SNon},
	"jno":   {0x25, SSrc, SNon},
	"jns":   {0x1B, SSrc, SNon},
	"jnz":   {0x0D, SSrc, SNon},
	"jo":    {0x24, SSrc, SNon},
	"js":    {0x1A, SSrc, SNon},
	"jz":    {0x0E, SSrc, SNon},
	"mov":   {0x01, SSrc, SDst},
	"mul":   {0x17, SSrc, SNon},
	"neg":   {0x19, SDst, SNon},
	"nop":   {0x3F, SNon, SNon},
	"not":   {0x1D, SDst, SNon},
	"or":    {0x05, SSrc, SDst},
	"pop":   {0x14, SDst, SNon},
	"popf":  {0x2C, SNon, SNon},
	"push":  {0x13, SSrc, SNon},
	"pushf": {0x2D, SNon, SNon},
	"rcl":   {0x27, SSrc, SDst},
	"rcr":   {0x28, SSrc, SDst},
	"ret":   {0x16, SRet, SNon},
	"rol":   {0x23, SSrc, SDst},
	"ror":   {0x20, SSrc, SDst},
	"sal":   {0x06, SSrc, SDst},
	"sar":   {0x29, SSrc, SDst},
	"shl":   {0x06, SSrc, SDst},
	"shr":   {0x07, SSrc, SDst},
	"sub":   {0x03, SSrc, SDst},
	"test":  {0x0B, SSrc, SDst},
	"xchg":  {0x1F, SDst, SDst},
	"xor":   {0x0C, SSrc, SDst},
}

// Lookup returns an instruction's table entry, case-insensitive.
func Lookup(mnemonic string) (Entry, bool) {
	e, ok := table[strings.ToLower(mnemonic)]
	return e, ok
}

// Well-known runtime API constants, stored in call-target slots by the PIC
// expansion and patched by the fixup pass.
const (
	APIGetMyAddress     = 0x0001
	APIGetRelativeOffset = 0x0002
	APIPrepareTable     = 0x0003
	APIGetTableValue    = 0x0004
	APIRestoreOldTable  = 0x0005
	APIGetSymbol        = 0x0006
	APIGetVar           = 0x0007
	APIPICTemp          = 0x001B
)
