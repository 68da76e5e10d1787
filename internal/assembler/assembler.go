// Package assembler orchestrates the full two-pass pipeline: a single linear
// pass over source lines that builds the symbol table and emits words (with
// PIC call sequences expanded inline and a deferred fixup record logged for
// every symbolic reference), followed by import-stub/library emission,
// sentinel padding, the fixup pass proper, and final object assembly.
//
// The pipeline is grounded directly on the reference assembler's single
// module-level script (see original_source/assembler.py); the split into
// files here (directives/dw/instruction/fixup/object) mirrors the way the
// reference encoder package in this repo's teacher splits one concern per
// file within a single package, rather than one package per concern.
package assembler

import (
	"strings"

	"github.com/kestrelvm/kestrelasm/internal/asmerr"
	"github.com/kestrelvm/kestrelasm/internal/asmlex"
	"github.com/kestrelvm/kestrelasm/internal/symtab"
)

// Options configures a single assembly run. These mirror the CLI flags in
// SPEC_FULL.md §6.1.
type Options struct {
	// PICDefault is the program-wide PIC default (on unless --pdc is given).
	// It also governs the base-address policy: when true, both the text and
	// data bases are treated as zero (the loader relocates at load time).
	PICDefault bool
	// WrapASM selects the object-wrapper output; false selects raw_asm
	// (flat text-then-data, no header, no trie, no relocation tables).
	WrapASM bool
	// OrgDefault is the base text address used when no org directive
	// appears in the source (0x200 per SPEC_FULL.md §2.1).
	OrgDefault int
}

// symRef is a deferred fixup: a word in text[] or data[] that still needs a
// resolved symbol address added into it once every label is known.
type symRef struct {
	InText   bool // section the *reference* lives in, not the symbol
	Offset   int
	Symbol   string
	NeedsAPI bool // word at Offset+2 must be patched with an API chooser
}

// Assembler holds all mutable state for one source file's assembly.
type Assembler struct {
	opts Options

	text []int
	data []int

	inText bool
	picOn  bool

	st *symtab.SymbolTable

	objName string
	curLib  string

	refs []symRef

	// resolved is the unified "everything with an address" table: user
	// labels (mirrored here as they're defined), import stub addresses,
	// %lib_<name> string addresses, and the %data length-word address.
	// Kept separate from symtab.SymbolTable because the latter only tracks
	// user-declared names subject to duplicate-definition checking.
	resolved map[string]symtab.Label

	lastUsedText int
	lastUsedData int
	dataUsed     bool // whether .data or any data-section emit has ever happened

	orgSet   bool
	orgValue int

	textBase int
	dataBase int

	dataTextRelocs []int
	dataDataRelocs []int

	layout Layout

	errs asmerr.List
}

// New creates an assembler ready to process source lines.
func New(opts Options) *Assembler {
	if opts.OrgDefault == 0 {
		opts.OrgDefault = 0x200
	}
	return &Assembler{
		opts:     opts,
		inText:   true,
		picOn:    opts.PICDefault,
		st:       symtab.New(),
		resolved: make(map[string]symtab.Label),
		orgValue: opts.OrgDefault,
	}
}

func (a *Assembler) addWord(w int) {
	w &= 0xFFFF
	if a.inText {
		a.text = append(a.text, w)
	} else {
		a.dataUsed = true
		a.data = append(a.data, w)
	}
}

func (a *Assembler) currentOffset() int {
	if a.inText {
		return len(a.text)
	}
	return len(a.data)
}

func (a *Assembler) currentSection() symtab.Section {
	if a.inText {
		return symtab.Text
	}
	return symtab.Data
}

func (a *Assembler) setLastUsedOffset() {
	if a.inText {
		a.lastUsedText = len(a.text)
	} else {
		a.lastUsedData = len(a.data)
	}
}

// defineLabel records a label both in the symbol table (for duplicate
// checking and visibility to exports) and in the resolved table (for fixup).
func (a *Assembler) defineLabel(name string, pos asmerr.Position) error {
	sec := a.currentSection()
	off := a.currentOffset()
	if err := a.st.DefineLabel(name, sec, off, pos); err != nil {
		return err
	}
	a.resolved[name] = symtab.Label{Section: sec, Offset: off}
	return nil
}

// Assemble runs the full pipeline over src and returns the final word array
// (big-endian packing and DCL rendering are the output package's job).
func (a *Assembler) Assemble(src, filename string) ([]int, error) {
	lines := strings.Split(src, "\n")
	for i, raw := range lines {
		pos := asmerr.Position{Filename: filename, Line: i + 1}
		if err := a.processLine(raw, pos); err != nil {
			return nil, err
		}
	}

	a.emitImportsAndLibraries()
	a.padSentinels()
	a.reserveDataLengthWord()
	a.computeBases()

	for _, ref := range a.refs {
		if err := a.fixReference(ref); err != nil {
			return nil, err
		}
	}

	return a.buildFinal()
}

// processLine classifies and handles a single (not yet comment-stripped)
// source line, mirroring parse_line's dispatch order: label, DW, equate,
// extended directive, normal directive, instruction.
func (a *Assembler) processLine(raw string, pos asmerr.Position) error {
	line := asmlex.StripComment(raw)
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if label, rest, ok := asmlex.SplitLabel(line); ok {
		a.setLastUsedOffset()
		name := label[:len(label)-1]
		if err := a.defineLabel(name, pos); err != nil {
			return err
		}
		line = strings.TrimSpace(rest)
		if line == "" {
			return nil
		}
	}

	if handled, err := a.tryDW(line, pos); handled {
		return err
	}
	if handled, err := a.tryEquate(line, pos); handled {
		return err
	}
	if handled, err := a.tryExtendedDirective(line, pos); handled {
		return err
	}
	if handled, err := a.tryNormalDirective(line, pos); handled {
		return err
	}
	if handled, err := a.tryInstruction(line, pos); handled {
		return err
	}

	return asmerr.NewWithSource(pos, asmerr.KindSyntax, "unrecognized line", raw)
}

// padSentinels appends a zero word to a section that ends exactly where its
// last label left it, so a label placed at end-of-file (or right before a
// section switch) still resolves to a valid, allocated word rather than one
// past the end of the array. A data section that was never entered is left
// empty rather than manufactured out of nothing.
func (a *Assembler) padSentinels() {
	if a.lastUsedText == len(a.text) {
		a.text = append(a.text, 0)
	}
	if a.dataUsed && a.lastUsedData == len(a.data) {
		a.data = append(a.data, 0)
	}
}
