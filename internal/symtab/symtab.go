// Package symtab implements the assembler's symbol table: labels, equates,
// and imports share one flat name space for conflict detection (spec.md
// §4.2's resolution invariant covers exactly that trio, plus registers).
// Exports are a separate alias namespace layered on top of it — an external
// name mapping to one of those internal symbols — so exporting a symbol
// under its own name never collides with the symbol itself.
package symtab

import (
	"fmt"

	"github.com/kestrelvm/kestrelasm/internal/asmerr"
)

// Section identifies which word array a label lives in.
type Section int

const (
	Text Section = iota
	Data
)

func (s Section) String() string {
	if s == Text {
		return "text"
	}
	return "data"
}

// Kind identifies which of the four namespaces a symbol belongs to.
type Kind int

const (
	KindLabel Kind = iota
	KindEquate
	KindImport
	KindExport
)

func (k Kind) String() string {
	switch k {
	case KindLabel:
		return "label"
	case KindEquate:
		return "equate"
	case KindImport:
		return "import"
	case KindExport:
		return "export"
	default:
		return "symbol"
	}
}

// Label holds a label's resolved (section, offset).
type Label struct {
	Section Section
	Offset  int
}

// Import holds an import's library and external name. Internal name is the
// map key in SymbolTable.imports.
type Import struct {
	Library  string
	External string
}

// Export maps an externally visible name to the internal symbol it resolves
// to. External name is the map key in SymbolTable.exports.
type Export struct {
	Internal string
}

// SymbolTable is the single source of truth for names during assembly: a
// flat name space (for duplicate detection across labels, equates, and
// imports) backing three typed lookups, plus a separate exports namespace.
type SymbolTable struct {
	names   map[string]Kind // flat space: every defined label/equate/import, by kind
	labels  map[string]Label
	equates map[string]int
	imports map[string]Import
	exports map[string]Export // separate namespace; not mirrored into names

	// libraries preserves first-seen import-library order, per spec.md §3.
	libraries   []string
	seenLibrary map[string]bool

	// importOrder/exportOrder preserve declaration order so the import-stub
	// emitter and export trie builder iterate deterministically.
	importOrder []string
	exportOrder []string
}

// New creates an empty symbol table.
func New() *SymbolTable {
	return &SymbolTable{
		names:       make(map[string]Kind),
		labels:      make(map[string]Label),
		equates:     make(map[string]int),
		imports:     make(map[string]Import),
		exports:     make(map[string]Export),
		seenLibrary: make(map[string]bool),
	}
}

// checkFree reports a duplicate-definition error if name is already taken in
// the flat label/equate/import name space (exports are not checked here).
func (st *SymbolTable) checkFree(name string, pos asmerr.Position) error {
	if existingKind, ok := st.names[name]; ok {
		return asmerr.New(pos, asmerr.KindDuplicateSymbol,
			fmt.Sprintf("%s '%s' defined twice", existingKind, name))
	}
	return nil
}

// DefineLabel records a label at the current emit cursor.
func (st *SymbolTable) DefineLabel(name string, section Section, offset int, pos asmerr.Position) error {
	if err := st.checkFree(name, pos); err != nil {
		return err
	}
	st.names[name] = KindLabel
	st.labels[name] = Label{Section: section, Offset: offset}
	return nil
}

// DefineEquate records a name/value pair from an EQU directive.
func (st *SymbolTable) DefineEquate(name string, value int, pos asmerr.Position) error {
	if err := st.checkFree(name, pos); err != nil {
		return err
	}
	st.names[name] = KindEquate
	st.equates[name] = value
	return nil
}

// DefineImport records an import under the given internal name. library must
// already have been set via importlib.
func (st *SymbolTable) DefineImport(internal, library, external string, pos asmerr.Position) error {
	if err := st.checkFree(internal, pos); err != nil {
		return err
	}
	st.names[internal] = KindImport
	st.imports[internal] = Import{Library: library, External: external}
	st.importOrder = append(st.importOrder, internal)
	if !st.seenLibrary[library] {
		st.seenLibrary[library] = true
		st.libraries = append(st.libraries, library)
	}
	return nil
}

// DefineExport records an externally-visible name mapping to an internal
// symbol (a label or import). Exports are an external alias namespace, not
// part of the flat resolvable name space (spec.md §4.2's resolution
// invariant covers only {label, equate, import, register}), so a label or
// import may be exported under its own name without colliding with itself;
// duplicates are only checked against prior exports.
func (st *SymbolTable) DefineExport(external, internal string, pos asmerr.Position) error {
	if _, ok := st.exports[external]; ok {
		return asmerr.New(pos, asmerr.KindDuplicateSymbol,
			fmt.Sprintf("export '%s' defined twice", external))
	}
	st.exports[external] = Export{Internal: internal}
	st.exportOrder = append(st.exportOrder, external)
	return nil
}

// Lookup reports whether name is defined anywhere and, if so, which kind.
func (st *SymbolTable) Lookup(name string) (Kind, bool) {
	k, ok := st.names[name]
	return k, ok
}

// Equate returns an equate's value.
func (st *SymbolTable) Equate(name string) (int, bool) {
	v, ok := st.equates[name]
	return v, ok
}

// Import returns an import's (library, external) pair.
func (st *SymbolTable) Import(name string) (Import, bool) {
	v, ok := st.imports[name]
	return v, ok
}

// Label returns a label's (section, offset).
func (st *SymbolTable) Label(name string) (Label, bool) {
	v, ok := st.labels[name]
	return v, ok
}

// Exports returns the export table.
func (st *SymbolTable) Exports() map[string]Export {
	return st.exports
}

// ExportEntry pairs an externally-visible name with the internal symbol it
// resolves to, for deterministic iteration.
type ExportEntry struct {
	External string
	Internal string
}

// ExportsInOrder returns (external, internal) pairs in declaration order.
func (st *SymbolTable) ExportsInOrder() []ExportEntry {
	out := make([]ExportEntry, 0, len(st.exportOrder))
	for _, ext := range st.exportOrder {
		out = append(out, ExportEntry{External: ext, Internal: st.exports[ext].Internal})
	}
	return out
}

// ImportsInOrder returns internal import names in declaration order.
func (st *SymbolTable) ImportsInOrder() []string {
	return st.importOrder
}

// Libraries returns import libraries in first-seen order.
func (st *SymbolTable) Libraries() []string {
	return st.libraries
}

// IsRegister reports whether name is one of the target's eight registers.
func IsRegister(name string) bool {
	switch name {
	case "a", "b", "c", "d", "x", "y", "sp", "bp":
		return true
	default:
		return false
	}
}

// RegisterNumber returns a register's 1-based encoding index (a=1 .. bp=8).
func RegisterNumber(name string) (int, bool) {
	switch name {
	case "a":
		return 1, true
	case "b":
		return 2, true
	case "c":
		return 3, true
	case "d":
		return 4, true
	case "x":
		return 5, true
	case "y":
		return 6, true
	case "sp":
		return 7, true
	case "bp":
		return 8, true
	default:
		return 0, false
	}
}
