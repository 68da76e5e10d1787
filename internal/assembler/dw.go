package assembler

import (
	"strings"

	"github.com/kestrelvm/kestrelasm/internal/asmerr"
	"github.com/kestrelvm/kestrelasm/internal/asmlex"
	"github.com/kestrelvm/kestrelasm/internal/operand"
)

// tryDW handles the DW pseudo-op: a comma-separated list of quoted strings
// (emitted one word per character), "N (EQU value)" DUP expressions, or
// plain numeric/equate/label items. Grounded on process_dw/process_dw_arg.
func (a *Assembler) tryDW(line string, pos asmerr.Position) (bool, error) {
	if len(line) < 2 {
		return false, nil
	}
	if !strings.EqualFold(line[:2], "dw") {
		return false, nil
	}
	if len(line) > 2 && line[2] != ' ' && line[2] != '\t' {
		return false, nil // e.g. a label like "dwarf", not the DW mnemonic
	}
	for _, arg := range asmlex.SplitDWArgs(strings.TrimSpace(line[2:])) {
		if err := a.processDWArg(strings.TrimSpace(arg), pos, line); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (a *Assembler) processDWArg(arg string, pos asmerr.Position, source string) error {
	if len(arg) >= 2 && arg[0] == '"' && arg[len(arg)-1] == '"' {
		for _, c := range arg[1 : len(arg)-1] {
			a.addWord(int(c))
		}
		return nil
	}

	if strings.HasSuffix(arg, ")") {
		return a.processDupArg(arg, pos, source)
	}

	if v, ok := a.st.Equate(arg); ok {
		a.addWord(v)
		return nil
	}
	if _, ok := a.st.Import(arg); ok {
		return asmerr.NewWithSource(pos, asmerr.KindEquateContainsImport, "DW cannot reference an imported symbol", source)
	}
	if v, ok := operand.ParseInt(arg); ok {
		a.addWord(v)
		return nil
	}

	a.refs = append(a.refs, symRef{InText: a.inText, Offset: a.currentOffset(), Symbol: arg})
	a.addWord(0)
	return nil
}

// processDupArg handles "COUNT (EQU VALUE)": repeat VALUE COUNT times.
func (a *Assembler) processDupArg(arg string, pos asmerr.Position, source string) error {
	inner := arg[:len(arg)-1]
	open := strings.IndexByte(inner, '(')
	if open < 0 {
		return asmerr.NewWithSource(pos, asmerr.KindInvalidDirectiveArg, "malformed DUP expression", source)
	}
	countStr := strings.TrimSpace(inner[:open])
	body := asmlex.Fields(strings.TrimSpace(inner[open+1:]))
	if len(body) < 2 || !strings.EqualFold(body[0], "equ") {
		return asmerr.NewWithSource(pos, asmerr.KindInvalidDirectiveArg, "DUP expression must be \"N (EQU value)\"", source)
	}
	count, ok := operand.ParseInt(countStr)
	if !ok {
		return asmerr.NewWithSource(pos, asmerr.KindInvalidDirectiveArg, "invalid DUP count", source)
	}
	value := strings.Join(body[1:], " ")
	for i := 0; i < count; i++ {
		if err := a.processDWArg(value, pos, source); err != nil {
			return err
		}
	}
	return nil
}
