package assembler

import (
	"strings"

	"github.com/kestrelvm/kestrelasm/internal/asmerr"
	"github.com/kestrelvm/kestrelasm/internal/asmlex"
	"github.com/kestrelvm/kestrelasm/internal/operand"
)

// tryEquate handles "NAME EQU VALUE". Grounded on process_equates.
func (a *Assembler) tryEquate(line string, pos asmerr.Position) (bool, error) {
	fields := asmlex.Fields(line)
	if len(fields) != 3 || !strings.EqualFold(fields[1], "EQU") {
		return false, nil
	}
	value, ok := operand.ParseInt(fields[2])
	if !ok {
		return true, asmerr.NewWithSource(pos, asmerr.KindInvalidDirectiveArg, "invalid EQU value", line)
	}
	return true, a.st.DefineEquate(fields[0], value, pos)
}

// tryExtendedDirective handles pic/name/importlib/import/export. Grounded on
// process_extended_directives; the import-rename fix (actually applying the
// "as NEWNAME" alias instead of discarding it) is documented in DESIGN.md as
// a deliberate deviation from the reference's "==" typo bug.
func (a *Assembler) tryExtendedDirective(line string, pos asmerr.Position) (bool, error) {
	fields := asmlex.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	switch strings.ToLower(fields[0]) {
	case "pic":
		if len(fields) < 2 {
			return true, asmerr.NewWithSource(pos, asmerr.KindInvalidDirectiveArg, "pic requires on/off/default", line)
		}
		switch strings.ToLower(fields[1]) {
		case "on":
			a.picOn = true
		case "off":
			a.picOn = false
		case "default":
			a.picOn = a.opts.PICDefault
		default:
			return true, asmerr.NewWithSource(pos, asmerr.KindInvalidDirectiveArg, "pic requires on/off/default", line)
		}
		return true, nil

	case "name":
		if len(fields) < 2 {
			return true, asmerr.NewWithSource(pos, asmerr.KindInvalidDirectiveArg, "name requires an object name", line)
		}
		if a.objName != "" {
			return true, asmerr.New(pos, asmerr.KindMultipleName, "name directive given more than once")
		}
		a.objName = fields[1]
		return true, nil

	case "importlib":
		if len(fields) < 2 {
			return true, asmerr.NewWithSource(pos, asmerr.KindInvalidDirectiveArg, "importlib requires a library name", line)
		}
		a.curLib = fields[1]
		return true, nil

	case "import":
		if len(fields) < 2 {
			return true, asmerr.NewWithSource(pos, asmerr.KindInvalidDirectiveArg, "import requires a name", line)
		}
		importName := fields[1]
		internal := importName
		if len(fields) == 4 && strings.EqualFold(fields[2], "as") {
			internal = fields[3]
		}
		return true, a.st.DefineImport(internal, a.curLib, importName, pos)

	case "export":
		if len(fields) < 2 {
			return true, asmerr.NewWithSource(pos, asmerr.KindInvalidDirectiveArg, "export requires a name", line)
		}
		name := fields[1]
		external := name
		if len(fields) == 4 && strings.EqualFold(fields[2], "as") {
			external = fields[3]
		}
		return true, a.st.DefineExport(external, name, pos)

	default:
		return false, nil
	}
}

// tryNormalDirective handles org/.text/.data. Grounded on
// process_normal_directives.
func (a *Assembler) tryNormalDirective(line string, pos asmerr.Position) (bool, error) {
	fields := asmlex.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	switch strings.ToLower(fields[0]) {
	case "org":
		if len(fields) < 2 {
			return true, asmerr.NewWithSource(pos, asmerr.KindInvalidDirectiveArg, "org requires a value", line)
		}
		v, ok := operand.ParseInt(fields[1])
		if !ok {
			return true, asmerr.NewWithSource(pos, asmerr.KindInvalidDirectiveArg, "invalid org value", line)
		}
		a.orgValue = v
		a.orgSet = true
		return true, nil
	case ".text":
		a.inText = true
		return true, nil
	case ".data":
		a.inText = false
		a.dataUsed = true
		return true, nil
	default:
		return false, nil
	}
}
