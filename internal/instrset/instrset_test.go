package instrset_test

import (
	"testing"

	"github.com/kestrelvm/kestrelasm/internal/instrset"
)

func TestLookupCaseInsensitive(t *testing.T) {
	lower, ok := instrset.Lookup("mov")
	if !ok {
		t.Fatal("expected mov to be found")
	}
	upper, ok := instrset.Lookup("MOV")
	if !ok {
		t.Fatal("expected MOV to be found")
	}
	if lower != upper {
		t.Fatalf("case variants should resolve to the same entry: %+v vs %+v", lower, upper)
	}
	if lower.Opcode != 0x01 {
		t.Fatalf("mov opcode = %#x, want 0x01", lower.Opcode)
	}
}

func TestLookupUnknownMnemonic(t *testing.T) {
	if _, ok := instrset.Lookup("frobnicate"); ok {
		t.Fatal("expected an unknown mnemonic to miss")
	}
}

func TestRetProfileAllowsBlankOrImmediate(t *testing.T) {
	e, ok := instrset.Lookup("ret")
	if !ok {
		t.Fatal("expected ret to be found")
	}
	if !e.Src.Blank {
		t.Fatal("ret's source operand must be allowed to be blank")
	}
	if !e.Src.Imm {
		t.Fatal("ret's source operand must accept a bare immediate")
	}
	if e.Src.MemOrReg {
		t.Fatal("ret's source operand must not accept register or memory forms")
	}
}

func TestNopIsFullyBlank(t *testing.T) {
	e, ok := instrset.Lookup("nop")
	if !ok {
		t.Fatal("expected nop to be found")
	}
	if !e.Src.Blank || !e.Dst.Blank {
		t.Fatal("nop takes no operands at all")
	}
}

func TestXchgBothSlotsAreDestStyle(t *testing.T) {
	e, ok := instrset.Lookup("xchg")
	if !ok {
		t.Fatal("expected xchg to be found")
	}
	if e.Src.Imm || e.Dst.Imm {
		t.Fatal("xchg must not accept a bare immediate in either slot")
	}
}
