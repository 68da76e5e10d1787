package assembler_test

import (
	"testing"

	"github.com/kestrelvm/kestrelasm/internal/assembler"
	"github.com/kestrelvm/kestrelasm/internal/output"
)

func assembleRaw(t *testing.T, src string, pic bool) []int {
	t.Helper()
	opts := assembler.Options{PICDefault: pic, WrapASM: false, OrgDefault: 0x200}
	asm := assembler.New(opts)
	words, err := asm.Assemble(src, "test.asm")
	if err != nil {
		t.Fatalf("Assemble(%q) returned error: %v", src, err)
	}
	return words
}

func wordsEqual(t *testing.T, got, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("word count mismatch: got %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("word[%d] = %#04x, want %#04x (full: got %#v, want %#v)", i, got[i], want[i], got, want)
		}
	}
}

// S1 — empty program, raw asm: one sentinel zero word.
func TestEmptyProgramSentinel(t *testing.T) {
	words := assembleRaw(t, "", false)
	wordsEqual(t, words, []int{0})
}

// S2 — nop: single instruction word, no sentinel since the section did not
// end on an untouched label.
func TestNop(t *testing.T) {
	words := assembleRaw(t, "nop\n", false)
	wordsEqual(t, words, []int{0x3F})
}

// S3 — mov a, 5.
func TestMovRegImmediate(t *testing.T) {
	words := assembleRaw(t, "mov a, 5\n", false)
	wordsEqual(t, words, []int{0xF841, 0x0005})
	bin := output.Binary(words)
	want := []byte{0xF8, 0x41, 0x00, 0x05}
	for i := range want {
		if bin[i] != want[i] {
			t.Fatalf("byte[%d] = %#02x, want %#02x", i, bin[i], want[i])
		}
	}
}

// S4 — label and jmp, PIC off, default org.
func TestJmpToOwnLabelNoPIC(t *testing.T) {
	words := assembleRaw(t, "start: jmp start\n", false)
	wordsEqual(t, words, []int{0xF80A, 0x0200})
}

// S6 — DW mixed content: a string, a literal, and a DUP expression.
func TestDWMixed(t *testing.T) {
	src := "myeq EQU 0xFF\n" + `dw "Hi", 0x0A, 3 (equ 0xFF)` + "\n"
	words := assembleRaw(t, src, false)
	wordsEqual(t, words, []int{0x48, 0x69, 0x0A, 0xFF, 0xFF, 0xFF})
}

func TestDuplicateLabelIsFatal(t *testing.T) {
	opts := assembler.Options{WrapASM: false, OrgDefault: 0x200}
	asm := assembler.New(opts)
	_, err := asm.Assemble("a: nop\na: nop\n", "dup.asm")
	if err == nil {
		t.Fatal("expected an error for a duplicate label, got nil")
	}
}

func TestInvalidOperandModeIsFatal(t *testing.T) {
	opts := assembler.Options{WrapASM: false, OrgDefault: 0x200}
	asm := assembler.New(opts)
	// ret only accepts a bare immediate or no operand; a register is invalid.
	_, err := asm.Assemble("ret a\n", "bad.asm")
	if err == nil {
		t.Fatal("expected an error for an invalid operand mode, got nil")
	}
}

// PIC on, single import: the PIC call sequence should reference
// APIGetSymbol (0x0006) as its call target for an imported symbol.
func TestImportPICUsesAPIGetSymbol(t *testing.T) {
	src := "importlib mylib\nimport foo\nmov a, foo\n"
	opts := assembler.Options{PICDefault: true, WrapASM: true, OrgDefault: 0x200}
	asm := assembler.New(opts)
	words, err := asm.Assemble(src, "pic.asm")
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if words[0] != 0xCB07 {
		t.Fatalf("expected object magic 0xCB07 at word 0, got %#04x", words[0])
	}
	found := false
	for _, w := range words {
		if w == 0x0006 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected APIGetSymbol (0x0006) call target somewhere in the output")
	}
}

func TestRawASMHasNoHeaderOrTrie(t *testing.T) {
	words := assembleRaw(t, "mov a, 1\n", false)
	if words[0] == 0xCB07 {
		t.Fatal("raw_asm output must not start with the object magic")
	}
}

// Under an object wrapper, the %data length word reserved in the text
// section must be accounted for before the data base address is derived,
// or every fixup into the data section (and every reference from data back
// into text) lands one word short of where the loader will actually find
// it. Non-PIC so the bases are concrete absolute addresses to check against.
func TestDataBaseAccountsForDataLengthWord(t *testing.T) {
	opts := assembler.Options{PICDefault: false, WrapASM: true, OrgDefault: 0x200}
	asm := assembler.New(opts)
	words, err := asm.Assemble("mov a, val\n.data\nval: dw 0\n", "database.asm")
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	// Header is magic + trie-offset placeholder + empty obj name + NUL = 3
	// words, so text starts at final index 3. "mov a, val" encodes as the
	// instruction word followed by val's fixed-up address, i.e. text[1].
	textStart := 3
	gotAddr := words[textStart+1]

	// text = [instr, val-ref, %data-length] -> 3 words. textBase = org
	// (0x200) + header size (3) = 0x203. dataBase must include all 3 text
	// words, including the %data length word: 0x203 + 3 = 0x206.
	wantAddr := 0x206
	if gotAddr != wantAddr {
		t.Fatalf("fixed-up address of data label 'val' = %#04x, want %#04x (dataBase must follow the %%data length word)", gotAddr, wantAddr)
	}
}
