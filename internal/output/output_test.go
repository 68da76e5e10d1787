package output_test

import (
	"strings"
	"testing"

	"github.com/kestrelvm/kestrelasm/internal/output"
)

func TestBinaryBigEndianPacking(t *testing.T) {
	got := output.Binary([]int{0xF841, 0x0005})
	want := []byte{0xF8, 0x41, 0x00, 0x05}
	if len(got) != len(want) {
		t.Fatalf("Binary length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Binary[%d] = %#02x, want %#02x", i, got[i], want[i])
		}
	}
}

func TestBinaryEmpty(t *testing.T) {
	got := output.Binary(nil)
	if len(got) != 0 {
		t.Fatalf("Binary(nil) length = %d, want 0", len(got))
	}
}

func TestDCLFullLines(t *testing.T) {
	got := output.DCL([]int{1, 2, 3, 4})
	want := "DW 0x0001, 0x0002, 0x0003, 0x0004\n"
	if got != want {
		t.Fatalf("DCL = %q, want %q", got, want)
	}
}

func TestDCLRemainderLine(t *testing.T) {
	got := output.DCL([]int{1, 2, 3, 4, 5})
	if !strings.HasSuffix(got, "DW 0x0005\n") {
		t.Fatalf("DCL = %q, want a trailing single-word line for the remainder", got)
	}
	if strings.Count(got, "\n") != 2 {
		t.Fatalf("DCL = %q, want exactly 2 lines", got)
	}
}
