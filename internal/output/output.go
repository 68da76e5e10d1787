// Package output renders an assembled word array as either raw big-endian
// bytes or a DC.L-style hex listing, per SPEC_FULL.md §4.10. Grounded on the
// reference assembler's two output loops.
package output

import "fmt"

// Binary packs words as big-endian 16-bit values.
func Binary(words []int) []byte {
	out := make([]byte, len(words)*2)
	for i, w := range words {
		out[i*2] = byte((w >> 8) & 0xFF)
		out[i*2+1] = byte(w & 0xFF)
	}
	return out
}

// DCL renders words as "DW 0x____, 0x____, 0x____, 0x____" lines, four
// words per line, with a final short line for any remainder.
func DCL(words []int) string {
	var out string
	full := len(words) / 4
	for i := 0; i < full; i++ {
		w := words[i*4 : i*4+4]
		out += fmt.Sprintf("DW 0x%04x, 0x%04x, 0x%04x, 0x%04x\n", w[0], w[1], w[2], w[3])
	}
	for _, w := range words[full*4:] {
		out += fmt.Sprintf("DW 0x%04x\n", w)
	}
	return out
}
