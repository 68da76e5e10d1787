package symtab_test

import (
	"testing"

	"github.com/kestrelvm/kestrelasm/internal/asmerr"
	"github.com/kestrelvm/kestrelasm/internal/symtab"
)

var pos = asmerr.Position{Filename: "t.asm", Line: 1}

func TestRegisterNumbers(t *testing.T) {
	cases := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4, "x": 5, "y": 6, "sp": 7, "bp": 8}
	for name, want := range cases {
		if !symtab.IsRegister(name) {
			t.Fatalf("%q should be a register", name)
		}
		got, ok := symtab.RegisterNumber(name)
		if !ok || got != want {
			t.Fatalf("RegisterNumber(%q) = %d,%v want %d,true", name, got, ok, want)
		}
	}
	if symtab.IsRegister("z") {
		t.Fatal(`"z" must not be a register`)
	}
}

func TestDuplicateLabelAcrossNamespaces(t *testing.T) {
	st := symtab.New()
	if err := st.DefineLabel("foo", symtab.Text, 0, pos); err != nil {
		t.Fatalf("first definition of foo failed: %v", err)
	}
	if err := st.DefineEquate("foo", 5, pos); err == nil {
		t.Fatal("expected a duplicate-symbol error when foo collides with an equate")
	}
}

func TestImportLibraryOrderIsFirstSeen(t *testing.T) {
	st := symtab.New()
	must(t, st.DefineImport("f1", "libA", "f1", pos))
	must(t, st.DefineImport("f2", "libB", "f2", pos))
	must(t, st.DefineImport("f3", "libA", "f3", pos))

	libs := st.Libraries()
	if len(libs) != 2 || libs[0] != "libA" || libs[1] != "libB" {
		t.Fatalf("Libraries() = %v, want [libA libB]", libs)
	}

	order := st.ImportsInOrder()
	want := []string{"f1", "f2", "f3"}
	if len(order) != len(want) {
		t.Fatalf("ImportsInOrder() = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("ImportsInOrder()[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestExportsInOrderPreservesDeclarationOrder(t *testing.T) {
	st := symtab.New()
	must(t, st.DefineLabel("start", symtab.Text, 0, pos))
	must(t, st.DefineLabel("helper", symtab.Text, 3, pos))
	must(t, st.DefineExport("MAIN", "start", pos))
	must(t, st.DefineExport("HELP", "helper", pos))

	entries := st.ExportsInOrder()
	if len(entries) != 2 {
		t.Fatalf("expected 2 export entries, got %d", len(entries))
	}
	if entries[0].External != "MAIN" || entries[0].Internal != "start" {
		t.Fatalf("entries[0] = %+v, want {MAIN start}", entries[0])
	}
	if entries[1].External != "HELP" || entries[1].Internal != "helper" {
		t.Fatalf("entries[1] = %+v, want {HELP helper}", entries[1])
	}
}

func TestDuplicateExportIsRejected(t *testing.T) {
	st := symtab.New()
	must(t, st.DefineLabel("start", symtab.Text, 0, pos))
	must(t, st.DefineExport("MAIN", "start", pos))
	if err := st.DefineExport("MAIN", "start", pos); err == nil {
		t.Fatal("expected a duplicate-symbol error for a repeated export name")
	}
}

func TestExportingLabelUnderItsOwnNameDoesNotCollide(t *testing.T) {
	st := symtab.New()
	must(t, st.DefineLabel("start", symtab.Text, 0, pos))
	if err := st.DefineExport("start", "start", pos); err != nil {
		t.Fatalf("exporting a label under its own name should not collide: %v", err)
	}

	st2 := symtab.New()
	must(t, st2.DefineExport("start", "start", pos))
	if err := st2.DefineLabel("start", symtab.Text, 0, pos); err != nil {
		t.Fatalf("defining a label that was already exported under the same name should not collide: %v", err)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
