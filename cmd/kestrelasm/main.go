// Command kestrelasm assembles kestrel16 source into either a raw binary
// image or an object file wrapper, per SPEC_FULL.md §6.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kestrelvm/kestrelasm/internal/api"
	"github.com/kestrelvm/kestrelasm/internal/assembler"
	"github.com/kestrelvm/kestrelasm/internal/config"
	"github.com/kestrelvm/kestrelasm/internal/inspect"
	"github.com/kestrelvm/kestrelasm/internal/output"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "inspect":
			os.Exit(runInspect(os.Args[2:]))
		case "serve":
			os.Exit(runServe(os.Args[2:]))
		}
	}
	os.Exit(run(os.Args[1:]))
}

// runServe starts the assemble-as-a-service HTTP+WebSocket API.
func runServe(args []string) int {
	fs := flag.NewFlagSet("kestrelasm serve", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrelasm: %v\n", err)
		return 1
	}

	srv := api.NewServer(cfg.API.Port)
	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "kestrelasm: %v\n", err)
		return 1
	}
	return 0
}

// runInspect re-assembles source (in memory, never writing the result to
// disk) and opens the terminal object-file browser over it.
func runInspect(args []string) int {
	fs := flag.NewFlagSet("kestrelasm inspect", flag.ContinueOnError)
	pdc := fs.Bool("pdc", false, "disable PIC by default (position-dependent code)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: kestrelasm inspect [-pdc] <source.asm>")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrelasm: %v\n", err)
		return 1
	}

	src, err := os.ReadFile(fs.Arg(0)) // #nosec G304 -- user-supplied source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrelasm: %v\n", err)
		fmt.Fprintln(os.Stderr, "usage: kestrelasm inspect [-pdc] <source.asm>")
		return 2
	}

	opts := assembler.Options{
		PICDefault: cfg.Assemble.PICDefault && !*pdc,
		WrapASM:    true, // the trie/relocation views only make sense for object output
		OrgDefault: cfg.Assemble.OrgDefault,
	}
	asm := assembler.New(opts)
	words, err := asm.Assemble(string(src), filepath.Base(fs.Arg(0)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrelasm: %v\n", err)
		return 1
	}

	browser := inspect.NewBrowser(inspect.FromLayout(words, asm.Layout()))
	if err := browser.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "kestrelasm: %v\n", err)
		return 1
	}
	return 0
}

func run(args []string) int {
	fs := flag.NewFlagSet("kestrelasm", flag.ContinueOnError)
	pdc := fs.Bool("pdc", false, "disable PIC by default (position-dependent code)")
	dcl := fs.Bool("dcl", false, "emit a DC.L hex listing instead of a raw binary")
	rawASM := fs.Bool("raw_asm", false, "emit a flat text+data image instead of an object wrapper")
	out := fs.String("o", "", "output file (default: input name with .bin/.dcl/.obj extension)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: kestrelasm [flags] <source.asm>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrelasm: %v\n", err)
		return 1
	}

	srcPath := fs.Arg(0)
	src, err := os.ReadFile(srcPath) // #nosec G304 -- user-supplied source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrelasm: %v\n", err)
		fs.Usage()
		return 2
	}

	opts := assembler.Options{
		PICDefault: cfg.Assemble.PICDefault && !*pdc,
		WrapASM:    cfg.Assemble.WrapASM && !*rawASM,
		OrgDefault: cfg.Assemble.OrgDefault,
	}
	asm := assembler.New(opts)
	words, err := asm.Assemble(string(src), filepath.Base(srcPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrelasm: %v\n", err)
		return 1
	}

	outPath := *out
	if outPath == "" {
		outPath = defaultOutputPath(srcPath, *dcl, opts.WrapASM)
	}

	var data []byte
	if *dcl {
		data = []byte(output.DCL(words))
	} else {
		data = output.Binary(words)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil { // #nosec G306 -- assembler output is not sensitive
		fmt.Fprintf(os.Stderr, "kestrelasm: %v\n", err)
		return 1
	}

	return 0
}

func defaultOutputPath(srcPath string, dcl, wrapASM bool) string {
	base := strings.TrimSuffix(srcPath, filepath.Ext(srcPath))
	switch {
	case dcl:
		return base + ".dcl"
	case wrapASM:
		return base + ".obj"
	default:
		return base + ".bin"
	}
}
