// Command ysetl is the reference driver for the compiler and VM
// (SPEC_FULL.md §4.12): it reads a JSON-encoded AST, compiles it, consults
// the optional program cache, runs it on the VM, and prints the result. It
// is convenience tooling around the spec'd core, not part of the compiler
// or VM contract themselves, grounded on the teacher's cmd/sentra/main.go
// in spirit (a single command dispatching into the library packages) but
// using the standard flag package rather than the teacher's hand-rolled
// os.Args/alias-map parsing, since this driver has no subcommands to alias.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"ysetl/internal/ast"
	"ysetl/internal/bytecode"
	"ysetl/internal/compiler"
	"ysetl/internal/irdump"
	"ysetl/internal/store"
	"ysetl/internal/trace"
	"ysetl/internal/vm"

	"flag"
	"net/http"
)

func main() {
	astPath := flag.String("ast", "", "path to a JSON-encoded AST program (required)")
	cacheDSN := flag.String("cache", "", "program cache DSN (sqlite://, postgres://, mysql://, sqlserver://); empty disables caching")
	traceAddr := flag.String("trace", "", "address to serve a websocket execution trace on, e.g. :8089")
	dumpLLVM := flag.String("dump-llvm", "", "path to write a best-effort LLVM IR dump of the compiled program")
	verbose := flag.Bool("v", false, "print humanized execution stats and full error stack traces")
	flag.Parse()

	if err := run(*astPath, *cacheDSN, *traceAddr, *dumpLLVM, *verbose); err != nil {
		if *verbose {
			fmt.Fprintf(os.Stderr, "ysetl: %+v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "ysetl: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(astPath, cacheDSN, traceAddr, dumpLLVM string, verbose bool) error {
	if astPath == "" {
		flag.Usage()
		return errors.New("-ast is required")
	}

	data, err := os.ReadFile(astPath)
	if err != nil {
		return errors.Wrapf(err, "reading %s", astPath)
	}
	prog, err := ParseProgram(data)
	if err != nil {
		return err
	}

	var cache *store.Cache
	if cacheDSN != "" {
		cache, err = store.Open(cacheDSN)
		if err != nil {
			return err
		}
		defer cache.Close()
	}

	compiled, err := compileOrFetch(prog, cache)
	if err != nil {
		return err
	}

	if dumpLLVM != "" {
		if err := os.WriteFile(dumpLLVM, []byte(irdump.Dump(compiled)), 0644); err != nil {
			return errors.Wrapf(err, "writing LLVM dump to %s", dumpLLVM)
		}
	}

	machine := vm.New(compiled)

	if traceAddr != "" {
		srv := trace.NewServer()
		machine.Tracer = srv
		httpSrv := &http.Server{Addr: traceAddr, Handler: srv}
		go httpSrv.ListenAndServe()
		defer httpSrv.Close()
	}

	if verbose {
		if isatty.IsTerminal(os.Stderr.Fd()) {
			fmt.Fprintln(os.Stderr, "--- disassembly ---")
		}
		fmt.Fprint(os.Stderr, bytecode.Disassemble(compiled))
	}

	result, err := machine.Run()
	if err != nil {
		return err
	}

	fmt.Println(result.String())

	if verbose {
		fmt.Fprintf(os.Stderr, "instructions: %s, calls: %s, max depth: %d\n",
			humanize.Comma(int64(machine.Stats.Instructions)),
			humanize.Comma(int64(machine.Stats.Calls)),
			machine.Stats.MaxDepth,
		)
	}
	return nil
}

// compileOrFetch always compiles prog (the cache is keyed by the compiled
// program's own digest, so there is no way to look it up without compiling
// first) but skips the cache write-back when an identical digest is already
// stored, and leaves the Program's CachedAt populated when it was. The
// payoff for a front end driving this CLI repeatedly over the same AST is
// that the stored copy's CachedAt timestamp survives, not that compilation
// itself is skipped (SPEC_FULL.md §4.9).
func compileOrFetch(prog ast.Program, cache *store.Cache) (*bytecode.Program, error) {
	compiled, err := compiler.Compile(prog)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		return compiled, nil
	}
	if cached, ok, err := cache.Get(compiled.Digest()); err == nil && ok {
		return cached, nil
	}
	// A failed write-back leaves the run uncached rather than aborting it
	// (SPEC_FULL.md §4.9).
	_ = cache.Put(compiled, time.Now().Unix())
	return compiled, nil
}
