package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kristofer/smog/internal/config"
	"github.com/kristofer/smog/internal/tracelog"
	"github.com/kristofer/smog/pkg/bytecode"
	"github.com/kristofer/smog/pkg/compiler"
	"github.com/kristofer/smog/pkg/gc"
	"github.com/kristofer/smog/pkg/natives"
	"github.com/kristofer/smog/pkg/value"
	"github.com/kristofer/smog/pkg/vm"
)

// runFile runs a .smog source file or a previously compiled .sg bytecode
// file, dispatching on extension exactly as the teacher's original driver
// did, now wired to the real compiler/vm pair instead of the Smalltalk
// pipeline it replaced.
func runFile(cfg config.Config, filename string) error {
	machine, heap := newMachine(cfg)

	var fn *value.ObjFunction
	if filepath.Ext(filename) == ".sg" {
		f, err := os.Open(filename)
		if err != nil {
			return fail(exitIOError, err)
		}
		defer f.Close()
		decoded, err := bytecode.Decode(f, heap)
		if err != nil {
			return fail(exitIOError, fmt.Errorf("loading bytecode: %w", err))
		}
		fn = decoded
	} else {
		data, err := os.ReadFile(filename)
		if err != nil {
			return fail(exitIOError, err)
		}
		compiled, ok := compiler.Compile(string(data), heap, os.Stderr)
		if !ok {
			return fail(exitCompileError, fmt.Errorf("compile failed"))
		}
		fn = compiled
	}

	if err := machine.Interpret(fn); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fail(exitRuntimeError, err)
	}
	return nil
}

// newMachine builds a heap and VM wired per cfg: natives installed, and
// SMOG_TRACE/SMOG_GC_LOG/SMOG_STRESS_GC toggles applied.
func newMachine(cfg config.Config) (*vm.VM, *gc.Heap) {
	heap := gc.New(cfg.StressGC)
	if cfg.GCLog {
		logger := tracelog.New(os.Stderr, !cfg.NoColor)
		heap.SetLogFunc(logger.Collection)
	}

	machine := vm.New(heap, os.Stdout)
	natives.Install(machine)

	if cfg.Trace {
		logger := tracelog.New(os.Stderr, !cfg.NoColor)
		machine.Trace = logger.Instruction
	}
	return machine, heap
}
