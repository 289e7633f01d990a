package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kristofer/smog/internal/config"
	"github.com/kristofer/smog/pkg/bytecode"
	"github.com/kristofer/smog/pkg/compiler"
	"github.com/kristofer/smog/pkg/gc"
	"github.com/kristofer/smog/pkg/value"
)

func newDisassembleCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "disassemble <file>",
		Aliases: []string{"disasm"},
		Short:   "Print a human-readable listing of a .smog or .sg file's bytecode",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disassembleFile(cfg, args[0], cmd.OutOrStdout())
		},
	}
}

func disassembleFile(cfg config.Config, filename string, out io.Writer) error {
	heap := gc.New(cfg.StressGC)

	var fn *value.ObjFunction
	if isSGFile(filename) {
		f, err := os.Open(filename)
		if err != nil {
			return fail(exitIOError, errors.Wrap(err, "opening file"))
		}
		defer f.Close()
		decoded, err := bytecode.Decode(f, heap)
		if err != nil {
			return fail(exitIOError, errors.Wrap(err, "loading bytecode"))
		}
		fn = decoded
	} else {
		data, err := os.ReadFile(filename)
		if err != nil {
			return fail(exitIOError, errors.Wrap(err, "reading source"))
		}
		compiled, ok := compiler.Compile(string(data), heap, os.Stderr)
		if !ok {
			return fail(exitCompileError, fmt.Errorf("compile failed"))
		}
		fn = compiled
	}

	disassembleFunction(out, fn, "script")
	return nil
}

// disassembleFunction prints fn's chunk followed by every nested function
// constant it references, recursively, so `smog disassemble` shows a
// program's entire call graph in one listing rather than just its
// top-level chunk.
func disassembleFunction(out io.Writer, fn *value.ObjFunction, name string) {
	bytecode.Disassemble(out, &fn.Chunk, name)
	for _, c := range fn.Chunk.Constants {
		if c.IsObjKind(value.ObjKindFunction) {
			nested := c.AsObject().(*value.ObjFunction)
			nestedName := "fn"
			if nested.Name != nil {
				nestedName = nested.Name.Chars
			}
			fmt.Fprintln(out)
			disassembleFunction(out, nested, nestedName)
		}
	}
}

func isSGFile(filename string) bool {
	return len(filename) > 3 && filename[len(filename)-3:] == ".sg"
}
