package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kristofer/smog/internal/config"
	"github.com/kristofer/smog/pkg/bytecode"
	"github.com/kristofer/smog/pkg/compiler"
	"github.com/kristofer/smog/pkg/gc"
)

func newCompileCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <input.smog> [output.sg]",
		Short: "Compile a .smog source file to a .sg bytecode file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output := ""
			if len(args) == 2 {
				output = args[1]
			}
			return compileFile(cfg, input, output, cmd.OutOrStdout())
		},
	}
}

func compileFile(cfg config.Config, inputFile, outputFile string, out io.Writer) error {
	if outputFile == "" {
		outputFile = defaultOutputName(inputFile)
	}

	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fail(exitIOError, errors.Wrap(err, "reading source"))
	}

	heap := gc.New(cfg.StressGC)
	fn, ok := compiler.Compile(string(data), heap, os.Stderr)
	if !ok {
		return fail(exitCompileError, fmt.Errorf("compile failed"))
	}

	outFile, err := os.Create(outputFile)
	if err != nil {
		return fail(exitIOError, errors.Wrap(err, "creating output file"))
	}
	defer outFile.Close()

	if err := bytecode.Encode(outFile, fn); err != nil {
		return fail(exitIOError, errors.Wrap(err, "writing bytecode"))
	}

	fmt.Fprintf(out, "compiled %s -> %s\n", inputFile, outputFile)
	return nil
}

func defaultOutputName(inputFile string) string {
	ext := filepath.Ext(inputFile)
	if ext == "" {
		return inputFile + ".sg"
	}
	return strings.TrimSuffix(inputFile, ext) + ".sg"
}
