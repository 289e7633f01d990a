package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/kristofer/smog/internal/config"
	"github.com/kristofer/smog/pkg/compiler"
	"github.com/kristofer/smog/pkg/gc"
	"github.com/kristofer/smog/pkg/vm"
)

// runREPL reads one line at a time, compiling and executing each as an
// independent top-level program against one persistent VM — so `var`s and
// `fun`/`class` declarations from earlier lines remain visible to later
// ones, per spec §6. Line editing and history use liner when stdin is a
// terminal; piped input falls back to a plain bufio-style scan so
// `smog repl < script.smog` still works.
func runREPL(cfg config.Config, out io.Writer) error {
	machine, heap := newMachine(cfg)

	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return runPipedREPL(machine, heap, out)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Fprintf(out, "smog %s\n", version)
	for {
		input, err := line.Prompt("smog> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return fail(exitIOError, err)
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		evalLine(machine, heap, input)
	}
}

// runPipedREPL is the non-interactive fallback: read lines from stdin with
// no prompt, history, or editing, since liner requires a real terminal.
func runPipedREPL(machine *vm.VM, heap *gc.Heap, out io.Writer) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if input := scanner.Text(); input != "" {
			evalLine(machine, heap, input)
		}
	}
	if err := scanner.Err(); err != nil {
		return fail(exitIOError, err)
	}
	return nil
}

func evalLine(machine *vm.VM, heap *gc.Heap, source string) {
	fn, ok := compiler.Compile(source, heap, os.Stderr)
	if !ok {
		return
	}
	if err := machine.Interpret(fn); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
