// Command smog is the driver for the smog bytecode interpreter: a cobra CLI
// exposing run/repl/compile/disassemble/version subcommands over the
// pkg/lexer -> pkg/compiler -> pkg/vm pipeline.
//
// Two invocation modes are layered on top of cobra per spec §6:
//
//	smog                 start the REPL (equivalent to `smog repl`)
//	smog <file>           run a source file (equivalent to `smog run <file>`)
//	smog <subcommand> ... explicit subcommand
//
// Exit codes follow spec §6 exactly: 0 success, 65 compile error, 70
// runtime error, 74 I/O error — mapped once, in main, from the *exitError
// each subcommand returns, rather than scattered os.Exit calls throughout
// the subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kristofer/smog/internal/config"
)

const version = "0.1.0"

// exitCode mirrors spec §6's four-way status: a program that never errors
// exits 0 without this ever being consulted.
type exitCode int

const (
	exitOK           exitCode = 0
	exitCompileError exitCode = 65
	exitRuntimeError exitCode = 70
	exitIOError      exitCode = 74
)

// exitError carries the exit code a subcommand wants main to use; cobra
// itself always returns a plain error, so RunE handlers wrap whatever they
// fail with in one of these instead of calling os.Exit directly (which
// would skip cobra's own usage-printing and make the subcommands harder to
// test as functions).
type exitError struct {
	code exitCode
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func fail(code exitCode, err error) error { return &exitError{code: code, err: err} }

func main() {
	cfg := config.FromEnv()
	root := newRootCmd(cfg)
	if err := root.Execute(); err != nil {
		code := exitRuntimeError
		if ee, ok := err.(*exitError); ok {
			code = ee.code
		}
		if code != exitOK {
			fmt.Fprintln(os.Stderr, colorizeError(cfg, err.Error()))
		}
		os.Exit(int(code))
	}
}

func colorizeError(cfg config.Config, msg string) string {
	if cfg.NoColor {
		return msg
	}
	return color.New(color.FgRed).Sprint(msg)
}

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "smog [file]",
		Short: "smog is a small bytecode-compiled scripting language",
		Long: "smog compiles and executes programs written in a small dynamically-typed,\n" +
			"class-based scripting language, using a single-pass compiler and a\n" +
			"stack-based bytecode virtual machine.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runREPL(cfg, cmd.OutOrStdout())
			}
			return runFile(cfg, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRunCmd(cfg),
		newReplCmd(cfg),
		newCompileCmd(cfg),
		newDisassembleCmd(cfg),
		newVersionCmd(),
	)
	return root
}

func newRunCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Compile and execute a .smog source file or .sg bytecode file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(cfg, args[0])
		},
	}
}

func newReplCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive read-eval-print loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cfg, cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the smog version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "smog version %s\n", version)
			return nil
		},
	}
}
