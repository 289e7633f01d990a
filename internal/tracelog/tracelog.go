// Package tracelog provides smog's two debug-output facilities: per-
// instruction execution tracing and per-collection GC summaries. Both are
// gated by internal/config toggles and write colorized lines to an
// io.Writer (normally stderr), following the teacher's pkg/vm/debugger.go
// precedent of writing structured, human-readable trace lines rather than
// a binary or JSON log.
package tracelog

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/kristofer/smog/pkg/bytecode"
	"github.com/kristofer/smog/pkg/value"
)

// Logger writes trace and GC-summary lines to w, colorizing when color is
// true (the CLI disables color for SMOG_NO_COLOR/NO_COLOR or a non-tty
// stdout).
type Logger struct {
	w     io.Writer
	color bool
}

func New(w io.Writer, useColor bool) *Logger {
	return &Logger{w: w, color: useColor}
}

// Instruction prints one disassembled instruction the way
// bytecode.DisassembleInstruction would, suitable as a vm.VM.Trace hook for
// SMOG_TRACE=1.
func (l *Logger) Instruction(chunk *value.Chunk, offset int) {
	if l.color {
		fmt.Fprint(l.w, color.New(color.FgCyan).Sprint("trace "))
	}
	bytecode.DisassembleInstruction(l.w, chunk, offset)
}

// Collection prints a one-line GC summary, suitable as a gc.Heap.SetLogFunc
// callback for SMOG_GC_LOG=1. Byte counts are humanized (e.g. "1.2 MB")
// rather than raw counts, since stress-mode runs can produce many lines.
func (l *Logger) Collection(beforeBytes, afterBytes, nextGC uint64) {
	line := fmt.Sprintf("gc: %s -> %s (next at %s)",
		humanize.Bytes(beforeBytes), humanize.Bytes(afterBytes), humanize.Bytes(nextGC))
	if l.color {
		line = color.New(color.FgYellow).Sprint(line)
	}
	fmt.Fprintln(l.w, line)
}
