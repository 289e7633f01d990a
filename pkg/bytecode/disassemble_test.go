package bytecode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/smog/pkg/bytecode"
	"github.com/kristofer/smog/pkg/value"
)

func TestDisassembleSimpleChunk(t *testing.T) {
	var c value.Chunk
	idx := c.AddConstant(value.Number(1.5))
	c.Write(byte(bytecode.OpConstant), 1)
	c.Write(byte(idx), 1)
	c.Write(byte(bytecode.OpReturn), 1)

	var b strings.Builder
	bytecode.Disassemble(&b, &c, "test chunk")
	out := b.String()

	assert.Contains(t, out, "== test chunk ==")
	assert.Contains(t, out, "CONSTANT")
	assert.Contains(t, out, "1.5")
	assert.Contains(t, out, "RETURN")
}

func TestDisassembleClosureInstructionWalksUpvalues(t *testing.T) {
	var c value.Chunk
	fn := value.NewFunction()
	fn.UpvalueCount = 1
	idx := c.AddConstant(value.Obj(fn))
	c.Write(byte(bytecode.OpClosure), 1)
	c.Write(byte(idx), 1)
	c.Write(1, 1) // isLocal
	c.Write(0, 1) // index

	var b strings.Builder
	next := bytecode.DisassembleInstruction(&b, &c, 0)
	assert.Equal(t, 4, next)
	assert.Contains(t, b.String(), "local 0")
}
