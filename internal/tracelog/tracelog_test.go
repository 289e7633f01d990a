package tracelog_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/smog/internal/tracelog"
	"github.com/kristofer/smog/pkg/bytecode"
	"github.com/kristofer/smog/pkg/value"
)

func TestInstructionWritesDisassembly(t *testing.T) {
	var c value.Chunk
	c.Write(byte(bytecode.OpReturn), 1)

	var buf bytes.Buffer
	logger := tracelog.New(&buf, false)
	logger.Instruction(&c, 0)

	assert.Contains(t, buf.String(), "RETURN")
}

func TestInstructionColorizesWhenEnabled(t *testing.T) {
	var c value.Chunk
	c.Write(byte(bytecode.OpReturn), 1)

	var buf bytes.Buffer
	logger := tracelog.New(&buf, true)
	logger.Instruction(&c, 0)

	assert.Contains(t, buf.String(), "trace")
}

func TestCollectionHumanizesByteCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := tracelog.New(&buf, false)
	logger.Collection(1024, 512, 2048)

	out := buf.String()
	assert.Contains(t, out, "gc:")
	assert.Contains(t, out, "->")
}
