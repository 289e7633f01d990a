package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/smog/pkg/bytecode"
	"github.com/kristofer/smog/pkg/value"
)

func TestOpString(t *testing.T) {
	assert.Equal(t, "ADD", bytecode.OpAdd.String())
	assert.Equal(t, "UNKNOWN", bytecode.Op(250).String())
}

func TestReadConstantShort(t *testing.T) {
	var c value.Chunk
	c.AddConstant(value.Number(1))
	idx := c.AddConstant(value.Number(42))
	c.Write(byte(idx), 1)

	v, n := bytecode.ReadConstant(&c, bytecode.OpConstant, 0)
	assert.Equal(t, 1, n)
	assert.Equal(t, value.Number(42), v)
}

func TestReadConstantLong(t *testing.T) {
	var c value.Chunk
	idx := c.AddConstant(value.Number(7))
	c.Write(byte(idx), 1)
	c.Write(byte(idx>>8), 1)
	c.Write(byte(idx>>16), 1)

	v, n := bytecode.ReadConstant(&c, bytecode.OpConstantLong, 0)
	assert.Equal(t, 3, n)
	assert.Equal(t, value.Number(7), v)
}
