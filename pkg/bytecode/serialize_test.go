package bytecode_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/smog/pkg/bytecode"
	"github.com/kristofer/smog/pkg/gc"
	"github.com/kristofer/smog/pkg/value"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := gc.New(false)
	fn := h.NewFunction()
	fn.Name = h.InternString("main")
	fn.Arity = 2
	fn.UpvalueCount = 1

	numIdx := fn.Chunk.AddConstant(value.Number(3.25))
	strIdx := fn.Chunk.AddConstant(value.Obj(h.InternString("hi")))
	fn.Chunk.Write(byte(bytecode.OpConstant), 1)
	fn.Chunk.Write(byte(numIdx), 1)
	fn.Chunk.Write(byte(bytecode.OpConstant), 2)
	fn.Chunk.Write(byte(strIdx), 2)
	fn.Chunk.Write(byte(bytecode.OpReturn), 2)

	var buf bytes.Buffer
	require.NoError(t, bytecode.Encode(&buf, fn))

	h2 := gc.New(false)
	decoded, err := bytecode.Decode(&buf, h2)
	require.NoError(t, err)

	assert.Equal(t, fn.Arity, decoded.Arity)
	assert.Equal(t, fn.UpvalueCount, decoded.UpvalueCount)
	require.NotNil(t, decoded.Name)
	assert.Equal(t, "main", decoded.Name.Chars)
	assert.Equal(t, fn.Chunk.Code, decoded.Chunk.Code)
	assert.Equal(t, fn.Chunk.Lines, decoded.Chunk.Lines)
	require.Len(t, decoded.Chunk.Constants, 2)
	assert.Equal(t, value.Number(3.25), decoded.Chunk.Constants[0])
	assert.Equal(t, "hi", decoded.Chunk.Constants[1].AsString().Chars)
}

func TestEncodeDecodeNestedFunction(t *testing.T) {
	h := gc.New(false)
	outer := h.NewFunction()
	inner := h.NewFunction()
	inner.Name = h.InternString("inner")
	outer.Chunk.AddConstant(value.Obj(inner))

	var buf bytes.Buffer
	require.NoError(t, bytecode.Encode(&buf, outer))

	h2 := gc.New(false)
	decoded, err := bytecode.Decode(&buf, h2)
	require.NoError(t, err)

	require.Len(t, decoded.Chunk.Constants, 1)
	nested := decoded.Chunk.Constants[0].AsObject().(*value.ObjFunction)
	assert.Equal(t, "inner", nested.Name.Chars)
}
