package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/smog/pkg/value"
)

func TestChunkWriteTracksLines(t *testing.T) {
	var c value.Chunk
	c.Write(0x01, 1)
	c.Write(0x02, 1)
	c.Write(0x03, 2)

	assert.Equal(t, []byte{0x01, 0x02, 0x03}, c.Code)
	assert.Equal(t, []int{1, 1, 2}, c.Lines)
}

func TestChunkAddConstantDoesNotDedupe(t *testing.T) {
	var c value.Chunk
	i0 := c.AddConstant(value.Number(1))
	i1 := c.AddConstant(value.Number(1))

	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1, "AddConstant never dedupes; callers intern themselves")
	assert.Len(t, c.Constants, 2)
}
