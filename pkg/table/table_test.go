package table_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/smog/pkg/table"
	"github.com/kristofer/smog/pkg/value"
)

func key(s string) *value.ObjString {
	return value.NewString(s, value.FNV1a32(s))
}

func TestSetGetDelete(t *testing.T) {
	tb := table.New()
	k := key("x")

	isNew := tb.Set(k, value.Number(1))
	assert.True(t, isNew)

	v, ok := tb.Get(k)
	require.True(t, ok)
	assert.Equal(t, value.Number(1), v)

	isNew = tb.Set(k, value.Number(2))
	assert.False(t, isNew, "overwriting an existing key is not new")
	v, _ = tb.Get(k)
	assert.Equal(t, value.Number(2), v)

	assert.True(t, tb.Delete(k))
	_, ok = tb.Get(k)
	assert.False(t, ok)
	assert.False(t, tb.Delete(k), "deleting twice reports not found")
}

func TestGetMissingOnEmptyTable(t *testing.T) {
	tb := table.New()
	_, ok := tb.Get(key("missing"))
	assert.False(t, ok)
}

func TestGrowsPastLoadFactor(t *testing.T) {
	tb := table.New()
	keys := make([]*value.ObjString, 100)
	for i := 0; i < 100; i++ {
		keys[i] = key(fmt.Sprintf("k%d", i))
		tb.Set(keys[i], value.Number(float64(i)))
	}
	assert.Equal(t, 100, tb.Count())
	for i := 0; i < 100; i++ {
		v, ok := tb.Get(keys[i])
		require.True(t, ok)
		assert.Equal(t, value.Number(float64(i)), v)
	}
}

func TestAddAll(t *testing.T) {
	a, b := key("a"), key("b")
	src := table.New()
	src.Set(a, value.Number(1))
	src.Set(b, value.Number(2))

	dst := table.New()
	dst.Set(b, value.Number(99)) // overwritten by AddAll
	dst.AddAll(src)

	va, _ := dst.Get(a)
	vb, _ := dst.Get(b)
	assert.Equal(t, value.Number(1), va)
	assert.Equal(t, value.Number(2), vb)
}

func TestFindString(t *testing.T) {
	tb := table.New()
	s := key("hello")
	tb.Set(s, value.Nil)

	found := tb.FindString("hello", value.FNV1a32("hello"))
	assert.Same(t, s, found)

	assert.Nil(t, tb.FindString("nope", value.FNV1a32("nope")))
}

func TestFindStringOnEmptyTable(t *testing.T) {
	tb := table.New()
	assert.Nil(t, tb.FindString("x", value.FNV1a32("x")))
}

func TestEach(t *testing.T) {
	tb := table.New()
	tb.Set(key("a"), value.Number(1))
	tb.Set(key("b"), value.Number(2))

	seen := map[string]value.Value{}
	tb.Each(func(k *value.ObjString, v value.Value) {
		seen[k.Chars] = v
	})
	assert.Len(t, seen, 2)
	assert.Equal(t, value.Number(1), seen["a"])
	assert.Equal(t, value.Number(2), seen["b"])
}

func TestRemoveWhiteDropsUnmarkedKeys(t *testing.T) {
	tb := table.New()
	marked := key("marked")
	unmarked := key("unmarked")
	marked.SetMarked(true)

	tb.Set(marked, value.Nil)
	tb.Set(unmarked, value.Nil)

	tb.RemoveWhite()

	_, ok := tb.Get(marked)
	assert.True(t, ok)
	_, ok = tb.Get(unmarked)
	assert.False(t, ok)
}
