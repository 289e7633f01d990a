package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/smog/pkg/value"
)

func TestValueConstructorsAndKind(t *testing.T) {
	assert.True(t, value.Nil.IsNil())
	assert.True(t, value.Bool(true).IsBool())
	assert.True(t, value.Number(3.5).IsNumber())
	assert.Equal(t, value.KindNumber, value.Number(1).Kind())

	s := value.NewString("hi", value.FNV1a32("hi"))
	v := value.Obj(s)
	assert.True(t, v.IsObject())
	assert.True(t, v.IsObjKind(value.ObjKindString))
	assert.False(t, v.IsObjKind(value.ObjKindFunction))
	assert.Same(t, s, v.AsString())
}

func TestFalsyTruthy(t *testing.T) {
	tests := []struct {
		name  string
		v     value.Value
		falsy bool
	}{
		{"nil", value.Nil, true},
		{"false", value.Bool(false), true},
		{"true", value.Bool(true), false},
		{"zero", value.Number(0), false},
		{"emptyString", value.Obj(value.NewString("", 0)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.falsy, tt.v.Falsy())
			assert.Equal(t, !tt.falsy, tt.v.Truthy())
		})
	}
}

func TestEqual(t *testing.T) {
	s1 := value.NewString("abc", value.FNV1a32("abc"))
	s2 := value.NewString("abc", value.FNV1a32("abc")) // distinct, non-interned

	assert.True(t, value.Equal(value.Nil, value.Nil))
	assert.True(t, value.Equal(value.Number(1), value.Number(1)))
	assert.False(t, value.Equal(value.Number(1), value.Number(2)))
	assert.False(t, value.Equal(value.Bool(true), value.Number(1)), "different kinds never coerce")
	assert.True(t, value.Equal(value.Obj(s1), value.Obj(s1)), "same pointer")
	assert.False(t, value.Equal(value.Obj(s1), value.Obj(s2)), "equal content but distinct objects never interned here")
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		want string
	}{
		{"nil", value.Nil, "nil"},
		{"true", value.Bool(true), "true"},
		{"false", value.Bool(false), "false"},
		{"integerLooking", value.Number(3), "3"},
		{"fraction", value.Number(3.25), "3.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}
