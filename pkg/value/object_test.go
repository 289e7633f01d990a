package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/smog/pkg/value"
)

func TestObjKindString(t *testing.T) {
	assert.Equal(t, "string", value.ObjKindString.String())
	assert.Equal(t, "function", value.ObjKindFunction.String())
	assert.Equal(t, "bound method", value.ObjKindBoundMethod.String())
	assert.Equal(t, "unknown", value.ObjKind(99).String())
}

func TestNewFunctionDefaults(t *testing.T) {
	fn := value.NewFunction()
	assert.Equal(t, value.ObjKindFunction, fn.ObjKind())
	assert.Nil(t, fn.Name)
	assert.Equal(t, "<script>", fn.String())

	fn.Name = value.NewString("add", value.FNV1a32("add"))
	assert.Equal(t, "<fn add>", fn.String())
}

func TestClassMethodsAndInstanceFieldsArePlainMaps(t *testing.T) {
	name := value.NewString("Pair", value.FNV1a32("Pair"))
	class := value.NewClass(name)
	assert.Equal(t, value.ObjKindClass, class.ObjKind())
	assert.NotNil(t, class.Methods)
	assert.Equal(t, "Pair", class.String())

	instance := value.NewInstance(class)
	assert.Equal(t, value.ObjKindInstance, instance.ObjKind())
	instance.Fields["x"] = value.Number(1)
	assert.Equal(t, value.Number(1), instance.Fields["x"])
	assert.Equal(t, "Pair instance", instance.String())
}

func TestUpvalueOpenClose(t *testing.T) {
	slot := value.Number(7)
	uv := value.NewUpvalue(&slot, 0)
	assert.True(t, uv.IsOpen())

	slot = value.Number(9)
	uv.Close()
	assert.False(t, uv.IsOpen())
	assert.Equal(t, value.Number(9), uv.Closed)
}

func TestBoundMethodAndClosureStrings(t *testing.T) {
	fn := value.NewFunction()
	fn.Name = value.NewString("greet", value.FNV1a32("greet"))
	closure := value.NewClosure(fn)
	assert.Equal(t, "<fn greet>", closure.String())

	receiver := value.Obj(value.NewInstance(value.NewClass(value.NewString("C", value.FNV1a32("C")))))
	bound := value.NewBoundMethod(receiver, closure)
	assert.Equal(t, "<fn greet>", bound.String())
}

func TestNativeString(t *testing.T) {
	n := value.NewNative("clock", func(args []value.Value) (value.Value, error) {
		return value.Number(0), nil
	})
	assert.Equal(t, "<native fn clock>", n.String())
}
