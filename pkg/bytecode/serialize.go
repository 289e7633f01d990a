package bytecode

import (
	"encoding/gob"
	"io"

	"github.com/kristofer/smog/pkg/gc"
	"github.com/kristofer/smog/pkg/value"
)

// wireValue and wireFunction are gob-friendly mirrors of value.Value and
// value.ObjFunction. value.Value's fields are unexported (by design, to
// keep the tagged union closed outside the package) and ObjFunction embeds
// a heap-allocated Object header, so neither can be gob-encoded directly;
// these wire types are the one place the .sg format's concerns live,
// kept out of pkg/value so that package stays free of serialization
// concerns it has no other need for.
type wireValue struct {
	Kind     value.Kind
	Bool     bool
	Number   float64
	Str      string
	HasStr   bool
	Function *wireFunction
}

type wireFunction struct {
	Arity        int
	UpvalueCount int
	Name         string
	HasName      bool
	Code         []byte
	Lines        []int
	Constants    []wireValue
}

// Encode serializes a compiled top-level function (and everything it
// transitively references through its constant pool — nested function
// constants, interned strings) to w, for the CLI's `compile` subcommand.
func Encode(w io.Writer, fn *value.ObjFunction) error {
	return gob.NewEncoder(w).Encode(toWireFunction(fn))
}

// Decode reads back a function serialized by Encode, allocating every
// object it contains through heap so the result participates in the same
// GC and intern table as anything else the VM touches.
func Decode(r io.Reader, heap *gc.Heap) (*value.ObjFunction, error) {
	var wf wireFunction
	if err := gob.NewDecoder(r).Decode(&wf); err != nil {
		return nil, err
	}
	return fromWireFunction(wf, heap), nil
}

func toWireFunction(fn *value.ObjFunction) wireFunction {
	wf := wireFunction{
		Arity:        fn.Arity,
		UpvalueCount: fn.UpvalueCount,
		Code:         append([]byte(nil), fn.Chunk.Code...),
		Lines:        append([]int(nil), fn.Chunk.Lines...),
		Constants:    make([]wireValue, len(fn.Chunk.Constants)),
	}
	if fn.Name != nil {
		wf.HasName = true
		wf.Name = fn.Name.Chars
	}
	for i, c := range fn.Chunk.Constants {
		wf.Constants[i] = toWireValue(c)
	}
	return wf
}

func toWireValue(v value.Value) wireValue {
	wv := wireValue{Kind: v.Kind()}
	switch v.Kind() {
	case value.KindBool:
		wv.Bool = v.AsBool()
	case value.KindNumber:
		wv.Number = v.AsNumber()
	case value.KindObject:
		switch obj := v.AsObject().(type) {
		case *value.ObjString:
			wv.HasStr = true
			wv.Str = obj.Chars
		case *value.ObjFunction:
			f := toWireFunction(obj)
			wv.Function = &f
		}
	}
	return wv
}

func fromWireFunction(wf wireFunction, heap *gc.Heap) *value.ObjFunction {
	fn := heap.NewFunction()
	fn.Arity = wf.Arity
	fn.UpvalueCount = wf.UpvalueCount
	if wf.HasName {
		fn.Name = heap.InternString(wf.Name)
	}
	fn.Chunk.Code = append([]byte(nil), wf.Code...)
	fn.Chunk.Lines = append([]int(nil), wf.Lines...)
	fn.Chunk.Constants = make([]value.Value, len(wf.Constants))
	for i, wv := range wf.Constants {
		fn.Chunk.Constants[i] = fromWireValue(wv, heap)
	}
	return fn
}

func fromWireValue(wv wireValue, heap *gc.Heap) value.Value {
	switch wv.Kind {
	case value.KindNil:
		return value.Nil
	case value.KindBool:
		return value.Bool(wv.Bool)
	case value.KindNumber:
		return value.Number(wv.Number)
	case value.KindObject:
		if wv.Function != nil {
			return value.Obj(fromWireFunction(*wv.Function, heap))
		}
		if wv.HasStr {
			return value.Obj(heap.InternString(wv.Str))
		}
	}
	return value.Nil
}
