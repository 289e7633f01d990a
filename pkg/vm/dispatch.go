package vm

import (
	"fmt"

	"github.com/kristofer/smog/pkg/bytecode"
	"github.com/kristofer/smog/pkg/value"
)

// run is the dispatch loop: fetch one opcode from the current frame, branch
// on it, repeat. Every case leaves the stack in a well-defined state before
// the next fetch (spec §5) — no opcode may be interrupted mid-execution.
func (vm *VM) run() error {
	frame := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := frame.closure.Function.Chunk.Code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() int {
		hi := frame.closure.Function.Chunk.Code[frame.ip]
		lo := frame.closure.Function.Chunk.Code[frame.ip+1]
		frame.ip += 2
		return int(hi)<<8 | int(lo)
	}
	readConstant := func(op bytecode.Op) value.Value {
		v, n := bytecode.ReadConstant(&frame.closure.Function.Chunk, op, frame.ip)
		frame.ip += n
		return v
	}
	readString := func(op bytecode.Op) *value.ObjString {
		return readConstant(op).AsString()
	}

	for {
		if vm.Trace != nil {
			vm.Trace(&frame.closure.Function.Chunk, frame.ip)
		}

		op := bytecode.Op(readByte())
		switch op {
		case bytecode.OpConstant, bytecode.OpConstantLong:
			vm.push(readConstant(op))

		case bytecode.OpNil:
			vm.push(value.Nil)
		case bytecode.OpTrue:
			vm.push(value.Bool(true))
		case bytecode.OpFalse:
			vm.push(value.Bool(false))
		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpGetLocal:
			slot := readByte()
			vm.push(vm.stack[frame.base+int(slot)])
		case bytecode.OpSetLocal:
			slot := readByte()
			vm.stack[frame.base+int(slot)] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := readString(op)
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("undefined variable '%s'", name.Chars)
			}
			vm.push(v)
		case bytecode.OpSetGlobal:
			name := readString(op)
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("undefined variable '%s'", name.Chars)
			}
		case bytecode.OpDefineGlobal:
			name := readString(op)
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case bytecode.OpGetUpvalue:
			slot := readByte()
			vm.push(*frame.closure.Upvalues[slot].Location)
		case bytecode.OpSetUpvalue:
			slot := readByte()
			*frame.closure.Upvalues[slot].Location = vm.peek(0)

		case bytecode.OpGetProperty:
			instance, ok := asInstance(vm.peek(0))
			if !ok {
				return vm.runtimeError("only instances have properties")
			}
			name := readString(op)
			if f, ok := instance.Fields[name.Chars]; ok {
				vm.pop()
				vm.push(f)
				break
			}
			if err := vm.bindMethod(instance.Class, name); err != nil {
				return err
			}
		case bytecode.OpSetProperty:
			instance, ok := asInstance(vm.peek(1))
			if !ok {
				return vm.runtimeError("only instances have fields")
			}
			name := readString(op)
			instance.Fields[name.Chars] = vm.peek(0)
			v := vm.pop()
			vm.pop()
			vm.push(v)

		case bytecode.OpGetSuper:
			name := readString(op)
			superclass := vm.pop().AsObject().(*value.ObjClass)
			if err := vm.bindMethod(superclass, name); err != nil {
				return err
			}

		case bytecode.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case bytecode.OpGreater:
			b, a, err := vm.popNumberPair()
			if err != nil {
				return err
			}
			vm.push(value.Bool(a > b))
		case bytecode.OpLess:
			b, a, err := vm.popNumberPair()
			if err != nil {
				return err
			}
			vm.push(value.Bool(a < b))

		case bytecode.OpAdd:
			b, a := vm.peek(0), vm.peek(1)
			switch {
			case a.IsNumber() && b.IsNumber():
				vm.pop()
				vm.pop()
				vm.push(value.Number(a.AsNumber() + b.AsNumber()))
			case a.IsObjKind(value.ObjKindString) && b.IsObjKind(value.ObjKindString):
				vm.pop()
				vm.pop()
				vm.push(concatenate(vm.heap, a.AsString(), b.AsString()))
			default:
				return vm.runtimeError("operands must be two numbers or two strings")
			}
		case bytecode.OpSubtract:
			b, a, err := vm.popNumberPair()
			if err != nil {
				return err
			}
			vm.push(value.Number(a - b))
		case bytecode.OpMultiply:
			b, a, err := vm.popNumberPair()
			if err != nil {
				return err
			}
			vm.push(value.Number(a * b))
		case bytecode.OpDivide:
			b, a, err := vm.popNumberPair()
			if err != nil {
				return err
			}
			vm.push(value.Number(a / b))
		case bytecode.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("operand must be a number")
			}
			vm.push(value.Number(-vm.pop().AsNumber()))
		case bytecode.OpNot:
			vm.push(value.Bool(vm.pop().Falsy()))

		case bytecode.OpPrint:
			fmt.Fprintln(vm.stdout, vm.pop().String())

		case bytecode.OpJump:
			offset := readShort()
			frame.ip += offset
		case bytecode.OpJumpIfFalse:
			offset := readShort()
			if vm.peek(0).Falsy() {
				frame.ip += offset
			}
		case bytecode.OpLoop:
			offset := readShort()
			frame.ip -= offset

		case bytecode.OpCall:
			argc := int(readByte())
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.OpInvoke:
			name := readString(op)
			argc := int(readByte())
			if err := vm.invoke(name, argc); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.OpSuperInvoke:
			name := readString(op)
			argc := int(readByte())
			superclass := vm.pop().AsObject().(*value.ObjClass)
			if err := vm.invokeFromClass(superclass, name, argc); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.OpClosure:
			fn := readConstant(op).AsObject().(*value.ObjFunction)
			closure := vm.heap.NewClosure(fn)
			vm.push(value.Obj(closure))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := readByte()
				index := int(readByte())
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.base + index)
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case bytecode.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case bytecode.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.base)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.stackTop = frame.base
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.OpClass:
			name := readString(op)
			vm.push(value.Obj(vm.heap.NewClass(name)))

		case bytecode.OpInherit:
			superVal := vm.peek(1)
			superclass, ok := superVal.AsObject().(*value.ObjClass)
			if !superVal.IsObject() || !ok {
				return vm.runtimeError("superclass must be a class")
			}
			subclass := vm.peek(0).AsObject().(*value.ObjClass)
			for k, v := range superclass.Methods {
				subclass.Methods[k] = v
			}
			vm.pop() // discard the subclass; the superclass stays as the "super" local's slot

		case bytecode.OpMethod:
			name := readString(op)
			vm.defineMethod(name)

		default:
			return vm.runtimeError("unknown opcode %d", byte(op))
		}
	}
}

// popNumberPair pops b then a (in push order a, b) and requires both be
// numbers, as every binary arithmetic/comparison opcode but ADD does.
func (vm *VM) popNumberPair() (b, a float64, err error) {
	bv := vm.pop()
	av := vm.pop()
	if !av.IsNumber() || !bv.IsNumber() {
		return 0, 0, vm.runtimeError("operands must be numbers")
	}
	return bv.AsNumber(), av.AsNumber(), nil
}
