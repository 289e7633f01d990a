// Package vm implements the bytecode virtual machine for smog.
//
// The VM is a stack-based interpreter that executes the bytecode pkg/compiler
// produces. It's the final stage in the execution pipeline:
//
//   Source -> Lexer -> Compiler (Pratt expressions + recursive-descent
//   statements, emitting bytecode directly) -> Chunk -> VM -> Execution
//
// There is no AST stage: the compiler is single-pass, so by the time the VM
// sees a Chunk all that remains is a flat sequence of opcodes and operands.
//
// Virtual Machine Architecture:
//
//   1. Value stack: holds intermediate values and local variable slots,
//      shared across all active call frames (a callee's locals live in the
//      same backing array as its caller's, offset by the frame's base).
//   2. Call-frame stack: one entry per active function/method/script
//      invocation — a reference to the running Closure, an instruction
//      pointer into that closure's Chunk, and a base index into the value
//      stack where the callee's slot 0 begins.
//   3. Globals table: a pkg/table.Table of top-level `var`/`fun`/`class`
//      bindings, persistent across REPL lines.
//   4. Open-upvalue list: closures sharing a captured local all point at
//      the same *value.ObjUpvalue while it is open (Location pointing into
//      the stack); CLOSE_UPVALUE and frame-pop promote it to closed.
//
// Execution Model:
//
// The VM executes instructions sequentially using the current frame's
// instruction pointer. Each instruction manipulates the stack, the globals
// table, or control flow (by rewriting the current frame's ip).
//
// Example Execution:
//
//   Source: var x = 5; print x + 3;
//
//   Bytecode (top-level script chunk):
//     0: CONSTANT   1        ; constants[1] = 5
//     2: DEFINE_GLOBAL 0     ; constants[0] = "x"
//     4: GET_GLOBAL  2       ; constants[2] = "x"
//     6: CONSTANT    3       ; constants[3] = 3
//     8: ADD
//     9: PRINT
//    10: NIL
//    11: RETURN
//
//   Execution trace:
//     ip=0  CONSTANT 1    -> stack=[5]
//     ip=2  DEFINE_GLOBAL -> globals[x]=5, stack=[]
//     ip=4  GET_GLOBAL    -> stack=[5]
//     ip=6  CONSTANT 3    -> stack=[5,3]
//     ip=8  ADD           -> stack=[8]
//     ip=9  PRINT         -> prints "8", stack=[]
//
// Stack Operations:
//
// Most instructions follow a pattern: pop operands, compute, push the
// result. Binary arithmetic always pops two values and pushes one.
//
// Error Handling:
//
// run returns a *RuntimeError for any runtime fault (type mismatch,
// undefined global, arity mismatch, non-callable target, stack overflow,
// bad property access). Every RuntimeError carries the call-frame stack at
// the moment it was raised; the VM resets its stack and frame count before
// returning so the driver (REPL or file runner) can continue or exit
// cleanly, per the "no partial state leaks" rule.
//
// Design Philosophy:
//
// The VM is designed to be:
//   - Simple: one dispatch loop, one stack, no bytecode rewriting at runtime
//   - Safe: bounds-checked stack/frame arrays, explicit arity/type checks
//   - GC-aware: implements gc.RootSource so the collector can trace every
//     live stack slot, frame closure, open upvalue, and global value
package vm

import (
	"fmt"
	"io"

	"github.com/kristofer/smog/pkg/gc"
	"github.com/kristofer/smog/pkg/table"
	"github.com/kristofer/smog/pkg/value"
)

const framesMax = 64
const stackMax = framesMax * 256

// CallFrame is one activation record: which closure is running, where its
// instruction pointer is, and where its stack slots begin.
type CallFrame struct {
	closure *value.ObjClosure
	ip      int
	base    int
}

// VM is one smog virtual machine instance: a value stack, a call-frame
// stack, a globals table, the open-upvalue list, and the heap it allocates
// through. A VM is not reentrant and not safe for concurrent use, per the
// single-threaded execution model.
type VM struct {
	stack    [stackMax]value.Value
	stackTop int

	frames     [framesMax]CallFrame
	frameCount int

	heap    *gc.Heap
	globals *table.Table

	openUpvalues *value.ObjUpvalue // sorted by StackIdx, highest first

	initString *value.ObjString

	stdout io.Writer

	// Trace, when non-nil, is invoked before every instruction dispatch
	// with the chunk and the offset of the instruction about to run, for
	// SMOG_TRACE tracing (the callback typically wraps
	// bytecode.DisassembleInstruction). Wired up by the CLI via
	// internal/tracelog; nil by default.
	Trace func(chunk *value.Chunk, offset int)
}

// New creates a VM backed by heap, registers itself as the heap's permanent
// root source, and writes `print` output to stdout.
func New(heap *gc.Heap, stdout io.Writer) *VM {
	vm := &VM{
		heap:       heap,
		globals:    table.New(),
		stdout:     stdout,
		initString: heap.InternString("init"),
	}
	heap.SetVMRoots(vm)
	return vm
}

// DefineNative registers a host function into the globals table under name,
// the mechanism by which the CLI installs clock() and any other natives
// before running a program (spec §6, native registration).
//
// The interned name and the native are pushed onto the value stack before
// either is stored anywhere, exactly as clox's defineNative does around its
// tableSet call: InternString and NewNative can each trigger a collection,
// and until the globals Set completes neither object is reachable from any
// GC root any other way.
func (vm *VM) DefineNative(name string, fn value.NativeFn) {
	vm.push(value.Obj(vm.heap.InternString(name)))
	vm.push(value.Obj(vm.heap.NewNative(name, fn)))
	vm.globals.Set(vm.peek(1).AsObject().(*value.ObjString), vm.peek(0))
	vm.pop()
	vm.pop()
}

// Globals exposes the global-variable table, e.g. for a REPL driver that
// wants to print bindings or for tests.
func (vm *VM) Globals() *table.Table { return vm.globals }

// Interpret runs a freshly compiled top-level function to completion (or
// until a runtime error), wrapping it in a closure and pushing the initial
// call frame exactly the way a CLOSURE instruction would for any other
// function value.
func (vm *VM) Interpret(fn *value.ObjFunction) error {
	vm.push(value.Obj(fn))
	closure := vm.heap.NewClosure(fn)
	vm.pop()
	vm.push(value.Obj(closure))
	if err := vm.call(closure, 0); err != nil {
		return err
	}
	return vm.run()
}

// ---- stack primitives -----------------------------------------------------

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// ---- MarkRoots (gc.RootSource) ---------------------------------------------

// MarkRoots marks every live stack slot, every frame's closure, every open
// upvalue, every global binding, and the cached "init" string. Open
// upvalues' Location fields point into vm.stack while open — per the
// design notes, that pointer is never followed as a root; the stack slot
// it addresses is already marked directly by the loop over vm.stack.
func (vm *VM) MarkRoots(h *gc.Heap) {
	for i := 0; i < vm.stackTop; i++ {
		h.MarkValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		h.MarkObject(vm.frames[i].closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = upvalueNext(uv) {
		h.MarkObject(uv)
	}
	vm.globals.Each(func(key *value.ObjString, v value.Value) {
		h.MarkObject(key)
		h.MarkValue(v)
	})
	h.MarkObject(vm.initString)
}

// ---- upvalues ---------------------------------------------------------------

// captureUpvalue returns the open upvalue for the stack slot at absolute
// index idx, reusing an existing one if any closure already captured that
// exact slot (so mutations stay observable across every capturing closure);
// otherwise it inserts a new one into the open list, kept sorted by
// descending StackIdx so closeUpvalues can stop at the first slot below the
// closed boundary.
func (vm *VM) captureUpvalue(idx int) *value.ObjUpvalue {
	var prev *value.ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && cur.StackIdx > idx {
		prev = cur
		cur = upvalueNext(cur)
	}
	if cur != nil && cur.StackIdx == idx {
		return cur
	}

	created := vm.heap.NewUpvalue(&vm.stack[idx], idx)
	if cur != nil {
		created.SetNext(cur)
	}
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.SetNext(created)
	}
	return created
}

// closeUpvalues closes every open upvalue at or above absolute stack index
// last, copying the stack slot's current value into the upvalue itself so
// it survives after that slot is popped or overwritten.
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && vm.openUpvalues.StackIdx >= last {
		uv := vm.openUpvalues
		uv.Close()
		vm.openUpvalues = upvalueNext(uv)
	}
}

// upvalueNext reads an ObjUpvalue's intrusive link as an *ObjUpvalue; the
// generic Object.Next() in pkg/value returns the Object interface.
func upvalueNext(u *value.ObjUpvalue) *value.ObjUpvalue {
	if n := u.Next(); n != nil {
		return n.(*value.ObjUpvalue)
	}
	return nil
}

// ---- calling ----------------------------------------------------------------

// callValue dispatches a CALL instruction on whatever kind of value sits at
// the callee slot: a Closure, a Native, a Class (constructs an Instance,
// and if it has `init` calls it), or a BoundMethod (rebinds `this` to its
// receiver). Anything else is a runtime error.
func (vm *VM) callValue(callee value.Value, argc int) error {
	if callee.IsObject() {
		switch obj := callee.AsObject().(type) {
		case *value.ObjClosure:
			return vm.call(obj, argc)
		case *value.ObjNative:
			args := vm.stack[vm.stackTop-argc : vm.stackTop]
			result, err := obj.Fn(args)
			if err != nil {
				return vm.runtimeError("%s", err.Error())
			}
			vm.stackTop -= argc + 1
			vm.push(result)
			return nil
		case *value.ObjClass:
			instance := vm.heap.NewInstance(obj)
			vm.stack[vm.stackTop-argc-1] = value.Obj(instance)
			if init, ok := obj.Methods[vm.initString.Chars]; ok {
				return vm.call(init, argc)
			}
			if argc != 0 {
				return vm.runtimeError("expected 0 arguments but got %d", argc)
			}
			return nil
		case *value.ObjBoundMethod:
			vm.stack[vm.stackTop-argc-1] = obj.Receiver
			return vm.call(obj.Method, argc)
		}
	}
	return vm.runtimeError("can only call functions and classes")
}

// call pushes a new CallFrame for closure, checking arity and the frame
// depth cap (stack overflow guard).
func (vm *VM) call(closure *value.ObjClosure, argc int) error {
	if argc != closure.Function.Arity {
		return vm.runtimeError("expected %d arguments but got %d", closure.Function.Arity, argc)
	}
	if vm.frameCount == framesMax {
		return vm.runtimeError("stack overflow")
	}
	vm.frames[vm.frameCount] = CallFrame{
		closure: closure,
		ip:      0,
		base:    vm.stackTop - argc - 1,
	}
	vm.frameCount++
	return nil
}

// invoke implements the INVOKE fast path: GET_PROPERTY immediately followed
// by CALL, fused into one instruction so a plain method call never
// allocates a BoundMethod. Instance fields shadow methods, matching
// GET_PROPERTY's field-then-method resolution order.
func (vm *VM) invoke(name *value.ObjString, argc int) error {
	receiver := vm.peek(argc)
	instance, ok := asInstance(receiver)
	if !ok {
		return vm.runtimeError("only instances have methods")
	}
	if field, ok := instance.Fields[name.Chars]; ok {
		vm.stack[vm.stackTop-argc-1] = field
		return vm.callValue(field, argc)
	}
	return vm.invokeFromClass(instance.Class, name, argc)
}

func (vm *VM) invokeFromClass(class *value.ObjClass, name *value.ObjString, argc int) error {
	method, ok := class.Methods[name.Chars]
	if !ok {
		return vm.runtimeError("undefined property '%s'", name.Chars)
	}
	return vm.call(method, argc)
}

// bindMethod resolves name on class into a BoundMethod over the value
// currently at the top of the stack (the instance), replacing it there.
func (vm *VM) bindMethod(class *value.ObjClass, name *value.ObjString) error {
	method, ok := class.Methods[name.Chars]
	if !ok {
		return vm.runtimeError("undefined property '%s'", name.Chars)
	}
	bound := vm.heap.NewBoundMethod(vm.peek(0), method)
	vm.pop()
	vm.push(value.Obj(bound))
	return nil
}

func (vm *VM) defineMethod(name *value.ObjString) {
	method := vm.peek(0).AsObject().(*value.ObjClosure)
	class := vm.peek(1).AsObject().(*value.ObjClass)
	class.Methods[name.Chars] = method
	vm.pop()
}

func asInstance(v value.Value) (*value.ObjInstance, bool) {
	if !v.IsObject() {
		return nil, false
	}
	i, ok := v.AsObject().(*value.ObjInstance)
	return i, ok
}

// ---- errors -----------------------------------------------------------------

// runtimeError builds a *RuntimeError carrying the full frame trace
// (innermost frame first), then resets the stack so the caller can recover
// (REPL continues, file runner exits) without leaking partial execution
// state, per spec §7.
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	trace := make([]Frame, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		f := vm.frames[i]
		line := 0
		if f.ip-1 >= 0 && f.ip-1 < len(f.closure.Function.Chunk.Lines) {
			line = f.closure.Function.Chunk.Lines[f.ip-1]
		}
		name := ""
		if f.closure.Function.Name != nil {
			name = f.closure.Function.Name.Chars + "()"
		}
		trace = append(trace, Frame{FuncName: name, Line: line})
	}
	vm.resetStack()
	return newRuntimeError(msg, trace)
}

func concatenate(heap *gc.Heap, a, b *value.ObjString) value.Value {
	return value.Obj(heap.InternString(a.Chars + b.Chars))
}
