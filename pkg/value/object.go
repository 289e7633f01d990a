package value

import (
	"fmt"
)

// ObjKind discriminates the concrete type of a heap Object.
type ObjKind byte

const (
	ObjKindString ObjKind = iota
	ObjKindFunction
	ObjKindNative
	ObjKindClosure
	ObjKindUpvalue
	ObjKindClass
	ObjKindInstance
	ObjKindBoundMethod
)

// Object is the interface every heap-allocated variant implements. The
// header fields (kind, marked, next) are common to all variants so the
// collector can walk the single global object list without knowing the
// concrete type underneath.
type Object interface {
	ObjKind() ObjKind
	Marked() bool
	SetMarked(bool)
	Next() Object
	SetNext(Object)
	String() string
}

// header is embedded by every concrete object type and implements the
// common bookkeeping half of the Object interface.
type header struct {
	kind   ObjKind
	marked bool
	next   Object
}

func (h *header) ObjKind() ObjKind  { return h.kind }
func (h *header) Marked() bool      { return h.marked }
func (h *header) SetMarked(m bool)  { h.marked = m }
func (h *header) Next() Object      { return h.next }
func (h *header) SetNext(n Object)  { h.next = n }

// ObjString is an immutable, interned byte string. Only one ObjString exists
// per distinct byte sequence (see pkg/table's intern support), so string
// equality reduces to pointer equality.
type ObjString struct {
	header
	Chars string
	Hash  uint32
}

func NewString(chars string, hash uint32) *ObjString {
	return &ObjString{header: header{kind: ObjKindString}, Chars: chars, Hash: hash}
}

func (s *ObjString) String() string { return s.Chars }

// FNV1a32 computes the 32-bit FNV-1a hash used to key interned strings.
func FNV1a32(s string) uint32 {
	const (
		offset uint32 = 2166136261
		prime  uint32 = 16777619
	)
	h := offset
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}

// ObjFunction is a compiled function: its arity, declared upvalue count, and
// bytecode chunk. Produced only by the compiler and never mutated once
// compilation of its body finishes.
type ObjFunction struct {
	header
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *ObjString // nil for the implicit top-level script function
}

func NewFunction() *ObjFunction {
	return &ObjFunction{header: header{kind: ObjKindFunction}}
}

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// NativeFn is the host-callable signature backing ObjNative.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a host-provided native callable, registered into globals
// before execution (e.g. clock()).
type ObjNative struct {
	header
	Name string
	Fn   NativeFn
}

func NewNative(name string, fn NativeFn) *ObjNative {
	return &ObjNative{header: header{kind: ObjKindNative}, Name: name, Fn: fn}
}

func (n *ObjNative) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }

// ObjUpvalue mediates a closure's access to a variable captured from an
// enclosing scope. It is *open* while Location points into a live stack
// slot, and *closed* once Closed holds the value directly; Location then
// points at Closed itself so reads/writes stay uniform.
type ObjUpvalue struct {
	header
	Location *Value
	Closed   Value
	StackIdx int // index into the VM value stack while open; used for list ordering
}

func NewUpvalue(slot *Value, stackIdx int) *ObjUpvalue {
	return &ObjUpvalue{header: header{kind: ObjKindUpvalue}, Location: slot, StackIdx: stackIdx}
}

func (u *ObjUpvalue) String() string { return "<upvalue>" }

func (u *ObjUpvalue) IsOpen() bool { return u.Location != &u.Closed }

func (u *ObjUpvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// ObjClosure pairs a Function with the runtime Upvalue references its
// declared upvalues resolve to.
type ObjClosure struct {
	header
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func NewClosure(fn *ObjFunction) *ObjClosure {
	return &ObjClosure{
		header:   header{kind: ObjKindClosure},
		Function: fn,
		Upvalues: make([]*ObjUpvalue, fn.UpvalueCount),
	}
}

func (c *ObjClosure) String() string { return c.Function.String() }

// ObjClass is a class: its name and a method table (name -> Closure).
// Inheritance copies the superclass's method table into the subclass's at
// class-creation time (OP_INHERIT), so method lookup only ever needs to
// consult one table.
type ObjClass struct {
	header
	Name    *ObjString
	Methods map[string]*ObjClosure
}

func NewClass(name *ObjString) *ObjClass {
	return &ObjClass{header: header{kind: ObjKindClass}, Name: name, Methods: make(map[string]*ObjClosure)}
}

func (c *ObjClass) String() string { return c.Name.Chars }

// ObjInstance is an instance of a class: a class reference plus a field
// table (name -> Value).
type ObjInstance struct {
	header
	Class  *ObjClass
	Fields map[string]Value
}

func NewInstance(class *ObjClass) *ObjInstance {
	return &ObjInstance{header: header{kind: ObjKindInstance}, Class: class, Fields: make(map[string]Value)}
}

func (i *ObjInstance) String() string { return i.Class.Name.Chars + " instance" }

// ObjBoundMethod is produced when an instance method is accessed as a
// first-class value (GET_PROPERTY resolving to a method rather than a
// field): it remembers the receiver so a later call still resolves `this`.
type ObjBoundMethod struct {
	header
	Receiver Value
	Method   *ObjClosure
}

func NewBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	return &ObjBoundMethod{header: header{kind: ObjKindBoundMethod}, Receiver: receiver, Method: method}
}

func (b *ObjBoundMethod) String() string { return b.Method.String() }

// String renders an ObjKind for diagnostics.
func (k ObjKind) String() string {
	switch k {
	case ObjKindString:
		return "string"
	case ObjKindFunction:
		return "function"
	case ObjKindNative:
		return "native"
	case ObjKindClosure:
		return "closure"
	case ObjKindUpvalue:
		return "upvalue"
	case ObjKindClass:
		return "class"
	case ObjKindInstance:
		return "instance"
	case ObjKindBoundMethod:
		return "bound method"
	default:
		return "unknown"
	}
}
