// Package gc implements smog's tri-color mark–sweep garbage collector: the
// single global object list, the string intern table, and the
// incremental-allocation trigger that drives collection.
//
// Every heap object — strings, functions, closures, upvalues, classes,
// instances, bound methods — is created through a Heap method, which links
// it into the global object list before returning it, so the collector
// never observes a reachable-but-unrooted object (see the invariant in
// spec §4.3). Callers supply their live roots by implementing RootSource;
// the VM registers itself once at startup, and the compiler registers
// itself only for the duration of compilation, exposing its in-flight
// function stack as described in the design notes ("compiler roots").
package gc

import (
	"github.com/kristofer/smog/pkg/table"
	"github.com/kristofer/smog/pkg/value"
)

// HeapGrowFactor is the multiplier applied to bytesAllocated (at the end of
// a collection) to compute the next collection threshold.
const HeapGrowFactor = 2

// initialNextGC is the threshold (in bytes) before the very first
// collection is allowed to run, so short-lived scripts never pay for a GC
// pass at all.
const initialNextGC = 1 << 20

// RootSource is implemented by anything that holds live references into the
// heap. MarkRoots must call Heap.MarkValue/MarkObject for every Value and
// Object it directly owns; the collector traces from there.
type RootSource interface {
	MarkRoots(h *Heap)
}

// LogFunc receives a one-line summary after each collection, used for
// SMOG_GC_LOG tracing; it is never called when nil.
type LogFunc func(beforeBytes, afterBytes, nextGC uint64)

// Heap owns every live object, the string intern table, and the
// incremental-allocation GC trigger.
type Heap struct {
	objects value.Object
	strings *table.Table

	bytesAllocated uint64
	nextGC         uint64
	stress         bool

	gray []value.Object

	vmRoots       RootSource
	compilerRoots RootSource

	onCollect LogFunc

	collections int
}

// New creates an empty heap. stress forces a collection before every
// allocation, used by tests to exercise GC safety (spec §8).
func New(stress bool) *Heap {
	return &Heap{
		strings: table.New(),
		nextGC:  initialNextGC,
		stress:  stress,
	}
}

// SetLogFunc installs a callback invoked after every collection.
func (h *Heap) SetLogFunc(fn LogFunc) { h.onCollect = fn }

// SetVMRoots registers the VM's permanent root source.
func (h *Heap) SetVMRoots(r RootSource) { h.vmRoots = r }

// SetCompilerRoots registers (or clears, with nil) the compiler's transient
// root source, active only while a compilation is in flight.
func (h *Heap) SetCompilerRoots(r RootSource) { h.compilerRoots = r }

func (h *Heap) Collections() int { return h.collections }
func (h *Heap) BytesAllocated() uint64 { return h.bytesAllocated }
func (h *Heap) NextGC() uint64 { return h.nextGC }

// Strings exposes the intern table, e.g. for diagnostics.
func (h *Heap) Strings() *table.Table { return h.strings }

// link adds a freshly constructed object to the global object list and
// accounts for its size, possibly triggering a collection first. Every
// allocator in this file must route through link so no object is ever
// reachable-but-unlinked.
func (h *Heap) link(o value.Object, size uint64) {
	if h.stress {
		h.Collect()
	} else if h.bytesAllocated+size > h.nextGC {
		h.Collect()
	}
	o.SetMarked(false)
	o.SetNext(h.objects)
	h.objects = o
	h.bytesAllocated += size
}

// InternString returns the canonical ObjString for chars, allocating and
// linking a new one only if this exact byte sequence has never been seen.
func (h *Heap) InternString(chars string) *value.ObjString {
	hash := value.FNV1a32(chars)
	if existing := h.strings.FindString(chars, hash); existing != nil {
		return existing
	}
	s := value.NewString(chars, hash)
	h.link(s, uint64(len(chars))+stringOverhead)
	h.strings.Set(s, value.Nil)
	return s
}

func (h *Heap) NewFunction() *value.ObjFunction {
	f := value.NewFunction()
	h.link(f, functionOverhead)
	return f
}

func (h *Heap) NewNative(name string, fn value.NativeFn) *value.ObjNative {
	n := value.NewNative(name, fn)
	h.link(n, nativeOverhead)
	return n
}

func (h *Heap) NewClosure(fn *value.ObjFunction) *value.ObjClosure {
	c := value.NewClosure(fn)
	h.link(c, closureOverhead+uint64(fn.UpvalueCount)*pointerSize)
	return c
}

func (h *Heap) NewUpvalue(slot *value.Value, stackIdx int) *value.ObjUpvalue {
	u := value.NewUpvalue(slot, stackIdx)
	h.link(u, upvalueOverhead)
	return u
}

func (h *Heap) NewClass(name *value.ObjString) *value.ObjClass {
	c := value.NewClass(name)
	h.link(c, classOverhead)
	return c
}

func (h *Heap) NewInstance(class *value.ObjClass) *value.ObjInstance {
	i := value.NewInstance(class)
	h.link(i, instanceOverhead)
	return i
}

func (h *Heap) NewBoundMethod(receiver value.Value, method *value.ObjClosure) *value.ObjBoundMethod {
	b := value.NewBoundMethod(receiver, method)
	h.link(b, boundMethodOverhead)
	return b
}

// Rough per-object byte costs used only to drive the incremental-allocation
// GC trigger deterministically; they do not need to match Go's real
// allocator accounting.
const (
	pointerSize         = 8
	stringOverhead      = 32
	functionOverhead    = 64
	nativeOverhead      = 32
	closureOverhead     = 32
	upvalueOverhead     = 40
	classOverhead       = 48
	instanceOverhead    = 48
	boundMethodOverhead = 32
)

// MarkValue marks v's underlying object (a no-op for non-object values).
func (h *Heap) MarkValue(v value.Value) {
	if v.IsObject() && v.AsObject() != nil {
		h.MarkObject(v.AsObject())
	}
}

// MarkObject marks o gray (queues it for tracing) unless already marked.
func (h *Heap) MarkObject(o value.Object) {
	if o == nil || o.Marked() {
		return
	}
	o.SetMarked(true)
	h.gray = append(h.gray, o)
}

// Collect runs one full tri-color mark–sweep cycle: mark roots, trace
// outgoing references to exhaustion, weaken the intern table, then sweep
// unmarked objects from the global list.
func (h *Heap) Collect() {
	before := h.bytesAllocated

	if h.vmRoots != nil {
		h.vmRoots.MarkRoots(h)
	}
	if h.compilerRoots != nil {
		h.compilerRoots.MarkRoots(h)
	}

	h.traceReferences()

	// The intern table holds weak references: remove any entry whose key
	// string was not marked, before sweep frees it.
	h.strings.RemoveWhite()

	h.sweep()

	h.nextGC = h.bytesAllocated * HeapGrowFactor
	if h.nextGC < initialNextGC {
		h.nextGC = initialNextGC
	}
	h.collections++

	if h.onCollect != nil {
		h.onCollect(before, h.bytesAllocated, h.nextGC)
	}
}

func (h *Heap) traceReferences() {
	for len(h.gray) > 0 {
		n := len(h.gray) - 1
		obj := h.gray[n]
		h.gray = h.gray[:n]
		h.blacken(obj)
	}
}

// blacken marks every object directly reachable from obj.
func (h *Heap) blacken(obj value.Object) {
	switch o := obj.(type) {
	case *value.ObjClosure:
		h.MarkObject(o.Function)
		for _, uv := range o.Upvalues {
			if uv != nil {
				h.MarkObject(uv)
			}
		}
	case *value.ObjFunction:
		if o.Name != nil {
			h.MarkObject(o.Name)
		}
		for _, c := range o.Chunk.Constants {
			h.MarkValue(c)
		}
	case *value.ObjUpvalue:
		h.MarkValue(o.Closed)
	case *value.ObjClass:
		h.MarkObject(o.Name)
		for _, m := range o.Methods {
			h.MarkObject(m)
		}
	case *value.ObjInstance:
		h.MarkObject(o.Class)
		for _, v := range o.Fields {
			h.MarkValue(v)
		}
	case *value.ObjBoundMethod:
		h.MarkValue(o.Receiver)
		h.MarkObject(o.Method)
	case *value.ObjString, *value.ObjNative:
		// leaves: no outgoing references
	}
}

// sweep walks the global object list, dropping unmarked objects and
// clearing the mark bit on survivors.
func (h *Heap) sweep() {
	var prev value.Object
	cur := h.objects
	for cur != nil {
		if cur.Marked() {
			cur.SetMarked(false)
			prev = cur
			cur = cur.Next()
			continue
		}
		unreached := cur
		cur = cur.Next()
		if prev != nil {
			prev.SetNext(cur)
		} else {
			h.objects = cur
		}
		h.bytesAllocated -= sizeOf(unreached)
	}
}

func sizeOf(o value.Object) uint64 {
	switch v := o.(type) {
	case *value.ObjString:
		return uint64(len(v.Chars)) + stringOverhead
	case *value.ObjFunction:
		return functionOverhead
	case *value.ObjNative:
		return nativeOverhead
	case *value.ObjClosure:
		return closureOverhead + uint64(len(v.Upvalues))*pointerSize
	case *value.ObjUpvalue:
		return upvalueOverhead
	case *value.ObjClass:
		return classOverhead
	case *value.ObjInstance:
		return instanceOverhead
	case *value.ObjBoundMethod:
		return boundMethodOverhead
	default:
		return 0
	}
}
