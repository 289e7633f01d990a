// Package table implements the open-addressed hash table used for smog's
// global-variable table and the string intern pool.
//
// Class method tables and instance field tables are plain Go maps
// (pkg/value's ObjClass.Methods, ObjInstance.Fields) rather than *Table:
// pkg/value cannot import pkg/table, since Table itself is keyed on
// *value.ObjString, so a Table-backed Methods/Fields field here would
// create an import cycle. AddAll and FindString still give this package the
// full API clox's Table exposes; only their call sites differ from clox's
// (globals and interning here, map assignment/range for OP_INHERIT and
// property access in pkg/vm).
//
// Keys are always interned *value.ObjString pointers, so a key comparison is
// a pointer comparison once two strings have been interned; the hash itself
// is precomputed and stored on the string, so collision probing never
// re-hashes. Load factor is capped at 0.75; capacity doubles (floor 8) when
// the cap is exceeded, following clox's GROW_CAPACITY policy.
//
// Deletions leave tombstones — an entry with a nil key and a `true` sentinel
// value — so that probe sequences for keys that were inserted after the
// deleted one remain unbroken. Tombstones count toward the load factor (so
// a table that is mostly tombstones still grows) but are reclaimed on the
// next insert that probes through them.
package table

import "github.com/kristofer/smog/pkg/value"

const maxLoad = 0.75
const minCapacity = 8

// tombstoneMarker is stored as the Value of a tombstone entry. Any Value
// works since tombstone identity is carried by Key == nil; true is used to
// mirror clox's BOOL_VAL(true) tombstone marker.
var tombstoneMarker = value.Bool(true)

type Entry struct {
	Key   *value.ObjString
	Value value.Value
	used  bool // false for a genuinely empty slot, true for live or tombstone
}

// Table is smog's open-addressing hash table.
type Table struct {
	count   int // live entries + tombstones
	entries []Entry
}

// New returns an empty Table. The zero Table is also directly usable; New
// exists for symmetry with the rest of the package's constructors.
func New() *Table { return &Table{} }

func (t *Table) Count() int { return t.count }
func (t *Table) Capacity() int { return len(t.entries) }

// Get looks up key, returning its value and whether it was found.
func (t *Table) Get(key *value.ObjString) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.Nil, false
	}
	e := t.findEntry(t.entries, key)
	if e.Key == nil {
		return value.Nil, false
	}
	return e.Value, true
}

// Set inserts or updates key -> val. Returns true if this created a new
// key (as opposed to overwriting an existing one).
func (t *Table) Set(key *value.ObjString, val value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.grow(growCapacity(len(t.entries)))
	}
	e := t.findEntry(t.entries, key)
	isNew := e.Key == nil
	if isNew && !isTombstone(e) {
		t.count++
	}
	e.Key = key
	e.Value = val
	e.used = true
	return isNew
}

// Delete removes key, leaving a tombstone so later probes are unaffected.
func (t *Table) Delete(key *value.ObjString) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.findEntry(t.entries, key)
	if e.Key == nil {
		return false
	}
	e.Key = nil
	e.Value = tombstoneMarker
	return true
}

// AddAll copies every live entry from src into t. Nothing in pkg/vm calls
// this directly (class method tables are plain maps, see the package
// doc); it is kept as part of Table's public surface for any future
// Table-backed table (e.g. a module-level symbol table) and is exercised
// directly in this package's tests.
func (t *Table) AddAll(src *Table) {
	for i := range src.entries {
		e := &src.entries[i]
		if e.Key != nil {
			t.Set(e.Key, e.Value)
		}
	}
}

// FindString resolves the canonical interned ObjString for a byte sequence,
// if one already exists. It compares length, hash, and bytes to rule out
// collisions, used both to intern newly created strings and to find
// canonical keys during compilation.
func (t *Table) FindString(chars string, hash uint32) *value.ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint32(len(t.entries) - 1)
	idx := hash & mask
	for {
		e := &t.entries[idx]
		if e.Key == nil {
			if !isTombstone(e) {
				return nil
			}
		} else if e.Key.Hash == hash && e.Key.Chars == chars {
			return e.Key
		}
		idx = (idx + 1) & mask
	}
}

// Each calls fn for every live entry. fn must not mutate t.
func (t *Table) Each(fn func(key *value.ObjString, val value.Value)) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Key != nil {
			fn(e.Key, e.Value)
		}
	}
}

// RemoveWhite deletes every entry whose key is not marked, used by the
// collector to weaken the intern table before sweeping unreachable strings
// (must run before sweep, per the garbage collector's invariant).
func (t *Table) RemoveWhite() {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Key != nil && !e.Key.Marked() {
			e.Key = nil
			e.Value = tombstoneMarker
		}
	}
}

func isTombstone(e *Entry) bool {
	return e.Key == nil && e.used
}

func growCapacity(cap int) int {
	if cap < minCapacity {
		return minCapacity
	}
	return cap * 2
}

func (t *Table) grow(newCap int) {
	newEntries := make([]Entry, newCap)
	t.count = 0
	for i := range t.entries {
		e := &t.entries[i]
		if e.Key == nil {
			continue
		}
		dst := t.findEntry(newEntries, e.Key)
		dst.Key = e.Key
		dst.Value = e.Value
		dst.used = true
		t.count++
	}
	t.entries = newEntries
}

// findEntry runs the linear probe over entries, returning the entry whose
// key matches if the probe finds one; otherwise it returns the first
// tombstone passed on the way, or the empty slot that ended the probe if
// there was none.
func (t *Table) findEntry(entries []Entry, key *value.ObjString) *Entry {
	mask := uint32(len(entries) - 1)
	idx := key.Hash & mask
	var tombstone *Entry
	for {
		e := &entries[idx]
		switch {
		case e.Key == nil:
			if !isTombstone(e) {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		case e.Key == key:
			return e
		}
		idx = (idx + 1) & mask
	}
}
