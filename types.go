package jitson

import (
	"sync"
	"sync/atomic"
)

// TypeDescriptor describes one registered type: how big a scalar cell of
// this type is, how to measure/clone/free/serialize a value of it. Size
// and Len may be nil for types that never need them (Size defaults to 1
// cell, Len to the cell's own length word).
type TypeDescriptor struct {
	Name string

	// Size returns the number of cells v occupies, for types whose span
	// isn't simply "1" or the builtin collection/string accounting.
	Size func(v Value) uint32

	// Len returns the element/member/byte count reported by Value.Len,
	// for types that need a custom definition of length.
	Len func(v Value) uint32

	// Test reports whether two values of this type are equal.
	Test func(a, b Value) bool

	// Clone deep-copies v's type-specific payload into dst (already
	// positioned at the right cell(s) in dst's stack).
	Clone func(dst *Stack, v Value) error

	// Free is the per-type release hook. Document.Free does not call it;
	// IsOwn strings are released through the callbacks recorded by
	// Stack.AddExternalString (see ownership.go).
	Free func(v Value)

	// Serialize appends v's JSON text form to dst.
	Serialize func(dst []byte, v Value) []byte
}

type typeRegistry struct {
	mu    sync.Mutex // guards registration only
	table atomic.Pointer[[]TypeDescriptor]
}

var types typeRegistry

// builtinTypeTable builds the initial MinTypes-entry descriptor table. It
// is called lazily (from RegisterType or typeDescriptor, whichever a
// package-init-order extension type reaches first) rather than from a
// plain func init(), because Go only guarantees init functions run in
// file-name order within a package, and an extension type's own init
// (ident.go) must be able to call RegisterType regardless of whether its
// file happens to sort before this one.
func builtinTypeTable() []TypeDescriptor {
	t := make([]TypeDescriptor, MinTypes)
	t[TypeInvalid] = TypeDescriptor{Name: "invalid"}
	t[TypeNull] = TypeDescriptor{Name: "null", Serialize: serializeNull}
	t[TypeBool] = TypeDescriptor{Name: "bool", Test: testBool, Serialize: serializeBool}
	t[TypeNumber] = TypeDescriptor{Name: "number", Test: testNumber, Serialize: serializeNumber}
	t[TypeString] = TypeDescriptor{
		Name:      "string",
		Size:      stringSize,
		Test:      testString,
		Clone:     cloneString,
		Free:      freeString,
		Serialize: serializeString,
	}
	t[TypeArray] = TypeDescriptor{
		Name:      "array",
		Len:       arrayLen,
		Test:      testArray,
		Clone:     cloneCollection,
		Free:      freeCollection,
		Serialize: serializeArray,
	}
	t[TypeObject] = TypeDescriptor{
		Name:      "object",
		Len:       objectLen,
		Test:      testObject,
		Clone:     cloneCollection,
		Free:      freeCollection,
		Serialize: serializeObject,
	}
	t[TypeReference] = TypeDescriptor{
		Name:      "reference",
		Test:      testReference,
		Serialize: serializeReference,
	}
	return t
}

// ensureTable returns the current table, initializing it to the builtin
// set on first use.
func (r *typeRegistry) ensureTable() []TypeDescriptor {
	if p := r.table.Load(); p != nil {
		return *p
	}
	t := builtinTypeTable()
	r.table.CompareAndSwap(nil, &t)
	return *r.table.Load()
}

// RegisterType adds a new type descriptor and returns its allocated type
// id. Registration takes a lock (it happens during single-threaded
// startup, per the concurrency model); lookups afterward are a single
// atomic load and never block.
func RegisterType(d TypeDescriptor) uint16 {
	types.mu.Lock()
	defer types.mu.Unlock()
	old := types.ensureTable()
	next := make([]TypeDescriptor, len(old)+1)
	copy(next, old)
	next[len(old)] = d
	types.table.Store(&next)
	return uint16(len(old))
}

func typeDescriptor(t uint16) *TypeDescriptor {
	table := types.ensureTable()
	if int(t) >= len(table) {
		return nil
	}
	return &table[t]
}

func typeName(t uint16) string {
	if d := typeDescriptor(t); d != nil && d.Name != "" {
		return d.Name
	}
	return "unknown"
}
