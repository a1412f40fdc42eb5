package jitson

import (
	"sync/atomic"

	"github.com/sxeproject/jitson/internal/dict"
)

// Document owns a completed, immutable span of cells plus the side tables
// that cells too large or too dynamic to fit in 8 bytes indirect through:
// external string bytes, a materialized offset table per indexed
// collection, and resolved targets for Reference cells (which may point
// into this Document or into another one entirely — a constants table, for
// instance). A raw pointer into another Document's cells would be unsafe to
// keep around past that Document's lifetime in C; here it is just a Value,
// Go's GC-safe stand-in for "pointer to a jitson".
type Document struct {
	cells   []Cell
	strings [][]byte
	refs    []Value

	// indexTables holds one slot per cell, populated lazily the first
	// time a collection is indexed for random access. A nil entry means
	// "not yet materialized, the cell's own GetUint() span count is
	// authoritative"; this mirrors spec.md's lazy-indexing invariant
	// with an out-of-band slot instead of a payload punned pointer.
	indexTables []atomic.Pointer[[]uint32]

	// memberDicts holds, per object cell, a name -> member-value-index
	// lookup built alongside its offset table the first time the object
	// is indexed, so every member lookup is a hash probe instead of a
	// linear scan.
	memberDicts []atomic.Pointer[dict.Dict]

	// owned lists the release callback for every IS_OWN external string in
	// this document's span, invoked by Free.
	owned []ownedEntry
}

// newDocument wraps a finished cell span extracted from a Stack.
func newDocument(cells []Cell, strings [][]byte, refs []Value) *Document {
	return &Document{
		cells:       cells,
		strings:     strings,
		refs:        refs,
		indexTables: make([]atomic.Pointer[[]uint32], len(cells)),
		memberDicts: make([]atomic.Pointer[dict.Dict], len(cells)),
	}
}

// Root returns the document's top-level value, at cell index 0.
func (d *Document) Root() Value { return Value{doc: d, idx: 0} }

// Value is a handle to one cell within a Document: the Go analog of a
// `const struct sxe_jitson *` pointer in the C original. It is a small,
// copyable pair (document, index) rather than a raw pointer because a
// document's cell slice, once extracted, never moves, but a Go pointer
// into arbitrary slice storage is not how this codebase threads document
// identity — every accessor needs to know which side tables to consult.
type Value struct {
	doc *Document
	idx uint32
}

// IsValid reports whether v refers to an actual document.
func (v Value) IsValid() bool { return v.doc != nil }

func (v Value) cell() *Cell { return &v.doc.cells[v.idx] }

// Type returns the value's type id.
func (v Value) Type() uint16 { return v.cell().Type() }

// Size returns the number of cells the value's span occupies (1 for a
// scalar; for a collection, the full span including nested members until
// indexed, after which the span size is still derivable from the offset
// table's extent).
func (v Value) Size() uint32 {
	c := v.cell()
	if !isCollectionType(c.Type()) {
		if d := typeDescriptor(c.Type()); d != nil && d.Size != nil {
			return d.Size(v)
		}
		return 1
	}
	if table := v.doc.indexTables[v.idx].Load(); table != nil {
		if n := len(*table); n > 0 {
			last := Value{doc: v.doc, idx: (*table)[n-1]}
			return (*table)[n-1] - v.idx + last.Size()
		}
		return 1
	}
	return uint32(c.GetUint())
}

// Len returns the element/member count of a collection, or the byte length
// of a string.
func (v Value) Len() uint32 {
	if d := typeDescriptor(v.Type()); d != nil && d.Len != nil {
		return d.Len(v)
	}
	return v.cell().Len()
}

func isCollectionType(t uint16) bool {
	return t == TypeArray || t == TypeObject
}
