package jitson

import (
	"bytes"

	"github.com/sxeproject/jitson/internal/dict"
)

// GetBool returns v's boolean payload; the caller is responsible for
// checking Type() == TypeBool first, matching the original's
// undefined-behavior-on-wrong-type contract for scalar getters.
func (v Value) GetBool() bool { return v.cell().GetBool() }

// GetUint returns v's payload as an unsigned integer.
func (v Value) GetUint() uint64 { return v.cell().GetUint() }

// GetFloat returns v's payload as a double, converting from an unsigned
// integer representation if the number was parsed without a fraction or
// exponent.
func (v Value) GetFloat() float64 {
	c := v.cell()
	if c.HasFlag(FlagIsUint) {
		return float64(c.GetUint())
	}
	return c.GetFloat()
}

// IsUint reports whether a TypeNumber value's payload is an unsigned
// integer rather than a double.
func (v Value) IsUint() bool { return v.cell().HasFlag(FlagIsUint) }

// TypeName returns the registered name of v's type ("string", "array",
// and so on), or "unknown" for an unregistered type id.
func (v Value) TypeName() string { return typeName(v.Type()) }

// stringBytes returns the byte content of a TypeString (or identifier)
// value: an external reference's bytes live in the document's string side
// table (FlagIsRef, see Stack.AddExternalString); anything else is a copied
// string, inline in the head cell's own payload when 7 bytes or shorter, or
// spilling across raw continuation cells in the same span otherwise (see
// Stack.pushCopiedText).
func (v Value) stringBytes() []byte {
	c := v.cell()
	n := c.Len()
	if c.HasFlag(FlagIsRef) {
		return v.doc.strings[c.GetIndex()][:n]
	}
	if n <= 7 {
		return c.InlineStringBytes()[:n]
	}
	buf := make([]byte, n)
	copy(buf, c.InlineStringBytes()[:8])
	rem := buf[8:]
	idx := v.idx + 1
	for len(rem) > 0 {
		raw := v.doc.cells[idx].rawBytes()
		k := len(rem)
		if k > 16 {
			k = 16
		}
		copy(rem[:k], raw[:k])
		rem = rem[k:]
		idx++
	}
	return buf
}

// stringSize returns the cell count of a copied string's span: one cell
// when it fits inline; otherwise the head cell plus 1 + (len-8)/16
// continuation cells, the last of which always has room for the
// terminating NUL. An external reference (FlagIsRef) is always one cell.
func stringSize(v Value) uint32 {
	c := v.cell()
	n := c.Len()
	if c.HasFlag(FlagIsRef) || n <= 7 {
		return 1
	}
	return 2 + (n-8)/16
}

// GetString returns a TypeString value's content as a Go string (a copy).
func (v Value) GetString() string { return string(v.stringBytes()) }

// ArrayGetElement returns the i'th element of a TypeArray value.
func (v Value) ArrayGetElement(i uint32) (Value, bool) {
	if v.Type() != TypeArray || i >= v.Len() {
		return Value{}, false
	}
	table := v.ensureIndexed()
	return Value{doc: v.doc, idx: table[i]}, true
}

// ObjectGetMember looks up a member of a TypeObject value by name. Once
// the object has been indexed (see ensureIndexed), the lookup is a
// dictionary probe rather than a linear scan.
func (v Value) ObjectGetMember(name string) (Value, bool) {
	if v.Type() != TypeObject {
		return Value{}, false
	}
	v.ensureIndexed()
	d := v.doc.memberDicts[v.idx].Load()
	if d == nil {
		return Value{}, false
	}
	valIdx, ok := d.Find([]byte(name))
	if !ok {
		return Value{}, false
	}
	return Value{doc: v.doc, idx: valIdx}, true
}

// forEachMember walks an object's (name, value) pairs in storage order,
// stopping early if fn returns false.
func (v Value) forEachMember(fn func(name string, member Value) bool) {
	if v.Type() != TypeObject {
		return
	}
	n := v.Len()
	table := v.ensureIndexed()
	for i := uint32(0); i < n; i++ {
		keyIdx := table[2*i]
		valIdx := table[2*i+1]
		name := (Value{doc: v.doc, idx: keyIdx}).GetString()
		if !fn(name, Value{doc: v.doc, idx: valIdx}) {
			return
		}
	}
}

// ensureIndexed returns v's offset table, materializing it on first use.
// Publication is a single atomic pointer store: a concurrent reader either
// observes the pre-index nil (and must fall through to walking the span
// itself, which this implementation never needs to do because a freshly
// built collection's span is always contiguous) or the fully-built table,
// never a partially written one, matching spec.md's lazy-indexing
// invariant. The cell's own INDEXED flag is set (via a second, independent
// atomic publication on the type/flags word) by whichever caller actually
// won the table-publishing race, mirroring the size-to-pointer transition
// the original performs in a single payload word.
func (v Value) ensureIndexed() []uint32 {
	slot := &v.doc.indexTables[v.idx]
	if table := slot.Load(); table != nil {
		return *table
	}
	table := v.buildIndex()
	if v.Type() == TypeObject {
		d := dict.New(len(table) / 2)
		for i := 0; i+1 < len(table); i += 2 {
			name := (Value{doc: v.doc, idx: table[i]}).GetString()
			d.Add([]byte(name), table[i+1])
		}
		v.doc.memberDicts[v.idx].CompareAndSwap(nil, d)
	}
	if slot.CompareAndSwap(nil, &table) {
		v.cell().addFlag(FlagIndexed)
	}
	return *slot.Load()
}

// buildIndex walks the contiguous, not-yet-indexed span of a collection
// and computes the offset table: one entry per array element, or two
// (key index, value index) per object member.
func (v Value) buildIndex() []uint32 {
	n := v.Len()
	isObject := v.Type() == TypeObject
	var table []uint32
	idx := v.idx + 1
	for i := uint32(0); i < n; i++ {
		if isObject {
			keyIdx := idx
			idx += uint32((Value{doc: v.doc, idx: keyIdx}).Size())
			valIdx := idx
			idx += uint32((Value{doc: v.doc, idx: valIdx}).Size())
			table = append(table, keyIdx, valIdx)
		} else {
			table = append(table, idx)
			idx += uint32((Value{doc: v.doc, idx: idx}).Size())
		}
	}
	return table
}

func arrayLen(v Value) uint32  { return v.cell().Len() }
func objectLen(v Value) uint32 { return v.cell().Len() }

func testBool(a, b Value) bool   { return a.GetBool() == b.GetBool() }
func testNumber(a, b Value) bool { return a.GetFloat() == b.GetFloat() }
func testString(a, b Value) bool { return bytes.Equal(a.stringBytes(), b.stringBytes()) }

func testArray(a, b Value) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := uint32(0); i < a.Len(); i++ {
		ea, _ := a.ArrayGetElement(i)
		eb, _ := b.ArrayGetElement(i)
		if !valuesEqual(ea, eb) {
			return false
		}
	}
	return true
}

func testObject(a, b Value) bool {
	if a.Len() != b.Len() {
		return false
	}
	eq := true
	a.forEachMember(func(name string, av Value) bool {
		bv, ok := b.ObjectGetMember(name)
		if !ok || !valuesEqual(av, bv) {
			eq = false
			return false
		}
		return true
	})
	return eq
}

func testReference(a, b Value) bool {
	ta := a.doc.refs[a.cell().GetIndex()]
	tb := b.doc.refs[b.cell().GetIndex()]
	return valuesEqual(ta, tb)
}

// valuesEqual dispatches to the registered type's Test function, the
// general equality notion any accessor or testable-property check uses.
func valuesEqual(a, b Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	d := typeDescriptor(a.Type())
	if d == nil || d.Test == nil {
		return true
	}
	return d.Test(a, b)
}
