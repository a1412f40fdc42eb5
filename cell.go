// Package jitson implements a packed, contiguous token representation for
// JSON-like documents. A document is a single arena of fixed-size 16-byte
// cells: scalars occupy one cell, composite values (arrays, objects,
// multi-cell strings) occupy a contiguous span of cells that records its own
// length, so a document can be measured, cloned and walked by index
// arithmetic alone — there is no pointer-linked tree and no per-node heap
// allocation once a parse settles.
package jitson

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

// CellSize is the fixed size, in bytes, of a single cell.
const CellSize = 16

// Cell is the fixed-size storage unit of a document: a 32-bit type+flags
// word, a 32-bit len/link word, and an 8-byte payload overlaid as one of
// several interpretations (see the accessor methods below). Cell carries no
// pointers, so a []Cell arena is flat, contiguous memory exactly like the C
// original's struct sxe_jitson array — cross-cell references, owned string
// bytes and materialized offset tables live in side tables on the owning
// Document instead of inside the cell itself, because Go cannot safely
// overlay a pointer onto an untyped byte payload the way a C union does.
type Cell struct {
	typeAndFlags uint32
	lenOrLink    uint32
	payload      [8]byte
}

// Type and flag bits, mirroring the bit layout of the C sxe_jitson header.
const (
	TypeMask uint32 = 0x0000FFFF

	FlagIsUint  uint32 = 0x08000000 // number cell holds an unsigned integer
	FlagIsKey   uint32 = 0x10000000 // string cell is an object member name
	FlagIsRef   uint32 = 0x20000000 // string cell's payload indexes external storage
	FlagIsOwn   uint32 = 0x40000000 // owning cell must free the referenced bytes (implies IsRef)
	FlagIndexed uint32 = 0x40000000 // collection cell's offset table has been materialized (overlays IsOwn)
	FlagAlloced uint32 = 0x80000000 // head of an owned, heap-allocated span
)

// Built-in type ids.
const (
	TypeInvalid uint16 = iota
	TypeNull
	TypeBool
	TypeNumber
	TypeString
	TypeArray
	TypeObject
	TypeReference

	// MinTypes is the minimum size of the type table: built-in ids are
	// always contiguous at indices 0..MinTypes-1, even before any
	// additional type is registered dynamically.
	MinTypes = 8
)

// Type returns the low-16-bit type id of the cell. Reads go through
// sync/atomic because the high half of this same word is the one field a
// finished, otherwise read-only document still mutates: the INDEXED flag,
// set by a competing reader the first time a collection is indexed (see
// ensureIndexed). A plain load racing that flag-set would be a data race
// under the Go memory model even though the type bits themselves never
// change after construction.
func (c *Cell) Type() uint16 { return uint16(atomic.LoadUint32(&c.typeAndFlags) & TypeMask) }

// Flags returns the high-16-bit flag word of the cell.
func (c *Cell) Flags() uint32 { return atomic.LoadUint32(&c.typeAndFlags) &^ TypeMask }

// HasFlag reports whether every bit in mask is set on the cell's flag word.
func (c *Cell) HasFlag(mask uint32) bool { return atomic.LoadUint32(&c.typeAndFlags)&mask == mask }

func (c *Cell) setType(t uint16, flags uint32) {
	atomic.StoreUint32(&c.typeAndFlags, uint32(t)&TypeMask|(flags&^TypeMask))
}

// addFlag ORs mask into the flag word with a compare-and-swap retry loop,
// the single-word-atomic publication pattern spec'd for the collection
// indexing transition (see ensureIndexed) and reused here for any other
// flag a reader sets on an otherwise-finished cell.
func (c *Cell) addFlag(mask uint32) {
	for {
		old := atomic.LoadUint32(&c.typeAndFlags)
		next := old | mask
		if next == old || atomic.CompareAndSwapUint32(&c.typeAndFlags, old, next) {
			return
		}
	}
}

func (c *Cell) clearFlag(mask uint32) {
	for {
		old := atomic.LoadUint32(&c.typeAndFlags)
		next := old &^ mask
		if next == old || atomic.CompareAndSwapUint32(&c.typeAndFlags, old, next) {
			return
		}
	}
}

// Len returns the raw second word: a string length, or an element/member
// count for a collection.
func (c *Cell) Len() uint32     { return c.lenOrLink }
func (c *Cell) setLen(v uint32) { c.lenOrLink = v }

// GetUint reads the payload as an unsigned 64-bit integer: the JSON integer
// value, or (before indexing) the cell count of a collection's span.
func (c *Cell) GetUint() uint64 { return binary.LittleEndian.Uint64(c.payload[:]) }

// SetUint writes an unsigned 64-bit integer into the payload.
func (c *Cell) SetUint(v uint64) { binary.LittleEndian.PutUint64(c.payload[:], v) }

// GetFloat reads the payload as an IEEE-754 double.
func (c *Cell) GetFloat() float64 { return math.Float64frombits(c.GetUint()) }

// SetFloat writes an IEEE-754 double into the payload.
func (c *Cell) SetFloat(v float64) { c.SetUint(math.Float64bits(v)) }

// GetBool reads the payload as a boolean.
func (c *Cell) GetBool() bool { return c.payload[0] != 0 }

// SetBool writes a boolean into the payload.
func (c *Cell) SetBool(v bool) {
	if v {
		c.payload[0] = 1
	} else {
		c.payload[0] = 0
	}
}

// GetIndex reads the payload as a 32-bit index into one of the owning
// Document's side tables (external string bytes, or the targets of
// Reference cells). A raw machine pointer has no
// stable meaning once an arena is cloned or relocated, so jitson always
// indirects through an index instead.
func (c *Cell) GetIndex() uint32 { return uint32(c.GetUint()) }

// SetIndex writes a side-table index into the payload.
func (c *Cell) SetIndex(i uint32) { c.SetUint(uint64(i)) }

// InlineStringBytes returns the writable view over the 8-byte payload used
// to store a short string (7 bytes or less) directly in its own cell, with
// no out-of-band allocation; a longer copied string keeps its first 8 bytes
// here and the rest in raw continuation cells (see Stack.pushCopiedText).
func (c *Cell) InlineStringBytes() []byte { return c.payload[:] }

// rawBytes reinterprets the entire 16-byte cell as an opaque byte chunk,
// the Go stand-in for the original's "reinterpret a whole token as a raw
// byte run" continuation-cell trick: a copied string or identifier longer
// than the 7-byte inline payload spills its tail into cells that carry no
// type or length of their own, only data.
func (c *Cell) rawBytes() []byte {
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:4], c.typeAndFlags)
	binary.LittleEndian.PutUint32(buf[4:8], c.lenOrLink)
	copy(buf[8:16], c.payload[:])
	return buf[:]
}

// setRawBytes writes up to 16 bytes of opaque data across the cell's three
// fields, zero-padding anything past len(b). Used only by continuation
// cells, which are never interpreted through Type()/Len()/payload again.
func (c *Cell) setRawBytes(b []byte) {
	var buf [16]byte
	copy(buf[:], b)
	c.typeAndFlags = binary.LittleEndian.Uint32(buf[0:4])
	c.lenOrLink = binary.LittleEndian.Uint32(buf[4:8])
	copy(c.payload[:], buf[8:16])
}

// partialParent is the 1-based index of the collection enclosing this one
// under construction, or 0 if this is the outermost collection. It is a
// parser-private field, valid only while a collection is under
// construction on a Stack, and is overwritten by the final span count
// once CloseCollection runs.
func (c *Cell) partialParent() uint32 { return binary.LittleEndian.Uint32(c.payload[4:8]) }
func (c *Cell) setPartialParent(v uint32) {
	binary.LittleEndian.PutUint32(c.payload[4:8], v)
}
