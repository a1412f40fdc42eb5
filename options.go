package jitson

// Flags selects optional parser behavior on a Source or a top-level parse
// call. The zero value is strict JSON.
type Flags uint32

const (
	// Strict accepts only RFC 8259 JSON; it is the zero value and is
	// listed here only for readability at call sites.
	Strict Flags = 0

	// AllowHex accepts `0x`/`0X`-prefixed unsigned integer literals in
	// addition to decimal numbers.
	AllowHex Flags = 1 << (iota - 1)

	// AllowConsts substitutes a bare identifier that matches a
	// registered constant name with that constant's value.
	AllowConsts

	// AllowIdents retains a bare, non-keyword identifier that matches no
	// registered constant as an identifier-typed value instead of
	// rejecting it as a syntax error.
	AllowIdents
)

// Has reports whether every bit in mask is set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }
