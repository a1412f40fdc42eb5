package jitson

// identType is the dynamically registered type id for bare identifiers
// retained under the AllowIdents parser extension — same storage shape as
// a copied TypeString (inline, or spilling into continuation cells), but
// kept distinct so callers
// can tell "the source text was a quoted string" from "the source text
// was a bare word that matched no constant" without re-parsing.
var identType uint16

func init() {
	identType = RegisterType(TypeDescriptor{
		Name:      "identifier",
		Size:      stringSize,
		Test:      testString,
		Clone:     cloneIdentifier,
		Free:      freeString,
		Serialize: serializeIdentifier,
	})
}

func cloneIdentifier(dst *Stack, v Value) error {
	return dst.AddIdentifier(v.GetString())
}

// GetIdentifier returns a TypeIdent value's text.
func (v Value) GetIdentifier() string { return v.GetString() }

// TypeIdent returns the registered identifier type id, for callers
// comparing against Value.Type().
func TypeIdent() uint16 { return identType }

func serializeIdentifier(dst []byte, v Value) []byte {
	return append(dst, v.stringBytes()...)
}
