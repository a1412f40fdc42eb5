package jitson

import (
	"strconv"
)

// Serialize appends v's JSON text representation to dst and returns the
// extended slice, dispatching through the type registry's Serialize entry
// the way the registered type descriptor set lets any registered type
// (builtin or extension) participate in output.
func Serialize(dst []byte, v Value) []byte {
	d := typeDescriptor(v.Type())
	if d == nil || d.Serialize == nil {
		return append(dst, "null"...)
	}
	return d.Serialize(dst, v)
}

// String returns v's JSON text as a freshly allocated string, the
// convenience form of Serialize for callers that don't need to build into
// an existing buffer (tests, logging, REPL-style printing — the adapted
// analog of the teacher's PrettyPrint).
func (v Value) String() string {
	return string(Serialize(nil, v))
}

func serializeNull(dst []byte, _ Value) []byte {
	return append(dst, "null"...)
}

func serializeBool(dst []byte, v Value) []byte {
	if v.cell().GetBool() {
		return append(dst, "true"...)
	}
	return append(dst, "false"...)
}

func serializeNumber(dst []byte, v Value) []byte {
	c := v.cell()
	if c.HasFlag(FlagIsUint) {
		return strconv.AppendUint(dst, c.GetUint(), 10)
	}
	return strconv.AppendFloat(dst, c.GetFloat(), 'g', -1, 64)
}

func serializeString(dst []byte, v Value) []byte {
	dst = append(dst, '"')
	for _, b := range v.stringBytes() {
		switch b {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if b < 0x20 {
				dst = append(dst, '\\', 'u')
				dst = appendHex4(dst, uint16(b))
			} else {
				dst = append(dst, b)
			}
		}
	}
	return append(dst, '"')
}

func appendHex4(dst []byte, v uint16) []byte {
	const hexDigits = "0123456789abcdef"
	return append(dst,
		hexDigits[(v>>12)&0xF], hexDigits[(v>>8)&0xF],
		hexDigits[(v>>4)&0xF], hexDigits[v&0xF])
}

func serializeArray(dst []byte, v Value) []byte {
	dst = append(dst, '[')
	n := v.Len()
	for i := uint32(0); i < n; i++ {
		if i > 0 {
			dst = append(dst, ',')
		}
		elem, _ := v.ArrayGetElement(i)
		dst = Serialize(dst, elem)
	}
	return append(dst, ']')
}

func serializeObject(dst []byte, v Value) []byte {
	dst = append(dst, '{')
	first := true
	v.forEachMember(func(name string, member Value) bool {
		if !first {
			dst = append(dst, ',')
		}
		first = false
		dst = serializeString(dst, keyValue(name))
		dst = append(dst, ':')
		dst = Serialize(dst, member)
		return true
	})
	return append(dst, '}')
}

func serializeReference(dst []byte, v Value) []byte {
	target := v.doc.refs[v.cell().GetIndex()]
	return Serialize(dst, target)
}

// keyValue wraps a bare Go string as a throwaway Value so serializeString
// can be reused for object member names without a second code path. Built
// through the ordinary Stack/AddString path rather than hand-assembling a
// cell, so it picks up the same inline-vs-continuation span encoding as
// any other copied string.
func keyValue(s string) Value {
	st := NewStack(1)
	st.AddString(s)
	doc, _ := st.Extract()
	return doc.Root()
}
