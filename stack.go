package jitson

// Stack is a growable arena of cells under construction: either by calling
// ParseString (or LoadJSON on an already-open Source) or by driving the
// builder methods (OpenCollection/AddMemberName/Add*/CloseCollection)
// directly. A Stack is single-use — call Extract once construction is
// complete to obtain an immutable Document.
type Stack struct {
	cells   []Cell
	strings [][]byte
	refs    []Value

	// open is 1 + the index of the innermost collection currently under
	// construction, or 0 if none is open. Collections chain their
	// enclosing parent through the header cell's partialParent field
	// rather than a separate Go-side stack, the same index-chasing
	// discipline the cell span itself uses.
	open uint32

	// Flags selects parser extensions; unused by the builder methods.
	Flags Flags

	// owned records the release callback for every IS_OWN external string
	// pushed via AddExternalString, carried over into the extracted
	// Document's own owned list so Document.Free can invoke them.
	owned []ownedEntry
}

// NewStack returns an empty Stack with room for roughly capacityHint
// cells before its first growth.
func NewStack(capacityHint int) *Stack {
	if capacityHint < 1 {
		capacityHint = 1
	}
	return &Stack{cells: make([]Cell, 0, capacityHint)}
}

// push appends c, growing the backing array first if needed. Growth
// doubles capacity below 4096 cells and adds a flat 4096-cell increment
// above that, the same two-regime policy as the original stack's realloc
// sizing (fast early growth, bounded later growth).
func (s *Stack) push(c Cell) {
	if len(s.cells) == cap(s.cells) {
		newCap := cap(s.cells)
		switch {
		case newCap == 0:
			newCap = 16
		case newCap < 4096:
			newCap *= 2
		default:
			newCap += 4096
		}
		grown := make([]Cell, len(s.cells), newCap)
		copy(grown, s.cells)
		s.cells = grown
	}
	s.cells = append(s.cells, c)
}

func (s *Stack) recordChild() {
	if s.open == 0 {
		return
	}
	h := &s.cells[s.open-1]
	h.setLen(h.Len() + 1)
}

// OpenCollection begins a new array or object and returns the index of its
// header cell, to be passed back to CloseCollection once every member or
// element has been added.
func (s *Stack) OpenCollection(t uint16) (uint32, error) {
	if t != TypeArray && t != TypeObject {
		return 0, wrapAt(ErrInvalid, len(s.cells))
	}
	idx := uint32(len(s.cells))
	var c Cell
	c.setType(t, 0)
	c.setPartialParent(s.open)
	s.push(c)
	s.open = idx + 1
	return idx, nil
}

// CloseCollection finishes the collection opened at idx, which must be the
// innermost open collection, recording its final span size and — if it is
// itself nested inside another collection — counting it as one member or
// element of that parent.
func (s *Stack) CloseCollection(idx uint32) error {
	if s.open == 0 || s.open-1 != idx {
		return wrapAt(ErrInvalid, int(idx))
	}
	header := &s.cells[idx]
	parent := header.partialParent()
	span := uint32(len(s.cells)) - idx
	header.SetUint(uint64(span))
	s.open = parent
	s.recordChild()
	return nil
}

// AddMemberName adds name as the key half of the next member of the object
// currently under construction; the paired value-adding call that follows
// is what counts the member (see recordChild).
func (s *Stack) AddMemberName(name string) error {
	if s.open == 0 || s.cells[s.open-1].Type() != TypeObject {
		return wrapAt(ErrInvalid, len(s.cells))
	}
	s.pushString(name, FlagIsKey)
	return nil
}

// AddNull adds a null value.
func (s *Stack) AddNull() error {
	var c Cell
	c.setType(TypeNull, 0)
	s.push(c)
	s.recordChild()
	return nil
}

// AddBool adds a boolean value.
func (s *Stack) AddBool(v bool) error {
	var c Cell
	c.setType(TypeBool, 0)
	c.SetBool(v)
	s.push(c)
	s.recordChild()
	return nil
}

// AddNumber adds a floating-point number value.
func (s *Stack) AddNumber(v float64) error {
	var c Cell
	c.setType(TypeNumber, 0)
	c.SetFloat(v)
	s.push(c)
	s.recordChild()
	return nil
}

// AddUint adds an unsigned integer number value.
func (s *Stack) AddUint(v uint64) error {
	var c Cell
	c.setType(TypeNumber, FlagIsUint)
	c.SetUint(v)
	s.push(c)
	s.recordChild()
	return nil
}

// AddString adds a string value.
func (s *Stack) AddString(v string) error {
	s.pushString(v, 0)
	s.recordChild()
	return nil
}

// pushString pushes a TypeString cell for v, with extraFlags (FlagIsKey for
// member names) ORed into the cell's flag word. See pushCopiedText for the
// inline-vs-continuation span encoding.
func (s *Stack) pushString(v string, extraFlags uint32) {
	s.pushCopiedText(TypeString, extraFlags, []byte(v))
}

// pushCopiedText pushes a head cell of type t holding the first up-to-8
// bytes of b, followed — for b longer than the 7-byte single-cell
// threshold — by raw continuation cells holding the remainder. This
// mirrors sxe_jitson_stack_push_string's copied-string encoding: strings
// and identifiers share the same span layout, only the head cell's type
// id differs.
func (s *Stack) pushCopiedText(t uint16, extraFlags uint32, b []byte) {
	var c Cell
	c.setType(t, extraFlags)
	c.setLen(uint32(len(b)))
	if len(b) <= 7 {
		copy(c.InlineStringBytes(), b)
		s.push(c)
		return
	}
	copy(c.InlineStringBytes(), b[:8])
	s.push(c)
	s.pushContinuation(b[8:])
}

// pushContinuation emits the raw continuation cells for the tail of a
// copied string or identifier longer than 7 bytes: each cell holds 16 data
// bytes except the last, which holds whatever remains plus a terminating
// NUL byte — the tail byte of the last continuation cell is always the
// terminator, even when the remainder is empty.
func (s *Stack) pushContinuation(tail []byte) {
	for {
		var c Cell
		if len(tail) < 16 {
			buf := make([]byte, len(tail)+1)
			copy(buf, tail)
			c.setRawBytes(buf)
			s.push(c)
			return
		}
		c.setRawBytes(tail[:16])
		s.push(c)
		tail = tail[16:]
	}
}

// AddReference adds a value that indirects to target, which may belong to
// this Stack's eventual Document or to an entirely different one (a
// shared constants table, for instance).
func (s *Stack) AddReference(target Value) error {
	var c Cell
	c.setType(TypeReference, 0)
	c.SetIndex(uint32(len(s.refs)))
	s.refs = append(s.refs, target)
	s.push(c)
	s.recordChild()
	return nil
}

// AddIdentifier adds a bare-identifier value, used under the AllowIdents
// parser extension. Identifiers share copied-string's span encoding: inline
// for 7 bytes or less, spilling into continuation cells beyond that.
func (s *Stack) AddIdentifier(name string) error {
	s.pushCopiedText(identType, 0, []byte(name))
	s.recordChild()
	return nil
}

// AddExternalString adds a string value that is not copied: the cell's
// payload indexes the stack's string side table directly (FlagIsRef), the
// Go analog of SXE_JITSON_TYPE_IS_REF wrapping a caller-owned pointer
// instead of duplicating its bytes. If owned is true (IS_OWN, which always
// implies IS_REF), release is recorded and invoked once by the extracted
// Document's Free method.
func (s *Stack) AddExternalString(str string, owned bool, release func()) error {
	idx := uint32(len(s.cells))
	flags := FlagIsRef
	if owned {
		flags |= FlagIsOwn
	}
	var c Cell
	c.setType(TypeString, flags)
	c.SetIndex(uint32(len(s.strings)))
	s.strings = append(s.strings, []byte(str))
	c.setLen(uint32(len(str)))
	s.push(c)
	if owned {
		s.owned = append(s.owned, ownedEntry{idx: idx, release: release})
	}
	s.recordChild()
	return nil
}

// Extract finalizes construction and returns an immutable Document sharing
// the Stack's cell span and side tables. The Stack must have exactly one
// completed top-level value and no collection left open. The head cell
// gets ALLOCED set exactly once, marking it as the root of an owned span.
func (s *Stack) Extract() (*Document, error) {
	if len(s.cells) == 0 {
		return nil, wrapAt(ErrNoData, 0)
	}
	if s.open != 0 {
		return nil, wrapAt(ErrInvalid, len(s.cells))
	}
	s.cells[0].addFlag(FlagAlloced)
	doc := newDocument(s.cells, s.strings, s.refs)
	doc.owned = s.owned
	return doc, nil
}

// ParseString parses input as a single JSON value under flags and returns
// the resulting Document.
func ParseString(input string, flags Flags) (*Document, error) {
	src := NewSourceFromString(input, flags)
	st := NewStack(16)
	st.Flags = flags
	if _, err := st.parseValue(src); err != nil {
		return nil, err
	}
	if _, ok := src.GetNonspace(); ok {
		return nil, wrapAt(ErrInvalid, src.Offset()-1)
	}
	return st.Extract()
}

// LoadJSON parses a single JSON value from src onto s, for callers
// building up a larger document (e.g. several sibling values merged by
// hand) across more than one parse call.
func (s *Stack) LoadJSON(src *Source) (uint32, error) {
	return s.parseValue(src)
}

// parseValue parses one value, rolling the stack back to the index it
// started at on any failure (spec's recoverable-error propagation policy:
// a subsequent load_json or builder call must see the stack exactly as it
// was before this call began). Because this is also the function every
// recursive descent into a nested value goes through, rollback composes
// correctly for nested failures: an inner parseValue call first undoes its
// own partial work, then the enclosing parseObject/parseArray call's own
// parseValue wrapper undoes everything back to where *it* started.
func (s *Stack) parseValue(src *Source) (uint32, error) {
	cellStart := uint32(len(s.cells))
	stringStart := len(s.strings)
	refStart := len(s.refs)
	openStart := s.open

	idx, err := s.parseValueInner(src)
	if err != nil {
		s.cells = s.cells[:cellStart]
		s.strings = s.strings[:stringStart]
		s.refs = s.refs[:refStart]
		s.open = openStart
		return 0, err
	}
	return idx, nil
}

func (s *Stack) parseValueInner(src *Source) (uint32, error) {
	b, ok := src.GetNonspace()
	if !ok {
		return 0, wrapAt(ErrNoData, src.Offset())
	}
	src.PushChar()
	start := src.Offset()

	switch {
	case b == '{':
		return s.parseObject(src)
	case b == '[':
		return s.parseArray(src)
	case b == '"':
		return s.parseStringValue(src)
	case b == '-' || (b >= '0' && b <= '9'):
		return s.parseNumberValue(src)
	case isIdentStartByte(b):
		return s.parseWordOrIdentifier(src)
	default:
		return 0, wrapAt(ErrInvalid, start)
	}
}

func isIdentStartByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func (s *Stack) parseNumberValue(src *Source) (uint32, error) {
	idx := uint32(len(s.cells))
	asUint, asFloat, isUint, err := src.GetNumber()
	if err != nil {
		return 0, err
	}
	var c Cell
	var flags uint32
	if isUint {
		flags = FlagIsUint
	}
	c.setType(TypeNumber, flags)
	if isUint {
		c.SetUint(asUint)
	} else {
		c.SetFloat(asFloat)
	}
	s.push(c)
	s.recordChild()
	return idx, nil
}

func (s *Stack) parseWordOrIdentifier(src *Source) (uint32, error) {
	idx := uint32(len(s.cells))
	ident, ok := src.GetIdentifier()
	if !ok {
		return 0, wrapAt(ErrInvalid, src.Offset())
	}
	switch ident {
	case "true":
		return idx, s.AddBool(true)
	case "false":
		return idx, s.AddBool(false)
	case "null":
		return idx, s.AddNull()
	}
	if s.Flags.Has(AllowConsts) {
		if val, ok := lookupConst(ident); ok {
			return idx, s.AddDup(val)
		}
	}
	if s.Flags.Has(AllowIdents) {
		return idx, s.AddIdentifier(ident)
	}
	return 0, wrapAt(ErrInvalid, src.Offset()-len(ident))
}

func (s *Stack) decodeStringContent(src *Source) (string, error) {
	var buf []byte
	for {
		b, ok := src.GetChar()
		if !ok {
			return "", wrapAt(ErrNoData, src.Offset())
		}
		if b == '"' {
			break
		}
		if b == '\\' {
			r, err := src.GetEscapedRune()
			if err != nil {
				return "", err
			}
			buf = encodeRune(buf, r)
			continue
		}
		if b < 0x20 {
			return "", wrapAt(ErrIllegalSequence, src.Offset()-1)
		}
		buf = append(buf, b)
	}
	return string(buf), nil
}

func (s *Stack) parseStringValue(src *Source) (uint32, error) {
	src.GetChar() // opening quote
	content, err := s.decodeStringContent(src)
	if err != nil {
		return 0, err
	}
	idx := uint32(len(s.cells))
	if err := s.AddString(content); err != nil {
		return 0, err
	}
	return idx, nil
}

func (s *Stack) parseMemberName(src *Source) error {
	b, ok := src.GetNonspace()
	if !ok {
		return wrapAt(ErrNoData, src.Offset())
	}
	if b != '"' {
		return wrapAt(ErrInvalid, src.Offset()-1)
	}
	name, err := s.decodeStringContent(src)
	if err != nil {
		return err
	}
	return s.AddMemberName(name)
}

func (s *Stack) parseArray(src *Source) (uint32, error) {
	src.GetChar() // '['
	idx, err := s.OpenCollection(TypeArray)
	if err != nil {
		return 0, err
	}
	b, ok := src.GetNonspace()
	if !ok {
		return 0, wrapAt(ErrNoData, src.Offset())
	}
	if b == ']' {
		return idx, s.CloseCollection(idx)
	}
	src.PushChar()
	for {
		if _, err := s.parseValue(src); err != nil {
			return 0, err
		}
		b, ok := src.GetNonspace()
		if !ok {
			return 0, wrapAt(ErrNoData, src.Offset())
		}
		if b == ']' {
			break
		}
		if b != ',' {
			return 0, wrapAt(ErrInvalid, src.Offset()-1)
		}
	}
	return idx, s.CloseCollection(idx)
}

func (s *Stack) parseObject(src *Source) (uint32, error) {
	src.GetChar() // '{'
	idx, err := s.OpenCollection(TypeObject)
	if err != nil {
		return 0, err
	}
	b, ok := src.GetNonspace()
	if !ok {
		return 0, wrapAt(ErrNoData, src.Offset())
	}
	if b == '}' {
		return idx, s.CloseCollection(idx)
	}
	src.PushChar()
	for {
		if err := s.parseMemberName(src); err != nil {
			return 0, err
		}
		b, ok := src.GetNonspace()
		if !ok || b != ':' {
			return 0, wrapAt(ErrInvalid, src.Offset())
		}
		if _, err := s.parseValue(src); err != nil {
			return 0, err
		}
		b, ok = src.GetNonspace()
		if !ok {
			return 0, wrapAt(ErrNoData, src.Offset())
		}
		if b == '}' {
			break
		}
		if b != ',' {
			return 0, wrapAt(ErrInvalid, src.Offset()-1)
		}
	}
	return idx, s.CloseCollection(idx)
}
