package jitson

import "sync"

// UnaryFunc applies a unary operator to v.
type UnaryFunc func(v Value) (Value, error)

// BinaryFunc applies a binary operator to (left, right).
type BinaryFunc func(left, right Value) (Value, error)

type operEntry struct {
	name string

	unaryDefault  UnaryFunc
	unaryByType   []UnaryFunc // sparse, indexed by type id
	binaryDefault BinaryFunc
	binaryByType  []BinaryFunc // sparse, indexed by left operand's type id
}

type operRegistry struct {
	mu      sync.Mutex
	byName  map[string]int
	entries []*operEntry
}

var opers = operRegistry{byName: make(map[string]int)}

// RegisterUnary registers name as a unary operator with defaultFn as its
// fallback implementation, returning an error if name already has a unary
// default. The same name may also be registered as a binary operator; the
// two arities are dispatched independently.
func RegisterUnary(name string, defaultFn UnaryFunc) error {
	opers.mu.Lock()
	defer opers.mu.Unlock()
	e := opers.entry(name)
	if e.unaryDefault != nil {
		return wrapAt(ErrInvalid, 0)
	}
	e.unaryDefault = defaultFn
	return nil
}

// RegisterBinary registers name as a binary operator with defaultFn as its
// fallback implementation.
func RegisterBinary(name string, defaultFn BinaryFunc) error {
	opers.mu.Lock()
	defer opers.mu.Unlock()
	e := opers.entry(name)
	if e.binaryDefault != nil {
		return wrapAt(ErrInvalid, 0)
	}
	e.binaryDefault = defaultFn
	return nil
}

// AddUnaryToType overrides the unary implementation of name for operands
// of type t, growing the sparse per-type table and null-filling any gap,
// matching the original's add_to_type growth.
func AddUnaryToType(name string, t uint16, fn UnaryFunc) error {
	opers.mu.Lock()
	defer opers.mu.Unlock()
	e, ok := opers.find(name)
	if !ok {
		return wrapAt(ErrOpNotSupported, 0)
	}
	growUnary(&e.unaryByType, t)
	e.unaryByType[t] = fn
	return nil
}

// AddBinaryToType overrides the binary implementation of name for left
// operands of type t.
func AddBinaryToType(name string, t uint16, fn BinaryFunc) error {
	opers.mu.Lock()
	defer opers.mu.Unlock()
	e, ok := opers.find(name)
	if !ok {
		return wrapAt(ErrOpNotSupported, 0)
	}
	growBinary(&e.binaryByType, t)
	e.binaryByType[t] = fn
	return nil
}

func growUnary(tbl *[]UnaryFunc, t uint16) {
	if int(t) < len(*tbl) {
		return
	}
	grown := make([]UnaryFunc, t+1)
	copy(grown, *tbl)
	*tbl = grown
}

func growBinary(tbl *[]BinaryFunc, t uint16) {
	if int(t) < len(*tbl) {
		return
	}
	grown := make([]BinaryFunc, t+1)
	copy(grown, *tbl)
	*tbl = grown
}

func (r *operRegistry) entry(name string) *operEntry {
	if e, ok := r.find(name); ok {
		return e
	}
	e := &operEntry{name: name}
	r.byName[name] = len(r.entries)
	r.entries = append(r.entries, e)
	return e
}

func (r *operRegistry) find(name string) (*operEntry, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.entries[i], true
}

// ApplyUnary applies the named unary operator to v: the per-type override
// for v's type if one is registered, else the operator's default, else
// ErrOpNotSupported.
func ApplyUnary(name string, v Value) (Value, error) {
	opers.mu.Lock()
	e, ok := opers.find(name)
	opers.mu.Unlock()
	if !ok {
		return Value{}, wrapAt(ErrOpNotSupported, 0)
	}
	t := v.Type()
	if int(t) < len(e.unaryByType) && e.unaryByType[t] != nil {
		return e.unaryByType[t](v)
	}
	if e.unaryDefault != nil {
		return e.unaryDefault(v)
	}
	return Value{}, wrapAt(ErrOpNotSupported, 0)
}

// ApplyBinary applies the named binary operator to (left, right), the
// per-left-type override if registered, else the operator's default, else
// ErrOpNotSupported.
func ApplyBinary(name string, left, right Value) (Value, error) {
	opers.mu.Lock()
	e, ok := opers.find(name)
	opers.mu.Unlock()
	if !ok {
		return Value{}, wrapAt(ErrOpNotSupported, 0)
	}
	t := left.Type()
	if int(t) < len(e.binaryByType) && e.binaryByType[t] != nil {
		return e.binaryByType[t](left, right)
	}
	if e.binaryDefault != nil {
		return e.binaryDefault(left, right)
	}
	return Value{}, wrapAt(ErrOpNotSupported, 0)
}
