package jitson

// Clone returns a deep, independent copy of v: owned strings are
// recopied, collections are rebuilt member-by-member, and the result
// shares no mutable state with v's document.
func Clone(v Value) (Value, error) {
	s := NewStack(1)
	if err := s.cloneInto(v); err != nil {
		return Value{}, err
	}
	return s.extractValue()
}

// cloneInto dispatches to the registered type's Clone function when
// present, re-adding a Reference against its target so the index lands in
// s's own reference table, and falling back to a scalar copy for types
// that don't need anything beyond the raw cell (numbers, bools, null).
// The copy drops ALLOCED, which only the head of an extracted span carries.
func (s *Stack) cloneInto(v Value) error {
	d := typeDescriptor(v.Type())
	if d != nil && d.Clone != nil {
		return d.Clone(s, v)
	}
	if v.Type() == TypeReference {
		return s.AddReference(v.doc.refs[v.cell().GetIndex()])
	}
	c := *v.cell()
	c.clearFlag(FlagAlloced)
	s.push(c)
	s.recordChild()
	return nil
}

func cloneString(dst *Stack, v Value) error {
	b := v.stringBytes()
	dst.AddString(string(b))
	return nil
}

func freeString(Value) {
	// A plain copied or inline string has no external resource to
	// release; its bytes live in the cell span itself and are
	// reclaimed with it. IS_OWN strings are the exception and are
	// handled separately, by the release callback recorded in
	// Document.owned (see ownership.go) rather than through this
	// per-type hook.
}

func cloneCollection(dst *Stack, v Value) error {
	if v.Type() == TypeObject {
		idx, err := dst.OpenCollection(TypeObject)
		if err != nil {
			return err
		}
		var err2 error
		v.forEachMember(func(name string, member Value) bool {
			if err2 = dst.AddMemberName(name); err2 != nil {
				return false
			}
			if err2 = dst.cloneInto(member); err2 != nil {
				return false
			}
			return true
		})
		if err2 != nil {
			return err2
		}
		return dst.CloseCollection(idx)
	}

	idx, err := dst.OpenCollection(TypeArray)
	if err != nil {
		return err
	}
	n := v.Len()
	for i := uint32(0); i < n; i++ {
		elem, _ := v.ArrayGetElement(i)
		if err := dst.cloneInto(elem); err != nil {
			return err
		}
	}
	return dst.CloseCollection(idx)
}

func freeCollection(Value) {
	// As with strings, a document's cells and side tables are released
	// by the garbage collector; Free exists so the type descriptor
	// table has a uniform shape extension types can also fill in.
}

// AddDup clones v as the next value in the collection currently under
// construction on s.
func (s *Stack) AddDup(v Value) error {
	return s.cloneInto(v)
}

// AddDupMembers bulk-clones every member of src (following one level of
// Reference indirection, matching the original's reference-transparent
// behavior) into the object currently under construction on s.
func (s *Stack) AddDupMembers(src Value) error {
	if src.Type() == TypeReference {
		src = src.doc.refs[src.cell().GetIndex()]
	}
	if src.Type() != TypeObject {
		return wrapAt(ErrInvalid, 0)
	}
	var err error
	src.forEachMember(func(name string, member Value) bool {
		if e := s.AddMemberName(name); e != nil {
			err = e
			return false
		}
		if e := s.cloneInto(member); e != nil {
			err = e
			return false
		}
		return true
	})
	return err
}
