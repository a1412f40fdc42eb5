package jitson

import "strings"

// Built-in operators registered at package init, enough to exercise the
// registry end to end: equality (any type, via the type registry's Test
// entries), numeric negation and addition, and string concatenation.
func init() {
	_ = RegisterBinary("==", func(left, right Value) (Value, error) {
		s := NewStack(1)
		s.AddBool(valuesEqual(left, right))
		return s.extractValue()
	})

	_ = RegisterUnary("-", func(v Value) (Value, error) {
		if v.Type() != TypeNumber {
			return Value{}, wrapAt(ErrOpNotSupported, 0)
		}
		s := NewStack(1)
		s.AddNumber(-v.GetFloat())
		return s.extractValue()
	})

	_ = RegisterBinary("+", func(left, right Value) (Value, error) {
		s := NewStack(1)
		switch {
		case left.Type() == TypeNumber && right.Type() == TypeNumber:
			s.AddNumber(left.GetFloat() + right.GetFloat())
		case left.Type() == TypeString && right.Type() == TypeString:
			var b strings.Builder
			b.WriteString(left.GetString())
			b.WriteString(right.GetString())
			s.AddString(b.String())
		default:
			return Value{}, wrapAt(ErrOpNotSupported, 0)
		}
		return s.extractValue()
	})
}

// extractValue extracts s's single built value, for operator bodies that
// construct exactly one scalar or string result.
func (s *Stack) extractValue() (Value, error) {
	doc, err := s.Extract()
	if err != nil {
		return Value{}, err
	}
	return doc.Root(), nil
}
