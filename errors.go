package jitson

import "github.com/pkg/errors"

// Sentinel errors, one per errno-style code a parse or accessor call can
// fail with. Callers match with errors.Is; every returned error is wrapped
// with position/call context via github.com/pkg/errors so a failure deep in
// a nested parse still carries where it happened.
var (
	// ErrInvalid marks malformed input: a syntax error in the JSON text,
	// or an invalid argument to a builder/accessor call.
	ErrInvalid = errors.New("jitson: invalid")

	// ErrIllegalSequence marks a malformed UTF-8 or escape sequence
	// inside a string literal.
	ErrIllegalSequence = errors.New("jitson: illegal byte sequence")

	// ErrNoData marks an unexpected end of input.
	ErrNoData = errors.New("jitson: no data")

	// ErrNoMemory marks an allocation failure growing the parser stack
	// or a dictionary table.
	ErrNoMemory = errors.New("jitson: cannot allocate memory")

	// ErrOpNotSupported marks an operator applied to a type it has no
	// registered implementation for.
	ErrOpNotSupported = errors.New("jitson: operation not supported")

	// ErrNameTooLong is the ENAMETOOLONG-style code. No function in this
	// package returns it; the type and operator registries place no limit
	// on name length.
	ErrNameTooLong = errors.New("jitson: name too long")
)

// wrapAt annotates err with an offset, in the teacher's terse style: one
// call, one line of context. Parse errors pass the byte offset in the
// source at which the error was detected; builder calls pass a cell index
// on the stack, and registry/operator calls pass 0.
func wrapAt(err error, offset int) error {
	return errors.Wrapf(err, "at offset %d", offset)
}
