package emu

import "errors"

// Core error taxonomy. Validation errors abort only the offending
// call and leave all prior state untouched.
var (
	// ErrOutOfBounds reports a memory access outside the address space.
	ErrOutOfBounds = errors.New("memory address out of bounds")

	// ErrInvalidRegister reports a register index outside [0, 31].
	ErrInvalidRegister = errors.New("invalid register number")

	// ErrNoSavedContext reports a context restore with nothing to restore.
	ErrNoSavedContext = errors.New("no context to restore")

	// ErrUnknownInterrupt reports an operation on an unregistered interrupt id.
	ErrUnknownInterrupt = errors.New("interrupt id not registered")

	// ErrUnknownInstruction reports an opcode or funct combination the
	// executor does not implement. The step loop tolerates it unless the
	// caller's policy says otherwise.
	ErrUnknownInstruction = errors.New("unknown instruction")
)
