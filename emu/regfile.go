// Package emu provides functional RV32 emulation: the register file,
// byte-addressable memory, interrupt controller, instruction executor,
// and the simulator facade that ties them into a fetch-decode-execute
// step loop.
package emu

import "fmt"

// Conventional RV32 register indices used by the scheduler when it
// initializes a task for its first run.
const (
	// RegRA is the return address register (x1).
	RegRA = 1
	// RegSP is the stack pointer register (x2).
	RegSP = 2
)

// Context is an immutable snapshot of the register file, taken on
// context save and copied back on restore. It never aliases the live
// register state.
type Context struct {
	// Regs holds the 32 general-purpose registers.
	Regs [32]uint32

	// PC is the program counter at save time.
	PC uint32
}

// RegFile represents the RV32 register file: 32 general-purpose
// registers and the program counter. Register 0 is hardwired to zero.
type RegFile struct {
	regs [32]uint32
	pc   uint32

	// saved is the most recent snapshot taken by SaveContext, used by
	// RestoreContext(nil).
	saved *Context
}

// NewRegFile creates a zeroed register file.
func NewRegFile() *RegFile {
	return &RegFile{}
}

// Read returns the value of register n. Register 0 always reads as 0.
func (r *RegFile) Read(n int) (uint32, error) {
	if n < 0 || n > 31 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRegister, n)
	}
	if n == 0 {
		return 0, nil
	}
	return r.regs[n], nil
}

// Write sets register n to value. Writes to register 0 are silently
// discarded per the RISC-V zero-register convention.
func (r *RegFile) Write(n int, value uint32) error {
	if n < 0 || n > 31 {
		return fmt.Errorf("%w: %d", ErrInvalidRegister, n)
	}
	if n == 0 {
		return nil
	}
	r.regs[n] = value
	return nil
}

// PC returns the program counter.
func (r *RegFile) PC() uint32 {
	return r.pc
}

// SetPC sets the program counter.
func (r *RegFile) SetPC(value uint32) {
	r.pc = value
}

// SaveContext snapshots the live register state. The snapshot is also
// remembered for a later RestoreContext(nil).
func (r *RegFile) SaveContext() *Context {
	ctx := &Context{
		Regs: r.regs,
		PC:   r.pc,
	}
	r.saved = ctx
	return ctx
}

// RestoreContext replaces the live register state from ctx, or from
// the last saved snapshot when ctx is nil. It fails with
// ErrNoSavedContext when neither exists.
func (r *RegFile) RestoreContext(ctx *Context) error {
	if ctx == nil {
		if r.saved == nil {
			return ErrNoSavedContext
		}
		ctx = r.saved
	}
	r.regs = ctx.Regs
	r.pc = ctx.PC
	return nil
}

// Reset zeroes all registers and the PC and forgets any saved context.
func (r *RegFile) Reset() {
	r.regs = [32]uint32{}
	r.pc = 0
	r.saved = nil
}

// Regs returns a copy of the 32 general-purpose registers.
func (r *RegFile) Regs() [32]uint32 {
	return r.regs
}
