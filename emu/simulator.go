package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/rvos-project/rvos/insts"
	"github.com/rvos-project/rvos/mem/cache"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true if execution stopped (end of program or fatal error).
	Halted bool

	// Err is set if an error occurred during execution.
	Err error
}

// Simulator executes RV32IM instructions functionally.
type Simulator struct {
	regFile    *RegFile
	memory     *Memory
	interrupts *InterruptController
	decoder    *insts.Decoder
	executor   *Executor

	fetchCache  *cache.FetchCache
	cacheConfig *cache.Config

	stderr io.Writer

	memorySize int
	cycleCount uint64
	running    bool
}

// SimulatorOption is a functional option for configuring the Simulator.
type SimulatorOption func(*Simulator)

// WithMemorySize sets the memory size in bytes.
func WithMemorySize(size int) SimulatorOption {
	return func(s *Simulator) {
		s.memorySize = size
	}
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) SimulatorOption {
	return func(s *Simulator) {
		s.stderr = w
	}
}

// WithFetchCache enables an instruction fetch cache with the given
// configuration.
func WithFetchCache(config cache.Config) SimulatorOption {
	return func(s *Simulator) {
		s.cacheConfig = &config
	}
}

// NewSimulator creates a new RV32IM simulator.
func NewSimulator(opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		regFile:    NewRegFile(),
		interrupts: NewInterruptController(),
		decoder:    insts.NewDecoder(),
		stderr:     os.Stderr,
		memorySize: DefaultMemorySize,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.memory = NewMemory(s.memorySize)
	s.executor = NewExecutor(s.regFile, s.memory)
	if s.cacheConfig != nil {
		s.fetchCache = cache.New(*s.cacheConfig, s.memory)
	}

	return s
}

// RegFile returns the simulator's register file.
func (s *Simulator) RegFile() *RegFile {
	return s.regFile
}

// Memory returns the simulator's memory.
func (s *Simulator) Memory() *Memory {
	return s.memory
}

// Interrupts returns the simulator's interrupt controller.
func (s *Simulator) Interrupts() *InterruptController {
	return s.interrupts
}

// FetchCache returns the instruction fetch cache, or nil if disabled.
func (s *Simulator) FetchCache() *cache.FetchCache {
	return s.fetchCache
}

// CycleCount returns the number of instructions executed.
func (s *Simulator) CycleCount() uint64 {
	return s.cycleCount
}

// Running reports whether the simulator has a loaded, unhalted program.
func (s *Simulator) Running() bool {
	return s.running
}

// LoadProgram writes the program words to memory starting at base and
// sets the program counter to base.
func (s *Simulator) LoadProgram(words []uint32, base uint32) error {
	addr := base
	for _, word := range words {
		if err := s.memory.WriteWord(addr, word); err != nil {
			return fmt.Errorf("loading program at 0x%08X: %w", addr, err)
		}
		addr += 4
	}
	s.regFile.SetPC(base)
	s.running = true
	if s.fetchCache != nil {
		s.fetchCache.Reset()
	}
	return nil
}

// fetch reads the instruction word at PC, through the fetch cache when
// one is configured.
func (s *Simulator) fetch() (uint32, error) {
	pc := s.regFile.PC()
	if s.fetchCache != nil {
		word, _, err := s.fetchCache.ReadWord(pc)
		return word, err
	}
	return s.memory.ReadWord(pc)
}

// Step executes a single instruction.
//
// Pending interrupts are serviced before the fetch: the current
// context is saved, the PC vectors to the handler address, and the
// interrupt is cleared. A zero instruction word halts execution. An
// unknown instruction is reported but does not halt; the PC has
// already advanced past it.
func (s *Simulator) Step() StepResult {
	if !s.running {
		return StepResult{Halted: true}
	}

	if s.interrupts.Enabled() && s.interrupts.HasPending() {
		intr := s.interrupts.HighestPriorityPending()
		s.regFile.SaveContext()
		s.regFile.SetPC(intr.HandlerAddr)
		_ = s.interrupts.Clear(intr.ID)
	}

	word, err := s.fetch()
	if err != nil {
		s.running = false
		return StepResult{
			Halted: true,
			Err:    fmt.Errorf("fetching at PC=0x%08X: %w", s.regFile.PC(), err),
		}
	}

	if word == 0 {
		s.running = false
		return StepResult{Halted: true}
	}

	inst := s.decoder.Decode(word)
	execErr := s.executor.Execute(inst)
	s.cycleCount++

	if execErr != nil {
		return StepResult{Err: execErr}
	}
	return StepResult{}
}

// Run executes instructions until the program halts or maxCycles
// instructions have executed. A maxCycles of 0 means no limit. Unknown
// instructions are reported to stderr and skipped; other errors halt
// execution. Returns the number of instructions executed by this call.
func (s *Simulator) Run(maxCycles uint64) uint64 {
	start := s.cycleCount
	for {
		if maxCycles > 0 && s.cycleCount-start >= maxCycles {
			return s.cycleCount - start
		}

		result := s.Step()
		if result.Halted {
			if result.Err != nil {
				_, _ = fmt.Fprintf(s.stderr, "Simulation error: %v\n", result.Err)
			}
			return s.cycleCount - start
		}
		if result.Err != nil {
			_, _ = fmt.Fprintf(s.stderr, "Simulation error: %v\n", result.Err)
		}
	}
}

// Resume clears the halted state so stepping continues at the current
// PC. Callers use this after a context switch installs another task's
// registers, since one task reaching its end of program must not stop
// the others.
func (s *Simulator) Resume() {
	s.running = true
}

// Reset restores the simulator to its initial state.
func (s *Simulator) Reset() {
	s.regFile.Reset()
	s.memory.Reset()
	s.interrupts.Reset()
	if s.fetchCache != nil {
		s.fetchCache.Reset()
	}
	s.cycleCount = 0
	s.running = false
}

// State is a snapshot of the simulator's externally visible state.
type State struct {
	Regs       [32]uint32
	PC         uint32
	CycleCount uint64
	Running    bool
	CacheStats *cache.Statistics
}

// State returns a snapshot of the current simulator state.
func (s *Simulator) State() State {
	st := State{
		Regs:       s.regFile.Regs(),
		PC:         s.regFile.PC(),
		CycleCount: s.cycleCount,
		Running:    s.running,
	}
	if s.fetchCache != nil {
		stats := s.fetchCache.Stats()
		st.CacheStats = &stats
	}
	return st
}
