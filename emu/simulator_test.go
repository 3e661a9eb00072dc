package emu_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rvos-project/rvos/emu"
	"github.com/rvos-project/rvos/mem/cache"
)

var _ = Describe("Simulator", func() {
	var (
		s         *emu.Simulator
		stderrBuf *bytes.Buffer
	)

	// addi x1,x0,5; addi x2,x0,7; add x3,x1,x2; halt
	sumProgram := []uint32{
		encodeI(5, 0, 0x0, 1, 0x13),
		encodeI(7, 0, 0x0, 2, 0x13),
		encodeR(0x00, 2, 1, 0x0, 3, 0x33),
		0,
	}

	BeforeEach(func() {
		stderrBuf = &bytes.Buffer{}
		s = emu.NewSimulator(
			emu.WithStderr(stderrBuf),
		)
	})

	Describe("NewSimulator", func() {
		It("should create a simulator with initialized components", func() {
			Expect(s.RegFile()).NotTo(BeNil())
			Expect(s.Memory()).NotTo(BeNil())
			Expect(s.Interrupts()).NotTo(BeNil())
			Expect(s.Memory().Size()).To(Equal(emu.DefaultMemorySize))
		})

		It("should honor WithMemorySize", func() {
			small := emu.NewSimulator(emu.WithMemorySize(4096))
			Expect(small.Memory().Size()).To(Equal(4096))
		})

		It("should not be running before a program is loaded", func() {
			Expect(s.Running()).To(BeFalse())
			Expect(s.Step().Halted).To(BeTrue())
		})
	})

	Describe("LoadProgram", func() {
		It("should write words to memory and set the PC", func() {
			Expect(s.LoadProgram(sumProgram, 0x1000)).To(Succeed())

			Expect(s.RegFile().PC()).To(Equal(uint32(0x1000)))
			Expect(s.Running()).To(BeTrue())

			w, err := s.Memory().ReadWord(0x1004)
			Expect(err).ToNot(HaveOccurred())
			Expect(w).To(Equal(sumProgram[1]))
		})

		It("should reject a program that does not fit", func() {
			small := emu.NewSimulator(emu.WithMemorySize(4096))
			err := small.LoadProgram(sumProgram, 4092)
			Expect(err).To(MatchError(emu.ErrOutOfBounds))
		})
	})

	Describe("Step", func() {
		It("should execute one instruction per call", func() {
			Expect(s.LoadProgram(sumProgram, 0)).To(Succeed())

			result := s.Step()
			Expect(result.Halted).To(BeFalse())
			Expect(result.Err).ToNot(HaveOccurred())
			Expect(s.CycleCount()).To(Equal(uint64(1)))

			v, _ := s.RegFile().Read(1)
			Expect(v).To(Equal(uint32(5)))
		})

		It("should halt on a zero instruction word", func() {
			Expect(s.LoadProgram([]uint32{0}, 0)).To(Succeed())

			result := s.Step()
			Expect(result.Halted).To(BeTrue())
			Expect(result.Err).ToNot(HaveOccurred())
			Expect(s.Running()).To(BeFalse())
		})

		It("should continue at the current PC after Resume", func() {
			Expect(s.LoadProgram([]uint32{0}, 0)).To(Succeed())
			Expect(s.Step().Halted).To(BeTrue())

			// Another program elsewhere in memory picks up where a
			// context switch points the PC.
			Expect(s.Memory().WriteWord(0x2000, encodeI(3, 0, 0x0, 1, 0x13))).To(Succeed())
			s.RegFile().SetPC(0x2000)
			s.Resume()

			Expect(s.Running()).To(BeTrue())
			Expect(s.Step().Halted).To(BeFalse())
			v, _ := s.RegFile().Read(1)
			Expect(v).To(Equal(uint32(3)))
		})

		It("should halt when the PC runs off the end of memory", func() {
			small := emu.NewSimulator(
				emu.WithMemorySize(4096),
				emu.WithStderr(stderrBuf),
			)
			Expect(small.LoadProgram([]uint32{encodeI(5, 0, 0x0, 1, 0x13)}, 4092)).To(Succeed())

			result := small.Step() // executes the addi, PC -> 4096
			Expect(result.Halted).To(BeFalse())

			result = small.Step()
			Expect(result.Halted).To(BeTrue())
			Expect(result.Err).To(MatchError(emu.ErrOutOfBounds))
		})

		It("should report unknown instructions without halting", func() {
			csrrw := encodeI(0x340, 1, 0x1, 2, 0x73)
			Expect(s.LoadProgram([]uint32{csrrw, encodeI(9, 0, 0x0, 1, 0x13), 0}, 0)).To(Succeed())

			result := s.Step()
			Expect(result.Halted).To(BeFalse())
			Expect(result.Err).To(MatchError(emu.ErrUnknownInstruction))

			result = s.Step()
			Expect(result.Err).ToNot(HaveOccurred())

			v, _ := s.RegFile().Read(1)
			Expect(v).To(Equal(uint32(9)))
		})
	})

	Describe("Interrupt vectoring", func() {
		It("should save the context and vector to the handler", func() {
			Expect(s.LoadProgram(sumProgram, 0x1000)).To(Succeed())
			// Handler at the timer vector: addi x5,x0,99; halt.
			Expect(s.Memory().WriteWord(0x100, encodeI(99, 0, 0x0, 5, 0x13))).To(Succeed())
			Expect(s.Memory().WriteWord(0x104, 0)).To(Succeed())

			Expect(s.Interrupts().Trigger(emu.TimerInterrupt)).To(Succeed())

			result := s.Step()
			Expect(result.Err).ToNot(HaveOccurred())

			// The step vectored, then executed the handler's first
			// instruction.
			v, _ := s.RegFile().Read(5)
			Expect(v).To(Equal(uint32(99)))
			Expect(s.RegFile().PC()).To(Equal(uint32(0x104)))

			// The pending flag was consumed.
			Expect(s.Interrupts().HasPending()).To(BeFalse())

			// The interrupted context can be restored.
			Expect(s.RegFile().RestoreContext(nil)).To(Succeed())
			Expect(s.RegFile().PC()).To(Equal(uint32(0x1000)))
		})

		It("should not vector while the controller is disabled", func() {
			Expect(s.LoadProgram(sumProgram, 0x1000)).To(Succeed())
			Expect(s.Interrupts().Trigger(emu.TimerInterrupt)).To(Succeed())
			s.Interrupts().Disable()

			result := s.Step()
			Expect(result.Err).ToNot(HaveOccurred())
			Expect(s.RegFile().PC()).To(Equal(uint32(0x1004)))
		})

		It("should service the most urgent interrupt first", func() {
			Expect(s.LoadProgram(sumProgram, 0x1000)).To(Succeed())
			Expect(s.Memory().WriteWord(0x100, 0)).To(Succeed())
			Expect(s.Interrupts().Trigger(emu.SoftwareInterrupt)).To(Succeed())
			Expect(s.Interrupts().Trigger(emu.TimerInterrupt)).To(Succeed())

			s.Step()

			// Timer (priority 10) vectored; software is still pending.
			pending := s.Interrupts().Pending()
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].ID).To(Equal(emu.SoftwareInterrupt))
		})
	})

	Describe("Run", func() {
		It("should run a program to completion", func() {
			Expect(s.LoadProgram(sumProgram, 0)).To(Succeed())

			executed := s.Run(0)
			Expect(executed).To(Equal(uint64(3)))
			Expect(s.Running()).To(BeFalse())

			v, _ := s.RegFile().Read(3)
			Expect(v).To(Equal(uint32(12)))
		})

		It("should stop at the cycle limit", func() {
			// Infinite loop: jal x0, 0 (jump to self).
			Expect(s.LoadProgram([]uint32{encodeJ(0, 0, 0x6F)}, 0)).To(Succeed())

			executed := s.Run(10)
			Expect(executed).To(Equal(uint64(10)))
			Expect(s.Running()).To(BeTrue())
		})

		It("should skip unknown instructions and report them", func() {
			csrrw := encodeI(0x340, 1, 0x1, 2, 0x73)
			Expect(s.LoadProgram([]uint32{csrrw, encodeI(9, 0, 0x0, 1, 0x13), 0}, 0)).To(Succeed())

			executed := s.Run(0)
			Expect(executed).To(Equal(uint64(2)))
			Expect(stderrBuf.String()).To(ContainSubstring("unknown instruction"))

			v, _ := s.RegFile().Read(1)
			Expect(v).To(Equal(uint32(9)))
		})
	})

	Describe("Fetch cache", func() {
		It("should count fetch hits and misses", func() {
			cached := emu.NewSimulator(
				emu.WithMemorySize(64*1024),
				emu.WithFetchCache(cache.DefaultFetchConfig()),
			)
			Expect(cached.LoadProgram(sumProgram, 0)).To(Succeed())

			cached.Run(0)

			stats := cached.FetchCache().Stats()
			Expect(stats.Reads).To(Equal(uint64(4)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(3)))

			st := cached.State()
			Expect(st.CacheStats).NotTo(BeNil())
			Expect(st.CacheStats.Reads).To(Equal(uint64(4)))
		})

		It("should leave cache stats nil when disabled", func() {
			Expect(s.State().CacheStats).To(BeNil())
		})
	})

	Describe("Reset", func() {
		It("should restore the initial state", func() {
			Expect(s.LoadProgram(sumProgram, 0)).To(Succeed())
			s.Run(0)

			s.Reset()

			Expect(s.CycleCount()).To(Equal(uint64(0)))
			Expect(s.Running()).To(BeFalse())
			Expect(s.RegFile().PC()).To(Equal(uint32(0)))

			w, _ := s.Memory().ReadWord(0)
			Expect(w).To(Equal(uint32(0)))
		})
	})

	Describe("State", func() {
		It("should snapshot registers, PC, and counters", func() {
			Expect(s.LoadProgram(sumProgram, 0)).To(Succeed())
			s.Step()

			st := s.State()
			Expect(st.Regs[1]).To(Equal(uint32(5)))
			Expect(st.PC).To(Equal(uint32(4)))
			Expect(st.CycleCount).To(Equal(uint64(1)))
			Expect(st.Running).To(BeTrue())
		})
	})
})
