// Package progs provides small built-in RV32IM programs for demos and
// end-to-end testing.
package progs

// Program is one built-in machine code program.
type Program struct {
	// Name identifies the program.
	Name string

	// Description explains what the program exercises.
	Description string

	// Words is the RV32IM machine code.
	Words []uint32

	// Halts reports whether the program reaches a zero word on its
	// own. Looping programs must be run with an instruction limit.
	Halts bool
}

// Counter loops forever incrementing a counter in x2.
func Counter() Program {
	return Program{
		Name:        "counter",
		Description: "Increments a counter in a tight loop",
		Words: []uint32{
			0x00100093, // addi x1, x0, 1
			0x00000113, // addi x2, x0, 0
			0x00110133, // add  x2, x2, x1
			0xFF9FF06F, // jal  x0, -8
		},
	}
}

// Fibonacci loops forever computing successive Fibonacci numbers in x1
// and x2.
func Fibonacci() Program {
	return Program{
		Name:        "fibonacci",
		Description: "Computes Fibonacci numbers in a loop",
		Words: []uint32{
			0x00100093, // addi x1, x0, 1
			0x00100113, // addi x2, x0, 1
			0x002081B3, // add  x3, x1, x2
			0x00010093, // addi x1, x2, 0
			0x00018113, // addi x2, x3, 0
			0xFF5FF06F, // jal  x0, -12
		},
	}
}

// MemoryLoop loops forever storing and reloading a word.
func MemoryLoop() Program {
	return Program{
		Name:        "memory-loop",
		Description: "Stores and reloads a word in a loop",
		Words: []uint32{
			0x00100093, // addi x1, x0, 1
			0x10000113, // addi x2, x0, 256
			0x00112023, // sw   x1, 0(x2)
			0x00012183, // lw   x3, 0(x2)
			0xFF9FF06F, // jal  x0, -8
		},
	}
}

// SumToTen sums 1..10 into x3, then halts.
func SumToTen() Program {
	return Program{
		Name:        "sum-to-ten",
		Description: "Sums the integers 1 through 10 and halts",
		Words: []uint32{
			0x00A00093, // addi x1, x0, 10
			0x00000113, // addi x2, x0, 0
			0x000001B3, // add  x3, x0, x0
			0x00110113, // addi x2, x2, 1
			0x002181B3, // add  x3, x3, x2
			0xFE209CE3, // bne  x1, x2, -8
			0x00000000, // end of program
		},
		Halts: true,
	}
}

// All returns every built-in program.
func All() []Program {
	return []Program{
		Counter(),
		Fibonacci(),
		MemoryLoop(),
		SumToTen(),
	}
}
