// Package main provides the entry point for rvos.
// rvos is an RV32IM simulator with a multitasking task scheduler.
//
// For the full CLI, use: go run ./cmd/rvos
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rvos - RISC-V RV32IM multitasking simulator")
	fmt.Println("")
	fmt.Println("Usage: rvos [options] [program.hex ...]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -scheduler    Scheduling policy: priority, round-robin, or fcfs")
	fmt.Println("  -preset       Built-in preset task set to load")
	fmt.Println("  -ticks        Number of scheduler ticks to simulate")
	fmt.Println("  -v            Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvos' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rvos' instead.")
	}
}
