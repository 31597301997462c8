// Package main provides the entry point for j1sim.
// j1sim is a cycle-exact simulator of the J1 16-bit stack processor.
//
// For the full CLI, use: go run ./cmd/j1sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("j1sim - J1 Stack Processor Simulator")
	fmt.Println("")
	fmt.Println("Usage: j1sim [options] <program.hex|program.bin>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -timing    Enable timing simulation mode")
	fmt.Println("  -config    Path to configuration JSON file")
	fmt.Println("  -cycles    Stop after this many cycles")
	fmt.Println("  -console   Attach stdin to the console device")
	fmt.Println("  -disasm    Print a disassembly and exit")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/j1sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/j1sim' instead.")
	}
}
