// Package main checks that the timing model computes the same results as
// the functional emulator for every benchmark program.
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/j1sim/benchmarks"
	"github.com/sarchlab/j1sim/emu"
)

// validate runs one benchmark through both models and compares the
// architectural outcome.
func validate(bench benchmarks.Benchmark, timed benchmarks.BenchmarkResult, coreOpts []emu.CoreOption) bool {
	e, output, err := benchmarks.RunFunctional(bench, emu.WithCoreOptions(coreOpts...))
	if err != nil {
		fmt.Printf("❌ %s: functional run failed: %v\n", bench.Name, err)
		return false
	}

	t := e.Core().Registers().T
	switch {
	case t != timed.T:
		fmt.Printf("❌ %s: T differs (functional 0x%04X, timing 0x%04X)\n", bench.Name, t, timed.T)
		return false
	case output != timed.Output:
		fmt.Printf("❌ %s: console output differs\n", bench.Name)
		return false
	case e.Stats().Cycles != timed.Instructions:
		fmt.Printf("❌ %s: tick count differs (%d vs %d)\n",
			bench.Name, e.Stats().Cycles, timed.Instructions)
		return false
	case bench.Check != nil && !bench.Check(e.Memory()):
		fmt.Printf("❌ %s: data memory check failed\n", bench.Name)
		return false
	}

	fmt.Printf("✅ %s: T=0x%04X after %d ticks (%d timed cycles)\n",
		bench.Name, t, timed.Instructions, timed.SimulatedCycles)
	return true
}

func main() {
	fmt.Println("J1 Accuracy Validation - functional vs timing")
	fmt.Println("=============================================")

	config := benchmarks.DefaultConfig()
	config.Output = os.Stdout

	suites := [][]emu.CoreOption{
		nil,
		{emu.WithBoolConvention(emu.BoolAllOnes)},
		{emu.WithStackDepth(8)},
	}

	allPassed := true
	for _, coreOpts := range suites {
		config.CoreOptions = coreOpts
		harness := benchmarks.NewHarness(config)
		benches := benchmarks.GetMicrobenchmarks()
		harness.AddBenchmarks(benches)

		results := harness.RunAll()
		for i, bench := range benches {
			if !validate(bench, results[i], coreOpts) {
				allPassed = false
			}
		}
	}

	if !allPassed {
		fmt.Println("\n❌ Validation failed")
		os.Exit(1)
	}
	fmt.Println("\n✅ All benchmarks agree")
}
