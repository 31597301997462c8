// Command benchmark runs the J1 timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv     Output results in CSV format (default: human-readable)
//	-json    Output results as a JSON report
//	-config  Path to a configuration JSON file
//	-core    Run only the core subset
//
// Example:
//
//	# Run all benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/j1sim/benchmarks"
	"github.com/sarchlab/j1sim/config"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	configPath := flag.String("config", "", "Path to configuration JSON file")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	harnessConfig := benchmarks.DefaultConfig()
	harnessConfig.Timing = cfg.Timing
	harnessConfig.CoreOptions = cfg.CoreOptions()
	if cfg.MaxCycles > 0 {
		harnessConfig.MaxCycles = cfg.MaxCycles
	}
	harnessConfig.NoHaltOnSelfJump = !cfg.HaltOnSelfJump
	harnessConfig.Output = os.Stdout
	harnessConfig.Verbose = *verbose

	harness := benchmarks.NewHarness(harnessConfig)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	if !*csvOutput && !*jsonOutput {
		fmt.Println("J1 Timing Benchmark Harness")
		fmt.Println("===========================")
		fmt.Printf("Stack depth: %d cells\n", 1<<cfg.StackDepthBits)
		fmt.Printf("Boolean true: %s\n", cfg.BooleanTrue)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}

	if err := benchmarks.Verify(results); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
