// Package benchmarks provides J1 benchmark programs and a harness that runs
// them through the timing model.
package benchmarks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/j1sim/emu"
	"github.com/sarchlab/j1sim/timing/core"
	"github.com/sarchlab/j1sim/timing/latency"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing model
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// Instructions is the number of ticks executed, reboot included
	Instructions uint64 `json:"instructions"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallCycles is the number of cycles spent waiting on latency
	StallCycles uint64 `json:"stall_cycles"`

	MemReads  uint64 `json:"mem_reads"`
	MemWrites uint64 `json:"mem_writes"`
	IOWrites  uint64 `json:"io_writes"`

	// DCacheHits/Misses
	DCacheHits   uint64 `json:"dcache_hits"`
	DCacheMisses uint64 `json:"dcache_misses"`

	// T is the top of the data stack when the program halted
	T uint16 `json:"t"`

	// Output is what the program wrote to the console
	Output string `json:"output,omitempty"`

	// Passed reports whether T, Output and Check matched expectations
	Passed bool `json:"passed"`

	// Err is set when the run did not halt
	Err string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares data memory before the run
	Setup func(memory *emu.Memory)

	// Program is loaded into code memory at address 0
	Program []uint16

	// ExpectedT is the expected top of stack at halt
	ExpectedT uint16

	// ExpectedOutput is the expected console output
	ExpectedOutput string

	// Check optionally validates data memory after the run
	Check func(memory *emu.Memory) bool
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Timing sets latencies and cache geometry (default: DefaultTimingConfig)
	Timing *latency.TimingConfig

	// CoreOptions shape the core (stack depth, boolean convention)
	CoreOptions []emu.CoreOption

	// MaxCycles bounds each run (0 = no limit)
	MaxCycles uint64

	// NoHaltOnSelfJump keeps running past a jump to its own address
	NoHaltOnSelfJump bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Timing:    latency.DefaultTimingConfig(),
		MaxCycles: 1_000_000,
		Output:    os.Stdout,
		Verbose:   false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Timing == nil {
		config.Timing = latency.DefaultTimingConfig()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output, "ran %s: cycles=%d passed=%v\n",
				result.Name, result.SimulatedCycles, result.Passed)
		}
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark on the timing core.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	code := emu.NewCodeMemory()
	memory := emu.NewMemory()
	console := &bytes.Buffer{}

	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	if err := code.Load(0, bench.Program); err != nil {
		result.Err = err.Error()
		return result
	}
	if bench.Setup != nil {
		bench.Setup(memory)
	}

	c := core.NewCore(code, memory,
		core.WithTimingConfig(h.config.Timing),
		core.WithCoreOptions(h.config.CoreOptions...),
		core.WithIODevice(emu.NewConsoleDevice(console)),
		core.WithMaxCycles(h.config.MaxCycles),
		core.WithHaltOnSelfJump(!h.config.NoHaltOnSelfJump),
	)

	start := time.Now()
	err := c.Run()
	result.WallTime = time.Since(start)

	stats := c.Stats()
	cacheStats := c.CacheStats()
	result.SimulatedCycles = stats.Cycles
	result.Instructions = stats.Instructions
	result.CPI = stats.CPI()
	result.StallCycles = stats.StallCycles
	result.MemReads = stats.MemReads
	result.MemWrites = stats.MemWrites
	result.IOWrites = stats.IOWrites
	result.DCacheHits = cacheStats.Hits
	result.DCacheMisses = cacheStats.Misses
	result.T = c.Functional.Registers().T
	result.Output = console.String()

	if err != nil {
		result.Err = err.Error()
		return result
	}

	result.Passed = result.T == bench.ExpectedT &&
		result.Output == bench.ExpectedOutput &&
		(bench.Check == nil || bench.Check(memory))

	return result
}

// RunFunctional runs a benchmark on the functional emulator and returns
// the emulator for inspection.
func RunFunctional(bench Benchmark, opts ...emu.EmulatorOption) (*emu.Emulator, string, error) {
	console := &bytes.Buffer{}
	opts = append([]emu.EmulatorOption{
		emu.WithIODevice(emu.NewConsoleDevice(console)),
		emu.WithStderr(io.Discard),
		emu.WithMaxCycles(1_000_000),
	}, opts...)

	e := emu.NewEmulator(opts...)
	if err := e.LoadProgram(0, bench.Program); err != nil {
		return nil, "", err
	}
	if bench.Setup != nil {
		bench.Setup(e.Memory())
	}

	err := e.Run()
	return e, console.String(), err
}

// ErrFailed is returned by Verify when a benchmark did not pass.
var ErrFailed = errors.New("benchmark failed")

// Verify returns an error naming the first result that did not pass.
func Verify(results []BenchmarkResult) error {
	for _, r := range results {
		if r.Err != "" {
			return fmt.Errorf("%s: %w: %s", r.Name, ErrFailed, r.Err)
		}
		if !r.Passed {
			return fmt.Errorf("%s: %w: T=0x%04X", r.Name, ErrFailed, r.T)
		}
	}
	return nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== J1 Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  T: 0x%04X (passed: %v)\n", r.T, r.Passed)
		if r.Err != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Err)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles: %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions:     %d\n", r.Instructions)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:              %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Stall Cycles:     %d\n", r.StallCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Mem Reads:        %d\n", r.MemReads)
		_, _ = fmt.Fprintf(h.config.Output, "  Mem Writes:       %d\n", r.MemWrites)
		_, _ = fmt.Fprintf(h.config.Output, "  IO Writes:        %d\n", r.IOWrites)

		if r.DCacheHits > 0 || r.DCacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- D-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.DCacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.DCacheMisses)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,stalls,mem_reads,mem_writes,io_writes,dcache_hits,dcache_misses,t,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,0x%04X,%v\n",
			r.Name,
			r.SimulatedCycles,
			r.Instructions,
			r.CPI,
			r.StallCycles,
			r.MemReads,
			r.MemWrites,
			r.IOWrites,
			r.DCacheHits,
			r.DCacheMisses,
			r.T,
			r.Passed,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Timing is the configuration used
	Timing *latency.TimingConfig `json:"timing"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	Passed            int           `json:"passed"`
	TotalCycles       uint64        `json:"total_cycles"`
	TotalInstructions uint64        `json:"total_instructions"`
	AverageCPI        float64       `json:"average_cpi"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	var totalCycles, totalInstructions uint64
	var totalWallTime time.Duration
	passed := 0
	for _, r := range results {
		totalCycles += r.SimulatedCycles
		totalInstructions += r.Instructions
		totalWallTime += r.WallTime
		if r.Passed {
			passed++
		}
	}

	avgCPI := float64(0)
	if totalInstructions > 0 {
		avgCPI = float64(totalCycles) / float64(totalInstructions)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Timing:    h.config.Timing,
		},
		Results: results,
		Summary: ReportSummary{
			TotalBenchmarks:   len(results),
			Passed:            passed,
			TotalCycles:       totalCycles,
			TotalInstructions: totalInstructions,
			AverageCPI:        avgCPI,
			TotalWallTime:     totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
