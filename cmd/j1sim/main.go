// Package main provides the entry point for j1sim, a cycle-exact J1
// stack processor simulator.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/sarchlab/j1sim/config"
	"github.com/sarchlab/j1sim/emu"
	"github.com/sarchlab/j1sim/insts"
	"github.com/sarchlab/j1sim/loader"
	"github.com/sarchlab/j1sim/timing/core"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	timing     bool
	configPath string
	verbose    bool
	cycles     uint64
	console    bool
	disasm     bool
	cpuProfile string
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{}
	fs := flag.NewFlagSet("j1sim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.timing, "timing", false, "Enable timing simulation mode")
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration JSON file")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.Uint64Var(&opts.cycles, "cycles", 0, "Stop after this many cycles (overrides config)")
	fs.BoolVar(&opts.console, "console", false, "Attach stdin to the console device")
	fs.BoolVar(&opts.disasm, "disasm", false, "Print a disassembly of the image and exit")
	fs.StringVar(&opts.cpuProfile, "cpuprofile", "", "Write a CPU profile to file")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: j1sim [options] <program.hex|program.bin>\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return nil, nil, errors.New("missing program")
	}

	return opts, fs.Args(), nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	programPath := rest[0]

	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		cfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error loading config: %v\n", err)
			return 1
		}
	}
	if opts.cycles > 0 {
		cfg.MaxCycles = opts.cycles
	}

	prog, err := loader.Load(programPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	if opts.verbose {
		_, _ = fmt.Fprintf(stdout, "Loaded: %s\n", programPath)
		_, _ = fmt.Fprintf(stdout, "Words: %d\n", prog.Size())
		_, _ = fmt.Fprintf(stdout, "Segments: %d\n", len(prog.Segments))
	}

	if opts.disasm {
		disassemble(stdout, prog)
		return 0
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error creating CPU profile: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error starting CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	device := emu.NewConsoleDevice(stdout)
	if opts.console {
		host := NewConsoleHost(device, stdin, stderr)
		host.Start()
		defer host.Stop()
	}

	if opts.timing {
		return runTiming(cfg, prog, programPath, device, opts.verbose, stdout, stderr)
	}
	return runEmulation(cfg, prog, programPath, device, opts.verbose, stdout, stderr)
}

// disassemble prints every non-empty word with its mnemonic.
func disassemble(w io.Writer, prog *loader.Program) {
	decoder := insts.NewDecoder()
	for _, seg := range prog.Segments {
		for i, word := range seg.Words {
			addr := seg.Origin + uint16(i)
			inst := decoder.Decode(word, addr)
			_, _ = fmt.Fprintf(w, "%04X: %04X  %s\n", addr, word, inst)
		}
	}
}

// runEmulation runs the program in functional emulation mode.
func runEmulation(cfg *config.Config, prog *loader.Program, programPath string,
	device emu.IODevice, verbose bool, stdout, stderr io.Writer) int {
	emulator := emu.NewEmulator(append(cfg.EmulatorOptions(),
		emu.WithStdout(stdout),
		emu.WithStderr(stderr),
		emu.WithIODevice(device),
	)...)

	if err := prog.LoadInto(emulator.Code()); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	err := emulator.Run()

	stats := emulator.Stats()
	if verbose || err != nil {
		_, _ = fmt.Fprintf(stdout, "\nProgram: %s\n", programPath)
		_, _ = fmt.Fprintf(stdout, "Cycles: %d\n", stats.Cycles)
		_, _ = fmt.Fprintf(stdout, "Memory writes: %d\n", stats.MemWrites)
		_, _ = fmt.Fprintf(stdout, "IO reads: %d, IO writes: %d\n", stats.IOReads, stats.IOWrites)
		printRegisters(stdout, emulator.Core())
	}

	if err != nil {
		return 1
	}
	return 0
}

// runTiming runs the program in timing simulation mode.
func runTiming(cfg *config.Config, prog *loader.Program, programPath string,
	device emu.IODevice, verbose bool, stdout, stderr io.Writer) int {
	code := emu.NewCodeMemory()
	if err := prog.LoadInto(code); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	opts := []core.Option{
		core.WithCoreOptions(cfg.CoreOptions()...),
		core.WithIODevice(device),
		core.WithMaxCycles(cfg.MaxCycles),
		core.WithHaltOnSelfJump(cfg.HaltOnSelfJump),
	}
	if cfg.Timing != nil {
		opts = append(opts, core.WithTimingConfig(cfg.Timing))
	}
	c := core.NewCore(code, emu.NewMemory(), opts...)

	err := c.Run()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Timing run stopped: %v\n", err)
	}

	stats := c.Stats()
	cacheStats := c.CacheStats()

	totalCycles := stats.Cycles
	if totalCycles == 0 {
		totalCycles = 1
	}

	_, _ = fmt.Fprintf(stdout, "\n")
	_, _ = fmt.Fprintf(stdout, "Program: %s\n", programPath)
	_, _ = fmt.Fprintf(stdout, "Total Instructions: %d\n", stats.Instructions)
	_, _ = fmt.Fprintf(stdout, "Total Cycles: %d\n", stats.Cycles)
	_, _ = fmt.Fprintf(stdout, "CPI: %.2f\n", stats.CPI())
	_, _ = fmt.Fprintf(stdout, "\n")
	_, _ = fmt.Fprintf(stdout, "Breakdown:\n")
	_, _ = fmt.Fprintf(stdout, "  Execute:      %6d cycles (%5.1f%%)\n",
		stats.Instructions, 100.0*float64(stats.Instructions)/float64(totalCycles))
	_, _ = fmt.Fprintf(stdout, "  Stalls:       %6d cycles (%5.1f%%)\n",
		stats.StallCycles, 100.0*float64(stats.StallCycles)/float64(totalCycles))
	_, _ = fmt.Fprintf(stdout, "\n")
	_, _ = fmt.Fprintf(stdout, "Memory:\n")
	_, _ = fmt.Fprintf(stdout, "  Reads:  %d\n", stats.MemReads)
	_, _ = fmt.Fprintf(stdout, "  Writes: %d\n", stats.MemWrites)
	_, _ = fmt.Fprintf(stdout, "  D-Cache hits/misses: %d/%d\n", cacheStats.Hits, cacheStats.Misses)
	_, _ = fmt.Fprintf(stdout, "IO reads: %d, IO writes: %d\n", stats.IOReads, stats.IOWrites)

	if verbose {
		printRegisters(stdout, c.Functional)
	}

	if err != nil {
		return 1
	}
	return 0
}

func printRegisters(w io.Writer, c *emu.Core) {
	r := c.Registers()
	_, _ = fmt.Fprintf(w, "PC=%04X T=%04X N=%04X R=%04X DSP=%d RSP=%d\n",
		r.PC, r.T, c.N(), c.R(), r.DSP, r.RSP)
}
