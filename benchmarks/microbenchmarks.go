package benchmarks

import "github.com/sarchlab/j1sim/emu"

// GetMicrobenchmarks returns the standard set of J1 microbenchmarks.
// Each benchmark targets one part of the core.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		sumLoop(),
		callChain(),
		memoryFillSum(),
		codeReadTable(),
		consoleHello(),
	}
}

// GetCoreBenchmarks returns a minimal set for quick validation: a loop,
// subroutine calls and memory traffic.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		sumLoop(),
		callChain(),
		memoryFillSum(),
	}
}

// 1. Sum Loop - conditional branches and the return stack as scratch
func sumLoop() Benchmark {
	const n = 100

	// ( acc n ) -> ( acc+n n-1 ) until n is zero.
	program := NewBuilder().
		Lit(0).
		Lit(n).
		Label("loop").
		Emit(Dup).
		ZJmp("done").
		Emit(Dup, ToR, Add, RFrom).
		Dec().
		Jmp("loop").
		Label("done").
		Emit(Drop).
		Halt().
		MustBuild()

	return Benchmark{
		Name:        "sum_loop",
		Description: "Sum 1..100 in a counted loop - measures branch throughput",
		Program:     program,
		ExpectedT:   n * (n + 1) / 2,
	}
}

// 2. Call Chain - nested calls and returns, including a fused return
func callChain() Benchmark {
	program := NewBuilder().
		Call("a").
		Call("a").
		Emit(Add).
		Halt().
		Label("a").
		Lit(1).
		Call("b").
		Emit(Add, Exit).
		Label("b").
		Lit(2).
		Call("c").
		Emit(AddExit).
		Label("c").
		Lit(3).
		Emit(Exit).
		MustBuild()

	return Benchmark{
		Name:        "call_chain",
		Description: "Two calls three levels deep - measures call/return overhead",
		Program:     program,
		ExpectedT:   12,
	}
}

// 3. Memory Fill/Sum - stores then loads through the data cache
func memoryFillSum() Benchmark {
	const (
		n    = 32
		base = 0x0200
	)

	program := NewBuilder().
		// Fill: [base+i] = i for i = n..1.
		Lit(n).
		Label("fill").
		Emit(Dup).
		ZJmp("sum").
		Emit(Dup, Dup).
		Lit(base).
		Emit(Add).
		Store().
		Dec().
		Jmp("fill").
		// Sum: acc += [base+i] for i = n..1.
		Label("sum").
		Emit(Drop).
		Lit(0).
		Lit(n).
		Label("sloop").
		Emit(Dup).
		ZJmp("done").
		Emit(Dup).
		Lit(base).
		Emit(Add).
		Fetch().
		Emit(Swap, ToR, Add, RFrom).
		Dec().
		Jmp("sloop").
		Label("done").
		Emit(Drop).
		Halt().
		MustBuild()

	return Benchmark{
		Name:        "memory_fill_sum",
		Description: "Store 32 words then sum them - measures data cache behavior",
		Program:     program,
		ExpectedT:   n * (n + 1) / 2,
		Check: func(memory *emu.Memory) bool {
			for i := uint16(1); i <= n; i++ {
				if memory.Read(base+i) != i {
					return false
				}
			}
			return true
		},
	}
}

// 4. Code Read Table - constants fetched from code memory
func codeReadTable() Benchmark {
	program := NewBuilder().
		CodeRead("table").
		CodeRead("table1").
		Emit(Add).
		CodeRead("table2").
		Emit(Add).
		CodeRead("table3").
		Emit(Add).
		Halt().
		Org(0x0100).
		Label("table").
		Emit(0x1000).
		Label("table1").
		Emit(0x0200).
		Label("table2").
		Emit(0x0030).
		Label("table3").
		Emit(0x0004).
		MustBuild()

	return Benchmark{
		Name:        "code_read_table",
		Description: "Sum a table stored in code memory - exercises code-read mode",
		Program:     program,
		ExpectedT:   0x1234,
	}
}

// 5. Console Hello - IO writes
func consoleHello() Benchmark {
	b := NewBuilder()
	for _, c := range "hello\n" {
		b.Lit(uint16(c)).EmitChar()
	}
	program := b.Halt().MustBuild()

	return Benchmark{
		Name:           "console_hello",
		Description:    "Write a line to the console - measures IO write latency",
		Program:        program,
		ExpectedT:      0,
		ExpectedOutput: "hello\n",
	}
}
