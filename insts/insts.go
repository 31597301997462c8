// Package insts provides J1 instruction definitions and decoding.
//
// This package implements decoding of 16-bit J1 instruction words into
// structured instruction representations. Every one of the 65536 words
// decodes to exactly one class:
//   - Literal: bit 15 set, pushes the low 15 bits
//   - Jump, Conditional Jump, Call: 13-bit absolute target
//   - ALU: 4-bit ALU selector, function code, return flag, stack deltas
//   - Code read: any word fetched while pc bit 12 is set
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x8005, 0) // LIT 0x0005
//	fmt.Printf("Class: %v, Literal: %d\n", inst.Class, inst.Literal)
package insts
