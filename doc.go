// Package starkair implements the chip layer of a RISC-V zkVM STARK prover:
// typed event records become constrained trace matrices, and a logarithmic
// derivative (LogUp) permutation argument ties the chips together through
// multiset interactions over shared buses.
//
// The packages compose bottom-up:
//   - executor: event and shard record types exchanged with the execution engine
//   - trace: row-major trace matrices over the scalar field
//   - lookup: interaction kinds, compiled affine columns, balance accounting
//   - air: the chip contract and the constraint builder API
//   - machine: interaction compilation, challenge derivation, permutation
//     traces, and the concrete debug harness
//   - riscv: the chips of the base RV32 ALU machine
package starkair

import (
	"github.com/blang/semver/v4"
)

// Version of the library.
var Version = semver.MustParse("0.1.0")
