package evm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/vm"
)

// Instruction is a single decoded EVM instruction.
type Instruction struct {
	Offset int
	Op     vm.OpCode
	Name   string
	// Immediate holds the operand bytes of PUSH1 to PUSH32. It is nil for all
	// other opcodes, for PUSH0 and for a push that ends the buffer.
	Immediate []byte
}

// Size returns the number of code bytes covered by the instruction.
func (i Instruction) Size() int {
	return 1 + len(i.Immediate)
}

// Truncated returns whether a push instruction captured fewer immediate bytes
// than its opcode implies.
func (i Instruction) Truncated() bool {
	return len(i.Immediate) < ImmediateSize(i.Op)
}

// IsPush returns whether the instruction is a push instruction.
func (i Instruction) IsPush() bool {
	return IsPush(i.Op)
}

// IsJumpDest returns whether the instruction marks a valid jump destination.
func (i Instruction) IsJumpDest() bool {
	return i.Op == vm.JUMPDEST
}

// String returns the instruction in a disassembly listing format. A push that
// is cut off by the end of the code is marked as truncated.
func (i Instruction) String() string {
	s := fmt.Sprintf("%05x: %s", i.Offset, i.Name)
	if len(i.Immediate) > 0 {
		s += fmt.Sprintf(" %#x", i.Immediate)
	}
	if i.Truncated() {
		s += " (truncated)"
	}
	return s
}
