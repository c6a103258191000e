package evm

import (
	"github.com/ethereum/go-ethereum/core/vm"
)

// Decode disassembles the code into its instructions.
// It never fails: unknown opcodes are kept and a push immediate that runs past
// the end of the code is truncated to the bytes that remain.
func Decode(code []byte) []Instruction {
	instructions := make([]Instruction, 0, len(code))

	for pc := 0; pc < len(code); {
		op := vm.OpCode(code[pc])
		ins := Instruction{
			Offset: pc,
			Op:     op,
			Name:   Name(code[pc]),
		}

		if size := ImmediateSize(op); size > 0 && pc+1 < len(code) {
			end := min(pc+1+size, len(code))
			ins.Immediate = code[pc+1 : end : end]
		}

		instructions = append(instructions, ins)
		pc += ins.Size()
	}

	return instructions
}

// Encode assembles the instructions back into code bytes.
func Encode(instructions []Instruction) []byte {
	var size int
	for _, ins := range instructions {
		size += ins.Size()
	}

	code := make([]byte, 0, size)
	for _, ins := range instructions {
		code = append(code, byte(ins.Op))
		code = append(code, ins.Immediate...)
	}
	return code
}

// JumpDests returns the offsets of all JUMPDEST instructions in ascending order.
func JumpDests(instructions []Instruction) []int {
	var dests []int
	for _, ins := range instructions {
		if ins.IsJumpDest() {
			dests = append(dests, ins.Offset)
		}
	}
	return dests
}

// Disassembly returns the listing lines of the code.
func Disassembly(code []byte) []string {
	instructions := Decode(code)
	lines := make([]string, 0, len(instructions))
	for _, ins := range instructions {
		lines = append(lines, ins.String())
	}
	return lines
}
