// Package verification verifies that the decoded instructions recreate the input code.
package verification

import (
	"errors"
	"fmt"

	"github.com/eth-act/evmtrace/internal/evm"
	"github.com/retroenv/retrogolib/log"
)

// maxLoggedMismatches limits the number of logged mismatching offsets.
const maxLoggedMismatches = 10

// ErrMismatch is returned when the decoded instructions do not cover the
// input code exactly.
var ErrMismatch = errors.New("decoded instructions do not recreate the input")

// VerifyDecoding decodes the code and verifies that every byte is covered by
// exactly one instruction and that encoding the instructions again results in
// the input code.
func VerifyDecoding(logger *log.Logger, code []byte) error {
	instructions := evm.Decode(code)

	if err := checkOffsets(instructions, len(code)); err != nil {
		return fmt.Errorf("%w: %w", ErrMismatch, err)
	}

	output := evm.Encode(instructions)
	if err := checkBufferEqual(logger, code, output); err != nil {
		return fmt.Errorf("%w: %w", ErrMismatch, err)
	}

	checkInstructions(logger, instructions)
	return nil
}

// checkInstructions logs opcode bytes without an assigned instruction and a
// push that is cut off by the end of the code. Both decode without error.
func checkInstructions(logger *log.Logger, instructions []evm.Instruction) (unassigned int, truncated bool) {
	for _, ins := range instructions {
		if !evm.Known(byte(ins.Op)) {
			unassigned++
		}
	}
	if unassigned > 0 {
		logger.Warn("Code contains unassigned opcodes", log.Int("count", unassigned))
	}

	if n := len(instructions); n > 0 && instructions[n-1].Truncated() {
		last := instructions[n-1]
		truncated = true
		logger.Warn("Code ends with a truncated push",
			log.String("opcode", last.Name),
			log.Hex("offset", last.Offset),
			log.Int("missing", evm.ImmediateSize(last.Op)-len(last.Immediate)))
	}
	return unassigned, truncated
}

func checkOffsets(instructions []evm.Instruction, length int) error {
	expected := 0
	for _, ins := range instructions {
		if ins.Offset != expected {
			return fmt.Errorf("instruction %s at offset 0x%x, expected offset 0x%x", ins.Name, ins.Offset, expected)
		}
		expected += ins.Size()
	}
	if expected != length {
		return fmt.Errorf("instructions cover %d bytes of %d", expected, length)
	}
	return nil
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs <= maxLoggedMismatches {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}
