package evm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/vm"
)

// mnemonics contains the names of all assigned opcodes of the legacy EVM
// instruction set up to Cancun.
var mnemonics = map[byte]string{
	0x00: "STOP", 0x01: "ADD", 0x02: "MUL", 0x03: "SUB", 0x04: "DIV",
	0x05: "SDIV", 0x06: "MOD", 0x07: "SMOD", 0x08: "ADDMOD", 0x09: "MULMOD",
	0x0a: "EXP", 0x0b: "SIGNEXTEND",

	0x10: "LT", 0x11: "GT", 0x12: "SLT", 0x13: "SGT", 0x14: "EQ",
	0x15: "ISZERO", 0x16: "AND", 0x17: "OR", 0x18: "XOR", 0x19: "NOT",
	0x1a: "BYTE", 0x1b: "SHL", 0x1c: "SHR", 0x1d: "SAR",

	0x20: "SHA3",

	0x30: "ADDRESS", 0x31: "BALANCE", 0x32: "ORIGIN", 0x33: "CALLER",
	0x34: "CALLVALUE", 0x35: "CALLDATALOAD", 0x36: "CALLDATASIZE",
	0x37: "CALLDATACOPY", 0x38: "CODESIZE", 0x39: "CODECOPY", 0x3a: "GASPRICE",
	0x3b: "EXTCODESIZE", 0x3c: "EXTCODECOPY", 0x3d: "RETURNDATASIZE",
	0x3e: "RETURNDATACOPY", 0x3f: "EXTCODEHASH",

	0x40: "BLOCKHASH", 0x41: "COINBASE", 0x42: "TIMESTAMP", 0x43: "NUMBER",
	0x44: "DIFFICULTY", 0x45: "GASLIMIT", 0x46: "CHAINID", 0x47: "SELFBALANCE",
	0x48: "BASEFEE", 0x49: "BLOBHASH", 0x4a: "BLOBBASEFEE",

	0x50: "POP", 0x51: "MLOAD", 0x52: "MSTORE", 0x53: "MSTORE8", 0x54: "SLOAD",
	0x55: "SSTORE", 0x56: "JUMP", 0x57: "JUMPI", 0x58: "PC", 0x59: "MSIZE",
	0x5a: "GAS", 0x5b: "JUMPDEST", 0x5c: "TLOAD", 0x5d: "TSTORE", 0x5e: "MCOPY",
	0x5f: "PUSH0",

	0xa0: "LOG0", 0xa1: "LOG1", 0xa2: "LOG2", 0xa3: "LOG3", 0xa4: "LOG4",

	0xf0: "CREATE", 0xf1: "CALL", 0xf2: "CALLCODE", 0xf3: "RETURN",
	0xf4: "DELEGATECALL", 0xf5: "CREATE2", 0xfa: "STATICCALL", 0xfd: "REVERT",
	0xfe: "INVALID", 0xff: "SELFDESTRUCT",
}

// opcodeNames is the process wide lookup table indexed by opcode byte.
var opcodeNames [256]string

// opcodeValues maps every assigned mnemonic back to its byte value.
var opcodeValues map[string]byte

func init() {
	for i := 0; i < 16; i++ {
		mnemonics[byte(vm.DUP1)+byte(i)] = fmt.Sprintf("DUP%d", i+1)
		mnemonics[byte(vm.SWAP1)+byte(i)] = fmt.Sprintf("SWAP%d", i+1)
	}
	for i := 1; i <= 32; i++ {
		mnemonics[byte(vm.PUSH0)+byte(i)] = fmt.Sprintf("PUSH%d", i)
	}

	opcodeValues = make(map[string]byte, len(mnemonics))
	for i := range opcodeNames {
		name, ok := mnemonics[byte(i)]
		if !ok {
			opcodeNames[i] = unknownName(byte(i))
			continue
		}
		opcodeNames[i] = name
		opcodeValues[name] = byte(i)
	}
}

func unknownName(op byte) string {
	return fmt.Sprintf("UNKNOWN(0x%02x)", op)
}

// Name returns the mnemonic of the given opcode byte.
func Name(op byte) string {
	return opcodeNames[op]
}

// Lookup returns the opcode byte of an assigned mnemonic.
func Lookup(name string) (vm.OpCode, bool) {
	b, ok := opcodeValues[name]
	return vm.OpCode(b), ok
}

// Known returns whether the opcode byte has an assigned instruction.
func Known(op byte) bool {
	_, ok := mnemonics[op]
	return ok
}

// IsPush returns whether the opcode is PUSH0 or one of PUSH1 to PUSH32.
func IsPush(op vm.OpCode) bool {
	return op >= vm.PUSH0 && op <= vm.PUSH32
}

// ImmediateSize returns the number of immediate bytes that follow the opcode.
func ImmediateSize(op vm.OpCode) int {
	if !IsPush(op) {
		return 0
	}
	size := int(op) - int(vm.PUSH0)
	if size < 0 {
		panic(fmt.Sprintf("negative immediate size %d for opcode 0x%02x", size, byte(op)))
	}
	return size
}

// IsTerminal returns whether the opcode halts execution of the current frame.
func IsTerminal(op vm.OpCode) bool {
	switch op {
	case vm.STOP, vm.RETURN, vm.REVERT, vm.SELFDESTRUCT:
		return true
	default:
		return false
	}
}

// IsCall returns whether the opcode is one of the four message call variants.
func IsCall(op vm.OpCode) bool {
	switch op {
	case vm.CALL, vm.CALLCODE, vm.DELEGATECALL, vm.STATICCALL:
		return true
	default:
		return false
	}
}
