// Package evm provides EVM bytecode decoding support for the opcode tracer.
//
// # Opcode Table
//
// Every byte value maps to a mnemonic. The table is built once at package
// initialization and never changes afterwards, so the decoder, the tracers and
// the report writers always agree on the name of an opcode. Byte values
// without an assigned instruction are rendered as UNKNOWN(0xhh).
//
// # Instruction Format
//
// Legacy EVM code is a flat byte stream. All instructions are a single opcode
// byte, except PUSH1 to PUSH32 which are followed by 1 to 32 immediate bytes.
// The immediate length is fully determined by the opcode byte:
//
//	PUSH0         0x5f  no immediate
//	PUSH1..PUSH32 0x60..0x7f  opcode - 0x5f immediate bytes
//
// # Decoding
//
// The decoder is a disassembler, not a validator. Any byte sequence decodes
// without error:
//   - unknown opcodes are kept as instructions with a synthetic mnemonic
//   - a push at the end of the buffer captures only the bytes that remain
//   - offsets strictly increase and every byte belongs to exactly one instruction
//
// # Usage Example
//
//	code, err := evm.ParseHex("0x6001600201")
//	if err != nil {
//		return fmt.Errorf("parsing code: %w", err)
//	}
//	for _, ins := range evm.Decode(code) {
//		fmt.Println(ins)
//	}
package evm
