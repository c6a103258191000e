package evm

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
	"github.com/retroenv/retrogolib/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		op       byte
		expected string
	}{
		{0x00, "STOP"},
		{0x20, "SHA3"},
		{0x44, "DIFFICULTY"},
		{0x5f, "PUSH0"},
		{0x60, "PUSH1"},
		{0x7f, "PUSH32"},
		{0x80, "DUP1"},
		{0x8f, "DUP16"},
		{0x90, "SWAP1"},
		{0x9f, "SWAP16"},
		{0xfa, "STATICCALL"},
		{0xfe, "INVALID"},
		{0x0c, "UNKNOWN(0x0c)"},
		{0xef, "UNKNOWN(0xef)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Name(tt.op))
		})
	}
}

func TestLookup(t *testing.T) {
	op, ok := Lookup("JUMPDEST")
	assert.True(t, ok)
	assert.Equal(t, vm.JUMPDEST, op)

	_, ok = Lookup("UNKNOWN(0x0c)")
	assert.False(t, ok)

	for i := 0; i < 256; i++ {
		if !Known(byte(i)) {
			continue
		}
		op, ok := Lookup(Name(byte(i)))
		assert.True(t, ok)
		assert.Equal(t, byte(i), byte(op))
	}
}

func TestImmediateSize(t *testing.T) {
	assert.Equal(t, 0, ImmediateSize(vm.PUSH0))
	assert.Equal(t, 1, ImmediateSize(vm.PUSH1))
	assert.Equal(t, 20, ImmediateSize(vm.PUSH20))
	assert.Equal(t, 32, ImmediateSize(vm.PUSH32))
	assert.Equal(t, 0, ImmediateSize(vm.ADD))
	assert.Equal(t, 0, ImmediateSize(vm.DUP1))
}

func TestOpcodeClasses(t *testing.T) {
	for _, op := range []vm.OpCode{vm.STOP, vm.RETURN, vm.REVERT, vm.SELFDESTRUCT} {
		assert.True(t, IsTerminal(op), "expected %s to be terminal", op)
	}
	assert.False(t, IsTerminal(vm.INVALID))
	assert.False(t, IsTerminal(vm.JUMP))

	for _, op := range []vm.OpCode{vm.CALL, vm.CALLCODE, vm.DELEGATECALL, vm.STATICCALL} {
		assert.True(t, IsCall(op), "expected %s to be a call", op)
	}
	assert.False(t, IsCall(vm.CREATE))
}

func TestPrecompileFromWord(t *testing.T) {
	tests := []struct {
		name     string
		value    []byte
		expected string
		found    bool
	}{
		{"ecrecover", []byte{0x01}, "ECRECOVER", true},
		{"identity padded", []byte{0x00, 0x00, 0x04}, "IDENTITY", true},
		{"last bls", []byte{0x11}, "BLS12_MAP_FP2_TO_G2", true},
		{"zero address", []byte{0x00}, "", false},
		{"out of range", []byte{0x12}, "", false},
		{"empty", nil, "", false},
		{"cropped to 20 bytes", append([]byte{0xff, 0xff}, common.BytesToAddress([]byte{0x08}).Bytes()...), "ECPAIRING", true},
		{"high bytes inside address", common.BytesToAddress([]byte{0x01, 0x00, 0x00, 0x08}).Bytes(), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := PrecompileFromWord(new(uint256.Int).SetBytes(tt.value))
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestPrecompileNames(t *testing.T) {
	assert.Len(t, Precompiles, 17)
	assert.True(t, IsPrecompileName("MODEXP"))
	assert.False(t, IsPrecompileName("CALL"))
	assert.Equal(t, "PRECOMPILE_SHA256", PrecompileMarker("SHA256"))
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
		wantErr  bool
	}{
		{"prefixed", "0x6001", []byte{0x60, 0x01}, false},
		{"upper prefix", "0X6001", []byte{0x60, 0x01}, false},
		{"unprefixed", "6001", []byte{0x60, 0x01}, false},
		{"whitespace", "  0xff\n", []byte{0xff}, false},
		{"empty", "", []byte{}, false},
		{"prefix only", "0x", []byte{}, false},
		{"odd length", "0x600", nil, true},
		{"invalid character", "0xzz", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseHex(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidHex))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, b)
		})
	}
}
