package evm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PrecompileMarkerPrefix prefixes the synthesized trace entries that mark a
// detected precompile call.
const PrecompileMarkerPrefix = "PRECOMPILE_"

// Precompiles maps the well-known precompile addresses to their names.
var Precompiles = map[common.Address]string{
	common.BytesToAddress([]byte{0x01}): "ECRECOVER",
	common.BytesToAddress([]byte{0x02}): "SHA256",
	common.BytesToAddress([]byte{0x03}): "RIPEMD160",
	common.BytesToAddress([]byte{0x04}): "IDENTITY",
	common.BytesToAddress([]byte{0x05}): "MODEXP",
	common.BytesToAddress([]byte{0x06}): "ECADD",
	common.BytesToAddress([]byte{0x07}): "ECMUL",
	common.BytesToAddress([]byte{0x08}): "ECPAIRING",
	common.BytesToAddress([]byte{0x09}): "BLAKE2F",
	common.BytesToAddress([]byte{0x0a}): "KZG_POINT_EVALUATION",

	// BLS12-381, EIP-2537
	common.BytesToAddress([]byte{0x0b}): "BLS12_G1ADD",
	common.BytesToAddress([]byte{0x0c}): "BLS12_G1MSM",
	common.BytesToAddress([]byte{0x0d}): "BLS12_G2ADD",
	common.BytesToAddress([]byte{0x0e}): "BLS12_G2MSM",
	common.BytesToAddress([]byte{0x0f}): "BLS12_PAIRING_CHECK",
	common.BytesToAddress([]byte{0x10}): "BLS12_MAP_FP_TO_G1",
	common.BytesToAddress([]byte{0x11}): "BLS12_MAP_FP2_TO_G2",
}

var precompileNames = func() map[string]struct{} {
	names := make(map[string]struct{}, len(Precompiles))
	for _, name := range Precompiles {
		names[name] = struct{}{}
	}
	return names
}()

// PrecompileName returns the name of the precompile at the given address.
func PrecompileName(addr common.Address) (string, bool) {
	name, ok := Precompiles[addr]
	return name, ok
}

// PrecompileFromWord interprets a stack word as a call target address.
// Only the last 20 bytes of the word are used, like the call opcodes do.
func PrecompileFromWord(word *uint256.Int) (string, bool) {
	return PrecompileName(common.Address(word.Bytes20()))
}

// IsPrecompileName returns whether the name belongs to a known precompile.
func IsPrecompileName(name string) bool {
	_, ok := precompileNames[name]
	return ok
}

// PrecompileMarker returns the trace sequence entry for a precompile call.
func PrecompileMarker(name string) string {
	return PrecompileMarkerPrefix + name
}
