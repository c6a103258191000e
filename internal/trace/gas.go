package trace

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
)

// defaultGasCost is charged for opcodes without a base cost entry.
const defaultGasCost = 1

// baseGasCosts contains the static part of the gas cost of each opcode.
// Dynamic components like memory expansion, cold access surcharges and
// copy costs are not modeled.
var baseGasCosts = func() map[string]uint64 {
	costs := map[string]uint64{
		"STOP": 0, "RETURN": 0, "REVERT": 0, "INVALID": 0,

		"ADD": vm.GasFastestStep, "SUB": vm.GasFastestStep, "LT": vm.GasFastestStep,
		"GT": vm.GasFastestStep, "SLT": vm.GasFastestStep, "SGT": vm.GasFastestStep,
		"EQ": vm.GasFastestStep, "ISZERO": vm.GasFastestStep, "AND": vm.GasFastestStep,
		"OR": vm.GasFastestStep, "XOR": vm.GasFastestStep, "NOT": vm.GasFastestStep,
		"BYTE": vm.GasFastestStep, "SHL": vm.GasFastestStep, "SHR": vm.GasFastestStep,
		"SAR": vm.GasFastestStep, "CALLDATALOAD": vm.GasFastestStep,
		"CALLDATACOPY": vm.GasFastestStep, "CODECOPY": vm.GasFastestStep,
		"RETURNDATACOPY": vm.GasFastestStep, "MLOAD": vm.GasFastestStep,
		"MSTORE": vm.GasFastestStep, "MSTORE8": vm.GasFastestStep,
		"BLOBHASH": vm.GasFastestStep, "MCOPY": vm.GasFastestStep,

		"MUL": vm.GasFastStep, "DIV": vm.GasFastStep, "SDIV": vm.GasFastStep,
		"MOD": vm.GasFastStep, "SMOD": vm.GasFastStep, "SIGNEXTEND": vm.GasFastStep,
		"SELFBALANCE": vm.GasFastStep,

		"ADDMOD": vm.GasMidStep, "MULMOD": vm.GasMidStep, "JUMP": vm.GasMidStep,
		"JUMPI": vm.GasSlowStep, "BLOCKHASH": vm.GasExtStep,

		"ADDRESS": vm.GasQuickStep, "ORIGIN": vm.GasQuickStep, "CALLER": vm.GasQuickStep,
		"CALLVALUE": vm.GasQuickStep, "CALLDATASIZE": vm.GasQuickStep,
		"CODESIZE": vm.GasQuickStep, "GASPRICE": vm.GasQuickStep,
		"RETURNDATASIZE": vm.GasQuickStep, "COINBASE": vm.GasQuickStep,
		"TIMESTAMP": vm.GasQuickStep, "NUMBER": vm.GasQuickStep,
		"DIFFICULTY": vm.GasQuickStep, "GASLIMIT": vm.GasQuickStep,
		"CHAINID": vm.GasQuickStep, "BASEFEE": vm.GasQuickStep,
		"BLOBBASEFEE": vm.GasQuickStep, "POP": vm.GasQuickStep, "PC": vm.GasQuickStep,
		"MSIZE": vm.GasQuickStep, "GAS": vm.GasQuickStep, "PUSH0": vm.GasQuickStep,

		"EXP":      params.ExpGas,
		"SHA3":     params.Keccak256Gas,
		"JUMPDEST": params.JumpdestGas,

		"BALANCE": params.WarmStorageReadCostEIP2929, "EXTCODESIZE": params.WarmStorageReadCostEIP2929,
		"EXTCODECOPY": params.WarmStorageReadCostEIP2929, "EXTCODEHASH": params.WarmStorageReadCostEIP2929,
		"SLOAD": params.WarmStorageReadCostEIP2929, "SSTORE": params.WarmStorageReadCostEIP2929,
		"TLOAD": params.WarmStorageReadCostEIP2929, "TSTORE": params.WarmStorageReadCostEIP2929,
		"CALL": params.WarmStorageReadCostEIP2929, "CALLCODE": params.WarmStorageReadCostEIP2929,
		"DELEGATECALL": params.WarmStorageReadCostEIP2929, "STATICCALL": params.WarmStorageReadCostEIP2929,

		"CREATE":       params.CreateGas,
		"CREATE2":      params.Create2Gas,
		"SELFDESTRUCT": params.SelfdestructGasEIP150,
	}

	for i := 1; i <= 32; i++ {
		costs[fmt.Sprintf("PUSH%d", i)] = vm.GasFastestStep
	}
	for i := 1; i <= 16; i++ {
		costs[fmt.Sprintf("DUP%d", i)] = vm.GasFastestStep
		costs[fmt.Sprintf("SWAP%d", i)] = vm.GasFastestStep
	}
	for i := 0; i <= 4; i++ {
		costs[fmt.Sprintf("LOG%d", i)] = params.LogGas
	}
	return costs
}()

// GasSchedule returns the base gas cost of opcodes by mnemonic.
// Overrides take precedence over the built-in base costs.
type GasSchedule struct {
	Overrides map[string]uint64
}

// Cost returns the gas charged for executing the named opcode.
func (g *GasSchedule) Cost(name string) uint64 {
	if g != nil && g.Overrides != nil {
		if cost, ok := g.Overrides[name]; ok {
			return cost
		}
	}
	if cost, ok := baseGasCosts[name]; ok {
		return cost
	}
	return defaultGasCost
}
