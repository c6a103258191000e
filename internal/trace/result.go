package trace

import (
	"maps"

	"github.com/eth-act/evmtrace/internal/evm"
)

// StopReason describes why a trace ended. All reasons are regular outcomes.
type StopReason string

// Stop reasons of a trace.
const (
	StopEndOfCode StopReason = "end-of-code"
	StopTerminal  StopReason = "terminal"
	StopGuard     StopReason = "guard"
	StopOutOfGas  StopReason = "out-of-gas"
	StopFault     StopReason = "fault"
)

func (r StopReason) String() string {
	return string(r)
}

// Result is the outcome of tracing one piece of code.
type Result struct {
	Strategy string
	// Sequence contains the executed opcode mnemonics, interleaved with
	// precompile call markers.
	Sequence         []string
	Counts           map[string]int
	PrecompileCounts map[string]int

	Steps   int
	Reason  StopReason
	GasUsed uint64
	Fault   string
}

func newResult(strategy string) *Result {
	return &Result{
		Strategy:         strategy,
		Sequence:         []string{},
		Counts:           make(map[string]int),
		PrecompileCounts: make(map[string]int),
	}
}

func (r *Result) addOpcode(name string) {
	r.Sequence = append(r.Sequence, name)
	r.Counts[name]++
	r.Steps++
}

func (r *Result) addPrecompile(name string) {
	r.Sequence = append(r.Sequence, evm.PrecompileMarker(name))
	r.PrecompileCounts[name]++
}

// TotalOpcodes returns the number of executed opcodes, excluding precompile markers.
func (r *Result) TotalOpcodes() int {
	var total int
	for _, count := range r.Counts {
		total += count
	}
	return total
}

// TotalPrecompiles returns the number of detected precompile calls.
func (r *Result) TotalPrecompiles() int {
	var total int
	for _, count := range r.PrecompileCounts {
		total += count
	}
	return total
}

// InstructionCounts merges the opcode and precompile counts.
func (r *Result) InstructionCounts() map[string]int {
	counts := maps.Clone(r.Counts)
	for name, count := range r.PrecompileCounts {
		counts[name] += count
	}
	return counts
}

// TotalInstructions returns the number of opcodes plus detected precompile calls.
func (r *Result) TotalInstructions() int {
	return r.TotalOpcodes() + r.TotalPrecompiles()
}
