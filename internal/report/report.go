// Package report represents the result of a fixture trace analysis.
package report

import (
	"cmp"
	"slices"

	"github.com/eth-act/evmtrace/internal/evm"
	"github.com/eth-act/evmtrace/internal/trace"
)

// Trace is the trace record of one piece of code.
type Trace struct {
	BytecodeLength    int            `json:"bytecode_length"`
	OpcodeSequence    []string       `json:"opcode_sequence"`
	OpcodeCounts      map[string]int `json:"opcode_counts"`
	PrecompileCounts  map[string]int `json:"precompile_counts"`
	InstructionCounts map[string]int `json:"instruction_counts"`
	TotalOpcodes      int            `json:"total_opcodes"`
	TotalInstructions int            `json:"total_instructions"`
	Strategy          string         `json:"strategy"`
	StopReason        string         `json:"stop_reason"`
	GasUsed           uint64         `json:"gas_used,omitempty"`
	Fault             string         `json:"fault,omitempty"`
}

// NewTrace creates the trace record of a trace result.
func NewTrace(bytecodeLength int, res *trace.Result) *Trace {
	return &Trace{
		BytecodeLength:    bytecodeLength,
		OpcodeSequence:    res.Sequence,
		OpcodeCounts:      res.Counts,
		PrecompileCounts:  res.PrecompileCounts,
		InstructionCounts: res.InstructionCounts(),
		TotalOpcodes:      res.TotalOpcodes(),
		TotalInstructions: res.TotalInstructions(),
		Strategy:          res.Strategy,
		StopReason:        res.Reason.String(),
		GasUsed:           res.GasUsed,
		Fault:             res.Fault,
	}
}

// Contract is the analysis of the code of a pre state account.
type Contract struct {
	Address string `json:"address"`
	*Trace
	Error string `json:"error,omitempty"`
}

// Transaction is the analysis of a transaction. The trace is only set for
// calls to an account with code and for contract creations.
type Transaction struct {
	Block        int    `json:"block"`
	Index        int    `json:"index"`
	To           string `json:"to"`
	From         string `json:"from,omitempty"`
	Value        string `json:"value"`
	InputLength  int    `json:"input_length"`
	InputPreview string `json:"input_preview,omitempty"`
	IsCreation   bool   `json:"is_creation,omitempty"`
	GasLimit     uint64 `json:"gas_limit,omitempty"`
	*Trace
	Error string `json:"error,omitempty"`
}

// TestCase is the analysis of one test of a fixture file.
type TestCase struct {
	Name         string        `json:"test_name"`
	Contracts    []Contract    `json:"contracts"`
	Transactions []Transaction `json:"transactions"`
}

// File is the analysis of one fixture file.
type File struct {
	Name  string      `json:"file"`
	Tests []*TestCase `json:"tests"`
	Error string      `json:"error,omitempty"`
}

// Report is the analysis of all processed fixture files.
type Report struct {
	Files []*File `json:"files"`
}

// Count is the number of occurrences of an instruction.
type Count struct {
	Name  string
	Count int
}

// SortedCounts returns the counts sorted by descending count, ties are
// sorted by name.
func SortedCounts(counts map[string]int) []Count {
	sorted := make([]Count, 0, len(counts))
	for name, count := range counts {
		sorted = append(sorted, Count{Name: name, Count: count})
	}
	slices.SortFunc(sorted, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return sorted
}

// Totals contains the instruction counts summed over a whole report.
type Totals struct {
	Opcodes     map[string]int
	Precompiles map[string]int
}

// Totals sums the instruction counts of all traced contracts and
// transactions, split into opcodes and precompiles.
func (r *Report) Totals() Totals {
	totals := Totals{
		Opcodes:     map[string]int{},
		Precompiles: map[string]int{},
	}

	add := func(t *Trace) {
		if t == nil {
			return
		}
		for name, count := range t.InstructionCounts {
			if evm.IsPrecompileName(name) {
				totals.Precompiles[name] += count
			} else {
				totals.Opcodes[name] += count
			}
		}
	}

	for _, file := range r.Files {
		for _, test := range file.Tests {
			for _, contract := range test.Contracts {
				add(contract.Trace)
			}
			for _, tx := range test.Transactions {
				add(tx.Trace)
			}
		}
	}
	return totals
}

// Unique returns the number of distinct instructions.
func (t Totals) Unique() int {
	return len(t.Opcodes) + len(t.Precompiles)
}

// Count returns the total number of instructions.
func (t Totals) Count() int {
	return sum(t.Opcodes) + sum(t.Precompiles)
}

// OpcodeCount returns the total number of opcodes.
func (t Totals) OpcodeCount() int {
	return sum(t.Opcodes)
}

// PrecompileCount returns the total number of precompile calls.
func (t Totals) PrecompileCount() int {
	return sum(t.Precompiles)
}

// TracedTransactions returns the number of transactions with a trace.
func (r *Report) TracedTransactions() int {
	var n int
	for _, file := range r.Files {
		for _, test := range file.Tests {
			for _, tx := range test.Transactions {
				if tx.Trace != nil {
					n++
				}
			}
		}
	}
	return n
}

func sum(counts map[string]int) int {
	var total int
	for _, count := range counts {
		total += count
	}
	return total
}
