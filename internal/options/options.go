// Package options contains the program options.
package options

import (
	"runtime"
	"strings"

	"github.com/eth-act/evmtrace/internal/trace"
)

// DefaultOutput is the default directory that reports are written to.
const DefaultOutput = "./opcode_traces"

// Parameters contains file path options of the analyze command.
type Parameters struct {
	Input     string // fixture directory or file
	Output    string // report directory
	TestCase  string // file name substring filter
	GasFilter string // gas-value_<GasFilter> test name filter
}

// Flags contains behavior options of the analyze command.
type Flags struct {
	Strategy string
	MaxSteps int
	Workers  int
	Verify   bool
	Debug    bool
	Quiet    bool
}

// Program options of the fixture analysis.
type Program struct {
	Parameters
	Flags
}

// NewProgram returns a new options instance with default options.
func NewProgram() Program {
	return Program{
		Parameters: Parameters{
			Output: DefaultOutput,
		},
		Flags: Flags{
			Strategy: trace.Linear,
			Workers:  runtime.NumCPU(),
		},
	}
}

// TraceOptions returns the options for the trace strategy.
func (p Program) TraceOptions() trace.Options {
	return trace.Options{
		MaxSteps: p.MaxSteps,
	}
}

// Trace contains the options of the commands that process a single code blob.
type Trace struct {
	Code     string // inline hex code, takes precedence over Input
	Input    string // file containing the code
	CallData string // hex call data passed to the execute strategy
	Gas      uint64
	Strategy string
	MaxSteps int
	JSON     bool
	Debug    bool
	Quiet    bool
}

// NewTrace returns a new single code options instance with default options.
func NewTrace() Trace {
	return Trace{
		Strategy: trace.Linear,
	}
}

// TraceOptions returns the options for the trace strategy.
func (t Trace) TraceOptions() trace.Options {
	return trace.Options{
		MaxSteps: t.MaxSteps,
		GasLimit: t.Gas,
	}
}

// Normalize lower cases the strategy name.
func Normalize(strategy string) string {
	return strings.ToLower(strings.TrimSpace(strategy))
}
