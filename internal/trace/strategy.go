// Package trace approximates the opcode execution sequence of EVM bytecode.
//
// Static strategies walk the decoded instruction list without modeling the
// stack, memory or storage. The walk can therefore not compute jump targets or
// branch conditions and guesses precompile call targets from recently pushed
// values. The execute strategy runs the code on the go-ethereum interpreter
// instead and records the opcodes that were actually executed.
package trace

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Names of the available strategies.
const (
	Linear    = "linear"
	JumpAware = "jumpaware"
	Execute   = "execute"
)

const (
	defaultMaxSteps        = 100_000
	defaultStepsPerOpcode  = 100
	defaultMeteredMaxSteps = 10_000_000
)

// ErrUnknownStrategy is returned when a strategy name is not supported.
var ErrUnknownStrategy = errors.New("unknown trace strategy")

// Strategy traces the execution of a piece of code.
type Strategy interface {
	// Name returns the name of the strategy that is recorded in every result.
	Name() string
	// Trace returns the opcode trace of the code. The call data is only
	// used by strategies that execute the code.
	Trace(code, calldata []byte) (*Result, error)
}

// Options control the tracing behavior.
type Options struct {
	// MaxSteps limits the number of traced opcodes, 0 selects a default
	// based on the code size and gas limit.
	MaxSteps int
	// GasLimit enables gas metering when not 0.
	GasLimit uint64
	// Gas overrides the base gas costs used for metering.
	Gas *GasSchedule
}

// maxSteps returns the iteration ceiling for a static walk over the given
// number of instructions.
func (o Options) maxSteps(instructions int) int {
	if o.MaxSteps > 0 {
		return o.MaxSteps
	}
	if o.GasLimit > 0 {
		switch {
		case o.GasLimit >= math.MaxInt/2:
			return math.MaxInt
		case o.GasLimit*2 > defaultMeteredMaxSteps:
			return int(o.GasLimit * 2)
		default:
			return defaultMeteredMaxSteps
		}
	}
	return min(defaultMaxSteps, instructions*defaultStepsPerOpcode)
}

// Strategies returns the names of all supported strategies.
func Strategies() []string {
	return []string{Linear, JumpAware, Execute}
}

// New returns the strategy with the given name.
// nolint: ireturn
func New(name string, opts Options) (Strategy, error) {
	switch strings.ToLower(name) {
	case Linear, "":
		return &staticTracer{name: Linear, opts: opts}, nil
	case JumpAware:
		return &staticTracer{name: JumpAware, jumpAware: true, opts: opts}, nil
	case Execute:
		return &executor{opts: opts}, nil
	default:
		return nil, fmt.Errorf("%w '%s', valid strategies: %s",
			ErrUnknownStrategy, name, strings.Join(Strategies(), ", "))
	}
}

// WithGasLimit returns a copy of the strategy that meters gas with the given
// limit. A limit of 0 returns the strategy unchanged.
// nolint: ireturn
func WithGasLimit(s Strategy, gasLimit uint64) Strategy {
	if gasLimit == 0 {
		return s
	}

	switch st := s.(type) {
	case *staticTracer:
		clone := *st
		clone.opts.GasLimit = gasLimit
		return &clone
	case *executor:
		clone := *st
		clone.opts.GasLimit = gasLimit
		return &clone
	default:
		return s
	}
}

// WithState returns a copy of the strategy that runs the code at the given
// address on top of the pre state. Only the execute strategy uses a state,
// other strategies are returned unchanged. A zero address keeps the default
// code address.
// nolint: ireturn
func WithState(s Strategy, pre State, address common.Address) Strategy {
	st, ok := s.(*executor)
	if !ok {
		return s
	}

	clone := *st
	clone.pre = pre
	clone.address = address
	return &clone
}
