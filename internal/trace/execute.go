package trace

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/eth-act/evmtrace/internal/evm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/core/vm/runtime"
	"github.com/ethereum/go-ethereum/params"
)

// defaultExecutionGas is the gas limit of executions without an explicit limit.
const defaultExecutionGas = 30_000_000

// defaultAddress is the account that runs code without a known address.
var defaultAddress = common.BytesToAddress([]byte("contract"))

// Account is the pre state of an account that the execute strategy loads
// before running the code.
type Account struct {
	Code    []byte
	Balance *big.Int
	Nonce   uint64
	Storage map[common.Hash]common.Hash
}

// State maps addresses to their pre state.
type State map[common.Address]Account

var _ Strategy = (*executor)(nil)

// executor runs the code on the go-ethereum interpreter with an opcode
// logger attached. Call data is passed to the execution.
type executor struct {
	opts    Options
	pre     State
	address common.Address
}

func (e *executor) Name() string {
	return Execute
}

// Trace executes the code at the configured address on top of the pre state.
// Execution errors like a revert, an invalid jump or running out of gas end
// the trace and are reported in the result.
func (e *executor) Trace(code, calldata []byte) (*Result, error) {
	res := newResult(Execute)
	if len(code) == 0 {
		res.Reason = StopEndOfCode
		return res, nil
	}

	opts := e.opts
	if opts.GasLimit == 0 {
		opts.GasLimit = defaultExecutionGas
	}

	statedb, err := e.newState(code)
	if err != nil {
		return nil, err
	}

	logger := &opcodeLogger{
		result:   res,
		maxSteps: opts.maxSteps(0),
	}
	cfg := &runtime.Config{
		ChainConfig: chainConfig(),
		GasLimit:    opts.GasLimit,
		Random:      &common.Hash{},
		State:       statedb,
		EVMConfig: vm.Config{
			Tracer: logger,
		},
	}

	_, _, err = runtime.Call(e.codeAddress(), calldata, cfg)
	res.GasUsed = logger.gasUsed
	res.Reason = classifyExecution(res, logger.aborted, err)
	if res.Reason == StopFault {
		res.Fault = err.Error()
	}
	return res, nil
}

func (e *executor) codeAddress() common.Address {
	if e.address == (common.Address{}) {
		return defaultAddress
	}
	return e.address
}

// newState creates an in-memory state database holding the pre state
// accounts and the traced code at the code address.
func (e *executor) newState(code []byte) (*state.StateDB, error) {
	statedb, err := state.New(types.EmptyRootHash, state.NewDatabase(rawdb.NewMemoryDatabase()), nil)
	if err != nil {
		return nil, fmt.Errorf("creating state: %w", err)
	}

	for address, account := range e.pre {
		statedb.CreateAccount(address)
		if len(account.Code) > 0 {
			statedb.SetCode(address, account.Code)
		}
		if account.Balance != nil {
			statedb.SetBalance(address, account.Balance)
		}
		statedb.SetNonce(address, account.Nonce)
		for key, value := range account.Storage {
			statedb.SetState(address, key, value)
		}
	}

	address := e.codeAddress()
	if !statedb.Exist(address) {
		statedb.CreateAccount(address)
	}
	statedb.SetCode(address, code)
	return statedb, nil
}

// chainConfig returns a chain config with all forks up to Cancun active from
// genesis.
func chainConfig() *params.ChainConfig {
	cfg := *params.AllDevChainProtocolChanges
	cfg.ShanghaiTime = new(uint64)
	cfg.CancunTime = new(uint64)
	return &cfg
}

func classifyExecution(res *Result, aborted bool, err error) StopReason {
	switch {
	case aborted:
		return StopGuard
	case err == nil:
		if n := len(res.Sequence); n > 0 {
			if op, ok := evm.Lookup(res.Sequence[n-1]); ok && evm.IsTerminal(op) {
				return StopTerminal
			}
		}
		return StopEndOfCode
	case errors.Is(err, vm.ErrExecutionReverted):
		return StopTerminal
	case errors.Is(err, vm.ErrOutOfGas):
		return StopOutOfGas
	default:
		return StopFault
	}
}

var _ vm.EVMLogger = (*opcodeLogger)(nil)

// opcodeLogger records every executed opcode of all call frames and every
// call frame that is entered at a precompile address.
type opcodeLogger struct {
	env      *vm.EVM
	result   *Result
	maxSteps int
	aborted  bool
	gasUsed  uint64
}

func (l *opcodeLogger) CaptureTxStart(_ uint64) {}

func (l *opcodeLogger) CaptureTxEnd(_ uint64) {}

func (l *opcodeLogger) CaptureStart(env *vm.EVM, _ common.Address, _ common.Address, _ bool,
	_ []byte, _ uint64, _ *big.Int) {
	l.env = env
}

func (l *opcodeLogger) CaptureEnd(_ []byte, gasUsed uint64, _ error) {
	l.gasUsed = gasUsed
}

func (l *opcodeLogger) CaptureEnter(typ vm.OpCode, _ common.Address, to common.Address, _ []byte,
	_ uint64, _ *big.Int) {
	if l.aborted || !evm.IsCall(typ) {
		return
	}
	if name, ok := evm.PrecompileName(to); ok {
		l.result.addPrecompile(name)
	}
}

func (l *opcodeLogger) CaptureExit(_ []byte, _ uint64, _ error) {}

func (l *opcodeLogger) CaptureState(_ uint64, op vm.OpCode, _, _ uint64, _ *vm.ScopeContext,
	_ []byte, _ int, _ error) {
	if l.aborted {
		return
	}
	if l.result.Steps >= l.maxSteps {
		l.aborted = true
		if l.env != nil {
			l.env.Cancel()
		}
		return
	}

	l.result.addOpcode(evm.Name(byte(op)))
}

func (l *opcodeLogger) CaptureFault(_ uint64, _ vm.OpCode, _, _ uint64, _ *vm.ScopeContext, _ int, _ error) {
}
