package trace

import (
	"github.com/eth-act/evmtrace/internal/evm"
	"github.com/ethereum/go-ethereum/core/vm"
)

var _ Strategy = (*staticTracer)(nil)

// staticTracer walks the decoded instructions in offset order.
//
// JUMPI always falls through to the next instruction. JUMP continues with the
// next instruction in linear mode. In jump aware mode it resumes at the lowest
// JUMPDEST that was not visited yet, or at the lowest JUMPDEST at all when gas
// is metered and loops are bounded by the gas limit.
type staticTracer struct {
	name      string
	jumpAware bool
	opts      Options
}

func (s *staticTracer) Name() string {
	return s.name
}

// Trace walks the code and never returns an error.
func (s *staticTracer) Trace(code, _ []byte) (*Result, error) {
	res := newResult(s.name)
	instructions := evm.Decode(code)
	if len(instructions) == 0 {
		res.Reason = StopEndOfCode
		return res, nil
	}

	w := walker{
		tracer:       s,
		instructions: instructions,
		metered:      s.opts.GasLimit > 0,
		gasLeft:      s.opts.GasLimit,
		maxSteps:     s.opts.maxSteps(len(instructions)),
		visited:      make(map[int]struct{}, len(instructions)),
		result:       res,
	}
	if s.jumpAware {
		w.jumpDests = evm.JumpDests(instructions)
		w.indexByOffset = make(map[int]int, len(instructions))
		for i, ins := range instructions {
			w.indexByOffset[ins.Offset] = i
		}
	}

	res.Reason = w.run()
	return res, nil
}

type walker struct {
	tracer       *staticTracer
	instructions []evm.Instruction
	history      pushHistory

	metered  bool
	gasLeft  uint64
	maxSteps int

	visited       map[int]struct{}
	jumpDests     []int
	indexByOffset map[int]int

	result *Result
}

func (w *walker) run() StopReason {
	for idx := 0; ; {
		if idx >= len(w.instructions) {
			return StopEndOfCode
		}
		if w.result.Steps >= w.maxSteps {
			return StopGuard
		}

		ins := w.instructions[idx]
		if _, seen := w.visited[ins.Offset]; seen && !w.metered {
			return StopGuard
		}
		w.visited[ins.Offset] = struct{}{}

		if w.metered {
			cost := w.tracer.opts.Gas.Cost(ins.Name)
			if w.gasLeft < cost {
				return StopOutOfGas
			}
			w.gasLeft -= cost
			w.result.GasUsed += cost
		}

		w.step(ins)

		switch {
		case evm.IsTerminal(ins.Op):
			return StopTerminal

		case ins.Op == vm.JUMP && w.tracer.jumpAware:
			next, ok := w.jumpTarget()
			if !ok {
				return StopGuard
			}
			idx = next

		default:
			idx++
		}
	}
}

// step records the instruction and a detected precompile call.
func (w *walker) step(ins evm.Instruction) {
	w.result.addOpcode(ins.Name)

	if ins.IsPush() && ins.Immediate != nil {
		w.history.push(ins.Immediate)
	}

	if evm.IsCall(ins.Op) {
		if name, ok := w.history.precompile(); ok {
			w.result.addPrecompile(name)
		}
	}
}

// jumpTarget returns the instruction index to resume at after a JUMP.
func (w *walker) jumpTarget() (int, bool) {
	for _, dest := range w.jumpDests {
		if _, seen := w.visited[dest]; seen && !w.metered {
			continue
		}
		return w.indexByOffset[dest], true
	}
	return 0, false
}
