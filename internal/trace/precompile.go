package trace

import (
	"github.com/eth-act/evmtrace/internal/evm"
	"github.com/holiman/uint256"
)

// pushHistorySize is the number of recent push immediates kept as call
// target candidates.
const pushHistorySize = 10

// pushHistory keeps the most recent push immediates of a static walk as
// stack words. Without a modeled stack the call target of a CALL is guessed
// from these values, so any small constant pushed shortly before a call (an argument
// length for example) can be misattributed as the target.
type pushHistory struct {
	values [pushHistorySize]uint256.Int
	next   int
	size   int
}

func (h *pushHistory) push(value []byte) {
	h.values[h.next].SetBytes(value)
	h.next = (h.next + 1) % pushHistorySize
	if h.size < pushHistorySize {
		h.size++
	}
}

// precompile scans the history from the most recent push backwards and
// returns the first value that addresses a known precompile.
func (h *pushHistory) precompile() (string, bool) {
	for i := 1; i <= h.size; i++ {
		idx := (h.next - i + pushHistorySize) % pushHistorySize
		if name, ok := evm.PrecompileFromWord(&h.values[idx]); ok {
			return name, true
		}
	}
	return "", false
}
