package trace

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// staticCallIdentity pushes the STATICCALL arguments with the identity
// precompile as target and stops afterwards.
const staticCallIdentity = "0x600060006020600060045afa00"

func TestPushHistory(t *testing.T) {
	var h pushHistory
	_, ok := h.precompile()
	assert.False(t, ok)

	h.push([]byte{0x05})
	h.push([]byte{0x20})
	h.push([]byte{0x02})
	name, ok := h.precompile()
	assert.True(t, ok)
	assert.Equal(t, "SHA256", name)

	// values that address no precompile are skipped
	h.push([]byte{0x00})
	h.push([]byte{0xff, 0xff})
	name, ok = h.precompile()
	assert.True(t, ok)
	assert.Equal(t, "SHA256", name)
}

func TestPushHistory_Wraparound(t *testing.T) {
	var h pushHistory
	h.push([]byte{0x01})
	for i := 0; i < pushHistorySize; i++ {
		h.push([]byte{0x40})
	}
	_, ok := h.precompile()
	assert.False(t, ok, "evicted value must not be found")
	assert.Equal(t, pushHistorySize, h.size)

	h.push([]byte{0x09})
	name, ok := h.precompile()
	assert.True(t, ok)
	assert.Equal(t, "BLAKE2F", name)
}

func TestStatic_PrecompileMarker(t *testing.T) {
	code := mustParse(t, staticCallIdentity)

	for _, name := range []string{Linear, JumpAware} {
		res, err := newStrategy(t, name, Options{}).Trace(code, nil)
		assert.NoError(t, err)
		assert.Equal(t, []string{
			"PUSH1", "PUSH1", "PUSH1", "PUSH1", "PUSH1", "GAS", "STATICCALL",
			"PRECOMPILE_IDENTITY", "STOP",
		}, res.Sequence)
		assert.Equal(t, map[string]int{"IDENTITY": 1}, res.PrecompileCounts)
		assert.Equal(t, 5, res.Counts["PUSH1"])
		assert.Equal(t, 0, res.Counts["PRECOMPILE_IDENTITY"])
		assert.Equal(t, 10, res.TotalInstructions())
		assert.Equal(t, 1, res.InstructionCounts()["IDENTITY"])
		checkCountInvariant(t, res)
	}
}

func TestStatic_CallWithoutPrecompile(t *testing.T) {
	// PUSH20 of a regular address, GAS, CALL, STOP
	code := mustParse(t, "0x73"+"d8da6bf26964af9d7eed9e03e53415d37aa96045"+"5af100")
	res, err := newStrategy(t, Linear, Options{}).Trace(code, nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{"PUSH20", "GAS", "CALL", "STOP"}, res.Sequence)
	assert.Len(t, res.PrecompileCounts, 0)
}

func TestStatic_PrecompileOncePerCall(t *testing.T) {
	// PUSH1 0x01, CALL, CALL, STOP: both calls see the same history entry
	res, err := newStrategy(t, Linear, Options{}).Trace(mustParse(t, "0x6001f1f100"), nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{"PUSH1", "CALL", "PRECOMPILE_ECRECOVER", "CALL", "PRECOMPILE_ECRECOVER", "STOP"},
		res.Sequence)
	assert.Equal(t, 2, res.PrecompileCounts["ECRECOVER"])
}
