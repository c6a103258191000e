package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eth-act/evmtrace/internal/fixture"
	"github.com/eth-act/evmtrace/internal/trace"
	"github.com/ethereum/go-ethereum/common"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

const (
	contractAddress = "0x0000000000000000000000000000000000001000"
	senderAddress   = "0xa94f5374fce5edbccd0fd5da9a9c94e3e7e5c3c1"
)

const testFixture = `{
  "test_transfer_gas-value_1M": {
    "pre": {
      "0x0000000000000000000000000000000000001000": {"code": "0x600160020100"},
      "0x0000000000000000000000000000000000002000": {"code": "0x6g"},
      "0xa94f5374fce5edbccd0fd5da9a9c94e3e7e5c3c1": {"code": "0x"}
    },
    "blocks": [{"transactions": [
      {"to": "0x0000000000000000000000000000000000001000", "data": "0x01", "sender": "0xa94f5374fce5edbccd0fd5da9a9c94e3e7e5c3c1", "gasLimit": "0x0f4240", "value": "0x0a"},
      {"to": "", "data": "0x6000", "sender": "0xa94f5374fce5edbccd0fd5da9a9c94e3e7e5c3c1", "gasLimit": "0x5208"},
      {"to": "0xa94f5374fce5edbccd0fd5da9a9c94e3e7e5c3c1", "data": "0x"},
      {"to": "0x0000000000000000000000000000000000001000", "data": "0xzz"}
    ]}]
  },
  "test_other_gas-value_10M": {
    "pre": {},
    "blocks": []
  }
}`

func newAnalyzer(t *testing.T, opts Options) *Analyzer {
	t.Helper()
	strategy, err := trace.New(trace.Linear, trace.Options{})
	assert.NoError(t, err)
	return New(log.NewTestLogger(t), strategy, opts)
}

func loadFixture(t *testing.T) fixture.File {
	t.Helper()
	file, err := fixture.Load(strings.NewReader(testFixture))
	assert.NoError(t, err)
	return file
}

//nolint:funlen // test functions can be long
func TestAnalyzeFile(t *testing.T) {
	a := newAnalyzer(t, Options{})
	result, err := a.AnalyzeFile(context.Background(), "fixture.json", loadFixture(t))
	assert.NoError(t, err)
	assert.Equal(t, "fixture.json", result.Name)
	assert.Len(t, result.Tests, 2)
	assert.Equal(t, "test_other_gas-value_10M", result.Tests[0].Name)

	test := result.Tests[1]
	assert.Equal(t, "test_transfer_gas-value_1M", test.Name)

	// contracts are sorted by address, the account without code is skipped
	assert.Len(t, test.Contracts, 2)
	contract := test.Contracts[0]
	assert.Equal(t, contractAddress, contract.Address)
	assert.Empty(t, contract.Error)
	assert.NotNil(t, contract.Trace)
	assert.Equal(t, []string{"PUSH1", "PUSH1", "ADD", "STOP"}, contract.OpcodeSequence)
	assert.Equal(t, 6, contract.BytecodeLength)
	assert.Equal(t, uint64(0), contract.GasUsed)

	invalid := test.Contracts[1]
	assert.Nil(t, invalid.Trace)
	assert.Contains(t, invalid.Error, "invalid hex data")

	assert.Len(t, test.Transactions, 4)

	call := test.Transactions[0]
	assert.Equal(t, 0, call.Index)
	assert.Equal(t, senderAddress, call.From)
	assert.Equal(t, "10", call.Value)
	assert.Equal(t, 1, call.InputLength)
	assert.Equal(t, "01", call.InputPreview)
	assert.False(t, call.IsCreation)
	assert.Equal(t, uint64(1_000_000), call.GasLimit)
	assert.NotNil(t, call.Trace)
	assert.Equal(t, uint64(9), call.GasUsed)
	assert.Equal(t, "terminal", call.StopReason)

	create := test.Transactions[1]
	assert.True(t, create.IsCreation)
	assert.Equal(t, uint64(21000), create.GasLimit)
	assert.NotNil(t, create.Trace)
	assert.Equal(t, []string{"PUSH1"}, create.OpcodeSequence)
	assert.Equal(t, "end-of-code", create.StopReason)

	transfer := test.Transactions[2]
	assert.Nil(t, transfer.Trace)
	assert.Empty(t, transfer.Error)
	assert.Equal(t, "0", transfer.Value)

	broken := test.Transactions[3]
	assert.Nil(t, broken.Trace)
	assert.Contains(t, broken.Error, "parsing input")
}

func TestAnalyzeFile_GasFilter(t *testing.T) {
	a := newAnalyzer(t, Options{GasFilter: "10M"})
	result, err := a.AnalyzeFile(context.Background(), "fixture.json", loadFixture(t))
	assert.NoError(t, err)
	assert.Len(t, result.Tests, 1)
	assert.Equal(t, "test_other_gas-value_10M", result.Tests[0].Name)

	a = newAnalyzer(t, Options{GasFilter: "0.5"})
	result, err = a.AnalyzeFile(context.Background(), "fixture.json", loadFixture(t))
	assert.NoError(t, err)
	assert.Len(t, result.Tests, 0)
}

func TestAnalyzeFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newAnalyzer(t, Options{})
	_, err := a.AnalyzeFile(ctx, "fixture.json", loadFixture(t))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAnalyzeTest_Verify(t *testing.T) {
	a := newAnalyzer(t, Options{Verify: true})
	test := &fixture.TestCase{
		Pre: map[string]fixture.Account{contractAddress: {Code: "0x61ff"}},
	}

	result := a.AnalyzeTest("verify", test)
	assert.Len(t, result.Contracts, 1)
	assert.Empty(t, result.Contracts[0].Error)
	assert.Equal(t, []string{"PUSH2"}, result.Contracts[0].OpcodeSequence)
}

const executeFixture = `{
  "test_call_gas-value_1M": {
    "pre": {
      "0x0000000000000000000000000000000000001000": {"code": "0x600060006000600060006120005af100", "nonce": "0x01"},
      "0x0000000000000000000000000000000000002000": {"code": "0x600054600757fe5b00", "storage": {"0x00": "0x01"}},
      "0xa94f5374fce5edbccd0fd5da9a9c94e3e7e5c3c1": {"code": "0x", "balance": "0x3635c9adc5dea00000"},
      "0x0000000000000000000000000000000000003000": {"code": "0x6g"}
    },
    "blocks": [{"transactions": [
      {"to": "0x0000000000000000000000000000000000001000", "data": "0x", "sender": "0xa94f5374fce5edbccd0fd5da9a9c94e3e7e5c3c1"}
    ]}]
  }
}`

func TestAnalyzeTest_ExecutePreState(t *testing.T) {
	strategy, err := trace.New(trace.Execute, trace.Options{})
	assert.NoError(t, err)
	a := New(log.NewTestLogger(t), strategy, Options{})

	file, err := fixture.Load(strings.NewReader(executeFixture))
	assert.NoError(t, err)
	result := a.AnalyzeTest("test_call_gas-value_1M", file["test_call_gas-value_1M"])

	// the callee reads its storage slot and jumps over the INVALID opcode
	callee := []string{"PUSH1", "SLOAD", "PUSH1", "JUMPI", "JUMPDEST", "STOP"}
	caller := []string{"PUSH1", "PUSH1", "PUSH1", "PUSH1", "PUSH1", "PUSH2", "GAS", "CALL"}

	assert.Len(t, result.Contracts, 3)
	assert.Equal(t, append(append(caller, callee...), "STOP"), result.Contracts[0].OpcodeSequence)
	assert.Equal(t, callee, result.Contracts[1].OpcodeSequence)
	assert.Contains(t, result.Contracts[2].Error, "invalid hex data")

	assert.Len(t, result.Transactions, 1)
	tx := result.Transactions[0]
	assert.Empty(t, tx.Error)
	assert.Equal(t, uint64(1_000_000), tx.GasLimit)
	assert.Equal(t, append(append(caller, callee...), "STOP"), tx.OpcodeSequence)
	assert.Equal(t, "terminal", tx.StopReason)
}

func TestCodeAddress(t *testing.T) {
	assert.Equal(t, common.HexToAddress("0x1000"), codeAddress("0x0000000000000000000000000000000000001000"))
	assert.Equal(t, common.Address{}, codeAddress(""))
	assert.Equal(t, common.Address{}, codeAddress("zzz"))
}

func TestGasLimit(t *testing.T) {
	explicit := uint64(5000)

	tests := []struct {
		name     string
		testName string
		tx       fixture.Transaction
		expected uint64
	}{
		{"transaction gas limit", "test_100M", fixture.Transaction{GasLimit: &explicit}, 5000},
		{"100M", "test_gas-value_100M", fixture.Transaction{}, 100_000_000},
		{"150M", "test_gas-value_150M", fixture.Transaction{}, 150_000_000},
		{"60M", "test_60m", fixture.Transaction{}, 60_000_000},
		{"45M", "test_45M", fixture.Transaction{}, 45_000_000},
		{"30M", "test_30M", fixture.Transaction{}, 30_000_000},
		{"10M", "test_10M", fixture.Transaction{}, 10_000_000},
		{"1M", "test_1M", fixture.Transaction{}, 1_000_000},
		{"no marker", "test_plain", fixture.Transaction{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, gasLimit(tt.testName, tt.tx))
		})
	}
}

func TestInputPreview(t *testing.T) {
	assert.Equal(t, "", inputPreview(""))
	assert.Equal(t, "", inputPreview("0x"))
	assert.Equal(t, "abcd", inputPreview("0xabcd"))

	long := "0x" + strings.Repeat("ab", 60)
	preview := inputPreview(long)
	assert.Equal(t, strings.Repeat("ab", 50)+"...", preview)
}
