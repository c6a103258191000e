// Package analysis traces the contracts and transactions of blockchain test fixtures.
package analysis

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/eth-act/evmtrace/internal/evm"
	"github.com/eth-act/evmtrace/internal/fixture"
	"github.com/eth-act/evmtrace/internal/report"
	"github.com/eth-act/evmtrace/internal/trace"
	"github.com/eth-act/evmtrace/internal/verification"
	"github.com/ethereum/go-ethereum/common"
	"github.com/retroenv/retrogolib/log"
)

// inputPreviewLength is the number of hex characters of the transaction
// input that are kept in the report.
const inputPreviewLength = 100

// gasValuePrefix marks the gas value parameter in a test name.
const gasValuePrefix = "gas-value_"

// testNameGasLimits are gas limits of benchmark tests that are encoded in the
// test name. The order matters, a name is matched against the first entry
// that it contains.
var testNameGasLimits = []struct {
	marker string
	gas    uint64
}{
	{"100m", 100_000_000},
	{"150m", 150_000_000},
	{"60m", 60_000_000},
	{"45m", 45_000_000},
	{"30m", 30_000_000},
	{"10m", 10_000_000},
	{"1m", 1_000_000},
}

// Options control the fixture analysis.
type Options struct {
	// GasFilter keeps only tests whose name contains gas-value_<GasFilter>.
	GasFilter string
	// Verify checks that every traced code decodes without gaps.
	Verify bool
}

// Analyzer traces the code of fixture test cases.
type Analyzer struct {
	logger   *log.Logger
	strategy trace.Strategy
	opts     Options
}

// New creates a new analyzer that uses the given strategy.
func New(logger *log.Logger, strategy trace.Strategy, opts Options) *Analyzer {
	return &Analyzer{
		logger:   logger,
		strategy: strategy,
		opts:     opts,
	}
}

// AnalyzeFile analyzes all tests of a fixture file that pass the gas filter.
// Tests are processed in name order.
func (a *Analyzer) AnalyzeFile(ctx context.Context, name string, file fixture.File) (*report.File, error) {
	result := &report.File{Name: name}

	for _, testName := range file.Names() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analyzing %s: %w", name, err)
		}
		if !a.matchesGasFilter(testName) {
			continue
		}

		a.logger.Debug("Processing test", log.String("file", name), log.String("test", testName))
		result.Tests = append(result.Tests, a.AnalyzeTest(testName, file[testName]))
	}
	return result, nil
}

// AnalyzeTest traces the contracts of the pre state and the transactions of
// a single test. Failures are recorded on the affected entries.
func (a *Analyzer) AnalyzeTest(name string, test *fixture.TestCase) *report.TestCase {
	result := &report.TestCase{
		Name:         name,
		Contracts:    []report.Contract{},
		Transactions: []report.Transaction{},
	}

	var pre trace.State
	if a.strategy.Name() == trace.Execute {
		pre = a.preState(name, test)
	}

	for _, address := range test.Contracts() {
		result.Contracts = append(result.Contracts, a.analyzeContract(address, test.Pre[address].Code, pre))
	}

	// transactions are numbered across all blocks of the test
	for blockIndex, block := range test.Blocks {
		for _, tx := range block.Transactions {
			entry := a.analyzeTransaction(name, test, tx, pre)
			entry.Block = blockIndex
			entry.Index = len(result.Transactions)
			result.Transactions = append(result.Transactions, entry)
		}
	}
	return result
}

// preState converts the pre state accounts of a test into the state that the
// execute strategy runs on. Accounts with an invalid address or code are
// skipped.
func (a *Analyzer) preState(testName string, test *fixture.TestCase) trace.State {
	pre := make(trace.State, len(test.Pre))
	for address, account := range test.Pre {
		if !common.IsHexAddress(address) {
			a.logger.Warn("Skipping pre state account with invalid address",
				log.String("test", testName), log.String("address", address))
			continue
		}
		code, err := evm.ParseHex(account.Code)
		if err != nil {
			a.logger.Warn("Skipping pre state account with invalid code",
				log.String("test", testName), log.String("address", address), log.Err(err))
			continue
		}

		entry := trace.Account{
			Code:    code,
			Nonce:   uint64(account.Nonce),
			Storage: account.Slots(),
		}
		if account.Balance != nil {
			entry.Balance = (*big.Int)(account.Balance)
		}
		pre[common.HexToAddress(address)] = entry
	}
	return pre
}

func (a *Analyzer) analyzeContract(address, codeHex string, pre trace.State) report.Contract {
	contract := report.Contract{Address: address}

	code, err := evm.ParseHex(codeHex)
	if err != nil {
		a.logger.Warn("Parsing contract code failed", log.String("address", address), log.Err(err))
		contract.Error = err.Error()
		return contract
	}

	strategy := trace.WithState(a.strategy, pre, codeAddress(address))
	contract.Trace, err = a.trace(strategy, code, nil)
	if err != nil {
		a.logger.Warn("Tracing contract failed", log.String("address", address), log.Err(err))
		contract.Error = err.Error()
	}
	return contract
}

func (a *Analyzer) analyzeTransaction(testName string, test *fixture.TestCase, tx fixture.Transaction,
	pre trace.State) report.Transaction {
	entry := report.Transaction{
		To:    tx.To,
		From:  tx.Sender,
		Value: "0",
	}
	if tx.Value != nil {
		entry.Value = tx.Value.String()
	}

	input, err := evm.ParseHex(tx.Input)
	if err != nil {
		entry.Error = fmt.Sprintf("parsing input: %s", err)
		return entry
	}
	entry.InputLength = len(input)
	entry.InputPreview = inputPreview(tx.Input)

	var (
		code, calldata []byte
		address        common.Address
	)
	switch {
	case tx.IsCreation():
		if len(input) == 0 {
			return entry
		}
		entry.IsCreation = true
		code = input
		if tx.GasLimit != nil {
			entry.GasLimit = *tx.GasLimit
		}

	default:
		codeHex, ok := test.CodeAt(tx.To)
		if !ok {
			return entry
		}
		code, err = evm.ParseHex(codeHex)
		if err != nil {
			entry.Error = fmt.Sprintf("parsing code: %s", err)
			return entry
		}
		calldata = input
		address = codeAddress(tx.To)
		entry.GasLimit = gasLimit(testName, tx)
	}

	strategy := trace.WithGasLimit(trace.WithState(a.strategy, pre, address), entry.GasLimit)
	entry.Trace, err = a.trace(strategy, code, calldata)
	if err != nil {
		a.logger.Warn("Tracing transaction failed", log.String("test", testName), log.Err(err))
		entry.Error = err.Error()
	}
	return entry
}

func (a *Analyzer) trace(strategy trace.Strategy, code, calldata []byte) (*report.Trace, error) {
	if a.opts.Verify {
		if err := verification.VerifyDecoding(a.logger, code); err != nil {
			return nil, fmt.Errorf("verifying decoding: %w", err)
		}
	}

	res, err := strategy.Trace(code, calldata)
	if err != nil {
		return nil, fmt.Errorf("tracing with strategy %s: %w", strategy.Name(), err)
	}
	return report.NewTrace(len(code), res), nil
}

func (a *Analyzer) matchesGasFilter(testName string) bool {
	if a.opts.GasFilter == "" {
		return true
	}
	return strings.Contains(testName, gasValuePrefix+a.opts.GasFilter)
}

// gasLimit returns the gas limit of a transaction, falling back to a gas
// value encoded in the test name. 0 means no limit.
func gasLimit(testName string, tx fixture.Transaction) uint64 {
	if tx.GasLimit != nil {
		return *tx.GasLimit
	}

	lower := strings.ToLower(testName)
	for _, entry := range testNameGasLimits {
		if strings.Contains(lower, entry.marker) {
			return entry.gas
		}
	}
	return 0
}

// codeAddress returns the address that code is executed at. Invalid
// addresses return the zero address which selects the default address.
func codeAddress(address string) common.Address {
	if !common.IsHexAddress(address) {
		return common.Address{}
	}
	return common.HexToAddress(address)
}

func inputPreview(input string) string {
	s := strings.TrimSpace(input)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if len(s) > inputPreviewLength {
		return s[:inputPreviewLength] + "..."
	}
	return s
}
