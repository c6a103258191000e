// Package fixture loads blockchain test fixture files.
package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// ErrNoTests is returned for fixture files that contain no test case.
var ErrNoTests = errors.New("fixture contains no test cases")

// File maps test names to test cases.
type File map[string]*TestCase

// TestCase is a single blockchain test. Only the parts needed for the trace
// analysis are decoded.
type TestCase struct {
	Pre    map[string]Account `json:"pre"`
	Blocks []Block            `json:"blocks"`
}

// Account is an account of the pre state.
type Account struct {
	Code    string                `json:"code"`
	Balance *math.HexOrDecimal256 `json:"balance"`
	Nonce   math.HexOrDecimal64   `json:"nonce"`
	Storage map[string]string     `json:"storage"`
}

// Slots returns the storage of the account keyed by slot. Keys and values
// shorter than 32 bytes are left padded.
func (a Account) Slots() map[common.Hash]common.Hash {
	if len(a.Storage) == 0 {
		return nil
	}
	slots := make(map[common.Hash]common.Hash, len(a.Storage))
	for key, value := range a.Storage {
		slots[common.HexToHash(key)] = common.HexToHash(value)
	}
	return slots
}

// HasCode returns whether the account code is not empty.
func (a Account) HasCode() bool {
	code := strings.TrimSpace(a.Code)
	return code != "" && code != "0x" && code != "0X"
}

// Block contains the transactions of a block.
type Block struct {
	Transactions []Transaction `json:"transactions"`
}

// Transaction is a transaction of a block. Fixture generators differ in the
// field names they use, the alternatives are merged while decoding.
type Transaction struct {
	To       string
	Input    string
	Sender   string
	Value    *big.Int
	GasLimit *uint64
}

type transactionJSON struct {
	To       string                `json:"to"`
	Input    string                `json:"input"`
	Data     string                `json:"data"`
	Sender   string                `json:"sender"`
	From     string                `json:"from"`
	Value    *math.HexOrDecimal256 `json:"value"`
	Gas      *math.HexOrDecimal64  `json:"gas"`
	GasLimit *math.HexOrDecimal64  `json:"gasLimit"`
}

// UnmarshalJSON decodes a transaction. The input is read from "input" or
// "data", the sender from "sender" or "from" and the gas limit from "gas" or
// "gasLimit", the first non empty field wins.
func (tx *Transaction) UnmarshalJSON(data []byte) error {
	var dec transactionJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return fmt.Errorf("decoding transaction: %w", err)
	}

	*tx = Transaction{
		To:     dec.To,
		Input:  firstNonEmpty(dec.Input, dec.Data),
		Sender: firstNonEmpty(dec.Sender, dec.From),
	}
	if dec.Value != nil {
		tx.Value = (*big.Int)(dec.Value)
	}

	switch {
	case dec.Gas != nil:
		gas := uint64(*dec.Gas)
		tx.GasLimit = &gas
	case dec.GasLimit != nil:
		gas := uint64(*dec.GasLimit)
		tx.GasLimit = &gas
	}
	return nil
}

// IsCreation returns whether the transaction deploys a contract.
func (tx Transaction) IsCreation() bool {
	return strings.TrimSpace(tx.To) == ""
}

// Load decodes a fixture file from the reader.
func Load(reader io.Reader) (File, error) {
	var file File
	if err := json.NewDecoder(reader).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}
	for name, test := range file {
		if test == nil {
			delete(file, name)
		}
	}
	if len(file) == 0 {
		return nil, ErrNoTests
	}
	return file, nil
}

// LoadFile decodes the fixture file at the given path.
func LoadFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	file, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return file, nil
}

// Names returns the test names in sorted order.
func (f File) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Contracts returns the addresses of all pre state accounts with code in
// sorted order.
func (t *TestCase) Contracts() []string {
	var addresses []string
	for address, account := range t.Pre {
		if account.HasCode() {
			addresses = append(addresses, address)
		}
	}
	slices.Sort(addresses)
	return addresses
}

// CodeAt returns the code of the pre state account with the given address.
// Addresses are compared case insensitive and independent of the 0x prefix.
func (t *TestCase) CodeAt(address string) (string, bool) {
	if account, ok := t.Pre[address]; ok {
		return account.Code, account.HasCode()
	}
	if !common.IsHexAddress(address) {
		return "", false
	}

	want := common.HexToAddress(address)
	for key, account := range t.Pre {
		if common.IsHexAddress(key) && common.HexToAddress(key) == want {
			return account.Code, account.HasCode()
		}
	}
	return "", false
}

// Transactions returns all transactions of all blocks in order.
func (t *TestCase) Transactions() []Transaction {
	var txs []Transaction
	for _, block := range t.Blocks {
		txs = append(txs, block.Transactions...)
	}
	return txs
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if s != "" {
			return s
		}
	}
	return ""
}
