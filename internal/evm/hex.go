package evm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrInvalidHex is returned for code or call data that is not valid hexadecimal.
var ErrInvalidHex = errors.New("invalid hex data")

// ParseHex decodes a hex string with an optional 0x prefix.
// An empty string decodes to empty code.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if s == "" {
		return []byte{}, nil
	}

	b, err := hexutil.Decode("0x" + s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}
	return b, nil
}
