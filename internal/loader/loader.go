// Package loader handles input file loading operations.
package loader

import (
	"fmt"
	"os"

	"github.com/eth-act/evmtrace/internal/detector"
	"github.com/eth-act/evmtrace/internal/evm"
	"github.com/eth-act/evmtrace/internal/fixture"
)

// Loader handles loading code and fixture files from disk.
type Loader struct{}

// New creates a new input loader.
func New() *Loader {
	return &Loader{}
}

// LoadCode loads the code of a hex text or binary file.
func (l *Loader) LoadCode(path string, kind detector.Kind) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	switch kind {
	case detector.Binary:
		return data, nil
	case detector.Hex:
		code, err := evm.ParseHex(string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing file %s: %w", path, err)
		}
		return code, nil
	default:
		return nil, fmt.Errorf("file %s of kind %s contains no code", path, kind)
	}
}

// LoadFixture loads and decodes a fixture file.
func (l *Loader) LoadFixture(path string) (fixture.File, error) {
	file, err := fixture.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading fixture: %w", err)
	}
	return file, nil
}
