// Package fileprocessor handles input file discovery and loading operations
package fileprocessor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/eth-act/evmtrace/internal/detector"
	"github.com/eth-act/evmtrace/internal/evm"
	"github.com/eth-act/evmtrace/internal/loader"
	"github.com/eth-act/evmtrace/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// ErrNoFiles is returned when no fixture file matches the options.
var ErrNoFiles = errors.New("no fixture files found")

// ErrNoCode is returned when neither inline code nor a code file is given.
var ErrNoCode = errors.New("no code given")

// GetFilesToProcess returns the sorted list of fixture files to process. The
// input is either a single file or a directory that is searched recursively
// for .json files whose name contains the test case filter.
func GetFilesToProcess(opts options.Program) ([]string, error) {
	info, err := os.Stat(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("reading input %s: %w", opts.Input, err)
	}
	if !info.IsDir() {
		return []string{opts.Input}, nil
	}

	var files []string
	err = filepath.WalkDir(opts.Input, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		if opts.TestCase != "" && !strings.Contains(entry.Name(), opts.TestCase) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("searching fixture files in %s: %w", opts.Input, err)
	}

	if len(files) == 0 {
		if opts.TestCase != "" {
			return nil, fmt.Errorf("%w: test case '%s' not found in %s", ErrNoFiles, opts.TestCase, opts.Input)
		}
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, opts.Input)
	}

	slices.Sort(files)
	return files, nil
}

// LoadCode returns the code given inline as hex string or loads it from the
// input file. Inline code takes precedence.
func LoadCode(logger *log.Logger, opts options.Trace) ([]byte, error) {
	if opts.Code != "" {
		code, err := evm.ParseHex(opts.Code)
		if err != nil {
			return nil, fmt.Errorf("parsing code: %w", err)
		}
		return code, nil
	}
	if opts.Input == "" {
		return nil, ErrNoCode
	}

	kind := detector.New(logger).Detect(opts.Input)
	code, err := loader.New().LoadCode(opts.Input, kind)
	if err != nil {
		return nil, fmt.Errorf("loading code: %w", err)
	}
	return code, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, quiet bool, version, commit, date string) {
	if quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("evmtrace", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
