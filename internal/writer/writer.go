// Package writer implements the report file writing functionality.
package writer

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/eth-act/evmtrace/internal/evm"
	"github.com/eth-act/evmtrace/internal/report"
)

// Names of the report files that are written to the output directory.
const (
	TextReportFile        = "opcode_trace_report.txt"
	JSONReportFile        = "opcode_trace_report.json"
	SummaryCSVFile        = "instruction_summary.csv"
	BreakdownCSVFile      = "instruction_breakdown.csv"
	defaultSequenceLength = 200
	separatorWidth        = 80
)

var (
	summaryHeader   = []string{"Test File", "Test Case", "Transaction Index", "Total Instructions", "Unique Instructions", "All Instructions"}
	breakdownHeader = []string{"Test File", "Test Case", "Transaction Index", "Instruction", "Count", "Type"}
)

// Options of the writer.
type Options struct {
	// SequenceLength is the number of sequence entries shown per trace in the
	// text report, 0 selects the default.
	SequenceLength int
}

// Writer writes a report in the supported output formats.
type Writer struct {
	report  *report.Report
	options Options
}

// New creates a new writer.
func New(r *report.Report, options Options) *Writer {
	if options.SequenceLength <= 0 {
		options.SequenceLength = defaultSequenceLength
	}
	return &Writer{
		report:  r,
		options: options,
	}
}

// WriteAll writes all report files to the directory, creating it if needed.
// It returns the paths of the written files.
func (w Writer) WriteAll(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{TextReportFile, w.WriteText},
		{JSONReportFile, w.WriteJSON},
		{SummaryCSVFile, w.WriteSummaryCSV},
		{BreakdownCSVFile, w.WriteBreakdownCSV},
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		path := filepath.Join(dir, file.name)
		if err := writeFile(path, file.write); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteText writes the human readable report.
func (w Writer) WriteText(out io.Writer) error {
	buf := bufio.NewWriter(out)
	separator := strings.Repeat("=", separatorWidth)

	fmt.Fprintf(buf, "%s\nEVM Opcode Trace Analysis Report\n%s\n\n", separator, separator)

	for _, file := range w.report.Files {
		fmt.Fprintf(buf, "\n%s\nTest File: %s\n%s\n\n", separator, file.Name, separator)
		if file.Error != "" {
			fmt.Fprintf(buf, "Error: %s\n\n", file.Error)
			continue
		}

		for _, test := range file.Tests {
			w.writeTestCase(buf, test)
		}
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("writing text report: %w", err)
	}
	return nil
}

func (w Writer) writeTestCase(buf *bufio.Writer, test *report.TestCase) {
	fmt.Fprintf(buf, "Test Case: %s\n%s\n\n", test.Name, strings.Repeat("-", separatorWidth))

	if len(test.Contracts) > 0 {
		fmt.Fprintln(buf, "Contracts:")
		for _, contract := range test.Contracts {
			fmt.Fprintf(buf, "  Address: %s\n", contract.Address)
			if contract.Error != "" {
				fmt.Fprintf(buf, "  Error: %s\n", contract.Error)
			}
			if contract.Trace != nil {
				w.writeTrace(buf, "  ", contract.Trace)
			}
			fmt.Fprintln(buf)
		}
	}

	if len(test.Transactions) > 0 {
		fmt.Fprintf(buf, "Transactions: %d\n\n", len(test.Transactions))
		for _, tx := range test.Transactions {
			to := tx.To
			if tx.IsCreation || to == "" {
				to = "CREATE"
			}
			fmt.Fprintf(buf, "  Transaction %d:\n", tx.Index)
			fmt.Fprintf(buf, "    To: %s\n", to)
			if tx.IsCreation {
				fmt.Fprintln(buf, "    Type: Contract Creation")
			}
			if tx.InputLength > 0 {
				fmt.Fprintf(buf, "    Input Length: %d bytes\n", tx.InputLength)
			}
			if tx.GasLimit > 0 {
				fmt.Fprintf(buf, "    Gas Limit: %d\n", tx.GasLimit)
			}
			if tx.Trace != nil {
				w.writeTrace(buf, "    ", tx.Trace)
			}
			if tx.Error != "" {
				fmt.Fprintf(buf, "    Error: %s\n", tx.Error)
			}
			fmt.Fprintln(buf)
		}
	}

	fmt.Fprintln(buf)
}

func (w Writer) writeTrace(buf *bufio.Writer, indent string, t *report.Trace) {
	fmt.Fprintf(buf, "%sBytecode Length: %d bytes\n", indent, t.BytecodeLength)
	fmt.Fprintf(buf, "%sStrategy: %s\n", indent, t.Strategy)
	fmt.Fprintf(buf, "%sStop Reason: %s\n", indent, t.StopReason)
	if t.Fault != "" {
		fmt.Fprintf(buf, "%sFault: %s\n", indent, t.Fault)
	}
	if t.GasUsed > 0 {
		fmt.Fprintf(buf, "%sGas Used: %d\n", indent, t.GasUsed)
	}
	fmt.Fprintf(buf, "%sTotal Instructions: %d\n", indent, t.TotalInstructions)

	fmt.Fprintf(buf, "%sInstruction Counts (opcodes + precompiles):\n", indent)
	for _, count := range report.SortedCounts(t.InstructionCounts) {
		fmt.Fprintf(buf, "%s  %s: %d\n", indent, count.Name, count.Count)
	}

	limit := w.options.SequenceLength
	fmt.Fprintf(buf, "%sExecution Sequence (first %d):\n", indent, limit)
	preview := t.OpcodeSequence[:min(limit, len(t.OpcodeSequence))]
	fmt.Fprintf(buf, "%s  %s\n", indent, strings.Join(preview, " -> "))
	if remaining := len(t.OpcodeSequence) - limit; remaining > 0 {
		fmt.Fprintf(buf, "%s  ... (%d more)\n", indent, remaining)
	}
}

// WriteJSON writes the machine readable report.
func (w Writer) WriteJSON(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(w.report); err != nil {
		return fmt.Errorf("writing json report: %w", err)
	}
	return nil
}

// WriteSummaryCSV writes one row per traced transaction with the total and
// unique instruction numbers.
func (w Writer) WriteSummaryCSV(out io.Writer) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(summaryHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	err := w.forEachTracedTransaction(func(file *report.File, test *report.TestCase, tx report.Transaction) error {
		counts := report.SortedCounts(tx.InstructionCounts)
		all := make([]string, 0, len(counts))
		for _, count := range counts {
			all = append(all, fmt.Sprintf("%s(%d)", count.Name, count.Count))
		}

		return cw.Write([]string{
			file.Name,
			test.Name,
			strconv.Itoa(tx.Index),
			strconv.Itoa(tx.TotalInstructions),
			strconv.Itoa(len(tx.InstructionCounts)),
			strings.Join(all, ", "),
		})
	})
	if err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing summary csv: %w", err)
	}
	return nil
}

// WriteBreakdownCSV writes one row per instruction of every traced transaction.
func (w Writer) WriteBreakdownCSV(out io.Writer) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(breakdownHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	err := w.forEachTracedTransaction(func(file *report.File, test *report.TestCase, tx report.Transaction) error {
		for _, count := range report.SortedCounts(tx.InstructionCounts) {
			kind := "opcode"
			if evm.IsPrecompileName(count.Name) {
				kind = "precompile"
			}

			row := []string{file.Name, test.Name, strconv.Itoa(tx.Index), count.Name, strconv.Itoa(count.Count), kind}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing breakdown csv: %w", err)
	}
	return nil
}

func (w Writer) forEachTracedTransaction(fn func(*report.File, *report.TestCase, report.Transaction) error) error {
	for _, file := range w.report.Files {
		for _, test := range file.Tests {
			for _, tx := range test.Transactions {
				if tx.Trace == nil || len(tx.InstructionCounts) == 0 {
					continue
				}
				if err := fn(file, test, tx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", path, err)
	}

	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing output file %s: %w", path, err)
	}
	return nil
}

// WriteTrace writes a single trace record as text. A sequence length of 0
// prints the complete sequence.
func WriteTrace(out io.Writer, t *report.Trace, sequenceLength int) error {
	if sequenceLength <= 0 {
		sequenceLength = len(t.OpcodeSequence)
	}
	w := Writer{options: Options{SequenceLength: sequenceLength}}

	buf := bufio.NewWriter(out)
	w.writeTrace(buf, "", t)
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

// WriteTraceJSON writes a single trace record as JSON.
func WriteTraceJSON(out io.Writer, t *report.Trace) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("writing json trace: %w", err)
	}
	return nil
}

// WriteDisassembly writes the disassembly listing of the code.
func WriteDisassembly(out io.Writer, code []byte) error {
	buf := bufio.NewWriter(out)
	for _, line := range evm.Disassembly(code) {
		fmt.Fprintln(buf, line)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("writing disassembly: %w", err)
	}
	return nil
}
