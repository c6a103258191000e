// Package cli handles command line interface logic
package cli

import (
	"fmt"
	"runtime"

	"github.com/eth-act/evmtrace/internal/config"
	"github.com/eth-act/evmtrace/internal/evm"
	"github.com/eth-act/evmtrace/internal/fileprocessor"
	"github.com/eth-act/evmtrace/internal/options"
	"github.com/eth-act/evmtrace/internal/pipeline"
	"github.com/eth-act/evmtrace/internal/trace"
	"github.com/eth-act/evmtrace/internal/writer"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
)

// Build contains the version information of the binary.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the command tree of the application.
func NewRootCommand(build Build) *cobra.Command {
	root := &cobra.Command{
		Use:           "evmtrace",
		Short:         "EVM bytecode disassembler and opcode trace analyzer for zkEVM benchmark fixtures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAnalyzeCommand(build),
		newDisasmCommand(),
		newTraceCommand(),
		newVersionCommand(build),
	)
	return root
}

func newAnalyzeCommand(build Build) *cobra.Command {
	opts := options.NewProgram()

	cmd := &cobra.Command{
		Use:   "analyze [flags] <fixtures dir or file>",
		Short: "trace the contracts and transactions of blockchain test fixtures and write reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			if err := normalizeOptions(&opts); err != nil {
				return err
			}

			logger := config.CreateLogger(opts.Debug, opts.Quiet)
			fileprocessor.PrintBanner(logger, opts.Quiet, build.Version, build.Commit, build.Date)
			return runAnalyze(cmd, logger, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Output, "output", "o", opts.Output, "output directory for reports")
	flags.StringVar(&opts.TestCase, "test-case", "", "only analyze fixture files whose name contains the value")
	flags.StringVar(&opts.GasFilter, "gas-filter", "", "only analyze tests whose name contains gas-value_<value>, for example 1M or 0.1")
	flags.StringVar(&opts.Strategy, "strategy", opts.Strategy, "trace strategy: linear, jumpaware, execute")
	flags.IntVar(&opts.MaxSteps, "max-steps", 0, "maximum number of traced opcodes per trace, 0 selects a limit based on code size and gas")
	flags.IntVar(&opts.Workers, "workers", opts.Workers, "number of fixture files analyzed in parallel")
	flags.BoolVar(&opts.Verify, "verify", false, "verify that the decoded instructions recreate the input code")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "perform operations quietly")
	return cmd
}

func runAnalyze(cmd *cobra.Command, logger *log.Logger, opts options.Program) error {
	files, err := fileprocessor.GetFilesToProcess(opts)
	if err != nil {
		return fmt.Errorf("finding fixture files: %w", err)
	}

	p := pipeline.New(logger)
	r, err := p.Execute(cmd.Context(), opts, files)
	if err != nil {
		return fmt.Errorf("analyzing fixtures: %w", err)
	}

	paths, err := writer.New(r, writer.Options{}).WriteAll(opts.Output)
	if err != nil {
		return fmt.Errorf("writing reports: %w", err)
	}
	for _, path := range paths {
		logger.Info("Report written", log.String("file", path))
	}

	if !opts.Quiet {
		p.PrintSummary(r)
	}
	logger.Info("Analysis complete", log.Int("files", len(files)))
	return nil
}

func newDisasmCommand() *cobra.Command {
	opts := options.NewTrace()

	cmd := &cobra.Command{
		Use:   "disasm [--code HEX | file]",
		Short: "print the disassembly listing of EVM bytecode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Input = args[0]
			}

			logger := config.CreateLogger(opts.Debug, opts.Quiet)
			code, err := fileprocessor.LoadCode(logger, opts)
			if err != nil {
				return err
			}
			return writer.WriteDisassembly(cmd.OutOrStdout(), code)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Code, "code", "", "code as hex string")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	return cmd
}

func newTraceCommand() *cobra.Command {
	opts := options.NewTrace()

	cmd := &cobra.Command{
		Use:   "trace [--code HEX | file]",
		Short: "approximate the executed opcode sequence of EVM bytecode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Input = args[0]
			}
			strategy, err := normalizeStrategy(opts.Strategy)
			if err != nil {
				return err
			}
			opts.Strategy = strategy

			logger := config.CreateLogger(opts.Debug, opts.Quiet)
			return runTrace(cmd, logger, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Code, "code", "", "code as hex string")
	flags.StringVar(&opts.CallData, "input", "", "call data as hex string, used by the execute strategy")
	flags.Uint64Var(&opts.Gas, "gas", 0, "gas limit, enables gas metering")
	flags.StringVar(&opts.Strategy, "strategy", opts.Strategy, "trace strategy: linear, jumpaware, execute")
	flags.IntVar(&opts.MaxSteps, "max-steps", 0, "maximum number of traced opcodes")
	flags.BoolVar(&opts.JSON, "json", false, "print the trace record as JSON")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "perform operations quietly")
	return cmd
}

func runTrace(cmd *cobra.Command, logger *log.Logger, opts options.Trace) error {
	code, err := fileprocessor.LoadCode(logger, opts)
	if err != nil {
		return err
	}
	calldata, err := evm.ParseHex(opts.CallData)
	if err != nil {
		return fmt.Errorf("parsing call data: %w", err)
	}

	record, err := pipeline.New(logger).TraceCode(code, calldata, opts)
	if err != nil {
		return err
	}

	if opts.JSON {
		return writer.WriteTraceJSON(cmd.OutOrStdout(), record)
	}
	return writer.WriteTrace(cmd.OutOrStdout(), record, 0)
}

func newVersionCommand(build Build) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "evmtrace %s\n", build.Version)
			if build.Commit != "" {
				fmt.Fprintf(out, "commit: %s\n", build.Commit)
			}
			if build.Date != "" {
				fmt.Fprintf(out, "built: %s\n", build.Date)
			}
		},
	}
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	strategy, err := normalizeStrategy(opts.Strategy)
	if err != nil {
		return err
	}
	opts.Strategy = strategy

	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.MaxSteps < 0 {
		return fmt.Errorf("invalid max steps %d", opts.MaxSteps)
	}
	return nil
}

func normalizeStrategy(name string) (string, error) {
	name = options.Normalize(name)
	if _, err := trace.New(name, trace.Options{}); err != nil {
		return "", fmt.Errorf("unsupported strategy: %w", err)
	}
	if name == "" {
		name = trace.Linear
	}
	return name, nil
}
