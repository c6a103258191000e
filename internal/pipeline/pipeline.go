// Package pipeline orchestrates the fixture analysis workflow stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/eth-act/evmtrace/internal/analysis"
	"github.com/eth-act/evmtrace/internal/detector"
	"github.com/eth-act/evmtrace/internal/loader"
	"github.com/eth-act/evmtrace/internal/options"
	"github.com/eth-act/evmtrace/internal/report"
	"github.com/eth-act/evmtrace/internal/trace"
	"github.com/eth-act/evmtrace/internal/verification"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

// topOpcodes is the number of most used opcodes printed in the summary.
const topOpcodes = 10

// Pipeline orchestrates the complete analysis workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// New creates a new analysis pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute analyzes the fixture files in parallel and returns the report with
// one entry per file in input order. Failing files are logged and recorded in
// the report, only a cancelled context aborts the run.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, files []string) (*report.Report, error) {
	strategy, err := trace.New(opts.Strategy, opts.TraceOptions())
	if err != nil {
		return nil, fmt.Errorf("creating strategy: %w", err)
	}

	analyzer := analysis.New(p.logger, strategy, analysis.Options{
		GasFilter: opts.GasFilter,
		Verify:    opts.Verify,
	})

	p.printInfo(opts, strategy, len(files))

	results := make([]*report.File, len(files))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(opts.Workers, 1))

	for i, path := range files {
		group.Go(func() error {
			result, err := p.analyzeFile(ctx, analyzer, path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				p.logger.Error("Analyzing file failed", log.String("file", path), log.Err(err))
				result = &report.File{Name: filepath.Base(path), Error: err.Error()}
			}
			results[i] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing fixtures: %w", err)
	}

	r := &report.Report{Files: make([]*report.File, 0, len(results))}
	for _, result := range results {
		// files without a test passing the gas filter are not reported
		if result.Error == "" && len(result.Tests) == 0 {
			continue
		}
		r.Files = append(r.Files, result)
	}
	return r, nil
}

func (p *Pipeline) analyzeFile(ctx context.Context, analyzer *analysis.Analyzer, path string) (*report.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", path, err)
	}

	if kind := p.detector.Detect(path); kind != detector.Fixture {
		return nil, fmt.Errorf("unsupported input kind %s", kind)
	}

	file, err := p.loader.LoadFixture(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	p.logger.Info("Analyzing", log.String("file", filepath.Base(path)), log.Int("tests", len(file)))

	result, err := analyzer.AnalyzeFile(ctx, filepath.Base(path), file)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", path, err)
	}
	return result, nil
}

// TraceCode traces a single code blob.
func (p *Pipeline) TraceCode(code, calldata []byte, opts options.Trace) (*report.Trace, error) {
	strategy, err := trace.New(opts.Strategy, opts.TraceOptions())
	if err != nil {
		return nil, fmt.Errorf("creating strategy: %w", err)
	}

	if err := verification.VerifyDecoding(p.logger, code); err != nil {
		return nil, fmt.Errorf("verifying decoding: %w", err)
	}

	res, err := strategy.Trace(code, calldata)
	if err != nil {
		return nil, fmt.Errorf("tracing code: %w", err)
	}

	p.logger.Debug("Traced code",
		log.Int("bytes", len(code)),
		log.String("strategy", res.Strategy),
		log.Int("steps", res.Steps),
		log.Stringer("reason", res.Reason))
	return report.NewTrace(len(code), res), nil
}

// PrintSummary logs the instruction usage totals of the report.
func (p *Pipeline) PrintSummary(r *report.Report) {
	totals := r.Totals()
	if totals.Unique() == 0 {
		p.logger.Info("No instructions traced")
		return
	}

	p.logger.Info("Instruction usage summary",
		log.Int("unique", totals.Unique()),
		log.Int("total", totals.Count()),
		log.Int("traced_transactions", r.TracedTransactions()))

	if len(totals.Precompiles) > 0 {
		p.logger.Info("Precompiles",
			log.Int("types", len(totals.Precompiles)),
			log.Int("calls", totals.PrecompileCount()))
		for _, count := range report.SortedCounts(totals.Precompiles) {
			p.logger.Info("  "+count.Name, log.Int("count", count.Count))
		}
	}

	p.logger.Info("Top opcodes",
		log.Int("types", len(totals.Opcodes)),
		log.Int("total", totals.OpcodeCount()))
	opcodes := report.SortedCounts(totals.Opcodes)
	for _, count := range opcodes[:min(topOpcodes, len(opcodes))] {
		p.logger.Info("  "+count.Name, log.Int("count", count.Count))
	}
}

func (p *Pipeline) printInfo(opts options.Program, strategy trace.Strategy, files int) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Processing fixtures",
		log.String("input", opts.Input),
		log.Int("files", files),
		log.String("strategy", strategy.Name()),
		log.Int("workers", max(opts.Workers, 1)),
	)
	if opts.GasFilter != "" {
		p.logger.Info("Filtering tests", log.String("gas_value", opts.GasFilter))
	}
}
