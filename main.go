// Package main implements the main entry point for the EVM opcode trace analyzer
package main

import (
	"context"
	"errors"
	"os"

	"github.com/eth-act/evmtrace/internal/cli"
	"github.com/eth-act/evmtrace/internal/config"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	cmd := cli.NewRootCommand(cli.Build{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	if err := cmd.ExecuteContext(ctx); err != nil {
		logger := config.CreateLogger(false, false)
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Command failed", log.Err(err))
		os.Exit(1)
	}
}
