package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/helmcode/sql-copilot/pkg/analyzer"
	"github.com/helmcode/sql-copilot/pkg/llm"
)

// newLogger returns a development logger when verbose output is requested,
// a no-op logger otherwise so normal CLI output stays clean.
func newLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}
	return zap.NewNop()
}

func newDiagnostician(provider, model string, logger *zap.Logger) (*analyzer.Diagnostician, error) {
	llmClient, err := llm.CreateFromEnv(provider, model)
	if err != nil {
		return nil, err
	}
	logger.Info("model provider ready", zap.String("provider", llmClient.Name()))
	return analyzer.New(llmClient, logger), nil
}

func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " " + suffix
	return s
}

func printSuccess(msg string) {
	color.New(color.FgGreen).Printf("✓ %s\n", msg)
}

func printError(msg string) {
	color.New(color.FgRed).Printf("✗ %s\n", msg)
}

func printInfo(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}
