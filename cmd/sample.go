package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helmcode/sql-copilot/pkg/collector"
)

var (
	samplePath      string
	sampleCustomers int
	sampleOrders    int
	sampleVerbose   bool
)

func NewSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Create a sample e-commerce SQLite database for experiments",
		Long: `Create a SQLite database with customers and orders tables sized for
realistic slow-query experiments. The orders table is left without
secondary indexes on purpose, so unoptimized queries against it are
genuinely slow and the improvement loop has something to fix.`,
		RunE: runSample,
	}

	cmd.Flags().StringVar(&samplePath, "path", "sample_ecommerce.db", "Where to write the database file")
	cmd.Flags().IntVar(&sampleCustomers, "customers", 50000, "Number of customer rows")
	cmd.Flags().IntVar(&sampleOrders, "orders", 100000, "Number of order rows")
	cmd.Flags().BoolVarP(&sampleVerbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runSample(cmd *cobra.Command, args []string) error {
	logger := newLogger(sampleVerbose)
	defer logger.Sync()

	s := newSpinner(fmt.Sprintf("Creating sample database at %s...", samplePath))
	s.Start()
	err := collector.CreateSampleDatabase(cmd.Context(), samplePath, collector.SampleOptions{
		Customers: sampleCustomers,
		Orders:    sampleOrders,
	}, logger)
	s.Stop()
	if err != nil {
		return fmt.Errorf("failed to create sample database: %w", err)
	}

	printSuccess(fmt.Sprintf("Sample database ready: %s (%d customers, %d orders)", samplePath, sampleCustomers, sampleOrders))
	printInfo("Try: sql-copilot analyze --sqlite %s --sql \"SELECT * FROM orders WHERE customer_id = 42\" --execute", samplePath)
	return nil
}
