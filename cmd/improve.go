package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helmcode/sql-copilot/pkg/formatter"
	"github.com/helmcode/sql-copilot/pkg/loop"
)

var (
	improveSQLite   string
	improveDSN      string
	improveSQL      string
	improveSQLFile  string
	improveRounds   int
	improveOutput   string
	improveProvider string
	improveModel    string
	improveVerbose  bool
)

func NewImproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "improve",
		Short: "Iteratively improve a SQL query and compare measured timings",
		Long: `Run the improve-and-re-measure loop: execute the original query, ask the
AI to rewrite it, execute the rewrite, and compare timings. With --rounds
greater than one, later rounds see the whole iteration history and target
bottlenecks not yet addressed.

Only safe candidates are executed: the rewrite must come back as a single
read-only statement or the round is skipped.

Examples:
  sql-copilot improve --sqlite sample_ecommerce.db --sql "SELECT ... FROM orders ..." --rounds 3
  sql-copilot improve --postgres "postgres://localhost/shop" --sql-file slow.sql`,
		RunE: runImprove,
	}

	cmd.Flags().StringVar(&improveSQLite, "sqlite", "", "Path to a SQLite database file")
	cmd.Flags().StringVar(&improveDSN, "postgres", "", "PostgreSQL connection string")
	cmd.Flags().StringVar(&improveSQL, "sql", "", "SQL query to improve")
	cmd.Flags().StringVar(&improveSQLFile, "sql-file", "", "Read the SQL query from a file")
	cmd.Flags().IntVar(&improveRounds, "rounds", 1, "Number of improvement rounds")
	cmd.Flags().StringVarP(&improveOutput, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().StringVar(&improveProvider, "provider", "", "LLM provider (gemini, claude, openai)")
	cmd.Flags().StringVar(&improveModel, "model", "", "Model name override")
	cmd.Flags().BoolVarP(&improveVerbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runImprove(cmd *cobra.Command, args []string) error {
	logger := newLogger(improveVerbose)
	defer logger.Sync()

	query, err := resolveSQL(improveSQL, improveSQLFile)
	if err != nil {
		return err
	}
	coll, title, err := resolveCollector(improveSQLite, improveDSN, improveVerbose)
	if err != nil {
		return err
	}
	if err := coll.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	printSuccess("Connected to " + title)

	diag, err := newDiagnostician(improveProvider, improveModel, logger)
	if err != nil {
		return err
	}
	tracker := loop.NewTracker(diag, coll, logger)

	s := newSpinner("Executing and analyzing the original query...")
	s.Start()
	seed, err := tracker.Seed(cmd.Context(), query)
	s.Stop()
	if err != nil {
		return err
	}
	if seed.ElapsedMS != nil {
		printSuccess(fmt.Sprintf("Original query executed in %.2f ms", *seed.ElapsedMS))
	} else {
		printError("Original query produced no timing; comparison will be limited")
	}
	if seed.Diagnosis != nil && improveOutput == "human" {
		formatter.DisplayDiagnosis(seed.Diagnosis, improveOutput)
	}

	for round := 1; round <= improveRounds; round++ {
		printInfo("Round %d of %d", round, improveRounds)

		s = newSpinner("Asking the AI for an improved query...")
		s.Start()
		candidate, err := tracker.ProposeImprovement(cmd.Context())
		s.Stop()
		if err != nil {
			return err
		}
		formatter.DisplayImprovement(candidate, improveOutput)
		if candidate.ImprovedQuery == "" {
			printError("No usable improvement this round")
			continue
		}

		s = newSpinner("Executing and measuring the candidate...")
		s.Start()
		rec, err := tracker.ApplyAndMeasure(cmd.Context(), candidate)
		s.Stop()
		switch {
		case errors.Is(err, loop.ErrNoTiming):
			printError("Candidate execution produced no timing; round discarded")
			continue
		case err != nil:
			return err
		}
		printSuccess(fmt.Sprintf("Candidate executed in %.2f ms", *rec.ElapsedMS))
	}

	records := tracker.Records()
	best, ok := tracker.BestRecord()
	if ok {
		formatter.DisplayHistory(records, &best)
	} else {
		formatter.DisplayHistory(records, nil)
	}
	return nil
}
