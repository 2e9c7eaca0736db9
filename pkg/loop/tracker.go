package loop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/helmcode/sql-copilot/pkg/analyzer"
	"github.com/helmcode/sql-copilot/pkg/bundle"
	"github.com/helmcode/sql-copilot/pkg/collector"
	"github.com/helmcode/sql-copilot/pkg/model"
)

var (
	// ErrNotSeeded is returned when an operation needs a seeded history.
	ErrNotSeeded = errors.New("no original query seeded")
	// ErrNoCandidate is returned when an improvement round produced no
	// usable statement. History is left untouched.
	ErrNoCandidate = errors.New("no usable improvement candidate")
	// ErrNoTiming is returned when a candidate executed without producing
	// a timing. The attempt is not appended to history.
	ErrNoTiming = errors.New("execution produced no timing")
)

// Tracker drives the improve-and-re-measure loop: it owns the ordered,
// append-only iteration history and is its sole mutator. Only executed,
// timed attempts are recorded; rejected candidates and failed executions
// leave the history untouched.
type Tracker struct {
	diag     *analyzer.Diagnostician
	executor collector.Collector
	records  []model.IterationRecord
	baseline int
	logger   *zap.Logger
}

func NewTracker(diag *analyzer.Diagnostician, executor collector.Collector, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{diag: diag, executor: executor, logger: logger}
}

// Seed executes and analyzes the original query, starting a fresh history
// with its record. Calling Seed again discards any previous history.
func (t *Tracker) Seed(ctx context.Context, query string) (model.IterationRecord, error) {
	t.records = nil
	t.baseline = 0

	b, err := t.executor.Collect(ctx, query, false)
	if err != nil {
		return model.IterationRecord{}, fmt.Errorf("execute original query: %w", err)
	}

	rec := t.newRecord(ctx, query, b, model.KindOriginal)
	t.records = append(t.records, rec)
	t.logger.Info("history seeded", zap.Float64p("elapsed_ms", rec.ElapsedMS))
	return rec, nil
}

// ProposeImprovement asks the model for a rewritten query, using the latest
// recorded query and its diagnosis as prior context plus the full history, so
// each round iterates on the previous round's rewrite. SelectBaseline repoints
// the branch to an earlier record. It never mutates history; the candidate may
// still be rejected.
func (t *Tracker) ProposeImprovement(ctx context.Context) (*model.ImprovedQuery, error) {
	if len(t.records) == 0 {
		return nil, ErrNotSeeded
	}
	base := t.records[t.baseline]

	// Re-plan the baseline query so the model sees current evidence; plan
	// collection is side-effect free.
	b, err := t.executor.Collect(ctx, base.Query, true)
	if err != nil {
		return nil, fmt.Errorf("collect baseline diagnostics: %w", err)
	}

	var priorRaw string
	if base.Diagnosis != nil {
		priorRaw = base.Diagnosis.RawResponse
	}
	return t.diag.Improve(ctx, b, priorRaw, base.Diagnosis, t.records), nil
}

// ApplyAndMeasure executes a proposed candidate, measures it, analyzes the
// new trace, and appends the resulting record. Candidates that failed the
// decoder's safety check (empty query) or executions without a timing are
// not appended.
func (t *Tracker) ApplyAndMeasure(ctx context.Context, candidate *model.ImprovedQuery) (model.IterationRecord, error) {
	if len(t.records) == 0 {
		return model.IterationRecord{}, ErrNotSeeded
	}
	if candidate == nil || candidate.ImprovedQuery == "" {
		return model.IterationRecord{}, ErrNoCandidate
	}

	b, err := t.executor.Collect(ctx, candidate.ImprovedQuery, false)
	if err != nil {
		return model.IterationRecord{}, fmt.Errorf("execute candidate query: %w", err)
	}
	if _, ok := b.Elapsed(); !ok {
		t.logger.Warn("candidate produced no timing, not recorded")
		return model.IterationRecord{}, ErrNoTiming
	}

	kind := model.KindImproved
	for _, rec := range t.records {
		if rec.Kind != model.KindOriginal {
			kind = model.KindRecursive
			break
		}
	}

	rec := t.newRecord(ctx, candidate.ImprovedQuery, b, kind)
	t.records = append(t.records, rec)
	// The newest record becomes the branch point for the next proposal.
	t.baseline = len(t.records) - 1
	t.logger.Info("iteration recorded",
		zap.Int("iteration", rec.Iteration),
		zap.String("kind", string(rec.Kind)),
		zap.Float64p("elapsed_ms", rec.ElapsedMS))
	return rec, nil
}

// SelectBaseline repoints the query used to seed the next proposal to an
// earlier record, without appending anything. The override lasts until the
// next record is appended, which moves the branch point to that record.
func (t *Tracker) SelectBaseline(index int) error {
	if index < 0 || index >= len(t.records) {
		return fmt.Errorf("baseline index %d out of range (history length %d)", index, len(t.records))
	}
	t.baseline = index
	return nil
}

// Baseline returns the record proposals currently branch from.
func (t *Tracker) Baseline() (model.IterationRecord, error) {
	if len(t.records) == 0 {
		return model.IterationRecord{}, ErrNotSeeded
	}
	return t.records[t.baseline], nil
}

// BestRecord returns the timed record with the lowest elapsed time, ties
// going to the earliest iteration. The second value is false for an empty
// or untimed history.
func (t *Tracker) BestRecord() (model.IterationRecord, bool) {
	best := -1
	for i, rec := range t.records {
		if rec.ElapsedMS == nil {
			continue
		}
		if best < 0 || *rec.ElapsedMS < *t.records[best].ElapsedMS {
			best = i
		}
	}
	if best < 0 {
		return model.IterationRecord{}, false
	}
	return t.records[best], true
}

// Records returns a copy of the history in iteration order.
func (t *Tracker) Records() []model.IterationRecord {
	out := make([]model.IterationRecord, len(t.records))
	copy(out, t.records)
	return out
}

func (t *Tracker) newRecord(ctx context.Context, query string, b bundle.Bundle, kind model.IterationKind) model.IterationRecord {
	var elapsed *float64
	if ms, ok := b.Elapsed(); ok {
		elapsed = &ms
	}
	return model.IterationRecord{
		Iteration: len(t.records),
		Query:     query,
		ElapsedMS: elapsed,
		Diagnosis: t.diag.Analyze(ctx, b),
		Timestamp: time.Now(),
		Kind:      kind,
	}
}
