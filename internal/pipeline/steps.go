package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finsight/finsight/internal/archive"
	"github.com/finsight/finsight/internal/classify"
	"github.com/finsight/finsight/internal/extract"
	"github.com/finsight/finsight/internal/goals"
	"github.com/finsight/finsight/internal/statement"
	"github.com/finsight/finsight/internal/store"
)

// ArchiveStep keeps a raw copy of the upload. Archival is best effort: a
// failed upload to the bucket is logged and the run continues.
type ArchiveStep struct {
	archiver archive.Archiver
	log      zerolog.Logger
}

func (s *ArchiveStep) Execute(ctx context.Context, state *State) error {
	uri, err := s.archiver.Store(ctx, state.UserID, state.Filename, state.Content)
	if err != nil {
		s.log.Warn().Err(err).Str("filename", state.Filename).
			Msg("failed to archive statement, continuing")
		return nil
	}
	state.ArchiveURI = uri
	return nil
}

// ExtractTextStep turns the uploaded file into plain text.
type ExtractTextStep struct {
	extractor extract.Extractor
}

func (s *ExtractTextStep) Execute(ctx context.Context, state *State) error {
	text, err := s.extractor.Extract(ctx, state.Content, state.Filename, state.Password)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	state.RawText = text
	return nil
}

// SegmentStep splits the raw text into per-transaction blocks.
type SegmentStep struct{}

func (s *SegmentStep) Execute(ctx context.Context, state *State) error {
	state.Blocks = statement.Segment(state.RawText)
	return nil
}

// ExtractMonthsStep computes the upload's month footprint.
type ExtractMonthsStep struct{}

func (s *ExtractMonthsStep) Execute(ctx context.Context, state *State) error {
	state.Months = statement.ExtractMonths(state.Blocks)
	return nil
}

// ValidateContinuityStep is the gate: it compares the upload's footprint
// against months already stored for the user and stops the run on overlap,
// empty footprint, or (unless skipped) gaps.
type ValidateContinuityStep struct {
	txs store.TransactionStore
	log zerolog.Logger
}

func (s *ValidateContinuityStep) Execute(ctx context.Context, state *State) error {
	existing, err := s.existingMonths(ctx, state.UserID)
	if err != nil {
		return fmt.Errorf("validate continuity: %w", err)
	}

	res := statement.ValidateContinuity(state.Months, existing, !state.SkipGapCheck)
	if !res.OK {
		state.Rejection = &res
		return errRejected
	}
	return nil
}

func (s *ValidateContinuityStep) existingMonths(ctx context.Context, userID string) ([]string, error) {
	txs, err := s.txs.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	seen := make(map[string]struct{})
	for _, tx := range txs {
		if m := tx.Month(); m != "" {
			seen[m] = struct{}{}
		}
	}

	months := make([]string, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Strings(months)
	return months, nil
}

// ClassifyStep runs the LLM orchestrator over the blocks. Per-chunk failures
// are absorbed inside the orchestrator; this step never fails the run.
type ClassifyStep struct {
	orchestrator *classify.Orchestrator
}

func (s *ClassifyStep) Execute(ctx context.Context, state *State) error {
	state.Transactions = s.orchestrator.Run(ctx, state.Blocks)
	return nil
}

// ApplyLearningStep overrides model categories with the user's learned rules.
type ApplyLearningStep struct {
	rules     store.LearningStore
	tolerance float64
	log       zerolog.Logger
}

func (s *ApplyLearningStep) Execute(ctx context.Context, state *State) error {
	rules, err := s.rules.ListRules(ctx, state.UserID)
	if err != nil {
		return fmt.Errorf("apply learning: list rules: %w", err)
	}
	if len(rules) == 0 {
		return nil
	}

	idx := classify.NewRuleIndex(rules, s.tolerance)
	overridden := 0
	for _, tx := range state.Transactions {
		if idx.Apply(tx) {
			overridden++
		}
	}
	if overridden > 0 {
		s.log.Debug().Int("overridden", overridden).Int("rules", idx.Len()).
			Msg("applied learned category overrides")
	}
	return nil
}

// PersistStep writes the classified transactions one by one. A failed write
// is counted and logged; the batch keeps going.
type PersistStep struct {
	txs store.TransactionStore
	log zerolog.Logger
}

func (s *PersistStep) Execute(ctx context.Context, state *State) error {
	for _, tx := range state.Transactions {
		tx.ID = uuid.NewString()
		tx.User = state.UserID

		if err := s.txs.PutTransaction(ctx, state.UserID, tx); err != nil {
			state.FailedCount++
			s.log.Error().Err(err).Str("title", tx.Title).Str("date", tx.Date).
				Msg("failed to store transaction")
			continue
		}
		state.Stored = append(state.Stored, tx)
	}

	s.log.Info().
		Str("user_id", state.UserID).
		Int("stored", len(state.Stored)).
		Int("failed", state.FailedCount).
		Msg("persisted transaction batch")
	return nil
}

// AllocateGoalsStep feeds the freshly stored batch to the allocation engine.
// Allocation problems do not fail an upload whose transactions are already
// stored; they are logged and the outcome stays ok.
type AllocateGoalsStep struct {
	engine *goals.Engine
	log    zerolog.Logger
}

func (s *AllocateGoalsStep) Execute(ctx context.Context, state *State) error {
	if len(state.Stored) == 0 {
		return nil
	}
	if err := s.engine.AllocateBatch(ctx, state.UserID, state.Stored); err != nil {
		s.log.Error().Err(err).Str("user_id", state.UserID).
			Msg("goal allocation failed after persist")
	}
	return nil
}
