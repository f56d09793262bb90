// Package pipeline runs a statement upload end to end: archive, text
// extraction, segmentation, the continuity gate, classification, learned
// overrides, persistence and goal allocation.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/finsight/finsight/internal/archive"
	"github.com/finsight/finsight/internal/classify"
	"github.com/finsight/finsight/internal/domain"
	"github.com/finsight/finsight/internal/extract"
	"github.com/finsight/finsight/internal/goals"
	"github.com/finsight/finsight/internal/statement"
	"github.com/finsight/finsight/internal/store"
)

// Status of a finished pipeline run.
type Status string

const (
	StatusOK       Status = "ok"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
)

// errRejected stops the step loop when the continuity gate declines the
// upload. It never escapes Run.
var errRejected = errors.New("upload rejected")

// Step is a single stage of the ingestion pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State is the shared state threaded through the steps.
type State struct {
	UserID       string
	Filename     string
	Password     string
	Content      []byte
	SkipGapCheck bool

	ArchiveURI   string
	RawText      string
	Blocks       []string
	Months       []string
	Rejection    *statement.ValidationResult
	Transactions []*domain.Transaction
	Stored       []*domain.Transaction
	FailedCount  int
}

// Outcome is what a pipeline run reports back to its caller. Gate
// rejections land here with StatusRejected rather than as errors.
type Outcome struct {
	Status         Status                      `json:"status"`
	Message        string                      `json:"message"`
	MonthsDetected []string                    `json:"months_detected,omitempty"`
	StoredCount    int                         `json:"stored_count"`
	FailedCount    int                         `json:"failed_count"`
	Rejection      *statement.ValidationResult `json:"rejection,omitempty"`
	Transactions   []*domain.Transaction       `json:"transactions,omitempty"`
}

// Deps are the collaborators a pipeline needs.
type Deps struct {
	Archiver   archive.Archiver
	Extractor  extract.Extractor
	Classifier *classify.Orchestrator
	Store      store.Store
	Allocator  *goals.Engine
	Tolerance  float64
	Log        zerolog.Logger
}

// Pipeline executes the ingestion steps in order for one upload.
type Pipeline struct {
	steps []Step
	log   zerolog.Logger
}

// New assembles the standard step sequence.
func New(d Deps) *Pipeline {
	if d.Archiver == nil {
		d.Archiver = archive.NopArchiver{}
	}
	return &Pipeline{
		log: d.Log,
		steps: []Step{
			&ArchiveStep{archiver: d.Archiver, log: d.Log},
			&ExtractTextStep{extractor: d.Extractor},
			&SegmentStep{},
			&ExtractMonthsStep{},
			&ValidateContinuityStep{txs: d.Store, log: d.Log},
			&ClassifyStep{orchestrator: d.Classifier},
			&ApplyLearningStep{rules: d.Store, tolerance: d.Tolerance, log: d.Log},
			&PersistStep{txs: d.Store, log: d.Log},
			&AllocateGoalsStep{engine: d.Allocator, log: d.Log},
		},
	}
}

// Run executes the pipeline for one uploaded statement. Gate rejections
// come back as a StatusRejected outcome with a nil error; only genuine
// processing failures return an error.
func (p *Pipeline) Run(ctx context.Context, state *State) (*Outcome, error) {
	for _, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			if errors.Is(err, errRejected) {
				p.log.Info().
					Str("user_id", state.UserID).
					Str("reason", string(state.Rejection.Reason)).
					Msg("upload rejected by continuity gate")
				return &Outcome{
					Status:         StatusRejected,
					Message:        state.Rejection.Message,
					MonthsDetected: state.Months,
					Rejection:      state.Rejection,
				}, nil
			}
			return &Outcome{
				Status:  StatusFailed,
				Message: err.Error(),
			}, fmt.Errorf("Run: %w", err)
		}
	}

	return &Outcome{
		Status:         StatusOK,
		Message:        fmt.Sprintf("statement processed: %d transaction(s) stored", len(state.Stored)),
		MonthsDetected: state.Months,
		StoredCount:    len(state.Stored),
		FailedCount:    state.FailedCount,
		Transactions:   state.Stored,
	}, nil
}
