package classify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/finsight/finsight/internal/domain"
)

// DefaultChunkSize bounds how many transaction blocks go into one
// classification request.
const DefaultChunkSize = 20

// Orchestrator turns transaction blocks into classified transactions via an
// external model, absorbing its unreliability: blocks are chunked, chunks are
// classified independently, and a chunk whose response cannot be salvaged
// contributes zero records instead of failing the batch.
type Orchestrator struct {
	classifier Classifier
	chunkSize  int
	timeout    time.Duration
	log        zerolog.Logger
}

// NewOrchestrator creates an orchestrator. chunkSize <= 0 selects the
// default; timeout <= 0 disables the per-chunk deadline.
func NewOrchestrator(classifier Classifier, chunkSize int, timeout time.Duration, log zerolog.Logger) *Orchestrator {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Orchestrator{
		classifier: classifier,
		chunkSize:  chunkSize,
		timeout:    timeout,
		log:        log,
	}
}

// Run classifies all blocks. Chunks are dispatched concurrently but results
// are concatenated in submission order, keeping records stable relative to
// statement order. The returned slice holds transactions without ID or owner;
// the caller assigns those at persistence time.
func (o *Orchestrator) Run(ctx context.Context, blocks []string) []*domain.Transaction {
	if len(blocks) == 0 {
		return nil
	}

	chunks := chunkBlocks(blocks, o.chunkSize)
	results := make([][]*domain.Transaction, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			results[i] = o.classifyChunk(gctx, i, chunk)
			return nil
		})
	}
	// Workers only record per-chunk failures, never return errors.
	_ = g.Wait()

	var all []*domain.Transaction
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}

// classifyChunk runs one chunk end to end: prompt, model call with bounded
// timeout, repair, decode. Every failure path degrades to zero records.
func (o *Orchestrator) classifyChunk(ctx context.Context, idx int, blocks []string) []*domain.Transaction {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	raw, err := o.classifier.Classify(ctx, BuildPrompt(blocks))
	if err != nil {
		o.log.Warn().Err(err).Int("chunk", idx).Int("blocks", len(blocks)).
			Msg("classification call failed, dropping chunk")
		return nil
	}

	records, err := DecodeRecords(RepairJSON(raw))
	if err != nil {
		o.log.Warn().Err(err).Int("chunk", idx).
			Msg("classification response unparseable after repair, dropping chunk")
		return nil
	}

	txs := make([]*domain.Transaction, 0, len(records))
	for _, r := range records {
		txs = append(txs, &domain.Transaction{
			Date:          r.Date,
			Title:         r.Title,
			Amount:        r.Amount,
			Type:          domain.TransactionType(r.Type),
			Category:      r.Category,
			PaymentMethod: r.PaymentMethod,
			Description:   r.Description,
			Confidence:    clampConfidence(r.Confidence),
		})
	}
	return txs
}

func chunkBlocks(blocks []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(blocks); start += size {
		end := start + size
		if end > len(blocks) {
			end = len(blocks)
		}
		chunks = append(chunks, blocks[start:end])
	}
	return chunks
}
