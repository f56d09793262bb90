package classify

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/finsight/internal/logger"
)

// scriptedClassifier returns canned responses in call order, keyed by the
// first block of each prompt so results are stable under concurrency.
type scriptedClassifier struct {
	responses map[string]string // substring of prompt -> response
	err       error
}

func (s *scriptedClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	for marker, resp := range s.responses {
		if strings.Contains(prompt, marker) {
			return resp, nil
		}
	}
	return "", fmt.Errorf("no scripted response for prompt")
}

func TestOrchestratorConcatenatesChunksInOrder(t *testing.T) {
	// Chunk size 2 over 4 blocks: two chunks.
	classifier := &scriptedClassifier{responses: map[string]string{
		"BLOCK-A": `[{"date":"2023-08-01","title":"A1","amount":1,"type":"debit","category":"Others","payment_method":"UPI","confidence":50},
			{"date":"2023-08-01","title":"A2","amount":2,"type":"debit","category":"Others","payment_method":"UPI","confidence":50}]`,
		"BLOCK-C": `[{"date":"2023-08-02","title":"C1","amount":3,"type":"credit","category":"Salary","payment_method":"NEFT","confidence":98}]`,
	}}

	o := NewOrchestrator(classifier, 2, 0, logger.NewWithWriter(&strings.Builder{}))
	txs := o.Run(context.Background(), []string{"BLOCK-A x", "BLOCK-B x", "BLOCK-C x", "BLOCK-D x"})

	require.Len(t, txs, 3)
	assert.Equal(t, "A1", txs[0].Title)
	assert.Equal(t, "A2", txs[1].Title)
	assert.Equal(t, "C1", txs[2].Title)
}

func TestOrchestratorDropsUnparseableChunk(t *testing.T) {
	classifier := &scriptedClassifier{responses: map[string]string{
		"BLOCK-A": `this is not json and cannot be repaired`,
		"BLOCK-B": `[{"date":"2023-08-02","title":"OK","amount":5,"type":"debit","category":"Dining","payment_method":"UPI","confidence":90}]`,
	}}

	o := NewOrchestrator(classifier, 1, 0, logger.NewWithWriter(&strings.Builder{}))
	txs := o.Run(context.Background(), []string{"BLOCK-A", "BLOCK-B"})

	require.Len(t, txs, 1)
	assert.Equal(t, "OK", txs[0].Title)
}

func TestOrchestratorClassifierErrorDropsChunkOnly(t *testing.T) {
	classifier := &scriptedClassifier{err: fmt.Errorf("model unavailable")}

	o := NewOrchestrator(classifier, 20, 0, logger.NewWithWriter(&strings.Builder{}))
	txs := o.Run(context.Background(), []string{"BLOCK-A"})

	assert.Empty(t, txs)
}

func TestOrchestratorEmptyInput(t *testing.T) {
	o := NewOrchestrator(&scriptedClassifier{}, 20, 0, logger.NewWithWriter(&strings.Builder{}))
	assert.Nil(t, o.Run(context.Background(), nil))
}

func TestChunkBlocks(t *testing.T) {
	blocks := []string{"a", "b", "c", "d", "e"}

	chunks := chunkBlocks(blocks, 2)
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"a", "b"}, chunks[0])
	assert.Equal(t, []string{"c", "d"}, chunks[1])
	assert.Equal(t, []string{"e"}, chunks[2])

	assert.Len(t, chunkBlocks(blocks, 20), 1)
}
