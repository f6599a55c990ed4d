package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/llm"
)

const (
	// DefaultEmbedBatchSize is the number of chunks embedded per batch
	DefaultEmbedBatchSize = 100
)

// DocumentRepository defines the interface for document lifecycle persistence
type DocumentRepository interface {
	// ClaimNextChunked claims the oldest chunked document and moves it to
	// the embedding state. Returns nil when no document is waiting.
	ClaimNextChunked(ctx context.Context) (*domain.CourseDocument, error)

	// MarkCompleted marks a document as fully embedded
	MarkCompleted(ctx context.Context, id string) error

	// MarkFailed marks a document as failed with the given error message
	MarkFailed(ctx context.Context, id string, lastError string) error
}

// ChunkRepository defines the interface for chunk embedding persistence
type ChunkRepository interface {
	ListUnembeddedByDocument(ctx context.Context, documentID string, limit int) ([]*domain.Chunk, error)
	UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error
}

// Embedder generates embedding vectors for chunk text
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingWorker backfills embeddings for chunks of uploaded documents
type EmbeddingWorker struct {
	documents DocumentRepository
	chunks    ChunkRepository
	embedder  Embedder

	batchSize  int
	batchDelay time.Duration

	// sleep is swapped out in tests so pacing does not slow the suite
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEmbeddingWorker creates a new EmbeddingWorker instance. Consecutive
// batches are spaced 60/requestsPerMinute seconds apart; zero or negative
// disables pacing.
func NewEmbeddingWorker(documents DocumentRepository, chunks ChunkRepository, embedder Embedder, batchSize, requestsPerMinute int) *EmbeddingWorker {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}

	var delay time.Duration
	if requestsPerMinute > 0 {
		delay = time.Minute / time.Duration(requestsPerMinute)
	}

	return &EmbeddingWorker{
		documents:  documents,
		chunks:     chunks,
		embedder:   embedder,
		batchSize:  batchSize,
		batchDelay: delay,
		sleep:      sleepContext,
	}
}

// ProcessPending implements the DocumentProcessor interface. It drains all
// chunked documents, one at a time, oldest first.
func (w *EmbeddingWorker) ProcessPending(ctx context.Context) error {
	for {
		doc, err := w.documents.ClaimNextChunked(ctx)
		if err != nil {
			return fmt.Errorf("failed to claim document: %w", err)
		}
		if doc == nil {
			return nil
		}

		log.Printf("Embedding document %s (%s, %d chunks)", doc.ID, doc.FileName, doc.ChunkCount)

		if err := w.embedDocument(ctx, doc.ID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("Error embedding document %s: %v", doc.ID, err)
			if markErr := w.documents.MarkFailed(ctx, doc.ID, failureMessage(err)); markErr != nil {
				log.Printf("Error marking document %s failed: %v", doc.ID, markErr)
			}
			continue
		}

		if err := w.documents.MarkCompleted(ctx, doc.ID); err != nil {
			return fmt.Errorf("failed to mark document %s completed: %w", doc.ID, err)
		}

		log.Printf("Document %s embedded successfully", doc.ID)
	}
}

func (w *EmbeddingWorker) embedDocument(ctx context.Context, documentID string) error {
	batches := 0
	for {
		chunks, err := w.chunks.ListUnembeddedByDocument(ctx, documentID, w.batchSize)
		if err != nil {
			return fmt.Errorf("failed to list unembedded chunks: %w", err)
		}
		if len(chunks) == 0 {
			return nil
		}

		// Space batches to stay inside the provider's rate limit
		if batches > 0 && w.batchDelay > 0 {
			if err := w.sleep(ctx, w.batchDelay); err != nil {
				return err
			}
		}

		for _, chunk := range chunks {
			embedding, err := w.embedder.EmbedText(ctx, chunk.Content)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %d: %w", chunk.ID, err)
			}
			if err := w.chunks.UpdateEmbedding(ctx, chunk.ID, embedding); err != nil {
				return fmt.Errorf("failed to store embedding for chunk %d: %w", chunk.ID, err)
			}
		}

		batches++
		log.Printf("Embedded batch %d (%d chunks) for document %s", batches, len(chunks), documentID)
	}
}

// failureMessage condenses an embedding error for the document's last_error
// column. Dimension mismatches point at configuration, not the provider.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrWrongDimensions):
		return fmt.Sprintf("embedding dimensions mismatch: %v", err)
	case llm.IsQuota(err):
		return fmt.Sprintf("embedding quota exceeded: %v", err)
	default:
		return err.Error()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
