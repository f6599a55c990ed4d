package jobs

import (
	"context"
	"log"
	"time"
)

// DocumentProcessor defines the interface for processing pending documents
type DocumentProcessor interface {
	ProcessPending(ctx context.Context) error
}

// Worker polls for pending documents on a fixed interval
type Worker struct {
	processor    DocumentProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(processor DocumentProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start runs the polling loop until the context is cancelled or Stop is
// called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("document worker started (poll interval %v)", w.pollInterval)

	// one pass up front; the ticker only fires after a full interval
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("document worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("document worker stopped: stop signal received")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	if err := w.processor.ProcessPending(ctx); err != nil {
		log.Printf("document worker: %v", err)
	}
}

// Stop signals the worker to exit and waits for the current pass to finish
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("document worker shutdown complete")
}
