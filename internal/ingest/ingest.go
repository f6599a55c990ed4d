// Package ingest parses uploaded course materials into text chunks ready for
// embedding. Parsing is pure: callers hand in content and receive chunk
// drafts with page or timestamp provenance attached.
package ingest

import "errors"

// DefaultTranscriptWindowSeconds groups transcript cues into roughly
// half-minute windows when no width is configured.
const DefaultTranscriptWindowSeconds = 30.0

// ErrNoContent is returned when a document parses cleanly but yields no
// usable text.
var ErrNoContent = errors.New("no extractable text content")

// ChunkDraft is one parsed unit of course material before persistence. Page
// is set for PDF sources, StartTime and EndTime for transcript sources.
type ChunkDraft struct {
	Content   string
	Page      *int
	StartTime *float64
	EndTime   *float64
}
