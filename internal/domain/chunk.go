package domain

import "fmt"

// SourceType identifies the kind of course material a chunk was cut from
type SourceType string

const (
	SourceTypePDF   SourceType = "pdf"
	SourceTypeVTT   SourceType = "vtt"
	SourceTypeVideo SourceType = "video"
)

// ChunkMetadata carries the provenance attached to every stored chunk.
// Field names are a compatibility surface with previously stored rows.
type ChunkMetadata struct {
	FileName   string     `json:"file_name"`
	Type       SourceType `json:"type"`
	Page       *int       `json:"page,omitempty"`
	StartTime  *float64   `json:"start_time,omitempty"`
	EndTime    *float64   `json:"end_time,omitempty"`
	CourseID   string     `json:"course_id"`
	DocumentID string     `json:"document_id,omitempty"`
	ChunkIndex int        `json:"chunk_index"`
}

// Chunk represents one unit of course material text with its embedding
type Chunk struct {
	ID        int64
	Content   string
	Metadata  ChunkMetadata
	Embedding []float32
}

// ScoredChunk pairs a retrieved chunk with its raw retrieval score.
// Score semantics (similarity vs distance) depend on the serving index;
// nil means the index returned no score.
type ScoredChunk struct {
	Chunk
	Score *float64
}

// NewChunk creates a new Chunk instance
func NewChunk(content string, metadata ChunkMetadata, embedding []float32) *Chunk {
	return &Chunk{
		Content:   content,
		Metadata:  metadata,
		Embedding: embedding,
	}
}

// ValidateChunkMetadata rejects malformed provenance at the storage boundary
func ValidateChunkMetadata(m *ChunkMetadata) error {
	if m == nil {
		return fmt.Errorf("chunk metadata cannot be nil")
	}

	if m.FileName == "" {
		return fmt.Errorf("chunk metadata FileName is required")
	}

	if m.CourseID == "" {
		return fmt.Errorf("chunk metadata CourseID is required")
	}

	if !isValidSourceType(m.Type) {
		return fmt.Errorf("chunk metadata Type is invalid: %s", m.Type)
	}

	if m.ChunkIndex < 0 {
		return fmt.Errorf("chunk metadata ChunkIndex cannot be negative")
	}

	if m.StartTime != nil && m.EndTime != nil && *m.EndTime < *m.StartTime {
		return fmt.Errorf("chunk metadata EndTime cannot precede StartTime")
	}

	return nil
}

// ValidateChunk validates a Chunk instance
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}

	if c.Content == "" {
		return fmt.Errorf("chunk Content is required")
	}

	return ValidateChunkMetadata(&c.Metadata)
}

// isValidSourceType checks if a SourceType is valid
func isValidSourceType(t SourceType) bool {
	switch t {
	case SourceTypePDF, SourceTypeVTT, SourceTypeVideo:
		return true
	}
	return false
}
