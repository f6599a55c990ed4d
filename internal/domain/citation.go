package domain

import "fmt"

// CitationType discriminates the citation record variants
type CitationType string

const (
	CitationTypePDF      CitationType = "pdf"
	CitationTypeVTT      CitationType = "vtt"
	CitationTypeVideo    CitationType = "video"
	CitationTypeVerified CitationType = "verified"
)

// Citation is a tagged provenance record embedded in a QALog's cited
// sources. Chunk-backed citations carry file provenance; verified
// citations carry only the matched question. Field names are a
// compatibility surface with previously stored rows.
type Citation struct {
	Type      CitationType `json:"type"`
	FileName  string       `json:"file_name,omitempty"`
	Page      *int         `json:"page,omitempty"`
	Timestamp *float64     `json:"timestamp,omitempty"`
	DocID     string       `json:"doc_id,omitempty"`
	Question  string       `json:"question,omitempty"`
}

// NewChunkCitation derives a citation from a chunk's provenance metadata
func NewChunkCitation(c *Chunk) Citation {
	cit := Citation{
		Type:     CitationType(c.Metadata.Type),
		FileName: c.Metadata.FileName,
		DocID:    c.Metadata.DocumentID,
	}
	if c.Metadata.Page != nil {
		page := *c.Metadata.Page
		cit.Page = &page
	}
	if c.Metadata.StartTime != nil {
		ts := *c.Metadata.StartTime
		cit.Timestamp = &ts
	}
	return cit
}

// NewVerifiedCitation derives a citation from a verified answer
func NewVerifiedCitation(v *VerifiedAnswer) Citation {
	return Citation{
		Type:     CitationTypeVerified,
		Question: v.Question,
	}
}

// ValidateCitation rejects malformed citation records at the storage boundary
func ValidateCitation(c *Citation) error {
	if c == nil {
		return fmt.Errorf("citation cannot be nil")
	}

	switch c.Type {
	case CitationTypeVerified:
		if c.Question == "" {
			return fmt.Errorf("verified citation Question is required")
		}
		if c.FileName != "" || c.Page != nil || c.Timestamp != nil || c.DocID != "" {
			return fmt.Errorf("verified citation cannot carry file provenance")
		}
	case CitationTypePDF, CitationTypeVTT, CitationTypeVideo:
		if c.FileName == "" {
			return fmt.Errorf("%s citation FileName is required", c.Type)
		}
		if c.Question != "" {
			return fmt.Errorf("%s citation cannot carry a question", c.Type)
		}
	default:
		return fmt.Errorf("citation Type is invalid: %s", c.Type)
	}

	return nil
}
