package service

import (
	"github.com/studyhall-ai/studyhall/internal/domain"
)

// ExtractCitations converts assembled context sources into citation records.
// Emission order is preserved, so citations line up with the context segments
// the answer was grounded on: verified answers first, then chunks.
func ExtractCitations(sources []ContextSource) []domain.Citation {
	citations := make([]domain.Citation, 0, len(sources))
	for _, src := range sources {
		switch {
		case src.Verified != nil:
			citations = append(citations, domain.NewVerifiedCitation(src.Verified))
		case src.Chunk != nil:
			citations = append(citations, domain.NewChunkCitation(src.Chunk))
		}
	}
	return citations
}
